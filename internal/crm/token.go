package crm

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/goccy/go-json"
	"github.com/stwalsh4118/crmsync/internal/config"
	"github.com/stwalsh4118/crmsync/internal/logger"
	"github.com/stwalsh4118/crmsync/internal/metrics"
)

// expiryMargin is how long before its reported expiry a token is treated as stale.
const expiryMargin = 60 * time.Second

// TokenSource provides a valid bearer token.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// TokenCache holds the current access token and renews it with the
// refresh-token grant once it is within expiryMargin of expiring.
//
// The lock only guards the cached fields. Two callers that both observe a
// stale token will both refresh; the later write wins and both tokens are valid.
type TokenCache struct {
	http         *resty.Client
	tokenURL     string
	clientID     string
	clientSecret string
	refreshToken string
	log          *logger.Logger
	now          func() time.Time

	mu        sync.Mutex
	token     string
	expiresAt time.Time
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
	Error       string `json:"error"`
}

// NewTokenCache creates an empty cache; the first Token call fetches a token.
func NewTokenCache(cfg config.CRMConfig, log *logger.Logger) *TokenCache {
	httpClient := resty.New().
		SetTimeout(cfg.Timeout).
		SetJSONMarshaler(json.Marshal).
		SetJSONUnmarshaler(json.Unmarshal)

	return &TokenCache{
		http:         httpClient,
		tokenURL:     cfg.TokenURL,
		clientID:     cfg.ClientID,
		clientSecret: cfg.ClientSecret,
		refreshToken: cfg.RefreshToken,
		log:          log.WithComponent("crm.token"),
		now:          time.Now,
	}
}

// Token returns the cached token, refreshing it first if it is missing or
// about to expire.
func (c *TokenCache) Token(ctx context.Context) (string, error) {
	c.mu.Lock()
	token, expiresAt := c.token, c.expiresAt
	c.mu.Unlock()

	if token != "" && c.now().Before(expiresAt.Add(-expiryMargin)) {
		return token, nil
	}

	c.log.Info("Access token missing or expired, requesting a new one", nil)

	fresh, ttl, err := c.refresh(ctx)
	if err != nil {
		return "", err
	}

	c.mu.Lock()
	c.token = fresh
	c.expiresAt = c.now().Add(ttl)
	c.mu.Unlock()

	c.log.Info("Access token refreshed", map[string]interface{}{
		"expires_in_seconds": int64(ttl.Seconds()),
	})
	return fresh, nil
}

func (c *TokenCache) refresh(ctx context.Context) (string, time.Duration, error) {
	start := time.Now()
	var body tokenResponse

	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"refresh_token": c.refreshToken,
			"client_id":     c.clientID,
			"client_secret": c.clientSecret,
			"grant_type":    "refresh_token",
		}).
		SetResult(&body).
		Post(c.tokenURL)
	if err != nil {
		metrics.RecordCRMRequest("token", metrics.OutcomeFailure, time.Since(start))
		c.log.Error("Token request failed", err, nil)
		return "", 0, fmt.Errorf("%w: %w", ErrAuth, err)
	}

	if resp.IsError() || body.AccessToken == "" {
		metrics.RecordCRMRequest("token", metrics.OutcomeFailure, time.Since(start))
		c.log.Error("Token endpoint did not return an access token", nil, map[string]interface{}{
			"status": resp.StatusCode(),
			"error":  body.Error,
		})
		return "", 0, fmt.Errorf("%w: no access token in response (status %d)", ErrAuth, resp.StatusCode())
	}

	metrics.RecordCRMRequest("token", metrics.OutcomeSuccess, time.Since(start))
	return body.AccessToken, time.Duration(body.ExpiresIn) * time.Second, nil
}
