package crm

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"
	"github.com/stwalsh4118/crmsync/internal/config"
	"github.com/stwalsh4118/crmsync/internal/logger"
	"github.com/stwalsh4118/crmsync/internal/metrics"
	"golang.org/x/time/rate"
)

const breakerName = "crm-api"

// Client runs select queries and related-record searches against the CRM API.
// Every call obtains a token from the TokenSource, waits on the rate limiter
// and goes through a circuit breaker that trips on transport errors and 5xx
// responses. A 401 is not retried.
type Client struct {
	http    *resty.Client
	baseURL string
	tokens  TokenSource
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker[*resty.Response]
	log     *logger.Logger
}

type selectResponse struct {
	Data []Record `json:"data"`
	Info struct {
		MoreRecords bool `json:"more_records"`
		Count       int  `json:"count"`
	} `json:"info"`
}

type searchResponse struct {
	Data []Record `json:"data"`
}

// NewClient creates a CRM client.
func NewClient(cfg config.CRMConfig, tokens TokenSource, log *logger.Logger) *Client {
	log = log.WithComponent("crm")

	httpClient := resty.New().
		SetTimeout(cfg.Timeout).
		SetJSONMarshaler(json.Marshal).
		SetJSONUnmarshaler(json.Unmarshal)

	maxFailures := uint32(cfg.BreakerMaxFailures)
	metrics.CircuitBreakerState.WithLabelValues(breakerName).Set(0)

	breaker := gobreaker.NewCircuitBreaker[*resty.Response](gobreaker.Settings{
		Name:        breakerName,
		MaxRequests: 1,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("Circuit breaker state changed", map[string]interface{}{
				"breaker": name,
				"from":    from.String(),
				"to":      to.String(),
			})
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateValue(to))
		},
	})

	return &Client{
		http:    httpClient,
		baseURL: strings.TrimRight(cfg.APIURL, "/"),
		tokens:  tokens,
		limiter: rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.RateBurst),
		breaker: breaker,
		log:     log,
	}
}

// RunSelectQuery fetches one page of a select query. A 204 response is an
// empty page with HasMore false.
func (c *Client) RunSelectQuery(ctx context.Context, q SelectQuery) (Page, error) {
	if err := q.Validate(); err != nil {
		return Page{}, fmt.Errorf("%w: %w", ErrQuery, err)
	}

	resp, err := c.do(ctx, "select", func(r *resty.Request) (*resty.Response, error) {
		return r.SetBody(map[string]string{"select_query": q.String()}).
			Post(c.baseURL + "/coql")
	})
	if err != nil {
		return Page{}, err
	}

	if resp.StatusCode() == http.StatusNoContent {
		return Page{Records: []Record{}}, nil
	}

	var body selectResponse
	if err := decode(resp.Body(), &body); err != nil {
		return Page{}, fmt.Errorf("%w: decode select response: %w", ErrQuery, err)
	}

	records := body.Data
	if records == nil {
		records = []Record{}
	}

	c.log.Debug("Select query page fetched", map[string]interface{}{
		"module":   q.From,
		"offset":   q.Offset,
		"records":  len(records),
		"has_more": body.Info.MoreRecords,
	})

	return Page{Records: records, HasMore: body.Info.MoreRecords, Count: body.Info.Count}, nil
}

// SearchRelated returns the records of module matching criteria, optionally
// projected to fields. It never returns a nil slice.
func (c *Client) SearchRelated(ctx context.Context, module, criteria string, fields ...string) ([]Record, error) {
	if module == "" {
		return nil, fmt.Errorf("%w: search requires a module", ErrQuery)
	}

	resp, err := c.do(ctx, "search", func(r *resty.Request) (*resty.Response, error) {
		r.SetQueryParam("criteria", criteria)
		if len(fields) > 0 {
			r.SetQueryParam("fields", strings.Join(fields, ","))
		}
		return r.Get(c.baseURL + "/" + module + "/search")
	})
	if err != nil {
		return nil, err
	}

	if resp.StatusCode() == http.StatusNoContent {
		return []Record{}, nil
	}

	var body searchResponse
	if err := decode(resp.Body(), &body); err != nil {
		return nil, fmt.Errorf("%w: decode search response: %w", ErrQuery, err)
	}
	if body.Data == nil {
		return []Record{}, nil
	}

	c.log.Debug("Related records fetched", map[string]interface{}{
		"module":   module,
		"criteria": criteria,
		"records":  len(body.Data),
	})
	return body.Data, nil
}

// do performs one authenticated, rate-limited, breaker-guarded request.
// Any status outside 2xx is returned as ErrQuery.
func (c *Client) do(ctx context.Context, operation string, send func(*resty.Request) (*resty.Response, error)) (*resty.Response, error) {
	token, err := c.tokens.Token(ctx)
	if err != nil {
		return nil, err
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: %s: rate limiter: %w", ErrQuery, operation, err)
	}

	start := time.Now()
	resp, err := c.breaker.Execute(func() (*resty.Response, error) {
		req := c.http.R().
			SetContext(ctx).
			SetHeader("Authorization", "Zoho-oauthtoken "+token)

		resp, err := send(req)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode() >= http.StatusInternalServerError {
			return resp, fmt.Errorf("server error: %s", resp.Status())
		}
		return resp, nil
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			metrics.RecordCRMRequest(operation, metrics.OutcomeRejected, time.Since(start))
			c.log.Warn("Request rejected by circuit breaker", map[string]interface{}{"operation": operation})
		} else {
			metrics.RecordCRMRequest(operation, metrics.OutcomeFailure, time.Since(start))
			c.log.Error("Request failed", err, map[string]interface{}{"operation": operation})
		}
		return nil, fmt.Errorf("%w: %s: %w", ErrQuery, operation, err)
	}

	if resp.IsError() {
		metrics.RecordCRMRequest(operation, metrics.OutcomeFailure, time.Since(start))
		c.log.Warn("Request returned an error status", map[string]interface{}{
			"operation": operation,
			"status":    resp.StatusCode(),
			"body":      resp.String(),
		})
		return nil, fmt.Errorf("%w: %s: status %d", ErrQuery, operation, resp.StatusCode())
	}

	metrics.RecordCRMRequest(operation, metrics.OutcomeSuccess, time.Since(start))
	return resp, nil
}

func decode(body []byte, v any) error {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	return dec.Decode(v)
}

func stateValue(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateOpen:
		return 1
	case gobreaker.StateHalfOpen:
		return 2
	default:
		return 0
	}
}
