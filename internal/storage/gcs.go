// Package storage lists objects in the file bucket and turns their keys into
// public URLs.
package storage

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/stwalsh4118/crmsync/internal/config"
	"github.com/stwalsh4118/crmsync/internal/logger"
	"github.com/stwalsh4118/crmsync/internal/metrics"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

// File is a stored object and its public URL.
type File struct {
	Name string
	URL  string
}

// objectIterator is satisfied by *storage.ObjectIterator.
type objectIterator interface {
	Next() (*storage.ObjectAttrs, error)
}

// GCSLister lists public object URLs in a single bucket.
type GCSLister struct {
	client  *storage.Client
	objects func(ctx context.Context, prefix string) objectIterator
	bucket  string
	baseURL string
	log     *logger.Logger
}

// NewGCSLister creates a lister for cfg.BucketName. When cfg.CredentialsFile
// is empty, application default credentials are used.
func NewGCSLister(ctx context.Context, cfg config.StorageConfig, log *logger.Logger) (*GCSLister, error) {
	var opts []option.ClientOption
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}

	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}

	bucket := client.Bucket(cfg.BucketName)
	lister := newLister(cfg, log, func(ctx context.Context, prefix string) objectIterator {
		return bucket.Objects(ctx, &storage.Query{Prefix: prefix})
	})
	lister.client = client
	return lister, nil
}

func newLister(cfg config.StorageConfig, log *logger.Logger, objects func(context.Context, string) objectIterator) *GCSLister {
	return &GCSLister{
		objects: objects,
		bucket:  cfg.BucketName,
		baseURL: strings.TrimRight(cfg.PublicBaseURL, "/"),
		log:     log.WithComponent("storage"),
	}
}

// ListPublicURLs returns every object under prefix with its public URL.
// Directory markers are skipped. Listing is best-effort: any error is logged
// and an empty result is returned.
func (l *GCSLister) ListPublicURLs(ctx context.Context, prefix string) []File {
	it := l.objects(ctx, prefix)
	files := []File{}

	for {
		attrs, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			metrics.RecordObjectListing(err)
			l.log.Error("Failed to list objects", err, map[string]interface{}{
				"bucket": l.bucket,
				"prefix": prefix,
			})
			return []File{}
		}
		if strings.HasSuffix(attrs.Name, "/") {
			continue
		}
		files = append(files, File{
			Name: attrs.Name,
			URL:  PublicURL(l.baseURL, l.bucket, attrs.Name),
		})
	}

	metrics.RecordObjectListing(nil)
	l.log.Debug("Listed objects", map[string]interface{}{
		"prefix": prefix,
		"count":  len(files),
	})
	return files
}

// Close releases the underlying storage client.
func (l *GCSLister) Close() error {
	if l.client == nil {
		return nil
	}
	return l.client.Close()
}

// componentUnescaper restores the characters url.QueryEscape escapes but a
// URI component keeps literal.
var componentUnescaper = strings.NewReplacer(
	"+", "%20",
	"%21", "!",
	"%27", "'",
	"%28", "(",
	"%29", ")",
	"%2A", "*",
)

// PublicURL builds base/bucket/key with the whole key encoded as a single
// URI component, so "/" in the key becomes %2F.
func PublicURL(base, bucket, key string) string {
	return strings.TrimRight(base, "/") + "/" + bucket + "/" + componentUnescaper.Replace(url.QueryEscape(key))
}
