package fetcher

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"textinsight/internal/document"
	"textinsight/internal/domain"
)

const (
	defaultTimeout = 20 * time.Second
	maxBodySize    = 10 * 1024 * 1024

	userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) " +
		"AppleWebKit/537.36 (KHTML, like Gecko) Chrome/127.0.0.0 Safari/537.36"
)

// Waiter delays a request until its key may proceed.
type Waiter interface {
	Wait(ctx context.Context, key string) error
}

// Fetcher downloads pages over HTTP and parses them into Documents.
type Fetcher struct {
	client      *http.Client
	timeout     time.Duration
	limiter     Waiter
	readability bool
	log         *slog.Logger
}

type Option func(*Fetcher)

// WithHTTPClient replaces the default client. A nil client keeps the
// default.
func WithHTTPClient(client *http.Client) Option {
	return func(f *Fetcher) {
		f.client = client
	}
}

// WithTimeout sets the timeout of the default client. It has no effect on a
// client passed with WithHTTPClient.
func WithTimeout(timeout time.Duration) Option {
	return func(f *Fetcher) {
		if timeout > 0 {
			f.timeout = timeout
		}
	}
}

// WithHostLimiter makes every request wait on the limiter, keyed by host.
func WithHostLimiter(limiter Waiter) Option {
	return func(f *Fetcher) {
		f.limiter = limiter
	}
}

// WithReadability reduces each page to its main article.
func WithReadability(enabled bool) Option {
	return func(f *Fetcher) {
		f.readability = enabled
	}
}

func New(log *slog.Logger, opts ...Option) *Fetcher {
	f := &Fetcher{
		timeout: defaultTimeout,
		log:     log,
	}

	for _, opt := range opts {
		opt(f)
	}

	if f.client == nil {
		f.client = &http.Client{Timeout: f.timeout}
	}

	return f
}

// Fetch downloads pageURL and parses it. Failures to reach the page are
// returned as *domain.FetchError.
func (f *Fetcher) Fetch(
	ctx context.Context,
	pageURL string,
) (*domain.Document, error) {
	parsedURL, err := url.Parse(pageURL)
	if err != nil {
		return nil, &domain.FetchError{URL: pageURL, Err: err}
	}

	if f.limiter != nil {
		if err := f.limiter.Wait(ctx, parsedURL.Host); err != nil {
			return nil, &domain.FetchError{URL: pageURL, Err: err}
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, &domain.FetchError{URL: pageURL, Err: fmt.Errorf("create request: %w", err)}
	}

	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := f.client.Do(req) //nolint:gosec // URLs come from the configured search backend
	if err != nil {
		return nil, &domain.FetchError{URL: pageURL, Err: fmt.Errorf("do request: %w", err)}
	}
	defer func() {
		if err = resp.Body.Close(); err != nil {
			f.log.ErrorContext(ctx, "Failed to close response body",
				"error", err,
				"url", pageURL)
		}
	}()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, &domain.FetchError{URL: pageURL, StatusCode: resp.StatusCode}
	}

	var opts []document.Option
	if f.readability {
		opts = append(opts, document.WithReadability())
	}

	doc, err := document.Parse(io.LimitReader(resp.Body, maxBodySize), pageURL, opts...)
	if err != nil {
		return nil, fmt.Errorf("parse document (URL = %s): %w", pageURL, err)
	}

	f.log.DebugContext(ctx, "Fetched page",
		"url", pageURL,
		"title", doc.Title,
		"blocks", len(doc.Blocks))

	return doc, nil
}
