package search

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"textinsight/internal/domain"
)

const (
	NameSearXNG = "searxng"
	NameFeed    = "feed"
	NameText    = "text"

	DefaultLimit = 5
)

// Searcher returns candidate URLs for a query, most relevant first.
type Searcher interface {
	Search(ctx context.Context, query string) ([]string, error)
}

// Config selects and configures a backend for New.
type Config struct {
	Backend    string
	Limit      int
	SearXNGURL string
	FeedURL    string
	Text       string
}

// ErrUnknownBackend is returned by New for unsupported backend names.
var ErrUnknownBackend = errors.New("unknown search backend")

// New builds the backend named in cfg.
func New(cfg Config, log *slog.Logger) (Searcher, error) {
	switch cfg.Backend {
	case NameSearXNG:
		return NewSearXNGSearcher(cfg.SearXNGURL, cfg.Limit, log), nil
	case NameFeed:
		return NewFeedSearcher(cfg.FeedURL, cfg.Limit, log)
	case NameText:
		return NewTextSearcher(cfg.Text, cfg.Limit, log), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, cfg.Backend)
	}
}

// Limit returns the first n distinct non-blank URLs. A non-positive n means
// DefaultLimit.
func Limit(urls []string, n int) []string {
	if n <= 0 {
		n = DefaultLimit
	}

	limited := make([]string, 0, min(n, len(urls)))
	seen := make(map[string]struct{}, len(urls))

	for _, u := range urls {
		if len(limited) == n {
			break
		}

		u = strings.TrimSpace(u)
		if u == "" {
			continue
		}
		if _, ok := seen[u]; ok {
			continue
		}

		limited = append(limited, u)
		seen[u] = struct{}{}
	}

	return limited
}

func checkQuery(query string) (string, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return "", domain.ErrInvalidQuery
	}

	return query, nil
}

// matchesAny reports whether text contains any of the query's words,
// ignoring case.
func matchesAny(text, query string) bool {
	text = strings.ToLower(text)

	for _, term := range strings.Fields(strings.ToLower(query)) {
		if strings.Contains(text, term) {
			return true
		}
	}

	return false
}
