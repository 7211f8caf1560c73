package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"textinsight/internal/domain"
	"textinsight/internal/search"
	"textinsight/internal/summarizer"
)

// Fetcher turns a URL into a Document.
type Fetcher interface {
	Fetch(ctx context.Context, pageURL string) (*domain.Document, error)
}

// Pipeline finds pages for a query and extracts the relevant passage of
// each one.
type Pipeline struct {
	searcher   search.Searcher
	fetcher    Fetcher
	summarizer summarizer.Summarizer
	log        *slog.Logger
}

type Option func(*Pipeline)

func WithLogger(log *slog.Logger) Option {
	return func(p *Pipeline) {
		if log != nil {
			p.log = log
		}
	}
}

func New(
	s search.Searcher,
	f Fetcher,
	sum summarizer.Summarizer,
	opts ...Option,
) *Pipeline {
	p := &Pipeline{
		searcher:   s,
		fetcher:    f,
		summarizer: sum,
		log:        slog.New(slog.DiscardHandler),
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// Run searches for the query, then fetches and summarizes every URL in the
// order the searcher returned them. The first failure aborts the run.
func (p *Pipeline) Run(
	ctx context.Context,
	query string,
) ([]domain.SummaryResult, error) {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return nil, domain.ErrInvalidQuery
	}

	urls, err := p.searcher.Search(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}

	p.log.InfoContext(ctx, "Search completed",
		"query", query,
		"urls", len(urls))

	results := make([]domain.SummaryResult, 0, len(urls))

	for _, u := range urls {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		doc, err := p.fetcher.Fetch(ctx, u)
		if err != nil {
			return nil, fmt.Errorf("fetch (URL = %s): %w", u, err)
		}

		summary, err := p.summarizer.Summarize(ctx, doc, query)
		if err != nil {
			return nil, fmt.Errorf("summarize (URL = %s): %w", u, err)
		}

		results = append(results, domain.SummaryResult{Summary: summary, URL: u})
	}

	return results, nil
}
