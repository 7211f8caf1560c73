package main

import (
	"fmt"
	"log/slog"
	"os"

	"textinsight/internal/config"
	"textinsight/internal/fetcher"
	"textinsight/internal/pipeline"
	"textinsight/internal/ratelimiter"
	"textinsight/internal/search"
	"textinsight/internal/summarizer"
)

func newPipeline(cfg config.Config, log *slog.Logger) (*pipeline.Pipeline, error) {
	var text string
	if cfg.SearchBackend == search.NameText {
		data, err := os.ReadFile(cfg.SearchTextPath)
		if err != nil {
			return nil, fmt.Errorf("read search text: %w", err)
		}

		text = string(data)
	}

	searcher, err := search.New(search.Config{
		Backend:    cfg.SearchBackend,
		Limit:      cfg.SearchResults,
		SearXNGURL: cfg.SearXNGURL,
		FeedURL:    cfg.SearchFeedURL,
		Text:       text,
	}, log)
	if err != nil {
		return nil, fmt.Errorf("create searcher: %w", err)
	}

	s, err := summarizer.New(summarizer.Config{
		Name:                 cfg.Summarizer,
		LeadingContextWords:  cfg.LeadingContextWords,
		TrailingContextWords: cfg.TrailingContextWords,
		OpenAIAPIKey:         cfg.OpenAIAPIKey,
	})
	if err != nil {
		return nil, fmt.Errorf("create summarizer: %w", err)
	}

	f := fetcher.New(log,
		fetcher.WithTimeout(cfg.FetchTimeout),
		fetcher.WithHostLimiter(ratelimiter.New(cfg.FetchHostInterval, log)),
		fetcher.WithReadability(cfg.FetchReadability),
	)

	log.Info("Pipeline is initialized",
		"summarizer", cfg.Summarizer,
		"searchBackend", cfg.SearchBackend,
		"searchResults", cfg.SearchResults,
		"readability", cfg.FetchReadability)

	return pipeline.New(searcher, f, s, pipeline.WithLogger(log)), nil
}
