package search

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/mmcdole/gofeed"
)

// FeedSearcher looks up a query in the items of one RSS or Atom feed. An item
// matches when its title or description contains a query word.
type FeedSearcher struct {
	feedURL   string
	limit     int
	libParser *gofeed.Parser
	log       *slog.Logger
}

func NewFeedSearcher(
	feedURL string,
	limit int,
	log *slog.Logger,
) (*FeedSearcher, error) {
	feedURL = strings.TrimSpace(feedURL)
	if feedURL == "" {
		return nil, errors.New("feed URL is empty")
	}

	if _, err := url.Parse(feedURL); err != nil {
		return nil, fmt.Errorf("parse URL: %w", err)
	}

	return &FeedSearcher{
		feedURL:   feedURL,
		limit:     limit,
		libParser: gofeed.NewParser(),
		log:       log,
	}, nil
}

func (s *FeedSearcher) Search(
	ctx context.Context,
	query string,
) ([]string, error) {
	query, err := checkQuery(query)
	if err != nil {
		return nil, err
	}

	parsed, err := s.libParser.ParseURLWithContext(s.feedURL, ctx)
	if err != nil {
		return nil, fmt.Errorf("parse feed (URL = %s): %w", s.feedURL, err)
	}

	var urls []string
	for _, item := range parsed.Items {
		if item == nil {
			continue
		}

		link := strings.TrimSpace(item.Link)
		if link == "" {
			s.log.WarnContext(ctx, "Skipping feed item with empty link",
				"feedURL", s.feedURL,
				"title", item.Title)

			continue
		}

		if matchesAny(item.Title+" "+item.Description, query) {
			urls = append(urls, link)
		}
	}

	return Limit(urls, s.limit), nil
}
