package search

import (
	"context"
	"log/slog"
	"strings"

	"mvdan.cc/xurls/v2"
)

// TextSearcher searches a plain-text list of links, such as an exported
// bookmarks file. Each line holds one or more URLs and optional notes; the
// URLs of a line are returned when the line mentions a query word.
type TextSearcher struct {
	lines []string
	limit int
	log   *slog.Logger
}

func NewTextSearcher(
	text string,
	limit int,
	log *slog.Logger,
) *TextSearcher {
	return &TextSearcher{
		lines: strings.Split(text, "\n"),
		limit: limit,
		log:   log,
	}
}

func (s *TextSearcher) Search(
	ctx context.Context,
	query string,
) ([]string, error) {
	query, err := checkQuery(query)
	if err != nil {
		return nil, err
	}

	urlRe := xurls.Strict()

	var urls []string
	for _, line := range s.lines {
		if !matchesAny(line, query) {
			continue
		}

		urls = append(urls, urlRe.FindAllString(line, -1)...)
	}

	urls = Limit(urls, s.limit)

	s.log.DebugContext(ctx, "Text search completed",
		"query", query,
		"lines", len(s.lines),
		"results", len(urls))

	return urls, nil
}
