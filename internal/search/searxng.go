package search

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

const (
	searxngClientTimeout = 15 * time.Second
	maxSearchBodySize    = 512 * 1024
)

type searxngResponse struct {
	Results []struct {
		Title   string `json:"title"`
		URL     string `json:"url"`
		Content string `json:"content"`
	} `json:"results"`
}

// SearXNGSearcher searches the web through a SearXNG instance's JSON API.
type SearXNGSearcher struct {
	client      *http.Client
	instanceURL string
	limit       int
	log         *slog.Logger
}

func NewSearXNGSearcher(
	instanceURL string,
	limit int,
	log *slog.Logger,
) *SearXNGSearcher {
	return &SearXNGSearcher{
		client:      &http.Client{Timeout: searxngClientTimeout},
		instanceURL: strings.TrimRight(strings.TrimSpace(instanceURL), "/"),
		limit:       limit,
		log:         log,
	}
}

func (s *SearXNGSearcher) Search(
	ctx context.Context,
	query string,
) ([]string, error) {
	query, err := checkQuery(query)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.instanceURL+"/search", nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	q := req.URL.Query()
	q.Set("q", query)
	q.Set("format", "json")
	q.Set("pageno", "1")
	req.URL.RawQuery = q.Encode()
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			s.log.ErrorContext(ctx, "Failed to close response body",
				"error", closeErr)
		}
	}()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxSearchBodySize))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	var parsed searxngResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}

	urls := make([]string, 0, len(parsed.Results))
	for _, r := range parsed.Results {
		urls = append(urls, r.URL)
	}
	urls = Limit(urls, s.limit)

	s.log.DebugContext(ctx, "SearXNG search completed",
		"query", query,
		"results", len(urls))

	return urls, nil
}
