package config_test

import (
	"testing"
	"time"

	"textinsight/internal/config"
	"textinsight/internal/search"
	"textinsight/internal/summarizer"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "db.sqlite", cfg.DBPath)
	assert.Equal(t, summarizer.NameCosine, cfg.Summarizer)
	assert.Equal(t, 5, cfg.LeadingContextWords)
	assert.Equal(t, 5, cfg.TrailingContextWords)
	assert.Equal(t, search.NameSearXNG, cfg.SearchBackend)
	assert.Equal(t, "http://localhost:8080", cfg.SearXNGURL)
	assert.Equal(t, 5, cfg.SearchResults)
	assert.Equal(t, 20*time.Second, cfg.FetchTimeout)
	assert.Equal(t, time.Second, cfg.FetchHostInterval)
	assert.False(t, cfg.FetchReadability)
	require.NoError(t, cfg.Validate())
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("TOKEN", " bot-token ")
	t.Setenv("ALLOWED_USERS", "1,2,3")
	t.Setenv("SUMMARIZER", " Keyword ")
	t.Setenv("LEADING_CONTEXT_WORDS", "3")
	t.Setenv("SEARCH_BACKEND", "feed")
	t.Setenv("SEARCH_FEED_URL", "https://example.com/rss")
	t.Setenv("SEARCH_RESULTS", "8")
	t.Setenv("FETCH_TIMEOUT", "5s")
	t.Setenv("FETCH_READABILITY", "true")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "bot-token", cfg.Token)
	assert.Equal(t, []int64{1, 2, 3}, cfg.AllowedUsers)
	assert.Equal(t, summarizer.NameKeyword, cfg.Summarizer)
	assert.Equal(t, 3, cfg.LeadingContextWords)
	assert.Equal(t, search.NameFeed, cfg.SearchBackend)
	assert.Equal(t, 8, cfg.SearchResults)
	assert.Equal(t, 5*time.Second, cfg.FetchTimeout)
	assert.True(t, cfg.FetchReadability)
	require.NoError(t, cfg.Validate())
}

func TestLoadRejectsMalformedValues(t *testing.T) {
	t.Setenv("ALLOWED_USERS", "1,abc")

	_, err := config.Load()
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() config.Config {
		cfg, err := config.Load()
		require.NoError(t, err)
		return cfg
	}

	tests := map[string]func(*config.Config){
		"unknown summarizer":   func(c *config.Config) { c.Summarizer = "sentence" },
		"openai without key":   func(c *config.Config) { c.Summarizer = summarizer.NameOpenAI },
		"unknown backend":      func(c *config.Config) { c.SearchBackend = "google" },
		"feed without URL":     func(c *config.Config) { c.SearchBackend = search.NameFeed },
		"text without path":    func(c *config.Config) { c.SearchBackend = search.NameText },
		"non-positive results": func(c *config.Config) { c.SearchResults = 0 },
		"negative context":     func(c *config.Config) { c.TrailingContextWords = -1 },
		"non-positive timeout": func(c *config.Config) { c.FetchTimeout = 0 },
		"empty database path":  func(c *config.Config) { c.DBPath = "" },
		"searxng without URL":  func(c *config.Config) { c.SearXNGURL = "" },
	}

	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			cfg := valid()
			mutate(&cfg)

			require.Error(t, cfg.Validate())
		})
	}
}

func TestValidateSentinels(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)

	cfg.Summarizer = "sentence"
	cfg.SearchBackend = "google"

	err = cfg.Validate()
	assert.ErrorIs(t, err, summarizer.ErrUnknownStrategy)
	assert.ErrorIs(t, err, search.ErrUnknownBackend)
}
