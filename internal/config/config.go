package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"textinsight/internal/search"
	"textinsight/internal/summarizer"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	Token        string  `env:"TOKEN"`
	AllowedUsers []int64 `env:"ALLOWED_USERS"`
	DBPath       string  `env:"DB_PATH"                 envDefault:"db.sqlite"`
	OpenAIAPIKey string  `env:"OPENAI_API_KEY"`

	Summarizer           string `env:"SUMMARIZER"             envDefault:"cosine"`
	LeadingContextWords  int    `env:"LEADING_CONTEXT_WORDS"  envDefault:"5"`
	TrailingContextWords int    `env:"TRAILING_CONTEXT_WORDS" envDefault:"5"`

	SearchBackend  string `env:"SEARCH_BACKEND"   envDefault:"searxng"`
	SearXNGURL     string `env:"SEARXNG_URL"      envDefault:"http://localhost:8080"`
	SearchFeedURL  string `env:"SEARCH_FEED_URL"`
	SearchTextPath string `env:"SEARCH_TEXT_PATH"`
	SearchResults  int    `env:"SEARCH_RESULTS"   envDefault:"5"`

	FetchTimeout      time.Duration `env:"FETCH_TIMEOUT"       envDefault:"20s"`
	FetchHostInterval time.Duration `env:"FETCH_HOST_INTERVAL" envDefault:"1s"`
	FetchReadability  bool          `env:"FETCH_READABILITY"   envDefault:"false"`

	WatchlistPath string `env:"WATCHLIST_PATH"`
}

// Load reads the configuration from the environment.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	cfg.normalize()

	return cfg, nil
}

func (c *Config) normalize() {
	c.Token = strings.TrimSpace(c.Token)
	c.DBPath = strings.TrimSpace(c.DBPath)
	c.OpenAIAPIKey = strings.TrimSpace(c.OpenAIAPIKey)
	c.Summarizer = strings.ToLower(strings.TrimSpace(c.Summarizer))
	c.SearchBackend = strings.ToLower(strings.TrimSpace(c.SearchBackend))
	c.SearXNGURL = strings.TrimSpace(c.SearXNGURL)
	c.SearchFeedURL = strings.TrimSpace(c.SearchFeedURL)
	c.SearchTextPath = strings.TrimSpace(c.SearchTextPath)
	c.WatchlistPath = strings.TrimSpace(c.WatchlistPath)
}

// Validate reports every setting that cannot work, joined into one error.
func (c Config) Validate() error {
	var errs []error

	switch c.Summarizer {
	case summarizer.NameCosine, summarizer.NameKeyword:
	case summarizer.NameOpenAI:
		if c.OpenAIAPIKey == "" {
			errs = append(errs, errors.New("OPENAI_API_KEY is required by the openai summarizer"))
		}
	default:
		errs = append(errs, fmt.Errorf("%w: %q", summarizer.ErrUnknownStrategy, c.Summarizer))
	}

	switch c.SearchBackend {
	case search.NameSearXNG:
		if c.SearXNGURL == "" {
			errs = append(errs, errors.New("SEARXNG_URL is required by the searxng backend"))
		}
	case search.NameFeed:
		if c.SearchFeedURL == "" {
			errs = append(errs, errors.New("SEARCH_FEED_URL is required by the feed backend"))
		}
	case search.NameText:
		if c.SearchTextPath == "" {
			errs = append(errs, errors.New("SEARCH_TEXT_PATH is required by the text backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("%w: %q", search.ErrUnknownBackend, c.SearchBackend))
	}

	if c.SearchResults <= 0 {
		errs = append(errs, fmt.Errorf("SEARCH_RESULTS must be positive, got %d", c.SearchResults))
	}

	if c.LeadingContextWords < 0 || c.TrailingContextWords < 0 {
		errs = append(errs, errors.New("context word counts must not be negative"))
	}

	if c.FetchTimeout <= 0 {
		errs = append(errs, fmt.Errorf("FETCH_TIMEOUT must be positive, got %s", c.FetchTimeout))
	}

	if c.DBPath == "" {
		errs = append(errs, errors.New("DB_PATH is empty"))
	}

	return errors.Join(errs...)
}
