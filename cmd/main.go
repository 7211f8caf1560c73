package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"textinsight/internal/config"

	"github.com/urfave/cli/v2"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		slog.Error("Command failed",
			"error", err)

		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "textinsight",
		Usage: "Find pages about a query and extract the passage of each that answers it",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
			&cli.StringFlag{
				Name:    "summarizer",
				Aliases: []string{"s"},
				Usage:   "Override SUMMARIZER (cosine, keyword, openai)",
			},
			&cli.StringFlag{
				Name:    "backend",
				Aliases: []string{"b"},
				Usage:   "Override SEARCH_BACKEND (searxng, feed, text)",
			},
			&cli.IntFlag{
				Name:    "results",
				Aliases: []string{"n"},
				Usage:   "Override SEARCH_RESULTS",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:      "ask",
				Usage:     "Answer a query and store the results",
				ArgsUsage: "<query>",
				Action:    askCommand,
			},
			{
				Name:   "history",
				Usage:  "List recent queries with their results",
				Action: historyCommand,
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Number of runs to show",
						Value: defaultHistoryLimit,
					},
				},
			},
			{
				Name:   "serve",
				Usage:  "Run the Telegram bot and the watch list scheduler",
				Action: serveCommand,
			},
		},
	}
}

func setupLogger(c *cli.Context) error {
	var level slog.Level
	switch levelStr := strings.ToLower(c.String("log-level")); levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	log := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(log)

	return nil
}

// loadConfig reads the environment and applies the global flag overrides.
func loadConfig(c *cli.Context) (config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, err
	}

	if s := strings.TrimSpace(c.String("summarizer")); s != "" {
		cfg.Summarizer = strings.ToLower(s)
	}
	if b := strings.TrimSpace(c.String("backend")); b != "" {
		cfg.SearchBackend = strings.ToLower(b)
	}
	if c.IsSet("results") {
		cfg.SearchResults = c.Int("results")
	}

	if err = cfg.Validate(); err != nil {
		return config.Config{}, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}
