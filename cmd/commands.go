package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"textinsight/internal/bot"
	"textinsight/internal/config"
	"textinsight/internal/database"
	"textinsight/internal/domain"
	"textinsight/internal/scheduler"

	"github.com/urfave/cli/v2"
)

const (
	defaultHistoryLimit = 10
	historyTimeLayout   = "2006-01-02 15:04"
)

func askCommand(c *cli.Context) error {
	query := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
	if query == "" {
		return fmt.Errorf("ask: %w", domain.ErrInvalidQuery)
	}

	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	log := slog.Default()

	p, err := newPipeline(cfg, log)
	if err != nil {
		return err
	}

	db, err := database.New(ctx, cfg.DBPath, log)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer func() {
		if err = db.Close(); err != nil {
			log.ErrorContext(ctx, "Failed to close db",
				"error", err,
				"dbPath", cfg.DBPath)
		}
	}()

	results, err := p.Run(ctx, query)
	if err != nil {
		return fmt.Errorf("run query: %w", err)
	}

	saveRun(ctx, db, log, domain.Run{
		Query:     query,
		Strategy:  cfg.Summarizer,
		CreatedAt: time.Now(),
		Results:   results,
	})

	return printResults(c.App.Writer, results)
}

type runSaver interface {
	SaveRun(ctx context.Context, run domain.Run) (int64, error)
}

// saveRun stores the run for the history. A failure is logged and does not
// fail the command.
func saveRun(ctx context.Context, store runSaver, log *slog.Logger, run domain.Run) {
	runID, err := store.SaveRun(ctx, run)
	if err != nil {
		log.ErrorContext(ctx, "Failed to save run",
			"error", err,
			"query", run.Query)

		return
	}

	log.DebugContext(ctx, "Run is saved",
		"runID", runID)
}

func historyCommand(c *cli.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log := slog.Default()

	db, err := database.New(c.Context, cfg.DBPath, log)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer func() {
		if err = db.Close(); err != nil {
			log.ErrorContext(c.Context, "Failed to close db",
				"error", err,
				"dbPath", cfg.DBPath)
		}
	}()

	runs, err := db.RecentRuns(c.Context, c.Int("limit"))
	if err != nil {
		return fmt.Errorf("get recent runs: %w", err)
	}

	return printHistory(c.App.Writer, runs)
}

func serveCommand(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	if cfg.Token == "" {
		return errors.New("TOKEN is required by serve")
	}

	log := slog.Default()
	start := time.Now()

	ctx, cancel := context.WithCancel(c.Context)
	defer cancel()

	db, err := database.New(ctx, cfg.DBPath, log)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer func() {
		if err = db.Close(); err != nil {
			log.ErrorContext(ctx, "Failed to close db",
				"error", err,
				"dbPath", cfg.DBPath)
		}
	}()
	log.InfoContext(ctx, "DB is initialized",
		"dbPath", cfg.DBPath)

	p, err := newPipeline(cfg, log)
	if err != nil {
		return err
	}

	botInst, err := bot.New(cfg.Token, p, db, cfg.Summarizer, cfg.AllowedUsers, log)
	if err != nil {
		return fmt.Errorf("create bot: %w", err)
	}
	log.InfoContext(ctx, "Bot is initialized",
		"allowedUsersCount", len(cfg.AllowedUsers))

	if cfg.WatchlistPath != "" {
		watches, loadErr := scheduler.LoadWatchlist(cfg.WatchlistPath)
		if loadErr != nil {
			return fmt.Errorf("load watch list: %w", loadErr)
		}

		sched := scheduler.New(ctx, p, db, botInst, cfg.Summarizer, log)
		if err = sched.Start(watches); err != nil {
			return fmt.Errorf("start scheduler: %w", err)
		}
		defer sched.Stop()

		log.InfoContext(ctx, "Scheduler is started",
			"watches", len(watches),
			"timezone", scheduler.Timezone)
	}

	go func() {
		botInst.Start(ctx)
	}()
	log.InfoContext(ctx, "Bot is started",
		"updateTimeoutSeconds", bot.BotUpdateTimeout)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	sig := <-sigCh
	log.InfoContext(ctx, "Shutdown signal is received",
		"signal", sig.String())
	cancel()

	botInst.Stop()
	log.InfoContext(ctx, "Bot is stopped",
		"uptimeSeconds", time.Since(start).Seconds())

	return nil
}

func printResults(w io.Writer, results []domain.SummaryResult) error {
	if len(results) == 0 {
		_, err := fmt.Fprintln(w, "Nothing is found.")
		return err
	}

	for i, result := range results {
		if _, err := fmt.Fprintf(w, "[%d] %s\n%s\n\n", i+1, result.URL, strings.TrimSpace(result.Summary)); err != nil {
			return err
		}
	}

	return nil
}

func printHistory(w io.Writer, runs []domain.Run) error {
	if len(runs) == 0 {
		_, err := fmt.Fprintln(w, "History is empty.")
		return err
	}

	for _, run := range runs {
		if _, err := fmt.Fprintf(w, "#%d %s [%s] %q\n",
			run.ID,
			run.CreatedAt.UTC().Format(historyTimeLayout),
			run.Strategy,
			run.Query,
		); err != nil {
			return err
		}

		for _, result := range run.Results {
			if _, err := fmt.Fprintf(w, "    %s\n", result.URL); err != nil {
				return err
			}
		}
	}

	return nil
}
