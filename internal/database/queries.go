package database

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"textinsight/internal/domain"
)

const defaultRecentRuns = 10

// SaveRun stores a run with its results in one transaction and returns the
// new run ID.
func (d *Database) SaveRun(ctx context.Context, run domain.Run) (int64, error) {
	query := strings.TrimSpace(run.Query)
	if query == "" {
		return 0, errors.New("run query is empty")
	}

	createdAt := run.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}

	res, err := tx.ExecContext(ctx,
		"insert into runs (query, strategy, created_at) values (?, ?, ?)",
		query, run.Strategy, createdAt.Unix())
	if err != nil {
		return 0, errors.Join(fmt.Errorf("insert run: %w", err), tx.Rollback())
	}

	runID, err := res.LastInsertId()
	if err != nil {
		return 0, errors.Join(fmt.Errorf("get run ID: %w", err), tx.Rollback())
	}

	for i, result := range run.Results {
		_, err = tx.ExecContext(ctx,
			"insert into results (run_id, position, url, summary) values (?, ?, ?, ?)",
			runID, i, result.URL, result.Summary)
		if err != nil {
			return 0, errors.Join(fmt.Errorf("insert result: %w", err), tx.Rollback())
		}
	}

	if err = tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit transaction: %w", err)
	}

	return runID, nil
}

// RecentRuns returns up to limit runs, newest first, each with its results
// in their original order.
func (d *Database) RecentRuns(ctx context.Context, limit int) ([]domain.Run, error) {
	if limit <= 0 {
		limit = defaultRecentRuns
	}

	runs, err := d.runs(ctx, limit)
	if err != nil {
		return nil, err
	}

	for i := range runs {
		results, resultsErr := d.runResults(ctx, runs[i].ID)
		if resultsErr != nil {
			return nil, resultsErr
		}

		runs[i].Results = results
	}

	return runs, nil
}

func (d *Database) runs(ctx context.Context, limit int) ([]domain.Run, error) {
	query := "select id, query, strategy, created_at from runs order by id desc limit ?"

	rows, err := d.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("execute query: %w", err)
	}
	defer func() {
		if err = rows.Close(); err != nil {
			d.log.ErrorContext(ctx, "Failed to close rows",
				"error", err,
				"operation", "runs")
		}
	}()

	var runs []domain.Run
	for rows.Next() {
		var (
			r         domain.Run
			createdAt int64
		)
		if err = rows.Scan(&r.ID, &r.Query, &r.Strategy, &createdAt); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}

		r.CreatedAt = time.Unix(createdAt, 0)
		runs = append(runs, r)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}

	return runs, nil
}

func (d *Database) runResults(ctx context.Context, runID int64) ([]domain.SummaryResult, error) {
	query := "select url, summary from results where run_id = ? order by position"

	rows, err := d.db.QueryContext(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("execute query: %w", err)
	}
	defer func() {
		if err = rows.Close(); err != nil {
			d.log.ErrorContext(ctx, "Failed to close rows",
				"error", err,
				"runID", runID,
				"operation", "runResults")
		}
	}()

	var results []domain.SummaryResult
	for rows.Next() {
		var r domain.SummaryResult
		if err = rows.Scan(&r.URL, &r.Summary); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}

		results = append(results, r)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}

	return results, nil
}
