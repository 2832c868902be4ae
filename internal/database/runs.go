package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
)

// ImportRun is one recorded import run as exposed by the ops API.
type ImportRun struct {
	ID          string     `json:"id"`
	Source      string     `json:"source"`
	Status      string     `json:"status"`
	FileCount   int        `json:"file_count"`
	RecordCount int        `json:"record_count"`
	ErrorCount  int        `json:"error_count"`
	StartedAt   time.Time  `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// ListRuns returns the most recent import runs, newest first.
func ListRuns(ctx context.Context, limit int) ([]ImportRun, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := Pool().Query(ctx, `
		SELECT id, source, status,
		       COALESCE(file_count, 0), COALESCE(record_count, 0), COALESCE(error_count, 0),
		       started_at, completed_at
		FROM import_runs
		ORDER BY started_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("error querying import runs: %w", err)
	}
	defer rows.Close()

	var runs []ImportRun
	for rows.Next() {
		var r ImportRun
		if err := rows.Scan(&r.ID, &r.Source, &r.Status, &r.FileCount,
			&r.RecordCount, &r.ErrorCount, &r.StartedAt, &r.CompletedAt); err != nil {
			return nil, fmt.Errorf("error scanning import run: %w", err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// GetRun returns a single import run by id, or pgx.ErrNoRows.
func GetRun(ctx context.Context, id string) (*ImportRun, error) {
	var r ImportRun
	err := Pool().QueryRow(ctx, `
		SELECT id, source, status,
		       COALESCE(file_count, 0), COALESCE(record_count, 0), COALESCE(error_count, 0),
		       started_at, completed_at
		FROM import_runs
		WHERE id = $1
	`, id).Scan(&r.ID, &r.Source, &r.Status, &r.FileCount,
		&r.RecordCount, &r.ErrorCount, &r.StartedAt, &r.CompletedAt)
	if err == pgx.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("error querying import run: %w", err)
	}
	return &r, nil
}
