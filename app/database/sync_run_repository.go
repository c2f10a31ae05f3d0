package database

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

var _ SyncRunRepository = (*SyncRunRepositoryImpl)(nil)

type SyncRunRepositoryImpl struct {
	db *DB
}

func NewSyncRunRepository(db *DB) *SyncRunRepositoryImpl {
	return &SyncRunRepositoryImpl{db: db}
}

// RecordRun inserts or replaces the row for a sync run. Called once when the
// run starts and again when it finishes.
func (r *SyncRunRepositoryImpl) RecordRun(run SyncRun) error {
	errs, err := json.Marshal(emptyIfNil(run.Errors))
	if err != nil {
		return fmt.Errorf("failed to encode sync errors: %w", err)
	}

	var finishedAt interface{}
	if run.FinishedAt != nil {
		finishedAt = run.FinishedAt.UTC().Format(timeLayout)
	}

	_, err = r.db.Exec(`
		INSERT INTO sync_runs (id, started_at, finished_at, fetched, transformed, scored, saved, errors, status)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			finished_at = excluded.finished_at,
			fetched = excluded.fetched,
			transformed = excluded.transformed,
			scored = excluded.scored,
			saved = excluded.saved,
			errors = excluded.errors,
			status = excluded.status
	`, run.ID, run.StartedAt.UTC().Format(timeLayout), finishedAt,
		run.Fetched, run.Transformed, run.Scored, run.Saved, string(errs), run.Status)

	if err != nil {
		return fmt.Errorf("failed to record sync run: %w", err)
	}
	return nil
}

func (r *SyncRunRepositoryImpl) GetLatestRun() (*SyncRun, error) {
	row := r.db.QueryRow(`
		SELECT id, started_at, finished_at, fetched, transformed, scored, saved, errors, status
		FROM sync_runs
		ORDER BY started_at DESC
		LIMIT 1`)

	var run SyncRun
	var startedAt string
	var finishedAt sql.NullString
	var errs string

	err := row.Scan(&run.ID, &startedAt, &finishedAt, &run.Fetched, &run.Transformed,
		&run.Scored, &run.Saved, &errs, &run.Status)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest sync run: %w", err)
	}

	if run.StartedAt, err = time.Parse(timeLayout, startedAt); err != nil {
		return nil, fmt.Errorf("failed to parse started_at: %w", err)
	}
	if finishedAt.Valid {
		t, err := time.Parse(timeLayout, finishedAt.String)
		if err != nil {
			return nil, fmt.Errorf("failed to parse finished_at: %w", err)
		}
		run.FinishedAt = &t
	}
	if err := json.Unmarshal([]byte(errs), &run.Errors); err != nil {
		return nil, fmt.Errorf("failed to decode sync errors: %w", err)
	}

	return &run, nil
}
