package db

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

const (
	RunKindScrape  = "scrape"
	RunKindRewrite = "rewrite"

	RunRunning   = "running"
	RunCompleted = "completed"
	RunFailed    = "failed"

	ItemSaved   = "saved"
	ItemSkipped = "skipped"
	ItemFailed  = "failed"
)

// ErrRunNotFound is returned when a run ID has no row.
var ErrRunNotFound = errors.New("run not found")

// Recorder is the part of DB the batch drivers write to.
type Recorder interface {
	StartRun(kind string) (int64, error)
	RecordItem(item RunItem) error
	FinishRun(runID int64, runErr error) error
}

// Run summarises one invocation; the counts are derived from its items.
type Run struct {
	RunID        int64
	Kind         string
	Status       string
	StartedAt    time.Time
	FinishedAt   *time.Time
	Error        string
	ItemCount    int
	SavedCount   int
	SkippedCount int
	FailedCount  int
}

// RunItem is one processed link or document.
type RunItem struct {
	RunID       int64
	Source      string
	Target      string
	Title       string
	Language    string
	ContentHash string
	Status      string
	Error       string
	CreatedAt   time.Time
}

func now() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

// NewNullString converts a string to sql.NullString (empty string = NULL)
func NewNullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{Valid: false}
	}
	return sql.NullString{String: s, Valid: true}
}

// StartRun inserts a run in the running state and returns its ID.
func (db *DB) StartRun(kind string) (int64, error) {
	result, err := db.Exec(`INSERT INTO runs (kind, status, started_at) VALUES (?, ?, ?)`,
		kind, RunRunning, now())
	if err != nil {
		return 0, fmt.Errorf("failed to create run: %w", err)
	}

	runID, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get run ID: %w", err)
	}
	return runID, nil
}

// RecordItem appends an item to its run.
func (db *DB) RecordItem(item RunItem) error {
	_, err := db.Exec(`
		INSERT INTO run_items (run_id, source, target, title, language, content_hash, status, error, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, item.RunID, item.Source, NewNullString(item.Target), NewNullString(item.Title),
		NewNullString(item.Language), NewNullString(item.ContentHash), item.Status,
		NewNullString(item.Error), now())
	if err != nil {
		return fmt.Errorf("failed to record item %s: %w", item.Source, err)
	}
	return nil
}

// FinishRun marks the run completed, or failed when runErr is non-nil.
func (db *DB) FinishRun(runID int64, runErr error) error {
	status := RunCompleted
	var errMsg string
	if runErr != nil {
		status = RunFailed
		errMsg = runErr.Error()
	}

	result, err := db.Exec(`UPDATE runs SET status = ?, finished_at = ?, error = ? WHERE run_id = ?`,
		status, now(), NewNullString(errMsg), runID)
	if err != nil {
		return fmt.Errorf("failed to finish run: %w", err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: %d", ErrRunNotFound, runID)
	}
	return nil
}

const runColumns = `
	SELECT r.run_id, r.kind, r.status, r.started_at, r.finished_at, COALESCE(r.error, ''),
	       COUNT(i.item_id),
	       COALESCE(SUM(CASE WHEN i.status = 'saved' THEN 1 ELSE 0 END), 0),
	       COALESCE(SUM(CASE WHEN i.status = 'skipped' THEN 1 ELSE 0 END), 0),
	       COALESCE(SUM(CASE WHEN i.status = 'failed' THEN 1 ELSE 0 END), 0)
	FROM runs r
	LEFT JOIN run_items i ON i.run_id = r.run_id
`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*Run, error) {
	var (
		r          Run
		startedAt  string
		finishedAt sql.NullString
	)
	if err := row.Scan(&r.RunID, &r.Kind, &r.Status, &startedAt, &finishedAt, &r.Error,
		&r.ItemCount, &r.SavedCount, &r.SkippedCount, &r.FailedCount); err != nil {
		return nil, err
	}

	r.StartedAt = parseTime(startedAt)
	if finishedAt.Valid {
		t := parseTime(finishedAt.String)
		r.FinishedAt = &t
	}
	return &r, nil
}

// GetRunByID returns a single run with its item counts.
func (db *DB) GetRunByID(runID int64) (*Run, error) {
	row := db.QueryRow(runColumns+` WHERE r.run_id = ? GROUP BY r.run_id`, runID)
	r, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %d", ErrRunNotFound, runID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	return r, nil
}

// ListRuns returns the most recent runs first. limit <= 0 means no limit.
func (db *DB) ListRuns(limit int) ([]Run, error) {
	if limit <= 0 {
		limit = -1
	}

	rows, err := db.Query(runColumns+` GROUP BY r.run_id ORDER BY r.run_id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, *r)
	}
	return runs, rows.Err()
}

// LatestRunID returns the newest run's ID.
func (db *DB) LatestRunID() (int64, error) {
	var runID int64
	err := db.QueryRow(`SELECT run_id FROM runs ORDER BY run_id DESC LIMIT 1`).Scan(&runID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrRunNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("failed to get latest run: %w", err)
	}
	return runID, nil
}

// GetRunItems returns a run's items in the order they were recorded.
func (db *DB) GetRunItems(runID int64) ([]RunItem, error) {
	rows, err := db.Query(`
		SELECT run_id, source, COALESCE(target, ''), COALESCE(title, ''), COALESCE(language, ''),
		       COALESCE(content_hash, ''), status, COALESCE(error, ''), created_at
		FROM run_items
		WHERE run_id = ?
		ORDER BY item_id
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to get run items: %w", err)
	}
	defer rows.Close()

	var items []RunItem
	for rows.Next() {
		var it RunItem
		var createdAt string
		if err := rows.Scan(&it.RunID, &it.Source, &it.Target, &it.Title, &it.Language,
			&it.ContentHash, &it.Status, &it.Error, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan run item: %w", err)
		}
		it.CreatedAt = parseTime(createdAt)
		items = append(items, it)
	}
	return items, rows.Err()
}
