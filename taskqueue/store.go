package taskqueue

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// ErrNotFound is returned by GetByID when no task has the given id.
var ErrNotFound = errors.New("task not found")

const schemaSQL = `
CREATE TABLE IF NOT EXISTS tasks (
    id          VARCHAR(64) PRIMARY KEY,
    question    TEXT        NOT NULL,
    status      VARCHAR(16) NOT NULL,
    result      TEXT        NULL,
    error_msg   TEXT        NULL,
    created_at  DATETIME    NOT NULL,
    started_at  DATETIME    NULL,
    finished_at DATETIME    NULL
);
`

// Store persists task lifecycle records. Implementations must be safe
// for concurrent use across the api and worker processes.
type Store interface {
	InsertPending(ctx context.Context, rec TaskRecord) error
	MarkStarted(ctx context.Context, taskID string, startedAt time.Time) error
	MarkSuccess(ctx context.Context, taskID string, result string, finishedAt time.Time) error
	MarkFailure(ctx context.Context, taskID string, errorMsg string, finishedAt time.Time) error
	GetByID(ctx context.Context, taskID string) (*TaskRecord, error)
	Close() error
}

// SQLStore implements [Store] on sqlite.
type SQLStore struct {
	db *sql.DB
}

// OpenSQLStore opens the sqlite database at dsn, creating the task
// table when missing.
func OpenSQLStore(dsn string) (*SQLStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("fail to open task store: %w", err)
	}
	// sqlite supports a single writer
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("fail to create task table: %w", err)
	}
	return &SQLStore{db: db}, nil
}

// InsertPending implements [Store].
func (s *SQLStore) InsertPending(ctx context.Context, rec TaskRecord) error {
	query := `INSERT INTO tasks (id, question, status, created_at) VALUES (?, ?, ?, ?)`
	if _, err := s.db.ExecContext(ctx, query, rec.ID, rec.Question, string(StatusPending), rec.CreatedAt.UTC()); err != nil {
		return fmt.Errorf("fail to insert task: %w", err)
	}
	return nil
}

// MarkStarted implements [Store]. Only started_at is recorded; the
// status stays PENDING until a terminal mark.
func (s *SQLStore) MarkStarted(ctx context.Context, taskID string, startedAt time.Time) error {
	query := `UPDATE tasks SET started_at = ? WHERE id = ?`
	if _, err := s.db.ExecContext(ctx, query, startedAt.UTC(), taskID); err != nil {
		return fmt.Errorf("fail to mark task started: %w", err)
	}
	return nil
}

// MarkSuccess implements [Store].
func (s *SQLStore) MarkSuccess(ctx context.Context, taskID string, result string, finishedAt time.Time) error {
	query := `UPDATE tasks SET status = ?, result = ?, finished_at = ? WHERE id = ?`
	if _, err := s.db.ExecContext(ctx, query, string(StatusSuccess), result, finishedAt.UTC(), taskID); err != nil {
		return fmt.Errorf("fail to mark task succeeded: %w", err)
	}
	return nil
}

// MarkFailure implements [Store].
func (s *SQLStore) MarkFailure(ctx context.Context, taskID string, errorMsg string, finishedAt time.Time) error {
	query := `UPDATE tasks SET status = ?, error_msg = ?, finished_at = ? WHERE id = ?`
	if _, err := s.db.ExecContext(ctx, query, string(StatusFailure), errorMsg, finishedAt.UTC(), taskID); err != nil {
		return fmt.Errorf("fail to mark task failed: %w", err)
	}
	return nil
}

// GetByID implements [Store].
func (s *SQLStore) GetByID(ctx context.Context, taskID string) (*TaskRecord, error) {
	query := `SELECT id, question, status, result, error_msg, created_at, started_at, finished_at FROM tasks WHERE id = ?`
	row := s.db.QueryRowContext(ctx, query, taskID)

	rec := TaskRecord{}
	var status string
	var result, errorMsg sql.NullString
	var startedAt, finishedAt sql.NullTime
	err := row.Scan(&rec.ID, &rec.Question, &status, &result, &errorMsg, &rec.CreatedAt, &startedAt, &finishedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("fail to get task: %w", err)
	}

	rec.Status = Status(status)
	if result.Valid {
		v := result.String
		rec.Result = &v
	}
	if errorMsg.Valid {
		v := errorMsg.String
		rec.Error = &v
	}
	if startedAt.Valid {
		t := startedAt.Time
		rec.StartedAt = &t
	}
	if finishedAt.Valid {
		t := finishedAt.Time
		rec.FinishedAt = &t
	}
	return &rec, nil
}

// Close implements [Store].
func (s *SQLStore) Close() error {
	return s.db.Close()
}
