package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	propserr "github.com/winterSteve25/props/pkg/core/error"
	"github.com/winterSteve25/props/pkg/props/pipeline"
)

// Run is one recorded pipeline run
type Run struct {
	ID          string            `json:"id"`
	SourceName  string            `json:"source_name"`
	CreatedAt   time.Time         `json:"created_at"`
	NodeCount   int               `json:"node_count"`
	DiagCount   int               `json:"diag_count"`
	DurationMs  int64             `json:"duration_ms"`
	Types       map[string]string `json:"types,omitempty"`
	Diagnostics []*Diagnostic     `json:"diagnostics,omitempty"`
}

// Diagnostic is one recorded diagnostic of a run
type Diagnostic struct {
	Seq     int    `json:"seq"`
	Kind    string `json:"kind"`
	Line    int    `json:"line"`
	Column  int    `json:"column"`
	Message string `json:"message"`
}

// RunFilter defines criteria for listing runs
type RunFilter struct {
	SourceName string
	Since      time.Time
	OnlyFailed bool
	Limit      int
	Offset     int
}

// HistoryStore defines the interface for run persistence
type HistoryStore interface {
	Record(ctx context.Context, run *Run) error
	Get(ctx context.Context, id string) (*Run, error)
	List(ctx context.Context, filter RunFilter) ([]*Run, error)
	Stats(ctx context.Context) (map[string]interface{}, error)
	Prune(ctx context.Context, olderThan time.Duration) (int64, error)
	Close() error
}

// RunFromUnit converts a finished pipeline unit into a history record
func RunFromUnit(unit *pipeline.Unit) *Run {
	run := &Run{
		ID:         unit.ID,
		SourceName: unit.Name,
		CreatedAt:  unit.Started,
		NodeCount:  len(unit.Nodes),
		DiagCount:  len(unit.Diagnostics),
		DurationMs: unit.Duration.Milliseconds(),
		Types:      unit.Env.Snapshot(),
	}
	for i, d := range unit.Diagnostics {
		run.Diagnostics = append(run.Diagnostics, &Diagnostic{
			Seq:     i,
			Kind:    d.Kind.String(),
			Line:    d.Line,
			Column:  d.Column,
			Message: d.Error(),
		})
	}
	return run
}

// SQLiteHistoryStore implements HistoryStore using SQLite
type SQLiteHistoryStore struct {
	db *sql.DB
	mu sync.RWMutex
}

// SQLiteConfig holds configuration for the SQLite store
type SQLiteConfig struct {
	Path string
}

// NewSQLiteHistoryStore opens (and if needed creates) the history database
func NewSQLiteHistoryStore(cfg SQLiteConfig) (*SQLiteHistoryStore, error) {
	dir := filepath.Dir(cfg.Path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, storeErr(err, "failed to create directory", "store.Open")
	}

	db, err := sql.Open("sqlite3", cfg.Path+"?_journal_mode=WAL&_synchronous=NORMAL&_foreign_keys=on")
	if err != nil {
		return nil, storeErr(err, "failed to open database", "store.Open")
	}

	store := &SQLiteHistoryStore{db: db}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, storeErr(err, "failed to initialize schema", "store.Open")
	}
	return store, nil
}

// initSchema creates the necessary tables
func (s *SQLiteHistoryStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		source_name TEXT NOT NULL,
		created_at DATETIME NOT NULL,
		node_count INTEGER NOT NULL,
		diag_count INTEGER NOT NULL,
		duration_ms INTEGER NOT NULL DEFAULT 0,
		types TEXT
	);

	CREATE TABLE IF NOT EXISTS diagnostics (
		run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
		seq INTEGER NOT NULL,
		kind TEXT NOT NULL,
		line INTEGER NOT NULL,
		"column" INTEGER NOT NULL,
		message TEXT NOT NULL,
		PRIMARY KEY (run_id, seq)
	);

	CREATE INDEX IF NOT EXISTS idx_runs_created_at ON runs(created_at DESC);
	CREATE INDEX IF NOT EXISTS idx_runs_source_name ON runs(source_name);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Record stores a run and its diagnostics in one transaction
func (s *SQLiteHistoryStore) Record(ctx context.Context, run *Run) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now()
	}

	var typesJSON []byte
	if run.Types != nil {
		typesJSON, _ = json.Marshal(run.Types)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return storeErr(err, "failed to begin transaction", "store.Record")
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs (id, source_name, created_at, node_count, diag_count, duration_ms, types)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, run.ID, run.SourceName, run.CreatedAt.UTC(), run.NodeCount, run.DiagCount, run.DurationMs, typesJSON)
	if err != nil {
		return storeErr(err, "failed to insert run", "store.Record")
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO diagnostics (run_id, seq, kind, line, "column", message)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return storeErr(err, "failed to prepare statement", "store.Record")
	}
	defer stmt.Close()

	for _, d := range run.Diagnostics {
		if _, err := stmt.ExecContext(ctx, run.ID, d.Seq, d.Kind, d.Line, d.Column, d.Message); err != nil {
			return storeErr(err, "failed to insert diagnostic", "store.Record")
		}
	}

	if err := tx.Commit(); err != nil {
		return storeErr(err, "failed to commit transaction", "store.Record")
	}
	return nil
}

// Get returns one run with its diagnostics
func (s *SQLiteHistoryStore) Get(ctx context.Context, id string) (*Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT id, source_name, created_at, node_count, diag_count, duration_ms, types
		FROM runs WHERE id = ?
	`, id)
	run, err := scanRun(row)
	if err == sql.ErrNoRows {
		return nil, propserr.New("run not found").
			WithCode(propserr.CodeFileNotFound).
			WithOperation("store.Get").
			WithDetail("id", id)
	}
	if err != nil {
		return nil, storeErr(err, "failed to query run", "store.Get")
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT seq, kind, line, "column", message FROM diagnostics
		WHERE run_id = ? ORDER BY seq
	`, id)
	if err != nil {
		return nil, storeErr(err, "failed to query diagnostics", "store.Get")
	}
	defer rows.Close()

	for rows.Next() {
		var d Diagnostic
		if err := rows.Scan(&d.Seq, &d.Kind, &d.Line, &d.Column, &d.Message); err != nil {
			return nil, storeErr(err, "failed to scan diagnostic", "store.Get")
		}
		run.Diagnostics = append(run.Diagnostics, &d)
	}
	return run, rows.Err()
}

// List returns runs matching filter, newest first
func (s *SQLiteHistoryStore) List(ctx context.Context, filter RunFilter) ([]*Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `SELECT id, source_name, created_at, node_count, diag_count, duration_ms, types FROM runs WHERE 1=1`
	var args []interface{}

	if filter.SourceName != "" {
		query += " AND source_name = ?"
		args = append(args, filter.SourceName)
	}
	if !filter.Since.IsZero() {
		query += " AND created_at >= ?"
		args = append(args, filter.Since.UTC())
	}
	if filter.OnlyFailed {
		query += " AND diag_count > 0"
	}

	query += " ORDER BY created_at DESC"

	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
		if filter.Offset > 0 {
			query += " OFFSET ?"
			args = append(args, filter.Offset)
		}
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, storeErr(err, "failed to query runs", "store.List")
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, storeErr(err, "failed to scan run", "store.List")
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// Stats returns run statistics
func (s *SQLiteHistoryStore) Stats(ctx context.Context) (map[string]interface{}, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := make(map[string]interface{})

	var total, failed int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*), COALESCE(SUM(diag_count > 0), 0) FROM runs`).Scan(&total, &failed); err != nil {
		return nil, storeErr(err, "failed to count runs", "store.Stats")
	}
	stats["total_runs"] = total
	stats["failed_runs"] = failed

	kindCounts := make(map[string]int64)
	rows, err := s.db.QueryContext(ctx, `SELECT kind, COUNT(*) FROM diagnostics GROUP BY kind`)
	if err != nil {
		return nil, storeErr(err, "failed to count diagnostics", "store.Stats")
	}
	defer rows.Close()
	for rows.Next() {
		var kind string
		var count int64
		if err := rows.Scan(&kind, &count); err != nil {
			return nil, storeErr(err, "failed to scan diagnostic count", "store.Stats")
		}
		kindCounts[kind] = count
	}
	stats["diagnostics_by_kind"] = kindCounts

	return stats, rows.Err()
}

// Prune removes runs older than the specified duration
func (s *SQLiteHistoryStore) Prune(ctx context.Context, olderThan time.Duration) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := time.Now().Add(-olderThan).UTC()
	result, err := s.db.ExecContext(ctx, `DELETE FROM runs WHERE created_at < ?`, cutoff)
	if err != nil {
		return 0, storeErr(err, "failed to prune runs", "store.Prune")
	}
	return result.RowsAffected()
}

// Close closes the database connection
func (s *SQLiteHistoryStore) Close() error {
	return s.db.Close()
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanRun(row scanner) (*Run, error) {
	var run Run
	var typesJSON sql.NullString
	if err := row.Scan(&run.ID, &run.SourceName, &run.CreatedAt, &run.NodeCount,
		&run.DiagCount, &run.DurationMs, &typesJSON); err != nil {
		return nil, err
	}
	if typesJSON.Valid && typesJSON.String != "" {
		json.Unmarshal([]byte(typesJSON.String), &run.Types)
	}
	return &run, nil
}

func storeErr(err error, message, operation string) error {
	return propserr.Wrap(err, message).
		WithCode(propserr.CodeStoreFailed).
		WithOperation(operation)
}
