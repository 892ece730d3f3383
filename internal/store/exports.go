// Package store keeps the history of generated reports in SQLite.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"hosereport/internal/logging"
)

// ErrNotFound is returned by Get for unknown export IDs.
var ErrNotFound = errors.New("export not found")

// Export status values.
const (
	StatusOK     = "ok"
	StatusFailed = "failed"
)

// Export is one recorded generation attempt.
type Export struct {
	ID             string    `json:"id"`
	Client         string    `json:"client"`
	InspectionDate string    `json:"inspectionDate,omitempty"`
	FileName       string    `json:"fileName,omitempty"`
	Source         string    `json:"source"` // cli, http or watch
	Engine         string    `json:"engine"`
	Status         string    `json:"status"`
	Error          string    `json:"error,omitempty"`
	Items          int       `json:"items"`
	Pages          int       `json:"pages"`
	Bytes          int       `json:"bytes"`
	Checksum       string    `json:"checksum,omitempty"`
	DurationMs     int64     `json:"durationMs"`
	CreatedAt      time.Time `json:"createdAt"`
}

// Store manages the export history database.
type Store struct {
	db     *sql.DB
	dbPath string
	mu     sync.RWMutex
}

// NewStore creates or opens the history database at dbPath.
func NewStore(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	s := &Store{db: db, dbPath: dbPath}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	logging.Store("export history at %s", dbPath)
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.dbPath
}

func (s *Store) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS exports (
		id TEXT PRIMARY KEY,
		client TEXT NOT NULL,
		inspection_date TEXT,
		file_name TEXT,
		source TEXT NOT NULL,
		engine TEXT NOT NULL,
		status TEXT NOT NULL,
		error TEXT,
		items INTEGER NOT NULL DEFAULT 0,
		pages INTEGER NOT NULL DEFAULT 0,
		bytes INTEGER NOT NULL DEFAULT 0,
		checksum TEXT,
		duration_ms INTEGER NOT NULL DEFAULT 0,
		created_at DATETIME NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_exports_created ON exports(created_at);
	CREATE INDEX IF NOT EXISTS idx_exports_client ON exports(client);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Record stores e, assigning an ID and timestamp when missing.
func (s *Store) Record(ctx context.Context, e *Export) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}
	// Stored as text; a single offset keeps ORDER BY chronological.
	e.CreatedAt = e.CreatedAt.UTC()
	if e.Status == "" {
		e.Status = StatusOK
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO exports (id, client, inspection_date, file_name, source, engine, status,
			error, items, pages, bytes, checksum, duration_ms, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, e.ID, e.Client, e.InspectionDate, e.FileName, e.Source, e.Engine, e.Status,
		e.Error, e.Items, e.Pages, e.Bytes, e.Checksum, e.DurationMs, e.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to record export: %w", err)
	}
	return nil
}

const exportColumns = `id, client, inspection_date, file_name, source, engine, status,
	error, items, pages, bytes, checksum, duration_ms, created_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanExport(row scanner) (Export, error) {
	var e Export
	var inspectionDate, fileName, errText, checksum sql.NullString
	err := row.Scan(&e.ID, &e.Client, &inspectionDate, &fileName, &e.Source, &e.Engine, &e.Status,
		&errText, &e.Items, &e.Pages, &e.Bytes, &checksum, &e.DurationMs, &e.CreatedAt)
	if err != nil {
		return Export{}, err
	}
	e.InspectionDate = inspectionDate.String
	e.FileName = fileName.String
	e.Error = errText.String
	e.Checksum = checksum.String
	return e, nil
}

// List returns the most recent exports, newest first.
func (s *Store) List(ctx context.Context, limit int) ([]Export, error) {
	if limit <= 0 {
		limit = 20
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `SELECT `+exportColumns+`
		FROM exports
		ORDER BY created_at DESC, rowid DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list exports: %w", err)
	}
	defer rows.Close()

	exports := []Export{}
	for rows.Next() {
		e, err := scanExport(rows)
		if err != nil {
			logging.StoreWarn("skipping unreadable export row: %v", err)
			continue
		}
		exports = append(exports, e)
	}
	return exports, rows.Err()
}

// Get returns one export by ID.
func (s *Store) Get(ctx context.Context, id string) (*Export, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, err := scanExport(s.db.QueryRowContext(ctx, `SELECT `+exportColumns+` FROM exports WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load export %s: %w", id, err)
	}
	return &e, nil
}

// Count returns how many exports have been recorded.
func (s *Store) Count(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM exports`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count exports: %w", err)
	}
	return n, nil
}
