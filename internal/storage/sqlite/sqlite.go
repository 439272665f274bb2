// Package sqlite provides a SQLite-backed implementation of the
// storage.Storage interface using Go's standard database/sql package.
//
// SQLite stores everything in a single file on disk, which makes it the
// default backend for local development and for the test suite.
//
// The blank import below registers the sqlite3 driver with database/sql.
package sqlite

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/aanand-mishra/schools-api/internal/config"
	"github.com/aanand-mishra/schools-api/internal/storage"
	"github.com/aanand-mishra/schools-api/internal/types"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schema string

// SQLite is the concrete implementation of storage.Storage.
// A single *sql.DB is safe for concurrent use by multiple goroutines.
type SQLite struct {
	Db *sql.DB
}

// New opens the SQLite database at cfg.Database.StoragePath, creates the
// schools table if it does not already exist, and returns a ready-to-use
// *SQLite.
func New(cfg *config.Config) (*SQLite, error) {
	path := strings.TrimSpace(cfg.Database.StoragePath)
	if path == "" {
		return nil, errors.New("sqlite.New: storage path is required")
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("sqlite.New: create dir: %w", err)
		}
	}

	// Concurrent writers wait on the file lock instead of failing with
	// SQLITE_BUSY.
	db, err := sql.Open("sqlite3", "file:"+path+"?_busy_timeout=5000&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("sqlite.New: open db: %w", err)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite.New: ping: %w", err)
	}

	s := &SQLite{Db: db}
	if err := s.Migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}

	return s, nil
}

// Migrate creates the schools table and its index. It is idempotent.
func (s *SQLite) Migrate(ctx context.Context) error {
	if _, err := s.Db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("sqlite.Migrate: create table: %w", err)
	}
	return nil
}

// CreateSchool inserts a new row into the schools table.
// Placeholders keep user input out of the SQL text.
func (s *SQLite) CreateSchool(ctx context.Context, school types.School) (int64, error) {
	stmt, err := s.Db.PrepareContext(ctx,
		"INSERT INTO schools (name, address, city, state, contact, image, email) VALUES (?, ?, ?, ?, ?, ?, ?)",
	)
	if err != nil {
		return 0, fmt.Errorf("CreateSchool: prepare: %w", err)
	}
	defer stmt.Close()

	// A nil Image pointer is stored as NULL.
	result, err := stmt.ExecContext(ctx,
		school.Name,
		school.Address,
		school.City,
		school.State,
		school.Contact,
		school.Image,
		school.Email,
	)
	if err != nil {
		return 0, fmt.Errorf("CreateSchool: exec: %w", err)
	}

	lastID, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("CreateSchool: last insert id: %w", err)
	}

	return lastID, nil
}

// GetSchoolByID fetches exactly one school row matched by primary key.
func (s *SQLite) GetSchoolByID(ctx context.Context, id int64) (types.School, error) {
	row := s.Db.QueryRowContext(ctx,
		"SELECT "+storage.SchoolColumns+" FROM schools WHERE id = ? LIMIT 1", id)

	school, err := storage.ScanSchool(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.School{}, fmt.Errorf("GetSchoolByID: id %d: %w", id, storage.ErrNotFound)
		}
		return types.School{}, fmt.Errorf("GetSchoolByID: scan: %w", err)
	}

	return school, nil
}

// GetSchools returns the directory projection of every school, most
// recently created first. Rows created within the same second fall back
// to id order.
func (s *SQLite) GetSchools(ctx context.Context) ([]types.SchoolSummary, error) {
	rows, err := s.Db.QueryContext(ctx,
		"SELECT "+storage.SummaryColumns+" FROM schools ORDER BY created_at DESC, id DESC")
	if err != nil {
		return nil, fmt.Errorf("GetSchools: query: %w", err)
	}

	schools, err := storage.ScanSummaries(rows)
	if err != nil {
		return nil, fmt.Errorf("GetSchools: %w", err)
	}

	return schools, nil
}

// Close closes the database handle.
func (s *SQLite) Close() error {
	if s == nil || s.Db == nil {
		return nil
	}
	return s.Db.Close()
}
