// Package postgres provides a PostgreSQL-backed implementation of the
// storage.Storage interface using the lib/pq driver.
package postgres

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"strings"

	"github.com/aanand-mishra/schools-api/internal/config"
	"github.com/aanand-mishra/schools-api/internal/storage"
	"github.com/aanand-mishra/schools-api/internal/types"

	_ "github.com/lib/pq"
)

//go:embed schema.sql
var schema string

// Postgres is the concrete implementation of storage.Storage.
type Postgres struct {
	Db *sql.DB
}

// ConnString builds a key/value connection string for cfg.
func ConnString(cfg config.Database) string {
	sslmode := "disable"
	if cfg.SSL {
		sslmode = "require"
	}
	parts := []string{
		"host=" + quoteValue(cfg.Host),
		fmt.Sprintf("port=%d", cfg.DefaultPort()),
		"user=" + quoteValue(cfg.User),
		"password=" + quoteValue(cfg.Password),
		"dbname=" + quoteValue(cfg.Name),
		"sslmode=" + sslmode,
	}
	return strings.Join(parts, " ")
}

// quoteValue escapes a libpq key/value parameter.
func quoteValue(v string) string {
	v = strings.ReplaceAll(v, `\`, `\\`)
	v = strings.ReplaceAll(v, `'`, `\'`)
	return "'" + v + "'"
}

// New connects to the Postgres database described by cfg.Database,
// verifies the connection and ensures the schools table exists.
func New(cfg *config.Config) (*Postgres, error) {
	if strings.TrimSpace(cfg.Database.Name) == "" {
		return nil, errors.New("postgres.New: database name is required")
	}

	db, err := sql.Open("postgres", ConnString(cfg.Database))
	if err != nil {
		return nil, fmt.Errorf("postgres.New: open db: %w", err)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres.New: ping: %w", err)
	}

	s := &Postgres{Db: db}
	if err := s.Migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}

	return s, nil
}

// Migrate creates the schools table and its index. It is idempotent.
func (s *Postgres) Migrate(ctx context.Context) error {
	if _, err := s.Db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("postgres.Migrate: create table: %w", err)
	}
	return nil
}

// CreateSchool inserts a new row into the schools table. lib/pq does not
// support LastInsertId, so the id comes back through RETURNING.
func (s *Postgres) CreateSchool(ctx context.Context, school types.School) (int64, error) {
	var id int64
	err := s.Db.QueryRowContext(ctx,
		`INSERT INTO schools (name, address, city, state, contact, image, email)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id`,
		school.Name,
		school.Address,
		school.City,
		school.State,
		school.Contact,
		school.Image,
		school.Email,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("CreateSchool: insert: %w", err)
	}

	return id, nil
}

// GetSchoolByID fetches exactly one school row matched by primary key.
func (s *Postgres) GetSchoolByID(ctx context.Context, id int64) (types.School, error) {
	row := s.Db.QueryRowContext(ctx,
		"SELECT "+storage.SchoolColumns+" FROM schools WHERE id = $1 LIMIT 1", id)

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
// recently created first.
func (s *Postgres) GetSchools(ctx context.Context) ([]types.SchoolSummary, error) {
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

// Close closes the connection pool.
func (s *Postgres) Close() error {
	if s == nil || s.Db == nil {
		return nil
	}
	return s.Db.Close()
}
