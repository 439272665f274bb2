// Package mysql provides a MySQL-backed implementation of the
// storage.Storage interface. It is the production backend: the schools
// table layout matches the one the directory has always used on MySQL.
package mysql

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/aanand-mishra/schools-api/internal/config"
	"github.com/aanand-mishra/schools-api/internal/storage"
	"github.com/aanand-mishra/schools-api/internal/types"

	"github.com/go-sql-driver/mysql"
)

//go:embed schema.sql
var schema string

// MySQL is the concrete implementation of storage.Storage.
type MySQL struct {
	Db *sql.DB
}

// DSN builds the driver connection string for cfg. When withDB is false
// the database name is left out, which is needed to create it.
func DSN(cfg config.Database, withDB bool) string {
	c := mysql.NewConfig()
	c.User = cfg.User
	c.Passwd = cfg.Password
	c.Net = "tcp"
	c.Addr = net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.DefaultPort()))
	if withDB {
		c.DBName = cfg.Name
	}
	// created_at scans into time.Time only with parseTime.
	c.ParseTime = true
	c.Loc = time.UTC
	if cfg.SSL {
		c.TLSConfig = "skip-verify"
	}
	return c.FormatDSN()
}

// New connects to the MySQL database described by cfg.Database, verifies
// the connection and ensures the schools table exists.
func New(cfg *config.Config) (*MySQL, error) {
	if strings.TrimSpace(cfg.Database.Name) == "" {
		return nil, errors.New("mysql.New: database name is required")
	}

	db, err := sql.Open("mysql", DSN(cfg.Database, true))
	if err != nil {
		return nil, fmt.Errorf("mysql.New: open db: %w", err)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("mysql.New: ping: %w", err)
	}

	s := &MySQL{Db: db}
	if err := s.Migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}

	return s, nil
}

// CreateDatabase creates the configured database if it is missing.
// It connects without selecting a database, so it can run before New.
func CreateDatabase(ctx context.Context, cfg config.Database) error {
	if strings.TrimSpace(cfg.Name) == "" {
		return errors.New("mysql.CreateDatabase: database name is required")
	}

	db, err := sql.Open("mysql", DSN(cfg, false))
	if err != nil {
		return fmt.Errorf("mysql.CreateDatabase: open: %w", err)
	}
	defer db.Close()

	if _, err := db.ExecContext(ctx, "CREATE DATABASE IF NOT EXISTS "+quoteIdent(cfg.Name)); err != nil {
		return fmt.Errorf("mysql.CreateDatabase: exec: %w", err)
	}
	return nil
}

func quoteIdent(name string) string {
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}

// Migrate creates the schools table. It is idempotent.
func (s *MySQL) Migrate(ctx context.Context) error {
	if _, err := s.Db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("mysql.Migrate: create table: %w", err)
	}
	return nil
}

// CreateSchool inserts a new row into the schools table.
func (s *MySQL) CreateSchool(ctx context.Context, school types.School) (int64, error) {
	result, err := s.Db.ExecContext(ctx,
		"INSERT INTO schools (name, address, city, state, contact, image, email) VALUES (?, ?, ?, ?, ?, ?, ?)",
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
func (s *MySQL) GetSchoolByID(ctx context.Context, id int64) (types.School, error) {
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
// recently created first.
func (s *MySQL) GetSchools(ctx context.Context) ([]types.SchoolSummary, error) {
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
func (s *MySQL) Close() error {
	if s == nil || s.Db == nil {
		return nil
	}
	return s.Db.Close()
}
