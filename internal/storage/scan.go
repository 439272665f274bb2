package storage

import (
	"database/sql"
	"fmt"

	"github.com/aanand-mishra/schools-api/internal/types"
)

// Column lists shared by every SQL backend. Scan order in the helpers
// below must match these.
const (
	SchoolColumns  = "id, name, address, city, state, contact, email, image, created_at"
	SummaryColumns = "id, name, address, city, state, image"
)

// RowScanner is satisfied by both *sql.Row and *sql.Rows.
type RowScanner interface {
	Scan(dest ...any) error
}

// ScanSchool reads one row selected with SchoolColumns.
// A NULL image leaves School.Image nil.
func ScanSchool(row RowScanner) (types.School, error) {
	var school types.School
	err := row.Scan(
		&school.ID,
		&school.Name,
		&school.Address,
		&school.City,
		&school.State,
		&school.Contact,
		&school.Email,
		&school.Image,
		&school.CreatedAt,
	)
	return school, err
}

// ScanSummaries drains rows selected with SummaryColumns and closes them.
func ScanSummaries(rows *sql.Rows) ([]types.SchoolSummary, error) {
	defer rows.Close()

	// Non-nil so an empty table encodes as [] rather than null.
	schools := make([]types.SchoolSummary, 0)

	for rows.Next() {
		var school types.SchoolSummary
		if err := rows.Scan(
			&school.ID,
			&school.Name,
			&school.Address,
			&school.City,
			&school.State,
			&school.Image,
		); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		schools = append(schools, school)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}

	return schools, nil
}
