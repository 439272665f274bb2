// Package types holds all shared data structures (models) used across
// the application. Keeping them in one place prevents import cycles -
// handlers, storage, upload and views can all import types without
// depending on each other.
package types

import "time"

// School is a full school record as stored in the schools table.
//
// Struct tags serve two purposes:
//
//  1. json:"..."  - controls how the field appears when encoded to JSON.
//
//  2. validate:"..." - rules checked by the go-playground/validator
//     package. "required" means the field must be non-empty;
//     "school_email" and "phone" are custom rules registered by the
//     school handlers.
type School struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"    validate:"required"`
	Address   string    `json:"address" validate:"required"`
	City      string    `json:"city"    validate:"required"`
	State     string    `json:"state"   validate:"required"`
	Contact   string    `json:"contact" validate:"required,phone"`
	Email     string    `json:"email"   validate:"required,school_email"`
	Image     *string   `json:"image"`
	CreatedAt time.Time `json:"created_at"`
}

// SchoolSummary is the directory projection of a school. Contact, email
// and timestamp are deliberately left out of listings.
//
// Image is a pointer so that a record without an image encodes as
// "image": null rather than an empty string.
type SchoolSummary struct {
	ID      int64   `json:"id"`
	Name    string  `json:"name"`
	Address string  `json:"address"`
	City    string  `json:"city"`
	State   string  `json:"state"`
	Image   *string `json:"image"`
}

// Summary returns the directory projection of s.
func (s School) Summary() SchoolSummary {
	return SchoolSummary{
		ID:      s.ID,
		Name:    s.Name,
		Address: s.Address,
		City:    s.City,
		State:   s.State,
		Image:   s.Image,
	}
}
