// Package repository holds the errors storage backends share, so domain
// services can tell a missing row from a failed write without knowing the
// backend.
package repository

import "errors"

var (
	// ErrNotFound is returned when a key, project or slide has no row.
	ErrNotFound = errors.New("not found")

	// ErrConflict is returned when an insert collides with an existing id.
	ErrConflict = errors.New("conflict: entity already exists")
)
