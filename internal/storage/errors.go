// Package storage defines the error kinds every entity store reports.
// Services and HTTP handlers branch on these with errors.Is instead of
// inspecting driver errors.
package storage

import "errors"

var (
	// ErrNotFound means the referenced entity does not exist.
	ErrNotFound = errors.New("entity not found")

	// ErrConflict means a uniqueness or capacity constraint rejected a write.
	ErrConflict = errors.New("conflict")
)
