// Package repository wraps the record store with typed task and category
// operations. Every store failure is logged here and returned as ErrRemote.
package repository

import (
	"errors"
	"strings"

	"taskflow/internal/recordstore"
)

// ErrRemote marks a failed call to the record store, including store-reported
// validation failures and successful responses with no written records.
var ErrRemote = errors.New("remote call failed")

// ErrNotFound is returned when a record does not exist remotely.
var ErrNotFound = errors.New("not found")

// FieldErrors carries per-field validation failures reported by the store.
type FieldErrors []recordstore.FieldError

func (e FieldErrors) Error() string {
	msgs := make([]string, len(e))
	for i, fe := range e {
		msgs[i] = fe.Error()
	}
	return strings.Join(msgs, "; ")
}

// Unwrap makes FieldErrors match ErrRemote.
func (e FieldErrors) Unwrap() error { return ErrRemote }
