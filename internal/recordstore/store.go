// Package recordstore defines the backend-agnostic contract for the remote
// record storage API. Repositories never import a backend SDK directly.
package recordstore

import (
	"context"
	"errors"
)

// ErrNotFound is returned by GetRecordByID when no record has the given id.
var ErrNotFound = errors.New("record not found")

// Store is a generic CRUD API over named tables.
type Store interface {
	// FetchRecords returns the records of a table matching p, in store order.
	FetchRecords(ctx context.Context, table string, p FetchParams) ([]Record, error)

	// GetRecordByID returns a single record or ErrNotFound.
	GetRecordByID(ctx context.Context, table, id string, fields []string) (Record, error)

	// CreateRecords creates records. Identity fields are assigned by the store.
	CreateRecords(ctx context.Context, table string, records []Record) (WriteResult, error)

	// UpdateRecords updates records; each record must carry its Id field.
	UpdateRecords(ctx context.Context, table string, records []Record) (WriteResult, error)

	// DeleteRecords deletes records by id.
	DeleteRecords(ctx context.Context, table string, ids []string) (DeleteResult, error)
}
