// Package testutil provides testing utilities.
package testutil

import (
	"context"
	"strconv"
	"sync"

	"taskflow/internal/recordstore"
)

// FakeStore is an in-memory implementation of recordstore.Store for testing.
// Records keep insertion order; ids are sequential integers rendered as strings.
type FakeStore struct {
	mu     sync.Mutex
	tables map[string][]recordstore.Record
	nextID int
	calls  map[string]int

	// Error injection for testing
	FetchErr  map[string]error // table -> error
	GetErr    error
	CreateErr error
	UpdateErr error
	DeleteErr error

	// Result overrides; when set they are returned instead of performing the write.
	CreateResult *recordstore.WriteResult
	UpdateResult *recordstore.WriteResult
	DeleteResult *recordstore.DeleteResult
}

// NewFakeStore creates an empty FakeStore.
func NewFakeStore() *FakeStore {
	return &FakeStore{
		tables:   make(map[string][]recordstore.Record),
		calls:    make(map[string]int),
		FetchErr: make(map[string]error),
		nextID:   1,
	}
}

// Add inserts a record into a table and returns its id. A record without
// an Id field is assigned the next sequential id.
func (f *FakeStore) Add(table string, rec recordstore.Record) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.insert(table, rec)
}

func (f *FakeStore) insert(table string, rec recordstore.Record) string {
	r := recordstore.Project(rec, nil)
	id := r.ID()
	if id == "" {
		id = strconv.Itoa(f.nextID)
		f.nextID++
		r[recordstore.FieldID] = id
	}
	f.tables[table] = append(f.tables[table], r)
	return id
}

// Records returns a copy of a table's records.
func (f *FakeStore) Records(table string) []recordstore.Record {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]recordstore.Record, len(f.tables[table]))
	for i, r := range f.tables[table] {
		out[i] = recordstore.Project(r, nil)
	}
	return out
}

// Calls returns the number of calls made for op ("fetch", "get", "create",
// "update", "delete"). An empty op returns the total.
func (f *FakeStore) Calls(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	if op != "" {
		return f.calls[op]
	}
	total := 0
	for _, n := range f.calls {
		total += n
	}
	return total
}

// ResetCalls clears the call counters.
func (f *FakeStore) ResetCalls() {
	f.mu.Lock()
	f.calls = make(map[string]int)
	f.mu.Unlock()
}

func (f *FakeStore) count(op string) {
	f.mu.Lock()
	f.calls[op]++
	f.mu.Unlock()
}

// FetchRecords implements recordstore.Store.
func (f *FakeStore) FetchRecords(ctx context.Context, table string, p recordstore.FetchParams) ([]recordstore.Record, error) {
	f.count("fetch")
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.FetchErr[table]; err != nil {
		return nil, err
	}
	var out []recordstore.Record
	for _, r := range f.tables[table] {
		if recordstore.Matches(r, p) {
			out = append(out, recordstore.Project(r, p.Fields))
		}
	}
	return out, nil
}

// GetRecordByID implements recordstore.Store.
func (f *FakeStore) GetRecordByID(ctx context.Context, table, id string, fields []string) (recordstore.Record, error) {
	f.count("get")
	if f.GetErr != nil {
		return nil, f.GetErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.tables[table] {
		if r.ID() == id {
			return recordstore.Project(r, fields), nil
		}
	}
	return nil, recordstore.ErrNotFound
}

// CreateRecords implements recordstore.Store.
func (f *FakeStore) CreateRecords(ctx context.Context, table string, records []recordstore.Record) (recordstore.WriteResult, error) {
	f.count("create")
	if f.CreateErr != nil {
		return recordstore.WriteResult{}, f.CreateErr
	}
	if f.CreateResult != nil {
		return *f.CreateResult, nil
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	res := recordstore.WriteResult{Success: true}
	for _, rec := range records {
		r := recordstore.Project(rec, nil)
		delete(r, recordstore.FieldID)
		id := f.insert(table, r)
		r[recordstore.FieldID] = id
		res.Results = append(res.Results, recordstore.RecordResult{Success: true, Data: r})
	}
	return res, nil
}

// UpdateRecords implements recordstore.Store.
func (f *FakeStore) UpdateRecords(ctx context.Context, table string, records []recordstore.Record) (recordstore.WriteResult, error) {
	f.count("update")
	if f.UpdateErr != nil {
		return recordstore.WriteResult{}, f.UpdateErr
	}
	if f.UpdateResult != nil {
		return *f.UpdateResult, nil
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	res := recordstore.WriteResult{Success: true}
	for _, rec := range records {
		result := recordstore.RecordResult{Message: "record not found"}
		for _, r := range f.tables[table] {
			if r.ID() != rec.ID() {
				continue
			}
			for k, v := range rec {
				r[k] = v
			}
			result = recordstore.RecordResult{Success: true, Data: recordstore.Project(r, nil)}
			break
		}
		res.Results = append(res.Results, result)
	}
	return res, nil
}

// DeleteRecords implements recordstore.Store.
func (f *FakeStore) DeleteRecords(ctx context.Context, table string, ids []string) (recordstore.DeleteResult, error) {
	f.count("delete")
	if f.DeleteErr != nil {
		return recordstore.DeleteResult{}, f.DeleteErr
	}
	if f.DeleteResult != nil {
		return *f.DeleteResult, nil
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	res := recordstore.DeleteResult{Success: true}
	for _, id := range ids {
		deleted := false
		recs := f.tables[table]
		for i, r := range recs {
			if r.ID() == id {
				f.tables[table] = append(recs[:i], recs[i+1:]...)
				deleted = true
				break
			}
		}
		res.Results = append(res.Results, recordstore.RecordResult{Success: deleted})
	}
	return res, nil
}
