// Package sqlitestore implements recordstore.Store on a local SQLite file.
// Records are kept as JSON documents and filtered in process.
package sqlitestore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"taskflow/internal/recordstore"
)

// Store is a SQLite-backed record store.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens (or creates) the database at dbPath and ensures the schema.
func Open(dbPath string) (*Store, error) {
	if dbPath == "" {
		return nil, errors.New("db path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil && !errors.Is(err, os.ErrExist) {
		return nil, err
	}
	db, err := sql.Open("sqlite", sqliteDSN(dbPath))
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", dbPath, err)
	}
	db.SetMaxOpenConns(1)

	s := &Store{db: db, now: time.Now}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close releases the database.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) ensureSchema() error {
	const ddl = `
CREATE TABLE IF NOT EXISTS records (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	tbl TEXT NOT NULL,
	data TEXT NOT NULL DEFAULT '{}',
	created_on TEXT NOT NULL,
	modified_on TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_records_tbl ON records(tbl);`
	_, err := s.db.Exec(ddl)
	return err
}

// FetchRecords returns the matching records of a table in insertion order.
func (s *Store) FetchRecords(ctx context.Context, table string, p recordstore.FetchParams) ([]recordstore.Record, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, data, created_on, modified_on FROM records WHERE tbl = ? ORDER BY id;`, table)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []recordstore.Record{}
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		if recordstore.Matches(r, p) {
			result = append(result, recordstore.Project(r, p.Fields))
		}
	}
	return result, rows.Err()
}

// GetRecordByID returns one record or recordstore.ErrNotFound.
func (s *Store) GetRecordByID(ctx context.Context, table, id string, fields []string) (recordstore.Record, error) {
	n, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return nil, recordstore.ErrNotFound
	}
	row := s.db.QueryRowContext(ctx,
		`SELECT id, data, created_on, modified_on FROM records WHERE tbl = ? AND id = ?;`, table, n)
	r, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, recordstore.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return recordstore.Project(r, fields), nil
}

// CreateRecords inserts records in one transaction. Client-supplied Id and
// audit fields are ignored.
func (s *Store) CreateRecords(ctx context.Context, table string, records []recordstore.Record) (recordstore.WriteResult, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return recordstore.WriteResult{}, err
	}
	defer tx.Rollback()

	stamp := s.stamp()
	results := make([]recordstore.RecordResult, 0, len(records))
	for _, rec := range records {
		data, err := encode(rec)
		if err != nil {
			results = append(results, recordstore.RecordResult{Message: err.Error()})
			continue
		}
		res, err := tx.ExecContext(ctx,
			`INSERT INTO records (tbl, data, created_on, modified_on) VALUES (?, ?, ?, ?);`,
			table, data, stamp, stamp)
		if err != nil {
			return recordstore.WriteResult{}, err
		}
		id, err := res.LastInsertId()
		if err != nil {
			return recordstore.WriteResult{}, err
		}
		out := recordstore.Project(rec, nil)
		out[recordstore.FieldID] = id
		out[recordstore.FieldCreatedOn] = stamp
		out[recordstore.FieldModifiedOn] = stamp
		results = append(results, recordstore.RecordResult{Success: true, Data: out})
	}
	if err := tx.Commit(); err != nil {
		return recordstore.WriteResult{}, err
	}
	return recordstore.WriteResult{Success: true, Results: results}, nil
}

// UpdateRecords merges the given fields into existing records.
func (s *Store) UpdateRecords(ctx context.Context, table string, records []recordstore.Record) (recordstore.WriteResult, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return recordstore.WriteResult{}, err
	}
	defer tx.Rollback()

	stamp := s.stamp()
	results := make([]recordstore.RecordResult, 0, len(records))
	for _, rec := range records {
		id, err := strconv.ParseInt(rec.ID(), 10, 64)
		if err != nil {
			results = append(results, recordstore.RecordResult{Message: "record not found"})
			continue
		}
		row := tx.QueryRowContext(ctx,
			`SELECT id, data, created_on, modified_on FROM records WHERE tbl = ? AND id = ?;`, table, id)
		current, err := scanRecord(row)
		if errors.Is(err, sql.ErrNoRows) {
			results = append(results, recordstore.RecordResult{Message: "record not found"})
			continue
		}
		if err != nil {
			return recordstore.WriteResult{}, err
		}
		for k, v := range rec {
			current[k] = v
		}
		data, err := encode(current)
		if err != nil {
			results = append(results, recordstore.RecordResult{Message: err.Error()})
			continue
		}
		if _, err := tx.ExecContext(ctx,
			`UPDATE records SET data = ?, modified_on = ? WHERE id = ?;`, data, stamp, id); err != nil {
			return recordstore.WriteResult{}, err
		}
		current[recordstore.FieldID] = id
		current[recordstore.FieldModifiedOn] = stamp
		results = append(results, recordstore.RecordResult{Success: true, Data: current})
	}
	if err := tx.Commit(); err != nil {
		return recordstore.WriteResult{}, err
	}
	return recordstore.WriteResult{Success: true, Results: results}, nil
}

// DeleteRecords deletes records by id, reporting each one.
func (s *Store) DeleteRecords(ctx context.Context, table string, ids []string) (recordstore.DeleteResult, error) {
	results := make([]recordstore.RecordResult, 0, len(ids))
	for _, raw := range ids {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			results = append(results, recordstore.RecordResult{Message: "record not found"})
			continue
		}
		res, err := s.db.ExecContext(ctx, `DELETE FROM records WHERE tbl = ? AND id = ?;`, table, id)
		if err != nil {
			return recordstore.DeleteResult{}, err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return recordstore.DeleteResult{}, err
		}
		if n == 0 {
			results = append(results, recordstore.RecordResult{Message: "record not found"})
			continue
		}
		results = append(results, recordstore.RecordResult{Success: true, Data: recordstore.Record{recordstore.FieldID: id}})
	}
	return recordstore.DeleteResult{Success: true, Results: results}, nil
}

func (s *Store) stamp() string {
	return s.now().UTC().Format(time.RFC3339)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(sc scanner) (recordstore.Record, error) {
	var id int64
	var data, createdOn, modifiedOn string
	if err := sc.Scan(&id, &data, &createdOn, &modifiedOn); err != nil {
		return nil, err
	}
	r := recordstore.Record{}
	if err := json.Unmarshal([]byte(data), &r); err != nil {
		return nil, fmt.Errorf("record %d: %w", id, err)
	}
	r[recordstore.FieldID] = id
	r[recordstore.FieldCreatedOn] = createdOn
	r[recordstore.FieldModifiedOn] = modifiedOn
	return r, nil
}

// encode serializes the user fields of a record; identity and audit fields
// live in their own columns.
func encode(r recordstore.Record) (string, error) {
	doc := make(map[string]any, len(r))
	for k, v := range r {
		switch k {
		case recordstore.FieldID, recordstore.FieldCreatedOn, recordstore.FieldModifiedOn:
			continue
		}
		doc[k] = v
	}
	b, err := json.Marshal(doc)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func sqliteDSN(path string) string {
	if strings.HasPrefix(path, "file:") {
		return path
	}
	abs, err := filepath.Abs(path)
	if err == nil {
		path = abs
	}
	u := url.URL{
		Scheme: "file",
		Path:   path,
	}
	q := u.Query()
	q.Set("mode", "rwc")
	q.Set("_pragma", "busy_timeout(5000)")
	u.RawQuery = q.Encode()
	return u.String()
}
