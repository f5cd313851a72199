package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"taskflow/internal/recordstore"
)

// table performs logged calls against one store table.
type table struct {
	store  recordstore.Store
	name   string
	fields []string
	log    zerolog.Logger
}

func (t *table) fail(op string, err error) error {
	t.log.Error().Err(err).Str("table", t.name).Str("op", op).Msg("record store call failed")
	if errors.Is(err, ErrRemote) {
		return err
	}
	return fmt.Errorf("%w: %s %s: %w", ErrRemote, op, t.name, err)
}

func (t *table) fetch(ctx context.Context, p recordstore.FetchParams) ([]recordstore.Record, error) {
	if len(p.Fields) == 0 {
		p.Fields = t.fields
	}
	records, err := t.store.FetchRecords(ctx, t.name, p)
	if err != nil {
		return nil, t.fail("fetch", err)
	}
	t.log.Debug().Str("table", t.name).Int("count", len(records)).Msg("fetched records")
	return records, nil
}

func (t *table) get(ctx context.Context, id string) (recordstore.Record, error) {
	rec, err := t.store.GetRecordByID(ctx, t.name, id, t.fields)
	if errors.Is(err, recordstore.ErrNotFound) || (err == nil && rec == nil) {
		t.log.Debug().Str("table", t.name).Str("id", id).Msg("record not found")
		return nil, fmt.Errorf("%s %s: %w", t.name, id, ErrNotFound)
	}
	if err != nil {
		return nil, t.fail("get", err)
	}
	return rec, nil
}

func (t *table) create(ctx context.Context, rec recordstore.Record) (recordstore.Record, error) {
	res, err := t.store.CreateRecords(ctx, t.name, []recordstore.Record{rec})
	if err != nil {
		return nil, t.fail("create", err)
	}
	out, err := firstWritten(res)
	if err != nil {
		return nil, t.fail("create", err)
	}
	return out, nil
}

func (t *table) update(ctx context.Context, rec recordstore.Record) (recordstore.Record, error) {
	res, err := t.store.UpdateRecords(ctx, t.name, []recordstore.Record{rec})
	if err != nil {
		return nil, t.fail("update", err)
	}
	out, err := firstWritten(res)
	if err != nil {
		return nil, t.fail("update", err)
	}
	return out, nil
}

func (t *table) delete(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return t.fail("delete", errors.New("no record ids"))
	}
	res, err := t.store.DeleteRecords(ctx, t.name, ids)
	if err != nil {
		return t.fail("delete", err)
	}
	if !res.Success {
		return t.fail("delete", errors.New("store reported failure"))
	}
	for _, r := range res.Results {
		if r.Success {
			return nil
		}
	}
	return t.fail("delete", errors.New("no records deleted"))
}

// firstWritten returns the data of the first successful result. When none
// succeeded, the first result's field errors are returned individually.
func firstWritten(res recordstore.WriteResult) (recordstore.Record, error) {
	if !res.Success || len(res.Results) == 0 {
		return nil, errors.New("store reported failure")
	}
	for _, r := range res.Results {
		if r.Success {
			if r.Data == nil {
				return recordstore.Record{}, nil
			}
			return r.Data, nil
		}
	}
	if errs := res.Results[0].Errors; len(errs) > 0 {
		return nil, FieldErrors(errs)
	}
	if msg := res.Results[0].Message; msg != "" {
		return nil, errors.New(msg)
	}
	return nil, errors.New("no records written")
}
