package repository

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"taskflow/internal/mapper"
	"taskflow/internal/model"
	"taskflow/internal/recordstore"
)

// DefaultTaskTable is the remote table holding tasks.
const DefaultTaskTable = "task"

// TaskRepository reads and writes tasks through a record store.
type TaskRepository struct {
	t      table
	mapper *mapper.Mapper
}

// NewTaskRepository creates a task repository over the given table.
func NewTaskRepository(store recordstore.Store, tableName string, m *mapper.Mapper, log zerolog.Logger) *TaskRepository {
	if tableName == "" {
		tableName = DefaultTaskTable
	}
	return &TaskRepository{
		t: table{
			store:  store,
			name:   tableName,
			fields: mapper.TaskFields,
			log:    log.With().Str("component", "tasks").Logger(),
		},
		mapper: m,
	}
}

// FetchAll returns tasks matching p in store order. On failure it returns a
// nil slice and an error wrapping ErrRemote.
func (r *TaskRepository) FetchAll(ctx context.Context, p recordstore.FetchParams) ([]model.Task, error) {
	records, err := r.t.fetch(ctx, p)
	if err != nil {
		return nil, err
	}
	return r.mapper.TasksFromRecords(records), nil
}

// Search fetches tasks whose title or description contains query, limited
// to category unless it is empty or the "all" sentinel.
func (r *TaskRepository) Search(ctx context.Context, query, category string) ([]model.Task, error) {
	var p recordstore.FetchParams
	if q := strings.TrimSpace(query); q != "" {
		p.WhereGroups = []recordstore.WhereGroup{{
			Operator: "OR",
			SubGroups: []recordstore.SubGroup{{
				Conditions: []recordstore.Condition{
					{FieldName: mapper.FieldTitle, Operator: recordstore.Contains, Values: []string{q}},
					{FieldName: mapper.FieldDescription, Operator: recordstore.Contains, Values: []string{q}},
				},
			}},
		}}
	}
	if category != "" && category != model.AllCategoryID {
		p.Where = append(p.Where, recordstore.Condition{
			FieldName: mapper.FieldCategory,
			Operator:  recordstore.ExactMatch,
			Values:    []string{category},
		})
	}
	return r.FetchAll(ctx, p)
}

// Get returns a task by id, or an error wrapping ErrNotFound.
func (r *TaskRepository) Get(ctx context.Context, id string) (model.Task, error) {
	rec, err := r.t.get(ctx, id)
	if err != nil {
		return model.Task{}, err
	}
	return r.mapper.TaskFromRecord(rec), nil
}

// Create writes a new task and returns the stored record.
func (r *TaskRepository) Create(ctx context.Context, w model.TaskWrite) (model.Task, error) {
	rec, err := r.t.create(ctx, mapper.TaskRecord("", w))
	if err != nil {
		return model.Task{}, err
	}
	return r.mapper.TaskFromRecord(rec), nil
}

// Update replaces the mutable fields of a task.
func (r *TaskRepository) Update(ctx context.Context, id string, w model.TaskWrite) (model.Task, error) {
	rec, err := r.t.update(ctx, mapper.TaskRecord(id, w))
	if err != nil {
		return model.Task{}, err
	}
	return r.mapper.TaskFromRecord(rec), nil
}

// Delete removes tasks. It succeeds if at least one was deleted.
func (r *TaskRepository) Delete(ctx context.Context, ids ...string) error {
	return r.t.delete(ctx, ids)
}
