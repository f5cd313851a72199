package repository

import (
	"context"

	"github.com/rs/zerolog"

	"taskflow/internal/mapper"
	"taskflow/internal/model"
	"taskflow/internal/recordstore"
)

// DefaultCategoryTable is the remote table holding categories.
const DefaultCategoryTable = "category"

// CategoryRepository reads and writes categories through a record store.
type CategoryRepository struct {
	t table
}

// NewCategoryRepository creates a category repository over the given table.
func NewCategoryRepository(store recordstore.Store, tableName string, log zerolog.Logger) *CategoryRepository {
	if tableName == "" {
		tableName = DefaultCategoryTable
	}
	return &CategoryRepository{
		t: table{
			store:  store,
			name:   tableName,
			fields: mapper.CategoryFields,
			log:    log.With().Str("component", "categories").Logger(),
		},
	}
}

// FetchAll returns the "All Tasks" category followed by the stored ones.
// When the fetch fails it returns model.BuiltinCategories with the error,
// so callers always have a usable set.
func (r *CategoryRepository) FetchAll(ctx context.Context, p recordstore.FetchParams) ([]model.Category, error) {
	records, err := r.t.fetch(ctx, p)
	if err != nil {
		return model.BuiltinCategories(), err
	}
	cats := make([]model.Category, 0, len(records)+1)
	cats = append(cats, model.AllTasksCategory())
	for _, c := range mapper.CategoriesFromRecords(records) {
		if c.ID == model.AllCategoryID {
			continue
		}
		cats = append(cats, c)
	}
	return cats, nil
}

// Get returns a category by id, or an error wrapping ErrNotFound.
func (r *CategoryRepository) Get(ctx context.Context, id string) (model.Category, error) {
	rec, err := r.t.get(ctx, id)
	if err != nil {
		return model.Category{}, err
	}
	return mapper.CategoryFromRecord(rec), nil
}

// Create writes a new category.
func (r *CategoryRepository) Create(ctx context.Context, w model.CategoryWrite) (model.Category, error) {
	rec, err := r.t.create(ctx, mapper.CategoryRecord("", w))
	if err != nil {
		return model.Category{}, err
	}
	return mapper.CategoryFromRecord(rec), nil
}

// Update replaces the mutable fields of a category.
func (r *CategoryRepository) Update(ctx context.Context, id string, w model.CategoryWrite) (model.Category, error) {
	rec, err := r.t.update(ctx, mapper.CategoryRecord(id, w))
	if err != nil {
		return model.Category{}, err
	}
	return mapper.CategoryFromRecord(rec), nil
}

// Delete removes categories. It succeeds if at least one was deleted.
func (r *CategoryRepository) Delete(ctx context.Context, ids ...string) error {
	return r.t.delete(ctx, ids)
}
