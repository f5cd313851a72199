// Package engine maintains the in-memory task and category collections,
// derives filtered views and statistics from them, and runs mutations
// against the repositories. After every successful mutation the collections
// are reloaded from the store; local state is never changed optimistically.
package engine

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"taskflow/internal/model"
	"taskflow/internal/recordstore"
)

// TaskSource is the task persistence used by the engine.
type TaskSource interface {
	FetchAll(ctx context.Context, p recordstore.FetchParams) ([]model.Task, error)
	Create(ctx context.Context, w model.TaskWrite) (model.Task, error)
	Update(ctx context.Context, id string, w model.TaskWrite) (model.Task, error)
	Delete(ctx context.Context, ids ...string) error
}

// CategorySource is the category persistence used by the engine.
// FetchAll may return a fallback set together with an error.
type CategorySource interface {
	FetchAll(ctx context.Context, p recordstore.FetchParams) ([]model.Category, error)
}

// Notifier receives user-facing messages.
type Notifier interface {
	Success(msg string)
	Failure(err error)
}

// ConfirmFunc asks the user to confirm deleting t.
type ConfirmFunc func(t model.Task) bool

// Options configures an Engine. Zero values select defaults.
type Options struct {
	// DefaultCategory is assigned to new tasks without a category.
	DefaultCategory string
	Notifier        Notifier
	Logger          zerolog.Logger
	Now             func() time.Time
}

// Engine is safe for concurrent use. Remote calls run without holding the
// state lock.
type Engine struct {
	tasks      TaskSource
	categories CategorySource

	defaultCategory string
	notify          Notifier
	log             zerolog.Logger
	now             func() time.Time

	mu         sync.Mutex
	taskList   []model.Task
	cats       []model.Category
	filter     model.Filter
	inFlight   bool
	loadSeq    uint64
	appliedSeq uint64
}

// New creates an engine. The category list starts as the built-in set.
func New(tasks TaskSource, categories CategorySource, opts Options) *Engine {
	e := &Engine{
		tasks:           tasks,
		categories:      categories,
		defaultCategory: opts.DefaultCategory,
		notify:          opts.Notifier,
		log:             opts.Logger.With().Str("component", "engine").Logger(),
		now:             opts.Now,
		taskList:        []model.Task{},
		cats:            model.BuiltinCategories(),
		filter:          model.DefaultFilter(),
	}
	if e.defaultCategory == "" {
		e.defaultCategory = model.DefaultCategoryID
	}
	if e.notify == nil {
		e.notify = nopNotifier{}
	}
	if e.now == nil {
		e.now = time.Now
	}
	return e
}

// DefaultCategory returns the category assigned to new tasks.
func (e *Engine) DefaultCategory() string {
	return e.defaultCategory
}

// Load fetches tasks and categories. The two fetches fail independently: on
// task failure the collection becomes empty, on category failure the
// built-in set is used. The returned error, if any, is a *LoadError.
//
// Overlapping loads are ordered by start: a load's results are dropped if a
// load that started later has already been applied.
func (e *Engine) Load(ctx context.Context) error {
	e.mu.Lock()
	e.loadSeq++
	seq := e.loadSeq
	e.mu.Unlock()

	tasks, taskErr := e.tasks.FetchAll(ctx, recordstore.FetchParams{})
	if taskErr != nil {
		tasks = []model.Task{}
	}
	cats, catErr := e.categories.FetchAll(ctx, recordstore.FetchParams{})
	if catErr != nil && len(cats) == 0 {
		cats = model.BuiltinCategories()
	}
	cats = withAllFirst(cats)

	e.mu.Lock()
	stale := seq < e.appliedSeq
	if !stale {
		e.taskList = tasks
		e.cats = cats
		e.appliedSeq = seq
	}
	e.mu.Unlock()

	if stale {
		e.log.Debug().Uint64("seq", seq).Msg("discarding stale load")
	} else {
		e.log.Debug().Uint64("seq", seq).Int("tasks", len(tasks)).Int("categories", len(cats)).Msg("loaded")
	}

	if taskErr == nil && catErr == nil {
		return nil
	}
	if taskErr != nil {
		e.notify.Failure(fmt.Errorf("failed to load tasks: %w", taskErr))
	}
	if catErr != nil {
		e.notify.Failure(fmt.Errorf("failed to load categories, using defaults: %w", catErr))
	}
	return &LoadError{Tasks: taskErr, Categories: catErr}
}

// withAllFirst ensures the "all" category is present exactly once, first.
func withAllFirst(cats []model.Category) []model.Category {
	out := make([]model.Category, 0, len(cats)+1)
	all := model.AllTasksCategory()
	for _, c := range cats {
		if c.ID == model.AllCategoryID {
			all = c
			continue
		}
		out = append(out, c)
	}
	return append([]model.Category{all}, out...)
}

// Tasks returns a copy of the loaded task collection.
func (e *Engine) Tasks() []model.Task {
	e.mu.Lock()
	defer e.mu.Unlock()
	return slices.Clone(e.taskList)
}

// Categories returns the categories with task counts derived from the
// current task collection. "all" is always first.
func (e *Engine) Categories() []model.Category {
	e.mu.Lock()
	defer e.mu.Unlock()
	return CategoryCounts(e.cats, e.taskList)
}

// Filter returns the current filter state.
func (e *Engine) Filter() model.Filter {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.filter
}

// SetFilter replaces the filter state. An empty category selects "all" and
// an empty sort key selects due date.
func (e *Engine) SetFilter(f model.Filter) {
	if f.ActiveCategory == "" {
		f.ActiveCategory = model.AllCategoryID
	}
	if f.SortKey == "" {
		f.SortKey = model.SortByDueDate
	}
	e.mu.Lock()
	e.filter = f
	e.mu.Unlock()
}

// View returns the derived view for the current filter state.
func (e *Engine) View() []model.Task {
	e.mu.Lock()
	defer e.mu.Unlock()
	return DeriveView(e.taskList, e.filter)
}

// Stats returns statistics over the whole task collection.
func (e *Engine) Stats() model.Stats {
	e.mu.Lock()
	defer e.mu.Unlock()
	return DeriveStats(e.taskList, e.now())
}

// Busy reports whether a mutation is in flight.
func (e *Engine) Busy() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.inFlight
}

// Find returns the loaded task with the given id.
func (e *Engine) Find(id string) (model.Task, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	i := slices.IndexFunc(e.taskList, func(t model.Task) bool { return t.ID == id })
	if i < 0 {
		return model.Task{}, false
	}
	return e.taskList[i], true
}

// NewDraft returns an empty draft in the default category.
func (e *Engine) NewDraft() *Draft {
	return NewDraft(e.defaultCategory, e.now())
}

// Create validates in and creates a task, then reloads. Missing fields
// default to medium priority, the default category and today's date.
func (e *Engine) Create(ctx context.Context, in model.TaskInput) (model.Task, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return model.Task{}, e.fail(fmt.Errorf("%w: task title is required", ErrValidation))
	}

	w := model.TaskWrite{
		Title:       title,
		Description: in.Description,
		Completed:   false,
		DueDate:     in.DueDate,
		Priority:    in.Priority,
		CategoryID:  in.CategoryID,
		Tags:        cleanTags(in.Tags),
	}
	if w.DueDate.IsZero() {
		w.DueDate = startOfDay(e.now())
	}
	if !w.Priority.Valid() {
		w.Priority = model.PriorityMedium
	}
	if w.CategoryID == "" || w.CategoryID == model.AllCategoryID {
		w.CategoryID = e.defaultCategory
	}

	if err := e.begin(); err != nil {
		return model.Task{}, e.fail(err)
	}
	defer e.end()

	created, err := e.tasks.Create(ctx, w)
	if err != nil {
		return model.Task{}, e.fail(err)
	}
	e.log.Debug().Str("id", created.ID).Msg("task created")
	e.notify.Success("Task created successfully!")
	e.refresh(ctx)
	return created, nil
}

// Update validates in and replaces the task's fields, then reloads. The
// completion state is kept. Zero due date, priority or category and nil
// tags keep the task's current values.
func (e *Engine) Update(ctx context.Context, id string, in model.TaskInput) (model.Task, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return model.Task{}, e.fail(fmt.Errorf("%w: task title is required", ErrValidation))
	}
	current, ok := e.Find(id)
	if !ok {
		return model.Task{}, e.fail(fmt.Errorf("%w: %s", ErrNotFound, id))
	}

	w := model.TaskWrite{
		Title:       title,
		Description: in.Description,
		Completed:   current.Completed,
		DueDate:     in.DueDate,
		Priority:    in.Priority,
		CategoryID:  in.CategoryID,
		Tags:        current.Tags,
	}
	if w.DueDate.IsZero() {
		w.DueDate = current.DueDate
	}
	if !w.Priority.Valid() {
		w.Priority = current.Priority
	}
	if w.CategoryID == "" || w.CategoryID == model.AllCategoryID {
		w.CategoryID = current.CategoryID
	}
	if in.Tags != nil {
		w.Tags = cleanTags(in.Tags)
	}

	if err := e.begin(); err != nil {
		return model.Task{}, e.fail(err)
	}
	defer e.end()

	updated, err := e.tasks.Update(ctx, id, w)
	if err != nil {
		return model.Task{}, e.fail(err)
	}
	e.log.Debug().Str("id", id).Msg("task updated")
	e.notify.Success("Task updated successfully!")
	e.refresh(ctx)
	return updated, nil
}

// ToggleComplete inverts the completion state of a task and reloads. On
// failure the local state is left as last loaded.
func (e *Engine) ToggleComplete(ctx context.Context, id string) error {
	current, ok := e.Find(id)
	if !ok {
		return e.fail(fmt.Errorf("%w: %s", ErrNotFound, id))
	}

	w := model.TaskWrite{
		Title:       current.Title,
		Description: current.Description,
		Completed:   !current.Completed,
		DueDate:     current.DueDate,
		Priority:    current.Priority,
		CategoryID:  current.CategoryID,
		Tags:        current.Tags,
	}

	if err := e.begin(); err != nil {
		return e.fail(err)
	}
	defer e.end()

	if _, err := e.tasks.Update(ctx, id, w); err != nil {
		return e.fail(err)
	}
	if w.Completed {
		e.notify.Success("Task completed!")
	} else {
		e.notify.Success("Task marked as incomplete")
	}
	e.refresh(ctx)
	return nil
}

// Delete removes a task after confirm approves it, then reloads. A nil
// confirm or a refusal aborts with no error and no remote call. The
// returned bool reports whether the task was deleted.
func (e *Engine) Delete(ctx context.Context, id string, confirm ConfirmFunc) (bool, error) {
	current, ok := e.Find(id)
	if !ok {
		return false, e.fail(fmt.Errorf("%w: %s", ErrNotFound, id))
	}
	if confirm == nil || !confirm(current) {
		e.log.Debug().Str("id", id).Msg("delete not confirmed")
		return false, nil
	}

	if err := e.begin(); err != nil {
		return false, e.fail(err)
	}
	defer e.end()

	if err := e.tasks.Delete(ctx, id); err != nil {
		return false, e.fail(err)
	}
	e.notify.Success("Task deleted successfully!")
	e.refresh(ctx)
	return true, nil
}

// refresh reloads after a successful mutation. The mutation stands even if
// the reload fails; the failure is reported as ErrRefresh.
func (e *Engine) refresh(ctx context.Context) {
	if err := e.Load(ctx); err != nil {
		e.log.Warn().Err(err).Msg("reload after change failed")
		e.notify.Failure(fmt.Errorf("%w: %v", ErrRefresh, err))
	}
}

func (e *Engine) begin() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.inFlight {
		return ErrMutationInFlight
	}
	e.inFlight = true
	return nil
}

func (e *Engine) end() {
	e.mu.Lock()
	e.inFlight = false
	e.mu.Unlock()
}

func (e *Engine) fail(err error) error {
	if errors.Is(err, ErrValidation) || errors.Is(err, ErrNotFound) {
		e.log.Debug().Err(err).Msg("rejected")
	}
	e.notify.Failure(err)
	return err
}

// cleanTags trims tags and drops empty ones, keeping order.
func cleanTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}

type nopNotifier struct{}

func (nopNotifier) Success(string) {}
func (nopNotifier) Failure(error)  {}
