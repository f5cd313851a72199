// Package mapper translates between remote record fields and the task and
// category model. String encodings of the remote schema stay in this package.
package mapper

import (
	"strings"
	"time"

	"taskflow/internal/model"
	"taskflow/internal/recordstore"
)

// Task table fields.
const (
	FieldTitle       = "title"
	FieldDescription = "description"
	FieldCompleted   = "completed"
	FieldDueDate     = "due_date"
	FieldPriority    = "priority"
	FieldCategory    = "category"
)

// Category table fields.
const (
	FieldColor = "color"
)

// completedMarker is the remote encoding of a completed task.
const completedMarker = "completed"

// DefaultCategoryColor is used when a category record has no color.
const DefaultCategoryColor = "bg-blue-500"

// DateLayout is the wire format of due_date.
const DateLayout = "2006-01-02"

// TaskFields lists every task field, including read-only audit fields.
var TaskFields = []string{
	recordstore.FieldID, recordstore.FieldName, recordstore.FieldTags,
	recordstore.FieldOwner, recordstore.FieldCreatedOn, recordstore.FieldCreatedBy,
	recordstore.FieldModifiedOn, recordstore.FieldModifiedBy,
	FieldTitle, FieldDescription, FieldCompleted, FieldDueDate, FieldPriority, FieldCategory,
}

// CategoryFields lists every category field, including read-only audit fields.
var CategoryFields = []string{
	recordstore.FieldID, recordstore.FieldName, recordstore.FieldTags,
	recordstore.FieldOwner, recordstore.FieldCreatedOn, recordstore.FieldCreatedBy,
	recordstore.FieldModifiedOn, recordstore.FieldModifiedBy,
	FieldColor,
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	DateLayout,
}

// Mapper converts records. The zero value uses model.DefaultCategoryID and time.Now.
type Mapper struct {
	DefaultCategory string
	Now             func() time.Time
}

// New creates a Mapper with the given default category.
func New(defaultCategory string) *Mapper {
	return &Mapper{DefaultCategory: defaultCategory}
}

func (m *Mapper) now() time.Time {
	if m.Now != nil {
		return m.Now()
	}
	return time.Now()
}

func (m *Mapper) defaultCategory() string {
	if m.DefaultCategory != "" {
		return m.DefaultCategory
	}
	return model.DefaultCategoryID
}

// TaskFromRecord maps a task record. Absent or malformed fields fall back to
// defaults: due date and creation time to now, category to the default
// category, priority to medium, tags to empty.
func (m *Mapper) TaskFromRecord(r recordstore.Record) model.Task {
	now := m.now()

	title := recordstore.FieldString(r[FieldTitle])
	if title == "" {
		title = recordstore.FieldString(r[recordstore.FieldName])
	}

	due, ok := parseTime(r[FieldDueDate])
	if !ok {
		due = now
	}
	created, ok := parseTime(r[recordstore.FieldCreatedOn])
	if !ok {
		created = now
	}

	priority, err := model.ParsePriority(recordstore.FieldString(r[FieldPriority]))
	if err != nil {
		priority = model.PriorityMedium
	}

	category := recordstore.FieldString(r[FieldCategory])
	if category == "" {
		category = m.defaultCategory()
	}

	return model.Task{
		ID:          r.ID(),
		Title:       title,
		Description: recordstore.FieldString(r[FieldDescription]),
		Completed:   strings.Contains(recordstore.FieldString(r[FieldCompleted]), completedMarker),
		CreatedAt:   created,
		DueDate:     due,
		Priority:    priority,
		CategoryID:  category,
		Tags:        SplitTags(r[recordstore.FieldTags]),
	}
}

// TasksFromRecords maps a slice of task records, preserving order.
func (m *Mapper) TasksFromRecords(records []recordstore.Record) []model.Task {
	tasks := make([]model.Task, 0, len(records))
	for _, r := range records {
		tasks = append(tasks, m.TaskFromRecord(r))
	}
	return tasks
}

// TaskRecord encodes w as a record. Name mirrors title. id is set only when
// non-empty (updates). A zero due date is written as an empty string, and an
// empty category is omitted so the store keeps its own default.
func TaskRecord(id string, w model.TaskWrite) recordstore.Record {
	priority := w.Priority
	if !priority.Valid() {
		priority = model.PriorityMedium
	}
	r := recordstore.Record{
		recordstore.FieldName: w.Title,
		recordstore.FieldTags: JoinTags(w.Tags),
		FieldTitle:            w.Title,
		FieldDescription:      w.Description,
		FieldCompleted:        encodeCompleted(w.Completed),
		FieldDueDate:          formatDate(w.DueDate),
		FieldPriority:         string(priority),
	}
	if w.CategoryID != "" {
		r[FieldCategory] = w.CategoryID
	}
	if id != "" {
		r[recordstore.FieldID] = id
	}
	return r
}

// WriteFromTask returns the full mutable field set of t.
func WriteFromTask(t model.Task) model.TaskWrite {
	return model.TaskWrite{
		Title:       t.Title,
		Description: t.Description,
		Completed:   t.Completed,
		DueDate:     t.DueDate,
		Priority:    t.Priority,
		CategoryID:  t.CategoryID,
		Tags:        t.Tags,
	}
}

// CategoryFromRecord maps a category record. TaskCount is left at zero.
func CategoryFromRecord(r recordstore.Record) model.Category {
	color := recordstore.FieldString(r[FieldColor])
	if color == "" {
		color = DefaultCategoryColor
	}
	return model.Category{
		ID:    r.ID(),
		Name:  recordstore.FieldString(r[recordstore.FieldName]),
		Color: color,
	}
}

// CategoriesFromRecords maps a slice of category records, preserving order.
func CategoriesFromRecords(records []recordstore.Record) []model.Category {
	cats := make([]model.Category, 0, len(records))
	for _, r := range records {
		cats = append(cats, CategoryFromRecord(r))
	}
	return cats
}

// CategoryRecord encodes w as a record; id is set only when non-empty.
func CategoryRecord(id string, w model.CategoryWrite) recordstore.Record {
	color := w.Color
	if color == "" {
		color = DefaultCategoryColor
	}
	r := recordstore.Record{
		recordstore.FieldName: w.Name,
		recordstore.FieldTags: JoinTags(w.Tags),
		FieldColor:            color,
	}
	if id != "" {
		r[recordstore.FieldID] = id
	}
	return r
}

// SplitTags decodes a comma-joined tag string. Empty entries are dropped and
// order is kept. Non-string values decode to an empty slice.
func SplitTags(v any) []string {
	s, ok := v.(string)
	if !ok {
		return []string{}
	}
	tags := []string{}
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			tags = append(tags, part)
		}
	}
	return tags
}

// JoinTags encodes tags as a comma-joined string.
func JoinTags(tags []string) string {
	return strings.Join(tags, ",")
}

func encodeCompleted(done bool) string {
	if done {
		return completedMarker
	}
	return ""
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(DateLayout)
}

// parseTime accepts the date and timestamp layouts the store produces.
// Bare dates are interpreted in local time.
func parseTime(v any) (time.Time, bool) {
	s := strings.TrimSpace(recordstore.FieldString(v))
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timeLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
