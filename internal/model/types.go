// Package model defines the task and category types shared by every layer.
package model

import (
	"fmt"
	"strings"
	"time"
)

// AllCategoryID is the sentinel category that matches every task.
// It is never persisted remotely.
const AllCategoryID = "all"

// DefaultCategoryID is the category assigned to tasks created without one.
const DefaultCategoryID = "development"

// Priority is the urgency of a task.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Rank orders priorities; higher is more urgent. Unknown values rank 0.
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 1
	default:
		return 0
	}
}

// Valid reports whether p is one of the known priorities.
func (p Priority) Valid() bool {
	return p.Rank() > 0
}

// ParsePriority parses a priority name (case-insensitive, trimmed).
func ParsePriority(s string) (Priority, error) {
	p := Priority(strings.ToLower(strings.TrimSpace(s)))
	if !p.Valid() {
		return "", fmt.Errorf("invalid priority: %s", s)
	}
	return p, nil
}

// Task is a single to-do item.
type Task struct {
	ID          string
	Title       string
	Description string
	Completed   bool
	CreatedAt   time.Time
	DueDate     time.Time
	Priority    Priority
	CategoryID  string
	Tags        []string
}

// Category groups tasks. TaskCount is derived and never stored.
type Category struct {
	ID        string
	Name      string
	Color     string
	TaskCount int
}

// SortKey selects the ordering of the derived view.
type SortKey string

const (
	SortByDueDate   SortKey = "dueDate"
	SortByPriority  SortKey = "priority"
	SortByCompleted SortKey = "completed"
)

// ParseSortKey parses a sort key name.
func ParseSortKey(s string) (SortKey, error) {
	switch k := SortKey(strings.TrimSpace(s)); k {
	case SortByDueDate, SortByPriority, SortByCompleted:
		return k, nil
	}
	return "", fmt.Errorf("invalid sort key: %s", s)
}

// Filter is the ephemeral filter and sort state of a view.
type Filter struct {
	ActiveCategory string
	SearchQuery    string
	SortKey        SortKey
}

// DefaultFilter shows every task ordered by due date.
func DefaultFilter() Filter {
	return Filter{ActiveCategory: AllCategoryID, SortKey: SortByDueDate}
}

// Stats are aggregate counts over a task collection.
type Stats struct {
	Total     int
	Completed int
	Pending   int
	Overdue   int
}

// TaskInput holds the user-editable fields of a task.
// Zero values mean "use the default" where a default exists.
type TaskInput struct {
	Title       string
	Description string
	DueDate     time.Time
	Priority    Priority
	CategoryID  string
	Tags        []string
}

// TaskWrite is the complete mutable field set sent to the store when a task
// is created or updated.
type TaskWrite struct {
	Title       string
	Description string
	Completed   bool
	DueDate     time.Time
	Priority    Priority
	CategoryID  string
	Tags        []string
}

// CategoryWrite is the mutable field set of a category write.
type CategoryWrite struct {
	Name  string
	Color string
	Tags  []string
}

// AllTasksCategory returns the synthetic category that disables filtering.
func AllTasksCategory() Category {
	return Category{ID: AllCategoryID, Name: "All Tasks", Color: "bg-surface-500"}
}

// BuiltinCategories is the fallback category set used when categories
// cannot be loaded. "all" is first.
func BuiltinCategories() []Category {
	return []Category{
		AllTasksCategory(),
		{ID: "design", Name: "Design", Color: "bg-purple-500"},
		{ID: "development", Name: "Development", Color: "bg-blue-500"},
		{ID: "management", Name: "Management", Color: "bg-green-500"},
		{ID: "marketing", Name: "Marketing", Color: "bg-pink-500"},
	}
}
