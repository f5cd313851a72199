package engine

import (
	"slices"
	"strings"
	"time"

	"taskflow/internal/model"
)

// DeriveView returns the tasks matching f, ordered by f.SortKey. The input
// slice is never modified; equal elements keep their input order.
func DeriveView(tasks []model.Task, f model.Filter) []model.Task {
	query := strings.ToLower(f.SearchQuery)
	view := make([]model.Task, 0, len(tasks))
	for _, t := range tasks {
		if matchesCategory(t, f.ActiveCategory) && matchesSearch(t, query) {
			view = append(view, t)
		}
	}

	switch f.SortKey {
	case model.SortByDueDate:
		slices.SortStableFunc(view, func(a, b model.Task) int {
			return a.DueDate.Compare(b.DueDate)
		})
	case model.SortByPriority:
		slices.SortStableFunc(view, func(a, b model.Task) int {
			return b.Priority.Rank() - a.Priority.Rank()
		})
	case model.SortByCompleted:
		slices.SortStableFunc(view, func(a, b model.Task) int {
			return boolRank(a.Completed) - boolRank(b.Completed)
		})
	}
	return view
}

func matchesCategory(t model.Task, category string) bool {
	return category == "" || category == model.AllCategoryID || t.CategoryID == category
}

// matchesSearch expects query already lowercased.
func matchesSearch(t model.Task, query string) bool {
	if query == "" {
		return true
	}
	return strings.Contains(strings.ToLower(t.Title), query) ||
		strings.Contains(strings.ToLower(t.Description), query)
}

func boolRank(b bool) int {
	if b {
		return 1
	}
	return 0
}

// DeriveStats counts tasks. A task is overdue when it is incomplete and its
// due date is strictly before now.
func DeriveStats(tasks []model.Task, now time.Time) model.Stats {
	var s model.Stats
	for _, t := range tasks {
		s.Total++
		if t.Completed {
			s.Completed++
			continue
		}
		if t.DueDate.Before(now) {
			s.Overdue++
		}
	}
	s.Pending = s.Total - s.Completed
	return s
}

// CategoryCounts returns copies of cats with TaskCount filled in. The "all"
// category counts every task; tasks referencing an unknown category are
// counted only there.
func CategoryCounts(cats []model.Category, tasks []model.Task) []model.Category {
	counts := make(map[string]int, len(cats))
	for _, t := range tasks {
		counts[t.CategoryID]++
	}
	out := make([]model.Category, len(cats))
	for i, c := range cats {
		if c.ID == model.AllCategoryID {
			c.TaskCount = len(tasks)
		} else {
			c.TaskCount = counts[c.ID]
		}
		out[i] = c
	}
	return out
}
