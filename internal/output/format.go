// Package output provides formatters for CLI output.
package output

import (
	"fmt"
	"io"
	"strings"
	"time"

	"taskflow/internal/model"
)

// DueLayout is the due date label format outside the relative window.
const DueLayout = "Jan 2, 2006"

// FormatTask formats a task line of the numbered view.
// Format: "{N:>4}  [{x| }] {TITLE}  ({PRIORITY}, {DUE}, {CATEGORY}) #tag ...\n"
func FormatTask(w io.Writer, num int, task model.Task, now time.Time) {
	box := " "
	if task.Completed {
		box = "x"
	}
	fmt.Fprintf(w, "%4d  [%s] %s  (%s, %s, %s)",
		num, box, normalizeTitle(task.Title), task.Priority, DueLabel(task.DueDate, now), task.CategoryID)
	for _, tag := range task.Tags {
		fmt.Fprintf(w, " #%s", tag)
	}
	fmt.Fprintln(w)
}

// FormatTaskDetail formats every field of a task, one per line.
func FormatTaskDetail(w io.Writer, task model.Task, now time.Time) {
	status := "pending"
	if task.Completed {
		status = "completed"
	}
	fmt.Fprintf(w, "id:          %s\n", task.ID)
	fmt.Fprintf(w, "title:       %s\n", normalizeTitle(task.Title))
	if task.Description != "" {
		fmt.Fprintf(w, "description: %s\n", flatten(task.Description))
	}
	fmt.Fprintf(w, "status:      %s\n", status)
	fmt.Fprintf(w, "priority:    %s\n", task.Priority)
	fmt.Fprintf(w, "due:         %s\n", DueLabel(task.DueDate, now))
	fmt.Fprintf(w, "category:    %s\n", task.CategoryID)
	if len(task.Tags) > 0 {
		fmt.Fprintf(w, "tags:        %s\n", strings.Join(task.Tags, ", "))
	}
}

// FormatStats formats aggregate counts on one line.
func FormatStats(w io.Writer, s model.Stats) {
	fmt.Fprintf(w, "total: %d  completed: %d  pending: %d  overdue: %d\n",
		s.Total, s.Completed, s.Pending, s.Overdue)
}

// FormatCategory formats a category line with its task count.
// Format: "{COUNT:>4}  {NAME} [{ID}]\n"
func FormatCategory(w io.Writer, c model.Category) {
	fmt.Fprintf(w, "%4d  %s [%s]\n", c.TaskCount, normalizeListTitle(c.Name), c.ID)
}

// DueLabel renders a due date relative to now: "Today", "Tomorrow",
// "Yesterday", otherwise "Jan 2, 2006". Days are compared in now's location.
func DueLabel(due, now time.Time) string {
	if due.IsZero() {
		return "no due date"
	}
	d := dayOf(due.In(now.Location()))
	today := dayOf(now)
	switch {
	case d.Equal(today):
		return "Today"
	case d.Equal(today.AddDate(0, 0, 1)):
		return "Tomorrow"
	case d.Equal(today.AddDate(0, 0, -1)):
		return "Yesterday"
	}
	return due.Format(DueLayout)
}

func dayOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// normalizeTitle normalizes a task title for display.
// - Empty or whitespace-only titles become "(untitled)"
// - Newlines are replaced with spaces
func normalizeTitle(title string) string {
	title = flatten(title)
	if strings.TrimSpace(title) == "" {
		return "(untitled)"
	}
	return title
}

func flatten(s string) string {
	s = strings.ReplaceAll(s, "\r", " ")
	return strings.ReplaceAll(s, "\n", " ")
}

// normalizeListTitle normalizes a category name for display.
// Empty or whitespace-only names become "(untitled)".
func normalizeListTitle(title string) string {
	if strings.TrimSpace(title) == "" {
		return "(untitled)"
	}
	return title
}
