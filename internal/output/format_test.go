package output_test

import (
	"bytes"
	"testing"
	"time"

	"taskflow/internal/model"
	"taskflow/internal/output"
)

var now = time.Date(2026, time.March, 10, 15, 30, 0, 0, time.Local)

func TestDueLabel(t *testing.T) {
	tests := []struct {
		due  time.Time
		want string
	}{
		{time.Date(2026, time.March, 10, 0, 0, 0, 0, time.Local), "Today"},
		{time.Date(2026, time.March, 10, 23, 59, 0, 0, time.Local), "Today"},
		{time.Date(2026, time.March, 11, 0, 0, 0, 0, time.Local), "Tomorrow"},
		{time.Date(2026, time.March, 9, 8, 0, 0, 0, time.Local), "Yesterday"},
		{time.Date(2026, time.March, 20, 0, 0, 0, 0, time.Local), "Mar 20, 2026"},
		{time.Date(2025, time.December, 31, 0, 0, 0, 0, time.Local), "Dec 31, 2025"},
		{time.Time{}, "no due date"},
	}
	for _, tt := range tests {
		if got := output.DueLabel(tt.due, now); got != tt.want {
			t.Errorf("DueLabel(%v): expected %q, got %q", tt.due, tt.want, got)
		}
	}
}

func TestFormatTask(t *testing.T) {
	task := model.Task{
		Title:      "Write\ndocs",
		Priority:   model.PriorityHigh,
		DueDate:    time.Date(2026, time.March, 11, 0, 0, 0, 0, time.Local),
		CategoryID: "development",
		Tags:       []string{"docs", "q1"},
	}

	var buf bytes.Buffer
	output.FormatTask(&buf, 1, task, now)
	want := "   1  [ ] Write docs  (high, Tomorrow, development) #docs #q1\n"
	if buf.String() != want {
		t.Errorf("expected %q, got %q", want, buf.String())
	}

	buf.Reset()
	task.Completed = true
	task.Title = "  "
	task.Tags = nil
	output.FormatTask(&buf, 12, task, now)
	want = "  12  [x] (untitled)  (high, Tomorrow, development)\n"
	if buf.String() != want {
		t.Errorf("expected %q, got %q", want, buf.String())
	}
}

func TestFormatStats(t *testing.T) {
	var buf bytes.Buffer
	output.FormatStats(&buf, model.Stats{Total: 3, Completed: 1, Pending: 2, Overdue: 1})
	want := "total: 3  completed: 1  pending: 2  overdue: 1\n"
	if buf.String() != want {
		t.Errorf("expected %q, got %q", want, buf.String())
	}
}

func TestFormatCategory(t *testing.T) {
	var buf bytes.Buffer
	output.FormatCategory(&buf, model.Category{ID: "design", Name: "Design", TaskCount: 2})
	output.FormatCategory(&buf, model.Category{ID: "7", Name: ""})
	want := "   2  Design [design]\n   0  (untitled) [7]\n"
	if buf.String() != want {
		t.Errorf("expected %q, got %q", want, buf.String())
	}
}

func TestFormatTaskDetail(t *testing.T) {
	var buf bytes.Buffer
	output.FormatTaskDetail(&buf, model.Task{
		ID:          "3",
		Title:       "Sketch logo",
		Description: "two\nlines",
		Completed:   true,
		Priority:    model.PriorityMedium,
		DueDate:     time.Date(2026, time.March, 9, 0, 0, 0, 0, time.Local),
		CategoryID:  "design",
		Tags:        []string{"brand"},
	}, now)
	want := "id:          3\n" +
		"title:       Sketch logo\n" +
		"description: two lines\n" +
		"status:      completed\n" +
		"priority:    medium\n" +
		"due:         Yesterday\n" +
		"category:    design\n" +
		"tags:        brand\n"
	if buf.String() != want {
		t.Errorf("expected %q, got %q", want, buf.String())
	}
}
