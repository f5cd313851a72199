package engine

import (
	"slices"
	"strings"
	"time"

	"taskflow/internal/model"
)

// Draft is an in-progress task edit. Its methods never perform I/O.
type Draft struct {
	Title       string
	Description string
	DueDate     time.Time
	Priority    model.Priority
	CategoryID  string
	Tags        []string
}

// NewDraft returns an empty draft: medium priority, due today, in the given
// category.
func NewDraft(category string, now time.Time) *Draft {
	return &Draft{
		DueDate:    startOfDay(now),
		Priority:   model.PriorityMedium,
		CategoryID: category,
		Tags:       []string{},
	}
}

// DraftFromTask returns a draft pre-filled from t for editing.
func DraftFromTask(t model.Task) *Draft {
	return &Draft{
		Title:       t.Title,
		Description: t.Description,
		DueDate:     t.DueDate,
		Priority:    t.Priority,
		CategoryID:  t.CategoryID,
		Tags:        slices.Clone(t.Tags),
	}
}

// AddTag appends the trimmed tag unless it is empty or already present.
func (d *Draft) AddTag(tag string) {
	tag = strings.TrimSpace(tag)
	if tag == "" || slices.Contains(d.Tags, tag) {
		return
	}
	d.Tags = append(d.Tags, tag)
}

// RemoveTag removes every tag equal to tag.
func (d *Draft) RemoveTag(tag string) {
	d.Tags = slices.DeleteFunc(d.Tags, func(t string) bool { return t == tag })
}

// Input returns the draft as create/update input.
func (d *Draft) Input() model.TaskInput {
	tags := slices.Clone(d.Tags)
	if tags == nil {
		tags = []string{}
	}
	return model.TaskInput{
		Title:       d.Title,
		Description: d.Description,
		DueDate:     d.DueDate,
		Priority:    d.Priority,
		CategoryID:  d.CategoryID,
		Tags:        tags,
	}
}

func startOfDay(t time.Time) time.Time {
	y, m, day := t.Date()
	return time.Date(y, m, day, 0, 0, 0, 0, t.Location())
}
