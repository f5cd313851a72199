package commands

import (
	"flag"
	"strings"
	"time"

	"taskflow/internal/engine"
	"taskflow/internal/model"
)

// optString is a string flag that records whether it was given.
type optString struct {
	value string
	set   bool
}

func (o *optString) String() string { return o.value }

func (o *optString) Set(s string) error {
	o.value, o.set = s, true
	return nil
}

// tagList is a repeatable --tag flag. Commas also separate tags.
type tagList struct {
	tags []string
	set  bool
}

func (l *tagList) String() string { return strings.Join(l.tags, ",") }

func (l *tagList) Set(s string) error {
	l.set = true
	for _, t := range strings.Split(s, ",") {
		l.tags = append(l.tags, t)
	}
	return nil
}

// DateLayout is the --due flag format.
const DateLayout = "2006-01-02"

// taskFlags are the editable task fields shared by add and edit.
type taskFlags struct {
	desc     optString
	due      optString
	priority optString
	category optString
	tags     tagList
}

func (f *taskFlags) register(fs *flag.FlagSet) {
	fs.Var(&f.desc, "desc", "")
	fs.Var(&f.due, "due", "")
	fs.Var(&f.priority, "priority", "")
	fs.Var(&f.priority, "p", "")
	fs.Var(&f.category, "category", "")
	fs.Var(&f.category, "c", "")
	fs.Var(&f.tags, "tag", "")
	fs.Var(&f.tags, "t", "")
}

func (f *taskFlags) any() bool {
	return f.desc.set || f.due.set || f.priority.set || f.category.set || f.tags.set
}

// reset clears values left over from a previous parse.
func (f *taskFlags) reset() {
	*f = taskFlags{}
}

// parseDue parses a YYYY-MM-DD date as local midnight.
func parseDue(s string) (time.Time, error) {
	d, err := time.ParseInLocation(DateLayout, strings.TrimSpace(s), time.Local)
	if err != nil {
		return time.Time{}, usageError("invalid due date: %s (want YYYY-MM-DD)", s)
	}
	return d, nil
}

// apply copies the given flags onto d. Given tags replace the draft's tags.
func (f *taskFlags) apply(d *engine.Draft) error {
	if f.desc.set {
		d.Description = f.desc.value
	}
	if f.due.set {
		due, err := parseDue(f.due.value)
		if err != nil {
			return err
		}
		d.DueDate = due
	}
	if f.priority.set {
		p, err := parsePriorityFlag(f.priority.value)
		if err != nil {
			return err
		}
		d.Priority = p
	}
	if f.category.set {
		d.CategoryID = strings.TrimSpace(f.category.value)
	}
	if f.tags.set {
		d.Tags = []string{}
		for _, t := range f.tags.tags {
			d.AddTag(t)
		}
	}
	return nil
}

func parsePriorityFlag(s string) (model.Priority, error) {
	p, err := model.ParsePriority(s)
	if err != nil {
		return "", usageError("%v", err)
	}
	return p, nil
}
