package googletasks

import (
	"strings"
)

// metaMarker separates the description from the metadata block in a task's
// notes.
const metaMarker = "---"

// Notes is the decoded form of a Google task's notes: the free-text
// description followed by an optional metadata block:
//
//	Pick colors first.
//
//	---
//	priority: high
//	tags: ui,brand
type Notes struct {
	Description string
	Priority    string
	Tags        string
}

// String encodes n. The metadata block is omitted when empty.
func (n Notes) String() string {
	if n.Priority == "" && n.Tags == "" {
		return n.Description
	}
	var b strings.Builder
	if n.Description != "" {
		b.WriteString(n.Description)
		b.WriteString("\n\n")
	}
	b.WriteString(metaMarker)
	if n.Priority != "" {
		b.WriteString("\npriority: ")
		b.WriteString(n.Priority)
	}
	if n.Tags != "" {
		b.WriteString("\ntags: ")
		b.WriteString(n.Tags)
	}
	return b.String()
}

// ParseNotes decodes notes written by Notes.String. Notes without a
// well-formed trailing metadata block are taken verbatim as the description.
func ParseNotes(s string) Notes {
	var body, meta string
	switch {
	case strings.HasPrefix(s, metaMarker+"\n"):
		meta = s[len(metaMarker)+1:]
	default:
		i := strings.LastIndex(s, "\n"+metaMarker+"\n")
		if i < 0 {
			return Notes{Description: s}
		}
		body, meta = s[:i], s[i+len(metaMarker)+2:]
	}

	n := Notes{Description: strings.TrimRight(body, "\n")}
	for _, line := range strings.Split(meta, "\n") {
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			return Notes{Description: s}
		}
		value = strings.TrimSpace(value)
		switch strings.TrimSpace(key) {
		case "priority":
			n.Priority = value
		case "tags":
			n.Tags = value
		default:
			return Notes{Description: s}
		}
	}
	return n
}
