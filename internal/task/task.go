package task

import (
	"slices"
	"strings"
	"time"
)

type Priority int

const (
	Low Priority = iota + 1
	Medium
	High
)

func (p Priority) String() string {
	switch p {
	case Low:
		return "low"
	case High:
		return "high"
	default:
		return "medium"
	}
}

// Next cycles low -> medium -> high -> low.
func (p Priority) Next() Priority {
	switch p {
	case Low:
		return Medium
	case Medium:
		return High
	default:
		return Low
	}
}

func (p Priority) orDefault() Priority {
	if p < Low || p > High {
		return Medium
	}
	return p
}

// ParsePriority maps "low", "medium" and "high" (any case) to a Priority.
// Anything else yields Medium and ok=false.
func ParsePriority(v string) (Priority, bool) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "low", "l":
		return Low, true
	case "medium", "med", "m":
		return Medium, true
	case "high", "h":
		return High, true
	}
	return Medium, false
}

type Task struct {
	ID        string
	Text      string
	Completed bool
	CreatedAt time.Time
	Due       *time.Time
	Priority  Priority
	Tags      []string
}

func (t Task) clone() Task {
	if t.Due != nil {
		d := *t.Due
		t.Due = &d
	}
	t.Tags = slices.Clone(t.Tags)
	return t
}

// Draft is the state of the add-task form before it is submitted.
type Draft struct {
	Text     string
	Due      string
	Priority Priority
	Tags     []string
}

func (d Draft) clone() Draft {
	d.Tags = slices.Clone(d.Tags)
	return d
}

// EditDraft holds the working text of a task being edited in place.
type EditDraft struct {
	ID   string
	Text string
}

var dueLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04",
	time.RFC3339,
}

// ParseDue parses a due date typed into the form. Empty or unparseable
// input yields nil.
func ParseDue(raw string) *time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	for _, layout := range dueLayouts {
		if t, err := time.ParseInLocation(layout, raw, time.Local); err == nil {
			return &t
		}
	}
	return nil
}

// normalizeTags trims, drops empties and keeps the first occurrence of each tag.
func normalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" || slices.Contains(out, tag) {
			continue
		}
		out = append(out, tag)
	}
	return out
}
