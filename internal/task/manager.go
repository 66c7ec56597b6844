package task

import (
	"errors"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
)

var ErrDuplicateID = errors.New("task with the given ID already exists")

type Option func(*Manager)

func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		m.now = now
	}
}

// WithDefaultPriority sets the priority a fresh creation draft starts with.
func WithDefaultPriority(p Priority) Option {
	return func(m *Manager) {
		m.defaultPriority = p.orDefault()
	}
}

func WithIDGenerator(next func() string) Option {
	return func(m *Manager) {
		m.newID = next
	}
}

// Manager owns the task collection and the two form drafts. Every mutation
// goes through its methods; each returns false when it declined to change
// anything.
type Manager struct {
	tasks []Task

	draft    Draft
	creating bool

	edit *EditDraft

	defaultPriority Priority

	now   func() time.Time
	newID func() string
}

func NewManager(opts ...Option) *Manager {
	m := &Manager{
		defaultPriority: Medium,
		now:             time.Now,
		newID:           uuid.NewString,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.draft = m.freshDraft()
	return m
}

// Load seeds the collection, e.g. from the journal. Existing tasks are
// replaced.
func (m *Manager) Load(tasks []Task) error {
	seen := make(map[string]struct{}, len(tasks))
	loaded := make([]Task, 0, len(tasks))
	for _, t := range tasks {
		if _, dup := seen[t.ID]; dup {
			return ErrDuplicateID
		}
		seen[t.ID] = struct{}{}
		t = t.clone()
		t.Priority = t.Priority.orDefault()
		t.Tags = normalizeTags(t.Tags)
		loaded = append(loaded, t)
	}
	m.tasks = loaded
	m.edit = nil
	return nil
}

func (m *Manager) Len() int {
	return len(m.tasks)
}

// Tasks returns a copy of the collection in display order.
func (m *Manager) Tasks() []Task {
	out := make([]Task, len(m.tasks))
	for i, t := range m.tasks {
		out[i] = t.clone()
	}
	return out
}

func (m *Manager) Get(id string) (Task, bool) {
	i := m.index(id)
	if i < 0 {
		return Task{}, false
	}
	return m.tasks[i].clone(), true
}

func (m *Manager) Counts() (total, done int) {
	for _, t := range m.tasks {
		if t.Completed {
			done++
		}
	}
	return len(m.tasks), done
}

func (m *Manager) index(id string) int {
	return slices.IndexFunc(m.tasks, func(t Task) bool { return t.ID == id })
}

func (m *Manager) uniqueID() string {
	for {
		id := m.newID()
		if id != "" && m.index(id) < 0 {
			return id
		}
	}
}

// CreateTask appends a task built from d. Whitespace-only text is rejected
// and leaves both the collection and the open draft untouched.
func (m *Manager) CreateTask(d Draft) (Task, bool) {
	text := strings.TrimSpace(d.Text)
	if text == "" {
		return Task{}, false
	}
	t := Task{
		ID:        m.uniqueID(),
		Text:      text,
		CreatedAt: m.now(),
		Due:       ParseDue(d.Due),
		Priority:  d.Priority.orDefault(),
		Tags:      normalizeTags(d.Tags),
	}
	m.tasks = append(m.tasks, t)
	m.draft = m.freshDraft()
	m.creating = false
	return t.clone(), true
}

func (m *Manager) DeleteTask(id string) bool {
	i := m.index(id)
	if i < 0 {
		return false
	}
	m.tasks = slices.Delete(m.tasks, i, i+1)
	if m.edit != nil && m.edit.ID == id {
		m.edit = nil
	}
	return true
}

func (m *Manager) ToggleComplete(id string) bool {
	i := m.index(id)
	if i < 0 {
		return false
	}
	m.tasks[i].Completed = !m.tasks[i].Completed
	return true
}

// BeginEdit starts editing id, discarding any edit already in progress.
func (m *Manager) BeginEdit(id string) bool {
	i := m.index(id)
	if i < 0 {
		return false
	}
	m.edit = &EditDraft{ID: id, Text: m.tasks[i].Text}
	return true
}

func (m *Manager) Editing() (EditDraft, bool) {
	if m.edit == nil {
		return EditDraft{}, false
	}
	return *m.edit, true
}

func (m *Manager) UpdateEditText(text string) bool {
	if m.edit == nil {
		return false
	}
	m.edit.Text = text
	return true
}

// CommitEdit stores the working text as is; unlike CreateTask it accepts
// an empty string.
func (m *Manager) CommitEdit() bool {
	if m.edit == nil {
		return false
	}
	e := *m.edit
	m.edit = nil
	i := m.index(e.ID)
	if i < 0 {
		return false
	}
	m.tasks[i].Text = e.Text
	return true
}

func (m *Manager) CancelEdit() bool {
	if m.edit == nil {
		return false
	}
	m.edit = nil
	return true
}

func (m *Manager) OpenCreate() {
	m.creating = true
}

func (m *Manager) Creating() bool {
	return m.creating
}

func (m *Manager) freshDraft() Draft {
	return Draft{Priority: m.defaultPriority}
}

func (m *Manager) Draft() Draft {
	return m.draft.clone()
}

func (m *Manager) SetDraftText(text string) {
	m.draft.Text = text
}

func (m *Manager) SetDraftDue(due string) {
	m.draft.Due = due
}

func (m *Manager) SetDraftPriority(p Priority) {
	m.draft.Priority = p.orDefault()
}

func (m *Manager) CycleDraftPriority() Priority {
	m.draft.Priority = m.draft.Priority.orDefault().Next()
	return m.draft.Priority
}

func (m *Manager) AddTagToDraft(tag string) bool {
	tag = strings.TrimSpace(tag)
	if tag == "" || slices.Contains(m.draft.Tags, tag) {
		return false
	}
	m.draft.Tags = append(m.draft.Tags, tag)
	return true
}

func (m *Manager) RemoveTagFromDraft(tag string) bool {
	i := slices.Index(m.draft.Tags, tag)
	if i < 0 {
		return false
	}
	m.draft.Tags = slices.Delete(m.draft.Tags, i, i+1)
	return true
}

// CancelCreate throws the draft away without creating a task.
func (m *Manager) CancelCreate() {
	m.draft = m.freshDraft()
	m.creating = false
}
