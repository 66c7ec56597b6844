package ui

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"checklist/internal/config"
	"checklist/internal/task"
)

type mode int

const (
	modeList mode = iota
	modeAdd
	modeEdit
)

type field int

const (
	fieldText field = iota
	fieldDue
	fieldTags
	fieldCount
)

func (f field) label() string {
	switch f {
	case fieldText:
		return "Task"
	case fieldDue:
		return "Due"
	default:
		return "Tags"
	}
}

func (f field) placeholder() string {
	switch f {
	case fieldText:
		return "Add a new task..."
	case fieldDue:
		return "YYYY-MM-DD (optional)"
	default:
		return "type a tag, enter to add"
	}
}

// Journal receives every committed change. storage.Store satisfies it.
// Sync replaces the whole journal and is used once a write has failed.
type Journal interface {
	SaveTask(task.Task) error
	DeleteTask(id string) error
	Sync([]task.Task) error
}

type Model struct {
	tasks      *task.Manager
	journal    Journal
	cfg        config.Config
	cursor     int
	mode       mode
	field      field
	input      textinput.Model
	status     string
	confirmDel bool
	pendingDel *task.Task
	saveFailed bool
	resync     bool
	now        func() time.Time
}

func New(tasks *task.Manager, journal Journal, cfg config.Config) Model {
	ti := textinput.New()
	ti.CharLimit = 256
	ti.Width = 40
	ti.Prompt = ""

	return Model{
		tasks:   tasks,
		journal: journal,
		cfg:     cfg,
		cursor:  clampCursor(0, tasks.Len()),
		status:  fmt.Sprintf("Press '%s' to add, space to toggle, '%s' to delete.", cfg.Keys.Add, cfg.Keys.Delete),
		input:   ti,
		mode:    modeList,
		now:     time.Now,
	}
}

func Run(tasks *task.Manager, journal Journal, cfg config.Config) error {
	program := tea.NewProgram(New(tasks, journal, cfg), tea.WithAltScreen())
	_, err := program.Run()
	return err
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.confirmDel {
			return m.updateDeleteConfirm(msg.String())
		}
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.input.Width = max(msg.Width-16, 10)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	switch m.mode {
	case modeAdd:
		return m.updateAddMode(key, msg)
	case modeEdit:
		return m.updateEditMode(key, msg)
	}
	return m.updateListMode(key)
}

func (m Model) updateListMode(key string) (tea.Model, tea.Cmd) {
	tasks := m.tasks.Tasks()
	switch key {
	case "ctrl+c", m.cfg.Keys.Quit:
		return m, tea.Quit
	case m.cfg.Keys.Down, "down":
		if len(tasks) == 0 {
			return m, nil
		}
		m.cursor = clampCursor(m.cursor+1, len(tasks))
	case m.cfg.Keys.Up, "up":
		if m.cursor > 0 {
			m.cursor = clampCursor(m.cursor-1, len(tasks))
		}
	case m.cfg.Keys.Add:
		return m.startAdd()
	case m.cfg.Keys.Toggle:
		if len(tasks) == 0 {
			return m, nil
		}
		t := tasks[m.cursor]
		if !m.tasks.ToggleComplete(t.ID) {
			return m, nil
		}
		m.persist(t.ID)
		if t.Completed {
			m.setStatus("Reopened task")
		} else {
			m.setStatus("Completed task")
		}
	case m.cfg.Keys.Delete:
		if len(tasks) == 0 {
			return m, nil
		}
		t := tasks[m.cursor]
		m.confirmDel = true
		m.pendingDel = &t
		m.status = fmt.Sprintf("Delete \"%s\"? y/n", t.Text)
	case m.cfg.Keys.Edit, m.cfg.Keys.Confirm:
		if len(tasks) == 0 {
			m.status = "No tasks to edit"
			return m, nil
		}
		return m.startEdit(tasks[m.cursor])
	}
	return m, nil
}

func (m Model) startAdd() (tea.Model, tea.Cmd) {
	m.tasks.OpenCreate()
	m.mode = modeAdd
	m.focusField(fieldText)
	m.status = "New task: tab to switch fields, enter to save, esc to cancel"
	cmd := m.input.Focus()
	return m, cmd
}

func (m *Model) focusField(f field) {
	m.field = f
	d := m.tasks.Draft()
	switch f {
	case fieldText:
		m.input.SetValue(d.Text)
	case fieldDue:
		m.input.SetValue(d.Due)
	default:
		m.input.SetValue("")
	}
	m.input.Placeholder = f.placeholder()
	m.input.CursorEnd()
}

// syncField copies the input into the draft field it is editing.
func (m *Model) syncField() {
	switch m.field {
	case fieldText:
		m.tasks.SetDraftText(m.input.Value())
	case fieldDue:
		m.tasks.SetDraftDue(m.input.Value())
	}
}

func (m Model) updateAddMode(key string, msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key {
	case "ctrl+c":
		return m, tea.Quit
	case m.cfg.Keys.Cancel:
		m.tasks.CancelCreate()
		m.mode = modeList
		m.input.SetValue("")
		m.input.Blur()
		m.status = "Cancelled"
		return m, nil
	case m.cfg.Keys.NextField:
		m.addTypedTag()
		m.focusField((m.field + 1) % fieldCount)
		return m, nil
	case m.cfg.Keys.PrevField:
		m.addTypedTag()
		m.focusField((m.field + fieldCount - 1) % fieldCount)
		return m, nil
	case m.cfg.Keys.Priority:
		p := m.tasks.CycleDraftPriority()
		m.status = "Priority: " + p.String()
		return m, nil
	case m.cfg.Keys.RemoveTag:
		return m.removeDraftTag(), nil
	case m.cfg.Keys.Confirm:
		if m.addTypedTag() {
			return m, nil
		}
		return m.submit()
	default:
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		m.syncField()
		return m, cmd
	}
}

// addTypedTag moves a tag typed into the tags field onto the draft.
func (m *Model) addTypedTag() bool {
	if m.field != fieldTags || strings.TrimSpace(m.input.Value()) == "" {
		return false
	}
	tag := m.input.Value()
	if m.tasks.AddTagToDraft(tag) {
		m.status = "Added tag " + strings.TrimSpace(tag)
	} else {
		m.status = "Tag already added"
	}
	m.input.SetValue("")
	return true
}

func (m Model) removeDraftTag() Model {
	tags := m.tasks.Draft().Tags
	if len(tags) == 0 {
		m.status = "No tags to remove"
		return m
	}
	tag := tags[len(tags)-1]
	if m.field == fieldTags && m.input.Value() != "" {
		tag = m.input.Value()
	}
	if m.tasks.RemoveTagFromDraft(tag) {
		m.status = "Removed tag " + tag
		if m.field == fieldTags {
			m.input.SetValue("")
		}
	} else {
		m.status = fmt.Sprintf("No tag %q", tag)
	}
	return m
}

func (m Model) submit() (tea.Model, tea.Cmd) {
	d := m.tasks.Draft()
	created, ok := m.tasks.CreateTask(d)
	if !ok {
		m.status = "Title cannot be empty"
		return m, nil
	}
	m.persist(created.ID)
	m.cursor = clampCursor(m.tasks.Len()-1, m.tasks.Len())
	if strings.TrimSpace(d.Due) != "" && created.Due == nil {
		m.setStatus("Added task (due date not understood, left empty)")
	} else {
		m.setStatus("Added task")
	}
	m.input.SetValue("")
	m.input.Blur()
	m.mode = modeList
	return m, nil
}

func (m Model) startEdit(t task.Task) (tea.Model, tea.Cmd) {
	if !m.tasks.BeginEdit(t.ID) {
		return m, nil
	}
	m.mode = modeEdit
	m.input.SetValue(t.Text)
	m.input.Placeholder = "Task"
	m.input.CursorEnd()
	m.status = "Editing: enter to save, esc to cancel"
	cmd := m.input.Focus()
	return m, cmd
}

func (m Model) updateEditMode(key string, msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key {
	case "ctrl+c":
		return m, tea.Quit
	case m.cfg.Keys.Cancel:
		m.tasks.CancelEdit()
		m.mode = modeList
		m.input.Blur()
		m.status = "Edit cancelled"
		return m, nil
	case m.cfg.Keys.Confirm:
		edit, _ := m.tasks.Editing()
		m.mode = modeList
		m.input.Blur()
		if !m.tasks.CommitEdit() {
			m.status = "Task no longer exists"
			return m, nil
		}
		m.persist(edit.ID)
		m.setStatus("Saved")
		return m, nil
	default:
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		m.tasks.UpdateEditText(m.input.Value())
		return m, cmd
	}
}

func (m Model) updateDeleteConfirm(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "n", "N", m.cfg.Keys.Cancel:
		m.status = "Delete cancelled"
		m.confirmDel = false
		m.pendingDel = nil
		return m, nil
	case "y", "Y":
		if m.pendingDel == nil {
			m.status = "Nothing to delete"
			m.confirmDel = false
			return m, nil
		}
		id := m.pendingDel.ID
		m.confirmDel = false
		m.pendingDel = nil
		if !m.tasks.DeleteTask(id) {
			m.status = "Nothing to delete"
			return m, nil
		}
		m.cursor = clampCursor(m.cursor, m.tasks.Len())
		m.status = "Deleted task"
		if m.journal == nil {
			return m, nil
		}
		var err error
		if m.resync {
			err = m.sync()
		} else if err = m.journal.DeleteTask(id); err != nil {
			log.Printf("journal delete %s: %v", id, err)
			m.resync = true
		}
		if err != nil {
			m.status = fmt.Sprintf("delete failed: %v", err)
		}
		return m, nil
	default:
		return m, nil
	}
}

// persist writes the current state of id to the journal, if there is one.
func (m *Model) persist(id string) {
	if m.journal == nil {
		return
	}
	t, ok := m.tasks.Get(id)
	if !ok {
		return
	}
	var err error
	if m.resync {
		err = m.sync()
	} else if err = m.journal.SaveTask(t); err != nil {
		log.Printf("journal save %s: %v", id, err)
		m.resync = true
	}
	if err != nil {
		m.status = fmt.Sprintf("save failed: %v", err)
		m.saveFailed = true
	}
}

// sync rewrites the journal from the collection after a lost write, so
// positions follow the session again.
func (m *Model) sync() error {
	if err := m.journal.Sync(m.tasks.Tasks()); err != nil {
		log.Printf("journal sync: %v", err)
		return err
	}
	m.resync = false
	return nil
}

// setStatus sets msg unless persisting just reported a failure.
func (m *Model) setStatus(msg string) {
	if m.saveFailed {
		m.saveFailed = false
		return
	}
	m.status = msg
}

func clampCursor(cur, n int) int {
	if n <= 0 {
		return 0
	}
	if cur < 0 {
		return 0
	}
	if cur >= n {
		return n - 1
	}
	return cur
}
