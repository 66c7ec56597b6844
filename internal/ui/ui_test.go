package ui

import (
	"errors"
	"strings"
	"testing"
	"time"
	_ "time/tzdata"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/matryer/is"

	"checklist/internal/config"
	"checklist/internal/task"
)

type fakeJournal struct {
	saved    []task.Task
	deleted  []string
	synced   [][]string
	err      error
	failNext int // fail this many calls before behaving
}

func (j *fakeJournal) fail() error {
	if j.failNext > 0 {
		j.failNext--
		return errors.New("disk full")
	}
	return j.err
}

func (j *fakeJournal) SaveTask(t task.Task) error {
	if err := j.fail(); err != nil {
		return err
	}
	j.saved = append(j.saved, t)
	return nil
}

func (j *fakeJournal) DeleteTask(id string) error {
	if err := j.fail(); err != nil {
		return err
	}
	j.deleted = append(j.deleted, id)
	return nil
}

func (j *fakeJournal) Sync(tasks []task.Task) error {
	if err := j.fail(); err != nil {
		return err
	}
	j.synced = append(j.synced, ids(tasks))
	return nil
}

func ids(tasks []task.Task) []string {
	out := make([]string, len(tasks))
	for i, t := range tasks {
		out[i] = t.ID
	}
	return out
}

func testConfig(t *testing.T) config.Config {
	t.Helper()
	t.Setenv(config.EnvDBPath, "")
	t.Setenv(config.EnvLogPath, "")
	t.Setenv(config.EnvDefaultPriority, "")
	cfg, err := config.LoadOrCreate(t.TempDir() + "/config.toml")
	if err != nil {
		t.Fatal(err)
	}
	return cfg
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

var (
	enter = tea.KeyMsg{Type: tea.KeyEnter}
	esc   = tea.KeyMsg{Type: tea.KeyEsc}
	tab   = tea.KeyMsg{Type: tea.KeyTab}
	space = tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	ctrlP = tea.KeyMsg{Type: tea.KeyCtrlP}
	ctrlX = tea.KeyMsg{Type: tea.KeyCtrlX}
	btab  = tea.KeyMsg{Type: tea.KeyShiftTab}
)

func send(m Model, msgs ...tea.Msg) Model {
	for _, msg := range msgs {
		next, _ := m.Update(msg)
		m = next.(Model)
	}
	return m
}

func TestModel_AddTask(t *testing.T) {
	is := is.New(t)
	mgr := task.NewManager()
	j := &fakeJournal{}
	m := New(mgr, j, testConfig(t))

	m = send(m, runes("a"))
	is.Equal(m.mode, modeAdd)
	is.True(mgr.Creating())

	m = send(m,
		runes("Buy milk"),
		tab, runes("2030-01-02"),
		tab, runes("errand"), enter,
		runes("house"), enter,
		ctrlP, // medium -> high
		enter,
	)
	is.Equal(m.mode, modeList)
	is.True(!mgr.Creating())

	tasks := mgr.Tasks()
	is.Equal(len(tasks), 1)
	is.Equal(tasks[0].Text, "Buy milk")
	is.Equal(tasks[0].Priority, task.High)
	is.Equal(tasks[0].Tags, []string{"errand", "house"})
	is.True(tasks[0].Due != nil)
	is.Equal(len(j.saved), 1)
	is.Equal(j.saved[0].ID, tasks[0].ID)
}

func TestModel_AddRejectsEmptyText(t *testing.T) {
	is := is.New(t)
	mgr := task.NewManager()
	m := New(mgr, nil, testConfig(t))

	m = send(m, runes("a"), runes("   "), enter)
	is.Equal(m.mode, modeAdd) // form stays open
	is.Equal(mgr.Len(), 0)
	is.Equal(m.status, "Title cannot be empty")

	m = send(m, esc)
	is.Equal(m.mode, modeList)
	is.Equal(mgr.Draft().Text, "")
}

func TestModel_RemoveDraftTag(t *testing.T) {
	is := is.New(t)
	mgr := task.NewManager()
	m := New(mgr, nil, testConfig(t))

	m = send(m, runes("a"), tab, tab, runes("one"), enter, runes("two"), enter)
	is.Equal(mgr.Draft().Tags, []string{"one", "two"})

	m = send(m, ctrlX)
	is.Equal(mgr.Draft().Tags, []string{"one"})

	m = send(m, runes("One"), ctrlX)
	is.Equal(mgr.Draft().Tags, []string{"one"})
	is.True(strings.Contains(m.status, "No tag"))
}

func TestModel_LeavingTagsFieldKeepsTypedTag(t *testing.T) {
	is := is.New(t)
	mgr := task.NewManager()
	m := New(mgr, nil, testConfig(t))

	m = send(m, runes("a"), runes("Pack"), tab, tab, runes("travel"), tab)
	is.Equal(m.field, fieldText)
	is.Equal(mgr.Draft().Tags, []string{"travel"})
	is.Equal(m.status, "Added tag travel")

	m = send(m, btab, runes("urgent"), btab)
	is.Equal(m.field, fieldDue)
	is.Equal(mgr.Draft().Tags, []string{"travel", "urgent"})

	m = send(m, enter)
	is.Equal(mgr.Tasks()[0].Tags, []string{"travel", "urgent"})
}

func TestModel_ToggleAndDelete(t *testing.T) {
	is := is.New(t)
	mgr := task.NewManager()
	mgr.CreateTask(task.Draft{Text: "A"})
	mgr.CreateTask(task.Draft{Text: "B"})
	j := &fakeJournal{}
	m := New(mgr, j, testConfig(t))

	m = send(m, space)
	is.True(mgr.Tasks()[0].Completed)
	is.Equal(len(j.saved), 1)

	m = send(m, runes("j"), runes("d"))
	is.True(m.confirmDel)
	m = send(m, runes("n"))
	is.Equal(mgr.Len(), 2)

	m = send(m, runes("d"), runes("y"))
	is.Equal(mgr.Len(), 1)
	is.Equal(mgr.Tasks()[0].Text, "A")
	is.Equal(m.cursor, 0)
	is.Equal(len(j.deleted), 1)
}

func TestModel_Edit(t *testing.T) {
	t.Run("commit", func(t *testing.T) {
		is := is.New(t)
		mgr := task.NewManager()
		created, _ := mgr.CreateTask(task.Draft{Text: "A"})
		j := &fakeJournal{}
		m := New(mgr, j, testConfig(t))

		m = send(m, runes("e"))
		is.Equal(m.mode, modeEdit)
		m = send(m, runes("BC"))
		edit, ok := mgr.Editing()
		is.True(ok)
		is.Equal(edit.Text, "ABC")

		m = send(m, enter)
		is.Equal(m.mode, modeList)
		got, _ := mgr.Get(created.ID)
		is.Equal(got.Text, "ABC")
		is.Equal(len(j.saved), 1)
	})

	t.Run("empty text is saved", func(t *testing.T) {
		is := is.New(t)
		mgr := task.NewManager()
		created, _ := mgr.CreateTask(task.Draft{Text: "A"})
		m := New(mgr, nil, testConfig(t))

		m = send(m, runes("e"), tea.KeyMsg{Type: tea.KeyBackspace}, enter)
		got, _ := mgr.Get(created.ID)
		is.Equal(got.Text, "")
	})

	t.Run("cancel", func(t *testing.T) {
		is := is.New(t)
		mgr := task.NewManager()
		created, _ := mgr.CreateTask(task.Draft{Text: "A"})
		m := New(mgr, nil, testConfig(t))

		m = send(m, runes("e"), runes("zzz"), esc)
		is.Equal(m.mode, modeList)
		got, _ := mgr.Get(created.ID)
		is.Equal(got.Text, "A")
		_, ok := mgr.Editing()
		is.True(!ok)
	})
}

func TestModel_JournalFailureIsReported(t *testing.T) {
	is := is.New(t)
	mgr := task.NewManager()
	mgr.CreateTask(task.Draft{Text: "A"})
	m := New(mgr, &fakeJournal{err: errors.New("disk full")}, testConfig(t))

	m = send(m, space)
	is.True(mgr.Tasks()[0].Completed) // the session state still changes
	is.Equal(m.status, "save failed: disk full")
}

func TestModel_LostSaveIsResynced(t *testing.T) {
	is := is.New(t)
	mgr := task.NewManager()
	j := &fakeJournal{failNext: 1}
	m := New(mgr, j, testConfig(t))

	m = send(m, runes("a"), runes("A"), enter)
	is.Equal(m.status, "save failed: disk full")
	is.Equal(len(j.saved), 0)

	// the next write carries the whole collection, in session order
	m = send(m, runes("a"), runes("B"), enter)
	is.Equal(m.status, "Added task")
	is.Equal(j.synced, [][]string{ids(mgr.Tasks())})
	is.Equal(len(j.saved), 0)

	m = send(m, space)
	is.Equal(len(j.saved), 1)
	is.Equal(len(j.synced), 1)
}

func TestModel_LostDeleteIsResynced(t *testing.T) {
	is := is.New(t)
	mgr := task.NewManager()
	mgr.CreateTask(task.Draft{Text: "A"})
	mgr.CreateTask(task.Draft{Text: "B"})
	j := &fakeJournal{failNext: 1}
	m := New(mgr, j, testConfig(t))

	m = send(m, runes("d"), runes("y"))
	is.Equal(m.status, "delete failed: disk full")
	is.Equal(mgr.Len(), 1)

	m = send(m, space)
	is.Equal(j.synced, [][]string{ids(mgr.Tasks())})
	is.Equal(len(j.deleted), 0)
}

func TestModel_View(t *testing.T) {
	is := is.New(t)
	mgr := task.NewManager()
	m := New(mgr, nil, testConfig(t))
	is.True(strings.Contains(m.View(), "No todos yet"))

	mgr.CreateTask(task.Draft{Text: "Buy milk", Tags: []string{"errand"}, Due: "2030-01-02"})
	view := m.View()
	is.True(strings.Contains(view, "Buy milk"))
	is.True(strings.Contains(view, "#errand"))
	is.True(strings.Contains(view, "0 of 1 done"))
}

func TestFormatDue(t *testing.T) {
	now := time.Date(2024, time.March, 1, 15, 0, 0, 0, time.UTC)
	tests := []struct {
		due  time.Time
		want string
	}{
		{now.AddDate(0, 0, -1), "overdue"},
		{time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC), "today"},
		{now.AddDate(0, 0, 1), "tomorrow"},
		{now.AddDate(0, 0, 5), "in 5 days"},
		{now.AddDate(0, 1, 0), "2024-04-01"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			is := is.New(t)
			is.Equal(formatDue(tt.due, now), tt.want)
		})
	}
}

func TestFormatDue_AcrossDST(t *testing.T) {
	is := is.New(t)
	berlin, err := time.LoadLocation("Europe/Berlin")
	is.NoErr(err)

	// clocks go forward on 2024-03-31
	now := time.Date(2024, time.March, 30, 12, 0, 0, 0, berlin)
	day := func(d int) time.Time { return time.Date(2024, time.March, d, 0, 0, 0, 0, berlin) }
	is.Equal(formatDue(day(31), now), "tomorrow")
	is.Equal(formatDue(day(32), now), "in 2 days")
	is.Equal(formatDue(day(35), now), "in 5 days")
}
