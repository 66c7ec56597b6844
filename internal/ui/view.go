package ui

import (
	"fmt"
	"strings"
	"time"

	"checklist/internal/config"
	"checklist/internal/task"
)

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(header.Render("✨ Todo List"))
	b.WriteString("\n")
	b.WriteString(subtitle.Render(m.summary()))
	b.WriteString("\n\n")

	if m.tasks.Len() == 0 {
		b.WriteString(subtitle.Render("No todos yet. Add one to get started!"))
		b.WriteString("\n")
	} else {
		b.WriteString(m.renderTaskList())
	}

	if m.mode == modeAdd {
		b.WriteString("\n")
		b.WriteString(m.renderForm())
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(statusLine.Render(m.status))
	b.WriteString("\n")
	b.WriteString(helpLine.Render(m.renderHelp()))

	return b.String()
}

func (m Model) summary() string {
	total, finished := m.tasks.Counts()
	if total == 0 {
		return "Stay organized with style"
	}
	return fmt.Sprintf("%d of %d done", finished, total)
}

func (m Model) renderTaskList() string {
	edit, editing := m.tasks.Editing()
	var b strings.Builder
	for i, t := range m.tasks.Tasks() {
		cursor := "  "
		if m.cursor == i && m.mode != modeAdd {
			cursor = "> "
		}
		mark := undone
		style := title
		if t.Completed {
			mark = done
			style = titleDone
		}
		if m.cursor == i && m.mode == modeList {
			style = style.Inherit(selected)
		}

		b.WriteString(cursor)
		b.WriteString(mark)
		if editing && m.mode == modeEdit && edit.ID == t.ID {
			b.WriteString(m.input.View())
		} else {
			b.WriteString(style.Render(t.Text))
		}
		b.WriteString(m.renderMeta(t))
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) renderMeta(t task.Task) string {
	var parts []string
	p := t.Priority.String()
	parts = append(parts, priorityStyles[p].Render(p))
	if t.Due != nil {
		style := dueStyle
		if !t.Completed && t.Due.Before(m.now()) {
			style = overdue
		}
		parts = append(parts, style.Render("due "+formatDue(*t.Due, m.now())))
	}
	if len(t.Tags) > 0 {
		parts = append(parts, tagStyle.Render(renderTags(t.Tags)))
	}
	return divider + strings.Join(parts, divider)
}

func (m Model) renderForm() string {
	d := m.tasks.Draft()
	values := map[field]string{
		fieldText: d.Text,
		fieldDue:  d.Due,
		fieldTags: renderTags(d.Tags),
	}
	var b strings.Builder
	for f := fieldText; f < fieldCount; f++ {
		label := fieldLabel
		if f == m.field {
			label = fieldFocus
		}
		b.WriteString(label.Render(f.label()))
		switch {
		case f == m.field && f == fieldTags:
			if values[f] != "" {
				b.WriteString(tagStyle.Render(values[f]) + " ")
			}
			b.WriteString(m.input.View())
		case f == m.field:
			b.WriteString(m.input.View())
		case values[f] == "":
			b.WriteString(subtitle.Render("-"))
		case f == fieldTags:
			b.WriteString(tagStyle.Render(values[f]))
		default:
			b.WriteString(values[f])
		}
		b.WriteString("\n")
	}
	p := d.Priority.String()
	b.WriteString(fieldLabel.Render("Priority"))
	b.WriteString(priorityStyles[p].Render(p))
	b.WriteString(subtitle.Render(fmt.Sprintf(" (%s to change)", m.cfg.Keys.Priority)))
	return formBox.Render(b.String())
}

func (m Model) renderHelp() string {
	k := m.cfg.Keys
	switch m.mode {
	case modeAdd:
		return fmt.Sprintf("%s/%s field • %s save/add tag • %s priority • %s remove tag • %s cancel",
			k.NextField, k.PrevField, k.Confirm, k.Priority, k.RemoveTag, k.Cancel)
	case modeEdit:
		return fmt.Sprintf("%s save • %s cancel", k.Confirm, k.Cancel)
	}
	return listHelp(k)
}

func listHelp(k config.Keymap) string {
	toggle := k.Toggle
	if toggle == " " {
		toggle = "space"
	}
	return fmt.Sprintf("%s/%s move • %s add • %s toggle • %s/%s edit • %s delete • %s quit",
		k.Up, k.Down, k.Add, toggle, k.Edit, k.Confirm, k.Delete, k.Quit)
}

func renderTags(tags []string) string {
	out := make([]string, len(tags))
	for i, t := range tags {
		out[i] = "#" + t
	}
	return strings.Join(out, " ")
}

func formatDue(due, now time.Time) string {
	days := calendarDays(now, due)
	switch {
	case days < 0:
		return "overdue"
	case days == 0:
		return "today"
	case days == 1:
		return "tomorrow"
	case days < 14:
		return fmt.Sprintf("in %d days", days)
	default:
		return due.Format("2006-01-02")
	}
}

// calendarDays counts the dates between from and to. Days are compared in
// UTC so a DST change cannot shorten one.
func calendarDays(from, to time.Time) int {
	fy, fm, fd := from.Date()
	ty, tm, td := to.Date()
	a := time.Date(fy, fm, fd, 0, 0, 0, 0, time.UTC)
	b := time.Date(ty, tm, td, 0, 0, 0, 0, time.UTC)
	return int(b.Sub(a) / (24 * time.Hour))
}
