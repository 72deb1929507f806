package ui

import (
	"fmt"
	"strings"

	"dailytask/internal/task"
)

func (m Model) View() string {
	var body string
	if m.surface == surfaceEditor {
		body = m.viewEditor()
	} else {
		body = m.viewDisplay()
	}

	var b strings.Builder
	b.WriteString(body)
	b.WriteString("\n")
	if m.summarizing {
		b.WriteString(statusStyle.Render("Summarizing… please wait"))
	} else {
		b.WriteString(statusStyle.Render(m.status))
	}
	b.WriteString("\n")
	b.WriteString(statusStyle.Render(m.helpLine()))
	return b.String()
}

func (m Model) viewDisplay() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("今日任务 · " + m.day))
	b.WriteString("\n\n")

	if m.collapsed {
		b.WriteString(m.renderCurrentRow())
		return panelStyle.Render(b.String())
	}

	if len(m.display) == 0 {
		b.WriteString("No tasks today.")
		return panelStyle.Render(b.String())
	}

	currentIdx, hasCurrent := task.Current(m.display)
	order := task.DisplayOrder(m.display)
	for row, idx := range order {
		t := m.display[idx]

		cursor := " "
		if row == clampCursor(m.displayCursor, len(order)) {
			cursor = ">"
		}
		checkbox := "[ ]"
		if t.Done {
			checkbox = "[x]"
		}
		pin := "  "
		if t.Pinned {
			pin = pinStyle.Render("📌")
		}

		text := t.Text
		switch {
		case t.Done:
			text = doneStyle.Render(text)
		case hasCurrent && idx == currentIdx:
			text = currentStyle.Render(text)
		}
		b.WriteString(fmt.Sprintf("%s %s %s %s\n", cursor, checkbox, pin, text))
	}
	return panelStyle.Render(strings.TrimRight(b.String(), "\n"))
}

// renderCurrentRow is the collapsed single-line form: just the task the user
// should act on next.
func (m Model) renderCurrentRow() string {
	idx, ok := task.Current(m.display)
	if !ok {
		return doneStyle.Render("全部完成 🎉")
	}
	t := m.display[idx]
	if t.Pinned {
		return pinStyle.Render("📌 ") + currentStyle.Render(t.Text)
	}
	return currentStyle.Render(t.Text)
}

func (m Model) viewEditor() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("编辑任务 · " + m.day))
	b.WriteString("\n\n")

	if len(m.buffer) == 0 {
		b.WriteString("No tasks. Press 'a' to add or 's' to summarize.\n")
	}
	for i, t := range m.buffer {
		cursor := " "
		if i == m.cursor && m.mode == inputNone {
			cursor = ">"
		}
		checkbox := "[ ]"
		if t.Done {
			checkbox = "[x]"
		}
		pin := "  "
		if t.Pinned {
			pin = pinStyle.Render("📌")
		}
		text := t.Text
		if t.Done {
			text = doneStyle.Render(text)
		}
		b.WriteString(fmt.Sprintf("%s %s %s %s\n", cursor, checkbox, pin, text))
	}

	switch m.mode {
	case inputAdd, inputRename, inputAPIKey:
		b.WriteString("\n")
		b.WriteString(m.input.View())
		b.WriteString("\n")
	case inputPrompt:
		b.WriteString("\n")
		b.WriteString(m.prompt.View())
		b.WriteString("\n")
	}

	return panelStyle.Render(strings.TrimRight(b.String(), "\n"))
}

func (m Model) helpLine() string {
	k := m.cfg.Keys
	if m.surface == surfaceEditor {
		return fmt.Sprintf("%s/%s move • %s add • %s rename • %s del • %s/%s reorder • %s done • %s pin • %s publish • %s AI • %s key • %s close • %s quit",
			k.Up, k.Down, k.Add, k.Rename, k.Delete, k.MoveUp, k.MoveDown,
			keyName(k.ToggleDone), k.TogglePin, k.Publish, k.Summarize, k.APIKey, k.CloseSurface, k.Quit)
	}
	return fmt.Sprintf("%s expand/collapse • %s complete • %s done • %s pin • %s edit • %s close • %s quit",
		k.Collapse, k.CompleteCurrent, keyName(k.ToggleDone), k.TogglePin, k.Switch, k.CloseSurface, k.Quit)
}

func keyName(k string) string {
	if k == " " {
		return "space"
	}
	return k
}
