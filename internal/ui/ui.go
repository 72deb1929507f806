// Package ui hosts both surfaces of the app in one bubbletea program: the
// compact display of today's tasks and the full editor. A controller tracks
// which surfaces are open; the program quits once both are closed.
package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"dailytask/internal/config"
	"dailytask/internal/storage"
	"dailytask/internal/summarize"
	"dailytask/internal/task"
)

type surface int

const (
	surfaceDisplay surface = iota
	surfaceEditor
)

type inputMode int

const (
	inputNone inputMode = iota
	inputAdd
	inputRename
	inputAPIKey
	inputPrompt
	inputConfirmClear
)

// placeholderText seeds an empty day, same text the original shipped with.
const placeholderText = "今日任务待编辑，请点击上方去编辑按钮"

type summarizeResult struct {
	tasks []task.Task
	raw   string
	err   error
}

type Model struct {
	store  *storage.Store
	client *summarize.Client
	cfg    config.Config
	day    string

	surface     surface
	displayOpen bool
	editorOpen  bool

	// display holds the published copy, buffer the editor's working copy.
	// They are never the same slice.
	display       []task.Task
	buffer        []task.Task
	displayCursor int
	cursor        int
	collapsed     bool

	mode        inputMode
	input       textinput.Model
	prompt      textarea.Model
	summarizing bool
	status      string
}

func Run(store *storage.Store, client *summarize.Client, cfg config.Config) error {
	program := tea.NewProgram(initialModel(store, client, cfg))
	_, err := program.Run()
	return err
}

// initialModel loads today's list and builds the startup state: display
// surface open and collapsed, editor closed, both copies seeded with the
// placeholder task when the day is empty.
func initialModel(store *storage.Store, client *summarize.Client, cfg config.Config) Model {
	day := task.Today()
	status := "Press 'e' to edit, 'c' to expand, 'x' to complete current."

	// A broken read degrades to an empty day instead of refusing to start;
	// saves still report their faults.
	tasks, err := store.LoadTasks(day)
	if err != nil {
		tasks = nil
		status = fmt.Sprintf("load failed, starting empty: %v", err)
	}
	if len(tasks) == 0 {
		tasks = []task.Task{{Text: placeholderText, Pinned: true}}
	}

	ti := textinput.New()
	ti.CharLimit = 256
	ti.Width = 48

	ta := textarea.New()
	ta.Placeholder = "想法、目标或计划……"
	ta.SetWidth(56)
	ta.SetHeight(4)

	return Model{
		store:       store,
		client:      client,
		cfg:         cfg,
		day:         day,
		surface:     surfaceDisplay,
		displayOpen: true,
		editorOpen:  false,
		display:     task.Clone(tasks),
		buffer:      task.Clone(tasks),
		collapsed:   true,
		input:       ti,
		prompt:      ta,
		status:      status,
	}
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case summarizeResult:
		return m.finishSummarize(msg)
	case tea.KeyMsg:
		if m.summarizing {
			// Modal wait: the call runs to completion or failure, no cancel.
			return m, nil
		}
		if m.mode != inputNone {
			return m.updateInputMode(msg)
		}
		if m.surface == surfaceEditor {
			return m.updateEditor(msg.String())
		}
		return m.updateDisplay(msg.String())
	case tea.WindowSizeMsg:
		m.input.Width = msg.Width - 10
	}
	return m, nil
}

// ---- display surface ----

func (m Model) updateDisplay(key string) (tea.Model, tea.Cmd) {
	k := m.cfg.Keys
	switch key {
	case "ctrl+c", k.Quit:
		return m, tea.Quit
	case k.CloseSurface:
		return m.closeSurface(surfaceDisplay)
	case k.Switch:
		return m.openEditor()
	case k.Collapse:
		m.collapsed = !m.collapsed
	case k.CompleteCurrent:
		idx, ok := task.Current(m.display)
		if !ok {
			m.status = "All done."
			return m, nil
		}
		m.display[idx].Done = true
		return m.persistDisplay("Completed: " + m.display[idx].Text)
	case k.Down:
		if m.collapsed || len(m.display) == 0 {
			return m, nil
		}
		m.displayCursor = clampCursor(m.displayCursor+1, len(m.display))
	case k.Up:
		if m.collapsed {
			return m, nil
		}
		m.displayCursor = clampCursor(m.displayCursor-1, len(m.display))
	case k.ToggleDone:
		if m.collapsed || len(m.display) == 0 {
			return m, nil
		}
		idx := m.displayIndexUnderCursor()
		m.display[idx].Done = !m.display[idx].Done
		return m.persistDisplay("Toggled task")
	case k.TogglePin:
		if m.collapsed || len(m.display) == 0 {
			return m, nil
		}
		idx := m.displayIndexUnderCursor()
		m.display[idx].Pinned = !m.display[idx].Pinned
		return m.persistDisplay("Toggled pin")
	}
	return m, nil
}

// displayIndexUnderCursor maps the cursor row of the presented order back to
// the canonical list index.
func (m Model) displayIndexUnderCursor() int {
	order := task.DisplayOrder(m.display)
	return order[clampCursor(m.displayCursor, len(order))]
}

// persistDisplay writes the display copy through to the store. On failure
// the in-memory list keeps the change and the status reports the fault.
func (m Model) persistDisplay(okStatus string) (tea.Model, tea.Cmd) {
	if err := m.store.SaveTasks(m.day, m.display); err != nil {
		m.status = fmt.Sprintf("save failed: %v", err)
		return m, nil
	}
	m.status = okStatus
	return m, nil
}

// ---- editor surface ----

func (m Model) updateEditor(key string) (tea.Model, tea.Cmd) {
	k := m.cfg.Keys
	switch key {
	case "ctrl+c", k.Quit:
		return m, tea.Quit
	case k.CloseSurface:
		return m.closeSurface(surfaceEditor)
	case k.Switch:
		m.surface = surfaceDisplay
		m.displayOpen = true
		m.status = "Back to display. Unpublished edits stay in the editor."
	case k.Down:
		if len(m.buffer) == 0 {
			return m, nil
		}
		m.cursor = clampCursor(m.cursor+1, len(m.buffer))
	case k.Up:
		m.cursor = clampCursor(m.cursor-1, len(m.buffer))
	case k.Add:
		m.mode = inputAdd
		m.input.Placeholder = "New task"
		m.input.SetValue("")
		m.input.EchoMode = textinput.EchoNormal
		m.input.Focus()
		m.status = "Add: type the task text, Enter to confirm"
	case k.Rename:
		if len(m.buffer) == 0 {
			m.status = "Nothing to rename"
			return m, nil
		}
		m.mode = inputRename
		m.input.Placeholder = "Task text"
		m.input.SetValue(m.buffer[m.cursor].Text)
		m.input.EchoMode = textinput.EchoNormal
		m.input.Focus()
		m.status = "Rename: edit the text, Enter to confirm"
	case k.Delete:
		if len(m.buffer) == 0 {
			return m, nil
		}
		m.buffer = append(m.buffer[:m.cursor], m.buffer[m.cursor+1:]...)
		m.cursor = clampCursor(m.cursor, len(m.buffer))
		m.status = "Deleted (publish to apply)"
	case k.Clear:
		if len(m.buffer) == 0 {
			return m, nil
		}
		m.mode = inputConfirmClear
		m.status = fmt.Sprintf("Clear all %d tasks? y/n", len(m.buffer))
	case k.ToggleDone:
		if len(m.buffer) == 0 {
			return m, nil
		}
		m.buffer[m.cursor].Done = !m.buffer[m.cursor].Done
	case k.TogglePin:
		if len(m.buffer) == 0 {
			return m, nil
		}
		// Not policed: pinning a second task by hand is allowed and the
		// display rules pick the first one.
		m.buffer[m.cursor].Pinned = !m.buffer[m.cursor].Pinned
	case k.MoveUp:
		return m.moveTask(-1)
	case k.MoveDown:
		return m.moveTask(1)
	case k.Publish:
		return m.publish()
	case k.Summarize:
		m.mode = inputPrompt
		m.prompt.SetValue("")
		m.prompt.Focus()
		m.status = "Describe your day, Enter to summarize, Esc to cancel"
	case k.APIKey:
		current, err := m.store.LoadAPIKey()
		if err != nil {
			m.status = fmt.Sprintf("load api key failed: %v", err)
			return m, nil
		}
		m.mode = inputAPIKey
		m.input.Placeholder = "API key"
		m.input.SetValue(current)
		m.input.EchoMode = textinput.EchoPassword
		m.input.Focus()
		m.status = "Set API key: Enter to save, Esc to cancel"
	}
	return m, nil
}

// moveTask swaps the cursor row with its neighbour and persists the new
// canonical order right away.
func (m Model) moveTask(delta int) (tea.Model, tea.Cmd) {
	target := m.cursor + delta
	if len(m.buffer) == 0 || target < 0 || target >= len(m.buffer) {
		return m, nil
	}
	order := make([]int, len(m.buffer))
	for i := range order {
		order[i] = i
	}
	order[m.cursor], order[target] = order[target], order[m.cursor]

	reordered, err := task.Reorder(m.buffer, order)
	if err != nil {
		m.status = fmt.Sprintf("reorder failed: %v", err)
		return m, nil
	}
	if err := m.store.SaveTasks(m.day, reordered); err != nil {
		m.status = fmt.Sprintf("save failed: %v", err)
		return m, nil
	}
	m.buffer = reordered
	m.cursor = target
	m.status = "Moved"
	return m, nil
}

// publish validates the buffer, persists it and replaces the display copy.
// A failed save leaves the buffer untouched so the user can retry.
func (m Model) publish() (tea.Model, tea.Cmd) {
	published := task.Normalize(m.buffer)
	if err := m.store.SaveTasks(m.day, published); err != nil {
		m.status = fmt.Sprintf("publish failed, edits kept: %v", err)
		return m, nil
	}
	m.buffer = task.Clone(published)
	m.cursor = clampCursor(m.cursor, len(m.buffer))
	m.display = task.Clone(published)
	m.displayCursor = 0
	m.displayOpen = true
	m.surface = surfaceDisplay
	m.status = fmt.Sprintf("Published %d tasks", len(published))
	return m, nil
}

func (m Model) startSummarize(prompt string) (tea.Model, tea.Cmd) {
	apiKey, err := m.store.LoadAPIKey()
	if err != nil {
		m.status = fmt.Sprintf("load api key failed: %v", err)
		return m, nil
	}
	if apiKey == "" {
		m.status = "No API key set. Press 'A' to set one."
		return m, nil
	}
	m.summarizing = true
	m.status = "Summarizing…"
	client := m.client
	return m, func() tea.Msg {
		tasks, raw, err := client.Summarize(context.Background(), apiKey, prompt)
		return summarizeResult{tasks: tasks, raw: raw, err: err}
	}
}

func (m Model) finishSummarize(res summarizeResult) (tea.Model, tea.Cmd) {
	m.summarizing = false
	if res.err != nil {
		// Buffer stays exactly as it was. Validation failures show the raw
		// model output so the user can see what came back.
		var verr *summarize.ValidationError
		if errors.As(res.err, &verr) {
			m.status = fmt.Sprintf("summarize failed: %v • raw: %s", verr, truncate(verr.Raw, 160))
		} else {
			m.status = fmt.Sprintf("summarize failed: %v", res.err)
		}
		return m, nil
	}
	m.buffer = res.tasks
	m.cursor = 0
	m.status = fmt.Sprintf("AI produced %d tasks. Review and publish.", len(res.tasks))
	return m, nil
}

// ---- modal input handling ----

func (m Model) updateInputMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	k := m.cfg.Keys

	if m.mode == inputConfirmClear {
		switch key {
		case "y", "Y":
			m.buffer = nil
			m.cursor = 0
			m.mode = inputNone
			m.status = "Cleared (publish to apply)"
		case "n", "N", k.Cancel:
			m.mode = inputNone
			m.status = "Clear cancelled"
		}
		return m, nil
	}

	if m.mode == inputPrompt {
		switch key {
		case k.Cancel:
			m.mode = inputNone
			m.prompt.Blur()
			m.status = "Cancelled"
			return m, nil
		case k.Confirm:
			text := strings.TrimSpace(m.prompt.Value())
			m.mode = inputNone
			m.prompt.Blur()
			if text == "" {
				m.status = "Nothing to summarize"
				return m, nil
			}
			return m.startSummarize(text)
		default:
			var cmd tea.Cmd
			m.prompt, cmd = m.prompt.Update(msg)
			return m, cmd
		}
	}

	switch key {
	case k.Cancel:
		m.mode = inputNone
		m.input.Blur()
		m.status = "Cancelled"
		return m, nil
	case k.Confirm:
		value := strings.TrimSpace(m.input.Value())
		mode := m.mode
		m.mode = inputNone
		m.input.Blur()
		m.input.SetValue("")
		switch mode {
		case inputAdd:
			if value == "" {
				m.status = "Task text cannot be empty"
				return m, nil
			}
			m.buffer = append(m.buffer, task.Task{Text: value})
			m.cursor = clampCursor(len(m.buffer)-1, len(m.buffer))
			m.status = "Added (publish to apply)"
		case inputRename:
			if value == "" {
				m.status = "Task text cannot be empty"
				return m, nil
			}
			if len(m.buffer) > 0 {
				m.buffer[m.cursor].Text = value
				m.status = "Renamed (publish to apply)"
			}
		case inputAPIKey:
			if err := m.store.SaveAPIKey(value); err != nil {
				m.status = fmt.Sprintf("save api key failed: %v", err)
				return m, nil
			}
			m.status = "API key saved"
		}
		return m, nil
	default:
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
}

// ---- controller ----

// closeSurface hides one surface. The other one takes over; when none is
// left open the program quits, same as the original two-window controller.
func (m Model) closeSurface(s surface) (tea.Model, tea.Cmd) {
	switch s {
	case surfaceDisplay:
		m.displayOpen = false
	case surfaceEditor:
		m.editorOpen = false
	}
	if !m.displayOpen && !m.editorOpen {
		return m, tea.Quit
	}
	if m.displayOpen {
		m.surface = surfaceDisplay
	} else {
		m.surface = surfaceEditor
	}
	return m, nil
}

func (m Model) openEditor() (tea.Model, tea.Cmd) {
	m.surface = surfaceEditor
	m.editorOpen = true
	m.status = "Editor: edits apply on publish"
	return m, nil
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "…"
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
