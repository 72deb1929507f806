package ui

import (
	"errors"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"dailytask/internal/config"
	"dailytask/internal/storage"
	"dailytask/internal/task"
)

func testModel(t *testing.T) Model {
	t.Helper()
	dir := t.TempDir()
	store, err := storage.Open(dir, "")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	cfg, err := config.LoadOrCreate(filepath.Join(dir, "config.toml"))
	if err != nil {
		t.Fatalf("config: %v", err)
	}
	return Model{
		store:       store,
		cfg:         cfg,
		day:         "2026-08-30",
		surface:     surfaceDisplay,
		displayOpen: true,
	}
}

func press(t *testing.T, m Model, key string) (Model, tea.Cmd) {
	t.Helper()
	var msg tea.KeyMsg
	switch key {
	case "enter":
		msg = tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		msg = tea.KeyMsg{Type: tea.KeyEscape}
	default:
		msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)}
	}
	next, cmd := m.Update(msg)
	return next.(Model), cmd
}

func TestPublishReplacesDisplayAndPersists(t *testing.T) {
	m := testModel(t)
	m.surface = surfaceEditor
	m.editorOpen = true
	m.buffer = []task.Task{
		{Text: "  write report  ", Pinned: true},
		{Text: "   "},
		{Text: "buy milk"},
	}
	m.display = []task.Task{{Text: "stale"}}

	m, _ = press(t, m, m.cfg.Keys.Publish)

	want := []task.Task{
		{Text: "write report", Pinned: true},
		{Text: "buy milk"},
	}
	if !reflect.DeepEqual(m.display, want) {
		t.Errorf("display = %v, want %v", m.display, want)
	}
	if m.surface != surfaceDisplay || !m.displayOpen {
		t.Error("publish should reopen the display surface")
	}

	stored, err := m.store.LoadTasks(m.day)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !reflect.DeepEqual(stored, want) {
		t.Errorf("stored = %v, want %v", stored, want)
	}

	// The two copies must be independent.
	m.display[0].Done = true
	if m.buffer[0].Done {
		t.Error("display and buffer share a slice")
	}
}

func TestPublishFailureKeepsBuffer(t *testing.T) {
	m := testModel(t)
	m.surface = surfaceEditor
	m.editorOpen = true
	before := []task.Task{
		{Text: "unsaved work", Pinned: true},
		{Text: "more unsaved work"},
	}
	m.buffer = task.Clone(before)
	m.display = []task.Task{{Text: "stale"}}

	// Kill the store so the save inside publish fails.
	m.store.Close()

	m, _ = press(t, m, m.cfg.Keys.Publish)

	if !reflect.DeepEqual(m.buffer, before) {
		t.Errorf("buffer changed on failed publish: %v", m.buffer)
	}
	if len(m.display) != 1 || m.display[0].Text != "stale" {
		t.Errorf("display must not pick up an unpersisted publish: %v", m.display)
	}
	if m.surface != surfaceEditor {
		t.Error("a failed publish must not leave the editor")
	}
	if !strings.Contains(m.status, "publish failed") {
		t.Errorf("status should report the fault, got %q", m.status)
	}
}

func TestDisplayToggleFailureReportsFault(t *testing.T) {
	m := testModel(t)
	m.display = []task.Task{{Text: "a"}}
	m.collapsed = false
	m.store.Close()

	m, _ = press(t, m, m.cfg.Keys.ToggleDone)

	if !m.display[0].Done {
		t.Error("the in-memory flip should survive a failed save")
	}
	if !strings.Contains(m.status, "save failed") {
		t.Errorf("status should report the fault, got %q", m.status)
	}
}

func TestQuitOnlyWhenBothSurfacesClosed(t *testing.T) {
	m := testModel(t)
	m.editorOpen = true

	m, cmd := press(t, m, m.cfg.Keys.CloseSurface)
	if cmd != nil {
		t.Fatal("closing the display with the editor open must not quit")
	}
	if m.surface != surfaceEditor {
		t.Error("remaining surface should take over")
	}

	_, cmd = press(t, m, m.cfg.Keys.CloseSurface)
	if cmd == nil {
		t.Fatal("closing the last surface should quit")
	}
	if msg := cmd(); msg != tea.Quit() {
		t.Errorf("expected tea.Quit, got %v", msg)
	}
}

func TestSummarizeFailureLeavesBufferUntouched(t *testing.T) {
	m := testModel(t)
	m.surface = surfaceEditor
	m.editorOpen = true
	before := []task.Task{{Text: "keep me"}}
	m.buffer = task.Clone(before)
	m.summarizing = true

	next, _ := m.Update(summarizeResult{err: errors.New("boom")})
	m = next.(Model)

	if m.summarizing {
		t.Error("summarizing flag should clear")
	}
	if !reflect.DeepEqual(m.buffer, before) {
		t.Errorf("buffer changed on failure: %v", m.buffer)
	}
}

func TestSummarizeSuccessReplacesBuffer(t *testing.T) {
	m := testModel(t)
	m.surface = surfaceEditor
	m.editorOpen = true
	m.buffer = []task.Task{{Text: "old"}}

	fresh := []task.Task{{Text: "新任务", Pinned: true}}
	next, _ := m.Update(summarizeResult{tasks: fresh, raw: "[]"})
	m = next.(Model)

	if !reflect.DeepEqual(m.buffer, fresh) {
		t.Errorf("buffer = %v, want %v", m.buffer, fresh)
	}
}

func TestSummarizingBlocksInput(t *testing.T) {
	m := testModel(t)
	m.surface = surfaceEditor
	m.editorOpen = true
	m.summarizing = true
	m.buffer = []task.Task{{Text: "a"}}

	got, _ := press(t, m, m.cfg.Keys.Delete)
	if len(got.buffer) != 1 {
		t.Error("keys must be ignored while the summarize call is in flight")
	}
}

func TestMoveTaskPersistsNewOrder(t *testing.T) {
	m := testModel(t)
	m.surface = surfaceEditor
	m.editorOpen = true
	m.buffer = []task.Task{{Text: "a"}, {Text: "b"}}
	m.cursor = 0

	m, _ = press(t, m, m.cfg.Keys.MoveDown)

	if m.buffer[0].Text != "b" || m.buffer[1].Text != "a" {
		t.Errorf("buffer order = %v", m.buffer)
	}
	if m.cursor != 1 {
		t.Errorf("cursor should follow the task, got %d", m.cursor)
	}
	stored, err := m.store.LoadTasks(m.day)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if stored[0].Text != "b" {
		t.Errorf("reorder not persisted: %v", stored)
	}
}

func TestInitialModelSeedsPlaceholderOnEmptyDay(t *testing.T) {
	store, err := storage.Open(t.TempDir(), "")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer store.Close()
	cfg, err := config.LoadOrCreate(filepath.Join(t.TempDir(), "config.toml"))
	if err != nil {
		t.Fatalf("config: %v", err)
	}

	m := initialModel(store, nil, cfg)

	if m.surface != surfaceDisplay || !m.displayOpen || m.editorOpen || !m.collapsed {
		t.Errorf("unexpected startup state: %+v", m)
	}
	want := []task.Task{{Text: placeholderText, Pinned: true}}
	if !reflect.DeepEqual(m.display, want) {
		t.Errorf("display = %v, want placeholder seed", m.display)
	}
	if !reflect.DeepEqual(m.buffer, want) {
		t.Errorf("buffer = %v, want placeholder seed", m.buffer)
	}
}

func TestInitialModelLoadsExistingDay(t *testing.T) {
	store, err := storage.Open(t.TempDir(), "")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer store.Close()
	cfg, err := config.LoadOrCreate(filepath.Join(t.TempDir(), "config.toml"))
	if err != nil {
		t.Fatalf("config: %v", err)
	}

	saved := []task.Task{{Text: "already planned", Pinned: true}}
	if err := store.SaveTasks(task.Today(), saved); err != nil {
		t.Fatalf("save: %v", err)
	}

	m := initialModel(store, nil, cfg)

	if !reflect.DeepEqual(m.display, saved) {
		t.Errorf("display = %v, want %v", m.display, saved)
	}
	// The two seeded copies must not share a slice.
	m.display[0].Done = true
	if m.buffer[0].Done {
		t.Error("display and buffer share a slice at startup")
	}
}

func TestInitialModelDegradesOnLoadFailure(t *testing.T) {
	store, err := storage.Open(t.TempDir(), "")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	cfg, err := config.LoadOrCreate(filepath.Join(t.TempDir(), "config.toml"))
	if err != nil {
		t.Fatalf("config: %v", err)
	}
	store.Close()

	m := initialModel(store, nil, cfg)

	want := []task.Task{{Text: placeholderText, Pinned: true}}
	if !reflect.DeepEqual(m.display, want) {
		t.Errorf("display = %v, want placeholder fallback", m.display)
	}
	if !strings.Contains(m.status, "load failed") {
		t.Errorf("status should report the degraded start, got %q", m.status)
	}
}

func TestCompleteCurrentPersists(t *testing.T) {
	m := testModel(t)
	m.display = []task.Task{
		{Text: "a"},
		{Text: "b", Pinned: true},
	}

	m, _ = press(t, m, m.cfg.Keys.CompleteCurrent)

	if !m.display[1].Done {
		t.Error("pinned incomplete task should be the one completed")
	}
	stored, err := m.store.LoadTasks(m.day)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(stored) != 2 || !stored[1].Done {
		t.Errorf("completion not persisted: %v", stored)
	}
}
