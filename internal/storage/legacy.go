package storage

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"dailytask/internal/task"
)

// Legacy flat-file format: one JSON array per day under archive/, plus a
// single apikey.json. Both pre-date the database and are read best-effort;
// anything missing or unparseable counts as "no legacy data" and is only
// logged at debug level.

const (
	archiveDirName = "archive"
	apiKeyFileName = "apikey.json"
)

func (s *Store) legacyTasks(day string) []task.Task {
	candidates := []string{
		filepath.Join(s.dataDir, archiveDirName, day+".json"),
	}
	if s.legacyDir != "" {
		candidates = append(candidates, filepath.Join(s.legacyDir, day+".json"))
	}
	for _, path := range candidates {
		if tasks := readTasksFile(path); len(tasks) > 0 {
			return tasks
		}
	}
	return nil
}

func readTasksFile(path string) []task.Task {
	raw, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			slog.Debug("legacy archive unreadable", "path", path, "err", err)
		}
		return nil
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		slog.Debug("legacy archive is not a JSON array", "path", path, "err", err)
		return nil
	}

	// Per-item tolerance: skip entries that aren't objects or lack a string
	// text, default missing flags to false. The old files were written by
	// several versions and partial data beats none.
	var out []task.Task
	for _, item := range items {
		var entry struct {
			Text   *string `json:"text"`
			Done   bool    `json:"done"`
			Pinned bool    `json:"pinned"`
		}
		if err := json.Unmarshal(item, &entry); err != nil || entry.Text == nil {
			continue
		}
		out = append(out, task.Task{Text: *entry.Text, Done: entry.Done, Pinned: entry.Pinned})
	}
	return out
}

func (s *Store) legacyAPIKey() string {
	raw, err := os.ReadFile(filepath.Join(s.dataDir, apiKeyFileName))
	if err != nil {
		return ""
	}
	var payload struct {
		APIKey string `json:"api_key"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		slog.Debug("legacy api key file unparseable", "err", err)
		return ""
	}
	return strings.TrimSpace(payload.APIKey)
}
