// Package task holds the task record and the pure list rules shared by the
// display surface, the editor surface, and the store.
package task

import (
	"fmt"
	"strings"
	"time"
)

// Task is one entry of a day's list. Order within the list is significant:
// it is both the storage position and the tie-break for display priority.
type Task struct {
	Text   string `json:"text"`
	Done   bool   `json:"done"`
	Pinned bool   `json:"pinned"`
}

// Today returns the day key for the current local date.
func Today() string {
	return time.Now().Format("2006-01-02")
}

// Clone copies a list. Surfaces never share a slice; every hand-off between
// editor, display, and store goes through a copy.
func Clone(list []Task) []Task {
	if list == nil {
		return nil
	}
	out := make([]Task, len(list))
	copy(out, list)
	return out
}

// Normalize trims task text and drops entries that are empty after trimming.
func Normalize(list []Task) []Task {
	out := make([]Task, 0, len(list))
	for _, t := range list {
		t.Text = strings.TrimSpace(t.Text)
		if t.Text == "" {
			continue
		}
		out = append(out, t)
	}
	return out
}

// Current picks the task the user should act on next: the first pinned and
// not-done task in list order, else the first not-done task, else none.
// A list may carry more than one pin (manual edits are not policed); the
// first one in list order wins.
func Current(list []Task) (int, bool) {
	for i, t := range list {
		if t.Pinned && !t.Done {
			return i, true
		}
	}
	for i, t := range list {
		if !t.Done {
			return i, true
		}
	}
	return 0, false
}

// DisplayOrder returns indices for presentation: pinned entries first, then
// the rest, each group keeping its relative list order. The underlying list
// is not touched.
func DisplayOrder(list []Task) []int {
	order := make([]int, 0, len(list))
	for i, t := range list {
		if t.Pinned {
			order = append(order, i)
		}
	}
	for i, t := range list {
		if !t.Pinned {
			order = append(order, i)
		}
	}
	return order
}

// Reorder applies an explicit permutation and returns the physically
// reordered list. Unlike DisplayOrder this changes the canonical order, so
// callers must persist the result. The input list is left untouched.
func Reorder(list []Task, order []int) ([]Task, error) {
	if len(order) != len(list) {
		return nil, fmt.Errorf("reorder: permutation has %d entries, list has %d", len(order), len(list))
	}
	seen := make([]bool, len(list))
	out := make([]Task, 0, len(list))
	for _, idx := range order {
		if idx < 0 || idx >= len(list) {
			return nil, fmt.Errorf("reorder: index %d out of range", idx)
		}
		if seen[idx] {
			return nil, fmt.Errorf("reorder: index %d repeated", idx)
		}
		seen[idx] = true
		out = append(out, list[idx])
	}
	return out, nil
}
