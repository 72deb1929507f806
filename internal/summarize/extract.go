package summarize

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"dailytask/internal/task"
)

// wrapperKeys are accepted when the model wraps the task array in an object.
var wrapperKeys = []string{"tasks", "items", "data", "list"}

// parseTasks applies the extraction algorithm to the raw model text and
// validates the result. Validation is all-or-nothing: any bad entry rejects
// the whole array.
func parseTasks(raw string) ([]task.Task, error) {
	payload := extractPayload(raw)

	var value any
	if err := json.Unmarshal([]byte(payload), &value); err != nil {
		return nil, &ValidationError{Reason: "response is not JSON", Raw: raw}
	}

	items, err := normalizeShape(value, raw)
	if err != nil {
		return nil, err
	}

	pinnedCount := 0
	tasks := make([]task.Task, 0, len(items))
	for i, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			return nil, &ValidationError{Reason: fmt.Sprintf("entry %d is not an object", i), Raw: raw}
		}
		if !hasExactTaskKeys(obj) {
			return nil, &ValidationError{Reason: fmt.Sprintf("entry %d has wrong fields", i), Raw: raw}
		}
		text, ok := obj["text"].(string)
		if !ok {
			return nil, &ValidationError{Reason: fmt.Sprintf("entry %d: text is not a string", i), Raw: raw}
		}
		done, ok := obj["done"].(bool)
		if !ok {
			return nil, &ValidationError{Reason: fmt.Sprintf("entry %d: done is not a boolean", i), Raw: raw}
		}
		pinned, ok := obj["pinned"].(bool)
		if !ok {
			return nil, &ValidationError{Reason: fmt.Sprintf("entry %d: pinned is not a boolean", i), Raw: raw}
		}
		if pinned {
			pinnedCount++
		}
		tasks = append(tasks, task.Task{Text: strings.TrimSpace(text), Done: done, Pinned: pinned})
	}

	if pinnedCount > 1 {
		return nil, &ValidationError{Reason: fmt.Sprintf("%d tasks pinned, at most 1 allowed", pinnedCount), Raw: raw}
	}
	return tasks, nil
}

// extractPayload returns the substring most likely to be the JSON payload.
// The model is asked for bare JSON but often wraps it in prose, so after a
// failed direct parse we try the outermost bracket pair, array before
// object. When nothing parses the raw text is returned as-is and the caller
// reports the parse failure.
func extractPayload(raw string) string {
	if json.Valid([]byte(raw)) {
		return raw
	}
	for _, pair := range [][2]string{{"[", "]"}, {"{", "}"}} {
		start := strings.Index(raw, pair[0])
		end := strings.LastIndex(raw, pair[1])
		if start == -1 || end == -1 || end <= start {
			continue
		}
		candidate := strings.TrimSpace(raw[start : end+1])
		if json.Valid([]byte(candidate)) {
			return candidate
		}
	}
	return raw
}

// normalizeShape coerces the decoded value into a flat item slice: arrays
// pass through, a lone 3-key task object becomes a one-element array, and a
// wrapper object is unwrapped via the first known list key.
func normalizeShape(value any, raw string) ([]any, error) {
	switch v := value.(type) {
	case []any:
		return v, nil
	case map[string]any:
		if hasExactTaskKeys(v) {
			return []any{v}, nil
		}
		for _, key := range wrapperKeys {
			if inner, ok := v[key].([]any); ok {
				return inner, nil
			}
		}
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		return nil, &ValidationError{
			Reason: fmt.Sprintf("JSON object is not a task array, fields: %s", strings.Join(keys, ", ")),
			Raw:    raw,
		}
	default:
		return nil, &ValidationError{Reason: "JSON is not an array", Raw: raw}
	}
}

func hasExactTaskKeys(obj map[string]any) bool {
	if len(obj) != 3 {
		return false
	}
	_, hasText := obj["text"]
	_, hasDone := obj["done"]
	_, hasPinned := obj["pinned"]
	return hasText && hasDone && hasPinned
}
