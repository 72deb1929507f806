// Package summarize turns a free-form prompt into a validated task list via
// an OpenAI-compatible chat-completions endpoint.
package summarize

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"dailytask/internal/task"
)

const (
	DefaultBaseURL = "https://api.siliconflow.cn/v1"
	DefaultModel   = "deepseek-ai/DeepSeek-V3.2"
)

// DefaultSystemPrompt is the task-decomposition instruction shipped with the
// original deployment (Simplified Chinese, JSON-array-only output, 3-7
// items, at most one pinned). Overridable in config.
const DefaultSystemPrompt = "你是一个任务拆解助手。\n\n" +
	"你的职责是：把用户给出的“模糊想法、目标或计划”，整理为**今天可以执行的具体任务列表**。\n\n" +
	"请严格遵守以下规则：\n\n" +
	"1. 只输出 JSON，不要输出任何解释性文字。\n" +
	"2. JSON 必须是一个数组，每一项表示一个任务对象。\n" +
	"3. 每个任务对象必须且只能包含以下字段：\n" +
	"   - \"text\": string，任务的具体描述\n" +
	"   - \"done\": boolean，初始一律为 false\n" +
	"   - \"pinned\": boolean，最多只能有一个任务为 true，其余为 false\n" +
	"4. 任务应当是：\n" +
	"   - 可执行的\n" +
	"   - 具体的\n" +
	"   - 适合在“今天”完成的\n" +
	"5. 如果用户输入过于宏观或抽象，请你主动拆解为多个小任务。\n" +
	"6. 如果任务存在逻辑顺序，请将“最优先/第一步”的任务设为 pinned = true。\n" +
	"7. 任务数量建议在 3–7 条之间，避免过多或过少。\n" +
	"8. 不要使用编号、emoji 或 markdown 语法。\n" +
	"9. 任务描述使用简体中文、动词开头，避免空泛表述（如“努力”“思考一下”等）。"

// ValidationError means the model responded but the response does not meet
// the task-array contract. Raw carries the offending text for diagnosis.
type ValidationError struct {
	Reason string
	Raw    string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid model output: %s", e.Reason)
}

type Client struct {
	baseURL      string
	model        string
	systemPrompt string
	httpClient   *http.Client
}

// New builds a client. Empty arguments fall back to the defaults above.
func New(baseURL, model, systemPrompt string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if model == "" {
		model = DefaultModel
	}
	if systemPrompt == "" {
		systemPrompt = DefaultSystemPrompt
	}
	return &Client{
		baseURL:      strings.TrimRight(baseURL, "/"),
		model:        model,
		systemPrompt: systemPrompt,
		httpClient:   &http.Client{},
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

type apiError struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// Summarize sends the user's prompt to the model and validates the reply.
// It returns the parsed tasks together with the raw model text; on a
// *ValidationError the raw text travels inside the error instead. The call
// is never retried.
func (c *Client) Summarize(ctx context.Context, apiKey, prompt string) ([]task.Task, string, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, "", fmt.Errorf("api key is not set")
	}

	reqBody := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: c.systemPrompt},
			{Role: "user", Content: prompt},
		},
	}
	body, err := json.Marshal(reqBody)
	if err != nil {
		return nil, "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("call model: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr apiError
		if json.Unmarshal(respBody, &apiErr) == nil && apiErr.Error.Message != "" {
			return nil, "", fmt.Errorf("model API error (%d): %s", resp.StatusCode, apiErr.Error.Message)
		}
		return nil, "", fmt.Errorf("model API error: status %d", resp.StatusCode)
	}

	var parsed chatResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, "", fmt.Errorf("decode response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return nil, "", fmt.Errorf("model returned no choices")
	}
	content := parsed.Choices[0].Message.Content

	tasks, err := parseTasks(content)
	if err != nil {
		return nil, "", err
	}
	return tasks, content, nil
}
