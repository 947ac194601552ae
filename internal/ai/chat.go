package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatClient calls the OpenAI-compatible /chat/completions endpoint. One
// blocking call per question, no multi-turn state.
type ChatClient struct {
	client *Client
	model  string
}

func NewChatClient(client *Client, model string) *ChatClient {
	return &ChatClient{client: client, model: model}
}

// Complete sends a system instruction plus one user turn and returns the
// model's raw text response verbatim.
func (c *ChatClient) Complete(ctx context.Context, system, user string) (string, error) {
	reqBody := map[string]interface{}{
		"model": c.model,
		"messages": []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		"stream": false,
	}
	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal llm request failed: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.client.endpoint("/chat/completions"), bytes.NewReader(bodyBytes))
	if err != nil {
		return "", fmt.Errorf("build llm request failed: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.client.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.client.apiKey)
	}

	resp, err := c.client.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrGenerationBackend, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: read response failed: %v", ErrGenerationBackend, err)
	}
	if resp.StatusCode >= 300 {
		return "", fmt.Errorf("%w: status %d: %s", ErrGenerationBackend, resp.StatusCode, string(raw))
	}

	var parsed struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", fmt.Errorf("%w: parse llm json failed: %v", ErrGenerationBackend, err)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("%w: empty llm choices", ErrGenerationBackend)
	}
	return parsed.Choices[0].Message.Content, nil
}
