// Package ai provides a client for an OpenAI-compatible chat-completions
// endpoint used by the Q&A widget.
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"
)

// Client calls the upstream inference API.
type Client struct {
	BaseURL    string
	Model      string
	Token      string
	HTTPClient *http.Client
}

// New creates a new inference client.
func New(baseURL, model, token string) *Client {
	return &Client{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		Model:      model,
		Token:      token,
		HTTPClient: &http.Client{Timeout: 60 * time.Second},
	}
}

// Answer is the structured explanation extracted from the model output.
type Answer struct {
	Think   string `json:"think"`
	Summary string `json:"summary"`
	Content string `json:"content"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model     string        `json:"model"`
	Messages  []chatMessage `json:"messages"`
	MaxTokens int           `json:"max_tokens"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

var (
	thinkBlockRe = regexp.MustCompile(`(?is)<think>.*?</think>`)
	jsonFenceRe  = regexp.MustCompile("(?i)```json|```")
	jsonObjectRe = regexp.MustCompile(`(?s)\{.*\}`)
)

// Ask requests an explanation of topic and extracts the JSON object the model
// was instructed to return. Model chatter around the object (think blocks,
// code fences) is stripped before extraction.
func (c *Client) Ask(ctx context.Context, topic string) (*Answer, error) {
	prompt := "Explain the following topic in detail. Return ONLY a JSON object with keys: " +
		"think, summary, content. Do not add any text outside JSON. Topic: " + topic

	body, err := json.Marshal(chatRequest{
		Model: c.Model,
		Messages: []chatMessage{
			{Role: "system", Content: "You are a helpful AI assistant."},
			{Role: "user", Content: prompt},
		},
		MaxTokens: 500,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.Token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("provider returned %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	var parsed chatResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("invalid provider response: %w", err)
	}
	if parsed.Error != nil {
		return nil, fmt.Errorf("provider error: %s", parsed.Error.Message)
	}
	if len(parsed.Choices) == 0 {
		return nil, fmt.Errorf("provider returned no choices")
	}

	return extractAnswer(parsed.Choices[0].Message.Content)
}

// extractAnswer cleans the model text and parses the embedded JSON object.
func extractAnswer(text string) (*Answer, error) {
	cleaned := thinkBlockRe.ReplaceAllString(text, "")
	cleaned = jsonFenceRe.ReplaceAllString(cleaned, "")
	cleaned = strings.TrimSpace(cleaned)

	match := jsonObjectRe.FindString(cleaned)
	if match == "" {
		return nil, fmt.Errorf("cannot parse JSON from model response: %s", cleaned)
	}

	var answer Answer
	if err := json.Unmarshal([]byte(match), &answer); err != nil {
		return nil, fmt.Errorf("invalid JSON from model response: %w", err)
	}
	return &answer, nil
}
