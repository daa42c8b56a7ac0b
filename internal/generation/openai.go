package generation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const defaultEndpoint = "https://api.openai.com/v1/chat/completions"

var systemPrompts = map[string]string{
	"resume_analyze": "You review resumes. Point out weaknesses and concrete improvements as a short bullet list.",
	"cover_letter":   "You write concise, specific cover letters based on the resume and job description given.",
	"bullet_rewrite": "You rewrite resume bullet points to be quantified and action-oriented. Return only the bullets.",
}

const fallbackPrompt = "You are a helpful assistant for resume writing."

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// OpenAIGenerator - клиент chat completions (любой совместимый endpoint)
type OpenAIGenerator struct {
	endpoint string
	apiKey   string
	model    string
	client   *http.Client
}

func NewOpenAIGenerator(endpoint, apiKey, model string, timeout time.Duration) *OpenAIGenerator {
	if endpoint == "" {
		endpoint = defaultEndpoint
	}
	if model == "" {
		model = "gpt-4o-mini"
	}
	return &OpenAIGenerator{
		endpoint: endpoint,
		apiKey:   apiKey,
		model:    model,
		client:   &http.Client{Timeout: timeout},
	}
}

func (g *OpenAIGenerator) Generate(ctx context.Context, req Request) (string, error) {
	prompt, ok := systemPrompts[req.ActionKind]
	if !ok {
		prompt = fallbackPrompt
	}

	body, err := json.Marshal(chatRequest{
		Model:       g.model,
		MaxTokens:   800,
		Temperature: 0.4,
		Messages: []chatMessage{
			{Role: "system", Content: prompt},
			{Role: "user", Content: req.Input},
		},
	})
	if err != nil {
		return "", err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+g.apiKey)

	resp, err := g.client.Do(httpReq)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", err
	}

	var parsed chatResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", fmt.Errorf("decode completion (status %d): %w", resp.StatusCode, err)
	}
	if resp.StatusCode != http.StatusOK {
		msg := http.StatusText(resp.StatusCode)
		if parsed.Error != nil {
			msg = parsed.Error.Message
		}
		return "", fmt.Errorf("completion request failed: %d %s", resp.StatusCode, msg)
	}

	if len(parsed.Choices) == 0 {
		return "", ErrEmptyOutput
	}
	text := strings.TrimSpace(parsed.Choices[0].Message.Content)
	if text == "" {
		return "", ErrEmptyOutput
	}
	return text, nil
}
