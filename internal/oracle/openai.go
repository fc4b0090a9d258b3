package oracle

import (
	"context"
	"fmt"
	"log"
	"math"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

// Client talks to any OpenAI-compatible chat endpoint. Latency is
// unbounded on the far side, so every call carries a deadline; a
// failed or malformed response surfaces as an error and the caller
// degrades.
type Client struct {
	api     *openai.Client
	model   string
	timeout time.Duration
	log     *log.Logger
}

func NewClient(baseURL, apiKey, model string, timeout time.Duration, logger *log.Logger) *Client {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &Client{
		api:     openai.NewClientWithConfig(cfg),
		model:   model,
		timeout: timeout,
		log:     logger,
	}
}

func (c *Client) chat(ctx context.Context, system, user string, maxTokens int) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:     c.model,
		MaxTokens: maxTokens,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("oracle returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}

func (c *Client) Investigate(ctx context.Context, f CaseFile) (Finding, error) {
	raw, err := c.chat(ctx, investigatorSystem, investigationPrompt(f), 400)
	if err != nil {
		return Finding{}, err
	}
	var out Finding
	if err := decodeChecked(raw, findingSchema, &out); err != nil {
		return Finding{}, err
	}
	out.Confidence = math.Max(0, math.Min(1, out.Confidence))
	return out, nil
}

func (c *Client) ClosingReport(ctx context.Context, cl Closing) (string, error) {
	return c.chat(ctx, investigatorSystem, closingPrompt(cl), 350)
}

func (c *Client) Deliberate(ctx context.Context, d Docket) (Verdict, error) {
	raw, err := c.chat(ctx, judgeSystem, verdictPrompt(d), 500)
	if err != nil {
		return Verdict{}, err
	}
	var out Verdict
	if err := decodeChecked(raw, verdictSchema, &out); err != nil {
		return Verdict{}, err
	}
	if out.Fine < 0 {
		out.Fine = 0
	}
	if out.ExileDays < 0 {
		out.ExileDays = 0
	}
	return out, nil
}

func (c *Client) Compose(ctx context.Context, e Edition) (string, error) {
	return c.chat(ctx, editorSystem, editionPrompt(e), 400)
}

var _ Oracle = (*Client)(nil)
