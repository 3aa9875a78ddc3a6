// Package llm wraps the Anthropic Messages API behind the narrow contract
// the outreach engine actually needs: a system prompt, a user prompt, a
// token budget, and a single text reply.
package llm

import (
	"context"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// Client is a thin wrapper over anthropic.Client scoped to single-turn,
// system+user prompt completions — the only shape the LM Analyzer needs.
type Client struct {
	inner     anthropic.Client
	model     anthropic.Model
	maxTokens int64
}

// Config holds the settings needed to construct a Client.
type Config struct {
	APIKey    string
	Model     string
	MaxTokens int64
}

// New builds a Client from Config. An empty Model falls back to a recent
// Sonnet model; an empty MaxTokens falls back to 1024.
func New(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("llm: API key is required")
	}
	model := anthropic.Model(cfg.Model)
	if model == "" {
		model = anthropic.ModelClaude3_5SonnetLatest
	}
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 1024
	}
	return &Client{
		inner:     anthropic.NewClient(option.WithAPIKey(cfg.APIKey)),
		model:     model,
		maxTokens: maxTokens,
	}, nil
}

// Complete sends a single system+user turn and returns the concatenated text
// of the reply's content blocks.
func (c *Client) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	resp, err := c.inner.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     c.model,
		MaxTokens: c.maxTokens,
		System: []anthropic.TextBlockParam{
			{Text: systemPrompt},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(userPrompt)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("llm: messages.new: %w", err)
	}

	var text string
	for _, block := range resp.Content {
		if block.Type == "text" {
			text += block.Text
		}
	}
	return text, nil
}
