// Package insights turns analysis metrics into a short natural-language review
// for one persona.
package insights

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/cnharrison/har-insights/internal/analyzer"
)

// Generator produces an insight for a set of metrics
type Generator interface {
	Generate(ctx context.Context, metrics analyzer.Metrics, persona Persona) (string, error)
}

// Prompt is the message pair sent to a chat model
type Prompt struct {
	System string
	User   string
}

// BuildPrompt embeds the metrics as JSON. The timeseries is left out because
// it grows with the capture and adds nothing the aggregates do not already say.
func BuildPrompt(metrics analyzer.Metrics, persona Persona) (Prompt, error) {
	metrics.Timeseries = nil
	payload, err := json.Marshal(metrics)
	if err != nil {
		return Prompt{}, fmt.Errorf("encode metrics: %w", err)
	}

	system := "You review HTTP Archive (HAR) performance metrics for a " + string(persona) +
		" audience. " + persona.focus() + " Answer in Markdown with at most five bullet points."

	var user strings.Builder
	user.WriteString("Metrics for the capture (times in milliseconds, sizes in bytes):\n")
	user.Write(payload)
	return Prompt{System: system, User: user.String()}, nil
}

// OpenAIConfig configures OpenAIGenerator
type OpenAIConfig struct {
	APIKey    string
	Model     string
	BaseURL   string
	MaxTokens int
	Timeout   time.Duration
}

// OpenAIGenerator calls an OpenAI-compatible chat completions endpoint
type OpenAIGenerator struct {
	client    *openai.Client
	model     string
	maxTokens int
}

// NewOpenAIGenerator creates a generator. A base URL points it at any
// OpenAI-compatible server.
func NewOpenAIGenerator(cfg OpenAIConfig) (*OpenAIGenerator, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("openai api key is required")
	}
	if cfg.Model == "" {
		cfg.Model = openai.GPT4oMini
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	if cfg.Timeout > 0 {
		clientCfg.HTTPClient = &http.Client{Timeout: cfg.Timeout}
	}

	return &OpenAIGenerator{
		client:    openai.NewClientWithConfig(clientCfg),
		model:     cfg.Model,
		maxTokens: cfg.MaxTokens,
	}, nil
}

// Generate implements Generator
func (g *OpenAIGenerator) Generate(ctx context.Context, metrics analyzer.Metrics, persona Persona) (string, error) {
	prompt, err := BuildPrompt(metrics, persona)
	if err != nil {
		return "", err
	}

	req := openai.ChatCompletionRequest{
		Model: g.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: prompt.System},
			{Role: openai.ChatMessageRoleUser, Content: prompt.User},
		},
	}
	if g.maxTokens > 0 {
		req.MaxCompletionTokens = g.maxTokens
	}

	resp, err := g.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("openai chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("openai returned no choices")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
