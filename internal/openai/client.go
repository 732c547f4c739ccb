// Package openai uses a chat-completion API both as a classifier and as a
// reply writer.
package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"email-triage/internal/models"
	"email-triage/internal/prompts"

	gogpt "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// ErrNotConfigured is returned when no API key is set.
var ErrNotConfigured = errors.New("openai: OPENAI_API_KEY not set")

const (
	defaultCategory    = models.CategoryProductive
	defaultConfidence  = 0.75
	degradedConfidence = 0.7

	replyTemperature = 0.3
)

// The library drops a zero temperature from the request body, so the
// smallest positive float stands in for deterministic sampling.
var classifyTemperature float32 = math.SmallestNonzeroFloat32

// Config for the chat-completion client
type Config struct {
	APIKey  string
	BaseURL string // Default: "https://api.openai.com/v1"
	Model   string // Default: "gpt-4o-mini"
	Timeout time.Duration
}

// Client wraps the chat-completion API
type Client struct {
	client *gogpt.Client
	apiKey string
	model  string
	logger *zap.Logger
}

// NewClient creates a chat-completion client. Works with any
// OpenAI-compatible base URL.
func NewClient(cfg Config, logger *zap.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.openai.com/v1"
	}
	if cfg.Model == "" {
		cfg.Model = "gpt-4o-mini"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 60 * time.Second
	}

	clientConfig := gogpt.DefaultConfig(cfg.APIKey)
	clientConfig.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	clientConfig.HTTPClient = &http.Client{Timeout: cfg.Timeout}

	return &Client{
		client: gogpt.NewClientWithConfig(clientConfig),
		apiKey: cfg.APIKey,
		model:  cfg.Model,
		logger: logger,
	}
}

func (c *Client) Name() string     { return models.ClassifiedByOpenAI }
func (c *Client) Model() string    { return c.model }
func (c *Client) Configured() bool { return c.apiKey != "" }

// Classify asks the model for a JSON verdict. When the answer is not usable
// JSON the result degrades to a keyword check but keeps the "openai" tag.
func (c *Client) Classify(ctx context.Context, text string) (models.Classification, error) {
	content, err := c.complete(ctx, prompts.ClassifySystemInstruction, prompts.BuildClassifyPrompt(text), classifyTemperature)
	if err != nil {
		return models.Classification{}, err
	}

	category, confidence, err := parseVerdict(content)
	if err != nil {
		c.logger.Warn("Failed to parse classification JSON, using degraded fallback",
			zap.Error(err),
			zap.String("original_response", content))
		category, confidence = degradedVerdict(text)
	}

	return models.Classification{
		Category:     category,
		Confidence:   confidence,
		ClassifiedBy: models.ClassifiedByOpenAI,
	}, nil
}

// Reply writes a short PT-BR answer for the original email.
func (c *Client) Reply(ctx context.Context, category, originalText string) (string, error) {
	return c.complete(ctx, prompts.ReplySystemInstruction, prompts.BuildReplyPrompt(category, originalText), replyTemperature)
}

func (c *Client) complete(ctx context.Context, system, user string, temperature float32) (string, error) {
	if !c.Configured() {
		return "", ErrNotConfigured
	}

	resp, err := c.client.CreateChatCompletion(ctx, gogpt.ChatCompletionRequest{
		Model: c.model,
		Messages: []gogpt.ChatCompletionMessage{
			{
				Role:    gogpt.ChatMessageRoleSystem,
				Content: system,
			},
			{
				Role:    gogpt.ChatMessageRoleUser,
				Content: user,
			},
		},
		Temperature: temperature,
	})
	if err != nil {
		c.logger.Error("OpenAI API error", zap.String("model", c.model), zap.Error(err))
		return "", fmt.Errorf("openai API error: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("empty response from openai")
	}

	return resp.Choices[0].Message.Content, nil
}

// parseVerdict reads {"category": ..., "confidence": ...}. A missing category
// means Produtivo and a missing confidence means 0.75.
func parseVerdict(content string) (string, float64, error) {
	var verdict map[string]interface{}
	if err := json.Unmarshal([]byte(prompts.StripCodeFence(content)), &verdict); err != nil {
		return "", 0, fmt.Errorf("failed to parse openai response: %w", err)
	}
	if verdict == nil {
		return "", 0, fmt.Errorf("openai response is not an object")
	}

	category := defaultCategory
	if raw, ok := verdict["category"]; ok {
		s, ok := raw.(string)
		if !ok {
			return "", 0, fmt.Errorf("category is %T, not a string", raw)
		}
		category = s
	}

	confidence := defaultConfidence
	if raw, ok := verdict["confidence"]; ok {
		switch v := raw.(type) {
		case float64:
			confidence = v
		case string:
			f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
			if err != nil {
				return "", 0, fmt.Errorf("invalid confidence %q: %w", v, err)
			}
			confidence = f
		default:
			return "", 0, fmt.Errorf("confidence is %T, not a number", raw)
		}
	}

	return category, confidence, nil
}

func degradedVerdict(text string) (string, float64) {
	lower := strings.ToLower(text)
	if strings.Contains(lower, "anexo") || strings.Contains(lower, "suporte") {
		return models.CategoryProductive, degradedConfidence
	}
	return models.CategoryUnproductive, degradedConfidence
}
