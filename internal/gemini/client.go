// Package gemini is an optional generative backend for both classification
// and replies.
package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"email-triage/internal/models"
	"email-triage/internal/prompts"

	"github.com/google/generative-ai-go/genai"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

// ErrNotConfigured is returned when no API key is set.
var ErrNotConfigured = errors.New("gemini: GEMINI_API_KEY not set")

// Client wraps the Gemini API client
type Client struct {
	client     *genai.Client
	classifier *genai.GenerativeModel
	writer     *genai.GenerativeModel
	logger     *zap.Logger
	modelName  string
}

// Config for Gemini client
type Config struct {
	APIKey    string
	ModelName string // Default: "gemini-1.5-flash"
}

type verdict struct {
	Category   *string  `json:"category"`
	Confidence *float64 `json:"confidence"`
}

// NewClient creates a Gemini client. Without an API key the client is
// returned unconfigured and every call fails with ErrNotConfigured.
func NewClient(ctx context.Context, cfg Config, logger *zap.Logger) (*Client, error) {
	if cfg.ModelName == "" {
		cfg.ModelName = "gemini-1.5-flash"
	}

	c := &Client{logger: logger, modelName: cfg.ModelName}
	if cfg.APIKey == "" {
		return c, nil
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	classifier := client.GenerativeModel(cfg.ModelName)
	classifier.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(prompts.ClassifySystemInstruction)},
	}
	classifier.ResponseMIMEType = "application/json"
	classifier.GenerationConfig.Temperature = genai.Ptr[float32](0)

	writer := client.GenerativeModel(cfg.ModelName)
	writer.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(prompts.ReplySystemInstruction)},
	}
	writer.GenerationConfig.Temperature = genai.Ptr[float32](0.3)

	logger.Info("Gemini client initialized", zap.String("model", cfg.ModelName))

	c.client = client
	c.classifier = classifier
	c.writer = writer
	return c, nil
}

// Close closes the Gemini client
func (c *Client) Close() error {
	if c.client == nil {
		return nil
	}
	return c.client.Close()
}

func (c *Client) Name() string     { return models.ClassifiedByGemini }
func (c *Client) Model() string    { return c.modelName }
func (c *Client) Configured() bool { return c.client != nil }

// Classify asks for a JSON verdict. Unlike the chat-completion backend an
// unparseable answer is an error, so the chain moves on.
func (c *Client) Classify(ctx context.Context, text string) (models.Classification, error) {
	if !c.Configured() {
		return models.Classification{}, ErrNotConfigured
	}

	content, err := c.generate(ctx, c.classifier, prompts.BuildClassifyPrompt(text))
	if err != nil {
		return models.Classification{}, err
	}

	result, err := parseVerdict(content)
	if err != nil {
		c.logger.Error("Failed to parse JSON response",
			zap.Error(err),
			zap.String("original_response", content))
		return models.Classification{}, err
	}

	c.logger.Debug("Successfully classified message",
		zap.String("category", result.Category),
		zap.Float64("confidence", result.Confidence))

	return result, nil
}

// Reply writes a short PT-BR answer for the original email.
func (c *Client) Reply(ctx context.Context, category, originalText string) (string, error) {
	if !c.Configured() {
		return "", ErrNotConfigured
	}
	return c.generate(ctx, c.writer, prompts.BuildReplyPrompt(category, originalText))
}

func (c *Client) generate(ctx context.Context, model *genai.GenerativeModel, prompt string) (string, error) {
	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		c.logger.Error("Gemini API error", zap.Error(err))
		return "", fmt.Errorf("gemini API error: %w", err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("empty response from gemini")
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if t, ok := part.(genai.Text); ok {
			sb.WriteString(string(t))
		}
	}
	if sb.Len() == 0 {
		return "", fmt.Errorf("unexpected response type from gemini")
	}
	return sb.String(), nil
}

// parseVerdict applies the same defaults as the chat-completion backend:
// a missing category means Produtivo and a missing confidence means 0.75.
func parseVerdict(content string) (models.Classification, error) {
	var v verdict
	if err := json.Unmarshal([]byte(prompts.StripCodeFence(content)), &v); err != nil {
		return models.Classification{}, fmt.Errorf("failed to parse gemini response: %w", err)
	}

	result := models.Classification{
		Category:     models.CategoryProductive,
		Confidence:   0.75,
		ClassifiedBy: models.ClassifiedByGemini,
	}
	if v.Category != nil {
		result.Category = *v.Category
	}
	if v.Confidence != nil {
		result.Confidence = *v.Confidence
	}
	return result, nil
}
