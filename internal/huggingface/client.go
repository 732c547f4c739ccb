// Package huggingface classifies text with a zero-shot model served by the
// Hugging Face Inference API.
package huggingface

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"email-triage/internal/heuristics"
	"email-triage/internal/models"
	"email-triage/internal/prompts"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"go.uber.org/zap"
)

// ErrNotConfigured is returned when no API token is set.
var ErrNotConfigured = errors.New("huggingface: HUGGINGFACE_API_TOKEN not set")

// HypothesisTemplate is the NLI hypothesis each candidate label is inserted into.
const HypothesisTemplate = "Este texto é {}."

const responseSchema = `{
	"type": "object",
	"required": ["labels", "scores"],
	"properties": {
		"labels": {"type": "array", "items": {"type": "string"}, "minItems": 1},
		"scores": {"type": "array", "items": {"type": "number"}, "minItems": 1}
	}
}`

var zeroShotSchema = jsonschema.MustCompileString("zero-shot-response.json", responseSchema)

// Config for the zero-shot client
type Config struct {
	APIToken string
	BaseURL  string // Default: "https://api-inference.huggingface.co"
	Model    string // Default: "joeddav/xlm-roberta-large-xnli"
	Timeout  time.Duration
}

// Client is a zero-shot classification client
type Client struct {
	apiToken   string
	baseURL    string
	model      string
	httpClient *http.Client
	logger     *zap.Logger
}

type zeroShotRequest struct {
	Inputs     string             `json:"inputs"`
	Parameters zeroShotParameters `json:"parameters"`
}

type zeroShotParameters struct {
	CandidateLabels    []string `json:"candidate_labels"`
	HypothesisTemplate string   `json:"hypothesis_template"`
}

type zeroShotResponse struct {
	Labels []string  `json:"labels"`
	Scores []float64 `json:"scores"`
}

// NewClient creates a zero-shot client. A missing token is not an error here;
// Classify reports it instead.
func NewClient(cfg Config, logger *zap.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api-inference.huggingface.co"
	}
	if cfg.Model == "" {
		cfg.Model = "joeddav/xlm-roberta-large-xnli"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 60 * time.Second
	}

	return &Client{
		apiToken:   cfg.APIToken,
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		model:      cfg.Model,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     logger,
	}
}

func (c *Client) Name() string     { return models.ClassifiedByHuggingFace }
func (c *Client) Model() string    { return c.model }
func (c *Client) Configured() bool { return c.apiToken != "" }

// Classify sends text to the zero-shot endpoint and picks the best scoring
// label. Transport failures, non-2xx statuses and non-JSON bodies are errors.
// A JSON body of an unexpected shape silently degrades to the heuristic.
func (c *Client) Classify(ctx context.Context, text string) (models.Classification, error) {
	if !c.Configured() {
		return models.Classification{}, ErrNotConfigured
	}

	reqBody := zeroShotRequest{
		Inputs: prompts.Truncate(text, prompts.MaxInputChars),
		Parameters: zeroShotParameters{
			CandidateLabels:    models.Candidates,
			HypothesisTemplate: HypothesisTemplate,
		},
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return models.Classification{}, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/models/"+c.model, bytes.NewBuffer(jsonData))
	if err != nil {
		return models.Classification{}, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return models.Classification{}, fmt.Errorf("huggingface API error: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return models.Classification{}, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Error("Hugging Face API error",
			zap.Int("status", resp.StatusCode),
			zap.String("body", string(body)))
		return models.Classification{}, fmt.Errorf("huggingface API returned status %d: %s", resp.StatusCode, string(body))
	}

	var raw interface{}
	if err := json.Unmarshal(body, &raw); err != nil {
		return models.Classification{}, fmt.Errorf("failed to decode response: %w", err)
	}

	result, err := pickBest(raw)
	if err != nil {
		c.logger.Warn("Unexpected zero-shot response shape, using heuristics",
			zap.Error(err),
			zap.String("body", string(body)))
		return heuristics.Classify(text), nil
	}

	c.logger.Debug("Zero-shot classification succeeded",
		zap.String("category", result.Category),
		zap.Float64("confidence", result.Confidence))

	return result, nil
}

// pickBest returns the label with the highest score; ties go to the first.
func pickBest(raw interface{}) (models.Classification, error) {
	if err := zeroShotSchema.Validate(raw); err != nil {
		return models.Classification{}, err
	}

	// Re-encode the validated document into its typed form.
	data, err := json.Marshal(raw)
	if err != nil {
		return models.Classification{}, err
	}
	var parsed zeroShotResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return models.Classification{}, err
	}

	best := 0
	for i, score := range parsed.Scores {
		if score > parsed.Scores[best] {
			best = i
		}
	}
	if best >= len(parsed.Labels) {
		return models.Classification{}, fmt.Errorf("no label for best score index %d", best)
	}

	return models.Classification{
		Category:     parsed.Labels[best],
		Confidence:   parsed.Scores[best],
		ClassifiedBy: models.ClassifiedByHuggingFace,
	}, nil
}
