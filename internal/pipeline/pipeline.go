// Package pipeline wires the configured backends into an Analyzer. Both the
// HTTP server and the CLI build their pipeline here.
package pipeline

import (
	"context"
	"fmt"

	"email-triage/internal/config"
	"email-triage/internal/gemini"
	"email-triage/internal/huggingface"
	"email-triage/internal/llm"
	"email-triage/internal/openai"
	"email-triage/internal/service"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Pipeline is a ready Analyzer plus the resources it holds.
type Pipeline struct {
	Analyzer *service.Analyzer
	gemini   *gemini.Client
}

// Close releases backend clients.
func (p *Pipeline) Close() error {
	if p.gemini != nil {
		return p.gemini.Close()
	}
	return nil
}

// New builds the classifier chain (zero-shot, chat-completion, Gemini) and the
// reply chain (chat-completion, Gemini). Unconfigured backends stay in the
// chains and are skipped at call time.
func New(ctx context.Context, cfg config.Config, logger *zap.Logger) (*Pipeline, error) {
	hf := huggingface.NewClient(huggingface.Config{
		APIToken: cfg.HuggingFace.APIToken,
		BaseURL:  cfg.HuggingFace.BaseURL,
		Model:    cfg.HuggingFace.Model,
		Timeout:  cfg.RequestTimeout,
	}, logger.Named("huggingface"))

	chat := openai.NewClient(openai.Config{
		APIKey:  cfg.OpenAI.APIKey,
		BaseURL: cfg.OpenAI.BaseURL,
		Model:   cfg.OpenAI.Model,
		Timeout: cfg.RequestTimeout,
	}, logger.Named("openai"))

	gem, err := gemini.NewClient(ctx, gemini.Config{
		APIKey:    cfg.Gemini.APIKey,
		ModelName: cfg.Gemini.ModelName,
	}, logger.Named("gemini"))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize gemini: %w", err)
	}

	gemTimed := geminiWithTimeout{Client: gem, timeout: cfg.RequestTimeout}

	classifiers := []llm.Classifier{hf, chat, gemTimed}
	repliers := []llm.Replier{chat, gemTimed}

	if cfg.Breaker.Enabled {
		settings := llm.BreakerSettings{
			ConsecutiveFailures: cfg.Breaker.ConsecutiveFailures,
			OpenTimeout:         cfg.Breaker.OpenTimeout,
		}
		for i, c := range classifiers {
			classifiers[i] = llm.WithClassifierBreaker(c, settings, logger)
		}
		for i, r := range repliers {
			repliers[i] = llm.WithReplierBreaker(r, settings, logger)
		}
		logger.Info("Circuit breakers enabled",
			zap.Uint32("consecutive_failures", settings.ConsecutiveFailures),
			zap.Duration("open_timeout", settings.OpenTimeout))
	}

	analyzer := service.NewAnalyzer(
		llm.NewChain(logger.Named("chain"), classifiers...),
		llm.NewSuggester(logger.Named("reply"), repliers...),
		logger,
	)

	return &Pipeline{Analyzer: analyzer, gemini: gem}, nil
}

// NewLogger builds the process logger from the log section of the config.
func NewLogger(cfg config.Config) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.Log.Level, err)
	}

	zcfg := zap.NewProductionConfig()
	if cfg.Log.Development {
		zcfg = zap.NewDevelopmentConfig()
	}
	zcfg.Level = zap.NewAtomicLevelAt(level)

	return zcfg.Build()
}
