package service

import (
	"context"
	"strings"
	"testing"

	"email-triage/internal/llm"
	"email-triage/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubClassifier struct {
	result models.Classification
	got    string
}

func (s *stubClassifier) Classify(_ context.Context, text string) models.Classification {
	s.got = text
	return s.result
}

func (s *stubClassifier) Providers() []models.ProviderInfo { return nil }

type stubSuggester struct {
	category string
	original string
}

func (s *stubSuggester) Suggest(_ context.Context, category, originalText string) models.Reply {
	s.category = category
	s.original = originalText
	return models.Reply{Text: "resposta", Provider: models.ReplyByOpenAI}
}

func (s *stubSuggester) Providers() []models.ProviderInfo { return nil }

func TestAnalyzeWithoutCredentials(t *testing.T) {
	analyzer := NewAnalyzer(llm.NewChain(zap.NewNop()), llm.NewSuggester(zap.NewNop()), zap.NewNop())

	raw := "Preciso de suporte urgente, minha senha não funciona, segue anexo."
	got, err := analyzer.Analyze(context.Background(), raw)
	require.NoError(t, err)

	assert.Equal(t, models.CategoryProductive, got.Category)
	assert.Equal(t, models.ClassifiedByHeuristics, got.ClassifiedBy)
	assert.Equal(t, llm.TemplateReply(models.CategoryProductive).Text, got.SuggestedReply)
	assert.Equal(t, models.ReplyByTemplate, got.ReplyProvider)
	assert.Equal(t, raw, got.Preview)
	assert.Greater(t, got.Tokens, 0)
}

func TestAnalyzePassesCleanAndRawText(t *testing.T) {
	classifier := &stubClassifier{result: models.Classification{
		Category:     "Improdutivo",
		Confidence:   0.876543,
		ClassifiedBy: models.ClassifiedByHuggingFace,
	}}
	suggester := &stubSuggester{}
	analyzer := NewAnalyzer(classifier, suggester, zap.NewNop())

	raw := "Feliz Natal para   TODA a equipe!"
	got, err := analyzer.Analyze(context.Background(), raw)
	require.NoError(t, err)

	assert.Equal(t, "feliz natal toda equipe", classifier.got)
	assert.Equal(t, "Improdutivo", suggester.category)
	assert.Equal(t, raw, suggester.original)

	assert.Equal(t, 0.8765, got.Confidence)
	assert.Equal(t, models.ClassifiedByHuggingFace, got.ClassifiedBy)
	assert.Equal(t, "resposta", got.SuggestedReply)
	assert.Equal(t, 4, got.Tokens)
}

func TestAnalyzeEmptyContent(t *testing.T) {
	analyzer := NewAnalyzer(&stubClassifier{}, &stubSuggester{}, zap.NewNop())

	for _, raw := range []string{"", "   ", "\n\t"} {
		_, err := analyzer.Analyze(context.Background(), raw)
		assert.ErrorIs(t, err, ErrEmptyContent)
	}
}

func TestSafeTruncate(t *testing.T) {
	short := strings.Repeat("a", 600)
	assert.Equal(t, short, SafeTruncate(short, 600))

	long := strings.Repeat("é", 601)
	got := SafeTruncate(long, 600)
	assert.Equal(t, 600, len([]rune(got)))
	assert.True(t, strings.HasSuffix(got, "..."))
	assert.Equal(t, strings.Repeat("é", 597)+"...", got)
}

func TestProviders(t *testing.T) {
	analyzer := NewAnalyzer(llm.NewChain(zap.NewNop()), llm.NewSuggester(zap.NewNop()), zap.NewNop())

	got := analyzer.Providers()
	require.Len(t, got["classifiers"], 1)
	assert.Equal(t, models.ClassifiedByHeuristics, got["classifiers"][0].Name)
	require.Len(t, got["repliers"], 1)
	assert.Equal(t, models.ReplyByTemplate, got["repliers"][0].Name)
}
