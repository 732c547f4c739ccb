package llm

import (
	"context"
	"strings"

	"email-triage/internal/models"

	"go.uber.org/zap"
)

const productiveTemplate = "Olá! Obrigado pelo contato. Para dar sequência, poderia nos enviar o número do protocolo " +
	"ou mais detalhes (prints/arquivos) sobre o ocorrido? Assim que recebermos essas informações, " +
	"abriremos/atualizaremos o ticket e retornaremos com o status e próximos passos. " +
	"Ficamos à disposição."

const unproductiveTemplate = "Olá! Agradecemos a mensagem. Registramos seu contato. Caso precise de ajuda ou tenha alguma " +
	"solicitação específica, fale conosco por este canal. Tenha um ótimo dia!"

// TemplateReply picks a static reply by category prefix. Any category that
// does not start with "produt" (case-insensitive) gets the cordial template.
func TemplateReply(category string) models.Reply {
	text := unproductiveTemplate
	if strings.HasPrefix(strings.ToLower(category), "produt") {
		text = productiveTemplate
	}
	return models.Reply{Text: text, Provider: models.ReplyByTemplate}
}

// Suggester generates a reply with the first working backend, or a template.
type Suggester struct {
	repliers []Replier
	logger   *zap.Logger
}

// NewSuggester creates a suggester; repliers are tried in the order given.
func NewSuggester(logger *zap.Logger, repliers ...Replier) *Suggester {
	return &Suggester{
		repliers: repliers,
		logger:   logger,
	}
}

// Suggest never fails.
func (s *Suggester) Suggest(ctx context.Context, category, originalText string) models.Reply {
	for _, replier := range s.repliers {
		if !replier.Configured() {
			continue
		}

		text, err := attempt(replier.Name(), func() (string, error) {
			return replier.Reply(ctx, category, originalText)
		})
		if err == nil {
			return models.Reply{Text: strings.TrimSpace(text), Provider: replier.Name()}
		}

		s.logger.Warn("Reply generation failed, falling back",
			zap.String("provider", replier.Name()),
			zap.Error(err))
	}

	return TemplateReply(category)
}

// Providers describes every registered replier plus the template fallback.
func (s *Suggester) Providers() []models.ProviderInfo {
	info := make([]models.ProviderInfo, 0, len(s.repliers)+1)
	for _, replier := range s.repliers {
		info = append(info, models.ProviderInfo{
			Name:       replier.Name(),
			Model:      replier.Model(),
			Configured: replier.Configured(),
		})
	}
	return append(info, models.ProviderInfo{
		Name:       models.ReplyByTemplate,
		Configured: true,
	})
}
