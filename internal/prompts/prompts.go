// Package prompts builds the chat prompts shared by every generative backend.
package prompts

import (
	"fmt"
	"strings"

	"email-triage/internal/models"
)

// MaxInputChars is the number of characters of email text sent to any remote model.
const MaxInputChars = 4000

// ClassifySystemInstruction is the system message for classification requests.
const ClassifySystemInstruction = "Você classifica e-mails de maneira confiável e concisa."

// ReplySystemInstruction is the system message for reply generation.
const ReplySystemInstruction = "Você escreve respostas de e-mail curtas, claras, empáticas e profissionais em PT-BR."

// Truncate returns at most limit characters (runes) of text.
func Truncate(text string, limit int) string {
	if limit <= 0 {
		return ""
	}
	count := 0
	for i := range text {
		if count == limit {
			return text[:i]
		}
		count++
	}
	return text
}

// BuildClassifyPrompt asks for a strict JSON object with category and confidence.
func BuildClassifyPrompt(text string) string {
	return fmt.Sprintf(`
Você é um classificador. Responda APENAS em JSON.
Categorias possíveis: %s.
Classifique o e-mail abaixo como "%s" ou "%s" e forneça um confidence entre 0 e 1.

Email:
"""
%s
"""

Formato de saída (JSON): {"category": "%s|%s", "confidence": 0.0}
`,
		candidateList(),
		models.CategoryProductive, models.CategoryUnproductive,
		Truncate(text, MaxInputChars),
		models.CategoryProductive, models.CategoryUnproductive,
	)
}

// BuildReplyPrompt embeds the category and the original (not normalized) email.
func BuildReplyPrompt(category, originalText string) string {
	return fmt.Sprintf(`
Contexto: O e-mail foi classificado como %s.
Escreva uma resposta de até 6 linhas, objetiva. Se for Produtivo, solicite informações mínimas necessárias,
cite anexos se houver menção e proponha próximo passo. Se for Improdutivo, responda cordialmente e encerre.
E-mail original (resuma e responda):

"""
%s
"""
`, category, Truncate(originalText, MaxInputChars))
}

// StripCodeFence removes a surrounding ```json ... ``` block, if any.
func StripCodeFence(content string) string {
	clean := strings.TrimSpace(content)
	clean = strings.TrimPrefix(clean, "```json")
	clean = strings.TrimPrefix(clean, "```")
	clean = strings.TrimSuffix(clean, "```")
	return strings.TrimSpace(clean)
}

func candidateList() string {
	quoted := make([]string, len(models.Candidates))
	for i, c := range models.Candidates {
		quoted[i] = "'" + c + "'"
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}
