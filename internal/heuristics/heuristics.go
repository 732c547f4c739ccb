// Package heuristics is the keyword-scored classifier used when no remote
// backend is configured or all of them failed.
package heuristics

import (
	"math"
	"strings"

	"email-triage/internal/models"
)

const (
	productiveWeight = 1.0
	noisePenalty     = 0.3
	threshold        = 0.5

	baseConfidence = 0.55
	maxConfidence  = 0.95
)

var productiveKeywords = []string{
	"suporte", "erro", "bug", "falha", "problema", "nao consigo",
	"acesso", "senha", "login", "urgente", "prazo", "protocolo", "ticket",
	"atualizacao", "andamento", "status", "orcamento", "financeiro",
	"anexo", "documento", "fatura", "nota fiscal", "nf", "proposta",
}

var noiseKeywords = []string{
	"obrigado", "agradeco", "bom dia", "boa tarde", "boa noite",
	"feliz", "parabens", "natal", "ano novo", "att", "atenciosamente",
}

// Score returns the keyword score of text. Keywords match only as
// space-delimited words: "suporte," does not count.
func Score(text string) float64 {
	padded := " " + strings.ToLower(text) + " "

	score := 0.0
	for _, k := range productiveKeywords {
		if strings.Contains(padded, " "+k+" ") {
			score += productiveWeight
		}
	}
	for _, k := range noiseKeywords {
		if strings.Contains(padded, " "+k+" ") {
			score -= noisePenalty
		}
	}
	return score
}

// Classify never fails.
func Classify(text string) models.Classification {
	score := Score(text)

	category := models.CategoryUnproductive
	if score >= threshold {
		category = models.CategoryProductive
	}

	confidence := math.Min(maxConfidence, math.Max(baseConfidence, baseConfidence+score/10.0))

	return models.Classification{
		Category:     category,
		Confidence:   math.Round(confidence*1000) / 1000,
		ClassifiedBy: models.ClassifiedByHeuristics,
	}
}
