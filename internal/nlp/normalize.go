// Package nlp prepares raw email text for classification.
package nlp

import (
	"strings"
	"unicode"

	"github.com/gosimple/unidecode"
)

// Result holds the cleaned text and the number of surviving tokens.
type Result struct {
	CleanText  string `json:"clean_text"`
	TokenCount int    `json:"tokens"`
}

// Normalize collapses whitespace, lowercases and transliterates to ASCII,
// tokenizes and drops stopwords. Empty input yields an empty Result.
func Normalize(text string) Result {
	if text == "" {
		return Result{}
	}

	collapsed := strings.Join(strings.Fields(text), " ")
	folded := FoldAccents(collapsed)

	tokens := Tokenize(folded)
	kept := tokens[:0]
	for _, tok := range tokens {
		if IsStopword(tok) {
			continue
		}
		kept = append(kept, tok)
	}

	return Result{
		CleanText:  strings.Join(kept, " "),
		TokenCount: len(kept),
	}
}

// FoldAccents lowercases text and transliterates it to base Latin characters
// ("não" becomes "nao"). Lowercasing again after transliteration keeps the
// output stable when a symbol expands to capitals (e.g. "€" to "EUR").
func FoldAccents(text string) string {
	return strings.ToLower(unidecode.Unidecode(strings.ToLower(text)))
}

// Tokenize returns maximal runs of letters, digits and the characters @ . _ -
func Tokenize(text string) []string {
	return strings.FieldsFunc(text, func(r rune) bool {
		return !isTokenRune(r)
	})
}

func isTokenRune(r rune) bool {
	switch r {
	case '@', '.', '_', '-':
		return true
	}
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}
