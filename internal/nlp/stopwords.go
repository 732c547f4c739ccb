package nlp

import "strings"

// Accented entries never match after transliteration; the list is kept as is.
const portugueseStopwords = `a à após ao aos aoonde aquela aquelas aquele aqueles aquilo as até com como contra da das de dela delas dele deles depois desde do dos e é em enquanto entre era eram essa essas esse esses esta estava estavam estão eu faz fazem fizeram foi foram fora haja há isso isto já la lá lhe lhes mais mas me mesmo meu meus minha minhas na nas não nem no nos nós o os ou para pela pelas pelo pelos por porque porém posso primeira primeiro quais qual quando que quem se sem sempre sendo seu seus sob sobre sua suas também tão te tem têm tendo então tua tuas um uma umas uns você vocês`

var stopwords = func() map[string]struct{} {
	words := strings.Fields(portugueseStopwords)
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}()

// IsStopword reports whether the lowercase form of token is a Portuguese stopword.
func IsStopword(token string) bool {
	_, ok := stopwords[strings.ToLower(token)]
	return ok
}
