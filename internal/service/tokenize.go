package service

import (
	"strings"
	"unicode"
)

// queryStopWords mixes general function words with domain-generic terms
// that occur in nearly every knowledge chunk; scoring on them would make
// ranking non-discriminative.
var queryStopWords = map[string]struct{}{}

func init() {
	for _, w := range []string{
		// RU/UK function words
		"и", "в", "во", "на", "не", "что", "это", "как", "ли",
		"я", "мы", "вы", "он", "она", "они", "то", "а", "но", "или", "при",
		"мне", "меня", "нам", "вам", "себя", "его", "ее", "их", "чи", "що",
		"мені", "нас",
		"можно", "нужно", "нормально",
		// EN function words
		"the", "a", "an", "and", "or", "is", "are", "to", "in", "on",
		"for", "with", "can", "should",
		// Pregnancy-generic terms that drown out the real intent words
		"беременность", "беременности", "беременная", "беременной",
		"беременную", "беременным", "беременных",
		"вагітність", "вагітності", "вагітна", "вагітної", "вагітну",
		"вагітним", "вагітних",
		"триместр", "неделя", "недели", "недель",
		"срок", "сроке", "сроки",
	} {
		queryStopWords[w] = struct{}{}
	}
}

var quoteReplacer = strings.NewReplacer("«", " ", "»", " ", "“", " ", "”", " ", "„", " ")

// TokenizeQuery splits a query into lowercase word tokens of at least three
// letters, dropping stop words. Quotes are stripped and "ё" folded to "е"
// for stable matching across UI inputs.
func TokenizeQuery(q string) []string {
	normalized := strings.ReplaceAll(strings.ToLower(quoteReplacer.Replace(q)), "ё", "е")

	fields := strings.FieldsFunc(normalized, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})

	tokens := make([]string, 0, len(fields))
	for _, t := range fields {
		if len([]rune(t)) < 3 {
			continue
		}
		if _, stop := queryStopWords[t]; stop {
			continue
		}
		tokens = append(tokens, t)
	}
	return tokens
}
