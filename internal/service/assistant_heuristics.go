package service

import (
	"strings"
	"unicode"

	"github.com/attica-health/carebot/internal/i18n"
)

const (
	kbReplyMaxChars    = 520
	shortPromptMaxWords = 6
)

// HasLetters reports whether the message contains at least one alphabetic
// character in any script.
func HasLetters(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) {
			return true
		}
	}
	return false
}

// IsSmokeTestMessage detects health-check probes sent through the widget:
// a message carrying both a "smoke" and a "test" token, in either language.
func IsSmokeTestMessage(message string) bool {
	m := strings.ToLower(message)
	if !strings.Contains(m, "smoke") && !strings.Contains(m, "смоук") {
		return false
	}
	return strings.Contains(m, "test") || strings.Contains(m, "тест")
}

var greetingPhrases = []string{
	"hello", "hi", "hey", "thanks", "thank you", "ok", "okay",
	"привет", "здравствуйте", "добрый день", "доброе утро", "добрый вечер",
	"спасибо", "окей", "ок",
	"привіт", "вітаю", "доброго дня", "добрий день", "дякую",
}

var questionLeads = []string{
	"что", "как", "почему", "зачем", "когда", "где", "какой", "какая",
	"какие", "сколько", "можно", "нужно", "стоит", "правда",
	"що", "як", "чому", "навіщо", "коли", "де", "який", "яка", "які",
	"скільки", "чи",
	"what", "how", "why", "when", "where", "which", "who", "can", "could",
	"should", "is", "are", "do", "does",
}

func isGreeting(m string) bool {
	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsNumber(r) || unicode.IsSpace(r) {
			return r
		}
		return ' '
	}, m)
	cleaned = strings.Join(strings.Fields(cleaned), " ")
	for _, g := range greetingPhrases {
		if cleaned == g || strings.HasPrefix(cleaned, g+" ") {
			return true
		}
	}
	return false
}

// IsExplicitQuestion reports whether the message clearly asks for an
// answer: a question mark, an interrogative lead word, or a short
// non-greeting prompt. Greetings and smoke probes never count.
func IsExplicitQuestion(message string) bool {
	m := strings.ToLower(strings.TrimSpace(message))
	if m == "" {
		return false
	}
	if strings.Contains(m, "?") {
		return true
	}
	if isGreeting(m) || IsSmokeTestMessage(m) {
		return false
	}

	first := m
	if idx := strings.IndexFunc(m, unicode.IsSpace); idx != -1 {
		first = m[:idx]
	}
	for _, lead := range questionLeads {
		if first == lead {
			return true
		}
	}

	// A short prompt that is not small talk is treated as an implicit
	// question ("курить при беременности").
	words := strings.Fields(m)
	return len(words) <= shortPromptMaxWords && len(TokenizeQuery(m)) > 0
}

// tokenStem trims up to three trailing runes off a token, keeping at least
// three, so inflected forms still match ("курить" -> "кур" -> "курение").
func tokenStem(token string) string {
	runes := []rune(token)
	keep := len(runes) - 3
	if keep < 3 {
		keep = 3
	}
	if keep >= len(runes) {
		return token
	}
	return string(runes[:keep])
}

func textMentionsToken(text, token string) bool {
	lower := strings.ToLower(text)
	if strings.Contains(lower, token) {
		return true
	}
	return strings.Contains(lower, tokenStem(token))
}

func textMentionsAnyToken(text string, tokens []string) bool {
	for _, t := range tokens {
		if textMentionsToken(text, t) {
			return true
		}
	}
	return false
}

// LooksIrrelevant reports whether a generated reply dodged an explicit
// question: none of the question's meaningful tokens appear in the reply,
// not even as a stem.
func LooksIrrelevant(message, reply string) bool {
	if !IsExplicitQuestion(message) {
		return false
	}
	tokens := TokenizeQuery(message)
	if len(tokens) == 0 {
		return false
	}
	return !textMentionsAnyToken(reply, tokens)
}

// excerptBody strips the "[#1] Title (url)" head line off the first excerpt
// block.
func excerptBody(excerpts string) string {
	block := excerpts
	if idx := strings.Index(block, excerptDelimiter); idx != -1 {
		block = block[:idx]
	}
	if idx := strings.Index(block, "\n"); idx != -1 && strings.HasPrefix(block, "[#") {
		block = block[idx+1:]
	}
	return strings.TrimSpace(block)
}

func firstSentences(text string, n int) string {
	var out strings.Builder
	count := 0
	for _, r := range text {
		out.WriteRune(r)
		if r == '.' || r == '!' || r == '?' {
			count++
			if count >= n {
				break
			}
		}
	}
	return strings.TrimSpace(out.String())
}

func truncateRunes(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return strings.TrimSpace(string(runes[:max-1])) + "…"
}

// BuildKBReply synthesizes a deterministic answer from the top retrieval
// excerpt: the first sentence or two, truncated, and anchored to the query
// with a localized lead-in when the excerpt never mentions a query token.
func BuildKBReply(excerpts, query string, locale i18n.Locale) string {
	body := excerptBody(excerpts)
	if body == "" {
		return ""
	}

	candidate := firstSentences(body, 2)
	if candidate == "" {
		candidate = body
	}
	candidate = truncateRunes(candidate, kbReplyMaxChars)

	if !textMentionsAnyToken(candidate, TokenizeQuery(query)) {
		candidate = i18n.Text(i18n.AboutYourQuestion, locale) + " " + candidate
	}
	return candidate
}
