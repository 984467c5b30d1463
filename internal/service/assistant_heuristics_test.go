package service

import (
	"strings"
	"testing"

	"github.com/attica-health/carebot/internal/i18n"
	"github.com/stretchr/testify/assert"
)

func TestHasLetters(t *testing.T) {
	assert.True(t, HasLetters("привет"))
	assert.True(t, HasLetters("hello"))
	assert.True(t, HasLetters("12 недель"))
	assert.False(t, HasLetters("12345"))
	assert.False(t, HasLetters("?!... 42"))
	assert.False(t, HasLetters(""))
}

func TestIsSmokeTestMessage(t *testing.T) {
	assert.True(t, IsSmokeTestMessage("smoke test"))
	assert.True(t, IsSmokeTestMessage("Тест smoke"))
	assert.True(t, IsSmokeTestMessage("SMOKE TEST please"))
	assert.False(t, IsSmokeTestMessage("hello world"))
	assert.False(t, IsSmokeTestMessage("тест"))
	assert.False(t, IsSmokeTestMessage("smoke"))
}

func TestIsExplicitQuestion(t *testing.T) {
	tests := []struct {
		message string
		want    bool
	}{
		{"Можно ли кофе?", true},
		{"как справиться с токсикозом", true},
		{"what should I eat", true},
		{"курение при беременности", true},
		{"привет", false},
		{"Здравствуйте, добрый день", false},
		{"спасибо", false},
		{"тест smoke", false},
		{"", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, IsExplicitQuestion(tt.message), "message %q", tt.message)
	}
}

func TestLooksIrrelevant(t *testing.T) {
	// Explicit question whose tokens never appear in the reply.
	assert.True(t, LooksIrrelevant("Можно ли пить кофе?", "Берегите себя и больше гуляйте."))

	// Stem match: "кофе" appears inflected.
	assert.False(t, LooksIrrelevant("Можно ли пить кофе?", "Кофеин стоит ограничить."))

	// Not a question, relevance is never enforced.
	assert.False(t, LooksIrrelevant("привет", "Здравствуйте! Чем помочь?"))

	// No meaningful tokens left after stop-word filtering.
	assert.False(t, LooksIrrelevant("как и что?", "Любой ответ подходит."))
}

func TestBuildKBReplyTakesLeadingSentences(t *testing.T) {
	excerpts := "[#1] Питание (https://example.com)\nКофе при беременности лучше ограничить. Одна чашка в день допустима. Третье предложение лишнее."

	reply := BuildKBReply(excerpts, "можно кофе?", i18n.LocaleRU)

	assert.Contains(t, reply, "Кофе при беременности лучше ограничить.")
	assert.Contains(t, reply, "Одна чашка в день допустима.")
	assert.NotContains(t, reply, "Третье предложение")
}

func TestBuildKBReplyStripsExcerptHead(t *testing.T) {
	excerpts := "[#1] Питание\nКофе лучше ограничить." + excerptDelimiter + "[#2] Другое\nНе должно попасть."

	reply := BuildKBReply(excerpts, "кофе", i18n.LocaleRU)

	assert.NotContains(t, reply, "[#1]")
	assert.NotContains(t, reply, "Не должно попасть")
}

func TestBuildKBReplyAnchorsUnrelatedExcerpt(t *testing.T) {
	excerpts := "[#1] Сон\nСпать лучше на боку."

	reply := BuildKBReply(excerpts, "можно кофе?", i18n.LocaleRU)

	lead := i18n.Text(i18n.AboutYourQuestion, i18n.LocaleRU)
	assert.True(t, strings.HasPrefix(reply, lead), "reply %q should start with lead-in", reply)
}

func TestBuildKBReplyTruncatesLongSentence(t *testing.T) {
	long := strings.Repeat("очень длинное предложение без точки ", 40)
	excerpts := "[#1] Тема\n" + long

	reply := BuildKBReply(excerpts, "предложение", i18n.LocaleRU)

	assert.LessOrEqual(t, len([]rune(reply)), kbReplyMaxChars)
	assert.True(t, strings.HasSuffix(reply, "…"))
}

func TestBuildKBReplyEmptyExcerpts(t *testing.T) {
	assert.Equal(t, "", BuildKBReply("", "кофе", i18n.LocaleRU))
}
