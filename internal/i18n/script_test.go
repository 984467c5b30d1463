package i18n

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetectScript(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		expected Script
	}{
		{"English", "Drinking coffee during pregnancy is fine in moderation.", ScriptLatin},
		{"Russian", "Кофе при беременности можно в умеренном количестве.", ScriptCyrillic},
		{"Ukrainian", "Каву під час вагітності можна помірно.", ScriptCyrillic},
		{"MixedMostlyCyrillic", "Кофе (coffee) можно пить умеренно", ScriptCyrillic},
		{"NoLetters", "12345 !!! ???", ScriptUnknown},
		{"Empty", "", ScriptUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, DetectScript(tt.text))
		})
	}
}

func TestDetectReplyLocale(t *testing.T) {
	tests := []struct {
		name      string
		text      string
		requested Locale
		expected  Locale
	}{
		{"LatinIsEnglish", "You can drink coffee in moderation.", LocaleRU, LocaleEN},
		{"RussianMarkers", "Это ответ с буквами ы и э.", LocaleEN, LocaleRU},
		{"UkrainianMarkers", "Це відповідь з літерами і та ї.", LocaleEN, LocaleUK},
		{"AmbiguousCyrillicKeepsRequestedRU", "нова проба слова", LocaleRU, LocaleRU},
		{"AmbiguousCyrillicKeepsRequestedUK", "нова проба слова", LocaleUK, LocaleUK},
		{"AmbiguousCyrillicForEnglishRequestDefaultsRU", "нова проба слова", LocaleEN, LocaleRU},
		{"NoLettersKeepsRequested", "42", LocaleEN, LocaleEN},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, DetectReplyLocale(tt.text, tt.requested))
		})
	}
}

func TestMatchesLocale(t *testing.T) {
	assert.True(t, MatchesLocale("Plain English answer.", LocaleEN))
	assert.False(t, MatchesLocale("Ответ по-русски, с буквой ы.", LocaleEN))
	assert.False(t, MatchesLocale("English answer instead.", LocaleRU))
	assert.True(t, MatchesLocale("Відповідь українською з ї.", LocaleUK))
	assert.False(t, MatchesLocale("Ответ русский, элемент ответа.", LocaleUK))

	// No letters at all is never a mismatch.
	assert.True(t, MatchesLocale("1234", LocaleRU))
}
