package i18n

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeLocale(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		fallback string
		expected Locale
	}{
		{"ExactRU", "ru", "", LocaleRU},
		{"RegionRU", "ru-RU", "", LocaleRU},
		{"LegacyUA", "ua", "", LocaleUK},
		{"ExactUK", "uk", "", LocaleUK},
		{"UpperEN", "EN", "", LocaleEN},
		{"RegionEN", "en-GB", "", LocaleEN},
		{"Whitespace", "  ru  ", "", LocaleRU},
		{"UnknownUsesFallback", "de", "en", LocaleEN},
		{"UnknownFallbackUA", "de", "ua", LocaleUK},
		{"BothUnknown", "de", "fr", LocaleUK},
		{"EmptyEverything", "", "", LocaleUK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeLocale(tt.input, tt.fallback))
		})
	}
}

func TestIsLocale(t *testing.T) {
	assert.True(t, IsLocale("ru"))
	assert.True(t, IsLocale("uk"))
	assert.True(t, IsLocale("en"))
	assert.False(t, IsLocale("ua"))
	assert.False(t, IsLocale(""))
}

func TestTextFallsBackToUkrainian(t *testing.T) {
	assert.Equal(t, Disclaimer[LocaleUK], Text(Disclaimer, Locale("de")))
	assert.Equal(t, Disclaimer[LocaleEN], Text(Disclaimer, LocaleEN))
}
