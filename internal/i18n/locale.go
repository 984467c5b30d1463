// Package i18n holds the supported locales, the localized system texts and
// the script-based reply language detector.
package i18n

import "strings"

// Locale is a supported response language.
type Locale string

const (
	LocaleUK Locale = "uk"
	LocaleRU Locale = "ru"
	LocaleEN Locale = "en"
)

// SupportedLocales lists every locale the assistant can answer in.
var SupportedLocales = []Locale{LocaleUK, LocaleRU, LocaleEN}

// IsLocale reports whether the value is a supported locale.
func IsLocale(s string) bool {
	switch Locale(s) {
	case LocaleUK, LocaleRU, LocaleEN:
		return true
	}
	return false
}

func normalizeCandidate(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func matchLocale(raw string) (Locale, bool) {
	switch {
	case strings.HasPrefix(raw, "uk"), raw == "ua":
		return LocaleUK, true
	case strings.HasPrefix(raw, "ru"):
		return LocaleRU, true
	case strings.HasPrefix(raw, "en"):
		return LocaleEN, true
	}
	return "", false
}

// NormalizeLocale maps free-form locale inputs ("ru-RU", "ua", "EN") to a
// supported locale, consulting the fallback before the ultimate default.
func NormalizeLocale(input, fallback string) Locale {
	if loc, ok := matchLocale(normalizeCandidate(input)); ok {
		return loc
	}
	if loc, ok := matchLocale(normalizeCandidate(fallback)); ok {
		return loc
	}
	return LocaleUK
}
