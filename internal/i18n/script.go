package i18n

import "strings"

// Script is a writing system detected in a text.
type Script string

const (
	ScriptLatin    Script = "latin"
	ScriptCyrillic Script = "cyrillic"
	ScriptUnknown  Script = "unknown"
)

// Letters that exist in Ukrainian Cyrillic but not Russian, and vice versa.
// Used to split the shared Cyrillic script into the two candidate locales.
const (
	ukrainianOnlyLetters = "іїєґ"
	russianOnlyLetters   = "ыэъё"
)

func isLatinLetter(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

func isCyrillicLetter(r rune) bool {
	// U+0400..U+04FF covers Russian and Ukrainian alphabets including Ё/ё
	// (U+0401/U+0451) and the Ukrainian І/Ї/Є/Ґ letters.
	return r >= 0x0400 && r <= 0x04FF
}

// DetectScript returns the dominant script of the text by letter count.
func DetectScript(text string) Script {
	var latin, cyrillic int
	for _, r := range text {
		switch {
		case isLatinLetter(r):
			latin++
		case isCyrillicLetter(r):
			cyrillic++
		}
	}
	switch {
	case latin == 0 && cyrillic == 0:
		return ScriptUnknown
	case cyrillic > latin:
		return ScriptCyrillic
	default:
		return ScriptLatin
	}
}

// DetectReplyLocale guesses the language of a generated reply from its
// dominant script. Cyrillic text is attributed to Ukrainian or Russian by
// counting the letters unique to each alphabet; a tie (no distinctive
// letters at all) keeps the requested locale to avoid a spurious retry.
func DetectReplyLocale(text string, requested Locale) Locale {
	switch DetectScript(text) {
	case ScriptLatin:
		return LocaleEN
	case ScriptCyrillic:
		lower := strings.ToLower(text)
		var uk, ru int
		for _, r := range lower {
			if strings.ContainsRune(ukrainianOnlyLetters, r) {
				uk++
			} else if strings.ContainsRune(russianOnlyLetters, r) {
				ru++
			}
		}
		switch {
		case uk > ru:
			return LocaleUK
		case ru > uk:
			return LocaleRU
		case requested == LocaleUK || requested == LocaleRU:
			return requested
		default:
			return LocaleRU
		}
	default:
		return requested
	}
}

// MatchesLocale reports whether the reply's detected language agrees with
// the requested locale. Texts with no letters never count as a mismatch.
func MatchesLocale(text string, requested Locale) bool {
	if DetectScript(text) == ScriptUnknown {
		return true
	}
	return DetectReplyLocale(text, requested) == requested
}
