package i18n

import (
	"regexp"
	"strings"
)

var disclaimerPlaceholder = regexp.MustCompile(`\{\{\s*disclaimer\s*\}\}`)

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// ResolveDisclaimer resolves the disclaimer text for a tenant.
//
// Precedence:
//  1. the project's disclaimer template (tenant/legal text)
//  2. the built-in locale disclaimer
//
// A template containing "{{disclaimer}}" has the placeholder replaced; any
// other template gets the built-in text appended as a separate paragraph.
// A template that equals one of the built-in disclaimers is treated as not
// customized, otherwise the disclaimer would be duplicated or end up in a
// mixed language.
func ResolveDisclaimer(template string, locale Locale) string {
	fallback := Text(Disclaimer, locale)

	tpl := strings.TrimSpace(template)
	if tpl == "" {
		return fallback
	}

	normalized := collapseSpace(tpl)
	for _, builtin := range Disclaimer {
		if collapseSpace(builtin) == normalized {
			return fallback
		}
	}

	if disclaimerPlaceholder.MatchString(tpl) {
		return strings.TrimSpace(disclaimerPlaceholder.ReplaceAllString(tpl, fallback))
	}

	return strings.TrimSpace(tpl + "\n\n" + fallback)
}

// EnsureDisclaimer appends the disclaimer to a reply as a trailing paragraph
// unless it is already present (case-insensitive containment).
func EnsureDisclaimer(reply, disclaimer string) string {
	r := strings.TrimSpace(reply)
	d := strings.TrimSpace(disclaimer)
	if d == "" {
		return r
	}
	if strings.Contains(strings.ToLower(r), strings.ToLower(d)) {
		return r
	}
	return r + "\n\n" + d
}
