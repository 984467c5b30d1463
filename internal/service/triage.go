package service

import (
	"strings"

	"github.com/attica-health/carebot/internal/domain"
	"github.com/attica-health/carebot/internal/i18n"
)

// Triage keyword tables are in the tenants' primary operating language.
// Matching is plain substring containment: this is a cheap heuristic to
// avoid missing obvious red flags, not a diagnosis and not NLP.
var urgentMarkers = []string{
	"сильное кровотечение",
	"обильное кровотечение",
	"кровотеч",
	"резкая боль",
	"сильная боль в животе",
	"потеря сознания",
	"судорог",
	"затрудненное дыхание",
	"трудно дышать",
	"боль в груди",
	"температура 39",
	"высокая температура",
	"воды отошли",
	"нет шевелений",
}

var cautionMarkers = []string{
	"мажет",
	"небольшое кровотечение",
	"головокружение",
	"давление",
	"отеки",
	"сильная тошнота",
	"рвота",
	"понос",
	"высокий сахар",
	"анализ",
}

// TriageMessage classifies a user message against the red-flag keyword
// tables. The locale only localizes the warning text, never the matching.
func TriageMessage(message string, locale i18n.Locale) domain.TriageResult {
	m := strings.ToLower(message)

	warning := i18n.Text(i18n.TriageWarning, locale)

	for _, marker := range urgentMarkers {
		if strings.Contains(m, marker) {
			return domain.TriageResult{Level: domain.SafetyUrgent, Warnings: []string{warning}}
		}
	}
	for _, marker := range cautionMarkers {
		if strings.Contains(m, marker) {
			return domain.TriageResult{Level: domain.SafetyCaution, Warnings: []string{warning}}
		}
	}
	return domain.TriageResult{Level: domain.SafetyNormal, Warnings: []string{}}
}
