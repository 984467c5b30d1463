package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMaxSafety(t *testing.T) {
	tests := []struct {
		name     string
		a, b     SafetyLevel
		expected SafetyLevel
	}{
		{"NormalNormal", SafetyNormal, SafetyNormal, SafetyNormal},
		{"NormalCaution", SafetyNormal, SafetyCaution, SafetyCaution},
		{"CautionNormal", SafetyCaution, SafetyNormal, SafetyCaution},
		{"CautionUrgent", SafetyCaution, SafetyUrgent, SafetyUrgent},
		{"UrgentNormal", SafetyUrgent, SafetyNormal, SafetyUrgent},
		{"UrgentUrgent", SafetyUrgent, SafetyUrgent, SafetyUrgent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, MaxSafety(tt.a, tt.b))
		})
	}
}

func TestMaxSafetyUnknownLevelRanksAsNormal(t *testing.T) {
	assert.Equal(t, SafetyCaution, MaxSafety(SafetyLevel("weird"), SafetyCaution))
}

func TestIsValidSafetyLevel(t *testing.T) {
	assert.True(t, IsValidSafetyLevel(SafetyNormal))
	assert.True(t, IsValidSafetyLevel(SafetyCaution))
	assert.True(t, IsValidSafetyLevel(SafetyUrgent))
	assert.False(t, IsValidSafetyLevel(SafetyLevel("panic")))
	assert.False(t, IsValidSafetyLevel(SafetyLevel("")))
}

func TestDedupCitations(t *testing.T) {
	in := []Citation{
		{SourceID: "s1", Title: "A", Snippet: "first"},
		{SourceID: "s1", Title: "A", Snippet: "first"},
		{SourceID: "s1", Title: "A", Snippet: "second"},
		{SourceID: "s2", Title: "B", Snippet: "first"},
	}

	out := DedupCitations(in)

	assert.Len(t, out, 3)
	assert.Equal(t, "s1", out[0].SourceID)
	assert.Equal(t, "second", out[1].Snippet)
	assert.Equal(t, "s2", out[2].SourceID)
}

func TestDedupCitationsEmpty(t *testing.T) {
	assert.Empty(t, DedupCitations(nil))
	assert.NotNil(t, DedupCitations(nil))
}

func TestMergeWarnings(t *testing.T) {
	merged := MergeWarnings(
		[]string{"see a doctor", ""},
		[]string{"see a doctor", "avoid alcohol"},
	)

	assert.Equal(t, []string{"see a doctor", "avoid alcohol"}, merged)
}

func TestMergeWarningsEmptyInputs(t *testing.T) {
	assert.Empty(t, MergeWarnings(nil, nil))
}
