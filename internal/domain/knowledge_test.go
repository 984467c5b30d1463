package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateKnowledgeSource(t *testing.T) {
	valid := &KnowledgeSource{
		ID:        "src-1",
		ProjectID: "proj-1",
		Title:     "Prenatal vitamins",
	}
	require.NoError(t, ValidateKnowledgeSource(valid))

	tests := []struct {
		name   string
		mutate func(*KnowledgeSource)
	}{
		{"MissingID", func(s *KnowledgeSource) { s.ID = "" }},
		{"MissingProjectID", func(s *KnowledgeSource) { s.ProjectID = "" }},
		{"MissingTitle", func(s *KnowledgeSource) { s.Title = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := *valid
			tt.mutate(&s)
			err := ValidateKnowledgeSource(&s)
			require.Error(t, err)
			domainErr, ok := err.(*DomainError)
			require.True(t, ok)
			assert.Equal(t, ErrCodeValidation, domainErr.Code)
		})
	}
}

func TestValidateKnowledgeSourceNil(t *testing.T) {
	assert.Error(t, ValidateKnowledgeSource(nil))
}

func TestProjectIsOriginAllowed(t *testing.T) {
	p := &Project{
		ID:        "p1",
		Name:      "demo",
		PublicKey: "pk_demo",
	}

	// Empty allowlist: permissive in development, denied in production.
	assert.True(t, p.IsOriginAllowed("https://example.com", false))
	assert.False(t, p.IsOriginAllowed("https://example.com", true))

	// No origin header (server-to-server) always passes.
	assert.True(t, p.IsOriginAllowed("", true))

	p.AllowedOrigins = []string{"https://clinic.example"}
	assert.True(t, p.IsOriginAllowed("https://clinic.example", true))
	assert.False(t, p.IsOriginAllowed("https://evil.example", false))
}
