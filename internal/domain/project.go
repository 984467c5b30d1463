package domain

import "time"

// Project is a tenant of the assistant. Its public key scopes every
// widget/API request; persona, disclaimer and origins are per-tenant.
type Project struct {
	ID                 string
	Name               string
	PublicKey          string
	AllowedOrigins     []string
	LocaleDefault      string
	DisclaimerTemplate string
	SystemPrompt       string
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// ValidateProject validates a Project instance
func ValidateProject(p *Project) error {
	if p == nil {
		return NewDomainError(ErrCodeValidation, "project cannot be nil")
	}
	if p.ID == "" {
		return NewDomainError(ErrCodeValidation, "project ID is required")
	}
	if p.Name == "" {
		return NewDomainError(ErrCodeValidation, "project Name is required")
	}
	if p.PublicKey == "" {
		return NewDomainError(ErrCodeValidation, "project PublicKey is required")
	}
	return nil
}

// IsOriginAllowed reports whether a browser origin may call project-scoped
// endpoints. An empty allowlist is permissive outside production.
func (p *Project) IsOriginAllowed(origin string, production bool) bool {
	if origin == "" {
		return true
	}
	if len(p.AllowedOrigins) == 0 {
		return !production
	}
	for _, allowed := range p.AllowedOrigins {
		if allowed == origin {
			return true
		}
	}
	return false
}
