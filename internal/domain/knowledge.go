package domain

import "time"

// KnowledgeSource is one ingested document of a project's knowledge base.
// A source exclusively owns its chunks; deleting it cascades to them.
type KnowledgeSource struct {
	ID        string
	ProjectID string
	Title     string
	URL       string
	RawText   string
	CreatedAt time.Time
	UpdatedAt time.Time

	// ChunkCount is populated by listings, not stored on the row.
	ChunkCount int
}

// KnowledgeChunk is the unit of retrieval: a bounded slice of a source's
// text in original document order. Embedding is nil until backfilled.
type KnowledgeChunk struct {
	ID        string
	ProjectID string
	SourceID  string
	Ordinal   int
	Content   string
	Embedding []float32
	CreatedAt time.Time
}

// ValidateKnowledgeSource validates a KnowledgeSource instance
func ValidateKnowledgeSource(s *KnowledgeSource) error {
	if s == nil {
		return NewDomainError(ErrCodeValidation, "knowledge source cannot be nil")
	}
	if s.ID == "" {
		return NewDomainError(ErrCodeValidation, "knowledge source ID is required")
	}
	if s.ProjectID == "" {
		return NewDomainError(ErrCodeValidation, "knowledge source ProjectID is required")
	}
	if s.Title == "" {
		return NewDomainError(ErrCodeValidation, "knowledge source Title is required")
	}
	return nil
}
