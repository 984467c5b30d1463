package domain

// SafetyLevel is the tenant-facing risk tier attached to a reply.
type SafetyLevel string

const (
	SafetyNormal  SafetyLevel = "normal"
	SafetyCaution SafetyLevel = "caution"
	SafetyUrgent  SafetyLevel = "urgent"
)

func (l SafetyLevel) rank() int {
	switch l {
	case SafetyUrgent:
		return 2
	case SafetyCaution:
		return 1
	default:
		return 0
	}
}

// IsValidSafetyLevel checks if a SafetyLevel is one of the known tiers.
func IsValidSafetyLevel(l SafetyLevel) bool {
	switch l {
	case SafetyNormal, SafetyCaution, SafetyUrgent:
		return true
	}
	return false
}

// MaxSafety returns the higher of two safety levels (normal < caution < urgent).
func MaxSafety(a, b SafetyLevel) SafetyLevel {
	if a.rank() >= b.rank() {
		return a
	}
	return b
}

// TriageResult is the heuristic safety classification of a user message.
type TriageResult struct {
	Level    SafetyLevel
	Warnings []string
}

// Citation is a de-duplicated, display-ready reference to a retrieved chunk.
// Two citations are duplicates iff (SourceID, Snippet) match exactly.
type Citation struct {
	SourceID string `json:"source_id"`
	Title    string `json:"title"`
	Snippet  string `json:"snippet"`
	URL      string `json:"url,omitempty"`
}

// ChatRole is a message author in the conversation history.
type ChatRole string

const (
	RoleSystem    ChatRole = "system"
	RoleUser      ChatRole = "user"
	RoleAssistant ChatRole = "assistant"
)

// ChatMessage is one turn of caller-provided history.
type ChatMessage struct {
	Role    ChatRole `json:"role"`
	Content string   `json:"content"`
}

// ChatResponse is the assistant's output contract. Reply always carries the
// tenant disclaimer as a trailing paragraph, exactly once.
type ChatResponse struct {
	Reply       string      `json:"reply"`
	Warnings    []string    `json:"warnings"`
	SafetyLevel SafetyLevel `json:"safetyLevel"`
	Sources     []Citation  `json:"sources"`
}

// DedupCitations removes duplicate citations, keeping first-seen order.
func DedupCitations(citations []Citation) []Citation {
	if len(citations) == 0 {
		return []Citation{}
	}
	type key struct{ sourceID, snippet string }
	seen := make(map[key]struct{}, len(citations))
	out := make([]Citation, 0, len(citations))
	for _, c := range citations {
		k := key{c.SourceID, c.Snippet}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, c)
	}
	return out
}

// MergeWarnings unions two warning lists, dropping duplicates and empties
// while preserving order.
func MergeWarnings(a, b []string) []string {
	seen := make(map[string]struct{}, len(a)+len(b))
	out := make([]string, 0, len(a)+len(b))
	for _, w := range append(append([]string{}, a...), b...) {
		if w == "" {
			continue
		}
		if _, ok := seen[w]; ok {
			continue
		}
		seen[w] = struct{}{}
		out = append(out, w)
	}
	return out
}
