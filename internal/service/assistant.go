package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/attica-health/carebot/internal/domain"
	"github.com/attica-health/carebot/internal/i18n"
	"github.com/attica-health/carebot/internal/telemetry"
)

const maxHistoryTurns = 20

// ChatProvider is the generation backend the assistant talks to.
// A nil *openai.Client satisfies it as "not configured".
type ChatProvider interface {
	Configured() bool
	ChatJSON(ctx context.Context, messages []domain.ChatMessage) (json.RawMessage, error)
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// Retriever looks up knowledge base excerpts for a question.
type Retriever interface {
	Retrieve(ctx context.Context, projectID, query string, queryEmbedding []float32, limit int) *RetrievalResult
}

// ChatRequest is a single widget question with optional page context and
// prior conversation turns.
type ChatRequest struct {
	Message string
	Locale  string
	Context string
	History []domain.ChatMessage
}

// AssistantService runs the chat pipeline: guards, triage, retrieval,
// generation, and the bounded locale/relevance repair sequence.
type AssistantService struct {
	provider   ChatProvider
	retrieval  Retriever
	production bool
}

func NewAssistantService(provider ChatProvider, retrieval Retriever, production bool) *AssistantService {
	return &AssistantService{
		provider:   provider,
		retrieval:  retrieval,
		production: production,
	}
}

// modelReply is the tolerant shape the provider must return. Only reply is
// required; everything else gets a default.
type modelReply struct {
	Reply       string             `json:"reply"`
	Warnings    []string           `json:"warnings"`
	SafetyLevel domain.SafetyLevel `json:"safetyLevel"`
}

func parseModelReply(raw json.RawMessage) (*modelReply, error) {
	var parsed modelReply
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, domain.ErrContractViolation
	}
	parsed.Reply = strings.TrimSpace(parsed.Reply)
	if parsed.Reply == "" {
		return nil, domain.ErrContractViolation
	}
	if !domain.IsValidSafetyLevel(parsed.SafetyLevel) {
		parsed.SafetyLevel = domain.SafetyNormal
	}
	return &parsed, nil
}

// Chat answers a user message for a project. Provider errors on the
// mandatory first call are returned to the caller; every other failure
// degrades to a deterministic, disclaimer-bearing response.
func (s *AssistantService) Chat(ctx context.Context, project *domain.Project, req ChatRequest) (*domain.ChatResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "assistant.chat", telemetry.SpanAttributes{
		ProjectID: project.ID,
		Operation: "chat",
	})
	defer span.End()

	locale := i18n.NormalizeLocale(req.Locale, project.LocaleDefault)
	disclaimer := i18n.ResolveDisclaimer(project.DisclaimerTemplate, locale)

	if !HasLetters(req.Message) {
		return cannedResponse(i18n.Text(i18n.AskQuestionPrompt, locale), disclaimer), nil
	}
	if !s.production && IsSmokeTestMessage(req.Message) {
		return cannedResponse(i18n.Text(i18n.SmokeTestResponse, locale), disclaimer), nil
	}

	triage := TriageMessage(req.Message, locale)

	var queryEmbedding []float32
	if s.provider.Configured() {
		embedding, err := s.provider.EmbedQuery(ctx, req.Message)
		if err != nil {
			log.Printf("assistant: query embedding failed, continuing without it: %v", err)
		} else {
			queryEmbedding = embedding
		}
	}

	retrieved := s.retrieval.Retrieve(ctx, project.ID, req.Message, queryEmbedding, 0)
	citations := domain.DedupCitations(retrieved.Citations)

	if !s.provider.Configured() {
		return s.offlineResponse(req.Message, locale, disclaimer, triage, retrieved, citations), nil
	}

	systemPrompt := buildSystemPrompt(project, locale, disclaimer, retrieved.Excerpts, req.Context)
	messages := buildMessages(systemPrompt, req.Message, req.History)

	raw, err := s.provider.ChatJSON(ctx, messages)
	if err != nil {
		span.SetError(err)
		return nil, err
	}

	parsed, err := parseModelReply(raw)
	if err != nil {
		// Contract violations never retry.
		log.Printf("assistant: provider returned malformed payload for project %s", project.ID)
		resp := cannedResponse(i18n.Text(i18n.ErrorGeneric, locale), disclaimer)
		resp.SafetyLevel = triage.Level
		resp.Warnings = domain.MergeWarnings(triage.Warnings, nil)
		resp.Sources = citations
		return resp, nil
	}

	parsed = s.repairLocale(ctx, parsed, messages, locale)
	parsed = s.repairRelevance(ctx, parsed, project, locale, disclaimer, req.Message)

	reply := parsed.Reply
	if LooksIrrelevant(req.Message, reply) {
		// A topically wrong answer is worse than a safe refusal.
		reply = ""
		if len(citations) > 0 {
			reply = BuildKBReply(retrieved.Excerpts, req.Message, locale)
			log.Printf("assistant: substituted knowledge base answer for off-topic reply (project %s)", project.ID)
		}
		if reply == "" {
			reply = i18n.Text(i18n.RephrasePrompt, locale)
		}
	}

	return &domain.ChatResponse{
		Reply:       i18n.EnsureDisclaimer(reply, disclaimer),
		Warnings:    domain.MergeWarnings(triage.Warnings, parsed.Warnings),
		SafetyLevel: domain.MaxSafety(triage.Level, parsed.SafetyLevel),
		Sources:     citations,
	}, nil
}

// repairLocale retries once when the reply's script does not match the
// requested locale. Retry failures keep the original reply.
func (s *AssistantService) repairLocale(ctx context.Context, parsed *modelReply, messages []domain.ChatMessage, locale i18n.Locale) *modelReply {
	if i18n.MatchesLocale(parsed.Reply, locale) {
		return parsed
	}

	retryMessages := make([]domain.ChatMessage, len(messages))
	copy(retryMessages, messages)
	retryMessages[0].Content += fmt.Sprintf("\n\nAnswer ONLY in %s. Do not use any other language.", languageName(locale))

	raw, err := s.provider.ChatJSON(ctx, retryMessages)
	if err != nil {
		log.Printf("assistant: locale repair call failed, keeping original reply: %v", err)
		return parsed
	}
	retried, err := parseModelReply(raw)
	if err != nil || !i18n.MatchesLocale(retried.Reply, locale) {
		return parsed
	}
	return retried
}

// repairRelevance retries once, with grounding and history stripped, when
// the reply ignores an explicit question. Retry failures keep the original.
func (s *AssistantService) repairRelevance(ctx context.Context, parsed *modelReply, project *domain.Project, locale i18n.Locale, disclaimer, message string) *modelReply {
	if !LooksIrrelevant(message, parsed.Reply) {
		return parsed
	}

	barePrompt := buildSystemPrompt(project, locale, disclaimer, "", "") +
		"\n\nAnswer the user's literal question. Do not change the topic."
	retryMessages := []domain.ChatMessage{
		{Role: domain.RoleSystem, Content: barePrompt},
		{Role: domain.RoleUser, Content: message},
	}

	raw, err := s.provider.ChatJSON(ctx, retryMessages)
	if err != nil {
		log.Printf("assistant: relevance repair call failed, keeping original reply: %v", err)
		return parsed
	}
	retried, err := parseModelReply(raw)
	if err != nil || LooksIrrelevant(message, retried.Reply) {
		return parsed
	}
	return retried
}

func (s *AssistantService) offlineResponse(message string, locale i18n.Locale, disclaimer string, triage domain.TriageResult, retrieved *RetrievalResult, citations []domain.Citation) *domain.ChatResponse {
	reply := ""
	if len(citations) > 0 {
		reply = BuildKBReply(retrieved.Excerpts, message, locale)
	}
	if reply == "" {
		reply = i18n.Text(i18n.NoProvider, locale)
	}
	return &domain.ChatResponse{
		Reply:       i18n.EnsureDisclaimer(reply, disclaimer),
		Warnings:    domain.MergeWarnings(triage.Warnings, nil),
		SafetyLevel: triage.Level,
		Sources:     citations,
	}
}

func cannedResponse(reply, disclaimer string) *domain.ChatResponse {
	return &domain.ChatResponse{
		Reply:       i18n.EnsureDisclaimer(reply, disclaimer),
		Warnings:    []string{},
		SafetyLevel: domain.SafetyNormal,
		Sources:     []domain.Citation{},
	}
}

func languageName(locale i18n.Locale) string {
	switch locale {
	case i18n.LocaleRU:
		return "Russian"
	case i18n.LocaleEN:
		return "English"
	default:
		return "Ukrainian"
	}
}

const defaultPersona = "You are a careful assistant for expecting parents. You answer questions about pregnancy, childbirth and early parenthood in a calm, supportive tone."

func buildSystemPrompt(project *domain.Project, locale i18n.Locale, disclaimer, excerpts, pageContext string) string {
	var b strings.Builder

	persona := strings.TrimSpace(project.SystemPrompt)
	if persona == "" {
		persona = defaultPersona
	}
	b.WriteString(persona)

	fmt.Fprintf(&b, "\n\nAnswer in %s.", languageName(locale))

	b.WriteString("\n\nSafety rules:\n")
	b.WriteString("- Never diagnose a condition or prescribe medication dosages.\n")
	b.WriteString("- For red-flag symptoms (heavy bleeding, loss of consciousness, severe pain, trouble breathing) advise contacting a doctor or emergency services immediately.\n")
	b.WriteString("- When unsure, recommend consulting a healthcare professional.")

	if strings.TrimSpace(excerpts) != "" {
		b.WriteString("\n\nUse the following knowledge base excerpts when they are relevant:\n\n")
		b.WriteString(excerpts)
	} else {
		b.WriteString("\n\nNo knowledge base excerpts are available for this question.")
	}

	if strings.TrimSpace(pageContext) != "" {
		b.WriteString("\n\nAdditional context provided by the client page:\n")
		b.WriteString(strings.TrimSpace(pageContext))
	}

	b.WriteString("\n\nRespond with strict JSON of the shape ")
	b.WriteString(`{"reply": string, "warnings": string[], "safetyLevel": "normal"|"caution"|"urgent", "sources": []}. `)
	b.WriteString("Leave sources as an empty array; citations are attached by the server.")

	fmt.Fprintf(&b, "\n\nEnd the reply with this disclaimer: %s", disclaimer)

	return b.String()
}

func buildMessages(systemPrompt, message string, history []domain.ChatMessage) []domain.ChatMessage {
	if len(history) > maxHistoryTurns {
		history = history[len(history)-maxHistoryTurns:]
	}

	messages := make([]domain.ChatMessage, 0, len(history)+2)
	messages = append(messages, domain.ChatMessage{Role: domain.RoleSystem, Content: systemPrompt})
	for _, turn := range history {
		if turn.Role != domain.RoleUser && turn.Role != domain.RoleAssistant {
			continue
		}
		if strings.TrimSpace(turn.Content) == "" {
			continue
		}
		messages = append(messages, turn)
	}
	messages = append(messages, domain.ChatMessage{Role: domain.RoleUser, Content: message})
	return messages
}
