package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/attica-health/carebot/internal/api"
	"github.com/attica-health/carebot/internal/api/middleware"
	"github.com/attica-health/carebot/internal/domain"
	"github.com/attica-health/carebot/internal/service"
)

const (
	maxMessageChars = 4000
	maxHistoryItems = 50
)

type Assistant interface {
	Chat(ctx context.Context, project *domain.Project, req service.ChatRequest) (*domain.ChatResponse, error)
}

type ChatHandler struct {
	assistant Assistant
}

func NewChatHandler(assistant Assistant) *ChatHandler {
	return &ChatHandler{assistant: assistant}
}

type chatHistoryItem struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ChatRequest struct {
	Message string            `json:"message"`
	Locale  string            `json:"locale"`
	Context string            `json:"context"`
	History []chatHistoryItem `json:"history"`
}

// Chat answers a widget question for the authenticated project.
func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	project := middleware.GetProject(r.Context())
	if project == nil {
		api.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	message := strings.TrimSpace(req.Message)
	if message == "" {
		api.Error(w, http.StatusBadRequest, "message is required")
		return
	}
	if len([]rune(message)) > maxMessageChars {
		api.Error(w, http.StatusBadRequest, "message is too long")
		return
	}

	history := req.History
	if len(history) > maxHistoryItems {
		history = history[len(history)-maxHistoryItems:]
	}
	turns := make([]domain.ChatMessage, 0, len(history))
	for _, item := range history {
		role := domain.ChatRole(item.Role)
		if role != domain.RoleUser && role != domain.RoleAssistant {
			continue
		}
		turns = append(turns, domain.ChatMessage{Role: role, Content: item.Content})
	}

	resp, err := h.assistant.Chat(r.Context(), project, service.ChatRequest{
		Message: message,
		Locale:  req.Locale,
		Context: req.Context,
		History: turns,
	})
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.JSON(w, http.StatusOK, resp)
}
