package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/attica-health/carebot/internal/api"
	"github.com/attica-health/carebot/internal/api/middleware"
	"github.com/attica-health/carebot/internal/domain"
	"github.com/attica-health/carebot/internal/service"
	"github.com/go-chi/chi/v5"
)

type KnowledgeService interface {
	CreateSource(ctx context.Context, input service.CreateSourceInput) (*domain.KnowledgeSource, error)
	DeleteSource(ctx context.Context, projectID, sourceID string) error
	ListSources(ctx context.Context, projectID string) ([]*domain.KnowledgeSource, error)
}

type KnowledgeHandler struct {
	svc KnowledgeService
}

func NewKnowledgeHandler(svc KnowledgeService) *KnowledgeHandler {
	return &KnowledgeHandler{svc: svc}
}

type CreateSourceRequest struct {
	Title string `json:"title"`
	URL   string `json:"url"`
	Text  string `json:"text"`
}

type SourceResponse struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	URL        string `json:"url,omitempty"`
	ChunkCount int    `json:"chunk_count"`
	CreatedAt  string `json:"created_at"`
	UpdatedAt  string `json:"updated_at"`
}

func sourceToResponse(s *domain.KnowledgeSource) *SourceResponse {
	return &SourceResponse{
		ID:         s.ID,
		Title:      s.Title,
		URL:        s.URL,
		ChunkCount: s.ChunkCount,
		CreatedAt:  s.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:  s.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

func (h *KnowledgeHandler) Create(w http.ResponseWriter, r *http.Request) {
	projectID := middleware.GetProjectID(r.Context())
	if projectID == "" {
		api.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req CreateSourceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Title == "" {
		api.Error(w, http.StatusBadRequest, "title is required")
		return
	}
	if req.Text == "" {
		api.Error(w, http.StatusBadRequest, "text is required")
		return
	}

	source, err := h.svc.CreateSource(r.Context(), service.CreateSourceInput{
		ProjectID: projectID,
		Title:     req.Title,
		URL:       req.URL,
		Text:      req.Text,
	})
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusCreated, sourceToResponse(source))
}

func (h *KnowledgeHandler) List(w http.ResponseWriter, r *http.Request) {
	projectID := middleware.GetProjectID(r.Context())
	if projectID == "" {
		api.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	sources, err := h.svc.ListSources(r.Context(), projectID)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	out := make([]*SourceResponse, 0, len(sources))
	for _, s := range sources {
		out = append(out, sourceToResponse(s))
	}
	api.Success(w, http.StatusOK, out)
}

func (h *KnowledgeHandler) Delete(w http.ResponseWriter, r *http.Request) {
	projectID := middleware.GetProjectID(r.Context())
	if projectID == "" {
		api.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	sourceID := chi.URLParam(r, "sourceID")
	if sourceID == "" {
		api.Error(w, http.StatusBadRequest, "source ID is required")
		return
	}

	if err := h.svc.DeleteSource(r.Context(), projectID, sourceID); err != nil {
		api.HandleError(w, err)
		return
	}

	api.JSON(w, http.StatusNoContent, nil)
}
