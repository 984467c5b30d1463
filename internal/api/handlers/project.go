package handlers

import (
	"net/http"

	"github.com/attica-health/carebot/internal/api"
	"github.com/attica-health/carebot/internal/api/middleware"
	"github.com/attica-health/carebot/internal/i18n"
)

type ProjectHandler struct{}

func NewProjectHandler() *ProjectHandler {
	return &ProjectHandler{}
}

// PublicConfigResponse is what the embeddable widget needs to render
// itself: locale, disclaimer, nothing sensitive.
type PublicConfigResponse struct {
	Name          string `json:"name"`
	LocaleDefault string `json:"locale_default"`
	Disclaimer    string `json:"disclaimer"`
}

// PublicConfig returns the widget bootstrap configuration for the
// authenticated project.
func (h *ProjectHandler) PublicConfig(w http.ResponseWriter, r *http.Request) {
	project := middleware.GetProject(r.Context())
	if project == nil {
		api.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	locale := i18n.NormalizeLocale("", project.LocaleDefault)
	api.Success(w, http.StatusOK, PublicConfigResponse{
		Name:          project.Name,
		LocaleDefault: string(locale),
		Disclaimer:    i18n.ResolveDisclaimer(project.DisclaimerTemplate, locale),
	})
}
