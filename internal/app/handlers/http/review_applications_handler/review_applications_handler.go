package review_applications_handler

import (
	"net/http"

	applicationsService "github.com/tma-tanlov/backend/internal/domain/applications/service"
	"github.com/tma-tanlov/backend/internal/domain/auth"
	"github.com/tma-tanlov/backend/internal/domain/model"
	httpError "github.com/tma-tanlov/backend/pkg/http"
)

// ReviewApplicationsHandler отдаёт заявки на тип конкурса для комиссии
type ReviewApplicationsHandler struct {
	applicationService *applicationsService.ApplicationService
	jwtManager         *auth.Manager
}

// NewReviewApplicationsHandler создает новый экземпляр обработчика
func NewReviewApplicationsHandler(applicationService *applicationsService.ApplicationService, jwtManager *auth.Manager) *ReviewApplicationsHandler {
	return &ReviewApplicationsHandler{applicationService: applicationService, jwtManager: jwtManager}
}

// ServeHTTP метод для обработки запроса
func (h *ReviewApplicationsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	claims, err := h.jwtManager.FromRequest(r)
	if err != nil {
		httpError.DomainError(w, err)
		return
	}
	if claims.Role != model.RoleAdmin && claims.Role != model.RoleDekan && claims.Role != model.RoleKichikAdmin {
		httpError.ErrorResponse(w, http.StatusForbidden, "Reviewer role required")
		return
	}

	typeKey := r.URL.Query().Get("type")
	if typeKey == "" {
		httpError.ErrorResponse(w, http.StatusBadRequest, "Missing type query parameter")
		return
	}

	views, err := h.applicationService.ApplicationsForReview(r.Context(), typeKey)
	if err != nil {
		httpError.DomainError(w, err)
		return
	}
	httpError.JSONResponse(w, http.StatusOK, views)
}
