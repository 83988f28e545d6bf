package submit_application_handler

import (
	"encoding/json"
	"net/http"

	applicationsService "github.com/tma-tanlov/backend/internal/domain/applications/service"
	"github.com/tma-tanlov/backend/internal/domain/auth"
	httpError "github.com/tma-tanlov/backend/pkg/http"
)

// SubmitApplicationRequest заявка студента на тип конкурса
type SubmitApplicationRequest struct {
	TypeKey   string                                `json:"type_key"`
	SectionID *int                                  `json:"section_id,omitempty"`
	Comment   string                                `json:"comment"`
	Items     []applicationsService.SubmitItemInput `json:"items"`
}

// SubmitApplicationHandler принимает заявку студента
type SubmitApplicationHandler struct {
	applicationService *applicationsService.ApplicationService
	jwtManager         *auth.Manager
}

// NewSubmitApplicationHandler создает новый экземпляр обработчика
func NewSubmitApplicationHandler(applicationService *applicationsService.ApplicationService, jwtManager *auth.Manager) *SubmitApplicationHandler {
	return &SubmitApplicationHandler{applicationService: applicationService, jwtManager: jwtManager}
}

// ServeHTTP метод для обработки запроса
func (h *SubmitApplicationHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	claims, err := h.jwtManager.FromRequest(r)
	if err != nil {
		httpError.DomainError(w, err)
		return
	}

	var req SubmitApplicationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpError.ErrorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.TypeKey == "" {
		httpError.ErrorResponse(w, http.StatusBadRequest, "Missing type_key")
		return
	}

	view, err := h.applicationService.SubmitApplication(r.Context(), claims.StudentID, req.TypeKey, req.SectionID, req.Comment, req.Items)
	if err != nil {
		httpError.DomainError(w, err)
		return
	}
	httpError.JSONResponse(w, http.StatusCreated, view)
}
