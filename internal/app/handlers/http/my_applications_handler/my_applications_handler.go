package my_applications_handler

import (
	"net/http"

	applicationsService "github.com/tma-tanlov/backend/internal/domain/applications/service"
	"github.com/tma-tanlov/backend/internal/domain/auth"
	httpError "github.com/tma-tanlov/backend/pkg/http"
)

// MyApplicationsHandler отдаёт заявки текущего студента с баллами
type MyApplicationsHandler struct {
	applicationService *applicationsService.ApplicationService
	jwtManager         *auth.Manager
}

// NewMyApplicationsHandler создает новый экземпляр обработчика
func NewMyApplicationsHandler(applicationService *applicationsService.ApplicationService, jwtManager *auth.Manager) *MyApplicationsHandler {
	return &MyApplicationsHandler{applicationService: applicationService, jwtManager: jwtManager}
}

// ServeHTTP метод для обработки запроса
func (h *MyApplicationsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	claims, err := h.jwtManager.FromRequest(r)
	if err != nil {
		httpError.DomainError(w, err)
		return
	}

	views, err := h.applicationService.StudentApplications(r.Context(), claims.StudentID)
	if err != nil {
		httpError.DomainError(w, err)
		return
	}
	httpError.JSONResponse(w, http.StatusOK, views)
}
