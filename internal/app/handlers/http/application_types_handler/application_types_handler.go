package application_types_handler

import (
	"net/http"
	"time"

	applicationsService "github.com/tma-tanlov/backend/internal/domain/applications/service"
	"github.com/tma-tanlov/backend/internal/domain/auth"
	"github.com/tma-tanlov/backend/internal/domain/model"
	httpError "github.com/tma-tanlov/backend/pkg/http"
)

// TypeView тип конкурса с признаком открытого окна подачи
type TypeView struct {
	model.ApplicationType
	Active bool `json:"active"`
}

// ApplicationTypesHandler отдаёт типы конкурсов
type ApplicationTypesHandler struct {
	applicationService *applicationsService.ApplicationService
	jwtManager         *auth.Manager
}

// NewApplicationTypesHandler создает новый экземпляр обработчика
func NewApplicationTypesHandler(applicationService *applicationsService.ApplicationService, jwtManager *auth.Manager) *ApplicationTypesHandler {
	return &ApplicationTypesHandler{applicationService: applicationService, jwtManager: jwtManager}
}

// ServeHTTP метод для обработки запроса
func (h *ApplicationTypesHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if _, err := h.jwtManager.FromRequest(r); err != nil {
		httpError.DomainError(w, err)
		return
	}

	types, err := h.applicationService.ApplicationTypes(r.Context())
	if err != nil {
		httpError.DomainError(w, err)
		return
	}

	now := time.Now()
	views := make([]TypeView, 0, len(types))
	for _, t := range types {
		views = append(views, TypeView{ApplicationType: t, Active: t.IsActive(now)})
	}
	httpError.JSONResponse(w, http.StatusOK, views)
}
