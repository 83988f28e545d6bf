package sections_handler

import (
	"net/http"
	"strconv"

	applicationsService "github.com/tma-tanlov/backend/internal/domain/applications/service"
	"github.com/tma-tanlov/backend/internal/domain/auth"
	"github.com/tma-tanlov/backend/internal/domain/model"
	httpError "github.com/tma-tanlov/backend/pkg/http"
)

// SectionView раздел конкурса с направлениями
type SectionView struct {
	model.Section
	Directions []model.Direction `json:"directions"`
}

// SectionsHandler отдаёт разделы и направления конкурса
type SectionsHandler struct {
	applicationService *applicationsService.ApplicationService
	jwtManager         *auth.Manager
}

// NewSectionsHandler создает новый экземпляр обработчика
func NewSectionsHandler(applicationService *applicationsService.ApplicationService, jwtManager *auth.Manager) *SectionsHandler {
	return &SectionsHandler{applicationService: applicationService, jwtManager: jwtManager}
}

// List отдаёт все разделы с направлениями
func (h *SectionsHandler) List(w http.ResponseWriter, r *http.Request) {
	if _, err := h.jwtManager.FromRequest(r); err != nil {
		httpError.DomainError(w, err)
		return
	}

	ctx := r.Context()
	sections, err := h.applicationService.Sections(ctx)
	if err != nil {
		httpError.DomainError(w, err)
		return
	}

	views := make([]SectionView, 0, len(sections))
	for _, section := range sections {
		directions, err := h.applicationService.Directions(ctx, section.ID)
		if err != nil {
			httpError.DomainError(w, err)
			return
		}
		views = append(views, SectionView{Section: section, Directions: directions})
	}
	httpError.JSONResponse(w, http.StatusOK, views)
}

// Directions отдаёт направления одного раздела
func (h *SectionsHandler) Directions(w http.ResponseWriter, r *http.Request) {
	if _, err := h.jwtManager.FromRequest(r); err != nil {
		httpError.DomainError(w, err)
		return
	}

	sectionID, err := strconv.Atoi(r.PathValue("id"))
	if err != nil || sectionID <= 0 {
		httpError.ErrorResponse(w, http.StatusBadRequest, "Invalid section id")
		return
	}

	directions, err := h.applicationService.Directions(r.Context(), sectionID)
	if err != nil {
		httpError.DomainError(w, err)
		return
	}
	httpError.JSONResponse(w, http.StatusOK, directions)
}
