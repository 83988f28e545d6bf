package score_item_handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	applicationsService "github.com/tma-tanlov/backend/internal/domain/applications/service"
	"github.com/tma-tanlov/backend/internal/domain/auth"
	"github.com/tma-tanlov/backend/internal/domain/model"
	httpError "github.com/tma-tanlov/backend/pkg/http"
)

// ScoreItemRequest балл комиссии по позиции заявки
type ScoreItemRequest struct {
	Value float64 `json:"value"`
	Note  string  `json:"note"`
}

// ScoreItemHandler выставляет балл комиссии
type ScoreItemHandler struct {
	applicationService *applicationsService.ApplicationService
	jwtManager         *auth.Manager
}

// NewScoreItemHandler создает новый экземпляр обработчика
func NewScoreItemHandler(applicationService *applicationsService.ApplicationService, jwtManager *auth.Manager) *ScoreItemHandler {
	return &ScoreItemHandler{applicationService: applicationService, jwtManager: jwtManager}
}

// ServeHTTP метод для обработки запроса
func (h *ScoreItemHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	claims, err := h.jwtManager.FromRequest(r)
	if err != nil {
		httpError.DomainError(w, err)
		return
	}
	if claims.Role != model.RoleAdmin && claims.Role != model.RoleDekan && claims.Role != model.RoleKichikAdmin {
		httpError.ErrorResponse(w, http.StatusForbidden, "Reviewer role required")
		return
	}

	itemID, err := strconv.Atoi(r.PathValue("id"))
	if err != nil || itemID <= 0 {
		httpError.ErrorResponse(w, http.StatusBadRequest, "Invalid item id")
		return
	}

	var req ScoreItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpError.ErrorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	var reviewerID *int
	if claims.StudentID > 0 {
		reviewerID = &claims.StudentID
	}
	if err := h.applicationService.ScoreItem(r.Context(), reviewerID, itemID, req.Value, req.Note); err != nil {
		httpError.DomainError(w, err)
		return
	}
	httpError.JSONResponse(w, http.StatusOK, map[string]string{"status": "scored"})
}
