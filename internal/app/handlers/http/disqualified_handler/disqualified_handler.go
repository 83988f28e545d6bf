package disqualified_handler

import (
	"encoding/json"
	"net/http"

	"github.com/tma-tanlov/backend/internal/domain/auth"
	"github.com/tma-tanlov/backend/internal/domain/model"
	studentsService "github.com/tma-tanlov/backend/internal/domain/students/service"
	httpError "github.com/tma-tanlov/backend/pkg/http"
)

// DisqualifyRequest запись реестра отстранённых
type DisqualifyRequest struct {
	HemisID string `json:"hemis_id"`
	Reason  string `json:"sabab"`
}

// DisqualifiedHandler управляет реестром отстранённых студентов
type DisqualifiedHandler struct {
	studentService *studentsService.StudentService
	jwtManager     *auth.Manager
}

// NewDisqualifiedHandler создает новый экземпляр обработчика
func NewDisqualifiedHandler(studentService *studentsService.StudentService, jwtManager *auth.Manager) *DisqualifiedHandler {
	return &DisqualifiedHandler{studentService: studentService, jwtManager: jwtManager}
}

func (h *DisqualifiedHandler) authorize(w http.ResponseWriter, r *http.Request) bool {
	claims, err := h.jwtManager.FromRequest(r)
	if err != nil {
		httpError.DomainError(w, err)
		return false
	}
	if claims.Role != model.RoleAdmin {
		httpError.ErrorResponse(w, http.StatusForbidden, "Admin role required")
		return false
	}
	return true
}

// List отдаёт весь реестр
func (h *DisqualifiedHandler) List(w http.ResponseWriter, r *http.Request) {
	if !h.authorize(w, r) {
		return
	}
	list, err := h.studentService.Disqualified(r.Context())
	if err != nil {
		httpError.DomainError(w, err)
		return
	}
	httpError.JSONResponse(w, http.StatusOK, list)
}

// Add вносит студента в реестр
func (h *DisqualifiedHandler) Add(w http.ResponseWriter, r *http.Request) {
	if !h.authorize(w, r) {
		return
	}
	var req DisqualifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpError.ErrorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := h.studentService.Disqualify(r.Context(), req.HemisID, req.Reason); err != nil {
		httpError.DomainError(w, err)
		return
	}
	httpError.JSONResponse(w, http.StatusCreated, map[string]string{"status": "added"})
}

// Remove убирает студента из реестра
func (h *DisqualifiedHandler) Remove(w http.ResponseWriter, r *http.Request) {
	if !h.authorize(w, r) {
		return
	}
	hemisID := r.PathValue("hemis_id")
	if hemisID == "" {
		httpError.ErrorResponse(w, http.StatusBadRequest, "Missing hemis_id")
		return
	}
	if err := h.studentService.Requalify(r.Context(), hemisID); err != nil {
		httpError.DomainError(w, err)
		return
	}
	httpError.JSONResponse(w, http.StatusOK, map[string]string{"status": "removed"})
}
