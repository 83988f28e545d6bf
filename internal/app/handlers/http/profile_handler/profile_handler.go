package profile_handler

import (
	"net/http"

	"github.com/tma-tanlov/backend/internal/domain/auth"
	"github.com/tma-tanlov/backend/internal/domain/model"
	studentsService "github.com/tma-tanlov/backend/internal/domain/students/service"
	httpError "github.com/tma-tanlov/backend/pkg/http"
)

// ProfileResponse карточка студента с GPA и договором
type ProfileResponse struct {
	Student  *model.Student      `json:"student"`
	GPA      []model.GPARecord   `json:"gpa_records"`
	Contract *model.ContractInfo `json:"contract,omitempty"`
}

// ProfileHandler отдаёт профиль текущего студента
type ProfileHandler struct {
	studentService *studentsService.StudentService
	jwtManager     *auth.Manager
}

// NewProfileHandler создает новый экземпляр обработчика
func NewProfileHandler(studentService *studentsService.StudentService, jwtManager *auth.Manager) *ProfileHandler {
	return &ProfileHandler{studentService: studentService, jwtManager: jwtManager}
}

// ServeHTTP метод для обработки запроса
func (h *ProfileHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	claims, err := h.jwtManager.FromRequest(r)
	if err != nil {
		httpError.DomainError(w, err)
		return
	}

	ctx := r.Context()
	student, err := h.studentService.Student(ctx, claims.StudentID)
	if err != nil {
		httpError.DomainError(w, err)
		return
	}
	records, err := h.studentService.GPARecords(ctx, claims.StudentID)
	if err != nil {
		httpError.DomainError(w, err)
		return
	}

	resp := ProfileResponse{Student: student, GPA: records}
	// Договор подтягивается по HEMIS-токену из клейма, его отсутствие не фатально
	if claims.HemisToken != "" {
		if contract, err := h.studentService.Contract(ctx, claims.HemisToken, claims.StudentID); err == nil {
			resp.Contract = contract
		}
	}
	httpError.JSONResponse(w, http.StatusOK, resp)
}
