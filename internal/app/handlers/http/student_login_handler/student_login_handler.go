package student_login_handler

import (
	"encoding/json"
	"net/http"

	"github.com/tma-tanlov/backend/internal/domain/auth"
	"github.com/tma-tanlov/backend/internal/domain/model"
	studentsService "github.com/tma-tanlov/backend/internal/domain/students/service"
	httpError "github.com/tma-tanlov/backend/pkg/http"
)

// LoginRequest учётные данные HEMIS студента
type LoginRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

// LoginResponse токен доступа и карточка студента
type LoginResponse struct {
	Token   string         `json:"token"`
	Student *model.Student `json:"student"`
}

// StudentLoginHandler структура для обработчика
type StudentLoginHandler struct {
	studentService *studentsService.StudentService
	jwtManager     *auth.Manager
}

// NewStudentLoginHandler создает новый экземпляр обработчика
func NewStudentLoginHandler(studentService *studentsService.StudentService, jwtManager *auth.Manager) *StudentLoginHandler {
	return &StudentLoginHandler{studentService: studentService, jwtManager: jwtManager}
}

// ServeHTTP метод для обработки запроса
func (h *StudentLoginHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpError.ErrorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Login == "" || req.Password == "" {
		httpError.ErrorResponse(w, http.StatusBadRequest, "Missing login or password")
		return
	}

	ctx := r.Context()
	student, hemisToken, err := h.studentService.Login(ctx, req.Login, req.Password)
	if err != nil {
		httpError.DomainError(w, err)
		return
	}

	token, err := h.jwtManager.Issue(auth.Claims{
		StudentID:  student.ID,
		HemisID:    student.HemisID,
		Role:       model.RoleStudent,
		HemisToken: hemisToken,
	})
	if err != nil {
		httpError.ErrorResponse(w, http.StatusInternalServerError, "Failed to issue token")
		return
	}

	httpError.JSONResponse(w, http.StatusOK, LoginResponse{Token: token, Student: student})
}
