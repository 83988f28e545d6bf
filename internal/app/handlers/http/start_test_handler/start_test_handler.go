package start_test_handler

import (
	"net/http"
	"strconv"

	"github.com/tma-tanlov/backend/internal/domain/auth"
	studentsService "github.com/tma-tanlov/backend/internal/domain/students/service"
	testsService "github.com/tma-tanlov/backend/internal/domain/tests/service"
	httpError "github.com/tma-tanlov/backend/pkg/http"
)

// StartTestHandler структура для обработчика запуска теста
type StartTestHandler struct {
	testService    *testsService.TestService
	studentService *studentsService.StudentService
	jwtManager     *auth.Manager
}

// NewStartTestHandler создает новый экземпляр обработчика
func NewStartTestHandler(testService *testsService.TestService, studentService *studentsService.StudentService, jwtManager *auth.Manager) *StartTestHandler {
	return &StartTestHandler{testService: testService, studentService: studentService, jwtManager: jwtManager}
}

// ServeHTTP метод для обработки запроса
func (h *StartTestHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	claims, err := h.jwtManager.FromRequest(r)
	if err != nil {
		httpError.DomainError(w, err)
		return
	}

	testID, err := strconv.Atoi(r.PathValue("id"))
	if err != nil || testID <= 0 {
		httpError.ErrorResponse(w, http.StatusBadRequest, "Invalid test id")
		return
	}

	ctx := r.Context()
	student, err := h.studentService.Student(ctx, claims.StudentID)
	if err != nil {
		httpError.DomainError(w, err)
		return
	}

	resp, err := h.testService.StartTest(ctx, student, testID)
	if err != nil {
		httpError.DomainError(w, err)
		return
	}
	httpError.JSONResponse(w, http.StatusOK, resp)
}
