package resume_session_handler

import (
	"net/http"
	"strconv"

	"github.com/tma-tanlov/backend/internal/domain/auth"
	testsService "github.com/tma-tanlov/backend/internal/domain/tests/service"
	httpError "github.com/tma-tanlov/backend/pkg/http"
)

// ResumeSessionHandler возвращает состояние сессии студента по тесту
type ResumeSessionHandler struct {
	testService *testsService.TestService
	jwtManager  *auth.Manager
}

// NewResumeSessionHandler создает новый экземпляр обработчика
func NewResumeSessionHandler(testService *testsService.TestService, jwtManager *auth.Manager) *ResumeSessionHandler {
	return &ResumeSessionHandler{testService: testService, jwtManager: jwtManager}
}

// ServeHTTP метод для обработки запроса
func (h *ResumeSessionHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
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

	state, err := h.testService.ResumeSession(r.Context(), claims.StudentID, testID)
	if err != nil {
		httpError.DomainError(w, err)
		return
	}
	httpError.JSONResponse(w, http.StatusOK, state)
}
