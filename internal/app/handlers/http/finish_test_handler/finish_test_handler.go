package finish_test_handler

import (
	"net/http"
	"strconv"

	"github.com/tma-tanlov/backend/internal/domain/auth"
	testsService "github.com/tma-tanlov/backend/internal/domain/tests/service"
	httpError "github.com/tma-tanlov/backend/pkg/http"
)

// FinishTestHandler досрочно завершает сессию и возвращает итог
type FinishTestHandler struct {
	testService *testsService.TestService
	jwtManager  *auth.Manager
}

// NewFinishTestHandler создает новый экземпляр обработчика
func NewFinishTestHandler(testService *testsService.TestService, jwtManager *auth.Manager) *FinishTestHandler {
	return &FinishTestHandler{testService: testService, jwtManager: jwtManager}
}

// ServeHTTP метод для обработки запроса
func (h *FinishTestHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	claims, err := h.jwtManager.FromRequest(r)
	if err != nil {
		httpError.DomainError(w, err)
		return
	}

	sessionID, err := strconv.Atoi(r.PathValue("id"))
	if err != nil || sessionID <= 0 {
		httpError.ErrorResponse(w, http.StatusBadRequest, "Invalid session id")
		return
	}

	result, err := h.testService.FinishTest(r.Context(), claims.StudentID, sessionID)
	if err != nil {
		httpError.DomainError(w, err)
		return
	}
	httpError.JSONResponse(w, http.StatusOK, result)
}
