package tests_list_handler

import (
	"net/http"

	"github.com/tma-tanlov/backend/internal/domain/auth"
	testsService "github.com/tma-tanlov/backend/internal/domain/tests/service"
	httpError "github.com/tma-tanlov/backend/pkg/http"
)

// TestsListHandler отдаёт список тестов
type TestsListHandler struct {
	testService *testsService.TestService
	jwtManager  *auth.Manager
}

// NewTestsListHandler создает новый экземпляр обработчика
func NewTestsListHandler(testService *testsService.TestService, jwtManager *auth.Manager) *TestsListHandler {
	return &TestsListHandler{testService: testService, jwtManager: jwtManager}
}

// ServeHTTP метод для обработки запроса
func (h *TestsListHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if _, err := h.jwtManager.FromRequest(r); err != nil {
		httpError.DomainError(w, err)
		return
	}

	tests, err := h.testService.Tests(r.Context())
	if err != nil {
		httpError.DomainError(w, err)
		return
	}
	httpError.JSONResponse(w, http.StatusOK, tests)
}
