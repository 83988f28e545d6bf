package next_question_handler

import (
	"net/http"
	"strconv"

	"github.com/tma-tanlov/backend/internal/domain/auth"
	testsService "github.com/tma-tanlov/backend/internal/domain/tests/service"
	httpError "github.com/tma-tanlov/backend/pkg/http"
)

// NextQuestionHandler выдаёт очередной неотвеченный вопрос сессии
type NextQuestionHandler struct {
	testService *testsService.TestService
	jwtManager  *auth.Manager
}

// NewNextQuestionHandler создает новый экземпляр обработчика
func NewNextQuestionHandler(testService *testsService.TestService, jwtManager *auth.Manager) *NextQuestionHandler {
	return &NextQuestionHandler{testService: testService, jwtManager: jwtManager}
}

// ServeHTTP метод для обработки запроса
func (h *NextQuestionHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
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

	state, err := h.testService.NextQuestion(r.Context(), claims.StudentID, sessionID)
	if err != nil {
		httpError.DomainError(w, err)
		return
	}
	httpError.JSONResponse(w, http.StatusOK, state)
}
