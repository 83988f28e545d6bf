package submit_answer_handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/tma-tanlov/backend/internal/domain/auth"
	testsService "github.com/tma-tanlov/backend/internal/domain/tests/service"
	httpError "github.com/tma-tanlov/backend/pkg/http"
)

// SubmitAnswerRequest ответ студента на вопрос сессии
type SubmitAnswerRequest struct {
	QuestionID int `json:"question_id"`
	OptionID   int `json:"option_id"`
}

// SubmitAnswerHandler принимает ответ и возвращает следующее состояние сессии
type SubmitAnswerHandler struct {
	testService *testsService.TestService
	jwtManager  *auth.Manager
}

// NewSubmitAnswerHandler создает новый экземпляр обработчика
func NewSubmitAnswerHandler(testService *testsService.TestService, jwtManager *auth.Manager) *SubmitAnswerHandler {
	return &SubmitAnswerHandler{testService: testService, jwtManager: jwtManager}
}

// ServeHTTP метод для обработки запроса
func (h *SubmitAnswerHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
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

	var req SubmitAnswerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpError.ErrorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.QuestionID <= 0 || req.OptionID <= 0 {
		httpError.ErrorResponse(w, http.StatusBadRequest, "Missing question_id or option_id")
		return
	}

	state, err := h.testService.SubmitAnswer(r.Context(), claims.StudentID, sessionID, req.QuestionID, req.OptionID)
	if err != nil {
		httpError.DomainError(w, err)
		return
	}
	httpError.JSONResponse(w, http.StatusOK, state)
}
