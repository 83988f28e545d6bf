package quiz_upload_handler

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/tma-tanlov/backend/internal/domain/auth"
	"github.com/tma-tanlov/backend/internal/domain/model"
	testsService "github.com/tma-tanlov/backend/internal/domain/tests/service"
	"github.com/tma-tanlov/backend/internal/quiz"
	httpError "github.com/tma-tanlov/backend/pkg/http"
)

// maxUploadSize предел размера TXT-файла банка вопросов
const maxUploadSize = 5 << 20

// UploadResponse итог импорта банка вопросов
type UploadResponse struct {
	TestID    int               `json:"test_id"`
	Questions int               `json:"questions"`
	Errors    []quiz.ParseError `json:"errors,omitempty"`
}

// QuizUploadHandler импортирует банк вопросов из TXT-файла
type QuizUploadHandler struct {
	testService *testsService.TestService
	jwtManager  *auth.Manager
}

// NewQuizUploadHandler создает новый экземпляр обработчика
func NewQuizUploadHandler(testService *testsService.TestService, jwtManager *auth.Manager) *QuizUploadHandler {
	return &QuizUploadHandler{testService: testService, jwtManager: jwtManager}
}

// ServeHTTP метод для обработки запроса
func (h *QuizUploadHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	claims, err := h.jwtManager.FromRequest(r)
	if err != nil {
		httpError.DomainError(w, err)
		return
	}
	if claims.Role != model.RoleAdmin {
		httpError.ErrorResponse(w, http.StatusForbidden, "Admin role required")
		return
	}

	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		httpError.ErrorResponse(w, http.StatusBadRequest, "Invalid multipart form")
		return
	}
	file, _, err := r.FormFile("file")
	if err != nil {
		httpError.ErrorResponse(w, http.StatusBadRequest, "Missing quiz file")
		return
	}
	defer file.Close()

	title := strings.TrimSpace(r.FormValue("title"))
	timeLimit, err := strconv.Atoi(r.FormValue("time_limit"))
	if err != nil {
		httpError.ErrorResponse(w, http.StatusBadRequest, "Invalid time_limit")
		return
	}

	var levelIDs []int
	for _, raw := range strings.Split(r.FormValue("level_ids"), ",") {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		id, err := strconv.Atoi(raw)
		if err != nil {
			httpError.ErrorResponse(w, http.StatusBadRequest, "Invalid level_ids")
			return
		}
		levelIDs = append(levelIDs, id)
	}

	var startTime *time.Time
	if raw := r.FormValue("start_time"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			httpError.ErrorResponse(w, http.StatusBadRequest, "Invalid start_time, expected RFC3339")
			return
		}
		startTime = &parsed
	}

	questions, parseErrors := quiz.Parse(file)
	if len(parseErrors) > 0 {
		// Файл с ошибками не импортируется даже частично
		httpError.JSONResponse(w, http.StatusBadRequest, UploadResponse{Errors: parseErrors})
		return
	}

	testID, err := h.testService.ImportQuiz(r.Context(), title, timeLimit, startTime, levelIDs, questions)
	if err != nil {
		httpError.DomainError(w, err)
		return
	}
	httpError.JSONResponse(w, http.StatusCreated, UploadResponse{TestID: testID, Questions: len(questions)})
}
