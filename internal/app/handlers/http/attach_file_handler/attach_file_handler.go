package attach_file_handler

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"github.com/google/uuid"
	applicationsService "github.com/tma-tanlov/backend/internal/domain/applications/service"
	"github.com/tma-tanlov/backend/internal/domain/auth"
	httpError "github.com/tma-tanlov/backend/pkg/http"
)

// maxFileSize предел размера подтверждающего документа
const maxFileSize = 20 << 20

// AttachFileHandler сохраняет подтверждающий документ позиции заявки
type AttachFileHandler struct {
	applicationService *applicationsService.ApplicationService
	jwtManager         *auth.Manager
	uploadsDir         string
}

// NewAttachFileHandler создает новый экземпляр обработчика
func NewAttachFileHandler(applicationService *applicationsService.ApplicationService, jwtManager *auth.Manager, uploadsDir string) *AttachFileHandler {
	return &AttachFileHandler{applicationService: applicationService, jwtManager: jwtManager, uploadsDir: uploadsDir}
}

// ServeHTTP метод для обработки запроса
func (h *AttachFileHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	claims, err := h.jwtManager.FromRequest(r)
	if err != nil {
		httpError.DomainError(w, err)
		return
	}

	itemID, err := strconv.Atoi(r.PathValue("id"))
	if err != nil || itemID <= 0 {
		httpError.ErrorResponse(w, http.StatusBadRequest, "Invalid item id")
		return
	}

	if err := r.ParseMultipartForm(maxFileSize); err != nil {
		httpError.ErrorResponse(w, http.StatusBadRequest, "Invalid multipart form")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		httpError.ErrorResponse(w, http.StatusBadRequest, "Missing file")
		return
	}
	defer file.Close()

	// Имя файла на диске не зависит от пользовательского ввода
	filename := uuid.New().String() + filepath.Ext(header.Filename)
	path := filepath.Join(h.uploadsDir, filename)

	dst, err := os.Create(path)
	if err != nil {
		httpError.ErrorResponse(w, http.StatusInternalServerError, fmt.Sprintf("Failed to save file: %v", err))
		return
	}
	defer dst.Close()
	if _, err := io.Copy(dst, file); err != nil {
		httpError.ErrorResponse(w, http.StatusInternalServerError, fmt.Sprintf("Failed to save file: %v", err))
		return
	}

	comment := r.FormValue("comment")
	if err := h.applicationService.AttachFile(r.Context(), claims.StudentID, itemID, filename, comment); err != nil {
		os.Remove(path)
		httpError.DomainError(w, err)
		return
	}
	httpError.JSONResponse(w, http.StatusCreated, map[string]string{"path": filename})
}
