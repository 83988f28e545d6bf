package generate_invite_handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/skip2/go-qrcode"
	"github.com/tma-tanlov/backend/internal/domain/auth"
	"github.com/tma-tanlov/backend/internal/domain/model"
	httpError "github.com/tma-tanlov/backend/pkg/http"
)

// GenerateInviteRequest запрос ссылки-приглашения в бот результатов
type GenerateInviteRequest struct {
	HemisID string `json:"hemis_id"`
}

// GenerateInviteResponse ссылка и QR-код приглашения
type GenerateInviteResponse struct {
	Link      string `json:"link"`
	QRCodeURL string `json:"qr_code_url"`
}

// GenerateInviteHandler генерирует ссылку и QR-код на Telegram-бот результатов.
// PNG складываются в qrDir, наружу отдаётся только этот каталог.
type GenerateInviteHandler struct {
	jwtManager  *auth.Manager
	botUsername string
	baseURL     string
	qrDir       string
}

// NewGenerateInviteHandler создает новый экземпляр обработчика
func NewGenerateInviteHandler(jwtManager *auth.Manager, botUsername, baseURL, qrDir string) *GenerateInviteHandler {
	return &GenerateInviteHandler{jwtManager: jwtManager, botUsername: botUsername, baseURL: baseURL, qrDir: qrDir}
}

// ServeHTTP метод для обработки запроса
func (h *GenerateInviteHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	claims, err := h.jwtManager.FromRequest(r)
	if err != nil {
		httpError.DomainError(w, err)
		return
	}
	if claims.Role != model.RoleAdmin {
		httpError.ErrorResponse(w, http.StatusForbidden, "Admin role required")
		return
	}

	var req GenerateInviteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpError.ErrorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.HemisID == "" {
		httpError.ErrorResponse(w, http.StatusBadRequest, "Missing hemis_id")
		return
	}

	token := uuid.New().String()
	link := fmt.Sprintf("https://t.me/%s?start=%s", h.botUsername, req.HemisID)

	qrCodeFilename := fmt.Sprintf("invite_%s_%s.png", req.HemisID, token)
	if err := os.MkdirAll(h.qrDir, 0755); err != nil {
		httpError.ErrorResponse(w, http.StatusInternalServerError, fmt.Sprintf("Failed to prepare QR directory: %v", err))
		return
	}
	if err := qrcode.WriteFile(link, qrcode.Medium, 256, filepath.Join(h.qrDir, qrCodeFilename)); err != nil {
		httpError.ErrorResponse(w, http.StatusInternalServerError, fmt.Sprintf("Failed to generate QR code: %v", err))
		return
	}

	response := GenerateInviteResponse{
		Link:      link,
		QRCodeURL: fmt.Sprintf("%s/qr/%s", h.baseURL, qrCodeFilename),
	}
	httpError.JSONResponse(w, http.StatusOK, response)
}
