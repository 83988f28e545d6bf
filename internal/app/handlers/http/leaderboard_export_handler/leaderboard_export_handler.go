package leaderboard_export_handler

import (
	"fmt"
	"net/http"

	applicationsService "github.com/tma-tanlov/backend/internal/domain/applications/service"
	"github.com/tma-tanlov/backend/internal/domain/auth"
	"github.com/tma-tanlov/backend/internal/domain/model"
	"github.com/tma-tanlov/backend/internal/export"
	httpError "github.com/tma-tanlov/backend/pkg/http"
)

// LeaderboardExportHandler выгружает рейтинг конкурса в Excel
type LeaderboardExportHandler struct {
	applicationService *applicationsService.ApplicationService
	jwtManager         *auth.Manager
}

// NewLeaderboardExportHandler создает новый экземпляр обработчика
func NewLeaderboardExportHandler(applicationService *applicationsService.ApplicationService, jwtManager *auth.Manager) *LeaderboardExportHandler {
	return &LeaderboardExportHandler{applicationService: applicationService, jwtManager: jwtManager}
}

// ServeHTTP метод для обработки запроса
func (h *LeaderboardExportHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	claims, err := h.jwtManager.FromRequest(r)
	if err != nil {
		httpError.DomainError(w, err)
		return
	}
	if claims.Role != model.RoleAdmin && claims.Role != model.RoleDekan {
		httpError.ErrorResponse(w, http.StatusForbidden, "Admin or dekan role required")
		return
	}

	typeKey := r.PathValue("type")
	rows, err := h.applicationService.Leaderboard(r.Context(), typeKey)
	if err != nil {
		httpError.DomainError(w, err)
		return
	}

	workbook, err := export.LeaderboardWorkbook("Tanlov reytingi: "+typeKey, rows)
	if err != nil {
		httpError.ErrorResponse(w, http.StatusInternalServerError, fmt.Sprintf("Failed to build workbook: %v", err))
		return
	}
	defer workbook.Close()

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=reyting_%s.xlsx", typeKey))
	if err := workbook.Write(w); err != nil {
		// Заголовки уже ушли клиенту, остаётся только залогировать через ошибку записи
		return
	}
}
