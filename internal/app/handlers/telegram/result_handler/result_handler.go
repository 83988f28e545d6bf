package result_handler

import (
	"context"
	"fmt"
	"html"
	"regexp"
	"strings"

	"github.com/tma-tanlov/backend/internal/bot"
	"github.com/tma-tanlov/backend/internal/domain/dto"
	"github.com/tma-tanlov/backend/pkg/apperr"
	"gopkg.in/telebot.v4"
)

// hemisIDPattern формат номера студенческого билета HEMIS
var hemisIDPattern = regexp.MustCompile(`^[A-Z0-9]{12}$`)

// ResultProvider сводка результатов студента по номеру HEMIS
type ResultProvider interface {
	ResultSummary(ctx context.Context, hemisID string) (*dto.StudentResultSummary, error)
}

// ResultHandler обрабатывает текст с HEMIS ID и отвечает сводкой результатов
type ResultHandler struct {
	store   bot.Store
	results ResultProvider
}

// NewResultHandler возвращает структуру обработчика
func NewResultHandler(store bot.Store, results ResultProvider) *ResultHandler {
	return &ResultHandler{store: store, results: results}
}

// Handle метод для обработки текстового сообщения с HEMIS ID
func (h *ResultHandler) Handle(c telebot.Context) error {
	sender := c.Sender()
	text := strings.ToUpper(strings.TrimSpace(c.Text()))

	state, ok := h.store.Get(sender.ID)
	if !ok || state.Step != bot.StepAwaitHemisID {
		return c.Send("Natijalarni ko'rish uchun /start buyrug'ini yuboring.")
	}
	if !hemisIDPattern.MatchString(text) {
		return c.Send("ID raqam noto'g'ri formatda. 12 belgidan iborat HEMIS ID yuboring.")
	}

	ctx := context.Background()
	summary, err := h.results.ResultSummary(ctx, text)
	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			return c.Send("Bunday ID raqamli talaba topilmadi.")
		}
		return c.Send(fmt.Sprintf("Failed to load results: %v", err))
	}

	state.HemisID = text
	state.Step = bot.StepWelcome
	_ = h.store.Set(sender.ID, state)

	return c.Send(formatSummary(summary), &telebot.SendOptions{ParseMode: telebot.ModeHTML})
}

// formatSummary собирает текст сводки: баллы по направлениям и итог
func formatSummary(summary *dto.StudentResultSummary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "<b>%s</b> (%s)\n\n", html.EscapeString(summary.FullName), summary.HemisID)

	if len(summary.Applications) == 0 && len(summary.TestResults) == 0 {
		b.WriteString("Hozircha natijalar mavjud emas.")
		return b.String()
	}

	for _, app := range summary.Applications {
		total := 0.0
		for _, item := range app.Items {
			name := html.EscapeString(item.DirectionName)
			if item.Score != nil {
				fmt.Fprintf(&b, "%s: %.2f\n", name, *item.Score)
				total += *item.Score
			} else {
				fmt.Fprintf(&b, "%s: mavjud emas\n", name)
			}
		}
		fmt.Fprintf(&b, "<b>Jami: %.2f</b>\n\n", total)
	}

	for _, result := range summary.TestResults {
		fmt.Fprintf(&b, "Test natijasi: %.2f (%d/%d)\n",
			result.Score, result.CorrectAnswers, result.TotalQuestions)
	}
	return b.String()
}

// GetHandlerFunc возвращает обработчик в формате telebot.HandlerFunc
func (h *ResultHandler) GetHandlerFunc() telebot.HandlerFunc {
	return func(c telebot.Context) error {
		return h.Handle(c)
	}
}
