package start_handler

import (
	"fmt"

	"github.com/tma-tanlov/backend/internal/bot"
	"gopkg.in/telebot.v4"
)

// StartHandler структура для обработки команды /start
type StartHandler struct {
	store bot.Store
}

// NewStartHandler возвращает структуру обработчика
func NewStartHandler(store bot.Store) *StartHandler {
	return &StartHandler{store: store}
}

// Handle метод, который будет использоваться для обработки команды /start
func (h *StartHandler) Handle(c telebot.Context) error {
	sender := c.Sender()

	state, _ := h.store.Get(sender.ID)
	state.Step = bot.StepAwaitHemisID
	state.Username = sender.Username
	state.FirstName = sender.FirstName
	if err := h.store.Set(sender.ID, state); err != nil {
		return c.Send(fmt.Sprintf("Failed to save dialog state: %v", err))
	}

	welcome := "Assalomu alaykum! Tanlov natijalarini ko'rish uchun " +
		"<b>talaba ID raqamingizni</b> (HEMIS ID, 12 belgi) yuboring."
	return c.Send(welcome, &telebot.SendOptions{ParseMode: telebot.ModeHTML})
}

// GetHandlerFunc возвращает обработчик в формате telebot.HandlerFunc
func (h *StartHandler) GetHandlerFunc() telebot.HandlerFunc {
	return func(c telebot.Context) error {
		return h.Handle(c)
	}
}
