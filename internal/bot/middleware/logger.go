package middleware

import (
	"log"

	tele "gopkg.in/telebot.v4"
)

// Logger возвращает middleware, которое логирует входящие обновления Telegram.
// Если передан хотя бы один логгер, используется он, иначе log.Default().
func Logger(logger ...*log.Logger) tele.MiddlewareFunc {
	var l *log.Logger
	if len(logger) > 0 {
		l = logger[0]
	} else {
		l = log.Default()
	}
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			if sender := c.Sender(); sender != nil {
				l.Printf("update %d from %d (%s): %q", c.Update().ID, sender.ID, sender.Username, c.Text())
			} else {
				l.Printf("update %d: %q", c.Update().ID, c.Text())
			}
			return next(c)
		}
	}
}
