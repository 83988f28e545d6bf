// Package apperr определяет закрытый набор ошибок доменного слоя.
// Все ошибки предусловий доводятся до вызывающего без ретраев.
package apperr

import "errors"

// Kind класс ошибки, определяет HTTP-статус на границе обработчика
type Kind int

const (
	KindBadRequest Kind = iota // неверный ввод, дубликат, нехватка вопросов
	KindForbidden              // нет права: реестр, не тот курс, истёкшая сессия
	KindNotFound               // нет открытой сессии / объекта
)

// Error доменная ошибка с человекочитаемой причиной
type Error struct {
	Kind   Kind
	Reason string
}

func (e *Error) Error() string { return e.Reason }

// BadRequest создает ошибку класса BadRequest
func BadRequest(reason string) error {
	return &Error{Kind: KindBadRequest, Reason: reason}
}

// Forbidden создает ошибку класса Forbidden
func Forbidden(reason string) error {
	return &Error{Kind: KindForbidden, Reason: reason}
}

// NotFound создает ошибку класса NotFound
func NotFound(reason string) error {
	return &Error{Kind: KindNotFound, Reason: reason}
}

// KindOf возвращает класс ошибки и признак того, что ошибка доменная
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return 0, false
}

// Is проверяет, что ошибка доменная и принадлежит классу k
func Is(err error, k Kind) bool {
	kind, ok := KindOf(err)
	return ok && kind == k
}
