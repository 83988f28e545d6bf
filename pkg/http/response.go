// Package http вспомогательные функции для JSON-ответов обработчиков.
package http

import (
	"encoding/json"
	"net/http"

	"github.com/tma-tanlov/backend/pkg/apperr"
)

// ErrorResponse отправляет JSON вида {"detail": "..."} с указанным статусом
func ErrorResponse(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(map[string]string{"detail": message})
}

// JSONResponse отправляет произвольное тело как JSON
func JSONResponse(w http.ResponseWriter, statusCode int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(body)
}

// DomainError транслирует доменную ошибку в HTTP-статус.
// Ошибки вне закрытого набора apperr считаются внутренними.
func DomainError(w http.ResponseWriter, err error) {
	kind, ok := apperr.KindOf(err)
	if !ok {
		ErrorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}
	switch kind {
	case apperr.KindForbidden:
		ErrorResponse(w, http.StatusForbidden, err.Error())
	case apperr.KindNotFound:
		ErrorResponse(w, http.StatusNotFound, err.Error())
	default:
		ErrorResponse(w, http.StatusBadRequest, err.Error())
	}
}
