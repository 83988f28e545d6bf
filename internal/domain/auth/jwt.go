// Package auth выпуск и проверка JWT-токенов доступа.
package auth

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/tma-tanlov/backend/pkg/apperr"
)

// Claims полезная нагрузка токена доступа. HemisToken прокидывается для
// запросов к HEMIS от имени студента (договор и т.п.).
type Claims struct {
	StudentID  int    `json:"student_id,omitempty"`
	HemisID    string `json:"hemis_id,omitempty"`
	Role       string `json:"role"`
	HemisToken string `json:"hemis_token,omitempty"`
	jwt.RegisteredClaims
}

// Manager выпускает и проверяет токены
type Manager struct {
	secret []byte
	ttl    time.Duration
}

// NewManager создает новый экземпляр Manager
func NewManager(secret string, ttlMinutes int) *Manager {
	return &Manager{secret: []byte(secret), ttl: time.Duration(ttlMinutes) * time.Minute}
}

// Issue выпускает подписанный токен с заданными клеймами
func (m *Manager) Issue(claims Claims) (string, error) {
	now := time.Now()
	claims.IssuedAt = jwt.NewNumericDate(now)
	claims.ExpiresAt = jwt.NewNumericDate(now.Add(m.ttl))

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Parse проверяет подпись и срок действия токена
func (m *Manager) Parse(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, apperr.Forbidden("token yaroqsiz yoki muddati o'tgan")
	}
	return claims, nil
}

// FromRequest извлекает и проверяет bearer-токен из заголовка Authorization
func (m *Manager) FromRequest(r *http.Request) (*Claims, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return nil, apperr.Forbidden("Authorization sarlavhasi yo'q")
	}
	tokenString := strings.TrimPrefix(header, "Bearer ")
	if tokenString == header {
		return nil, apperr.Forbidden("Authorization sarlavhasi Bearer emas")
	}
	return m.Parse(tokenString)
}
