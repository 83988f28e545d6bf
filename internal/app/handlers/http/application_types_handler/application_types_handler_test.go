package application_types_handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/tma-tanlov/backend/internal/domain/auth"
)

func TestApplicationTypesRequireAuth(t *testing.T) {
	h := NewApplicationTypesHandler(nil, auth.NewManager("test-secret", 60))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/application-types", nil))
	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", rec.Code)
	}
}
