package sections_handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/tma-tanlov/backend/internal/domain/auth"
)

func TestListRequiresAuth(t *testing.T) {
	h := NewSectionsHandler(nil, auth.NewManager("test-secret", 60))

	rec := httptest.NewRecorder()
	h.List(rec, httptest.NewRequest(http.MethodGet, "/sections", nil))
	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", rec.Code)
	}
}

func TestDirectionsRequireAuth(t *testing.T) {
	h := NewSectionsHandler(nil, auth.NewManager("test-secret", 60))

	rec := httptest.NewRecorder()
	h.Directions(rec, httptest.NewRequest(http.MethodGet, "/sections/1/directions", nil))
	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", rec.Code)
	}
}
