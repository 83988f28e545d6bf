package generate_invite_handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/tma-tanlov/backend/internal/domain/auth"
	"github.com/tma-tanlov/backend/internal/domain/model"
)

func inviteRequest(t *testing.T, token, hemisID string) *http.Request {
	t.Helper()
	body, err := json.Marshal(GenerateInviteRequest{HemisID: hemisID})
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, "/admin/invites", bytes.NewReader(body))
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req
}

func TestGenerateInviteWritesQRIntoDir(t *testing.T) {
	manager := auth.NewManager("test-secret", 60)
	token, err := manager.Issue(auth.Claims{Role: model.RoleAdmin})
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	qrDir := filepath.Join(t.TempDir(), "qr")
	h := NewGenerateInviteHandler(manager, "tanlov_natija_bot", "http://localhost:8080", qrDir)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, inviteRequest(t, token, "ABC123456789"))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	entries, err := os.ReadDir(qrDir)
	if err != nil {
		t.Fatalf("read qr dir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("got %d files in qr dir, want 1", len(entries))
	}

	var resp GenerateInviteResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if want := "http://localhost:8080/qr/" + entries[0].Name(); resp.QRCodeURL != want {
		t.Errorf("qr url = %q, want %q", resp.QRCodeURL, want)
	}
}

func TestGenerateInviteRequiresAdmin(t *testing.T) {
	manager := auth.NewManager("test-secret", 60)
	studentToken, err := manager.Issue(auth.Claims{StudentID: 1, Role: model.RoleStudent})
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	qrDir := filepath.Join(t.TempDir(), "qr")
	h := NewGenerateInviteHandler(manager, "tanlov_natija_bot", "http://localhost:8080", qrDir)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, inviteRequest(t, "", "ABC123456789"))
	if rec.Code != http.StatusForbidden {
		t.Errorf("no token: status = %d, want 403", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, inviteRequest(t, studentToken, "ABC123456789"))
	if rec.Code != http.StatusForbidden {
		t.Errorf("student token: status = %d, want 403", rec.Code)
	}

	if _, err := os.Stat(qrDir); !os.IsNotExist(err) {
		t.Errorf("qr dir created without authorization")
	}
}
