package artwork

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "model.dff"), []byte("data"), 0o644); err != nil {
		t.Fatal(err)
	}
	return NewServer(dir, nil)
}

func TestServeHTTP_RejectsWrongUserAgent(t *testing.T) {
	s := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/model.dff", nil)
	req.Header.Set("User-Agent", "Mozilla/5.0")
	rec := httptest.NewRecorder()

	s.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for a non-matching User-Agent, got %d", rec.Code)
	}
}

func TestServeHTTP_RejectsMissingUserAgent(t *testing.T) {
	s := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/model.dff", nil)
	rec := httptest.NewRecorder()

	s.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 with no User-Agent set, got %d", rec.Code)
	}
}

func TestServeHTTP_ServesFileForExactUserAgent(t *testing.T) {
	s := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/model.dff", nil)
	req.Header.Set("User-Agent", RequiredUserAgent)
	rec := httptest.NewRecorder()

	s.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for the matching User-Agent, got %d", rec.Code)
	}
	if rec.Body.String() != "data" {
		t.Fatalf("expected file contents to be served, got %q", rec.Body.String())
	}
}

func TestServeHTTP_RejectsNonGetMethodEvenWithMatchingUserAgent(t *testing.T) {
	s := newTestServer(t)
	req := httptest.NewRequest(http.MethodPost, "/model.dff", nil)
	req.Header.Set("User-Agent", RequiredUserAgent)
	rec := httptest.NewRecorder()

	s.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for a non-GET method, got %d", rec.Code)
	}
}
