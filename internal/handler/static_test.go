package handler

import (
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func newStaticFixture(t *testing.T) *StaticHandler {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		"index.html": "<html><body>Biokuam</body></html>",
		"styles.css": "body { margin: 0; }",
		"app.js":     "console.log('biokuam');",
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatalf("write fixture %s: %v", name, err)
		}
	}
	h, err := NewStaticHandler(dir, nil)
	if err != nil {
		t.Fatalf("create handler: %v", err)
	}
	return h
}

func TestStaticServesIndexAtRoot(t *testing.T) {
	h := newStaticFixture(t)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))

	if rec.Code != 200 {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "text/html; charset=utf-8" {
		t.Fatalf("unexpected content type %s", ct)
	}
	if !strings.Contains(rec.Body.String(), "Biokuam") {
		t.Fatalf("index body not served")
	}
}

func TestStaticContentTypes(t *testing.T) {
	h := newStaticFixture(t)
	cases := map[string]string{
		"/styles.css": "text/css; charset=utf-8",
		"/app.js":     "application/javascript; charset=utf-8",
	}
	for path, want := range cases {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest("GET", path, nil))
		if rec.Code != 200 {
			t.Errorf("%s: expected 200, got %d", path, rec.Code)
			continue
		}
		if ct := rec.Header().Get("Content-Type"); ct != want {
			t.Errorf("%s: expected %s, got %s", path, want, ct)
		}
	}
}

func TestStaticNotFound(t *testing.T) {
	h := newStaticFixture(t)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/nope.html", nil))

	if rec.Code != 404 {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "404 - No encontrado") {
		t.Fatalf("unexpected body %s", rec.Body.String())
	}
}

func TestStaticRejectsTraversal(t *testing.T) {
	h := newStaticFixture(t)

	// Build the request by hand so the raw dotted path survives; a routed
	// request would have been cleaned by the mux already.
	for _, raw := range []string{"/../secret.txt", "/../../etc/passwd", "/a/../../../x"} {
		req := httptest.NewRequest("GET", "/", nil)
		req.URL = &url.URL{Path: raw}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		if rec.Code != 403 {
			t.Errorf("%s: expected 403, got %d", raw, rec.Code)
		}
	}
}
