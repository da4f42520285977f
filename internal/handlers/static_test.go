package handlers

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Riwi-io-Medellin/SQL/internal/static"
)

func TestStaticHandler_ServeFile(t *testing.T) {
	base := t.TempDir()
	pub := filepath.Join(base, "public")
	if err := os.MkdirAll(pub, 0o755); err != nil {
		t.Fatal(err)
	}
	os.WriteFile(filepath.Join(base, "secret.env"), []byte("DB_PASS=x"), 0o644)
	os.WriteFile(filepath.Join(pub, "index.html"), []byte("<h1>hi</h1>"), 0o644)
	os.WriteFile(filepath.Join(pub, "app.js"), []byte("console.log(1)"), 0o644)
	os.WriteFile(filepath.Join(pub, "blob.dat"), []byte{0, 1, 2}, 0o644)

	root, err := static.NewRoot(pub, "index.html")
	if err != nil {
		t.Fatalf("NewRoot: %v", err)
	}
	h := &StaticHandler{Root: root}

	cases := []struct {
		path   string
		status int
		ctype  string
		body   string
	}{
		{"/", http.StatusOK, "text/html; charset=utf-8", "<h1>hi</h1>"},
		{"/app.js", http.StatusOK, "application/javascript", "console.log(1)"},
		{"/blob.dat", http.StatusOK, static.FallbackContentType, "\x00\x01\x02"},
		{"/missing.css", http.StatusNotFound, "application/json", ""},
		{"/../secret.env", http.StatusNotFound, "application/json", ""},
	}
	for _, c := range cases {
		rr := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "/", nil)
		req.URL.Path = c.path
		h.ServeFile(rr, req)

		if rr.Code != c.status {
			t.Errorf("%s: status got %d, want %d", c.path, rr.Code, c.status)
		}
		if ct := rr.Header().Get("Content-Type"); ct != c.ctype {
			t.Errorf("%s: content type got %q, want %q", c.path, ct, c.ctype)
		}
		if c.body != "" && rr.Body.String() != c.body {
			t.Errorf("%s: body got %q", c.path, rr.Body.String())
		}
		if c.status == http.StatusNotFound && strings.Contains(rr.Body.String(), "DB_PASS") {
			t.Errorf("%s: leaked file outside root", c.path)
		}
	}
}
