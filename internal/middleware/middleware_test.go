package middleware

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
	"golang.org/x/time/rate"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusTeapot)
})

func TestCORS_PreflightAnyPath(t *testing.T) {
	h := CORS(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("preflight must not reach the next handler")
	}))

	for _, path := range []string{"/users", "/users/9", "/nope/at/all", "/"} {
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, httptest.NewRequest(http.MethodOptions, path, nil))

		if rr.Code != http.StatusOK {
			t.Errorf("%s: status got %d, want 200", path, rr.Code)
		}
		if rr.Body.Len() != 0 {
			t.Errorf("%s: expected empty body, got %q", path, rr.Body.String())
		}
		if got := rr.Header().Get("Access-Control-Allow-Origin"); got != "*" {
			t.Errorf("%s: allow-origin got %q", path, got)
		}
		if got := rr.Header().Get("Access-Control-Allow-Methods"); got != "GET, POST, PUT, DELETE, OPTIONS" {
			t.Errorf("%s: allow-methods got %q", path, got)
		}
		if got := rr.Header().Get("Access-Control-Allow-Headers"); got != "Content-Type" {
			t.Errorf("%s: allow-headers got %q", path, got)
		}
	}
}

func TestCORS_HeadersOnRegularResponses(t *testing.T) {
	rr := httptest.NewRecorder()
	CORS(okHandler).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/users", nil))

	if rr.Code != http.StatusTeapot {
		t.Errorf("status got %d, want next handler's", rr.Code)
	}
	if rr.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Error("expected wildcard origin on non-preflight response")
	}
}

func TestIPRateLimiter(t *testing.T) {
	l := NewIPRateLimiter(rate.Limit(1.0/60.0), 2)
	h := l.Middleware(okHandler)

	do := func(remote string) int {
		req := httptest.NewRequest(http.MethodPost, "/users/upload", nil)
		req.RemoteAddr = remote
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		return rr.Code
	}

	if do("10.0.0.1:1111") != http.StatusTeapot || do("10.0.0.1:2222") != http.StatusTeapot {
		t.Fatal("burst requests should pass")
	}
	if code := do("10.0.0.1:3333"); code != http.StatusTooManyRequests {
		t.Errorf("third request: got %d, want 429", code)
	}
	if code := do("10.0.0.2:1111"); code != http.StatusTeapot {
		t.Errorf("other IP should have its own bucket, got %d", code)
	}
}

func TestUploadRateLimiter_Burst(t *testing.T) {
	if l := UploadRateLimiter(1); l.burst != 1 {
		t.Errorf("burst for 1/min: got %d, want 1", l.burst)
	}
	if l := UploadRateLimiter(0); l.burst != 5 {
		t.Errorf("default burst: got %d, want 5", l.burst)
	}
}

func TestClientIP_IgnoresForwardedHeaders(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.0.2.1:5555"
	req.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")
	req.Header.Set("X-Real-IP", "203.0.113.10")
	if got := clientIP(req); got != "192.0.2.1" {
		t.Errorf("clientIP: got %q, want RemoteAddr host", got)
	}
}

func TestIPRateLimiter_ForgedForwardedForSharesBucket(t *testing.T) {
	h := UploadRateLimiter(2).Middleware(okHandler)

	codes := make([]int, 0, 5)
	for i := 0; i < 5; i++ {
		req := httptest.NewRequest(http.MethodPost, "/users/upload", nil)
		req.RemoteAddr = "198.51.100.7:4000"
		req.Header.Set("X-Forwarded-For", "10.0.0."+strconv.Itoa(i))
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		codes = append(codes, rr.Code)
	}

	if codes[0] != http.StatusTeapot {
		t.Fatalf("first request: got %d, want pass-through", codes[0])
	}
	for i, code := range codes[1:] {
		if code != http.StatusTooManyRequests {
			t.Errorf("request %d: got %d, want 429 (codes %v)", i+2, code, codes)
		}
	}
}

func TestIPRateLimiter_RealIPBehindTrustedProxy(t *testing.T) {
	h := chimw.RealIP(UploadRateLimiter(2).Middleware(okHandler))

	do := func(forwarded string) int {
		req := httptest.NewRequest(http.MethodPost, "/users/upload", nil)
		req.RemoteAddr = "10.1.1.1:4000"
		req.Header.Set("X-Forwarded-For", forwarded)
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		return rr.Code
	}

	if do("203.0.113.1") != http.StatusTeapot {
		t.Fatal("first client should pass")
	}
	if code := do("203.0.113.1"); code != http.StatusTooManyRequests {
		t.Errorf("same client again: got %d, want 429", code)
	}
	if code := do("203.0.113.2"); code != http.StatusTeapot {
		t.Errorf("second client behind proxy: got %d, want pass-through", code)
	}
}

func TestIPRateLimiter_EvictsIdleBuckets(t *testing.T) {
	l := NewIPRateLimiter(rate.Limit(1), 1)
	clock := time.Date(2026, 10, 19, 8, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return clock }

	for i := 0; i < 100; i++ {
		l.getLimiter("10.0.0." + strconv.Itoa(i))
	}
	if n := l.size(); n != 100 {
		t.Fatalf("buckets: got %d, want 100", n)
	}

	clock = clock.Add(l.idleTTL + time.Second)
	l.getLimiter("192.0.2.50")
	if n := l.size(); n != 1 {
		t.Errorf("buckets after idle sweep: got %d, want 1", n)
	}
}

func TestRecoverer(t *testing.T) {
	h := Recoverer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/users", nil))

	if rr.Code != http.StatusInternalServerError {
		t.Errorf("status got %d, want 500", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), `"error":"internal server error"`) {
		t.Errorf("unexpected body: %s", rr.Body.String())
	}
}

func TestMaxBytes(t *testing.T) {
	var readErr error
	h := MaxBytes(4)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, readErr = io.ReadAll(r.Body)
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/users", bytes.NewReader([]byte("123456789"))))
	if readErr == nil {
		t.Error("expected read error past the limit")
	}
}

func TestSecurityHeaders(t *testing.T) {
	rr := httptest.NewRecorder()
	SecurityHeaders(okHandler).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	if rr.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Error("expected nosniff")
	}
}
