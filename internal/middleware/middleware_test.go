package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"golang.org/x/time/rate"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("handled"))
	})
}

func TestCORSHeadersOnEveryResponse(t *testing.T) {
	h := CORS(okHandler())

	req := httptest.NewRequest(http.MethodPost, "/api/send", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if got := rr.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("Allow-Origin = %q, want *", got)
	}
	if got := rr.Header().Get("Access-Control-Allow-Headers"); got != "authorization, x-client-info, apikey, content-type" {
		t.Errorf("unexpected Allow-Headers: %q", got)
	}
	if rr.Body.String() != "handled" {
		t.Errorf("expected request to reach handler")
	}
}

func TestCORSPreflightShortCircuits(t *testing.T) {
	h := CORS(okHandler())

	req := httptest.NewRequest(http.MethodOptions, "/api/send", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if rr.Body.Len() != 0 {
		t.Errorf("expected empty body, handler must not run; got %q", rr.Body.String())
	}
	if got := rr.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("Allow-Origin = %q, want *", got)
	}
}

func TestRateLimitBlocksAfterBurst(t *testing.T) {
	h := RateLimit(rate.Limit(0.0001), 2)(okHandler())

	codes := []int{}
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/applications", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		codes = append(codes, rr.Code)
	}

	if codes[0] != http.StatusOK || codes[1] != http.StatusOK {
		t.Errorf("expected first two requests allowed, got %v", codes)
	}
	if codes[2] != http.StatusTooManyRequests {
		t.Errorf("expected third request limited, got %v", codes)
	}

	// A different client has its own budget
	req := httptest.NewRequest(http.MethodPost, "/api/applications", nil)
	req.RemoteAddr = "10.0.0.2:1234"
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Errorf("expected separate limit per ip, got %d", rr.Code)
	}
}

func TestNoStoreHeaders(t *testing.T) {
	h := NoStore(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/api/applications", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if got := rr.Header().Get("Cache-Control"); got != "no-store, no-cache, must-revalidate, max-age=0" {
		t.Errorf("unexpected Cache-Control: %q", got)
	}
}
