package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/csrf"
)

var testKey = []byte("0123456789abcdef0123456789abcdef")

func TestSecurityHeaders(t *testing.T) {
	rr := httptest.NewRecorder()
	SecurityHeaders(okHandler(http.StatusOK)).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	if !strings.Contains(rr.Header().Get("Content-Security-Policy"), "form-action 'self'") {
		t.Errorf("CSP = %q", rr.Header().Get("Content-Security-Policy"))
	}
	if rr.Header().Get("X-Frame-Options") != "DENY" || rr.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Errorf("headers = %v", rr.Header())
	}
}

func TestCSRF_RejectsFormWithoutToken(t *testing.T) {
	handler := CSRF(testKey, CSRFOptions{})(okHandler(http.StatusOK))

	req := httptest.NewRequest(http.MethodPost, "/signup", strings.NewReader("activity=Chess+Club"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", rr.Code)
	}
}

func TestCSRF_ExemptsJSON(t *testing.T) {
	handler := CSRF(testKey, CSRFOptions{})(okHandler(http.StatusOK))

	req := httptest.NewRequest(http.MethodPost, "/unregister", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rr.Code)
	}
}

func TestCSRF_AcceptsTokenRoundTrip(t *testing.T) {
	var token string
	handler := CSRF(testKey, CSRFOptions{})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token = csrf.Token(r)
		w.WriteHeader(http.StatusOK)
	}))

	get := httptest.NewRecorder()
	handler.ServeHTTP(get, httptest.NewRequest(http.MethodGet, "/", nil))
	if token == "" {
		t.Fatal("expected a token on GET")
	}

	req := httptest.NewRequest(http.MethodPost, "/signup", strings.NewReader("gorilla.csrf.Token="+token))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for _, c := range get.Result().Cookies() {
		req.AddCookie(c)
	}
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rr.Code)
	}
}

func TestRateLimiter_Allow(t *testing.T) {
	rl := NewRateLimiter(2, time.Hour)
	if !rl.Allow("1.2.3.4") || !rl.Allow("1.2.3.4") {
		t.Fatal("first two requests must pass")
	}
	if rl.Allow("1.2.3.4") {
		t.Error("third request within the interval must be refused")
	}
	if !rl.Allow("5.6.7.8") {
		t.Error("other visitors are limited independently")
	}
}

func TestRateLimiter_SweepsStaleVisitors(t *testing.T) {
	now := time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)
	rl := newRateLimiterWithClock(1, time.Hour, func() time.Time { return now })

	rl.Allow("1.2.3.4")
	now = now.Add(30 * time.Second)
	rl.Allow("5.6.7.8")
	if len(rl.visitors) != 2 {
		t.Fatalf("visitors = %d, want 2", len(rl.visitors))
	}

	now = now.Add(staleAfter + sweepEvery)
	rl.Allow("9.9.9.9")
	if len(rl.visitors) != 1 {
		t.Errorf("visitors after sweep = %d, want 1", len(rl.visitors))
	}
	if !rl.Allow("1.2.3.4") {
		t.Error("a swept visitor starts with a fresh bucket")
	}
}

func TestChain_Order(t *testing.T) {
	var order []string
	mark := func(name string) func(http.Handler) http.Handler {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}
	h := Chain(okHandler(http.StatusOK), mark("inner"), mark("outer"))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	if strings.Join(order, ",") != "outer,inner" {
		t.Errorf("order = %v", order)
	}
}
