package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func serveCORS(t *testing.T, allowed, method, origin string) (*httptest.ResponseRecorder, bool) {
	t.Helper()
	called := false
	h := NewCORSMiddleware(allowed)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(method, "/api/session", nil)
	if origin != "" {
		req.Header.Set("Origin", origin)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w, called
}

func TestCORSMiddleware_SingleOrigin_SetsHeaders(t *testing.T) {
	w, called := serveCORS(t, "http://localhost:4200", http.MethodGet, "")

	if !called {
		t.Fatal("next handler should be called")
	}

	tests := []struct {
		header string
		want   string
	}{
		{"Access-Control-Allow-Origin", "http://localhost:4200"},
		{"Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS"},
		{"Access-Control-Allow-Headers", "Authorization, Content-Type"},
		{"Access-Control-Max-Age", "86400"},
		{"Vary", "Origin"},
	}
	for _, tt := range tests {
		if got := w.Header().Get(tt.header); got != tt.want {
			t.Errorf("%s = %q, want %q", tt.header, got, tt.want)
		}
	}
}

func TestCORSMiddleware_Preflight_Returns204WithoutCallingNext(t *testing.T) {
	w, called := serveCORS(t, "http://localhost:4200", http.MethodOptions, "http://localhost:4200")

	if w.Code != http.StatusNoContent {
		t.Errorf("status = %d, want %d", w.Code, http.StatusNoContent)
	}
	if called {
		t.Error("next handler should not be called for OPTIONS preflight")
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:4200" {
		t.Errorf("Access-Control-Allow-Origin = %q", got)
	}
}

func TestCORSMiddleware_MultipleOrigins(t *testing.T) {
	allowed := "http://localhost:4200, https://studio.example.com/"

	tests := []struct {
		name   string
		origin string
		want   string
	}{
		{"first", "http://localhost:4200", "http://localhost:4200"},
		{"second without trailing slash", "https://studio.example.com", "https://studio.example.com"},
		{"not allowed", "https://evil.example.com", ""},
		{"no origin", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, called := serveCORS(t, allowed, http.MethodGet, tt.origin)
			if !called {
				t.Error("next handler should be called")
			}
			if got := w.Header().Get("Access-Control-Allow-Origin"); got != tt.want {
				t.Errorf("Access-Control-Allow-Origin = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCORSMiddleware_Wildcard(t *testing.T) {
	w, _ := serveCORS(t, "*, http://localhost:4200", http.MethodGet, "https://any.example.com")

	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "https://any.example.com" {
		t.Errorf("Access-Control-Allow-Origin = %q", got)
	}
}

func TestCORSMiddleware_Empty(t *testing.T) {
	w, called := serveCORS(t, "", http.MethodPost, "http://localhost:4200")

	if !called {
		t.Error("next handler should be called")
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("Access-Control-Allow-Origin = %q, want empty", got)
	}
}
