package chi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuthMiddleware_Disabled(t *testing.T) {
	for _, keys := range [][]string{nil, {"", ""}} {
		handler := BearerAuthMiddleware(keys)(okHandler())

		req := httptest.NewRequest(http.MethodGet, "/v1/models/Article/search", http.NoBody)
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)

		if rr.Code != http.StatusOK {
			t.Errorf("keys %q: got %d, want %d", keys, rr.Code, http.StatusOK)
		}
	}
}

func TestAuthMiddleware(t *testing.T) {
	handler := BearerAuthMiddleware([]string{"key1", "key2"})(okHandler())

	tests := []struct {
		name   string
		method string
		path   string
		header string
		want   int
	}{
		{"missing header", http.MethodGet, "/v1/search", "", http.StatusUnauthorized},
		{"basic scheme", http.MethodGet, "/v1/search", "Basic dXNlcjpwYXNz", http.StatusUnauthorized},
		{"no token", http.MethodGet, "/v1/search", "Bearer", http.StatusUnauthorized},
		{"empty bearer on import", http.MethodPost, "/v1/models/Article/import", "Bearer ", http.StatusUnauthorized},
		{"wrong key", http.MethodGet, "/v1/search", "Bearer wrong-key", http.StatusUnauthorized},
		{"key prefix", http.MethodGet, "/v1/search", "Bearer key", http.StatusUnauthorized},
		{"bearer first key", http.MethodGet, "/v1/search", "Bearer key1", http.StatusOK},
		{"bearer second key", http.MethodGet, "/v1/models/Article/search", "Bearer key2", http.StatusOK},
		{"apikey scheme", http.MethodPost, "/v1/models/Article/import", "ApiKey key1", http.StatusOK},
		{"lowercase scheme", http.MethodGet, "/v1/search", "bearer key2", http.StatusOK},
		{"health is public", http.MethodGet, "/health", "", http.StatusOK},
		{"metrics is public", http.MethodGet, "/metrics", "", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, http.NoBody)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)

			if rr.Code != tt.want {
				t.Fatalf("got %d, want %d", rr.Code, tt.want)
			}
			if tt.want != http.StatusUnauthorized {
				return
			}
			var errResp ErrorResponse
			if err := json.NewDecoder(rr.Body).Decode(&errResp); err != nil {
				t.Fatalf("decode error response: %v", err)
			}
			if errResp.Code != CodeUnauthorized {
				t.Errorf("error code: got %s, want %s", errResp.Code, CodeUnauthorized)
			}
		})
	}
}
