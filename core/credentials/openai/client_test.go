package openai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/vsurfcode/portfolio-voice/core/credentials"
)

func TestTokenRequestsRealtimeSecret(t *testing.T) {
	var received requestBody
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != clientSecretsPath {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer sk-test" {
			t.Errorf("expected bearer auth, got %q", got)
		}
		_ = json.NewDecoder(r.Body).Decode(&received)
		_, _ = w.Write([]byte(`{"value":"ek_123","expires_at":1700000000}`))
	}))
	defer server.Close()

	token, err := NewClient("sk-test", WithBaseURL(server.URL)).Token(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if token != "ek_123" {
		t.Fatalf("expected ek_123, got %q", token)
	}
	if received.Session.Type != "realtime" || received.Session.Model != DefaultModel {
		t.Fatalf("unexpected session config: %+v", received.Session)
	}
}

func TestTokenFailures(t *testing.T) {
	testCases := []struct {
		name    string
		status  int
		body    string
		wantErr error
	}{
		{name: "empty value", status: http.StatusOK, body: `{"value":""}`, wantErr: credentials.ErrNoToken},
		{name: "upstream error", status: http.StatusUnauthorized, body: `{"error":"bad key"}`},
		{name: "malformed body", status: http.StatusOK, body: `not json`},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			}))
			defer server.Close()

			_, err := NewClient("sk-test", WithBaseURL(server.URL)).Token(context.Background())
			if err == nil {
				t.Fatalf("expected an error")
			}
			if tc.wantErr != nil && !errors.Is(err, tc.wantErr) {
				t.Fatalf("expected %v, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestTokenRequiresAPIKey(t *testing.T) {
	if _, err := NewClient("").Token(context.Background()); err == nil {
		t.Fatalf("expected an error without an api key")
	}
}
