package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"mindful-chat/internal/domain"
)

func TestHTTPClientComplete_MapsRolesAndReturnsContent(t *testing.T) {
	var got chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer key" {
			t.Errorf("missing bearer token")
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"Let's talk about that."}}]}`))
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL+"/", "key", "test-model", nil)
	out, err := c.Complete(context.Background(), []domain.Turn{
		{Role: domain.RoleSystem, Text: "preamble"},
		{Role: domain.RoleUser, Text: "hola"},
		{Role: domain.RoleModel, Text: "hola!"},
		{Role: domain.RoleUser, Text: "I feel anxious"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "Let's talk about that." {
		t.Fatalf("unexpected content %q", out)
	}
	if got.Model != "test-model" || len(got.Messages) != 4 {
		t.Fatalf("unexpected request %+v", got)
	}
	roles := []string{"system", "user", "assistant", "user"}
	for i, r := range roles {
		if got.Messages[i].Role != r {
			t.Fatalf("message %d: expected role %s, got %s", i, r, got.Messages[i].Role)
		}
	}
}

func TestHTTPClientComplete_Failures(t *testing.T) {
	cases := map[string]struct {
		status int
		body   string
	}{
		"status 500":      {status: http.StatusInternalServerError, body: `{"error":{"message":"boom"}}`},
		"malformed":       {status: http.StatusOK, body: `not json`},
		"api error":       {status: http.StatusOK, body: `{"error":{"message":"quota"}}`},
		"no choices":      {status: http.StatusOK, body: `{"choices":[]}`},
		"blank content":   {status: http.StatusOK, body: `{"choices":[{"message":{"role":"assistant","content":"  "}}]}`},
		"unexpected role": {status: http.StatusOK, body: `{"choices":[{"message":{"role":"user","content":"hi"}}]}`},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			}))
			defer srv.Close()

			c := NewHTTPClient(srv.URL, "key", "m", nil)
			if _, err := c.Complete(context.Background(), []domain.Turn{{Role: domain.RoleUser, Text: "hi"}}); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

func TestHTTPClientComplete_RespectsContextDeadline(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	c := NewHTTPClient(srv.URL, "key", "m", nil)
	_, err := c.Complete(ctx, []domain.Turn{{Role: domain.RoleUser, Text: "hi"}})
	if err == nil || !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
}
