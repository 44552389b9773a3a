package chat

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
)

type requestBody struct {
	Model    string `json:"model"`
	Messages []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
}

func completion(content string) string {
	return fmt.Sprintf(`{
		"id": "chatcmpl-1",
		"object": "chat.completion",
		"created": 1700000000,
		"model": "gpt-3.5-turbo",
		"choices": [{
			"index": 0,
			"finish_reason": "stop",
			"message": {"role": "assistant", "content": %q}
		}]
	}`, content)
}

func TestComplete(t *testing.T) {
	var got requestBody

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/chat/completions") {
			http.NotFound(w, r)
			return
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer sk-test" {
			t.Errorf("unexpected authorization header %q", auth)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decoding request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, completion("  Paris is the capital of France.  "))
	}))
	defer srv.Close()

	c := New(Options{APIKey: "sk-test", BaseURL: srv.URL})

	reply, err := c.Complete(t.Context(), "what is the capital of france")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reply != "Paris is the capital of France." {
		t.Errorf("unexpected reply %q", reply)
	}

	if got.Model != "gpt-3.5-turbo" {
		t.Errorf("unexpected model %q", got.Model)
	}
	if len(got.Messages) != 1 || got.Messages[0].Role != "user" || got.Messages[0].Content != "what is the capital of france" {
		t.Errorf("expected a single user message, got %+v", got.Messages)
	}
}

func TestComplete_Failures(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		body      string
		wantEmpty bool
	}{
		{name: "quota", status: http.StatusTooManyRequests, body: `{"error":{"message":"quota exceeded","type":"insufficient_quota"}}`},
		{name: "server error", status: http.StatusInternalServerError, body: `{"error":{"message":"boom"}}`},
		{name: "no choices", status: http.StatusOK, body: `{"id":"x","object":"chat.completion","created":1,"model":"m","choices":[]}`, wantEmpty: true},
		{name: "empty content", status: http.StatusOK, body: completion("   "), wantEmpty: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls atomic.Int32

			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				calls.Add(1)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				fmt.Fprint(w, tt.body)
			}))
			defer srv.Close()

			c := New(Options{APIKey: "sk-test", BaseURL: srv.URL, Model: "gpt-4o-mini"})

			_, err := c.Complete(t.Context(), "hello")
			if err == nil {
				t.Fatal("expected error")
			}
			if tt.wantEmpty && !errors.Is(err, ErrEmptyReply) {
				t.Errorf("expected ErrEmptyReply, got %v", err)
			}
			if n := calls.Load(); n != 1 {
				t.Errorf("expected exactly one request, got %d", n)
			}
		})
	}
}

func TestComplete_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := New(Options{APIKey: "sk-test", BaseURL: url})
	if _, err := c.Complete(t.Context(), "hello"); err == nil {
		t.Error("expected error for closed server")
	}
}
