package openai

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/joseph-ayodele/apl-diff/internal/llm"
)

type roundTrip func(*http.Request) *http.Response

func (rt roundTrip) RoundTrip(req *http.Request) (*http.Response, error) {
	return rt(req), nil
}

type failingTransport struct{}

func (failingTransport) RoundTrip(*http.Request) (*http.Response, error) {
	return nil, errors.New("dial tcp: connection refused")
}

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(strings.NewReader(body)),
		Header:     make(http.Header),
	}
}

func newTestClient(cfg Config, rt http.RoundTripper) *Client {
	cfg.APIKey = "test-key"
	cfg.BaseURL = "https://api.test/v1"
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewClient(cfg, logger).WithHTTPClient(&http.Client{Transport: rt, Timeout: time.Second})
}

func TestInvokeStructured(t *testing.T) {
	var sent chatRequest
	c := newTestClient(Config{Lenient: true}, roundTrip(func(req *http.Request) *http.Response {
		if req.URL.String() != "https://api.test/v1/chat/completions" {
			t.Errorf("unexpected url %s", req.URL)
		}
		if got := req.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("unexpected auth header %q", got)
		}
		body, _ := io.ReadAll(req.Body)
		if err := json.Unmarshal(body, &sent); err != nil {
			t.Errorf("decode request: %v", err)
		}
		return jsonResponse(200, `{"model":"gpt-test","choices":[{"message":{"role":"assistant","content":"`+"```json\\n{\\\"title\\\":\\\"t\\\"}\\n```"+`"}}]}`)
	}))

	resp, err := c.Invoke(context.Background(), llm.Request{
		Model:      "gpt-test",
		Stage:      "initial_diff",
		Structured: true,
		Messages:   []llm.Message{{Role: llm.RoleSystem, Content: "sys"}, {Role: llm.RoleUser, Content: "user"}},
	})
	if err != nil {
		t.Fatalf("Invoke: %v", err)
	}
	if resp.Content != `{"title":"t"}` {
		t.Fatalf("unexpected content %q", resp.Content)
	}
	if sent.ResponseFormat == nil || sent.ResponseFormat.Type != "json_object" {
		t.Fatalf("structured call should request json_object, got %+v", sent.ResponseFormat)
	}
	if len(sent.Messages) != 2 || sent.Messages[0].Role != llm.RoleSystem {
		t.Fatalf("messages not forwarded in order: %+v", sent.Messages)
	}
}

func TestInvokePlainTextOmitsResponseFormat(t *testing.T) {
	c := newTestClient(Config{}, roundTrip(func(req *http.Request) *http.Response {
		body, _ := io.ReadAll(req.Body)
		if strings.Contains(string(body), "response_format") {
			t.Errorf("plain call must not set response_format: %s", body)
		}
		if !strings.Contains(string(body), `"model":"gpt-4.1"`) {
			t.Errorf("expected default model in %s", body)
		}
		return jsonResponse(200, `{"choices":[{"message":{"content":"[Page 1]\nreconstructed"}}]}`)
	}))
	resp, err := c.Invoke(context.Background(), llm.Request{Messages: []llm.Message{{Role: llm.RoleUser, Content: "x"}}})
	if err != nil {
		t.Fatalf("Invoke: %v", err)
	}
	if resp.Content != "[Page 1]\nreconstructed" {
		t.Fatalf("unexpected content %q", resp.Content)
	}
}

func TestInvokeErrors(t *testing.T) {
	tests := []struct {
		name       string
		rt         http.RoundTripper
		structured bool
		want       error
	}{
		{"transport", failingTransport{}, false, llm.ErrTransport},
		{"non-2xx", roundTrip(func(*http.Request) *http.Response {
			return jsonResponse(429, `{"error":{"message":"rate limited"}}`)
		}), false, llm.ErrRejected},
		{"error payload", roundTrip(func(*http.Request) *http.Response {
			return jsonResponse(200, `{"error":{"message":"bad"}}`)
		}), false, llm.ErrRejected},
		{"no choices", roundTrip(func(*http.Request) *http.Response {
			return jsonResponse(200, `{"choices":[]}`)
		}), false, llm.ErrRejected},
		{"malformed json", roundTrip(func(*http.Request) *http.Response {
			return jsonResponse(200, `{"choices":[{"message":{"content":"not json"}}]}`)
		}), true, llm.ErrMalformedOutput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(Config{Lenient: true}, tt.rt)
			_, err := c.Invoke(context.Background(), llm.Request{Structured: tt.structured})
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestInvokeRejectedCarriesAPIMessage(t *testing.T) {
	c := newTestClient(Config{}, roundTrip(func(*http.Request) *http.Response {
		return jsonResponse(400, `{"error":{"message":"context_length_exceeded"}}`)
	}))
	_, err := c.Invoke(context.Background(), llm.Request{})
	if err == nil || !strings.Contains(err.Error(), "context_length_exceeded") {
		t.Fatalf("expected api message in error, got %v", err)
	}
}
