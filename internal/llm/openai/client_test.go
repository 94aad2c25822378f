package openai

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/joseph-ayodele/personal-info-parser/internal/common"
	"github.com/joseph-ayodele/personal-info-parser/internal/llm"
	"github.com/joseph-ayodele/personal-info-parser/internal/logging"
)

func newTestClient(t *testing.T, h http.HandlerFunc, cfg Config) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	cfg.BaseURL = srv.URL + "/openai/v1/"
	cfg.APIKey = "test-key"
	return NewClient(cfg, logging.Discard()).WithHTTPClient(srv.Client())
}

func captureBody(t *testing.T, r *http.Request) map[string]any {
	t.Helper()
	b, err := io.ReadAll(r.Body)
	if err != nil {
		t.Fatal(err)
	}
	var body map[string]any
	if err := json.Unmarshal(b, &body); err != nil {
		t.Fatalf("request body is not JSON: %s", b)
	}
	return body
}

const okResponse = `{"choices":[{"message":{"role":"assistant","content":"{\"name\":\"John\"}"}}]}`

func TestCompleteChatTextOnly(t *testing.T) {
	var body map[string]any
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/openai/v1/chat/completions" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer test-key" {
			t.Errorf("auth header = %q", r.Header.Get("Authorization"))
		}
		body = captureBody(t, r)
		_, _ = w.Write([]byte(okResponse))
	}, Config{JSONMode: true})

	out, err := c.CompleteChat(context.Background(), "llama-3.3-70b-versatile", "extract this", nil)
	if err != nil {
		t.Fatal(err)
	}
	if out != `{"name":"John"}` {
		t.Fatalf("content = %q", out)
	}

	if body["model"] != "llama-3.3-70b-versatile" || body["temperature"] != 0.0 || body["max_tokens"] != 2048.0 {
		t.Fatalf("unexpected parameters %v", body)
	}
	rf, _ := body["response_format"].(map[string]any)
	if rf["type"] != "json_object" {
		t.Fatalf("response_format = %v", body["response_format"])
	}
	msgs := body["messages"].([]any)
	if len(msgs) != 1 {
		t.Fatalf("expected a single message, got %d", len(msgs))
	}
	msg := msgs[0].(map[string]any)
	if msg["role"] != "user" || msg["content"] != "extract this" {
		t.Fatalf("message = %v", msg)
	}
}

func TestCompleteChatWithImage(t *testing.T) {
	var body map[string]any
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		body = captureBody(t, r)
		_, _ = w.Write([]byte(okResponse))
	}, Config{})

	img := &llm.Image{Data: []byte("img"), MIMEType: "image/png"}
	if _, err := c.CompleteChat(context.Background(), "vision", "read card", img); err != nil {
		t.Fatal(err)
	}
	if _, ok := body["response_format"]; ok {
		t.Fatal("response_format should be omitted when JSON mode is off")
	}
	parts := body["messages"].([]any)[0].(map[string]any)["content"].([]any)
	if len(parts) != 2 {
		t.Fatalf("expected two content parts, got %v", parts)
	}
	text := parts[0].(map[string]any)
	if text["type"] != "text" || text["text"] != "read card" {
		t.Fatalf("text part = %v", text)
	}
	imagePart := parts[1].(map[string]any)
	url := imagePart["image_url"].(map[string]any)["url"].(string)
	if imagePart["type"] != "image_url" || url != "data:image/png;base64,aW1n" {
		t.Fatalf("image part = %v", imagePart)
	}
}

func TestCompleteChatNon2xx(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"invalid api key"}}`))
	}, Config{})

	_, err := c.CompleteChat(context.Background(), "m", "p", nil)
	if !errors.Is(err, common.ErrUpstream) {
		t.Fatalf("expected upstream error, got %v", err)
	}
	var se *llm.StatusError
	if !errors.As(err, &se) || se.StatusCode != http.StatusUnauthorized || !strings.Contains(se.Body, "invalid api key") {
		t.Fatalf("expected status error with body, got %v", err)
	}
}

func TestCompleteChatNoChoices(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}, Config{})
	if _, err := c.CompleteChat(context.Background(), "m", "p", nil); !errors.Is(err, common.ErrUpstream) {
		t.Fatalf("expected upstream error, got %v", err)
	}
}

func TestCompleteChatTimeout(t *testing.T) {
	release := make(chan struct{})
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}, Config{Timeout: 50 * time.Millisecond})
	defer close(release)

	_, err := c.CompleteChat(context.Background(), "m", "p", nil)
	if !errors.Is(err, common.ErrUpstream) {
		t.Fatalf("expected upstream error, got %v", err)
	}
	if got := common.HTTPStatus(err); got != http.StatusGatewayTimeout {
		t.Fatalf("status = %d, want 504", got)
	}
}
