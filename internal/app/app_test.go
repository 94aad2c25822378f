package app

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/joseph-ayodele/personal-info-parser/internal/common"
	"github.com/joseph-ayodele/personal-info-parser/internal/llm/anthropic"
	"github.com/joseph-ayodele/personal-info-parser/internal/llm/llmtest"
	"github.com/joseph-ayodele/personal-info-parser/internal/llm/openai"
	"github.com/joseph-ayodele/personal-info-parser/internal/logging"
)

func TestNewGateway(t *testing.T) {
	for _, provider := range []string{common.ProviderGroq, common.ProviderOpenAI} {
		g, err := NewGateway(common.LLMConfig{Provider: provider, APIKey: "k"}, logging.Discard())
		if err != nil {
			t.Fatal(err)
		}
		if _, ok := g.(*openai.Client); !ok {
			t.Fatalf("%s: got %T", provider, g)
		}
	}

	g, err := NewGateway(common.LLMConfig{Provider: common.ProviderAnthropic, APIKey: "k"}, logging.Discard())
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := g.(*anthropic.Client); !ok {
		t.Fatalf("anthropic: got %T", g)
	}

	if _, err := NewGateway(common.LLMConfig{Provider: "mystery"}, logging.Discard()); !errors.Is(err, common.ErrNotConfigured) {
		t.Fatalf("expected not configured, got %v", err)
	}
}

func TestAppEndToEnd(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cfg := &common.Config{
		Env: common.EnvProduction,
		LLM: common.LLMConfig{TextModel: "text-model", ImageModel: "vision-model"},
	}
	g := llmtest.New(`{"name":"Bob Johnson","street":"789 Pine St","city":"New York","state":"NY","country":"","zip_code":"","phone_number":""}`)
	a, err := NewWithGateway(context.Background(), cfg, g, logging.Discard())
	if err != nil {
		t.Fatal(err)
	}
	router := a.Server().Router()

	// lookup never reaches the gateway
	w := httptest.NewRecorder()
	router.ServeHTTP(w, jsonPost(`{"id":"jim-croce"}`))
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"name":"Jim Croce"`) {
		t.Fatalf("lookup: %d %s", w.Code, w.Body.String())
	}
	if len(g.Calls()) != 0 {
		t.Fatal("lookup hit called the gateway")
	}

	w = httptest.NewRecorder()
	router.ServeHTTP(w, jsonPost(`{"inputText":"Bob Johnson, 789 Pine St, New York, NY 10001"}`))
	if w.Code != http.StatusOK {
		t.Fatalf("text: %d %s", w.Code, w.Body.String())
	}
	body := w.Body.String()
	if !strings.Contains(body, `"source":"text"`) || !strings.Contains(body, `"zipCode":"10001"`) || !strings.Contains(body, `"phoneNumber":""`) {
		t.Fatalf("text body = %s", body)
	}
	if calls := g.Calls(); len(calls) != 1 || calls[0].Model != "text-model" {
		t.Fatalf("calls = %+v", calls)
	}
}

func jsonPost(body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/parse", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}
