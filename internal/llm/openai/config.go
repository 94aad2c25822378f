package openai

import (
	"log/slog"
	"net/http"
	"time"
)

const (
	GroqBaseURL   = "https://api.groq.com/openai/v1"
	OpenAIBaseURL = "https://api.openai.com/v1"
)

// Config for an OpenAI-compatible chat-completions client (Groq, OpenAI).
type Config struct {
	APIKey      string
	BaseURL     string        // default GroqBaseURL
	MaxTokens   int           // default 2048
	Temperature float32       // 0 for deterministic extraction
	Timeout     time.Duration // per call, on top of the caller's context
	JSONMode    bool          // send response_format json_object
}

type Client struct {
	cfg    Config
	http   *http.Client
	logger *slog.Logger
}

func NewClient(cfg Config, logger *slog.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = GroqBaseURL
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 2048
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 45 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		cfg: cfg,
		// deadlines come from the per-call context
		http:   &http.Client{},
		logger: logger,
	}
}

// WithHTTPClient replaces the transport, e.g. for tests.
func (c *Client) WithHTTPClient(h *http.Client) *Client {
	c.http = h
	return c
}
