package anthropic

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/joseph-ayodele/personal-info-parser/constants"
	"github.com/joseph-ayodele/personal-info-parser/internal/common"
	"github.com/joseph-ayodele/personal-info-parser/internal/llm"
)

// Config for the Anthropic Messages client.
type Config struct {
	APIKey      string
	BaseURL     string // optional, SDK default otherwise
	MaxTokens   int
	Temperature float32
	Timeout     time.Duration
	HTTPClient  *http.Client // optional
}

// Client implements llm.Gateway on top of anthropic-sdk-go.
type Client struct {
	cfg    Config
	api    anthropic.Client
	logger *slog.Logger
}

var _ llm.Gateway = (*Client)(nil)

func NewClient(cfg Config, logger *slog.Logger) *Client {
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 2048
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 45 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		// retries belong to the normalizer, not the transport
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	if cfg.HTTPClient != nil {
		opts = append(opts, option.WithHTTPClient(cfg.HTTPClient))
	}

	return &Client{
		cfg:    cfg,
		api:    anthropic.NewClient(opts...),
		logger: logger,
	}
}

// CompleteChat sends one user message. With an image the message holds a
// base64 image block followed by the text block.
func (c *Client) CompleteChat(ctx context.Context, model, prompt string, image *llm.Image) (string, error) {
	start := time.Now()
	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	logger := common.LoggerFromContext(ctx, c.logger)
	imageBytes := 0
	if image != nil {
		imageBytes = len(image.Data)
	}
	logger.Info("llm.chat.start",
		"provider", "anthropic",
		"model", model,
		"prompt_len", len(prompt),
		"has_image", image != nil,
		"image_bytes", imageBytes,
	)

	message, err := c.api.Messages.New(ctx, c.buildParams(model, prompt, image))
	if err != nil {
		logger.Error("llm.chat.http_error",
			"provider", "anthropic", "model", model, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		var apiErr *anthropic.Error
		if errors.As(err, &apiErr) {
			err = fmt.Errorf("%w: %w", &llm.StatusError{StatusCode: apiErr.StatusCode, Body: apiErr.Error()}, err)
		}
		return "", common.UpstreamError("anthropic messages request failed", err)
	}

	for _, block := range message.Content {
		if block.Type == "text" {
			logger.Info("llm.chat.ok",
				"provider", "anthropic",
				"model", model,
				"content_len", len(block.Text),
				"tokens_in", message.Usage.InputTokens,
				"tokens_out", message.Usage.OutputTokens,
				"elapsed_ms", time.Since(start).Milliseconds(),
			)
			return block.Text, nil
		}
	}
	return "", common.UpstreamError("anthropic messages", fmt.Errorf("no text content in response"))
}

func (c *Client) buildParams(model, prompt string, image *llm.Image) anthropic.MessageNewParams {
	blocks := make([]anthropic.ContentBlockParamUnion, 0, 2)
	if image != nil {
		mt := image.MIMEType
		if mt == "" {
			mt = constants.DefaultImageMIME
		}
		blocks = append(blocks, anthropic.NewImageBlockBase64(mt, base64.StdEncoding.EncodeToString(image.Data)))
	}
	blocks = append(blocks, anthropic.NewTextBlock(prompt))

	return anthropic.MessageNewParams{
		Model:       anthropic.Model(model),
		MaxTokens:   int64(c.cfg.MaxTokens),
		Temperature: anthropic.Float(float64(c.cfg.Temperature)),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(blocks...),
		},
	}
}
