package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/joseph-ayodele/personal-info-parser/internal/common"
	"github.com/joseph-ayodele/personal-info-parser/internal/llm"
)

var _ llm.Gateway = (*Client)(nil)

// CompleteChat implements llm.Gateway using chat/completions. With an image the
// single user message carries a text part and an image_url part holding a data URL.
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
		"model", model,
		"prompt_len", len(prompt),
		"has_image", image != nil,
		"image_bytes", imageBytes,
	)

	body := c.buildRequest(model, prompt, image)
	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + "/chat/completions"
	headers := map[string]string{"Authorization": "Bearer " + c.cfg.APIKey}

	raw, status, err := llm.SendJSON(ctx, c.http, endpoint, body, headers, logger)
	if err != nil {
		logger.Error("llm.chat.http_error",
			"model", model, "status", status, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return "", common.UpstreamError("chat completion request failed", err)
	}

	var cc struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(raw, &cc); err != nil {
		logger.Error("llm.chat.decode_error",
			"model", model, "error", err, "raw_bytes", len(raw),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return "", common.UpstreamError("decode chat completion", err)
	}
	if len(cc.Choices) == 0 {
		logger.Error("llm.chat.no_choices",
			"model", model, "raw_bytes", len(raw),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return "", common.UpstreamError("chat completion", fmt.Errorf("no choices in response"))
	}

	content := cc.Choices[0].Message.Content
	logger.Info("llm.chat.ok",
		"model", model,
		"content_len", len(content),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return content, nil
}

func (c *Client) buildRequest(model, prompt string, image *llm.Image) map[string]any {
	var content any = prompt
	if image != nil {
		content = []map[string]any{
			{"type": "text", "text": prompt},
			{"type": "image_url", "image_url": map[string]any{"url": llm.DataURL(*image)}},
		}
	}

	body := map[string]any{
		"model":       model,
		"temperature": c.cfg.Temperature,
		"max_tokens":  c.cfg.MaxTokens,
		"messages": []map[string]any{
			{"role": "user", "content": content},
		},
	}
	if c.cfg.JSONMode {
		body["response_format"] = map[string]any{"type": "json_object"}
	}
	return body
}
