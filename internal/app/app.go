// Package app wires configuration into the gateway, extractors and lookup
// store shared by the service and the CLI.
package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/joseph-ayodele/personal-info-parser/internal/common"
	"github.com/joseph-ayodele/personal-info-parser/internal/extract"
	"github.com/joseph-ayodele/personal-info-parser/internal/llm"
	"github.com/joseph-ayodele/personal-info-parser/internal/llm/anthropic"
	"github.com/joseph-ayodele/personal-info-parser/internal/llm/openai"
	"github.com/joseph-ayodele/personal-info-parser/internal/normalize"
	"github.com/joseph-ayodele/personal-info-parser/internal/repository"
	"github.com/joseph-ayodele/personal-info-parser/internal/server"
	"github.com/joseph-ayodele/personal-info-parser/internal/storage"
)

// App is the assembled object graph.
type App struct {
	Config  *common.Config
	Gateway llm.Gateway
	Lookup  repository.LookupRepository
	Text    *extract.TextExtractor
	Image   *extract.ImageExtractor
	Images  *extract.ImageFetcher
	Logger  *slog.Logger
}

// NewGateway builds the chat gateway for the configured provider.
func NewGateway(cfg common.LLMConfig, logger *slog.Logger) (llm.Gateway, error) {
	switch cfg.Provider {
	case common.ProviderGroq, common.ProviderOpenAI:
		baseURL := cfg.BaseURL
		if baseURL == "" {
			baseURL = openai.GroqBaseURL
			if cfg.Provider == common.ProviderOpenAI {
				baseURL = openai.OpenAIBaseURL
			}
		}
		return openai.NewClient(openai.Config{
			APIKey:      cfg.APIKey,
			BaseURL:     baseURL,
			MaxTokens:   cfg.MaxTokens,
			Temperature: cfg.Temperature,
			Timeout:     cfg.Timeout,
			JSONMode:    cfg.JSONMode,
		}, logger), nil
	case common.ProviderAnthropic:
		return anthropic.NewClient(anthropic.Config{
			APIKey:      cfg.APIKey,
			BaseURL:     cfg.BaseURL,
			MaxTokens:   cfg.MaxTokens,
			Temperature: cfg.Temperature,
			Timeout:     cfg.Timeout,
		}, logger), nil
	}
	return nil, common.NotConfiguredError(fmt.Sprintf("unknown LLM provider %q", cfg.Provider))
}

// New assembles the application. S3 is only wired when storage is configured.
func New(ctx context.Context, cfg *common.Config, logger *slog.Logger) (*App, error) {
	gateway, err := NewGateway(cfg.LLM, logger)
	if err != nil {
		return nil, err
	}
	return NewWithGateway(ctx, cfg, gateway, logger)
}

// NewWithGateway is New with an explicit gateway, e.g. a scripted one in tests.
func NewWithGateway(ctx context.Context, cfg *common.Config, gateway llm.Gateway, logger *slog.Logger) (*App, error) {
	lookup, err := repository.NewLookupRepository(cfg.Lookup.SeedPath, logger)
	if err != nil {
		return nil, err
	}

	var objects extract.ObjectGetter
	if cfg.Storage.Enabled() {
		store, err := storage.NewS3Store(ctx, cfg.Storage, logger)
		if err != nil {
			return nil, err
		}
		objects = store
	}

	normalizer := normalize.New(gateway, logger)
	return &App{
		Config:  cfg,
		Gateway: gateway,
		Lookup:  lookup,
		Text:    extract.NewTextExtractor(gateway, normalizer, cfg.LLM.TextModel, logger),
		Image:   extract.NewImageExtractor(gateway, normalizer, cfg.LLM.ImageModel, cfg.Image.MaxBytes, logger),
		Images:  extract.NewImageFetcher(cfg.Image, objects, logger),
		Logger:  logger,
	}, nil
}

// Server returns the HTTP handlers bound to this app.
func (a *App) Server() *server.Server {
	return server.New(server.Options{
		Lookup:        a.Lookup,
		Text:          a.Text,
		Image:         a.Image,
		Images:        a.Images,
		MaxImageBytes: a.Config.Image.MaxBytes,
		Development:   a.Config.IsDevelopment(),
		Logger:        a.Logger,
	})
}
