package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joseph-ayodele/personal-info-parser/internal/app"
	"github.com/joseph-ayodele/personal-info-parser/internal/common"
	"github.com/joseph-ayodele/personal-info-parser/internal/llm"
	"github.com/joseph-ayodele/personal-info-parser/internal/logging"
)

const usage = `usage: llm text "<input>" [times] | llm image <path|url> [times]`

func main() {
	common.LoadDotEnv()
	cfg, err := common.LoadConfig()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	// results go to stdout, logs to stderr
	logger := logging.NewWithWriter(cfg.Logging, os.Stderr)
	slog.SetDefault(logger)

	if len(os.Args) < 3 {
		logger.Error(usage)
		os.Exit(2)
	}
	mode, arg := os.Args[1], os.Args[2]
	times := 1
	if len(os.Args) >= 4 {
		if n, err := strconv.Atoi(os.Args[3]); err == nil && n > 0 {
			times = n
		}
	}

	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(2)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()
	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to build application", "error", err)
		os.Exit(1)
	}

	var run func(ctx context.Context) (any, error)
	switch mode {
	case "text":
		run = func(ctx context.Context) (any, error) { return a.Text.ParseText(ctx, arg) }
	case "image":
		img, err := loadImage(ctx, a, arg)
		if err != nil {
			logger.Error("load image", "arg", arg, "error", err)
			os.Exit(1)
		}
		run = func(ctx context.Context) (any, error) { return a.Image.ParseImage(ctx, img) }
	default:
		logger.Error(usage)
		os.Exit(2)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	failures := 0
	for i := 1; i <= times; i++ {
		runCtx, cancelRun := context.WithTimeout(context.Background(), 2*time.Minute)
		start := time.Now()
		logger.Info("llm.run.start", "iter", i, "mode", mode)

		out, err := run(runCtx)
		cancelRun()
		if err != nil {
			failures++
			logger.Error("llm.run.error", "iter", i, "error", err)
			continue
		}
		logger.Info("llm.run.ok", "iter", i, "elapsed_ms", time.Since(start).Milliseconds())
		if err := enc.Encode(out); err != nil {
			logger.Error("encode result", "error", err)
		}
	}

	logger.Info("done", "mode", mode, "times", times, "failures", failures)
	if failures == times {
		os.Exit(1)
	}
}

// loadImage reads a local file, or fetches anything that looks like a URL.
func loadImage(ctx context.Context, a *app.App, arg string) (llm.Image, error) {
	if strings.Contains(arg, "://") || strings.HasPrefix(arg, "data:") {
		return a.Images.Fetch(ctx, arg)
	}
	data, err := os.ReadFile(arg)
	if err != nil {
		return llm.Image{}, fmt.Errorf("read %s: %w", filepath.Base(arg), err)
	}
	return llm.Image{Data: data, MIMEType: llm.DetectImageMIME(data, arg)}, nil
}
