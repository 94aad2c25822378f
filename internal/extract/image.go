package extract

import (
	"context"
	"log/slog"
	"time"

	"github.com/joseph-ayodele/personal-info-parser/constants"
	"github.com/joseph-ayodele/personal-info-parser/internal/common"
	"github.com/joseph-ayodele/personal-info-parser/internal/entity"
	"github.com/joseph-ayodele/personal-info-parser/internal/llm"
	"github.com/joseph-ayodele/personal-info-parser/internal/normalize"
)

// ImageExtractor extracts an IDDocument from a driver's license image.
type ImageExtractor struct {
	gateway    llm.Gateway
	normalizer *normalize.Normalizer
	model      string
	maxBytes   int64
	logger     *slog.Logger
}

var _ IDDocumentParser = (*ImageExtractor)(nil)

func NewImageExtractor(gateway llm.Gateway, normalizer *normalize.Normalizer, model string, maxBytes int64, logger *slog.Logger) *ImageExtractor {
	if maxBytes <= 0 {
		maxBytes = constants.MaxImageBytesDefault
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ImageExtractor{gateway: gateway, normalizer: normalizer, model: model, maxBytes: maxBytes, logger: logger}
}

// ParseImage runs the field-by-field prompt, normalizes the answer and, when
// a mandatory field is still empty, makes one focused re-extraction.
func (e *ImageExtractor) ParseImage(ctx context.Context, img llm.Image) (entity.IDDocument, error) {
	if err := e.prepare(&img); err != nil {
		return entity.IDDocument{}, err
	}
	start := time.Now()
	logger := common.LoggerFromContext(ctx, e.logger)
	logger.Info("extract.image.start", "model", e.model, "mime", img.MIMEType, "image_bytes", len(img.Data))

	raw, err := e.gateway.CompleteChat(ctx, e.model, llm.BuildImagePrompt(), &img)
	if err != nil {
		return entity.IDDocument{}, err
	}
	doc, err := e.normalizer.NormalizeIDDocument(ctx, raw, normalize.Request{Model: e.model, Image: &img})
	if err != nil {
		logger.Error("extract.image.normalize_failed", "error", err, "elapsed_ms", time.Since(start).Milliseconds())
		return entity.IDDocument{}, err
	}

	if missing := normalize.MissingFocused(&doc); len(missing) > 0 {
		if err := e.focusedRetry(ctx, &img, &doc, missing, logger); err != nil {
			return entity.IDDocument{}, err
		}
	}

	logger.Info("extract.image.ok",
		"warnings", len(doc.Warnings),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return doc, nil
}

// focusedRetry failures are logged and swallowed; only a cancelled or expired
// request context is returned.
func (e *ImageExtractor) focusedRetry(ctx context.Context, img *llm.Image, doc *entity.IDDocument, missing []string, logger *slog.Logger) error {
	logger.Info("extract.image.focused_retry", "missing", missing)

	raw, err := e.gateway.CompleteChat(ctx, e.model, llm.BuildFocusedPrompt(missing), img)
	if err != nil {
		if ctx.Err() != nil {
			return err
		}
		logger.Warn("extract.image.focused_retry_failed", "error", err)
		return nil
	}
	focused, err := e.normalizer.DecodeFocused(raw)
	if err != nil {
		logger.Warn("extract.image.focused_retry_unparseable", "error", err, "raw_bytes", len(raw))
		return nil
	}
	filled := e.normalizer.Backfill(doc, focused)
	logger.Info("extract.image.focused_retry_done", "filled", filled)
	return nil
}

func (e *ImageExtractor) prepare(img *llm.Image) error {
	if len(img.Data) == 0 {
		return common.InvalidArgumentError("image is empty")
	}
	if int64(len(img.Data)) > e.maxBytes {
		return common.InvalidArgumentErrorf("image exceeds %d bytes", e.maxBytes)
	}
	if !constants.IsImageMIME(img.MIMEType) {
		img.MIMEType = llm.DetectImageMIME(img.Data, "")
	}
	return nil
}
