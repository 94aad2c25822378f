package extract

import (
	"context"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/joseph-ayodele/personal-info-parser/internal/common"
	"github.com/joseph-ayodele/personal-info-parser/internal/entity"
	"github.com/joseph-ayodele/personal-info-parser/internal/llm"
	"github.com/joseph-ayodele/personal-info-parser/internal/normalize"
)

var (
	rePhone = regexp.MustCompile(`(\+?\d{1,3}[-.\s]?)?\(?\d{3}\)?[-.\s]?\d{3}[-.\s]?\d{4}`)
	reZip   = regexp.MustCompile(`\b\d{5}(?:-\d{4})?\b`)
)

// TextExtractor extracts a Person from free text.
type TextExtractor struct {
	gateway    llm.Gateway
	normalizer *normalize.Normalizer
	model      string
	logger     *slog.Logger
}

var _ PersonParser = (*TextExtractor)(nil)

func NewTextExtractor(gateway llm.Gateway, normalizer *normalize.Normalizer, model string, logger *slog.Logger) *TextExtractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &TextExtractor{gateway: gateway, normalizer: normalizer, model: model, logger: logger}
}

// ParseText prompts the model, normalizes its answer (one corrective retry at
// most) and fills an empty phone number or ZIP from the original input.
func (e *TextExtractor) ParseText(ctx context.Context, input string) (entity.Person, error) {
	if strings.TrimSpace(input) == "" {
		return entity.Person{}, common.InvalidArgumentError("input text is required")
	}
	start := time.Now()
	logger := common.LoggerFromContext(ctx, e.logger)
	logger.Info("extract.text.start", "model", e.model, "input_len", len(input))

	cleaned := CleanInput(input)
	raw, err := e.gateway.CompleteChat(ctx, e.model, llm.BuildTextPrompt(cleaned), nil)
	if err != nil {
		return entity.Person{}, err
	}
	p, err := e.normalizer.NormalizePerson(ctx, raw, normalize.Request{Model: e.model, Input: cleaned})
	if err != nil {
		logger.Error("extract.text.normalize_failed", "error", err, "elapsed_ms", time.Since(start).Milliseconds())
		return entity.Person{}, err
	}

	filled := applyRegexFallback(&p, input)
	logger.Info("extract.text.ok",
		"regex_filled", filled,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return p, nil
}

// applyRegexFallback only fills empty fields; a model value always wins.
func applyRegexFallback(p *entity.Person, input string) []string {
	var filled []string
	if strings.TrimSpace(p.PhoneNumber) == "" {
		if m := rePhone.FindString(input); m != "" {
			p.PhoneNumber = strings.TrimSpace(m)
			filled = append(filled, llm.FieldPhoneNumber)
		}
	}
	if strings.TrimSpace(p.ZipCode) == "" {
		if m := reZip.FindString(input); m != "" {
			p.ZipCode = m
			filled = append(filled, llm.FieldZipCode)
		}
	}
	return filled
}
