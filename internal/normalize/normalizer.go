package normalize

import (
	"context"
	"log/slog"
	"strings"

	"github.com/joseph-ayodele/personal-info-parser/constants"
	"github.com/joseph-ayodele/personal-info-parser/internal/common"
	"github.com/joseph-ayodele/personal-info-parser/internal/entity"
	"github.com/joseph-ayodele/personal-info-parser/internal/llm"
	"github.com/joseph-ayodele/personal-info-parser/internal/utils"
)

var (
	personSchema     = llm.MustCompileSchema("person.json", llm.BuildPersonJSONSchema())
	idDocumentSchema = llm.MustCompileSchema("id_document.json", llm.BuildIDDocumentJSONSchema())
	focusedSchema    = llm.MustCompileSchema("focused.json", llm.BuildFocusedJSONSchema())
)

// Request carries what a corrective retry must repeat.
type Request struct {
	Model string
	Image *llm.Image
	Input string // prompt text the first call was built from, if any
}

// Normalizer turns raw model output into typed records. It owns the single
// corrective retry and every mutation of IDDocument.Warnings.
type Normalizer struct {
	gateway llm.Gateway
	logger  *slog.Logger
}

func New(gateway llm.Gateway, logger *slog.Logger) *Normalizer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Normalizer{gateway: gateway, logger: logger}
}

// DecodePerson parses one model response into a Person.
func (n *Normalizer) DecodePerson(raw string) (entity.Person, ParseOutcome, error) {
	m, err := decodeObject(raw)
	if err != nil {
		return entity.Person{}, ParseRetryable, err
	}
	mapped := llm.MapPersonKeys(m, n.logger)
	if err := llm.ValidateValue(personSchema, mapped); err != nil {
		return entity.Person{}, ParseRetryable, err
	}
	var p entity.Person
	if err := remarshal(mapped, &p); err != nil {
		return entity.Person{}, ParseRetryable, err
	}
	return p, ParseOK, nil
}

// DecodeIDDocument parses one model response into an IDDocument. Invalid
// confidence/box annotations are discarded rather than failing the parse.
func (n *Normalizer) DecodeIDDocument(raw string) (entity.IDDocument, ParseOutcome, error) {
	m, err := decodeObject(raw)
	if err != nil {
		return entity.IDDocument{}, ParseRetryable, err
	}
	mapped := llm.MapIDDocumentKeys(m, n.logger)

	discarded := false
	if err := llm.ValidateValue(idDocumentSchema, mapped); err != nil {
		dropped := llm.SanitizeAnnotations(mapped)
		if vErr := llm.ValidateValue(idDocumentSchema, mapped); vErr != nil {
			return entity.IDDocument{}, ParseRetryable, vErr
		}
		n.logger.Warn("normalize.annotations_sanitized", "dropped", dropped)
		discarded = len(dropped) > 0
	}

	doc := entity.NewIDDocument()
	if err := remarshal(mapped, &doc); err != nil {
		return entity.IDDocument{}, ParseRetryable, err
	}
	doc.EnsureCollections()
	if discarded {
		addWarning(&doc, WarnAnnotationsDiscarded)
	}
	return doc, ParseOK, nil
}

// DecodeFocused parses a focused re-extraction into field -> value.
func (n *Normalizer) DecodeFocused(raw string) (map[string]string, error) {
	m, err := decodeObject(raw)
	if err != nil {
		return nil, err
	}
	mapped := llm.MapFocusedKeys(m, n.logger)
	if err := llm.ValidateValue(focusedSchema, mapped); err != nil {
		return nil, err
	}
	out := make(map[string]string, len(mapped))
	for k, v := range mapped {
		if s, _ := v.(string); strings.TrimSpace(s) != "" {
			out[k] = s
		}
	}
	return out, nil
}

// NormalizePerson decodes raw, retrying once with a corrective prompt.
func (n *Normalizer) NormalizePerson(ctx context.Context, raw string, req Request) (entity.Person, error) {
	p, err := parseWithRetry(ctx, n, raw, req, "personal information", llm.PersonTemplate, n.DecodePerson)
	if err != nil {
		return entity.Person{}, err
	}
	return p, nil
}

// NormalizeIDDocument decodes raw, retrying once with a corrective prompt, and
// standardizes the result whichever attempt produced it.
func (n *Normalizer) NormalizeIDDocument(ctx context.Context, raw string, req Request) (entity.IDDocument, error) {
	doc, err := parseWithRetry(ctx, n, raw, req, "driver's license data", llm.IDDocumentTemplate, n.DecodeIDDocument)
	if err != nil {
		return entity.IDDocument{}, err
	}
	n.Standardize(&doc)

	logger := common.LoggerFromContext(ctx, n.logger)
	logger.Info("normalize.id_document.ok",
		"document_number", utils.MaskTail(doc.DocumentNumber, 4),
		"warnings", len(doc.Warnings),
	)
	return doc, nil
}

// parseWithRetry runs decode on raw; a retryable failure triggers exactly one
// corrective gateway call. A second failure is terminal and reports the
// first parse error.
func parseWithRetry[T any](ctx context.Context, n *Normalizer, raw string, req Request, subject, template string,
	decode func(string) (T, ParseOutcome, error)) (T, error) {
	var zero T
	logger := common.LoggerFromContext(ctx, n.logger)

	rec, outcome, firstErr := decode(raw)
	if outcome == ParseOK {
		return rec, nil
	}
	logger.Warn("normalize.parse_failed",
		"attempt", 1, "outcome", outcome.String(), "error", firstErr, "raw_bytes", len(raw))

	if n.gateway == nil {
		return zero, common.InvalidResponseFormatError(firstErr)
	}
	retryRaw, err := n.gateway.CompleteChat(ctx, req.Model, llm.BuildRetryPrompt(subject, template, req.Input), req.Image)
	if err != nil {
		return zero, err
	}

	rec, outcome, retryErr := decode(retryRaw)
	if outcome == ParseOK {
		logger.Info("normalize.retry_succeeded")
		return rec, nil
	}
	logger.Error("normalize.parse_failed",
		"attempt", 2, "outcome", ParseTerminal.String(), "error", retryErr, "raw_bytes", len(retryRaw))
	return zero, common.InvalidResponseFormatError(firstErr)
}

// Standardize rewrites dates and eye color and appends data-quality warnings.
// Warnings already on the document are kept.
func (n *Normalizer) Standardize(doc *entity.IDDocument) {
	doc.EnsureCollections()
	standardizeDates(doc)
	standardizeEyeColor(doc)
	checkMandatory(doc)
	checkName(doc)
	maskDocumentNumber(doc)
}

var dateFields = []struct {
	field string
	warn  string
}{
	{llm.FieldDateOfBirth, WarnDateOfBirthUncertain},
	{llm.FieldExpirationDate, WarnExpirationUncertain},
	{llm.FieldIssueDate, WarnIssueDateUncertain},
}

func standardizeDates(doc *entity.IDDocument) {
	for _, df := range dateFields {
		standardizeDateField(doc, df.field, df.warn)
	}
}

func standardizeDateField(doc *entity.IDDocument, field, warn string) {
	p := fieldPtr(doc, field)
	if p == nil || *p == "" {
		return
	}
	v, ok := StandardizeDate(*p)
	*p = v
	if !ok {
		addWarning(doc, warn)
	}
}

func standardizeEyeColor(doc *entity.IDDocument) {
	if c, ok := constants.CanonicalizeEyeColor(doc.EyeColor); ok {
		doc.EyeColor = string(c)
	}
}

func fieldPtr(doc *entity.IDDocument, field string) *string {
	switch field {
	case llm.FieldFullName:
		return &doc.FullName
	case llm.FieldDateOfBirth:
		return &doc.DateOfBirth
	case llm.FieldDocumentNumber:
		return &doc.DocumentNumber
	case llm.FieldExpirationDate:
		return &doc.ExpirationDate
	case llm.FieldIssueDate:
		return &doc.IssueDate
	case llm.FieldLicenseClass:
		return &doc.LicenseClass
	case llm.FieldEyeColor:
		return &doc.EyeColor
	}
	return nil
}
