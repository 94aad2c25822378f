package extract

import (
	"context"
	"errors"
	"slices"
	"strings"
	"testing"

	"github.com/joseph-ayodele/personal-info-parser/internal/common"
	"github.com/joseph-ayodele/personal-info-parser/internal/llm"
	"github.com/joseph-ayodele/personal-info-parser/internal/llm/llmtest"
	"github.com/joseph-ayodele/personal-info-parser/internal/logging"
	"github.com/joseph-ayodele/personal-info-parser/internal/normalize"
)

var pngBytes = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

// partialLicense is missing eyeColor and dateOfBirth.
const partialLicense = `{
  "fullName": "DOE, JANE ELIZABETH",
  "address": {"street": "456 OAK AVE", "city": "CHICAGO", "state": "IL", "country": "USA", "zipCode": "60601"},
  "documentNumber": "D987654321",
  "expirationDate": "2029-03-22",
  "licenseClass": "D",
  "sex": "F",
  "barcodePresent": true
}`

func newImageExtractor(g llm.Gateway, maxBytes int64) *ImageExtractor {
	return NewImageExtractor(g, normalize.New(g, logging.Discard()), "vision-model", maxBytes, logging.Discard())
}

func TestParseImageFocusedBackfill(t *testing.T) {
	g := llmtest.New(partialLicense, `{"eyeColor":"BRN","dateOfBirth":"03/22/1990","documentNumber":"IGNORED"}`)
	doc, err := newImageExtractor(g, 0).ParseImage(context.Background(), llm.Image{Data: pngBytes})
	if err != nil {
		t.Fatal(err)
	}

	calls := g.Calls()
	if len(calls) != 2 {
		t.Fatalf("expected first pass plus focused retry, got %d calls", len(calls))
	}
	if calls[0].Image.MIMEType != "image/png" || calls[1].Image != calls[0].Image {
		t.Fatal("focused retry must reuse the sniffed image")
	}
	if !strings.Contains(calls[1].Prompt, "Previously missing: eyeColor, dateOfBirth") {
		t.Fatalf("focused prompt does not name the missing fields: %q", calls[1].Prompt)
	}

	if doc.EyeColor != "Brown" || doc.DateOfBirth != "1990-03-22" {
		t.Fatalf("backfill not standardized: eye=%q dob=%q", doc.EyeColor, doc.DateOfBirth)
	}
	if doc.DocumentNumber != "D987654321" {
		t.Fatal("focused values must not override first-pass values")
	}
	for _, w := range []string{
		"Eye color extracted on retry attempt",
		"Date of birth extracted on retry attempt",
		normalize.WarnEyeColorMissing,
		normalize.WarnNameLastFirst,
	} {
		if !slices.Contains(doc.Warnings, w) {
			t.Errorf("missing warning %q in %v", w, doc.Warnings)
		}
	}
}

func TestParseImageCompleteSkipsFocusedRetry(t *testing.T) {
	g := llmtest.New(`{"fullName":"JOHN SMITH","dateOfBirth":"1985-06-15","documentNumber":"S1","eyeColor":"BLU","expirationDate":"2028-06-15"}`)
	doc, err := newImageExtractor(g, 0).ParseImage(context.Background(), llm.Image{Data: pngBytes, MIMEType: "image/png"})
	if err != nil {
		t.Fatal(err)
	}
	if len(g.Calls()) != 1 {
		t.Fatalf("expected a single call, got %d", len(g.Calls()))
	}
	if doc.EyeColor != "Blue" || len(doc.Warnings) != 0 {
		t.Fatalf("unexpected %+v", doc)
	}
}

func TestParseImageFocusedFailureIgnored(t *testing.T) {
	tests := []struct {
		name  string
		reply llmtest.Reply
	}{
		{"gateway error", llmtest.Reply{Err: common.UpstreamError("chat completion request failed", errors.New("503"))}},
		{"unparseable", llmtest.Reply{Content: "no idea"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := llmtest.New(partialLicense).Then(tt.reply)
			doc, err := newImageExtractor(g, 0).ParseImage(context.Background(), llm.Image{Data: pngBytes})
			if err != nil {
				t.Fatalf("focused failure must not fail the request: %v", err)
			}
			if doc.FullName != "DOE, JANE ELIZABETH" || doc.EyeColor != "" {
				t.Fatalf("first-pass record not returned: %+v", doc)
			}
			if !slices.Contains(doc.Warnings, normalize.WarnEyeColorMissing) {
				t.Fatalf("warnings = %v", doc.Warnings)
			}
		})
	}
}

func TestParseImageFocusedRetryCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	calls := 0
	g := llm.GatewayFunc(func(ctx context.Context, model, prompt string, image *llm.Image) (string, error) {
		calls++
		if calls == 1 {
			return partialLicense, nil
		}
		cancel()
		return "", ctx.Err()
	})

	_, err := newImageExtractor(g, 0).ParseImage(ctx, llm.Image{Data: pngBytes})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestParseImageValidation(t *testing.T) {
	g := llmtest.New()
	e := newImageExtractor(g, 8)

	if _, err := e.ParseImage(context.Background(), llm.Image{}); !errors.Is(err, common.ErrInvalidInput) {
		t.Fatalf("empty image: got %v", err)
	}
	if _, err := e.ParseImage(context.Background(), llm.Image{Data: pngBytes}); !errors.Is(err, common.ErrInvalidInput) {
		t.Fatalf("oversized image: got %v", err)
	}
	if len(g.Calls()) != 0 {
		t.Fatal("gateway must not be called for an invalid image")
	}
}

func TestParseImageTwoMalformedResponses(t *testing.T) {
	g := llmtest.New("```\nnot json\n```", "still not json")
	_, err := newImageExtractor(g, 0).ParseImage(context.Background(), llm.Image{Data: pngBytes})
	if !errors.Is(err, common.ErrInvalidResponseFormat) {
		t.Fatalf("expected invalid response format, got %v", err)
	}
	if got := len(g.Calls()); got != 2 {
		t.Fatalf("expected 2 calls, got %d", got)
	}
}
