package normalize

import (
	"strings"

	"github.com/joseph-ayodele/personal-info-parser/internal/entity"
	"github.com/joseph-ayodele/personal-info-parser/internal/llm"
)

// FocusedTriggers are the fields whose absence triggers a focused re-extraction.
var FocusedTriggers = []string{
	llm.FieldFullName, llm.FieldEyeColor, llm.FieldDateOfBirth, llm.FieldDocumentNumber,
}

// MissingFocused returns the trigger fields that are still empty on doc.
func MissingFocused(doc *entity.IDDocument) []string {
	var missing []string
	for _, f := range FocusedTriggers {
		if p := fieldPtr(doc, f); p != nil && strings.TrimSpace(*p) == "" {
			missing = append(missing, f)
		}
	}
	return missing
}

// Backfill copies focused values into empty fields of doc, appending one
// "<Field> extracted on retry attempt" warning per filled field. Filled dates
// and eye color are standardized the same way as a first pass. It returns the
// fields that were filled.
func (n *Normalizer) Backfill(doc *entity.IDDocument, focused map[string]string) []string {
	doc.EnsureCollections()
	var filled []string
	for _, f := range llm.FocusedFields {
		p := fieldPtr(doc, f)
		v := focused[f]
		if p == nil || strings.TrimSpace(*p) != "" || strings.TrimSpace(v) == "" {
			continue
		}
		*p = v
		filled = append(filled, f)
		addWarning(doc, RetryWarning(f))

		switch f {
		case llm.FieldEyeColor:
			standardizeEyeColor(doc)
		case llm.FieldDateOfBirth:
			standardizeDateField(doc, f, WarnDateOfBirthUncertain)
		case llm.FieldExpirationDate:
			standardizeDateField(doc, f, WarnExpirationUncertain)
		}
	}
	if len(filled) > 0 {
		checkName(doc)
		maskDocumentNumber(doc)
	}
	return filled
}
