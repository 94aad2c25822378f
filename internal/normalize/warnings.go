package normalize

import (
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/joseph-ayodele/personal-info-parser/internal/entity"
	"github.com/joseph-ayodele/personal-info-parser/internal/llm"
	"github.com/joseph-ayodele/personal-info-parser/internal/utils"
)

// Warnings are part of the API contract; clients match on these strings.
const (
	WarnFullNameMissing       = "Full name is missing (mandatory field)"
	WarnDateOfBirthMissing    = "Date of birth is missing (mandatory field)"
	WarnDocumentNumberMissing = "Document number is missing (mandatory field)"
	WarnEyeColorMissing       = "Eye color is missing (mandatory field)"
	WarnExpirationMissing     = "Expiration date is missing (needed to confirm the license is valid)"

	WarnDateOfBirthUncertain = "Date of birth format may be uncertain"
	WarnExpirationUncertain  = "Expiration date format may be uncertain"
	WarnIssueDateUncertain   = "Issue date format may be uncertain"
	WarnNameLastFirst        = "Full name may be in 'Last, First' order"
	WarnNamePartial          = "Full name may be partially extracted"
	WarnAnnotationsDiscarded = "Some confidence/box annotations were discarded as invalid"
)

const (
	retryWarningSuffix    = " extracted on retry attempt"
	minFullNameLength     = 3
	documentNumberVisible = 4
)

// fieldLabels are the human-readable names used in warnings.
var fieldLabels = map[string]string{
	llm.FieldFullName:       "Full name",
	llm.FieldDateOfBirth:    "Date of birth",
	llm.FieldDocumentNumber: "Document number",
	llm.FieldEyeColor:       "Eye color",
	llm.FieldExpirationDate: "Expiration date",
	llm.FieldIssueDate:      "Issue date",
	llm.FieldLicenseClass:   "License class",
}

// RetryWarning is appended for a field filled in by the focused re-extraction.
func RetryWarning(field string) string {
	label, ok := fieldLabels[field]
	if !ok {
		label = field
	}
	return label + retryWarningSuffix
}

// addWarning appends w unless the exact string is already present.
func addWarning(doc *entity.IDDocument, w string) {
	if slices.Contains(doc.Warnings, w) {
		return
	}
	doc.Warnings = append(doc.Warnings, w)
}

// mandatoryChecks pairs each mandatory field with its warning.
var mandatoryChecks = []struct {
	get  func(*entity.IDDocument) string
	warn string
}{
	{func(d *entity.IDDocument) string { return d.FullName }, WarnFullNameMissing},
	{func(d *entity.IDDocument) string { return d.DateOfBirth }, WarnDateOfBirthMissing},
	{func(d *entity.IDDocument) string { return d.DocumentNumber }, WarnDocumentNumberMissing},
	{func(d *entity.IDDocument) string { return d.EyeColor }, WarnEyeColorMissing},
	{func(d *entity.IDDocument) string { return d.ExpirationDate }, WarnExpirationMissing},
}

func checkMandatory(doc *entity.IDDocument) {
	for _, c := range mandatoryChecks {
		if strings.TrimSpace(c.get(doc)) == "" {
			addWarning(doc, c.warn)
		}
	}
}

func checkName(doc *entity.IDDocument) {
	name := strings.TrimSpace(doc.FullName)
	if name == "" {
		return
	}
	if strings.Contains(name, ",") {
		addWarning(doc, WarnNameLastFirst)
	}
	if utf8.RuneCountInString(name) < minFullNameLength {
		addWarning(doc, WarnNamePartial)
	}
}

// maskDocumentNumber rewrites every occurrence of the document number inside
// warnings to its last four characters.
func maskDocumentNumber(doc *entity.IDDocument) {
	num := strings.TrimSpace(doc.DocumentNumber)
	if utf8.RuneCountInString(num) <= documentNumberVisible {
		return
	}
	masked := utils.MaskTail(num, documentNumberVisible)
	for i, w := range doc.Warnings {
		doc.Warnings[i] = strings.ReplaceAll(w, num, masked)
	}
}
