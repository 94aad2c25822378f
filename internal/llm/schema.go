package llm

// Canonical field names, as serialized on the wire.
const (
	FieldName        = "name"
	FieldStreet      = "street"
	FieldCity        = "city"
	FieldState       = "state"
	FieldCountry     = "country"
	FieldZipCode     = "zipCode"
	FieldPhoneNumber = "phoneNumber"

	FieldFullName        = "fullName"
	FieldDateOfBirth     = "dateOfBirth"
	FieldAddress         = "address"
	FieldDocumentNumber  = "documentNumber"
	FieldExpirationDate  = "expirationDate"
	FieldIssueDate       = "issueDate"
	FieldLicenseClass    = "licenseClass"
	FieldEndorsements    = "endorsements"
	FieldRestrictions    = "restrictions"
	FieldSex             = "sex"
	FieldEyeColor        = "eyeColor"
	FieldHeight          = "height"
	FieldDetectedCountry = "detectedCountry"
	FieldDetectedState   = "detectedState"
	FieldBarcodePresent  = "barcodePresent"
	FieldWarnings        = "warnings"
	FieldConfidences     = "confidences"
	FieldBoxes           = "boxes"
)

var (
	PersonFields  = []string{FieldName, FieldStreet, FieldCity, FieldState, FieldCountry, FieldZipCode, FieldPhoneNumber}
	AddressFields = []string{FieldStreet, FieldCity, FieldState, FieldCountry, FieldZipCode}

	// IDDocumentStringFields are the top-level string fields of an ID document.
	IDDocumentStringFields = []string{
		FieldFullName, FieldDateOfBirth, FieldDocumentNumber, FieldExpirationDate, FieldIssueDate,
		FieldLicenseClass, FieldEndorsements, FieldRestrictions, FieldSex, FieldEyeColor, FieldHeight,
		FieldDetectedCountry, FieldDetectedState,
	}

	// FocusedFields are requested by the focused re-extraction.
	FocusedFields = []string{
		FieldFullName, FieldEyeColor, FieldDateOfBirth, FieldDocumentNumber, FieldExpirationDate, FieldLicenseClass,
	}
)

func stringProps(fields []string) map[string]any {
	props := make(map[string]any, len(fields))
	for _, f := range fields {
		props[f] = map[string]any{"type": "string"}
	}
	return props
}

// BuildPersonJSONSchema returns the JSON-Schema (draft 2020-12 subset) of a mapped person record.
func BuildPersonJSONSchema() map[string]any {
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties":           stringProps(PersonFields),
		"required":             PersonFields,
	}
}

// BuildIDDocumentJSONSchema returns the JSON-Schema of a mapped ID document.
func BuildIDDocumentJSONSchema() map[string]any {
	props := stringProps(IDDocumentStringFields)
	props[FieldAddress] = map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties":           stringProps(AddressFields),
		"required":             AddressFields,
	}
	props[FieldBarcodePresent] = map[string]any{"type": "boolean"}
	props[FieldWarnings] = map[string]any{
		"type":  "array",
		"items": map[string]any{"type": "string"},
	}
	props[FieldConfidences] = map[string]any{
		"type":                 "object",
		"additionalProperties": unitNumber(),
	}
	props[FieldBoxes] = map[string]any{
		"type": "object",
		"additionalProperties": map[string]any{
			"type":     "array",
			"items":    unitNumber(),
			"minItems": 4,
			"maxItems": 4,
		},
	}

	required := append([]string{}, IDDocumentStringFields...)
	required = append(required, FieldAddress, FieldBarcodePresent, FieldWarnings, FieldConfidences, FieldBoxes)

	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties":           props,
		"required":             required,
	}
}

// BuildFocusedJSONSchema returns the JSON-Schema of a mapped focused re-extraction.
func BuildFocusedJSONSchema() map[string]any {
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties":           stringProps(FocusedFields),
	}
}

func unitNumber() map[string]any {
	return map[string]any{"type": "number", "minimum": 0.0, "maximum": 1.0}
}
