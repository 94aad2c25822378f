package llm

import (
	"cmp"
	"encoding/json"
	"log/slog"
	"slices"
	"strconv"
	"strings"
)

// FoldKey lowercases a key and strips separators, so "zip_code", "ZipCode"
// and "zip-code" all fold to "zipcode".
func FoldKey(k string) string {
	var b strings.Builder
	b.Grow(len(k))
	for _, r := range strings.ToLower(k) {
		switch r {
		case '_', '-', ' ', '.':
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// keyTable maps folded keys to canonical field names.
type keyTable map[string]string

func newKeyTable(entries map[string][]string) keyTable {
	t := keyTable{}
	for canonical, synonyms := range entries {
		t[FoldKey(canonical)] = canonical
		for _, s := range synonyms {
			t[FoldKey(s)] = canonical
		}
	}
	return t
}

var addressKeys = newKeyTable(map[string][]string{
	FieldStreet:  {"street_address", "address1", "address_line1", "address_line_1", "line1", "street_line"},
	FieldCity:    {"town", "locality", "city_name"},
	FieldState:   {"province", "state_province", "region", "state_code"},
	FieldCountry: {"nation", "country_name", "country_code"},
	FieldZipCode: {"zip", "postal_code", "postcode", "zip_postal_code", "zipcode"},
})

var personKeys = newKeyTable(map[string][]string{
	FieldName:        {"full_name", "fullname", "person_name", "holder_name"},
	FieldStreet:      {"street_address", "address1", "address_line1", "address_line_1", "line1"},
	FieldCity:        {"town", "locality"},
	FieldState:       {"province", "state_province", "region"},
	FieldCountry:     {"nation", "country_name"},
	FieldZipCode:     {"zip", "postal_code", "postcode", "zip_postal_code"},
	FieldPhoneNumber: {"phone", "telephone", "tel", "phone_no", "mobile", "cell", "cell_phone", "phone_number"},
})

var idDocumentKeys = newKeyTable(map[string][]string{
	FieldFullName:        {"name", "full_name", "holder_name", "full_names"},
	FieldDateOfBirth:     {"dob", "birth_date", "birthdate", "date_of_birth", "birthday"},
	FieldAddress:         {"addr", "residence_address", "mailing_address"},
	FieldDocumentNumber:  {"document_number", "license_number", "licence_number", "dl_number", "dln", "license_no", "lic_no", "id_number", "document_no", "drivers_license_number"},
	FieldExpirationDate:  {"expiration_date", "expiry_date", "expiration", "expires", "exp", "exp_date", "expiry"},
	FieldIssueDate:       {"issue_date", "issued", "issued_on", "date_of_issue", "iss", "iss_date"},
	FieldLicenseClass:    {"license_class", "licence_class", "class", "dl_class", "classification"},
	FieldEndorsements:    {"endorsement", "end"},
	FieldRestrictions:    {"restriction", "rest", "restr"},
	FieldSex:             {"gender"},
	FieldEyeColor:        {"eye_color", "eye_colour", "eyes", "eye"},
	FieldHeight:          {"hgt", "ht"},
	FieldDetectedCountry: {"detected_country", "issuing_country"},
	FieldDetectedState:   {"detected_state", "issuing_state", "jurisdiction"},
	FieldBarcodePresent:  {"barcode_present", "barcode", "has_barcode"},
	FieldWarnings:        {"warning"},
	FieldConfidences:     {"confidence", "confidence_scores", "field_confidences"},
	FieldBoxes:           {"bounding_boxes", "bboxes", "bbox", "field_boxes"},
})

var focusedKeys = func() keyTable {
	t := keyTable{}
	for k, v := range idDocumentKeys {
		if slices.Contains(FocusedFields, v) {
			t[k] = v
		}
	}
	return t
}()

// orderedKeys returns keys of m with exact canonical spellings first, then
// alphabetical, so mapping is deterministic when synonyms collide.
func orderedKeys(m map[string]any, table keyTable) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	exact := func(k string) int {
		if table[FoldKey(k)] == k {
			return 0
		}
		return 1
	}
	slices.SortFunc(keys, func(a, b string) int {
		if c := cmp.Compare(exact(a), exact(b)); c != 0 {
			return c
		}
		return cmp.Compare(a, b)
	})
	return keys
}

// CoerceString turns a scalar JSON value into a string. Strings are kept
// byte-for-byte, null becomes "". ok is false for objects and arrays.
func CoerceString(v any) (string, bool) {
	switch t := v.(type) {
	case nil:
		return "", true
	case string:
		return t, true
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	case json.Number:
		return t.String(), true
	case bool:
		return strconv.FormatBool(t), true
	}
	return "", false
}

// CoerceBool accepts JSON booleans, "true"/"yes"/"y"/"1" strings and non-zero numbers.
func CoerceBool(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case string:
		switch strings.ToLower(strings.TrimSpace(t)) {
		case "true", "yes", "y", "1":
			return true
		}
	case float64:
		return t != 0
	}
	return false
}

// mapStrings copies the string fields of src into dst through table. A
// non-empty value is never replaced by a later synonym.
func mapStrings(src map[string]any, table keyTable, dst map[string]any, dropped *[]string, prefix string) {
	for _, k := range orderedKeys(src, table) {
		canonical, ok := table[FoldKey(k)]
		if !ok {
			continue
		}
		s, ok := CoerceString(src[k])
		if !ok {
			*dropped = append(*dropped, prefix+k+"(type)")
			continue
		}
		if cur, _ := dst[canonical].(string); cur == "" {
			dst[canonical] = s
		}
	}
}

func emptyStrings(fields []string) map[string]any {
	m := make(map[string]any, len(fields))
	for _, f := range fields {
		m[f] = ""
	}
	return m
}

// MapPersonKeys maps a decoded model object onto the canonical person shape.
// A nested "address" object is flattened. Unknown keys are dropped and logged.
func MapPersonKeys(m map[string]any, logger *slog.Logger) map[string]any {
	out := emptyStrings(PersonFields)
	var dropped []string

	flat := make(map[string]any, len(m))
	var nested any
	for k, v := range m {
		if FoldKey(k) == "address" {
			nested = v
			continue
		}
		flat[k] = v
	}
	switch t := nested.(type) {
	case map[string]any:
		for nk, nv := range t {
			if _, exists := flat[nk]; !exists {
				flat[nk] = nv
			}
		}
	case string:
		// a plain address string is only a street fallback
		if _, exists := flat[FieldStreet]; !exists && t != "" {
			flat[FieldStreet] = t
		}
	}

	for k := range flat {
		if _, ok := personKeys[FoldKey(k)]; !ok {
			dropped = append(dropped, k+"(unknown)")
		}
	}
	mapStrings(flat, personKeys, out, &dropped, "")
	logDropped(logger, "person", dropped)
	return out
}

// MapIDDocumentKeys maps a decoded model object onto the canonical ID-document
// shape. Flat top-level address keys are moved into "address" when absent there.
func MapIDDocumentKeys(m map[string]any, logger *slog.Logger) map[string]any {
	out := emptyStrings(IDDocumentStringFields)
	address := emptyStrings(AddressFields)
	out[FieldAddress] = address
	out[FieldBarcodePresent] = false
	out[FieldWarnings] = []any{}
	out[FieldConfidences] = map[string]any{}
	out[FieldBoxes] = map[string]any{}

	var dropped []string
	strs := map[string]any{}
	flatAddress := map[string]any{}

	for _, k := range orderedKeys(m, idDocumentKeys) {
		v := m[k]
		canonical, ok := idDocumentKeys[FoldKey(k)]
		if !ok {
			if _, isAddr := addressKeys[FoldKey(k)]; isAddr {
				flatAddress[k] = v
				continue
			}
			dropped = append(dropped, k+"(unknown)")
			continue
		}
		switch canonical {
		case FieldAddress:
			switch t := v.(type) {
			case map[string]any:
				for nk := range t {
					if _, ok := addressKeys[FoldKey(nk)]; !ok {
						dropped = append(dropped, "address."+nk+"(unknown)")
					}
				}
				mapStrings(t, addressKeys, address, &dropped, "address.")
			case string:
				if t != "" {
					flatAddress[FieldStreet] = t
				}
			case nil:
			default:
				dropped = append(dropped, k+"(type)")
			}
		case FieldBarcodePresent:
			out[FieldBarcodePresent] = CoerceBool(v)
		case FieldWarnings:
			out[FieldWarnings] = append(out[FieldWarnings].([]any), coerceWarnings(v)...)
		case FieldConfidences, FieldBoxes:
			if obj, ok := v.(map[string]any); ok {
				merged := out[canonical].(map[string]any)
				for ak, av := range obj {
					if canonical == FieldConfidences {
						av = coerceConfidence(av)
					}
					merged[ak] = av
				}
			} else if v != nil {
				dropped = append(dropped, k+"(type)")
			}
		default:
			strs[k] = v
		}
	}

	mapStrings(strs, idDocumentKeys, out, &dropped, "")
	// flat keys fill only what the nested object left empty
	mapStrings(flatAddress, addressKeys, address, &dropped, "")

	logDropped(logger, "id_document", dropped)
	return out
}

// MapFocusedKeys maps a focused re-extraction onto the six requested fields.
func MapFocusedKeys(m map[string]any, logger *slog.Logger) map[string]any {
	out := map[string]any{}
	var dropped []string
	for k := range m {
		if _, ok := focusedKeys[FoldKey(k)]; !ok {
			dropped = append(dropped, k+"(unknown)")
		}
	}
	mapStrings(m, focusedKeys, out, &dropped, "")
	logDropped(logger, "focused", dropped)
	return out
}

func coerceWarnings(v any) []any {
	switch t := v.(type) {
	case nil:
		return nil
	case string:
		if strings.TrimSpace(t) == "" {
			return nil
		}
		return []any{t}
	case []any:
		out := make([]any, 0, len(t))
		for _, item := range t {
			if s, ok := CoerceString(item); ok && strings.TrimSpace(s) != "" {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

// coerceConfidence turns numeric strings into numbers and percentages into 0..1.
func coerceConfidence(v any) any {
	s, ok := v.(string)
	if !ok {
		return v
	}
	s = strings.TrimSpace(s)
	pct := strings.HasSuffix(s, "%")
	f, err := strconv.ParseFloat(strings.TrimSuffix(s, "%"), 64)
	if err != nil {
		return v
	}
	if pct {
		f /= 100
	}
	return f
}

func logDropped(logger *slog.Logger, shape string, dropped []string) {
	if len(dropped) == 0 {
		return
	}
	if logger == nil {
		logger = slog.Default()
	}
	slices.Sort(dropped)
	logger.Warn("llm.normalize.keys_dropped", "shape", shape, "dropped", dropped)
}
