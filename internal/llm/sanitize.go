package llm

import (
	"math"
	"slices"
)

// SanitizeAnnotations removes confidences and boxes that don't meet the schema
// so the rest of a mapped ID document can still validate. Only these optional
// annotations are touched. Returns the dropped entries, e.g. "confidences.name".
func SanitizeAnnotations(doc map[string]any) []string {
	var dropped []string

	if conf, ok := doc[FieldConfidences].(map[string]any); ok {
		for k, v := range conf {
			if _, ok := unitFloat(v); !ok {
				delete(conf, k)
				dropped = append(dropped, FieldConfidences+"."+k)
			}
		}
	} else {
		doc[FieldConfidences] = map[string]any{}
	}

	if boxes, ok := doc[FieldBoxes].(map[string]any); ok {
		for k, v := range boxes {
			if !validBox(v) {
				delete(boxes, k)
				dropped = append(dropped, FieldBoxes+"."+k)
			}
		}
	} else {
		doc[FieldBoxes] = map[string]any{}
	}

	slices.Sort(dropped)
	return dropped
}

func unitFloat(v any) (float64, bool) {
	f, ok := v.(float64)
	if !ok || math.IsNaN(f) || f < 0 || f > 1 {
		return 0, false
	}
	return f, true
}

func validBox(v any) bool {
	arr, ok := v.([]any)
	if !ok || len(arr) != 4 {
		return false
	}
	for _, n := range arr {
		if _, ok := unitFloat(n); !ok {
			return false
		}
	}
	return true
}
