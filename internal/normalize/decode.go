package normalize

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ParseOutcome classifies one attempt to turn model output into a record.
type ParseOutcome int

const (
	ParseOK ParseOutcome = iota
	// ParseRetryable means a corrective follow-up call may still succeed.
	ParseRetryable
	// ParseTerminal means no further attempt will be made.
	ParseTerminal
)

func (o ParseOutcome) String() string {
	switch o {
	case ParseOK:
		return "ok"
	case ParseRetryable:
		return "retryable"
	case ParseTerminal:
		return "terminal"
	}
	return fmt.Sprintf("ParseOutcome(%d)", int(o))
}

var (
	errEmptyResponse = errors.New("empty model response")
	errNotAnObject   = errors.New("model response is not a JSON object")
)

// extractJSONObject removes a surrounding Markdown fence and any prose before
// the first '{'. Text after the object is left for decodeObject to ignore.
func extractJSONObject(raw string) string {
	s := strings.TrimSpace(raw)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```")
		// drop the info string, e.g. ```json
		if i := strings.IndexByte(s, '\n'); i >= 0 {
			s = s[i+1:]
		} else {
			s = strings.TrimPrefix(s, "json")
		}
		if i := strings.Index(s, "```"); i >= 0 {
			s = s[:i]
		}
		s = strings.TrimSpace(s)
	}
	if strings.HasPrefix(s, "[") {
		return s
	}
	if start := strings.IndexByte(s, '{'); start >= 0 {
		return s[start:]
	}
	return s
}

// decodeObject decodes the first JSON value of raw model output and requires
// it to be an object. Anything after that value is ignored.
func decodeObject(raw string) (map[string]any, error) {
	s := extractJSONObject(raw)
	if s == "" {
		return nil, errEmptyResponse
	}
	var v any
	if err := json.NewDecoder(strings.NewReader(s)).Decode(&v); err != nil {
		return nil, fmt.Errorf("decode model response: %w", err)
	}
	m, ok := v.(map[string]any)
	if !ok {
		return nil, errNotAnObject
	}
	return m, nil
}

// remarshal converts a mapped canonical object into a typed record.
func remarshal(m map[string]any, out any) error {
	b, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("encode mapped record: %w", err)
	}
	if err := json.Unmarshal(b, out); err != nil {
		return fmt.Errorf("decode mapped record: %w", err)
	}
	return nil
}
