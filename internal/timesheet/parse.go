package timesheet

import (
	"encoding/json"
	"errors"
	"regexp"
	"strings"
)

var fencedJSON = regexp.MustCompile("(?is)```json\\s*(.*?)\\s*```")

var errNotObject = errors.New("response is not a JSON object")

// parseSuggestion decodes the model text in two stages: as a bare JSON
// object, then as the contents of a ```json fenced block. The stages fail
// with different messages so operators can tell an ignored JSON-only
// instruction from malformed JSON inside compliant wrapping.
func parseSuggestion(raw string) (*suggestion, error) {
	s, err := decodeObject(raw)
	if err == nil {
		return s, nil
	}

	m := fencedJSON.FindStringSubmatch(raw)
	if m == nil {
		return nil, NewInvalidFormat(err)
	}

	s, err = decodeObject(m[1])
	if err != nil {
		return nil, NewInvalidFormatAfterStrip(err)
	}
	return s, nil
}

func decodeObject(raw string) (*suggestion, error) {
	raw = strings.TrimSpace(raw)
	if !strings.HasPrefix(raw, "{") {
		return nil, errNotObject
	}
	var s suggestion
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		return nil, err
	}
	return &s, nil
}
