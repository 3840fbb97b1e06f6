package services

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ExtractJSON pulls the JSON payload out of model output that may be wrapped
// in prose or markdown fences. It takes the span from the first opening
// bracket to the last matching closing bracket; when that span does not
// decode, the other bracket kind is tried.
func ExtractJSON(text string) (json.RawMessage, error) {
	type span struct{ open, close byte }
	spans := []span{{'{', '}'}, {'[', ']'}}
	obj := strings.IndexByte(text, '{')
	arr := strings.IndexByte(text, '[')
	if arr >= 0 && (obj < 0 || arr < obj) {
		spans[0], spans[1] = spans[1], spans[0]
	}

	for _, s := range spans {
		start := strings.IndexByte(text, s.open)
		end := strings.LastIndexByte(text, s.close)
		if start < 0 || end <= start {
			continue
		}
		candidate := text[start : end+1]
		if json.Valid([]byte(candidate)) {
			return json.RawMessage(candidate), nil
		}
	}
	return nil, fmt.Errorf("%w: no decodable JSON span", ErrLLMParse)
}

// decodeLLMJSON extracts and decodes model output into out.
func decodeLLMJSON(text string, out any) error {
	raw, err := ExtractJSON(text)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%w: %v", ErrLLMParse, err)
	}
	return nil
}
