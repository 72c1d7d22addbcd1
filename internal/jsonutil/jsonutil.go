// Package jsonutil coerces model output into typed values. Models asked for
// strict JSON still wrap payloads in prose or markdown fences often enough
// that every caller needs the same two-step decode: direct unmarshal first,
// then recovery of the first well-formed JSON array or object substring.
package jsonutil

import (
	"bytes"
	"encoding/json"
	"errors"
	"regexp"
	"strings"
)

// ErrNoJSON indicates that no recoverable JSON payload was found in the input.
var ErrNoJSON = errors.New("jsonutil: no JSON payload in model output")

var (
	arrayPattern  = regexp.MustCompile(`(?s)\[.*\]`)
	objectPattern = regexp.MustCompile(`(?s)\{.*\}`)
)

// DecodeArray unmarshals raw into v (a pointer to a slice). It tries a direct
// unmarshal, then a single object coerced into a one-element array, then the
// first well-formed array substring. Returns ErrNoJSON when nothing matches.
func DecodeArray(raw []byte, v any) error {
	raw = stripFences(raw)
	if err := json.Unmarshal(raw, v); err == nil {
		return nil
	}
	// Some models return a lone object where an array was requested.
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		wrapped := append(append([]byte{'['}, trimmed...), ']')
		if err := json.Unmarshal(wrapped, v); err == nil {
			return nil
		}
	}
	if m := arrayPattern.Find(raw); m != nil {
		if err := json.Unmarshal(m, v); err == nil {
			return nil
		}
	}
	return ErrNoJSON
}

// DecodeObject unmarshals raw into v (a pointer to a struct or map), falling
// back to the first well-formed object substring.
func DecodeObject(raw []byte, v any) error {
	raw = stripFences(raw)
	if err := json.Unmarshal(raw, v); err == nil {
		return nil
	}
	if m := objectPattern.Find(raw); m != nil {
		if err := json.Unmarshal(m, v); err == nil {
			return nil
		}
	}
	return ErrNoJSON
}

// MarshalNoEscape encodes v into JSON without HTML-escaping <, >, and &.
// Prompt payloads read better without \uXXXX escapes.
func MarshalNoEscape(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// stripFences removes a surrounding markdown code fence, if present.
func stripFences(raw []byte) []byte {
	s := strings.TrimSpace(string(raw))
	if !strings.HasPrefix(s, "```") {
		return raw
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return []byte(strings.TrimSpace(s))
}
