package ocr

import (
	"encoding/json"
	"regexp"
)

// The OCR engine returns either a markdown/JSON payload whose embedded
// object carries a ready-made natural_text field, or plain text. The
// decode is a two-variant step: try the structured form first, fall
// back to the raw payload verbatim. A malformed payload is not an
// error.

var jsonObjectRe = regexp.MustCompile(`(?s)\{.*\}`)

type naturalTextPayload struct {
	NaturalText *string `json:"natural_text"`
}

// ExtractNaturalText pulls the natural-language text out of an OCR
// payload. If the payload contains a JSON object with a natural_text
// field, that field is returned; otherwise the whole payload is
// returned unchanged.
func ExtractNaturalText(payload string) string {
	m := jsonObjectRe.FindString(payload)
	if m == "" {
		return payload
	}
	var p naturalTextPayload
	if err := json.Unmarshal([]byte(m), &p); err != nil || p.NaturalText == nil {
		return payload
	}
	return *p.NaturalText
}
