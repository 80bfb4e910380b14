package openai

import (
	"bytes"
	"encoding/json"
	"regexp"
	"strings"

	"github.com/mand0ng/fitness-app-backend/internal/domain/workout"
)

const (
	fence        = "```"
	previewBytes = 200
)

var fenceTag = regexp.MustCompile(`^[A-Za-z0-9_+-]+`)

// Sanitize turns a raw model reply into minified JSON. A surrounding markdown
// code fence (with or without a language tag) is removed first.
func Sanitize(raw string) (string, error) {
	text := strings.TrimSpace(raw)
	if strings.HasPrefix(text, fence) {
		text = strings.TrimPrefix(text, fence)
		text = fenceTag.ReplaceAllString(text, "")
		text = strings.TrimSpace(text)
		if strings.HasSuffix(text, fence) {
			text = strings.TrimSuffix(text, fence)
		}
		text = strings.TrimSpace(text)
	}

	var buf bytes.Buffer
	if err := json.Compact(&buf, []byte(text)); err != nil {
		return "", workout.NewError(workout.KindMalformedResponse, "openai.sanitize", "response is not valid JSON: "+preview(text), err)
	}
	return buf.String(), nil
}

func preview(s string) string {
	if len(s) <= previewBytes {
		return s
	}
	return s[:previewBytes] + "..."
}
