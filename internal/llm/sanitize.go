// Package llm contains the model-backed intent extractors. Every
// extractor treats model output as untrusted input: it is sanitized,
// parsed, and schema-validated before anything downstream sees it, and
// every failure collapses to a nil intent.
package llm

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/ozelders/ozelders-api/internal/assistant"
)

var codeFenceRE = regexp.MustCompile("(?is)^```(?:json)?\\s*(.*?)\\s*```$")

// ParseIntentJSON turns raw model output into a validated intent.
// Markdown code fences are stripped first; if direct parsing fails, the
// first balanced object span is tried instead. Returns nil when no
// valid intent can be recovered.
func ParseIntentJSON(content string) *assistant.Intent {
	content = strings.TrimSpace(content)
	if m := codeFenceRE.FindStringSubmatch(content); m != nil {
		content = m[1]
	}
	if content == "" {
		return nil
	}

	var intent assistant.Intent
	if err := json.Unmarshal([]byte(content), &intent); err == nil {
		if intent.Validate() {
			return &intent
		}
		return nil
	}

	span := firstObjectSpan(content)
	if span == "" {
		return nil
	}
	intent = assistant.Intent{}
	if err := json.Unmarshal([]byte(span), &intent); err != nil {
		return nil
	}
	if !intent.Validate() {
		return nil
	}
	return &intent
}

// firstObjectSpan extracts the first balanced {...} span, tracking
// string literals so braces inside values do not skew the depth count.
func firstObjectSpan(s string) string {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return ""
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1]
			}
		}
	}
	return ""
}
