// Package sanitizer masks credentials and personal data before text is logged.
package sanitizer

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// Sanitizer handles log-safe previews of client-supplied text.
type Sanitizer struct {
	patterns   []*regexp.Regexp
	maxPreview int
}

// Pattern definitions for credentials and personal data seen in case text.
var defaultPatterns = []*regexp.Regexp{
	// API keys and tokens
	regexp.MustCompile(`(?i)(x-api-key|api[_-]?key|apikey)\s*[:=]\s*['"]?([a-zA-Z0-9_\-=]{6,})['"]?`),
	regexp.MustCompile(`(?i)(bearer\s+)[a-zA-Z0-9_\-\.]+`),
	regexp.MustCompile(`(?i)(password|passwd|pwd)\s*[:=]\s*['"]?([^\s'"]{4,})['"]?`),

	// JWT tokens
	regexp.MustCompile(`eyJ[a-zA-Z0-9_-]*\.eyJ[a-zA-Z0-9_-]*\.[a-zA-Z0-9_-]*`),

	// Aadhaar numbers (12 digits, optionally grouped by four)
	regexp.MustCompile(`\b\d{4}[ -]?\d{4}[ -]?\d{4}\b`),

	// PAN card numbers
	regexp.MustCompile(`\b[A-Z]{5}\d{4}[A-Z]\b`),

	// Indian mobile numbers
	regexp.MustCompile(`(?:\+91[ -]?)?\b[6-9]\d{9}\b`),

	// Email addresses (PII)
	regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`),
}

// New creates a new Sanitizer with default patterns.
func New(maxPreview int) *Sanitizer {
	return &Sanitizer{
		patterns:   defaultPatterns,
		maxPreview: maxPreview,
	}
}

// Redact masks every sensitive match in text.
func (s *Sanitizer) Redact(text string) string {
	result := text

	for _, pattern := range s.patterns {
		result = pattern.ReplaceAllStringFunc(result, maskValue)
	}

	return result
}

// Preview returns a redacted, whitespace-collapsed, length-capped copy of text
// suitable for a single log line.
func (s *Sanitizer) Preview(text string) string {
	text = strings.Join(strings.Fields(text), " ")
	text = s.Redact(text)

	if s.maxPreview > 0 && utf8.RuneCountInString(text) > s.maxPreview {
		runes := []rune(text)
		text = string(runes[:s.maxPreview]) + "..."
	}

	return text
}

// MaskKey hides all but the first and last two characters of a credential.
func MaskKey(key string) string {
	if key == "" {
		return "<empty>"
	}
	if len(key) <= 6 {
		return "[REDACTED]"
	}
	return key[:2] + strings.Repeat("*", len(key)-4) + key[len(key)-2:]
}

// maskValue creates a masked version of a matched secret.
func maskValue(match string) string {
	// Keep the key name of key=value pairs
	if idx := strings.IndexAny(match, ":="); idx != -1 {
		return match[:idx+1] + "[REDACTED]"
	}

	return "[REDACTED]"
}
