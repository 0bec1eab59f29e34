// Package rules provides keyword-based text classification.
// Rules are evaluated in order; the first rule whose keyword occurs in the
// text decides the label.
package rules

import (
	"strings"
)

// Rule represents a single classification rule.
type Rule struct {
	// ID is the unique identifier for this rule.
	ID string

	// Label is the classification produced when the rule matches.
	Label string

	// Keywords are simple string matches (case-insensitive).
	Keywords []string

	// Confidence is the confidence level when this rule matches (0.0-1.0).
	Confidence float64
}

// Match checks if the text contains any of the rule's keywords.
func (r *Rule) Match(text string) bool {
	textLower := strings.ToLower(text)

	for _, kw := range r.Keywords {
		if strings.Contains(textLower, strings.ToLower(kw)) {
			return true
		}
	}

	return false
}

// Set is an ordered rule list with the label used when nothing matches.
type Set struct {
	Name              string
	Rules             []*Rule
	DefaultLabel      string
	DefaultConfidence float64
}

// CaseRules classifies legal case descriptions into areas of law.
func CaseRules() Set {
	return Set{
		Name: "case",
		Rules: []*Rule{
			{
				ID:         "property_law",
				Label:      "Property Law",
				Keywords:   []string{"property", "land"},
				Confidence: 0.89,
			},
			{
				ID:         "contract_law",
				Label:      "Contract Law",
				Keywords:   []string{"contract", "agreement"},
				Confidence: 0.85,
			},
			{
				ID:         "family_law",
				Label:      "Family Law",
				Keywords:   []string{"family", "divorce", "marriage"},
				Confidence: 0.82,
			},
		},
		DefaultLabel:      "General Law",
		DefaultConfidence: 0.60,
	}
}

// CrimeRules maps incident descriptions to IPC sections.
func CrimeRules() Set {
	return Set{
		Name: "crime",
		Rules: []*Rule{
			{
				ID:         "ipc_379",
				Label:      "IPC 379 - Theft",
				Keywords:   []string{"theft", "stolen"},
				Confidence: 0.92,
			},
			{
				ID:         "ipc_323",
				Label:      "IPC 323 - Assault",
				Keywords:   []string{"assault", "attack"},
				Confidence: 0.88,
			},
			{
				ID:         "ipc_420",
				Label:      "IPC 420 - Cheating",
				Keywords:   []string{"fraud", "cheating"},
				Confidence: 0.85,
			},
		},
		DefaultLabel:      "IPC General Section",
		DefaultConfidence: 0.65,
	}
}

// SpamRules is the spam/ham text classifier behind /predict.
func SpamRules() Set {
	return Set{
		Name: "spam",
		Rules: []*Rule{
			{
				ID:         "spam_buy",
				Label:      "spam",
				Keywords:   []string{"buy"},
				Confidence: 0.90,
			},
		},
		DefaultLabel:      "ham",
		DefaultConfidence: 0.65,
	}
}
