// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// ClassIntent labels the kind of food a query names (produce, egg, protein,
// ...). It selects guardrail lists, thresholds and fallback eligibility.
type ClassIntent string

// Hint keys extracted by the normalizer. Hints are informational only.
const (
	HintPeel = "peel"
)

// NormalizedQuery is the canonical form of a detected name.
type NormalizedQuery struct {
	// Raw is the name as detected.
	Raw string `json:"raw" yaml:"raw"`

	// CanonicalName is the searchable name with descriptors removed.
	CanonicalName string `json:"canonical_name" yaml:"canonical_name"`

	// Tokens are the single-word tokens of CanonicalName.
	Tokens []string `json:"tokens" yaml:"tokens"`

	// Terms are compound-aware units: "sweet potato" stays one term.
	Terms []string `json:"terms" yaml:"terms"`

	// Form is "raw", a method label, or empty.
	Form string `json:"form,omitempty" yaml:"form,omitempty"`

	// Method is the cooking method when Form names one.
	Method string `json:"method,omitempty" yaml:"method,omitempty"`

	// Hints carries soft qualifiers such as peel presence.
	Hints map[string]string `json:"hints,omitempty" yaml:"hints,omitempty"`

	// Classes lists the matched intents, highest priority first.
	Classes []ClassIntent `json:"classes,omitempty" yaml:"classes,omitempty"`

	// Ignored is set when the name carries an ignore marker.
	Ignored bool `json:"ignored,omitempty" yaml:"ignored,omitempty"`

	// IgnoreReason is the reason code for an ignored name.
	IgnoreReason string `json:"ignore_reason,omitempty" yaml:"ignore_reason,omitempty"`
}

// PrimaryClass returns the highest-priority class, or "" when unclassified.
func (q NormalizedQuery) PrimaryClass() ClassIntent {
	if len(q.Classes) == 0 {
		return ""
	}
	return q.Classes[0]
}

// HasClass reports whether c is among the query's classes.
func (q NormalizedQuery) HasClass(c ClassIntent) bool {
	for _, qc := range q.Classes {
		if qc == c {
			return true
		}
	}
	return false
}

// IsCooked reports whether the query names a cooking method.
func (q NormalizedQuery) IsCooked() bool {
	return q.Method != ""
}

// IsRaw reports whether the query is explicitly raw.
func (q NormalizedQuery) IsRaw() bool {
	return q.Form == FormRaw
}
