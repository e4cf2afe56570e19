// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// ScoreBreakdown itemizes a candidate score.
type ScoreBreakdown struct {
	Token  float64 `json:"token" yaml:"token"`
	Energy float64 `json:"energy" yaml:"energy"`
	Bonus  float64 `json:"bonus" yaml:"bonus"`
	Total  float64 `json:"total" yaml:"total"`
}

// RejectedCandidate records why a candidate was not selected.
type RejectedCandidate struct {
	ID     string         `json:"id" yaml:"id"`
	Name   string         `json:"name" yaml:"name"`
	Score  ScoreBreakdown `json:"score" yaml:"score"`
	Reason string         `json:"reason" yaml:"reason"`
}

// StageAttempt records one stage's run within a cascade.
type StageAttempt struct {
	Stage StageID `json:"stage" yaml:"stage"`

	// Skipped is set when the stage did not apply (no scoring happened).
	Skipped    bool   `json:"skipped,omitempty" yaml:"skipped,omitempty"`
	SkipReason string `json:"skip_reason,omitempty" yaml:"skip_reason,omitempty"`

	PoolSize    int                 `json:"pool_size" yaml:"pool_size"`
	Accepted    bool                `json:"accepted" yaml:"accepted"`
	CandidateID string              `json:"candidate_id,omitempty" yaml:"candidate_id,omitempty"`
	TopRejected []RejectedCandidate `json:"top_rejected,omitempty" yaml:"top_rejected,omitempty"`
	Note        string              `json:"note,omitempty" yaml:"note,omitempty"`
	Duration    time.Duration       `json:"duration" yaml:"duration"`
}

// RawPreferenceSwitch records a Stage 1c pick replaced by its raw synonym.
type RawPreferenceSwitch struct {
	OriginalID   string `json:"original_id" yaml:"original_id"`
	OriginalName string `json:"original_name" yaml:"original_name"`
	FinalID      string `json:"final_id" yaml:"final_id"`
	FinalName    string `json:"final_name" yaml:"final_name"`
	Marker       string `json:"marker" yaml:"marker"`
}

// TelemetryRecord is the per-item diagnosis trail.
type TelemetryRecord struct {
	// AlignmentID is derived from the config version and the item, so the
	// same input under the same config always gets the same id.
	AlignmentID   string        `json:"alignment_id" yaml:"alignment_id"`
	ConfigVersion string        `json:"config_version" yaml:"config_version"`
	Query         string        `json:"query" yaml:"query"`
	Classes       []ClassIntent `json:"classes,omitempty" yaml:"classes,omitempty"`

	Variants        []string `json:"variants,omitempty" yaml:"variants,omitempty"`
	SelectedVariant string   `json:"selected_variant,omitempty" yaml:"selected_variant,omitempty"`
	StoreErrors     []string `json:"store_errors,omitempty" yaml:"store_errors,omitempty"`

	PoolSize         int                 `json:"pool_size" yaml:"pool_size"`
	GuardrailRemoved []RejectedCandidate `json:"guardrail_removed,omitempty" yaml:"guardrail_removed,omitempty"`

	Attempts      []StageAttempt       `json:"attempts,omitempty" yaml:"attempts,omitempty"`
	RawPreference *RawPreferenceSwitch `json:"raw_preference,omitempty" yaml:"raw_preference,omitempty"`

	FinalStage    StageID `json:"final_stage,omitempty" yaml:"final_stage,omitempty"`
	Decision      Status  `json:"decision" yaml:"decision"`
	NoMatchReason string  `json:"no_match_reason,omitempty" yaml:"no_match_reason,omitempty"`
}

// AttemptedStages returns the stages that ran (including those returning no
// match), in cascade order. Skipped stages are omitted.
func (t TelemetryRecord) AttemptedStages() []StageID {
	var out []StageID
	for _, a := range t.Attempts {
		if !a.Skipped {
			out = append(out, a.Stage)
		}
	}
	return out
}
