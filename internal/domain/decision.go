package domain

// Threshold decision actions.
const (
	ActionEscalate = "escalate"
	ActionDiscard  = "discard"
)

// Rationale notes attached to a ThresholdDecision.
const (
	NoteScoreAboveThreshold = "score_above_threshold"
	NoteBelowThreshold      = "below_threshold"
)

// ThresholdDecision maps a classification score to escalate/discard.
// Pure derived data; never persisted on its own.
type ThresholdDecision struct {
	Action    string  `json:"action"`
	Threshold float64 `json:"threshold"`
	Score     float64 `json:"score"`
	RuleID    string  `json:"rule_id"`
	Notes     string  `json:"notes"`
}

// Escalate reports whether the decision continues to directive synthesis.
func (d ThresholdDecision) Escalate() bool {
	return d.Action == ActionEscalate
}
