package domain

// Escalation levels, from least to most urgent.
const (
	LevelLow      = "low"
	LevelMedium   = "medium"
	LevelHigh     = "high"
	LevelCritical = "critical"
)

// LevelForScore maps an urgency score onto an escalation level.
func LevelForScore(score float64) string {
	switch {
	case score >= 9:
		return LevelCritical
	case score >= 7:
		return LevelHigh
	case score >= 4:
		return LevelMedium
	default:
		return LevelLow
	}
}

// PrimaryDirective is the coordinator's synthesized delivery decision for an
// escalated event. Escalation does not guarantee notification: ShouldNotify
// may be false when the coordinator decides further suppression is warranted.
// Version records which path produced the directive (reasoning service vs.
// the minimal fallback) for operator audit.
type PrimaryDirective struct {
	ShouldNotify        bool           `json:"should_notify"`
	RecommendedChannels []string       `json:"recommended_channels,omitempty"`
	Summary             string         `json:"summary"`
	EscalationLevel     string         `json:"escalation_level"`
	ContextInjections   map[string]any `json:"context_injections,omitempty"`
	FollowUpActions     []string       `json:"follow_up_actions,omitempty"`
	Version             string         `json:"version"`
}
