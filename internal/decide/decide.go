package decide

import (
	"attentiond/internal/config"
	"attentiond/internal/domain"
)

// Decider maps classification scores to escalate/discard using the
// configured per-source-key thresholds with a global default.
type Decider struct {
	cfg config.Config
}

func New(cfg config.Config) *Decider {
	return &Decider{cfg: cfg}
}

// Decide is pure and total. Escalate iff the urgency score is at or above
// the threshold selected for the source key. The classification's Filtered
// flag is deliberately not consulted here: classification-level filtering
// and threshold-level discarding are independent mechanisms (a filtered but
// high-scoring event still escalates).
func (d *Decider) Decide(sourceKey string, cls domain.ClassificationResult) domain.ThresholdDecision {
	threshold, ruleID := d.cfg.ThresholdFor(sourceKey)

	action := domain.ActionDiscard
	notes := domain.NoteBelowThreshold
	if cls.UrgencyScore >= threshold {
		action = domain.ActionEscalate
		notes = domain.NoteScoreAboveThreshold
	}

	return domain.ThresholdDecision{
		Action:    action,
		Threshold: threshold,
		Score:     cls.UrgencyScore,
		RuleID:    ruleID,
		Notes:     notes,
	}
}
