package domain

// Pipeline outcomes. A discarded event short-circuits after the threshold
// stage; escalated means a directive was produced but nothing was sent
// (notify suppressed or no eligible channel); dispatched means at least one
// channel delivery was attempted.
const (
	OutcomeDiscarded  = "discarded"
	OutcomeEscalated  = "escalated"
	OutcomeDispatched = "dispatched"
)

// PipelineResult is the tagged outcome of one event's traversal. Directive
// is nil for discarded events. DispatchResults is nil unless dispatch was
// reached; an escalated event with no eligible channel carries an empty,
// non-nil list.
type PipelineResult struct {
	Outcome         string               `json:"outcome"`
	Event           AttentionEvent       `json:"event"`
	Classification  ClassificationResult `json:"classification"`
	Decision        ThresholdDecision    `json:"decision"`
	Directive       *PrimaryDirective    `json:"primary_directive,omitempty"`
	DispatchResults []DispatchResult     `json:"dispatch_results,omitempty"`
}
