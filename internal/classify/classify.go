package classify

import (
	"context"
	"log"
	"time"

	"attentiond/internal/domain"
	"attentiond/internal/metrics"
)

// Reasoner is the guarded classification capability of the external
// reasoning service. A nil result or any error means the service is
// unavailable for this event; the caller must fall back.
type Reasoner interface {
	Classify(ctx context.Context, event domain.AttentionEvent, ambient map[string]any) (*domain.ClassificationResult, error)
}

// Classifier scores events for urgency and relevance. The reasoning service
// is tried first when present; every failure mode (timeout, transport error,
// policy rejection, malformed response) falls back silently to the
// deterministic heuristic, so Classify never fails.
type Classifier struct {
	reasoner Reasoner
	timeout  time.Duration
}

func New(reasoner Reasoner, timeout time.Duration) *Classifier {
	return &Classifier{reasoner: reasoner, timeout: timeout}
}

func (c *Classifier) Classify(ctx context.Context, event domain.AttentionEvent, ambient map[string]any) domain.ClassificationResult {
	if c.reasoner != nil {
		callCtx, cancel := context.WithTimeout(ctx, c.timeout)
		result, err := c.reasoner.Classify(callCtx, event, ambient)
		cancel()
		if err == nil && result != nil {
			return *result
		}
		if err != nil {
			log.Printf("classify reasoner unavailable source=%s kind=%s err=%v", event.Source, event.Kind, err)
		} else {
			log.Printf("classify reasoner returned no result source=%s kind=%s", event.Source, event.Kind)
		}
	}

	metrics.Fallbacks.WithLabelValues("classify").Inc()
	return HeuristicClassify(event, ambient)
}
