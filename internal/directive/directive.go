package directive

import (
	"context"
	"fmt"
	"log"
	"time"

	"attentiond/internal/domain"
	"attentiond/internal/metrics"
)

// Reasoner is the guarded directive-synthesis capability of the external
// reasoning service. A nil result or any error means unavailable.
type Reasoner interface {
	SynthesizeDirective(ctx context.Context, event domain.AttentionEvent, cls domain.ClassificationResult) (*domain.PrimaryDirective, error)
}

// Coordinator synthesizes a delivery directive for escalated events. When
// the reasoning service is unavailable it produces a minimal deterministic
// directive: notify, no channel recommendation (deferring to configured
// per-source preferences), summary from source/kind, level from score.
type Coordinator struct {
	reasoner Reasoner
	timeout  time.Duration
}

func New(reasoner Reasoner, timeout time.Duration) *Coordinator {
	return &Coordinator{reasoner: reasoner, timeout: timeout}
}

func (c *Coordinator) Run(ctx context.Context, event domain.AttentionEvent, cls domain.ClassificationResult) domain.PrimaryDirective {
	if c.reasoner != nil {
		callCtx, cancel := context.WithTimeout(ctx, c.timeout)
		directive, err := c.reasoner.SynthesizeDirective(callCtx, event, cls)
		cancel()
		if err == nil && directive != nil {
			return *directive
		}
		if err != nil {
			log.Printf("directive reasoner unavailable source=%s kind=%s err=%v", event.Source, event.Kind, err)
		} else {
			log.Printf("directive reasoner returned no result source=%s kind=%s", event.Source, event.Kind)
		}
	}

	metrics.Fallbacks.WithLabelValues("directive").Inc()
	return FallbackDirective(event, cls)
}

// FallbackDirective is the deterministic minimal directive.
func FallbackDirective(event domain.AttentionEvent, cls domain.ClassificationResult) domain.PrimaryDirective {
	return domain.PrimaryDirective{
		ShouldNotify:        true,
		RecommendedChannels: []string{},
		Summary:             fmt.Sprintf("Attention required: %s event from %s", event.Kind, event.Source),
		EscalationLevel:     domain.LevelForScore(cls.UrgencyScore),
		Version:             domain.VersionFallbackHeuristic,
	}
}
