package pipeline

import (
	"context"
	"log"

	"attentiond/internal/classify"
	"attentiond/internal/config"
	"attentiond/internal/decide"
	"attentiond/internal/directive"
	"attentiond/internal/dispatch"
	"attentiond/internal/domain"
	"attentiond/internal/ingest"
	"attentiond/internal/journal"
	"attentiond/internal/metrics"
)

// Pipeline runs one event through ingest -> classify -> decide ->
// (directive -> dispatch). Stages are strictly ordered per event; concurrent
// Process calls for different events are independent, the only shared state
// being the read-only config.
type Pipeline struct {
	cfg         config.Config
	classifier  *classify.Classifier
	decider     *decide.Decider
	coordinator *directive.Coordinator
	dispatcher  *dispatch.Dispatcher
	journal     *journal.Store
}

// New assembles a pipeline. journal may be nil to disable outcome
// journaling.
func New(
	cfg config.Config,
	classifier *classify.Classifier,
	decider *decide.Decider,
	coordinator *directive.Coordinator,
	dispatcher *dispatch.Dispatcher,
	store *journal.Store,
) *Pipeline {
	return &Pipeline{
		cfg:         cfg,
		classifier:  classifier,
		decider:     decider,
		coordinator: coordinator,
		dispatcher:  dispatcher,
		journal:     store,
	}
}

// Process runs a single raw event through the pipeline. Only malformed
// input returns an error; every other condition resolves to a well-formed
// result. ambient is optional caller-supplied context for classification.
func (p *Pipeline) Process(ctx context.Context, raw domain.RawEvent, ambient map[string]any) (domain.PipelineResult, error) {
	event, err := ingest.Ingest(raw)
	if err != nil {
		return domain.PipelineResult{}, err
	}
	metrics.EventsIngested.WithLabelValues(event.Source).Inc()

	cls := p.classifier.Classify(ctx, event, ambient)
	decision := p.decider.Decide(event.SourceKey(), cls)

	if !decision.Escalate() {
		log.Printf("pipeline discard source=%s kind=%s score=%.1f threshold=%.1f rule=%s",
			event.Source, event.Kind, decision.Score, decision.Threshold, decision.RuleID)
		return p.finish(domain.PipelineResult{
			Outcome:        domain.OutcomeDiscarded,
			Event:          event,
			Classification: cls,
			Decision:       decision,
		}), nil
	}

	dir := p.coordinator.Run(ctx, event, cls)

	if !dir.ShouldNotify {
		log.Printf("pipeline notify suppressed source=%s kind=%s level=%s directive_version=%s",
			event.Source, event.Kind, dir.EscalationLevel, dir.Version)
		return p.finish(domain.PipelineResult{
			Outcome:        domain.OutcomeEscalated,
			Event:          event,
			Classification: cls,
			Decision:       decision,
			Directive:      &dir,
		}), nil
	}

	channels := dir.RecommendedChannels
	if len(channels) == 0 {
		channels = p.cfg.ChannelPreferences[event.Source]
	}
	if len(channels) == 0 {
		// Nowhere to send it. Not an error: the event stays escalated
		// with an empty dispatch result list.
		log.Printf("pipeline no eligible channel source=%s kind=%s", event.Source, event.Kind)
		return p.finish(domain.PipelineResult{
			Outcome:         domain.OutcomeEscalated,
			Event:           event,
			Classification:  cls,
			Decision:        decision,
			Directive:       &dir,
			DispatchResults: []domain.DispatchResult{},
		}), nil
	}

	requests := dispatch.BuildRequests(event, dir, channels)
	results := p.dispatcher.Dispatch(ctx, requests)

	return p.finish(domain.PipelineResult{
		Outcome:         domain.OutcomeDispatched,
		Event:           event,
		Classification:  cls,
		Decision:        decision,
		Directive:       &dir,
		DispatchResults: results,
	}), nil
}

// finish records metrics and journals the outcome. Journal failures never
// fail the pipeline.
func (p *Pipeline) finish(res domain.PipelineResult) domain.PipelineResult {
	metrics.Outcomes.WithLabelValues(res.Outcome).Inc()
	if p.journal != nil {
		if err := p.journal.Insert(journal.FromResult(res)); err != nil {
			log.Printf("journal insert error (non-fatal): %v", err)
		}
	}
	return res
}
