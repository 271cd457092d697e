package dispatch

import (
	"context"
	"fmt"
	"log"
	"sync"

	"attentiond/internal/domain"
	"attentiond/internal/metrics"
)

// Channel delivers one dispatch request to a single destination.
type Channel interface {
	Name() string
	Send(ctx context.Context, req domain.DispatchRequest) error
}

// Dispatcher fans a directive out across delivery channels. Channels are
// independent: one channel's failure never blocks the others, and results
// come back one per request, in request order.
type Dispatcher struct {
	channels map[string]Channel
}

func New(channels ...Channel) *Dispatcher {
	m := make(map[string]Channel, len(channels))
	for _, ch := range channels {
		m[ch.Name()] = ch
	}
	return &Dispatcher{channels: m}
}

// Registered reports whether a channel identifier is backed by a configured
// channel.
func (d *Dispatcher) Registered(name string) bool {
	_, ok := d.channels[name]
	return ok
}

// BuildRequests produces one DispatchRequest per channel identifier. The
// payload carries only a compact event descriptor, not the raw payload, to
// bound notification size. Audience resolves from event metadata.
func BuildRequests(event domain.AttentionEvent, directive domain.PrimaryDirective, channelIDs []string) []domain.DispatchRequest {
	payload := domain.DispatchPayload{
		Summary:         directive.Summary,
		EscalationLevel: directive.EscalationLevel,
		Context:         directive.ContextInjections,
		Event: domain.EventDescriptor{
			Source:     event.Source,
			Kind:       event.Kind,
			ReceivedAt: event.ReceivedAt,
		},
		FollowUpActions: directive.FollowUpActions,
	}

	audience := domain.DefaultAudience
	if a, ok := event.Metadata["audience"].(string); ok && a != "" {
		audience = a
	}

	requests := make([]domain.DispatchRequest, 0, len(channelIDs))
	for _, id := range channelIDs {
		requests = append(requests, domain.DispatchRequest{
			Channel:  id,
			Audience: audience,
			Payload:  payload,
		})
	}
	return requests
}

// Dispatch sends every request on its own goroutine and joins the results.
// An unknown channel identifier is a per-channel failure, not a dispatch
// failure.
func (d *Dispatcher) Dispatch(ctx context.Context, requests []domain.DispatchRequest) []domain.DispatchResult {
	if len(requests) == 0 {
		return []domain.DispatchResult{}
	}

	results := make([]domain.DispatchResult, len(requests))

	var wg sync.WaitGroup
	for i, req := range requests {
		wg.Add(1)
		go func(idx int, req domain.DispatchRequest) {
			defer wg.Done()
			results[idx] = d.send(ctx, req)
		}(i, req)
	}
	wg.Wait()

	return results
}

func (d *Dispatcher) send(ctx context.Context, req domain.DispatchRequest) domain.DispatchResult {
	ch, ok := d.channels[req.Channel]
	if !ok {
		metrics.Dispatches.WithLabelValues(req.Channel, "failed").Inc()
		return domain.DispatchResult{
			Channel: req.Channel,
			OK:      false,
			Error:   fmt.Sprintf("channel %q is not configured", req.Channel),
		}
	}

	if err := ch.Send(ctx, req); err != nil {
		log.Printf("dispatch failed channel=%s audience=%s err=%v", req.Channel, req.Audience, err)
		metrics.Dispatches.WithLabelValues(req.Channel, "failed").Inc()
		return domain.DispatchResult{Channel: req.Channel, OK: false, Error: err.Error()}
	}

	log.Printf("dispatch ok channel=%s audience=%s level=%s", req.Channel, req.Audience, req.Payload.EscalationLevel)
	metrics.Dispatches.WithLabelValues(req.Channel, "ok").Inc()
	return domain.DispatchResult{Channel: req.Channel, OK: true}
}
