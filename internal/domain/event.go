package domain

import "time"

// RawEvent is a source-specific payload as received from an upstream
// producer. It is consumed once by ingestion and not retained.
type RawEvent struct {
	Source   string         `json:"source"`
	Kind     string         `json:"kind"`
	Payload  map[string]any `json:"payload,omitempty"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// AttentionEvent is the canonical, validated event. Source and Kind are
// non-empty; together they form the source key used for threshold lookup.
// Immutable after ingestion.
type AttentionEvent struct {
	ID         string         `json:"id"`
	Source     string         `json:"source"`
	Kind       string         `json:"kind"`
	Payload    map[string]any `json:"payload,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
	ReceivedAt time.Time      `json:"received_at"`
}

// SourceKey returns the "source:kind" composite used to select a threshold.
func (e AttentionEvent) SourceKey() string {
	return e.Source + ":" + e.Kind
}
