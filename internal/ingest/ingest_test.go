package ingest

import (
	"errors"
	"reflect"
	"testing"

	"attentiond/internal/domain"
)

func TestIngestValidEvent(t *testing.T) {
	raw := domain.RawEvent{
		Source:   "chat",
		Kind:     "mention",
		Payload:  map[string]any{"text": "hello"},
		Metadata: map[string]any{"audience": "oncall"},
	}

	event, err := Ingest(raw)
	if err != nil {
		t.Fatalf("Ingest returned error: %v", err)
	}
	if event.Source != "chat" || event.Kind != "mention" {
		t.Fatalf("source/kind not carried over: %s/%s", event.Source, event.Kind)
	}
	if event.ID == "" {
		t.Fatal("expected a generated event ID")
	}
	if event.ReceivedAt.IsZero() {
		t.Fatal("expected ReceivedAt to be assigned")
	}
	if !reflect.DeepEqual(event.Payload, raw.Payload) {
		t.Fatalf("payload not passed through unchanged: %v", event.Payload)
	}
	if !reflect.DeepEqual(event.Metadata, raw.Metadata) {
		t.Fatalf("metadata not passed through unchanged: %v", event.Metadata)
	}
}

func TestIngestMissingSource(t *testing.T) {
	_, err := Ingest(domain.RawEvent{Kind: "mention"})
	if !errors.Is(err, ErrInvalidEvent) {
		t.Fatalf("expected ErrInvalidEvent, got %v", err)
	}
}

func TestIngestMissingKind(t *testing.T) {
	_, err := Ingest(domain.RawEvent{Source: "chat", Kind: "   "})
	if !errors.Is(err, ErrInvalidEvent) {
		t.Fatalf("expected ErrInvalidEvent for blank kind, got %v", err)
	}
}

func TestIngestTwiceDiffersOnlyInIdentity(t *testing.T) {
	raw := domain.RawEvent{
		Source:   "monitoring",
		Kind:     "alert",
		Payload:  map[string]any{"check": "disk"},
		Metadata: map[string]any{"priority": 2},
	}

	first, err := Ingest(raw)
	if err != nil {
		t.Fatalf("first ingest: %v", err)
	}
	second, err := Ingest(raw)
	if err != nil {
		t.Fatalf("second ingest: %v", err)
	}

	if first.Source != second.Source || first.Kind != second.Kind {
		t.Fatal("source/kind must be identical across ingestions")
	}
	if !reflect.DeepEqual(first.Payload, second.Payload) {
		t.Fatal("payload must be identical across ingestions")
	}
	if !reflect.DeepEqual(first.Metadata, second.Metadata) {
		t.Fatal("metadata must be identical across ingestions")
	}
	if first.ID == second.ID {
		t.Fatal("expected distinct event IDs")
	}
}

func TestSourceKey(t *testing.T) {
	event := domain.AttentionEvent{Source: "chat", Kind: "mention"}
	if event.SourceKey() != "chat:mention" {
		t.Fatalf("unexpected source key: %s", event.SourceKey())
	}
}
