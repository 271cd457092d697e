package classify

import (
	"context"
	"errors"
	"testing"
	"time"

	"attentiond/internal/domain"
)

type stubReasoner struct {
	result *domain.ClassificationResult
	err    error
	calls  int
}

func (s *stubReasoner) Classify(ctx context.Context, event domain.AttentionEvent, ambient map[string]any) (*domain.ClassificationResult, error) {
	s.calls++
	return s.result, s.err
}

func TestClassifyUsesReasonerResult(t *testing.T) {
	stub := &stubReasoner{
		result: &domain.ClassificationResult{
			UrgencyScore: 7,
			Relevance:    domain.RelevanceHigh,
			Version:      "anthropic/test-model",
		},
	}
	c := New(stub, time.Second)

	result := c.Classify(context.Background(), domain.AttentionEvent{Source: "chat", Kind: "mention"}, nil)
	if result.Version != "anthropic/test-model" {
		t.Fatalf("expected reasoner-backed result, got version %s", result.Version)
	}
	if stub.calls != 1 {
		t.Fatalf("expected one reasoner call, got %d", stub.calls)
	}
}

func TestClassifyFallsBackOnError(t *testing.T) {
	stub := &stubReasoner{err: errors.New("timeout")}
	c := New(stub, time.Second)

	result := c.Classify(context.Background(), domain.AttentionEvent{Source: "chat", Kind: "mention"}, nil)
	if result.Version != domain.VersionFallbackHeuristic {
		t.Fatalf("expected fallback result on reasoner error, got version %s", result.Version)
	}
	if result.UrgencyScore != 3 {
		t.Fatalf("expected heuristic default score, got %f", result.UrgencyScore)
	}
}

func TestClassifyFallsBackOnNilResult(t *testing.T) {
	stub := &stubReasoner{}
	c := New(stub, time.Second)

	result := c.Classify(context.Background(), domain.AttentionEvent{Source: "chat", Kind: "mention"}, nil)
	if result.Version != domain.VersionFallbackHeuristic {
		t.Fatalf("expected fallback on nil reasoner result, got version %s", result.Version)
	}
}

func TestClassifyWithoutReasoner(t *testing.T) {
	c := New(nil, time.Second)

	result := c.Classify(context.Background(), domain.AttentionEvent{
		Source:   "chat",
		Kind:     "mention",
		Metadata: map[string]any{"priority": 6},
	}, nil)
	if result.UrgencyScore != 6 {
		t.Fatalf("expected heuristic score 6, got %f", result.UrgencyScore)
	}
	if result.Version != domain.VersionFallbackHeuristic {
		t.Fatalf("unexpected version: %s", result.Version)
	}
}
