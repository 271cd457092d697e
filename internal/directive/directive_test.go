package directive

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"attentiond/internal/domain"
)

type stubReasoner struct {
	directive *domain.PrimaryDirective
	err       error
}

func (s *stubReasoner) SynthesizeDirective(ctx context.Context, event domain.AttentionEvent, cls domain.ClassificationResult) (*domain.PrimaryDirective, error) {
	return s.directive, s.err
}

func TestRunUsesReasonerDirective(t *testing.T) {
	stub := &stubReasoner{
		directive: &domain.PrimaryDirective{
			ShouldNotify:        false,
			Summary:             "Duplicate of an alert already acknowledged",
			EscalationLevel:     domain.LevelMedium,
			RecommendedChannels: []string{"slack"},
			Version:             "anthropic/test-model",
		},
	}
	c := New(stub, time.Second)

	dir := c.Run(context.Background(), domain.AttentionEvent{Source: "monitoring", Kind: "alert"}, domain.ClassificationResult{UrgencyScore: 6})
	if dir.ShouldNotify {
		t.Fatal("expected reasoner suppression to be honored")
	}
	if dir.Version != "anthropic/test-model" {
		t.Fatalf("expected reasoner-backed directive, got version %s", dir.Version)
	}
}

func TestRunFallsBackOnError(t *testing.T) {
	c := New(&stubReasoner{err: errors.New("policy rejection")}, time.Second)

	event := domain.AttentionEvent{Source: "chat", Kind: "mention"}
	dir := c.Run(context.Background(), event, domain.ClassificationResult{UrgencyScore: 9})

	if !dir.ShouldNotify {
		t.Fatal("fallback directive must notify")
	}
	if len(dir.RecommendedChannels) != 0 {
		t.Fatalf("fallback directive must defer channel choice, got %v", dir.RecommendedChannels)
	}
	if dir.Version != domain.VersionFallbackHeuristic {
		t.Fatalf("unexpected version: %s", dir.Version)
	}
}

func TestFallbackDirectiveShape(t *testing.T) {
	event := domain.AttentionEvent{Source: "payments", Kind: "chargeback"}
	dir := FallbackDirective(event, domain.ClassificationResult{UrgencyScore: 9})

	if !strings.Contains(dir.Summary, "chargeback") || !strings.Contains(dir.Summary, "payments") {
		t.Fatalf("summary must reference source and kind: %q", dir.Summary)
	}
	if dir.EscalationLevel != domain.LevelCritical {
		t.Fatalf("expected critical level at score 9, got %s", dir.EscalationLevel)
	}
	if len(dir.ContextInjections) != 0 || len(dir.FollowUpActions) != 0 {
		t.Fatal("fallback directive must carry no injections or follow-ups")
	}
}

func TestFallbackLevelMapping(t *testing.T) {
	cases := []struct {
		score float64
		level string
	}{
		{9.5, domain.LevelCritical},
		{8, domain.LevelHigh},
		{5, domain.LevelMedium},
		{2, domain.LevelLow},
	}
	for _, tc := range cases {
		got := domain.LevelForScore(tc.score)
		if got != tc.level {
			t.Fatalf("score %f: expected %s, got %s", tc.score, tc.level, got)
		}
	}
}
