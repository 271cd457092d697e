package domain

// Relevance buckets for a classified event.
const (
	RelevanceHigh   = "high"
	RelevanceMedium = "medium"
	RelevanceLow    = "low"
)

// VersionFallbackHeuristic marks results produced by the deterministic
// heuristic rather than the reasoning service.
const VersionFallbackHeuristic = "fallback-heuristic"

// ClassificationResult is the classifier's verdict on a single event.
// Created once per event, never mutated.
type ClassificationResult struct {
	UrgencyScore float64        `json:"urgency_score"`
	Relevance    string         `json:"relevance"`
	Filtered     bool           `json:"filtered"`
	Reasons      []string       `json:"reasons,omitempty"`
	Context      map[string]any `json:"context,omitempty"`
	Tags         []string       `json:"tags,omitempty"`
	Version      string         `json:"version"`
}

// RelevanceForScore maps an urgency score onto a relevance bucket.
func RelevanceForScore(score float64) string {
	switch {
	case score >= 7:
		return RelevanceHigh
	case score >= 4:
		return RelevanceMedium
	default:
		return RelevanceLow
	}
}
