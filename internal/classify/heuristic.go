package classify

import (
	"encoding/json"
	"fmt"
	"strings"

	"attentiond/internal/domain"
)

// Keywords that force a score of 9 when found anywhere in the flattened
// payload/metadata corpus (case-insensitive).
var urgencyKeywords = []string{"urgent", "asap", "notify user", "notify asap", "immediately"}

// HeuristicClassify is the deterministic scoring path used whenever the
// reasoning service is unavailable. Scoring order:
//  1. positive metadata.priority, clamped to 10
//  2. urgency keyword anywhere in payload or metadata -> 9
//  3. "critical" substring in the event kind -> 9
//  4. default 3
func HeuristicClassify(event domain.AttentionEvent, ambient map[string]any) domain.ClassificationResult {
	score := heuristicScore(event)
	ctx := ambient
	if ctx == nil {
		ctx = map[string]any{}
	}
	return domain.ClassificationResult{
		UrgencyScore: score,
		Relevance:    domain.RelevanceForScore(score),
		Filtered:     score < 1,
		Reasons:      []string{"fallback_heuristic"},
		Context:      ctx,
		Tags:         []string{},
		Version:      domain.VersionFallbackHeuristic,
	}
}

func heuristicScore(event domain.AttentionEvent) float64 {
	if priority, ok := numericValue(event.Metadata["priority"]); ok && priority > 0 {
		if priority > 10 {
			priority = 10
		}
		return priority
	}

	var corpus strings.Builder
	flattenInto(&corpus, event.Payload)
	flattenInto(&corpus, event.Metadata)
	haystack := strings.ToLower(corpus.String())
	for _, keyword := range urgencyKeywords {
		if strings.Contains(haystack, keyword) {
			return 9
		}
	}

	if strings.Contains(strings.ToLower(event.Kind), "critical") {
		return 9
	}

	return 3
}

// flattenInto appends every key and scalar value of a nested structure to
// the corpus, space-separated.
func flattenInto(b *strings.Builder, v any) {
	switch x := v.(type) {
	case nil:
	case map[string]any:
		for key, val := range x {
			b.WriteString(key)
			b.WriteByte(' ')
			flattenInto(b, val)
		}
	case []any:
		for _, val := range x {
			flattenInto(b, val)
		}
	case string:
		b.WriteString(x)
		b.WriteByte(' ')
	default:
		fmt.Fprintf(b, "%v ", x)
	}
}

func numericValue(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	case json.Number:
		f, err := x.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}
