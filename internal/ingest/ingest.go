package ingest

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"attentiond/internal/domain"
)

// ErrInvalidEvent marks a raw event that cannot be normalized. Fatal for
// that single event only; the pipeline does not retry.
var ErrInvalidEvent = errors.New("invalid event")

// Ingest normalizes a raw, source-specific event into the canonical
// representation. Source and kind must be non-empty; payload and metadata
// pass through unchanged. ReceivedAt is the wall-clock time of this call, so
// ingesting the same raw event twice yields events differing only in ID and
// ReceivedAt.
func Ingest(raw domain.RawEvent) (domain.AttentionEvent, error) {
	if strings.TrimSpace(raw.Source) == "" {
		return domain.AttentionEvent{}, fmt.Errorf("%w: missing source", ErrInvalidEvent)
	}
	if strings.TrimSpace(raw.Kind) == "" {
		return domain.AttentionEvent{}, fmt.Errorf("%w: missing kind", ErrInvalidEvent)
	}

	return domain.AttentionEvent{
		ID:         uuid.NewString(),
		Source:     raw.Source,
		Kind:       raw.Kind,
		Payload:    raw.Payload,
		Metadata:   raw.Metadata,
		ReceivedAt: time.Now(),
	}, nil
}
