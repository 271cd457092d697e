package domain

import "time"

// DefaultAudience is used when an event carries no audience metadata.
const DefaultAudience = "default"

// EventDescriptor is the compact event reference embedded in a dispatch
// payload. The raw payload is deliberately excluded to bound notification
// size.
type EventDescriptor struct {
	Source     string    `json:"source"`
	Kind       string    `json:"kind"`
	ReceivedAt time.Time `json:"received_at"`
}

// DispatchPayload is the structured object handed to a delivery channel.
// Rendering inside the channel is the channel's concern.
type DispatchPayload struct {
	Summary         string          `json:"summary"`
	EscalationLevel string          `json:"escalation_level"`
	Context         map[string]any  `json:"context,omitempty"`
	Event           EventDescriptor `json:"event"`
	FollowUpActions []string        `json:"follow_up_actions,omitempty"`
}

// DispatchRequest targets a single channel.
type DispatchRequest struct {
	Channel  string          `json:"channel"`
	Audience string          `json:"audience"`
	Payload  DispatchPayload `json:"payload"`
}

// DispatchResult is the per-channel outcome, one per requested channel, in
// request order.
type DispatchResult struct {
	Channel string `json:"channel"`
	OK      bool   `json:"ok"`
	Error   string `json:"error,omitempty"`
}
