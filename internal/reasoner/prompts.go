package reasoner

import (
	"encoding/json"
	"fmt"
	"strings"

	"attentiond/internal/config"
	"attentiond/internal/domain"
)

const maxEventJSONChars = 6000

func buildClassifyPrompts(guard config.Guardrails, event domain.AttentionEvent, ambient map[string]any) (string, string) {
	systemPrompt := fmt.Sprintf(`You triage operational events for a notification system that protects humans from noise.
Score the event for urgency on a 0-10 scale (10 = interrupt a human immediately, 0 = pure noise).
Also:
- choose relevance from: high, medium, low
- set filtered to true only if the event is noise that should never escalate regardless of score
- give short reasons (max 5) explaining the score
- add free-form tags if useful
%s
Respond with JSON only (no markdown):
{"urgency_score": 7.5, "relevance": "high", "filtered": false, "reasons": ["..."], "tags": ["..."]}`, guardrailBlock(guard))

	var user strings.Builder
	user.WriteString("Event:\n")
	user.WriteString(renderEvent(event))
	if len(ambient) > 0 {
		user.WriteString("\nAmbient context:\n")
		user.WriteString(compactJSON(ambient))
		user.WriteString("\n")
	}
	return systemPrompt, user.String()
}

func buildDirectivePrompts(guard config.Guardrails, event domain.AttentionEvent, cls domain.ClassificationResult) (string, string) {
	systemPrompt := fmt.Sprintf(`You decide whether and how to notify a human about an already-escalated event.
Escalation does not guarantee notification: set should_notify to false when a notification would add noise.
Also:
- recommend delivery channels from what the deployment offers, or an empty list to defer to configured preferences
- write a one-or-two sentence summary suitable for a notification
- choose escalation_level from: low, medium, high, critical
- attach context_injections (links, supporting data) only when clearly useful
- suggest follow_up_actions (advisory only; nothing is executed)
%s
Respond with JSON only (no markdown):
{"should_notify": true, "recommended_channels": ["slack"], "summary": "...", "escalation_level": "high", "context_injections": {}, "follow_up_actions": ["..."]}`, guardrailBlock(guard))

	var user strings.Builder
	user.WriteString("Event:\n")
	user.WriteString(renderEvent(event))
	user.WriteString(fmt.Sprintf("\nClassification: score=%.1f relevance=%s filtered=%t version=%s\n",
		cls.UrgencyScore, cls.Relevance, cls.Filtered, cls.Version))
	if len(cls.Reasons) > 0 {
		user.WriteString("Reasons: " + strings.Join(cls.Reasons, "; ") + "\n")
	}
	return systemPrompt, user.String()
}

func guardrailBlock(guard config.Guardrails) string {
	var b strings.Builder
	if guard.PolicyRef != "" {
		b.WriteString(fmt.Sprintf("\nOperate strictly under policy %s.", guard.PolicyRef))
	}
	if len(guard.AllowedCapabilities) > 0 {
		b.WriteString(fmt.Sprintf("\nYou may use only these capabilities: %s. Anything else is out of bounds.",
			strings.Join(guard.AllowedCapabilities, ", ")))
	} else {
		b.WriteString("\nYou may not use any tools or external capabilities.")
	}
	return b.String()
}

func renderEvent(event domain.AttentionEvent) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("source: %s\nkind: %s\nreceived_at: %s\n",
		event.Source, event.Kind, event.ReceivedAt.Format("2006-01-02 15:04:05 MST")))
	if len(event.Payload) > 0 {
		b.WriteString("payload: " + compactJSON(event.Payload) + "\n")
	}
	if len(event.Metadata) > 0 {
		b.WriteString("metadata: " + compactJSON(event.Metadata) + "\n")
	}
	return b.String()
}

func compactJSON(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	text := string(data)
	if len(text) > maxEventJSONChars {
		text = text[:maxEventJSONChars] + "...(truncated)"
	}
	return text
}
