package reasoner

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"attentiond/internal/config"
	"attentiond/internal/domain"
	"attentiond/internal/metrics"
)

// Usage accumulates token counts across reasoning calls.
type Usage struct {
	InputTokens              int64
	OutputTokens             int64
	CacheCreationInputTokens int64
	CacheReadInputTokens     int64
}

func (u Usage) TotalTokens() int64 {
	return u.InputTokens + u.OutputTokens
}

func (u *Usage) Add(other Usage) {
	u.InputTokens += other.InputTokens
	u.OutputTokens += other.OutputTokens
	u.CacheCreationInputTokens += other.CacheCreationInputTokens
	u.CacheReadInputTokens += other.CacheReadInputTokens
}

const defaultAnthropicModel = "claude-sonnet-4-5-20250929"
const defaultOpenAIModel = "gpt-4o-mini"

// Client calls the external reasoning service under the configured
// guardrails: bounded output, restricted capability list, policy reference
// in every system prompt. Both methods report any failure (transport,
// timeout, malformed response) as an error; callers treat that as
// "unavailable" and fall back deterministically.
type Client struct {
	guard config.Guardrails
}

func New(guard config.Guardrails) *Client {
	return &Client{guard: guard}
}

// Version identifies the scoring path for observability, e.g.
// "anthropic/claude-sonnet-4-5-20250929".
func (c *Client) Version() string {
	return c.guard.Provider + "/" + c.model()
}

func (c *Client) model() string {
	if c.guard.Model != "" {
		return c.guard.Model
	}
	if c.guard.Provider == "openai" {
		return defaultOpenAIModel
	}
	return defaultAnthropicModel
}

type classifiedResponse struct {
	UrgencyScore float64  `json:"urgency_score"`
	Relevance    string   `json:"relevance"`
	Filtered     bool     `json:"filtered"`
	Reasons      []string `json:"reasons"`
	Tags         []string `json:"tags"`
}

// Classify scores one event via the reasoning service.
func (c *Client) Classify(ctx context.Context, event domain.AttentionEvent, ambient map[string]any) (*domain.ClassificationResult, error) {
	systemPrompt, userPrompt := buildClassifyPrompts(c.guard, event, ambient)

	start := time.Now()
	responseText, _, err := c.call(ctx, systemPrompt, userPrompt)
	metrics.ReasonerLatency.WithLabelValues("classify").Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, err
	}

	return c.parseClassifyResponse(responseText, ambient)
}

func (c *Client) parseClassifyResponse(responseText string, ambient map[string]any) (*domain.ClassificationResult, error) {
	var parsed classifiedResponse
	if err := json.Unmarshal([]byte(stripFences(responseText)), &parsed); err != nil {
		return nil, fmt.Errorf("parsing classify response: %w (response: %s)", err, truncateForLog(responseText))
	}
	if parsed.UrgencyScore < 0 || parsed.UrgencyScore > 10 {
		return nil, fmt.Errorf("classify response score out of range: %f", parsed.UrgencyScore)
	}

	relevance := strings.ToLower(strings.TrimSpace(parsed.Relevance))
	switch relevance {
	case domain.RelevanceHigh, domain.RelevanceMedium, domain.RelevanceLow:
	default:
		relevance = domain.RelevanceForScore(parsed.UrgencyScore)
	}

	resultCtx := ambient
	if resultCtx == nil {
		resultCtx = map[string]any{}
	}

	return &domain.ClassificationResult{
		UrgencyScore: parsed.UrgencyScore,
		Relevance:    relevance,
		Filtered:     parsed.Filtered,
		Reasons:      parsed.Reasons,
		Context:      resultCtx,
		Tags:         parsed.Tags,
		Version:      c.Version(),
	}, nil
}

type directiveResponse struct {
	ShouldNotify        bool           `json:"should_notify"`
	RecommendedChannels []string       `json:"recommended_channels"`
	Summary             string         `json:"summary"`
	EscalationLevel     string         `json:"escalation_level"`
	ContextInjections   map[string]any `json:"context_injections"`
	FollowUpActions     []string       `json:"follow_up_actions"`
}

// SynthesizeDirective produces a delivery directive for an escalated event.
func (c *Client) SynthesizeDirective(ctx context.Context, event domain.AttentionEvent, cls domain.ClassificationResult) (*domain.PrimaryDirective, error) {
	systemPrompt, userPrompt := buildDirectivePrompts(c.guard, event, cls)

	start := time.Now()
	responseText, _, err := c.call(ctx, systemPrompt, userPrompt)
	metrics.ReasonerLatency.WithLabelValues("directive").Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, err
	}

	return c.parseDirectiveResponse(responseText, cls)
}

func (c *Client) parseDirectiveResponse(responseText string, cls domain.ClassificationResult) (*domain.PrimaryDirective, error) {
	var parsed directiveResponse
	if err := json.Unmarshal([]byte(stripFences(responseText)), &parsed); err != nil {
		return nil, fmt.Errorf("parsing directive response: %w (response: %s)", err, truncateForLog(responseText))
	}
	if strings.TrimSpace(parsed.Summary) == "" {
		return nil, fmt.Errorf("directive response missing summary")
	}

	level := strings.ToLower(strings.TrimSpace(parsed.EscalationLevel))
	switch level {
	case domain.LevelLow, domain.LevelMedium, domain.LevelHigh, domain.LevelCritical:
	default:
		level = domain.LevelForScore(cls.UrgencyScore)
	}

	return &domain.PrimaryDirective{
		ShouldNotify:        parsed.ShouldNotify,
		RecommendedChannels: parsed.RecommendedChannels,
		Summary:             strings.TrimSpace(parsed.Summary),
		EscalationLevel:     level,
		ContextInjections:   parsed.ContextInjections,
		FollowUpActions:     parsed.FollowUpActions,
		Version:             c.Version(),
	}, nil
}

func (c *Client) call(ctx context.Context, systemPrompt, userPrompt string) (string, Usage, error) {
	switch c.guard.Provider {
	case "openai":
		return c.callOpenAI(ctx, systemPrompt, userPrompt)
	default:
		return c.callAnthropic(ctx, systemPrompt, userPrompt)
	}
}

func stripFences(responseText string) string {
	responseText = strings.TrimSpace(responseText)
	responseText = strings.TrimPrefix(responseText, "```json")
	responseText = strings.TrimPrefix(responseText, "```")
	responseText = strings.TrimSuffix(responseText, "```")
	return strings.TrimSpace(responseText)
}

func truncateForLog(s string) string {
	if len(s) <= 512 {
		return s
	}
	// Back up to a rune boundary so the cut never splits a UTF-8 sequence.
	cut := 512
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + fmt.Sprintf("... [truncated, total_length=%d]", len(s))
}
