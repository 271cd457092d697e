package slack

import (
	"context"
	"fmt"
	"strings"

	"github.com/slack-go/slack"

	"attentiond/internal/domain"
)

var levelColors = map[string]string{
	domain.LevelCritical: "danger",
	domain.LevelHigh:     "warning",
	domain.LevelMedium:   "#439FE0",
	domain.LevelLow:      "good",
}

// Channel posts dispatch payloads to a Slack channel as an attachment
// colored by escalation level.
type Channel struct {
	api       *slack.Client
	channelID string
}

func New(botToken, channelID string) *Channel {
	return &Channel{
		api:       slack.New(botToken),
		channelID: channelID,
	}
}

func (c *Channel) Name() string { return "slack" }

func (c *Channel) Send(ctx context.Context, req domain.DispatchRequest) error {
	attachment := slack.Attachment{
		Color: levelColors[req.Payload.EscalationLevel],
		Title: fmt.Sprintf("[%s] %s / %s", strings.ToUpper(req.Payload.EscalationLevel), req.Payload.Event.Source, req.Payload.Event.Kind),
		Text:  req.Payload.Summary,
		Fields: []slack.AttachmentField{
			{Title: "Audience", Value: req.Audience, Short: true},
			{Title: "Received", Value: req.Payload.Event.ReceivedAt.Format("2006-01-02 15:04:05 MST"), Short: true},
		},
	}
	if len(req.Payload.FollowUpActions) > 0 {
		attachment.Fields = append(attachment.Fields, slack.AttachmentField{
			Title: "Suggested follow-ups",
			Value: "• " + strings.Join(req.Payload.FollowUpActions, "\n• "),
		})
	}

	_, _, err := c.api.PostMessageContext(ctx, c.channelID,
		slack.MsgOptionText(req.Payload.Summary, false),
		slack.MsgOptionAttachments(attachment),
	)
	if err != nil {
		return fmt.Errorf("posting to slack: %w", err)
	}
	return nil
}
