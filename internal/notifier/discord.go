package notifier

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aleister1102/certwatch/internal/httpclient"
	"github.com/aleister1102/certwatch/internal/models"

	"github.com/rs/zerolog"
)

// discordMaxContentLength is Discord's limit for a message body.
const discordMaxContentLength = 2000

// DiscordSender posts to a single webhook; the owner is named in the message.
type DiscordSender struct {
	client     *httpclient.HTTPClient
	webhookURL string
	logger     zerolog.Logger
}

type discordPayload struct {
	Username        string                 `json:"username,omitempty"`
	Content         string                 `json:"content"`
	AllowedMentions discordAllowedMentions `json:"allowed_mentions"`
}

type discordAllowedMentions struct {
	Parse []string `json:"parse"`
}

// NewDiscordSender creates a DiscordSender.
func NewDiscordSender(client *httpclient.HTTPClient, webhookURL string, logger zerolog.Logger) (*DiscordSender, error) {
	if webhookURL == "" {
		return nil, models.NewValidationError("discord_webhook_url", webhookURL, "webhook URL is required")
	}
	return &DiscordSender{
		client:     client,
		webhookURL: webhookURL,
		logger:     logger.With().Str("component", "DiscordSender").Logger(),
	}, nil
}

func (s *DiscordSender) Name() string { return "discord" }

// Send posts message prefixed with the owner.
func (s *DiscordSender) Send(ctx context.Context, owner models.Owner, message string) error {
	content := fmt.Sprintf("**[%s]** %s", owner, message)
	payload, err := json.Marshal(discordPayload{
		Username:        "certwatch",
		Content:         truncate(content, discordMaxContentLength),
		AllowedMentions: discordAllowedMentions{Parse: []string{}},
	})
	if err != nil {
		return fmt.Errorf("failed to marshal discord payload: %w", err)
	}

	if _, err := s.client.PostJSON(ctx, s.webhookURL, payload); err != nil {
		return fmt.Errorf("discord webhook failed: %w", err)
	}

	s.logger.Debug().Str("owner", owner.String()).Msg("Discord notification sent")
	return nil
}
