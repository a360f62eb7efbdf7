package notifier

import (
	"context"
	"fmt"
	"strings"

	"github.com/aleister1102/certwatch/internal/httpclient"
	"github.com/aleister1102/certwatch/internal/models"

	"github.com/rs/zerolog"
)

// NtfySender publishes to an ntfy topic. The owner is carried in the title.
type NtfySender struct {
	client   *httpclient.HTTPClient
	topicURL string
	token    string
	logger   zerolog.Logger
}

// NewNtfySender creates an NtfySender.
func NewNtfySender(client *httpclient.HTTPClient, topicURL, token string, logger zerolog.Logger) (*NtfySender, error) {
	topicURL = strings.TrimSpace(topicURL)
	if topicURL == "" {
		return nil, models.NewValidationError("ntfy_topic_url", topicURL, "topic URL is required")
	}
	return &NtfySender{
		client:   client,
		topicURL: topicURL,
		token:    strings.TrimSpace(token),
		logger:   logger.With().Str("component", "NtfySender").Logger(),
	}, nil
}

func (s *NtfySender) Name() string { return "ntfy" }

// Send publishes message. Alerts get the highest priority, fetch errors the default one.
func (s *NtfySender) Send(ctx context.Context, owner models.Owner, message string) error {
	headers := map[string]string{
		"Title": fmt.Sprintf("certwatch: %s", owner),
	}
	if strings.HasPrefix(message, AlertHeader) {
		headers["Priority"] = "max"
		headers["Tags"] = "warning"
	}
	if s.token != "" {
		headers["Authorization"] = "Bearer " + s.token
	}

	if _, err := s.client.PostText(ctx, s.topicURL, message, headers); err != nil {
		return fmt.Errorf("ntfy publish failed: %w", err)
	}

	s.logger.Debug().Str("owner", owner.String()).Int("bytes", len(message)).Msg("ntfy publish ok")
	return nil
}
