package notifier

import (
	"fmt"
	"strings"

	"github.com/aleister1102/certwatch/internal/config"
	"github.com/aleister1102/certwatch/internal/httpclient"

	"github.com/rs/zerolog"
)

// NewSenderFromConfig builds the configured delivery channels. With no channel
// configured messages are only logged; with several, each message goes to all of them.
func NewSenderFromConfig(cfg config.NotificationConfig, client *httpclient.HTTPClient, logger zerolog.Logger) (Sender, error) {
	var senders []Sender
	seen := make(map[string]bool)

	for _, name := range cfg.Senders {
		name = strings.ToLower(strings.TrimSpace(name))
		if seen[name] {
			continue
		}
		seen[name] = true

		var (
			sender Sender
			err    error
		)
		switch name {
		case config.SenderLog:
			sender = NewLogSender(logger)
		case config.SenderTelegram:
			sender, err = NewTelegramSender(client, cfg.TelegramAPIURL, cfg.TelegramBotToken, logger)
		case config.SenderDiscord:
			sender, err = NewDiscordSender(client, cfg.DiscordWebhookURL, logger)
		case config.SenderNtfy:
			sender, err = NewNtfySender(client, cfg.NtfyTopicURL, cfg.NtfyToken, logger)
		default:
			err = fmt.Errorf("unknown sender %q", name)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to create %s sender: %w", name, err)
		}
		senders = append(senders, sender)
	}

	switch len(senders) {
	case 0:
		return NewLogSender(logger), nil
	case 1:
		return senders[0], nil
	default:
		return NewMultiSender(senders...), nil
	}
}
