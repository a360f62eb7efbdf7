package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/aleister1102/certwatch/internal/httpclient"
	"github.com/aleister1102/certwatch/internal/models"

	"github.com/rs/zerolog"
)

// telegramMaxMessageLength is the Bot API limit for one message.
const telegramMaxMessageLength = 4096

// TelegramSender posts messages through the Telegram Bot API. The owner is the chat id.
type TelegramSender struct {
	client   *httpclient.HTTPClient
	endpoint string
	token    string
	logger   zerolog.Logger
}

type telegramMessage struct {
	ChatID                int64  `json:"chat_id"`
	Text                  string `json:"text"`
	DisableWebPagePreview bool   `json:"disable_web_page_preview"`
}

type telegramResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description,omitempty"`
}

// NewTelegramSender creates a TelegramSender for token against apiURL (the public API when empty).
func NewTelegramSender(client *httpclient.HTTPClient, apiURL, token string, logger zerolog.Logger) (*TelegramSender, error) {
	if strings.TrimSpace(token) == "" {
		return nil, models.NewValidationError("telegram_bot_token", "", "bot token is required")
	}
	if apiURL == "" {
		apiURL = "https://api.telegram.org"
	}
	return &TelegramSender{
		client:   client,
		endpoint: fmt.Sprintf("%s/bot%s/sendMessage", strings.TrimRight(apiURL, "/"), token),
		token:    token,
		logger:   logger.With().Str("component", "TelegramSender").Logger(),
	}, nil
}

func (s *TelegramSender) Name() string { return "telegram" }

// Send delivers message to the chat identified by owner.
func (s *TelegramSender) Send(ctx context.Context, owner models.Owner, message string) error {
	chatID, err := strconv.ParseInt(owner.String(), 10, 64)
	if err != nil {
		return fmt.Errorf("owner %q is not a telegram chat id: %w", owner, err)
	}

	payload, err := json.Marshal(telegramMessage{
		ChatID:                chatID,
		Text:                  truncate(message, telegramMaxMessageLength),
		DisableWebPagePreview: true,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal telegram payload: %w", err)
	}

	resp, err := s.client.PostJSON(ctx, s.endpoint, payload)
	if err != nil {
		// The endpoint embeds the token.
		return fmt.Errorf("telegram sendMessage failed: %s", strings.ReplaceAll(err.Error(), s.token, "<redacted>"))
	}

	var result telegramResponse
	if err := json.Unmarshal(resp.Body, &result); err == nil && !result.OK {
		return fmt.Errorf("telegram rejected message: %s", result.Description)
	}

	s.logger.Debug().Str("owner", owner.String()).Msg("Telegram message sent")
	return nil
}
