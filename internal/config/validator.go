package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ValidateConfig performs validation on the GlobalConfig structure.
func ValidateConfig(cfg *GlobalConfig) error {
	validate := validator.New()

	_ = validate.RegisterValidation("loglevel", func(fl validator.FieldLevel) bool {
		switch strings.ToLower(fl.Field().String()) {
		case "", "debug", "info", "warn", "error", "fatal", "panic":
			return true
		default:
			return false
		}
	})

	_ = validate.RegisterValidation("logformat", func(fl validator.FieldLevel) bool {
		switch strings.ToLower(fl.Field().String()) {
		case "", "console", "text", "json":
			return true
		default:
			return false
		}
	})

	_ = validate.RegisterValidation("storetype", func(fl validator.FieldLevel) bool {
		switch strings.ToLower(fl.Field().String()) {
		case "", RegistryTypeJSON, RegistryTypeRedis:
			return true
		default:
			return false
		}
	})

	_ = validate.RegisterValidation("sendertype", func(fl validator.FieldLevel) bool {
		switch strings.ToLower(fl.Field().String()) {
		case SenderLog, SenderTelegram, SenderDiscord, SenderNtfy:
			return true
		default:
			return false
		}
	})

	if err := validate.Struct(cfg); err != nil {
		var errs validator.ValidationErrors
		if errors.As(err, &errs) {
			messages := make([]string, 0, len(errs))
			for _, e := range errs {
				msg := fmt.Sprintf("Validation failed for '%s': rule '%s'", e.Namespace(), e.Tag())
				if e.Param() != "" {
					msg += fmt.Sprintf(" (expected: %s)", e.Param())
				}
				if e.Value() != nil && e.Value() != "" {
					msg += fmt.Sprintf(", actual: '%v'", e.Value())
				}
				messages = append(messages, msg)
			}
			return fmt.Errorf("configuration validation failed:\n  %s", strings.Join(messages, "\n  "))
		}
		return fmt.Errorf("configuration validation error: %w", err)
	}

	return validateSenderSettings(cfg.NotificationConfig)
}

// validateSenderSettings checks that every selected sender has what it needs to deliver.
func validateSenderSettings(cfg NotificationConfig) error {
	for _, sender := range cfg.Senders {
		switch strings.ToLower(sender) {
		case SenderTelegram:
			if cfg.TelegramBotToken == "" {
				return fmt.Errorf("sender %q requires telegram_bot_token or %s", sender, EnvTelegramToken)
			}
		case SenderDiscord:
			if cfg.DiscordWebhookURL == "" {
				return fmt.Errorf("sender %q requires discord_webhook_url or %s", sender, EnvDiscordWebhookURL)
			}
		case SenderNtfy:
			if cfg.NtfyTopicURL == "" {
				return fmt.Errorf("sender %q requires ntfy_topic_url", sender)
			}
		}
	}
	return nil
}
