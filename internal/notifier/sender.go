// Package notifier delivers owner-facing messages over Telegram, Discord, ntfy or the log.
package notifier

import (
	"context"
	"errors"
	"fmt"

	"github.com/aleister1102/certwatch/internal/models"

	"github.com/rs/zerolog"
)

// Sender delivers a text message to an owner.
type Sender interface {
	Name() string
	Send(ctx context.Context, owner models.Owner, message string) error
}

// LogSender only logs messages. It is the fallback when no channel is configured.
type LogSender struct {
	logger zerolog.Logger
}

// NewLogSender creates a LogSender.
func NewLogSender(logger zerolog.Logger) *LogSender {
	return &LogSender{logger: logger.With().Str("component", "LogSender").Logger()}
}

func (s *LogSender) Name() string { return "log" }

// Send writes the message at info level.
func (s *LogSender) Send(_ context.Context, owner models.Owner, message string) error {
	s.logger.Info().Str("owner", owner.String()).Str("message", message).Msg("Notification")
	return nil
}

// MultiSender fans a message out to several senders. Every sender is tried;
// failures are joined.
type MultiSender struct {
	senders []Sender
}

// NewMultiSender creates a MultiSender.
func NewMultiSender(senders ...Sender) *MultiSender {
	return &MultiSender{senders: senders}
}

func (m *MultiSender) Name() string { return "multi" }

// Send delivers to all senders.
func (m *MultiSender) Send(ctx context.Context, owner models.Owner, message string) error {
	var errs []error
	for _, s := range m.senders {
		if err := s.Send(ctx, owner, message); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", s.Name(), err))
		}
	}
	return errors.Join(errs...)
}

// Senders returns the wrapped senders.
func (m *MultiSender) Senders() []Sender {
	return m.senders
}
