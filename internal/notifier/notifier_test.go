package notifier

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/aleister1102/certwatch/internal/config"
	"github.com/aleister1102/certwatch/internal/httpclient"
	"github.com/aleister1102/certwatch/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newClient(t *testing.T) *httpclient.HTTPClient {
	t.Helper()
	client, err := httpclient.NewHTTPClientBuilder(zerolog.Nop()).Build()
	require.NoError(t, err)
	return client
}

func TestTelegramSender_Send(t *testing.T) {
	var got telegramMessage
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/botTOKEN/sendMessage", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"ok":true,"result":{}}`))
	}))
	defer server.Close()

	sender, err := NewTelegramSender(newClient(t), server.URL, "TOKEN", zerolog.Nop())
	require.NoError(t, err)

	require.NoError(t, sender.Send(context.Background(), "123456", "hello"))
	assert.Equal(t, int64(123456), got.ChatID)
	assert.Equal(t, "hello", got.Text)
}

func TestTelegramSender_Errors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"ok":false,"description":"Forbidden: bot was blocked by the user"}`))
	}))
	defer server.Close()

	sender, err := NewTelegramSender(newClient(t), server.URL, "SECRET", zerolog.Nop())
	require.NoError(t, err)

	err = sender.Send(context.Background(), "1", "hello")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "blocked")
	assert.NotContains(t, err.Error(), "SECRET")

	assert.Error(t, sender.Send(context.Background(), "not-a-chat", "hello"))

	_, err = NewTelegramSender(newClient(t), "", " ", zerolog.Nop())
	assert.Error(t, err)
}

func TestDiscordSender_Send(t *testing.T) {
	var got discordPayload
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	sender, err := NewDiscordSender(newClient(t), server.URL, zerolog.Nop())
	require.NoError(t, err)

	require.NoError(t, sender.Send(context.Background(), "42", strings.Repeat("x", 3000)))
	assert.True(t, strings.HasPrefix(got.Content, "**[42]** "))
	assert.Equal(t, discordMaxContentLength, len([]rune(got.Content)))
}

func TestNtfySender_Send(t *testing.T) {
	var headers http.Header
	var body string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		headers = r.Header.Clone()
		data, _ := io.ReadAll(r.Body)
		body = string(data)
	}))
	defer server.Close()

	sender, err := NewNtfySender(newClient(t), server.URL+"/certwatch", "tk", zerolog.Nop())
	require.NoError(t, err)

	alert := FormatAlert(models.ClassificationEmpty, "http://x")
	require.NoError(t, sender.Send(context.Background(), "7", alert))
	assert.Equal(t, alert, body)
	assert.Equal(t, "certwatch: 7", headers.Get("Title"))
	assert.Equal(t, "max", headers.Get("Priority"))
	assert.Equal(t, "Bearer tk", headers.Get("Authorization"))

	require.NoError(t, sender.Send(context.Background(), "7", "File /x was not found."))
	assert.Empty(t, headers.Get("Priority"))
}

type recordingSender struct {
	name string
	err  error
	sent []string
}

func (r *recordingSender) Name() string { return r.name }

func (r *recordingSender) Send(_ context.Context, owner models.Owner, message string) error {
	r.sent = append(r.sent, owner.String()+":"+message)
	return r.err
}

func TestMultiSender_TriesAll(t *testing.T) {
	failing := &recordingSender{name: "a", err: errors.New("down")}
	ok := &recordingSender{name: "b"}

	err := NewMultiSender(failing, ok).Send(context.Background(), "1", "msg")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "a: down")
	assert.Equal(t, []string{"1:msg"}, ok.sent)
}

func TestNewSenderFromConfig(t *testing.T) {
	client := newClient(t)

	s, err := NewSenderFromConfig(config.NotificationConfig{}, client, zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, "log", s.Name())

	s, err = NewSenderFromConfig(config.NotificationConfig{
		Senders:           []string{"telegram", "Discord", "telegram"},
		TelegramBotToken:  "t",
		DiscordWebhookURL: "https://discord.example/hook",
	}, client, zerolog.Nop())
	require.NoError(t, err)
	multi, ok := s.(*MultiSender)
	require.True(t, ok)
	assert.Len(t, multi.Senders(), 2)

	_, err = NewSenderFromConfig(config.NotificationConfig{Senders: []string{"ntfy"}}, client, zerolog.Nop())
	assert.Error(t, err)
}

func TestFormatAlert(t *testing.T) {
	assert.Equal(t, "!! CERT !!\nPage http://x is empty (it has no content)!", FormatAlert(models.ClassificationEmpty, "http://x"))
	assert.Equal(t, "!! CERT !!\nPage http://x contains the certificate.", FormatAlert(models.ClassificationCertificateMatch, "http://x"))
	assert.Contains(t, FormatAlert(models.ClassificationThreatWarning, "http://x"), "Uwaga! Ta strona stanowi zagrożenie")
	assert.Empty(t, FormatAlert(models.ClassificationClean, "http://x"))
}

func TestFormatFetchError(t *testing.T) {
	tests := []struct {
		err      *models.FetchError
		expected string
	}{
		{err: models.NewFetchError(models.FetchErrorNotFound, "/a", "", nil), expected: "File /a was not found."},
		{err: models.NewFetchError(models.FetchErrorReadFailure, "/a", "permission denied", nil), expected: "Error reading file /a: permission denied"},
		{err: models.NewFetchError(models.FetchErrorNetworkFailure, "http://a", "timeout", nil), expected: "Error fetching http://a: timeout"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, FormatFetchError(tt.err))
	}
}
