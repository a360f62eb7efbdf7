package config

// NotificationConfig defines how owners are reached
type NotificationConfig struct {
	Senders           []string `json:"senders,omitempty" yaml:"senders,omitempty" validate:"omitempty,dive,sendertype"`
	TelegramBotToken  string   `json:"telegram_bot_token,omitempty" yaml:"telegram_bot_token,omitempty"`
	TelegramAPIURL    string   `json:"telegram_api_url,omitempty" yaml:"telegram_api_url,omitempty" validate:"omitempty,url"`
	DiscordWebhookURL string   `json:"discord_webhook_url,omitempty" yaml:"discord_webhook_url,omitempty" validate:"omitempty,url"`
	NtfyTopicURL      string   `json:"ntfy_topic_url,omitempty" yaml:"ntfy_topic_url,omitempty" validate:"omitempty,url"`
	NtfyToken         string   `json:"ntfy_token,omitempty" yaml:"ntfy_token,omitempty"`
}

// NewDefaultNotificationConfig creates default notification configuration
func NewDefaultNotificationConfig() NotificationConfig {
	return NotificationConfig{
		Senders:        []string{DefaultSender},
		TelegramAPIURL: DefaultTelegramAPIURL,
	}
}

// HistoryConfig controls the sqlite cycle history
type HistoryConfig struct {
	Enabled    bool   `json:"enabled" yaml:"enabled"`
	SQLitePath string `json:"sqlite_path,omitempty" yaml:"sqlite_path,omitempty" validate:"required_if=Enabled true"`
}

// NewDefaultHistoryConfig creates default history configuration
func NewDefaultHistoryConfig() HistoryConfig {
	return HistoryConfig{
		Enabled:    true,
		SQLitePath: DefaultHistorySQLitePath,
	}
}

// MetricsConfig controls the Prometheus endpoint
type MetricsConfig struct {
	Enabled    bool   `json:"enabled" yaml:"enabled"`
	ListenAddr string `json:"listen_addr,omitempty" yaml:"listen_addr,omitempty" validate:"required_if=Enabled true"`
}

// NewDefaultMetricsConfig creates default metrics configuration
func NewDefaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Enabled:    false,
		ListenAddr: DefaultMetricsListenAddr,
	}
}
