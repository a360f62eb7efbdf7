package config

const (
	// Log Defaults
	DefaultLogLevel      = "info"
	DefaultLogFormat     = "console"
	DefaultLogFile       = ""
	DefaultMaxLogSizeMB  = 100
	DefaultMaxLogBackups = 3

	// Monitor Defaults
	DefaultCheckIntervalSeconds = 60
	DefaultFetchTimeoutSeconds  = 10
	DefaultMaxConcurrentChecks  = 5
	DefaultMaxContentSize       = 5 * 1024 * 1024

	// Registry Defaults
	DefaultRegistryType     = "json"
	DefaultRegistryJSONPath = "data/registry.json"
	DefaultRedisAddr        = "localhost:6379"
	DefaultRedisKey         = "certwatch:registry"

	// Reference Defaults
	DefaultReferencePath = "index.html"

	// Notification Defaults
	DefaultSender         = "log"
	DefaultTelegramAPIURL = "https://api.telegram.org"

	// History Defaults
	DefaultHistorySQLitePath = "data/history.db"

	// Metrics Defaults
	DefaultMetricsListenAddr = ":9090"

	// Environment overrides
	EnvConfigPath        = "CERTWATCH_CONFIG_PATH"
	EnvTelegramToken     = "CERTWATCH_TELEGRAM_TOKEN"
	EnvDiscordWebhookURL = "CERTWATCH_DISCORD_WEBHOOK_URL"
	EnvNtfyToken         = "CERTWATCH_NTFY_TOKEN"
)

// Registry store types
const (
	RegistryTypeJSON  = "json"
	RegistryTypeRedis = "redis"
)

// Sender types
const (
	SenderLog      = "log"
	SenderTelegram = "telegram"
	SenderDiscord  = "discord"
	SenderNtfy     = "ntfy"
)
