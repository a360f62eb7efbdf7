package config

import (
	"time"
)

// MonitorConfig defines configuration for the scan cycle
type MonitorConfig struct {
	CheckIntervalSeconds int  `json:"check_interval_seconds,omitempty" yaml:"check_interval_seconds,omitempty" validate:"omitempty,min=1"`
	FetchTimeoutSeconds  int  `json:"fetch_timeout_seconds,omitempty" yaml:"fetch_timeout_seconds,omitempty" validate:"omitempty,min=1"`
	MaxConcurrentChecks  int  `json:"max_concurrent_checks,omitempty" yaml:"max_concurrent_checks,omitempty" validate:"omitempty,min=1"`
	MaxContentSize       int  `json:"max_content_size,omitempty" yaml:"max_content_size,omitempty" validate:"omitempty,min=0"` // Max body size in bytes, 0 for no limit
	DedupFetches         bool `json:"dedup_fetches" yaml:"dedup_fetches"`                                                        // Fetch a target shared by several owners once per cycle
}

// NewDefaultMonitorConfig creates default monitor configuration
func NewDefaultMonitorConfig() MonitorConfig {
	return MonitorConfig{
		CheckIntervalSeconds: DefaultCheckIntervalSeconds,
		FetchTimeoutSeconds:  DefaultFetchTimeoutSeconds,
		MaxConcurrentChecks:  DefaultMaxConcurrentChecks,
		MaxContentSize:       DefaultMaxContentSize,
		DedupFetches:         true,
	}
}

// CheckInterval returns the period between cycles.
func (c MonitorConfig) CheckInterval() time.Duration {
	if c.CheckIntervalSeconds <= 0 {
		return DefaultCheckIntervalSeconds * time.Second
	}
	return time.Duration(c.CheckIntervalSeconds) * time.Second
}

// FetchTimeout returns the total timeout of one remote fetch.
func (c MonitorConfig) FetchTimeout() time.Duration {
	if c.FetchTimeoutSeconds <= 0 {
		return DefaultFetchTimeoutSeconds * time.Second
	}
	return time.Duration(c.FetchTimeoutSeconds) * time.Second
}
