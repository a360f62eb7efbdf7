package config

import (
	"github.com/aleister1102/certwatch/internal/httpclient"
)

// HTTPClientConfig holds the tunables of the shared HTTP client. Timeout and body
// limit come from MonitorConfig.
type HTTPClientConfig struct {
	InsecureSkipVerify bool              `json:"insecure_skip_verify" yaml:"insecure_skip_verify"`
	FollowRedirects    bool              `json:"follow_redirects" yaml:"follow_redirects"`
	MaxRedirects       int               `json:"max_redirects,omitempty" yaml:"max_redirects,omitempty" validate:"omitempty,min=0"`
	Proxy              string            `json:"proxy,omitempty" yaml:"proxy,omitempty" validate:"omitempty,url"`
	UserAgent          string            `json:"user_agent,omitempty" yaml:"user_agent,omitempty"`
	CustomHeaders      map[string]string `json:"custom_headers,omitempty" yaml:"custom_headers,omitempty"`
	EnableHTTP2        bool              `json:"enable_http2" yaml:"enable_http2"`
}

// NewDefaultHTTPClientConfig creates default HTTP client configuration
func NewDefaultHTTPClientConfig() HTTPClientConfig {
	defaults := httpclient.DefaultHTTPClientConfig()
	return HTTPClientConfig{
		InsecureSkipVerify: defaults.InsecureSkipVerify,
		FollowRedirects:    defaults.FollowRedirects,
		MaxRedirects:       defaults.MaxRedirects,
		UserAgent:          defaults.UserAgent,
		CustomHeaders:      map[string]string{},
		EnableHTTP2:        defaults.EnableHTTP2,
	}
}

// ClientConfig merges this section and the monitor limits into an httpclient configuration.
func (c HTTPClientConfig) ClientConfig(monitor MonitorConfig) httpclient.HTTPClientConfig {
	out := httpclient.DefaultHTTPClientConfig()
	out.Timeout = monitor.FetchTimeout()
	out.MaxContentSize = monitor.MaxContentSize
	out.InsecureSkipVerify = c.InsecureSkipVerify
	out.FollowRedirects = c.FollowRedirects
	out.MaxRedirects = c.MaxRedirects
	out.Proxy = c.Proxy
	out.EnableHTTP2 = c.EnableHTTP2
	if c.UserAgent != "" {
		out.UserAgent = c.UserAgent
	}
	for k, v := range c.CustomHeaders {
		out.CustomHeaders[k] = v
	}
	return out
}
