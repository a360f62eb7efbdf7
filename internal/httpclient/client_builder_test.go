package httpclient

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPClientBuilder(t *testing.T) {
	client, err := NewHTTPClientBuilder(zerolog.Nop()).
		WithTimeout(15 * time.Second).
		WithUserAgent("test-agent").
		WithFollowRedirects(false).
		WithInsecureSkipVerify(true).
		WithMaxRedirects(5).
		WithHeader("X-Token", "abc").
		Build()

	require.NoError(t, err)
	cfg := client.Config()
	assert.Equal(t, 15*time.Second, cfg.Timeout)
	assert.Equal(t, "test-agent", cfg.UserAgent)
	assert.False(t, cfg.FollowRedirects)
	assert.True(t, cfg.InsecureSkipVerify)
	assert.Equal(t, 5, cfg.MaxRedirects)
	assert.Equal(t, "abc", cfg.CustomHeaders["X-Token"])
}

func TestHTTPClientBuilder_DefaultValues(t *testing.T) {
	client, err := NewHTTPClientBuilder(zerolog.Nop()).Build()
	require.NoError(t, err)

	defaults := DefaultHTTPClientConfig()
	cfg := client.Config()

	assert.Equal(t, 10*time.Second, cfg.Timeout)
	assert.Equal(t, defaults.UserAgent, cfg.UserAgent)
	assert.Equal(t, defaults.FollowRedirects, cfg.FollowRedirects)
	assert.Equal(t, defaults.InsecureSkipVerify, cfg.InsecureSkipVerify)
	assert.Equal(t, defaults.MaxRedirects, cfg.MaxRedirects)
}

func TestHTTPClientBuilder_InvalidProxy(t *testing.T) {
	_, err := NewHTTPClientBuilder(zerolog.Nop()).WithProxy("://bad").Build()
	assert.Error(t, err)
}
