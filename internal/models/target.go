package models

import (
	"net/url"
	"strings"
)

// remoteSchemePrefix marks targets fetched over HTTP(S). Matching is case-insensitive.
const remoteSchemePrefix = "http"

// Owner identifies the recipient of notifications for a set of targets.
type Owner string

// String returns the raw owner identifier.
func (o Owner) String() string {
	return string(o)
}

// Target is a monitored resource: a remote URL or a local file path.
// The original spelling is preserved; comparisons are case-insensitive.
type Target string

// String returns the target as registered.
func (t Target) String() string {
	return string(t)
}

// IsRemote reports whether the target is fetched over HTTP.
func (t Target) IsRemote() bool {
	return strings.HasPrefix(strings.ToLower(string(t)), remoteSchemePrefix)
}

// Key returns the comparison key used for deduplication and notification state.
func (t Target) Key() string {
	return strings.ToLower(string(t))
}

// FetchKey identifies the resource a fetch reads. Local paths and URL paths are
// case-sensitive, so only the scheme and host of a remote target are folded.
func (t Target) FetchKey() string {
	raw := strings.TrimSpace(string(t))
	if !t.IsRemote() {
		return raw
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return raw
	}
	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	return u.String()
}

// Matches reports whether two targets name the same resource.
func (t Target) Matches(other Target) bool {
	return strings.EqualFold(string(t), string(other))
}

// NormalizeTarget trims surrounding whitespace from user input.
func NormalizeTarget(raw string) Target {
	return Target(strings.TrimSpace(raw))
}
