package models

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOwnerEntry_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []Target
	}{
		{
			name:     "current layout",
			input:    `{"targets": ["https://a.example", "/tmp/b.html"]}`,
			expected: []Target{"https://a.example", "/tmp/b.html"},
		},
		{
			name:     "legacy urls list",
			input:    `{"urls": ["https://a.example"]}`,
			expected: []Target{"https://a.example"},
		},
		{
			name:     "legacy mapping of flags keeps document order",
			input:    `{"urls": {"https://z.example": true, "https://a.example": false}}`,
			expected: []Target{"https://z.example", "https://a.example"},
		},
		{
			name:     "missing field",
			input:    `{}`,
			expected: []Target{},
		},
		{
			name:     "null field",
			input:    `{"targets": null}`,
			expected: []Target{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var entry OwnerEntry
			require.NoError(t, json.Unmarshal([]byte(tt.input), &entry))
			assert.Equal(t, tt.expected, entry.Targets)
		})
	}
}

func TestOwnerEntry_UnmarshalJSON_Invalid(t *testing.T) {
	var entry OwnerEntry
	assert.Error(t, json.Unmarshal([]byte(`{"targets": 42}`), &entry))
	assert.Error(t, json.Unmarshal([]byte(`[]`), &entry))
}

func TestRegistry_MarshalUsesTargetsField(t *testing.T) {
	reg := Registry{"42": {Targets: []Target{"http://x"}}}

	data, err := json.Marshal(reg)
	require.NoError(t, err)
	assert.JSONEq(t, `{"42": {"targets": ["http://x"]}}`, string(data))
}

func TestRegistry_PairsAndClone(t *testing.T) {
	reg := Registry{
		"b": {Targets: []Target{"http://b1", "http://b2"}},
		"a": {Targets: []Target{"/tmp/a1"}},
	}

	pairs := reg.Pairs()
	require.Len(t, pairs, 3)
	assert.Equal(t, Pair{Owner: "a", Target: "/tmp/a1"}, pairs[0])
	assert.Equal(t, Pair{Owner: "b", Target: "http://b1"}, pairs[1])
	assert.Equal(t, Pair{Owner: "b", Target: "http://b2"}, pairs[2])

	clone := reg.Clone()
	clone["a"].Targets[0] = "changed"
	assert.Equal(t, Target("/tmp/a1"), reg["a"].Targets[0])
}

func TestOwnerEntry_IndexOfIsCaseInsensitive(t *testing.T) {
	entry := &OwnerEntry{Targets: []Target{"http://x", "/Tmp/File"}}

	assert.Equal(t, 0, entry.IndexOf("HTTP://X"))
	assert.Equal(t, 1, entry.IndexOf("/tmp/file"))
	assert.Equal(t, -1, entry.IndexOf("http://y"))
}

func TestTarget_IsRemote(t *testing.T) {
	assert.True(t, Target("http://example.com").IsRemote())
	assert.True(t, Target("HTTPS://example.com").IsRemote())
	assert.False(t, Target("/var/www/index.html").IsRemote())
	assert.False(t, Target("ftp://example.com").IsRemote())
}

func TestTarget_FetchKey(t *testing.T) {
	tests := []struct {
		target Target
		want   string
	}{
		{"HTTPS://Example.COM/Path/A", "https://example.com/Path/A"},
		{"https://example.com/path/a", "https://example.com/path/a"},
		{"/srv/Page.html", "/srv/Page.html"},
		{"  /srv/page.html ", "/srv/page.html"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.target.FetchKey(), string(tt.target))
	}
	assert.NotEqual(t, Target("https://x/A").FetchKey(), Target("https://x/a").FetchKey())
}

func TestFetchError_Unwrap(t *testing.T) {
	cause := errors.New("boom")
	err := NewFetchError(FetchErrorNetworkFailure, "http://x", "", cause)

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "boom", err.Detail)

	fe, ok := AsFetchError(WrapError(err, "cycle"))
	require.True(t, ok)
	assert.Equal(t, FetchErrorNetworkFailure, fe.Kind)
}
