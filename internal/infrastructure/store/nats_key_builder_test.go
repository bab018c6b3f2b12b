// Copyright Laneway and each contributor to Laneway.
// SPDX-License-Identifier: MIT

package store

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyBuilderEntityKey(t *testing.T) {
	kb := NewKeyBuilder("")

	key := kb.EntityKey(KeyPrefixSession, "current")

	// Two parts joined with a dot, each base58 encoded.
	parts := strings.Split(key, ".")
	require.Len(t, parts, 2)
	assert.NotContains(t, key, "/")
}

func TestKeyBuilderEntityKeyWithPrefix(t *testing.T) {
	kb := NewKeyBuilder("agent")

	key := kb.EntityKey(KeyPrefixParticipant, "abc-defg-hij")

	parts := strings.Split(key, ".")
	assert.Len(t, parts, 3)
}

func TestKeyBuilderEncodeDecodeRoundTrip(t *testing.T) {
	kb := NewKeyBuilder("")

	tests := []struct {
		name string
		key  string
	}{
		{name: "simple key", key: "session/current"},
		{name: "meeting id with hyphens", key: "participants/abc-defg-hij"},
		{name: "meeting id with dots", key: "participants/meet.google.com-abc"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			encoded, err := kb.EncodeKey(tc.key)
			require.NoError(t, err)

			decoded, err := kb.DecodeKey(encoded)
			require.NoError(t, err)
			assert.Equal(t, tc.key, decoded)
		})
	}
}

func TestKeyBuilderEncodeKeyPreservesWildcards(t *testing.T) {
	kb := NewKeyBuilder("")

	encoded, err := kb.EncodeKey("participants/>")
	require.NoError(t, err)

	assert.True(t, strings.HasSuffix(encoded, ".>"))
}
