// Copyright Laneway and each contributor to Laneway.
// SPDX-License-Identifier: MIT

// Package store implements the NATS JetStream KV backed repositories of the
// recording agent.
package store

import (
	"fmt"
	"strings"

	"github.com/akamensky/base58"
	"github.com/nats-io/nats.go"
)

// Common key prefixes
const (
	KeyPrefixSession     = "session"
	KeyPrefixSettings    = "settings"
	KeyPrefixParticipant = "participants"
)

// NATS Key-Value store bucket names
const (
	KVStoreNameRecordingState       = "recording-state"
	KVStoreNameUserSettings         = "user-settings"
	KVStoreNameParticipantSnapshots = "participant-snapshots"
)

// KeyBuilder provides utilities for building consistent NATS KV keys
type KeyBuilder struct {
	prefix string
}

// NewKeyBuilder creates a new key builder with an optional prefix
func NewKeyBuilder(prefix string) *KeyBuilder {
	return &KeyBuilder{
		prefix: prefix,
	}
}

// EntityKey builds an encoded key for an entity (e.g., "session/current")
func (kb *KeyBuilder) EntityKey(entityType, uid string) string {
	key := fmt.Sprintf("%s/%s", entityType, uid)
	return kb.applyPrefix(key)
}

func (kb *KeyBuilder) applyPrefix(key string) string {
	if kb.prefix != "" {
		key = fmt.Sprintf("%s/%s", kb.prefix, key)
	}

	encoded, err := kb.EncodeKey(key)
	if err != nil {
		return key
	}
	return encoded
}

// EncodeKey encodes a key for the NATS KV store. Meeting identifiers can
// carry characters NATS keys forbid, so each '/'-delimited part is base58
// encoded and the parts joined with '.'.
//
// NATS limitations: https://docs.nats.io/nats-concepts/jetstream/key-value-store#notes
func (kb *KeyBuilder) EncodeKey(key string) (string, error) {
	res := []string{}
	for _, part := range strings.Split(strings.TrimPrefix(key, "/"), "/") {
		if part == ">" || part == "*" {
			res = append(res, part)
			continue
		}

		res = append(res, base58.Encode([]byte(part)))
	}

	if len(res) == 0 {
		return "", nats.ErrInvalidKey
	}

	return strings.Join(res, "."), nil
}

// DecodeKey decodes a key from the NATS KV store.
func (kb *KeyBuilder) DecodeKey(key string) (string, error) {
	res := []string{}
	for _, part := range strings.Split(key, ".") {
		k, err := base58.Decode(part)
		if err != nil {
			return "", err
		}

		res = append(res, string(k))
	}

	if len(res) == 0 {
		return "", nats.ErrInvalidKey
	}

	return strings.Join(res, "/"), nil
}
