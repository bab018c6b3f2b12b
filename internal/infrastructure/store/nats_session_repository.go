// Copyright Laneway and each contributor to Laneway.
// SPDX-License-Identifier: MIT

package store

import (
	"context"

	"github.com/laneway/laneway-recording-service/internal/domain"
	"github.com/laneway/laneway-recording-service/internal/domain/models"
)

// currentSessionUID is the fixed entity identifier of the single session
// slot. There is never more than one in-progress session.
const currentSessionUID = "current"

// NatsSessionRepository persists the in-progress recording session in the
// recording-state KV bucket so a restarted agent can resume or clean up.
type NatsSessionRepository struct {
	*NatsBaseRepository[models.RecordingSession]
	keyBuilder *KeyBuilder
}

// NewNatsSessionRepository creates a new NATS KV session repository.
func NewNatsSessionRepository(kvStore INatsKeyValue) *NatsSessionRepository {
	return &NatsSessionRepository{
		NatsBaseRepository: NewNatsBaseRepository[models.RecordingSession](kvStore, "session"),
		keyBuilder:         NewKeyBuilder(""),
	}
}

func (r *NatsSessionRepository) key() string {
	return r.keyBuilder.EntityKey(KeyPrefixSession, currentSessionUID)
}

// Get returns the persisted session, or a not-found error when no session
// is in progress.
func (r *NatsSessionRepository) Get(ctx context.Context) (*models.RecordingSession, error) {
	return r.NatsBaseRepository.Get(ctx, r.key())
}

// Save writes the session, replacing any previous state.
func (r *NatsSessionRepository) Save(ctx context.Context, session *models.RecordingSession) error {
	if session == nil {
		return domain.NewValidationError("session cannot be nil")
	}
	return r.NatsBaseRepository.Put(ctx, r.key(), session)
}

// Clear removes the persisted session. Clearing an already empty slot
// succeeds.
func (r *NatsSessionRepository) Clear(ctx context.Context) error {
	return r.NatsBaseRepository.Delete(ctx, r.key())
}
