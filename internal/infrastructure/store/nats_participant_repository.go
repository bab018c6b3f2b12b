// Copyright Laneway and each contributor to Laneway.
// SPDX-License-Identifier: MIT

package store

import (
	"context"

	"github.com/laneway/laneway-recording-service/internal/domain"
	"github.com/laneway/laneway-recording-service/internal/domain/models"
)

// participantSnapshot wraps the record slice so the base repository has a
// single entity to encode.
type participantSnapshot struct {
	MeetingID string                     `msgpack:"meeting_id"`
	Records   []models.ParticipantRecord `msgpack:"records"`
}

// NatsParticipantSnapshotRepository persists per-meeting participant state
// in the participant-snapshots KV bucket.
type NatsParticipantSnapshotRepository struct {
	*NatsBaseRepository[participantSnapshot]
	keyBuilder *KeyBuilder
}

// NewNatsParticipantSnapshotRepository creates a new NATS KV participant
// snapshot repository.
func NewNatsParticipantSnapshotRepository(kvStore INatsKeyValue) *NatsParticipantSnapshotRepository {
	return &NatsParticipantSnapshotRepository{
		NatsBaseRepository: NewNatsBaseRepository[participantSnapshot](kvStore, "participant snapshot"),
		keyBuilder:         NewKeyBuilder(""),
	}
}

func (r *NatsParticipantSnapshotRepository) key(meetingID string) string {
	return r.keyBuilder.EntityKey(KeyPrefixParticipant, meetingID)
}

// Get returns the persisted records for a meeting. An absent snapshot is
// not an error: an empty slice is returned.
func (r *NatsParticipantSnapshotRepository) Get(ctx context.Context, meetingID string) ([]models.ParticipantRecord, error) {
	if meetingID == "" {
		return nil, domain.NewValidationError("meeting ID is required")
	}

	snapshot, err := r.NatsBaseRepository.Get(ctx, r.key(meetingID))
	if err != nil {
		if domain.GetErrorType(err) == domain.ErrorTypeNotFound {
			return nil, nil
		}
		return nil, err
	}
	return snapshot.Records, nil
}

// Save writes the records for a meeting, replacing any previous snapshot.
func (r *NatsParticipantSnapshotRepository) Save(ctx context.Context, meetingID string, records []models.ParticipantRecord) error {
	if meetingID == "" {
		return domain.NewValidationError("meeting ID is required")
	}
	return r.NatsBaseRepository.Put(ctx, r.key(meetingID), &participantSnapshot{
		MeetingID: meetingID,
		Records:   records,
	})
}

// Clear removes the snapshot for a meeting.
func (r *NatsParticipantSnapshotRepository) Clear(ctx context.Context, meetingID string) error {
	if meetingID == "" {
		return domain.NewValidationError("meeting ID is required")
	}
	return r.NatsBaseRepository.Delete(ctx, r.key(meetingID))
}
