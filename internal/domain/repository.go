// Copyright Laneway and each contributor to Laneway.
// SPDX-License-Identifier: MIT

package domain

import (
	"context"

	"github.com/laneway/laneway-recording-service/internal/domain/models"
)

// SessionRepository persists the single in-progress recording session so it
// survives agent restarts. There is at most one session at a time, so the
// store holds at most one entry.
type SessionRepository interface {
	Get(ctx context.Context) (*models.RecordingSession, error)
	Save(ctx context.Context, session *models.RecordingSession) error
	Clear(ctx context.Context) error
}

// SettingsRepository persists user preferences.
type SettingsRepository interface {
	Get(ctx context.Context) (*models.UserSettings, error)
	Save(ctx context.Context, settings *models.UserSettings) error
}

// ParticipantSnapshotRepository persists the latest participant state per
// meeting so tracking survives agent restarts mid-recording.
type ParticipantSnapshotRepository interface {
	Get(ctx context.Context, meetingID string) ([]models.ParticipantRecord, error)
	Save(ctx context.Context, meetingID string, records []models.ParticipantRecord) error
	Clear(ctx context.Context, meetingID string) error
}
