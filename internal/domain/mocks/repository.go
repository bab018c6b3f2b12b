// Copyright Laneway and each contributor to Laneway.
// SPDX-License-Identifier: MIT

package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/laneway/laneway-recording-service/internal/domain/models"
)

// MockSessionRepository implements SessionRepository for testing
type MockSessionRepository struct {
	mock.Mock
}

func (m *MockSessionRepository) Get(ctx context.Context) (*models.RecordingSession, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.RecordingSession), args.Error(1)
}

func (m *MockSessionRepository) Save(ctx context.Context, session *models.RecordingSession) error {
	args := m.Called(ctx, session)
	return args.Error(0)
}

func (m *MockSessionRepository) Clear(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// MockSettingsRepository implements SettingsRepository for testing
type MockSettingsRepository struct {
	mock.Mock
}

func (m *MockSettingsRepository) Get(ctx context.Context) (*models.UserSettings, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.UserSettings), args.Error(1)
}

func (m *MockSettingsRepository) Save(ctx context.Context, settings *models.UserSettings) error {
	args := m.Called(ctx, settings)
	return args.Error(0)
}

// MockParticipantSnapshotRepository implements ParticipantSnapshotRepository for testing
type MockParticipantSnapshotRepository struct {
	mock.Mock
}

func (m *MockParticipantSnapshotRepository) Get(ctx context.Context, meetingID string) ([]models.ParticipantRecord, error) {
	args := m.Called(ctx, meetingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.ParticipantRecord), args.Error(1)
}

func (m *MockParticipantSnapshotRepository) Save(ctx context.Context, meetingID string, records []models.ParticipantRecord) error {
	args := m.Called(ctx, meetingID, records)
	return args.Error(0)
}

func (m *MockParticipantSnapshotRepository) Clear(ctx context.Context, meetingID string) error {
	args := m.Called(ctx, meetingID)
	return args.Error(0)
}
