// Copyright Laneway and each contributor to Laneway.
// SPDX-License-Identifier: MIT

package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/laneway/laneway-recording-service/internal/domain/models"
)

// MockMessageBuilder implements MessageBuilder for testing
type MockMessageBuilder struct {
	mock.Mock
}

func (m *MockMessageBuilder) SendRecordingStarted(ctx context.Context, session *models.RecordingSession) error {
	args := m.Called(ctx, session)
	return args.Error(0)
}

func (m *MockMessageBuilder) SendRecordingStopped(ctx context.Context, tabID, recordingID string) error {
	args := m.Called(ctx, tabID, recordingID)
	return args.Error(0)
}

func (m *MockMessageBuilder) SendRecordingFailed(ctx context.Context, event models.RecordingFailedEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockMessageBuilder) SendUploadComplete(ctx context.Context, event models.UploadCompleteEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}
