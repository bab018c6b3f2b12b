// Copyright Laneway and each contributor to Laneway.
// SPDX-License-Identifier: MIT

package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/laneway/laneway-recording-service/internal/domain/models"
)

// MockRelayClient implements RelayClient for testing
type MockRelayClient struct {
	mock.Mock
}

func (m *MockRelayClient) Configured() bool {
	args := m.Called()
	return args.Bool(0)
}

func (m *MockRelayClient) Probe(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockRelayClient) RecordingUploadTarget(recordingID string) *models.UploadTarget {
	args := m.Called(recordingID)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).(*models.UploadTarget)
}

func (m *MockRelayClient) PutRecording(ctx context.Context, recordingID string, artifact []byte) error {
	args := m.Called(ctx, recordingID, artifact)
	return args.Error(0)
}

func (m *MockRelayClient) PutParticipantData(ctx context.Context, recordingID string, payload models.ParticipantDataPayload) error {
	args := m.Called(ctx, recordingID, payload)
	return args.Error(0)
}

func (m *MockRelayClient) PostAnalytics(ctx context.Context, event models.ParticipantAnalyticsEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

// MockLocalSink implements LocalSink for testing
type MockLocalSink struct {
	mock.Mock
}

func (m *MockLocalSink) SaveRecording(ctx context.Context, recordingID string, artifact []byte) (string, error) {
	args := m.Called(ctx, recordingID, artifact)
	return args.String(0), args.Error(1)
}

func (m *MockLocalSink) SaveParticipantData(ctx context.Context, recordingID string, payload models.ParticipantDataPayload) (string, error) {
	args := m.Called(ctx, recordingID, payload)
	return args.String(0), args.Error(1)
}

// MockArtifactDeliverer implements ArtifactDeliverer for testing
type MockArtifactDeliverer struct {
	mock.Mock
}

func (m *MockArtifactDeliverer) DeliverRecording(ctx context.Context, session *models.RecordingSession, artifact []byte) (*models.DeliveryOutcome, error) {
	args := m.Called(ctx, session, artifact)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.DeliveryOutcome), args.Error(1)
}

func (m *MockArtifactDeliverer) DeliverParticipantData(ctx context.Context, session *models.RecordingSession, payload models.ParticipantDataPayload) (*models.DeliveryOutcome, error) {
	args := m.Called(ctx, session, payload)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.DeliveryOutcome), args.Error(1)
}
