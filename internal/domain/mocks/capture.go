// Copyright Laneway and each contributor to Laneway.
// SPDX-License-Identifier: MIT

package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/laneway/laneway-recording-service/internal/domain"
	"github.com/laneway/laneway-recording-service/internal/domain/models"
)

// MockMediaDevices implements MediaDevices for testing
type MockMediaDevices struct {
	mock.Mock
}

func (m *MockMediaDevices) AcquireDisplay(ctx context.Context, c domain.DisplayConstraints) (*domain.MediaStream, error) {
	args := m.Called(ctx, c)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.MediaStream), args.Error(1)
}

func (m *MockMediaDevices) AcquireDisplayAudio(ctx context.Context) (*domain.MediaStream, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.MediaStream), args.Error(1)
}

func (m *MockMediaDevices) AcquireMicrophone(ctx context.Context) (*domain.MediaStream, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.MediaStream), args.Error(1)
}

func (m *MockMediaDevices) MergeTracks(ctx context.Context, display, audio *domain.MediaStream) (*domain.MediaStream, error) {
	args := m.Called(ctx, display, audio)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.MediaStream), args.Error(1)
}

func (m *MockMediaDevices) StopTracks(ctx context.Context, stream *domain.MediaStream) error {
	args := m.Called(ctx, stream)
	return args.Error(0)
}

// MockUserPrompter implements UserPrompter for testing
type MockUserPrompter struct {
	mock.Mock
}

func (m *MockUserPrompter) ConfirmRecordWithoutAudio(ctx context.Context) (bool, error) {
	args := m.Called(ctx)
	return args.Bool(0), args.Error(1)
}

// MockSegmentSource implements SegmentSource for testing
type MockSegmentSource struct {
	mock.Mock
}

func (m *MockSegmentSource) Start(ctx context.Context, stream *domain.MediaStream, opts domain.EncoderOptions) (domain.SegmentSequence, error) {
	args := m.Called(ctx, stream, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(domain.SegmentSequence), args.Error(1)
}

// MockSegmentSequence implements SegmentSequence for testing
type MockSegmentSequence struct {
	mock.Mock
}

func (m *MockSegmentSequence) Next(ctx context.Context) (models.SegmentEvent, error) {
	args := m.Called(ctx)
	return args.Get(0).(models.SegmentEvent), args.Error(1)
}

func (m *MockSegmentSequence) Stop(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
