// Copyright Laneway and each contributor to Laneway.
// SPDX-License-Identifier: MIT

package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/laneway/laneway-recording-service/internal/domain"
	"github.com/laneway/laneway-recording-service/internal/domain/mocks"
	"github.com/laneway/laneway-recording-service/internal/domain/models"
)

func TestSettingsServiceGet(t *testing.T) {
	repo := &mocks.MockSettingsRepository{}
	svc := NewSettingsService(repo)

	repo.On("Get", mock.Anything).Return(models.DefaultUserSettings(), nil)

	settings, err := svc.GetSettings(context.Background())

	require.NoError(t, err)
	assert.Equal(t, models.QualityAudioOnly, settings.DefaultQuality)
}

func TestSettingsServiceUpdate(t *testing.T) {
	repo := &mocks.MockSettingsRepository{}
	svc := NewSettingsService(repo)

	updated := &models.UserSettings{AutoStart: true, AutoStop: true, DefaultQuality: models.Quality1080p}
	repo.On("Save", mock.Anything, updated).Return(nil)

	got, err := svc.UpdateSettings(context.Background(), updated)

	require.NoError(t, err)
	assert.Equal(t, updated, got)
}

func TestSettingsServiceUpdateValidation(t *testing.T) {
	svc := NewSettingsService(&mocks.MockSettingsRepository{})

	_, err := svc.UpdateSettings(context.Background(), nil)
	assert.Equal(t, domain.ErrorTypeValidation, domain.GetErrorType(err))

	_, err = svc.UpdateSettings(context.Background(), &models.UserSettings{DefaultQuality: "8k"})
	assert.Equal(t, domain.ErrorTypeValidation, domain.GetErrorType(err))
}

func TestSettingsServiceNotReady(t *testing.T) {
	svc := NewSettingsService(nil)

	assert.False(t, svc.ServiceReady())

	_, err := svc.GetSettings(context.Background())
	assert.Equal(t, domain.ErrorTypeUnavailable, domain.GetErrorType(err))
}
