// Copyright Laneway and each contributor to Laneway.
// SPDX-License-Identifier: MIT

package service

import (
	"context"
	"log/slog"

	"github.com/laneway/laneway-recording-service/internal/domain"
	"github.com/laneway/laneway-recording-service/internal/domain/models"
	"github.com/laneway/laneway-recording-service/internal/logging"
)

// SettingsService implements the business logic for user preferences.
type SettingsService struct {
	settingsRepository domain.SettingsRepository
}

// NewSettingsService creates a new SettingsService.
func NewSettingsService(settingsRepository domain.SettingsRepository) *SettingsService {
	return &SettingsService{
		settingsRepository: settingsRepository,
	}
}

// ServiceReady checks if the service is ready to serve requests.
func (s *SettingsService) ServiceReady() bool {
	return s.settingsRepository != nil
}

// GetSettings returns the user's preferences.
func (s *SettingsService) GetSettings(ctx context.Context) (*models.UserSettings, error) {
	if !s.ServiceReady() {
		slog.ErrorContext(ctx, "service not initialized", logging.PriorityCritical())
		return nil, domain.NewUnavailableError("service not initialized")
	}

	return s.settingsRepository.Get(ctx)
}

// UpdateSettings validates and saves the user's preferences.
func (s *SettingsService) UpdateSettings(ctx context.Context, settings *models.UserSettings) (*models.UserSettings, error) {
	if !s.ServiceReady() {
		slog.ErrorContext(ctx, "service not initialized", logging.PriorityCritical())
		return nil, domain.NewUnavailableError("service not initialized")
	}
	if settings == nil {
		return nil, domain.NewValidationError("settings are required")
	}
	if !settings.DefaultQuality.Valid() {
		return nil, domain.NewValidationError("unknown quality mode: " + string(settings.DefaultQuality))
	}

	if err := s.settingsRepository.Save(ctx, settings); err != nil {
		slog.ErrorContext(ctx, "error saving settings", logging.ErrKey, err)
		return nil, err
	}

	return settings, nil
}
