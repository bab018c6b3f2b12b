// Copyright Laneway and each contributor to Laneway.
// SPDX-License-Identifier: MIT

package store

import (
	"context"

	"github.com/laneway/laneway-recording-service/internal/domain"
	"github.com/laneway/laneway-recording-service/internal/domain/models"
)

const userSettingsUID = "user"

// NatsSettingsRepository persists user preferences in the user-settings KV
// bucket.
type NatsSettingsRepository struct {
	*NatsBaseRepository[models.UserSettings]
	keyBuilder *KeyBuilder
}

// NewNatsSettingsRepository creates a new NATS KV settings repository.
func NewNatsSettingsRepository(kvStore INatsKeyValue) *NatsSettingsRepository {
	return &NatsSettingsRepository{
		NatsBaseRepository: NewNatsBaseRepository[models.UserSettings](kvStore, "settings"),
		keyBuilder:         NewKeyBuilder(""),
	}
}

func (r *NatsSettingsRepository) key() string {
	return r.keyBuilder.EntityKey(KeyPrefixSettings, userSettingsUID)
}

// Get returns the saved settings, falling back to defaults when the user
// never saved any.
func (r *NatsSettingsRepository) Get(ctx context.Context) (*models.UserSettings, error) {
	settings, err := r.NatsBaseRepository.Get(ctx, r.key())
	if err != nil {
		if domain.GetErrorType(err) == domain.ErrorTypeNotFound {
			return models.DefaultUserSettings(), nil
		}
		return nil, err
	}
	return settings, nil
}

// Save writes the settings, replacing any previous value.
func (r *NatsSettingsRepository) Save(ctx context.Context, settings *models.UserSettings) error {
	if settings == nil {
		return domain.NewValidationError("settings cannot be nil")
	}
	return r.NatsBaseRepository.Put(ctx, r.key(), settings)
}
