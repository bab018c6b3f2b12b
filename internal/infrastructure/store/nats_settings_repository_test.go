// Copyright Laneway and each contributor to Laneway.
// SPDX-License-Identifier: MIT

package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/laneway/laneway-recording-service/internal/domain/models"
)

func TestNatsSettingsRepositoryDefaultsWhenUnset(t *testing.T) {
	repo := NewNatsSettingsRepository(newMockNatsKeyValue())

	settings, err := repo.Get(context.Background())

	require.NoError(t, err)
	assert.Equal(t, models.DefaultUserSettings(), settings)
}

func TestNatsSettingsRepositorySaveAndGet(t *testing.T) {
	ctx := context.Background()
	repo := NewNatsSettingsRepository(newMockNatsKeyValue())

	saved := &models.UserSettings{
		AutoStart:      true,
		AutoStop:       false,
		DefaultQuality: models.Quality1080p,
	}
	require.NoError(t, repo.Save(ctx, saved))

	got, err := repo.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, saved, got)
}

func TestNatsParticipantSnapshotRepositoryRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := NewNatsParticipantSnapshotRepository(newMockNatsKeyValue())

	// An absent snapshot yields no records and no error.
	records, err := repo.Get(ctx, "abc-defg-hij")
	require.NoError(t, err)
	assert.Empty(t, records)

	saved := []models.ParticipantRecord{{Name: "Ada Lovelace"}, {Name: "Grace Hopper"}}
	require.NoError(t, repo.Save(ctx, "abc-defg-hij", saved))

	records, err = repo.Get(ctx, "abc-defg-hij")
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "Ada Lovelace", records[0].Name)

	require.NoError(t, repo.Clear(ctx, "abc-defg-hij"))

	records, err = repo.Get(ctx, "abc-defg-hij")
	require.NoError(t, err)
	assert.Empty(t, records)
}
