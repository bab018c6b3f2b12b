// Copyright Laneway and each contributor to Laneway.
// SPDX-License-Identifier: MIT

package delivery

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/laneway/laneway-recording-service/internal/domain"
	"github.com/laneway/laneway-recording-service/internal/domain/models"
)

func TestFileSinkSaveRecording(t *testing.T) {
	dir := t.TempDir()
	sink := NewFileSink(filepath.Join(dir, "recordings"))
	sink.now = func() time.Time { return time.UnixMilli(1765000000000) }

	path, err := sink.SaveRecording(context.Background(), "rec-1", []byte("webm-bytes"))

	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "recordings", "laneway-recording-rec-1-1765000000000.webm"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []byte("webm-bytes"), data)
}

func TestFileSinkSaveRecordingEmpty(t *testing.T) {
	sink := NewFileSink(t.TempDir())

	_, err := sink.SaveRecording(context.Background(), "rec-1", nil)

	assert.Equal(t, domain.ErrorTypeValidation, domain.GetErrorType(err))
}

func TestFileSinkSaveParticipantData(t *testing.T) {
	sink := NewFileSink(t.TempDir())

	payload := models.ParticipantDataPayload{
		MeetingID:   "abc-defg-hij",
		RecordingID: "rec-1",
		Duration:    125.5,
		Participants: []models.ParticipantRecord{
			{Name: "Ada Lovelace"},
		},
	}

	path, err := sink.SaveParticipantData(context.Background(), "rec-1", payload)

	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var got models.ParticipantDataPayload
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, "abc-defg-hij", got.MeetingID)
	assert.Len(t, got.Participants, 1)
}
