// Copyright Laneway and each contributor to Laneway.
// SPDX-License-Identifier: MIT

package domain

import (
	"context"

	"github.com/laneway/laneway-recording-service/internal/domain/models"
)

// RelayClient is the port to the remote recording relay.
type RelayClient interface {
	// Configured reports whether a relay endpoint is configured at all.
	Configured() bool
	// Probe checks that the relay is reachable. A failed probe means the
	// session runs in local mode.
	Probe(ctx context.Context) error
	// RecordingUploadTarget resolves the upload destination for a recording.
	RecordingUploadTarget(recordingID string) *models.UploadTarget
	PutRecording(ctx context.Context, recordingID string, artifact []byte) error
	PutParticipantData(ctx context.Context, recordingID string, payload models.ParticipantDataPayload) error
	PostAnalytics(ctx context.Context, event models.ParticipantAnalyticsEvent) error
}

// LocalSink saves recording artifacts to local storage when no remote
// destination is available.
type LocalSink interface {
	// SaveRecording writes the artifact and returns its location.
	SaveRecording(ctx context.Context, recordingID string, artifact []byte) (string, error)
	SaveParticipantData(ctx context.Context, recordingID string, payload models.ParticipantDataPayload) (string, error)
}

// ArtifactDeliverer delivers a finished recording to its destination,
// falling back to local storage when the remote path fails.
type ArtifactDeliverer interface {
	DeliverRecording(ctx context.Context, session *models.RecordingSession, artifact []byte) (*models.DeliveryOutcome, error)
	DeliverParticipantData(ctx context.Context, session *models.RecordingSession, payload models.ParticipantDataPayload) (*models.DeliveryOutcome, error)
}
