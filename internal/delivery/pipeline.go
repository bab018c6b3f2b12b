// Copyright Laneway and each contributor to Laneway.
// SPDX-License-Identifier: MIT

package delivery

import (
	"context"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v5"

	"github.com/laneway/laneway-recording-service/internal/domain"
	"github.com/laneway/laneway-recording-service/internal/domain/models"
	"github.com/laneway/laneway-recording-service/internal/logging"
	"github.com/laneway/laneway-recording-service/pkg/constants"
)

// Pipeline delivers finished artifacts. Remote upload is tried first when
// the session has a target; exhausted retries fall back to the local sink
// so a recording is never lost.
type Pipeline struct {
	relay        domain.RelayClient
	sink         domain.LocalSink
	retryBackoff time.Duration
}

// NewPipeline creates a delivery pipeline.
func NewPipeline(relay domain.RelayClient, sink domain.LocalSink) *Pipeline {
	return &Pipeline{
		relay:        relay,
		sink:         sink,
		retryBackoff: constants.UploadRetryBackoff,
	}
}

// retryUpload runs op with the fixed upload retry policy.
func (p *Pipeline) retryUpload(ctx context.Context, op func() error) error {
	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		return struct{}{}, op()
	},
		backoff.WithBackOff(backoff.NewConstantBackOff(p.retryBackoff)),
		backoff.WithMaxTries(constants.UploadMaxAttempts),
	)
	return err
}

// DeliverRecording sends the recording artifact to its destination. The
// returned outcome says where it ended up; an error means the artifact
// could not be preserved anywhere.
func (p *Pipeline) DeliverRecording(ctx context.Context, session *models.RecordingSession, artifact []byte) (*models.DeliveryOutcome, error) {
	if len(artifact) == 0 {
		return nil, domain.NewValidationError("recording artifact is empty")
	}

	if session.IsLocalMode() {
		return p.saveLocal(ctx, session.RecordingID, artifact, models.LocalReasonLocalMode)
	}

	err := p.retryUpload(ctx, func() error {
		return p.relay.PutRecording(ctx, session.RecordingID, artifact)
	})
	if err != nil {
		slog.WarnContext(ctx, "recording upload failed, saving locally",
			logging.ErrKey, err, "recording_id", session.RecordingID)
		return p.saveLocal(ctx, session.RecordingID, artifact, models.LocalReasonRemoteFailed)
	}

	return &models.DeliveryOutcome{
		Mode:     models.DeliveryModeRemote,
		Location: session.UploadTarget.URL,
		Size:     int64(len(artifact)),
	}, nil
}

func (p *Pipeline) saveLocal(ctx context.Context, recordingID string, artifact []byte, reason models.LocalReason) (*models.DeliveryOutcome, error) {
	path, err := p.sink.SaveRecording(ctx, recordingID, artifact)
	if err != nil {
		return nil, domain.NewInternalError("failed to preserve recording", err)
	}

	slog.InfoContext(ctx, "recording saved locally",
		"recording_id", recordingID, "path", path, "reason", string(reason))

	return &models.DeliveryOutcome{
		Mode:        models.DeliveryModeLocal,
		LocalReason: reason,
		Location:    path,
		Size:        int64(len(artifact)),
	}, nil
}

// DeliverParticipantData sends the participant metadata artifact, with the
// same remote-then-local policy as the recording itself.
func (p *Pipeline) DeliverParticipantData(ctx context.Context, session *models.RecordingSession, payload models.ParticipantDataPayload) (*models.DeliveryOutcome, error) {
	if session.IsLocalMode() {
		return p.saveParticipantsLocal(ctx, session.RecordingID, payload, models.LocalReasonLocalMode)
	}

	err := p.retryUpload(ctx, func() error {
		return p.relay.PutParticipantData(ctx, session.RecordingID, payload)
	})
	if err != nil {
		slog.WarnContext(ctx, "participant data upload failed, saving locally",
			logging.ErrKey, err, "recording_id", session.RecordingID)
		return p.saveParticipantsLocal(ctx, session.RecordingID, payload, models.LocalReasonRemoteFailed)
	}

	return &models.DeliveryOutcome{
		Mode:     models.DeliveryModeRemote,
		Location: "participant-data/" + session.RecordingID + ".json",
	}, nil
}

func (p *Pipeline) saveParticipantsLocal(ctx context.Context, recordingID string, payload models.ParticipantDataPayload, reason models.LocalReason) (*models.DeliveryOutcome, error) {
	path, err := p.sink.SaveParticipantData(ctx, recordingID, payload)
	if err != nil {
		return nil, domain.NewInternalError("failed to preserve participant data", err)
	}

	return &models.DeliveryOutcome{
		Mode:        models.DeliveryModeLocal,
		LocalReason: reason,
		Location:    path,
	}, nil
}
