// Copyright Laneway and each contributor to Laneway.
// SPDX-License-Identifier: MIT

// Package messaging implements the NATS backed message sending of the
// recording agent.
package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/laneway/laneway-recording-service/internal/domain/models"
	"github.com/laneway/laneway-recording-service/internal/logging"
)

// tabCommandAckTimeout bounds how long a start command waits for the tab to
// acknowledge before the coordinator gives up.
const tabCommandAckTimeout = 10 * time.Second

// INatsConn is the NATS connection interface needed for the message builder.
type INatsConn interface {
	IsConnected() bool
	Publish(subj string, data []byte) error
	RequestWithContext(ctx context.Context, subj string, data []byte) (*nats.Msg, error)
}

// MessageBuilder builds messages and sends them to the NATS server.
type MessageBuilder struct {
	NatsConn INatsConn
}

// NewMessageBuilder creates a new MessageBuilder.
func NewMessageBuilder(natsConn INatsConn) *MessageBuilder {
	return &MessageBuilder{
		NatsConn: natsConn,
	}
}

// sendMessage publishes the message to the NATS server.
func (m *MessageBuilder) sendMessage(ctx context.Context, subject string, data []byte) error {
	err := m.NatsConn.Publish(subject, data)
	if err != nil {
		slog.ErrorContext(ctx, "error sending message to NATS", logging.ErrKey, err, "subject", subject)
		return err
	}
	slog.DebugContext(ctx, "sent message to NATS", "subject", subject)
	return nil
}

// SendRecordingStarted delivers a RECORDING_STARTED command to the tab and
// waits for its acknowledgement. The session only becomes active once the
// tab confirms capture is running.
func (m *MessageBuilder) SendRecordingStarted(ctx context.Context, session *models.RecordingSession) error {
	command := models.TabCommand{
		Type:         models.TabCommandRecordingStarted,
		RecordingID:  session.RecordingID,
		UploadTarget: session.UploadTarget,
		Quality:      session.Quality,
		IsLocalMode:  session.IsLocalMode(),
	}
	data, err := json.Marshal(command)
	if err != nil {
		slog.ErrorContext(ctx, "error marshalling tab command", logging.ErrKey, err)
		return err
	}

	subject := models.TabCommandSubject(session.TabID)

	ctx, cancel := context.WithTimeout(ctx, tabCommandAckTimeout)
	defer cancel()

	reply, err := m.NatsConn.RequestWithContext(ctx, subject, data)
	if err != nil {
		slog.ErrorContext(ctx, "error requesting tab command ack",
			logging.ErrKey, err, "subject", subject, "tab_id", session.TabID)
		return err
	}

	var ack models.TabCommandAck
	if err := json.Unmarshal(reply.Data, &ack); err != nil {
		slog.ErrorContext(ctx, "error unmarshalling tab command ack",
			logging.ErrKey, err, "subject", subject)
		return err
	}
	if !ack.Acknowledged {
		return fmt.Errorf("tab %s rejected recording start: %s", session.TabID, ack.Error)
	}

	slog.DebugContext(ctx, "tab acknowledged recording start",
		"tab_id", session.TabID, "recording_id", session.RecordingID)
	return nil
}

// SendRecordingStopped delivers a RECORDING_STOPPED command to the tab.
// Fire and forget: the tab may already be closed.
func (m *MessageBuilder) SendRecordingStopped(ctx context.Context, tabID, recordingID string) error {
	command := models.TabCommand{
		Type:        models.TabCommandRecordingStopped,
		RecordingID: recordingID,
	}
	data, err := json.Marshal(command)
	if err != nil {
		slog.ErrorContext(ctx, "error marshalling tab command", logging.ErrKey, err)
		return err
	}

	return m.sendMessage(ctx, models.TabCommandSubject(tabID), data)
}

// SendRecordingFailed publishes a recording failure announcement.
func (m *MessageBuilder) SendRecordingFailed(ctx context.Context, event models.RecordingFailedEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		slog.ErrorContext(ctx, "error marshalling recording failed event", logging.ErrKey, err)
		return err
	}

	return m.sendMessage(ctx, models.RecordingFailedSubject, data)
}

// SendUploadComplete publishes the final disposition of a recording
// artifact.
func (m *MessageBuilder) SendUploadComplete(ctx context.Context, event models.UploadCompleteEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		slog.ErrorContext(ctx, "error marshalling upload complete event", logging.ErrKey, err)
		return err
	}

	return m.sendMessage(ctx, models.UploadCompleteSubject, data)
}
