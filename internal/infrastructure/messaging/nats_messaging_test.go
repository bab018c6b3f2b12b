// Copyright Laneway and each contributor to Laneway.
// SPDX-License-Identifier: MIT

package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/laneway/laneway-recording-service/internal/domain/models"
)

// fakeNatsConn implements INatsConn for testing
type fakeNatsConn struct {
	published  map[string][][]byte
	requested  map[string][][]byte
	reply      []byte
	publishErr error
	requestErr error
}

func newFakeNatsConn() *fakeNatsConn {
	return &fakeNatsConn{
		published: make(map[string][][]byte),
		requested: make(map[string][][]byte),
	}
}

func (f *fakeNatsConn) IsConnected() bool {
	return true
}

func (f *fakeNatsConn) Publish(subj string, data []byte) error {
	if f.publishErr != nil {
		return f.publishErr
	}
	f.published[subj] = append(f.published[subj], data)
	return nil
}

func (f *fakeNatsConn) RequestWithContext(ctx context.Context, subj string, data []byte) (*nats.Msg, error) {
	if f.requestErr != nil {
		return nil, f.requestErr
	}
	f.requested[subj] = append(f.requested[subj], data)
	return &nats.Msg{Data: f.reply}, nil
}

func startedSession() *models.RecordingSession {
	return &models.RecordingSession{
		RecordingID: "rec-1",
		MeetingID:   "meet-abc",
		TabID:       "tab-7",
		Quality:     models.Quality720p,
		Status:      models.SessionStatusStarting,
	}
}

func TestSendRecordingStartedAcknowledged(t *testing.T) {
	conn := newFakeNatsConn()
	conn.reply, _ = json.Marshal(models.TabCommandAck{Acknowledged: true})
	builder := NewMessageBuilder(conn)

	session := startedSession()
	session.UploadTarget = &models.UploadTarget{URL: "https://relay.example.com/recordings/rec-1.webm"}
	err := builder.SendRecordingStarted(context.Background(), session)

	require.NoError(t, err)
	subject := models.TabCommandSubject("tab-7")
	require.Len(t, conn.requested[subject], 1)

	var command models.TabCommand
	require.NoError(t, json.Unmarshal(conn.requested[subject][0], &command))
	assert.Equal(t, models.TabCommandRecordingStarted, command.Type)
	assert.Equal(t, "rec-1", command.RecordingID)
	require.NotNil(t, command.UploadTarget)
	assert.Equal(t, "https://relay.example.com/recordings/rec-1.webm", command.UploadTarget.URL)
	assert.Equal(t, models.Quality720p, command.Quality)
	assert.False(t, command.IsLocalMode)
}

func TestSendRecordingStartedLocalMode(t *testing.T) {
	conn := newFakeNatsConn()
	conn.reply, _ = json.Marshal(models.TabCommandAck{Acknowledged: true})
	builder := NewMessageBuilder(conn)

	err := builder.SendRecordingStarted(context.Background(), startedSession())

	require.NoError(t, err)
	subject := models.TabCommandSubject("tab-7")
	require.Len(t, conn.requested[subject], 1)

	var command models.TabCommand
	require.NoError(t, json.Unmarshal(conn.requested[subject][0], &command))
	assert.Nil(t, command.UploadTarget)
	assert.True(t, command.IsLocalMode)
}

func TestSendRecordingStartedRejected(t *testing.T) {
	conn := newFakeNatsConn()
	conn.reply, _ = json.Marshal(models.TabCommandAck{Acknowledged: false, Error: "no capture"})
	builder := NewMessageBuilder(conn)

	err := builder.SendRecordingStarted(context.Background(), startedSession())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "no capture")
}

func TestSendRecordingStartedRequestFails(t *testing.T) {
	conn := newFakeNatsConn()
	conn.requestErr = errors.New("no responders")
	builder := NewMessageBuilder(conn)

	err := builder.SendRecordingStarted(context.Background(), startedSession())

	assert.Error(t, err)
}

func TestSendRecordingStoppedPublishes(t *testing.T) {
	conn := newFakeNatsConn()
	builder := NewMessageBuilder(conn)

	err := builder.SendRecordingStopped(context.Background(), "tab-7", "rec-1")

	require.NoError(t, err)
	subject := models.TabCommandSubject("tab-7")
	require.Len(t, conn.published[subject], 1)

	var command models.TabCommand
	require.NoError(t, json.Unmarshal(conn.published[subject][0], &command))
	assert.Equal(t, models.TabCommandRecordingStopped, command.Type)
}

func TestSendRecordingFailed(t *testing.T) {
	conn := newFakeNatsConn()
	builder := NewMessageBuilder(conn)

	err := builder.SendRecordingFailed(context.Background(), models.RecordingFailedEvent{
		RecordingID: "rec-1",
		Error:       "encoder died",
	})

	require.NoError(t, err)
	require.Len(t, conn.published[models.RecordingFailedSubject], 1)
}

func TestSendUploadComplete(t *testing.T) {
	conn := newFakeNatsConn()
	builder := NewMessageBuilder(conn)

	err := builder.SendUploadComplete(context.Background(), models.UploadCompleteEvent{
		RecordingID: "rec-1",
		Outcome: models.DeliveryOutcome{
			Mode:     models.DeliveryModeRemote,
			Location: "recordings/rec-1.webm",
			Size:     1024,
		},
	})

	require.NoError(t, err)
	require.Len(t, conn.published[models.UploadCompleteSubject], 1)

	var event models.UploadCompleteEvent
	require.NoError(t, json.Unmarshal(conn.published[models.UploadCompleteSubject][0], &event))
	assert.Equal(t, models.DeliveryModeRemote, event.Outcome.Mode)
}
