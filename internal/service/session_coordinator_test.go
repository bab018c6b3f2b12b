// Copyright Laneway and each contributor to Laneway.
// SPDX-License-Identifier: MIT

package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/laneway/laneway-recording-service/internal/capture"
	"github.com/laneway/laneway-recording-service/internal/domain"
	"github.com/laneway/laneway-recording-service/internal/domain/mocks"
	"github.com/laneway/laneway-recording-service/internal/domain/models"
)

// fakeRecorder implements Recorder for testing
type fakeRecorder struct {
	startErr     error
	stopArtifact []byte
	stopErr      error
	done         chan struct{}
	collectErr   error
	started      bool
	stopped      bool
}

func newFakeRecorder() *fakeRecorder {
	return &fakeRecorder{
		stopArtifact: []byte("webm"),
		done:         make(chan struct{}),
	}
}

func (f *fakeRecorder) Start(ctx context.Context, stream *domain.MediaStream, quality models.QualityMode) error {
	f.started = true
	return f.startErr
}

func (f *fakeRecorder) Stop(ctx context.Context) ([]byte, error) {
	f.stopped = true
	return f.stopArtifact, f.stopErr
}

func (f *fakeRecorder) Done() <-chan struct{} { return f.done }
func (f *fakeRecorder) Err() error            { return f.collectErr }

// fakeAcquirer implements MediaAcquirer for testing
type fakeAcquirer struct {
	acquireErr error
	acquired   *capture.AcquiredCapture
	releases   int
}

func (f *fakeAcquirer) Acquire(ctx context.Context, quality models.QualityMode) (*capture.AcquiredCapture, error) {
	if f.acquireErr != nil {
		return nil, f.acquireErr
	}
	if f.acquired != nil {
		return f.acquired, nil
	}
	return &capture.AcquiredCapture{Display: &domain.MediaStream{ID: "display-1", HasAudio: true}}, nil
}

func (f *fakeAcquirer) Release(ctx context.Context, acquired *capture.AcquiredCapture) {
	f.releases++
}

type coordinatorFixture struct {
	coordinator  *SessionCoordinator
	sessionRepo  *mocks.MockSessionRepository
	settingsRepo *mocks.MockSettingsRepository
	snapshotRepo *mocks.MockParticipantSnapshotRepository
	builder      *mocks.MockMessageBuilder
	relay        *mocks.MockRelayClient
	deliverer    *mocks.MockArtifactDeliverer
	acquirer     *fakeAcquirer
	recorder     *fakeRecorder
}

func setupCoordinatorForTesting() *coordinatorFixture {
	f := &coordinatorFixture{
		sessionRepo:  &mocks.MockSessionRepository{},
		settingsRepo: &mocks.MockSettingsRepository{},
		snapshotRepo: &mocks.MockParticipantSnapshotRepository{},
		builder:      &mocks.MockMessageBuilder{},
		relay:        &mocks.MockRelayClient{},
		deliverer:    &mocks.MockArtifactDeliverer{},
		acquirer:     &fakeAcquirer{},
		recorder:     newFakeRecorder(),
	}

	tracker := NewParticipantTracker(f.snapshotRepo, f.relay)
	f.coordinator = NewSessionCoordinator(
		f.sessionRepo,
		f.settingsRepo,
		f.builder,
		f.relay,
		f.deliverer,
		f.acquirer,
		func() Recorder { return f.recorder },
		tracker,
		ServiceConfig{},
	)
	return f
}

func (f *coordinatorFixture) expectHappyStart() {
	f.settingsRepo.On("Get", mock.Anything).Return(models.DefaultUserSettings(), nil)
	f.relay.On("Configured").Return(true)
	f.relay.On("Probe", mock.Anything).Return(nil)
	f.relay.On("RecordingUploadTarget", mock.Anything).Return(&models.UploadTarget{
		URL:    "https://relay.example.com/recordings/rec",
		APIKey: "secret",
	})
	f.sessionRepo.On("Save", mock.Anything, mock.Anything).Return(nil)
	f.builder.On("SendRecordingStarted", mock.Anything, mock.Anything).Return(nil)
	f.snapshotRepo.On("Get", mock.Anything, "abc-defg-hij").Return(nil, nil)
}

func startRequest() models.StartRecordingRequest {
	return models.StartRecordingRequest{TabID: "tab-1", MeetingID: "abc-defg-hij", Quality: models.Quality720p}
}

func TestStartRecordingSuccess(t *testing.T) {
	f := setupCoordinatorForTesting()
	f.expectHappyStart()

	session, err := f.coordinator.StartRecording(context.Background(), startRequest())

	require.NoError(t, err)
	assert.Equal(t, models.SessionStatusActive, session.Status)
	assert.Equal(t, "abc-defg-hij", session.MeetingID)
	assert.False(t, session.IsLocalMode())
	assert.True(t, f.recorder.started)
	f.builder.AssertCalled(t, "SendRecordingStarted", mock.Anything, mock.MatchedBy(func(s *models.RecordingSession) bool {
		return s.TabID == "tab-1" && s.RecordingID == session.RecordingID && !s.IsLocalMode()
	}))
}

func TestStartRecordingRejectsConcurrentSession(t *testing.T) {
	f := setupCoordinatorForTesting()
	f.expectHappyStart()

	_, err := f.coordinator.StartRecording(context.Background(), startRequest())
	require.NoError(t, err)

	_, err = f.coordinator.StartRecording(context.Background(), startRequest())

	assert.Equal(t, domain.ErrorTypeConflict, domain.GetErrorType(err))
}

func TestStartRecordingLocalModeWhenProbeFails(t *testing.T) {
	f := setupCoordinatorForTesting()
	f.settingsRepo.On("Get", mock.Anything).Return(models.DefaultUserSettings(), nil)
	f.relay.On("Configured").Return(true)
	f.relay.On("Probe", mock.Anything).Return(domain.NewUnavailableError("unreachable"))
	f.sessionRepo.On("Save", mock.Anything, mock.Anything).Return(nil)
	f.builder.On("SendRecordingStarted", mock.Anything, mock.Anything).Return(nil)
	f.snapshotRepo.On("Get", mock.Anything, mock.Anything).Return(nil, nil)

	session, err := f.coordinator.StartRecording(context.Background(), startRequest())

	require.NoError(t, err)
	assert.True(t, session.IsLocalMode())
	f.relay.AssertNotCalled(t, "RecordingUploadTarget", mock.Anything)
}

func TestStartRecordingAcquisitionFailureReturnsToIdle(t *testing.T) {
	f := setupCoordinatorForTesting()
	f.relay.On("Configured").Return(false)
	f.sessionRepo.On("Save", mock.Anything, mock.Anything).Return(nil)
	f.sessionRepo.On("Clear", mock.Anything).Return(nil)
	f.acquirer.acquireErr = domain.ErrPermissionDenied

	_, err := f.coordinator.StartRecording(context.Background(), startRequest())

	assert.ErrorIs(t, err, domain.ErrPermissionDenied)
	assert.Equal(t, models.SessionStatusIdle, f.coordinator.GetState(context.Background()).Status)
	f.sessionRepo.AssertCalled(t, "Clear", mock.Anything)

	// A failed start must not block the next one.
	f.acquirer.acquireErr = nil
	f.relay.On("Probe", mock.Anything).Return(nil)
	f.relay.On("RecordingUploadTarget", mock.Anything).Return(nil)
	f.builder.On("SendRecordingStarted", mock.Anything, mock.Anything).Return(nil)
	f.snapshotRepo.On("Get", mock.Anything, mock.Anything).Return(nil, nil)

	_, err = f.coordinator.StartRecording(context.Background(), startRequest())
	assert.NoError(t, err)
}

func TestStartRecordingTabAckFailure(t *testing.T) {
	f := setupCoordinatorForTesting()
	f.relay.On("Configured").Return(false)
	f.sessionRepo.On("Save", mock.Anything, mock.Anything).Return(nil)
	f.sessionRepo.On("Clear", mock.Anything).Return(nil)
	f.builder.On("SendRecordingStarted", mock.Anything, mock.Anything).
		Return(domain.NewUnavailableError("tab gone"))

	_, err := f.coordinator.StartRecording(context.Background(), startRequest())

	require.Error(t, err)
	assert.True(t, f.recorder.stopped)
	assert.Equal(t, 1, f.acquirer.releases)
	assert.Equal(t, models.SessionStatusIdle, f.coordinator.GetState(context.Background()).Status)
}

func TestStartRecordingValidation(t *testing.T) {
	f := setupCoordinatorForTesting()

	_, err := f.coordinator.StartRecording(context.Background(), models.StartRecordingRequest{MeetingID: "m"})
	assert.Equal(t, domain.ErrorTypeValidation, domain.GetErrorType(err))

	_, err = f.coordinator.StartRecording(context.Background(), models.StartRecordingRequest{TabID: "t"})
	assert.Equal(t, domain.ErrorTypeValidation, domain.GetErrorType(err))
}

func TestStopRecordingSuccess(t *testing.T) {
	f := setupCoordinatorForTesting()
	f.expectHappyStart()
	f.sessionRepo.On("Clear", mock.Anything).Return(nil)
	f.builder.On("SendRecordingStopped", mock.Anything, "tab-1", mock.Anything).Return(nil)
	f.builder.On("SendUploadComplete", mock.Anything, mock.Anything).Return(nil)
	f.snapshotRepo.On("Save", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	f.snapshotRepo.On("Clear", mock.Anything, "abc-defg-hij").Return(nil)

	remoteOutcome := &models.DeliveryOutcome{Mode: models.DeliveryModeRemote, Location: "recordings/x.webm", Size: 4}
	f.deliverer.On("DeliverRecording", mock.Anything, mock.Anything, []byte("webm")).Return(remoteOutcome, nil)
	f.deliverer.On("DeliverParticipantData", mock.Anything, mock.Anything, mock.Anything).
		Return(&models.DeliveryOutcome{Mode: models.DeliveryModeRemote}, nil)

	session, err := f.coordinator.StartRecording(context.Background(), startRequest())
	require.NoError(t, err)

	outcome, err := f.coordinator.StopRecording(context.Background(), models.StopReasonUserStop)

	require.NoError(t, err)
	assert.Equal(t, models.DeliveryModeRemote, outcome.Mode)
	assert.True(t, f.recorder.stopped)
	assert.Equal(t, 1, f.acquirer.releases)
	assert.Equal(t, models.SessionStatusIdle, f.coordinator.GetState(context.Background()).Status)

	f.builder.AssertCalled(t, "SendUploadComplete", mock.Anything, mock.MatchedBy(func(e models.UploadCompleteEvent) bool {
		return e.RecordingID == session.RecordingID && e.Outcome.Mode == models.DeliveryModeRemote
	}))
}

func TestStopRecordingNoActiveSession(t *testing.T) {
	f := setupCoordinatorForTesting()

	_, err := f.coordinator.StopRecording(context.Background(), models.StopReasonUserStop)

	assert.Equal(t, domain.ErrorTypeNotFound, domain.GetErrorType(err))
}

func TestStopRecordingDeliveryFailureAnnouncesFailed(t *testing.T) {
	f := setupCoordinatorForTesting()
	f.expectHappyStart()
	f.sessionRepo.On("Clear", mock.Anything).Return(nil)
	f.builder.On("SendRecordingStopped", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	f.builder.On("SendRecordingFailed", mock.Anything, mock.Anything).Return(nil)

	f.deliverer.On("DeliverRecording", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, domain.NewInternalError("nowhere to put it"))

	_, err := f.coordinator.StartRecording(context.Background(), startRequest())
	require.NoError(t, err)

	_, err = f.coordinator.StopRecording(context.Background(), models.StopReasonUserStop)

	require.Error(t, err)
	f.builder.AssertCalled(t, "SendRecordingFailed", mock.Anything, mock.Anything)
	assert.Equal(t, models.SessionStatusIdle, f.coordinator.GetState(context.Background()).Status)
}

func TestCaptureFailureMidRecordingDeliversPartialArtifact(t *testing.T) {
	f := setupCoordinatorForTesting()
	f.expectHappyStart()
	f.sessionRepo.On("Clear", mock.Anything).Return(nil)
	f.builder.On("SendRecordingStopped", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	f.builder.On("SendRecordingFailed", mock.Anything, mock.Anything).Return(nil)
	f.builder.On("SendUploadComplete", mock.Anything, mock.Anything).Return(nil)
	f.snapshotRepo.On("Clear", mock.Anything, mock.Anything).Return(nil)

	f.recorder.stopArtifact = []byte("partial")
	f.deliverer.On("DeliverRecording", mock.Anything, mock.Anything, []byte("partial")).
		Return(&models.DeliveryOutcome{Mode: models.DeliveryModeLocal, LocalReason: models.LocalReasonLocalMode}, nil)
	f.deliverer.On("DeliverParticipantData", mock.Anything, mock.Anything, mock.Anything).
		Return(&models.DeliveryOutcome{Mode: models.DeliveryModeLocal}, nil)

	_, err := f.coordinator.StartRecording(context.Background(), startRequest())
	require.NoError(t, err)

	// Encoder fails mid-recording.
	f.recorder.collectErr = domain.NewInternalError("encoder died")
	close(f.recorder.done)

	require.Eventually(t, func() bool {
		return f.coordinator.GetState(context.Background()).Status == models.SessionStatusIdle
	}, 2*time.Second, 10*time.Millisecond)

	f.builder.AssertCalled(t, "SendRecordingFailed", mock.Anything, mock.Anything)
	f.deliverer.AssertCalled(t, "DeliverRecording", mock.Anything, mock.Anything, []byte("partial"))
}

func TestGetStateReportsActiveSession(t *testing.T) {
	f := setupCoordinatorForTesting()
	f.expectHappyStart()

	session, err := f.coordinator.StartRecording(context.Background(), startRequest())
	require.NoError(t, err)

	state := f.coordinator.GetState(context.Background())

	assert.Equal(t, models.SessionStatusActive, state.Status)
	assert.Equal(t, session.RecordingID, state.RecordingID)
	assert.Equal(t, models.Quality720p, state.Quality)
	assert.False(t, state.LocalMode)
}

func TestHandleMeetingDetectedAutoStart(t *testing.T) {
	t.Run("auto-start disabled", func(t *testing.T) {
		f := setupCoordinatorForTesting()
		f.settingsRepo.On("Get", mock.Anything).Return(models.DefaultUserSettings(), nil)
		f.relay.On("Configured").Return(false)

		f.coordinator.HandleMeetingDetected(context.Background(), models.MeetingDetectedEvent{
			TabID: "tab-1", MeetingID: "abc-defg-hij",
		})

		assert.Equal(t, models.SessionStatusIdle, f.coordinator.GetState(context.Background()).Status)
	})

	t.Run("auto-start enabled", func(t *testing.T) {
		f := setupCoordinatorForTesting()
		f.settingsRepo.On("Get", mock.Anything).Return(&models.UserSettings{
			AutoStart:      true,
			DefaultQuality: models.Quality720p,
		}, nil)
		f.relay.On("Configured").Return(false)
		f.sessionRepo.On("Save", mock.Anything, mock.Anything).Return(nil)
		f.builder.On("SendRecordingStarted", mock.Anything, mock.Anything).Return(nil)
		f.snapshotRepo.On("Get", mock.Anything, mock.Anything).Return(nil, nil)

		f.coordinator.HandleMeetingDetected(context.Background(), models.MeetingDetectedEvent{
			TabID: "tab-1", MeetingID: "abc-defg-hij",
		})

		assert.Equal(t, models.SessionStatusActive, f.coordinator.GetState(context.Background()).Status)
	})
}

func TestHandleTabNavigatedStopsRecording(t *testing.T) {
	f := setupCoordinatorForTesting()
	f.expectHappyStart()
	f.sessionRepo.On("Clear", mock.Anything).Return(nil)
	f.builder.On("SendRecordingStopped", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	f.builder.On("SendUploadComplete", mock.Anything, mock.Anything).Return(nil)
	f.snapshotRepo.On("Clear", mock.Anything, mock.Anything).Return(nil)
	f.deliverer.On("DeliverRecording", mock.Anything, mock.Anything, mock.Anything).
		Return(&models.DeliveryOutcome{Mode: models.DeliveryModeRemote}, nil)
	f.deliverer.On("DeliverParticipantData", mock.Anything, mock.Anything, mock.Anything).
		Return(&models.DeliveryOutcome{Mode: models.DeliveryModeRemote}, nil)

	_, err := f.coordinator.StartRecording(context.Background(), startRequest())
	require.NoError(t, err)

	// A different tab navigating is ignored.
	f.coordinator.HandleTabNavigated(context.Background(), models.TabNavigatedEvent{TabID: "tab-9"})
	assert.Equal(t, models.SessionStatusActive, f.coordinator.GetState(context.Background()).Status)

	// Navigating within the meeting site is a route change, not a departure.
	f.coordinator.HandleTabNavigated(context.Background(), models.TabNavigatedEvent{
		TabID: "tab-1", URL: "https://meet.google.com/xyz-abcd-efg",
	})
	assert.Equal(t, models.SessionStatusActive, f.coordinator.GetState(context.Background()).Status)

	f.coordinator.HandleTabNavigated(context.Background(), models.TabNavigatedEvent{
		TabID: "tab-1", URL: "https://example.com/elsewhere",
	})
	assert.Equal(t, models.SessionStatusIdle, f.coordinator.GetState(context.Background()).Status)
}

func TestHandleTabNavigatedEmptyURLStops(t *testing.T) {
	f := setupCoordinatorForTesting()
	f.expectHappyStart()
	f.sessionRepo.On("Clear", mock.Anything).Return(nil)
	f.builder.On("SendRecordingStopped", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	f.builder.On("SendUploadComplete", mock.Anything, mock.Anything).Return(nil)
	f.snapshotRepo.On("Clear", mock.Anything, mock.Anything).Return(nil)
	f.deliverer.On("DeliverRecording", mock.Anything, mock.Anything, mock.Anything).
		Return(&models.DeliveryOutcome{Mode: models.DeliveryModeRemote}, nil)
	f.deliverer.On("DeliverParticipantData", mock.Anything, mock.Anything, mock.Anything).
		Return(&models.DeliveryOutcome{Mode: models.DeliveryModeRemote}, nil)

	_, err := f.coordinator.StartRecording(context.Background(), startRequest())
	require.NoError(t, err)

	f.coordinator.HandleTabNavigated(context.Background(), models.TabNavigatedEvent{TabID: "tab-1"})

	assert.Equal(t, models.SessionStatusIdle, f.coordinator.GetState(context.Background()).Status)
}

func TestRestoreClearsStaleSession(t *testing.T) {
	f := setupCoordinatorForTesting()

	stale := models.NewRecordingSession("abc-defg-hij", "tab-1", models.Quality720p, time.Now())
	stale.Status = models.SessionStatusActive
	f.sessionRepo.On("Get", mock.Anything).Return(stale, nil)
	f.sessionRepo.On("Clear", mock.Anything).Return(nil)
	f.builder.On("SendRecordingFailed", mock.Anything, mock.MatchedBy(func(e models.RecordingFailedEvent) bool {
		return e.RecordingID == stale.RecordingID
	})).Return(nil)

	require.NoError(t, f.coordinator.Restore(context.Background()))

	f.sessionRepo.AssertCalled(t, "Clear", mock.Anything)
	f.builder.AssertCalled(t, "SendRecordingFailed", mock.Anything, mock.Anything)
}

func TestRestoreNoSession(t *testing.T) {
	f := setupCoordinatorForTesting()
	f.sessionRepo.On("Get", mock.Anything).Return(nil, domain.NewNotFoundError("none"))

	assert.NoError(t, f.coordinator.Restore(context.Background()))
}

func TestStopRacingCaptureFailureFinalizesOnce(t *testing.T) {
	f := setupCoordinatorForTesting()
	f.expectHappyStart()
	f.sessionRepo.On("Clear", mock.Anything).Return(nil)
	f.builder.On("SendRecordingStopped", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	f.builder.On("SendRecordingFailed", mock.Anything, mock.Anything).Return(nil)
	f.builder.On("SendUploadComplete", mock.Anything, mock.Anything).Return(nil)
	f.snapshotRepo.On("Clear", mock.Anything, mock.Anything).Return(nil)
	f.deliverer.On("DeliverRecording", mock.Anything, mock.Anything, mock.Anything).
		Return(&models.DeliveryOutcome{Mode: models.DeliveryModeRemote}, nil)
	f.deliverer.On("DeliverParticipantData", mock.Anything, mock.Anything, mock.Anything).
		Return(&models.DeliveryOutcome{Mode: models.DeliveryModeRemote}, nil)

	_, err := f.coordinator.StartRecording(context.Background(), startRequest())
	require.NoError(t, err)

	// A user stop and a mid-recording encoder failure land at the same
	// time. Only one of them may deliver and finalize the session.
	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = f.coordinator.StopRecording(context.Background(), models.StopReasonUserStop)
	}()
	f.recorder.collectErr = domain.NewInternalError("encoder died")
	close(f.recorder.done)
	<-done

	require.Eventually(t, func() bool {
		return f.coordinator.GetState(context.Background()).Status == models.SessionStatusIdle
	}, 2*time.Second, 10*time.Millisecond)

	f.deliverer.AssertNumberOfCalls(t, "DeliverRecording", 1)
	f.sessionRepo.AssertNumberOfCalls(t, "Clear", 1)
}

// scriptedSequence feeds prearranged segment events to a recorder.
type scriptedSequence struct {
	events chan models.SegmentEvent
}

func (s *scriptedSequence) Next(ctx context.Context) (models.SegmentEvent, error) {
	select {
	case <-ctx.Done():
		return models.SegmentEvent{}, ctx.Err()
	case event := <-s.events:
		return event, nil
	}
}

func (s *scriptedSequence) Stop(ctx context.Context) error { return nil }

// scriptedSource implements SegmentSource, recording the stream it was
// started with.
type scriptedSource struct {
	sequence    *scriptedSequence
	startedWith *domain.MediaStream
}

func (s *scriptedSource) Start(ctx context.Context, stream *domain.MediaStream, opts domain.EncoderOptions) (domain.SegmentSequence, error) {
	s.startedWith = stream
	return s.sequence, nil
}

func TestCaptureFailureWithRealRecorderDeliversPartial(t *testing.T) {
	f := setupCoordinatorForTesting()
	source := &scriptedSource{sequence: &scriptedSequence{events: make(chan models.SegmentEvent, 4)}}
	f.coordinator.newRecorder = func() Recorder { return capture.NewChunkRecorder(source) }
	f.acquirer.acquired = &capture.AcquiredCapture{
		Display: &domain.MediaStream{ID: "display-1"},
		Audio:   &domain.MediaStream{ID: "mic-1", AudioOnly: true, HasAudio: true},
		Merged:  &domain.MediaStream{ID: "merged-1", HasAudio: true},
	}

	f.expectHappyStart()
	f.sessionRepo.On("Clear", mock.Anything).Return(nil)
	f.builder.On("SendRecordingStopped", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	f.builder.On("SendRecordingFailed", mock.Anything, mock.Anything).Return(nil)
	f.builder.On("SendUploadComplete", mock.Anything, mock.Anything).Return(nil)
	f.snapshotRepo.On("Clear", mock.Anything, mock.Anything).Return(nil)

	// Delivery must run on a live context even though the stop was
	// triggered by the failure watcher whose own context gets canceled
	// during teardown.
	f.deliverer.On("DeliverRecording", mock.MatchedBy(func(ctx context.Context) bool {
		return ctx.Err() == nil
	}), mock.Anything, []byte("part-1")).
		Return(&models.DeliveryOutcome{Mode: models.DeliveryModeRemote, Location: "recordings/x.webm"}, nil)
	f.deliverer.On("DeliverParticipantData", mock.Anything, mock.Anything, mock.Anything).
		Return(&models.DeliveryOutcome{Mode: models.DeliveryModeRemote}, nil)

	_, err := f.coordinator.StartRecording(context.Background(), startRequest())
	require.NoError(t, err)

	// The fallback audio was merged into the encoded stream.
	require.NotNil(t, source.startedWith)
	assert.Equal(t, "merged-1", source.startedWith.ID)
	assert.True(t, source.startedWith.HasAudio)

	source.sequence.events <- models.SegmentEvent{Kind: models.SegmentEventData, Data: []byte("part-1")}
	source.sequence.events <- models.SegmentEvent{Kind: models.SegmentEventError, Message: "encoder died"}

	require.Eventually(t, func() bool {
		return f.coordinator.GetState(context.Background()).Status == models.SessionStatusIdle
	}, 2*time.Second, 10*time.Millisecond)

	f.builder.AssertCalled(t, "SendRecordingFailed", mock.Anything, mock.Anything)
	f.deliverer.AssertCalled(t, "DeliverRecording", mock.Anything, mock.Anything, []byte("part-1"))
	f.builder.AssertCalled(t, "SendUploadComplete", mock.Anything, mock.Anything)
}
