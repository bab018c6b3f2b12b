// Copyright Laneway and each contributor to Laneway.
// SPDX-License-Identifier: MIT

package service

import (
	"context"
	"log/slog"
	"net/url"
	"sync"
	"time"

	"github.com/laneway/laneway-recording-service/internal/capture"
	"github.com/laneway/laneway-recording-service/internal/domain"
	"github.com/laneway/laneway-recording-service/internal/domain/models"
	"github.com/laneway/laneway-recording-service/internal/logging"
	"github.com/laneway/laneway-recording-service/pkg/constants"
	"github.com/laneway/laneway-recording-service/pkg/utils"
)

// MediaAcquirer obtains capture streams for a recording.
type MediaAcquirer interface {
	Acquire(ctx context.Context, quality models.QualityMode) (*capture.AcquiredCapture, error)
	Release(ctx context.Context, acquired *capture.AcquiredCapture)
}

// Recorder drives one encode from start to final artifact.
type Recorder interface {
	Start(ctx context.Context, stream *domain.MediaStream, quality models.QualityMode) error
	Stop(ctx context.Context) ([]byte, error)
	Done() <-chan struct{}
	Err() error
}

// RecorderFactory builds a fresh Recorder per session.
type RecorderFactory func() Recorder

// SessionCoordinator owns the recording session lifecycle. All transitions
// are funneled through its mutex so there is never more than one
// in-progress session, and every start eventually reaches a terminal state.
type SessionCoordinator struct {
	sessionRepository  domain.SessionRepository
	settingsRepository domain.SettingsRepository
	messageBuilder     domain.MessageBuilder
	relay              domain.RelayClient
	deliverer          domain.ArtifactDeliverer
	acquirer           MediaAcquirer
	newRecorder        RecorderFactory
	tracker            *ParticipantTracker
	config             ServiceConfig

	mu          sync.Mutex
	session     *models.RecordingSession
	acquired    *capture.AcquiredCapture
	recorder    Recorder
	watchCancel context.CancelFunc
}

// NewSessionCoordinator creates a new SessionCoordinator.
func NewSessionCoordinator(
	sessionRepository domain.SessionRepository,
	settingsRepository domain.SettingsRepository,
	messageBuilder domain.MessageBuilder,
	relay domain.RelayClient,
	deliverer domain.ArtifactDeliverer,
	acquirer MediaAcquirer,
	newRecorder RecorderFactory,
	tracker *ParticipantTracker,
	serviceConfig ServiceConfig,
) *SessionCoordinator {
	return &SessionCoordinator{
		sessionRepository:  sessionRepository,
		settingsRepository: settingsRepository,
		messageBuilder:     messageBuilder,
		relay:              relay,
		deliverer:          deliverer,
		acquirer:           acquirer,
		newRecorder:        newRecorder,
		tracker:            tracker,
		config:             serviceConfig,
	}
}

// ServiceReady checks if the service is ready to serve requests.
func (s *SessionCoordinator) ServiceReady() bool {
	return s.sessionRepository != nil &&
		s.settingsRepository != nil &&
		s.messageBuilder != nil &&
		s.relay != nil &&
		s.deliverer != nil &&
		s.acquirer != nil &&
		s.newRecorder != nil &&
		s.tracker != nil
}

// Restore reconciles persisted state on startup. A session found in the
// store is stale: capture died with the previous process, so the session is
// announced as failed and cleared rather than resumed.
func (s *SessionCoordinator) Restore(ctx context.Context) error {
	session, err := s.sessionRepository.Get(ctx)
	if err != nil {
		if domain.GetErrorType(err) == domain.ErrorTypeNotFound {
			return nil
		}
		return err
	}

	slog.WarnContext(ctx, "found stale session from previous run, marking failed",
		"recording_id", session.RecordingID, "status", string(session.Status))

	if session.Status.InProgress() {
		if sendErr := s.messageBuilder.SendRecordingFailed(ctx, models.RecordingFailedEvent{
			RecordingID: session.RecordingID,
			Error:       "recording agent restarted mid-session",
		}); sendErr != nil {
			slog.WarnContext(ctx, "failed to announce stale session failure", logging.ErrKey, sendErr)
		}
	}

	return s.sessionRepository.Clear(ctx)
}

// StartRecording begins a new recording session for a meeting tab. The
// session only becomes active once capture is running and the tab has
// acknowledged the start command; any failure along the way lands the
// session in failed and then back to idle.
func (s *SessionCoordinator) StartRecording(ctx context.Context, req models.StartRecordingRequest) (*models.RecordingSession, error) {
	if !s.ServiceReady() {
		slog.ErrorContext(ctx, "service not initialized", logging.PriorityCritical())
		return nil, domain.NewUnavailableError("service not initialized")
	}
	if req.TabID == "" {
		return nil, domain.NewValidationError("tab ID is required")
	}
	if req.MeetingID == "" {
		return nil, domain.NewValidationError("meeting ID is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.session != nil && s.session.Status.InProgress() {
		return nil, domain.NewConflictError("a recording is already in progress")
	}

	quality := req.Quality
	if !quality.Valid() {
		settings, err := s.settingsRepository.Get(ctx)
		if err != nil {
			slog.WarnContext(ctx, "failed to load settings, using defaults", logging.ErrKey, err)
			settings = models.DefaultUserSettings()
		}
		quality = settings.DefaultQuality
	}

	session := models.NewRecordingSession(req.MeetingID, req.TabID, quality, time.Now())

	// Resolve the delivery mode once at session creation. A failed probe
	// means the whole session runs in local mode.
	if s.relay.Configured() {
		if s.config.SkipRelayProbe || s.relay.Probe(ctx) == nil {
			session.UploadTarget = s.relay.RecordingUploadTarget(session.RecordingID)
		} else {
			slog.InfoContext(ctx, "relay probe failed, recording in local mode",
				"recording_id", session.RecordingID)
		}
	}

	if err := s.sessionRepository.Save(ctx, session); err != nil {
		slog.ErrorContext(ctx, "error persisting session", logging.ErrKey, err)
		return nil, err
	}
	s.session = session

	acquired, err := s.acquirer.Acquire(ctx, quality)
	if err != nil {
		slog.WarnContext(ctx, "media acquisition failed", logging.ErrKey, err,
			"recording_id", session.RecordingID)
		s.finalizeLocked(ctx, models.SessionStatusFailed)
		return nil, err
	}

	recorder := s.newRecorder()
	if err := recorder.Start(ctx, acquired.Stream(), quality); err != nil {
		slog.ErrorContext(ctx, "encoder start failed", logging.ErrKey, err,
			"recording_id", session.RecordingID)
		s.acquirer.Release(ctx, acquired)
		s.finalizeLocked(ctx, models.SessionStatusFailed)
		return nil, err
	}

	if err := s.messageBuilder.SendRecordingStarted(ctx, session); err != nil {
		slog.ErrorContext(ctx, "tab did not acknowledge recording start", logging.ErrKey, err,
			"recording_id", session.RecordingID, "tab_id", session.TabID)
		if _, stopErr := recorder.Stop(ctx); stopErr != nil {
			slog.WarnContext(ctx, "error stopping recorder after failed start", logging.ErrKey, stopErr)
		}
		s.acquirer.Release(ctx, acquired)
		s.finalizeLocked(ctx, models.SessionStatusFailed)
		return nil, err
	}

	session.Status = models.SessionStatusActive
	if err := s.sessionRepository.Save(ctx, session); err != nil {
		slog.WarnContext(ctx, "error persisting active session", logging.ErrKey, err)
	}

	s.acquired = acquired
	s.recorder = recorder
	s.tracker.StartTracking(ctx, session.MeetingID, "")

	watchCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s.watchCancel = cancel
	go s.watch(watchCtx, recorder, session.RecordingID)

	slog.InfoContext(ctx, "recording started",
		"recording_id", session.RecordingID,
		"meeting_id", session.MeetingID,
		"quality", string(session.Quality),
		"local_mode", session.IsLocalMode())

	return session.Copy(), nil
}

// watch notices a mid-recording encoder failure and stops the session on
// its behalf.
func (s *SessionCoordinator) watch(ctx context.Context, recorder Recorder, recordingID string) {
	select {
	case <-ctx.Done():
		return
	case <-recorder.Done():
	}

	err := recorder.Err()
	if err == nil {
		// The encoder finished on its own accord; a stop is in flight.
		return
	}

	slog.ErrorContext(ctx, "capture failed mid-recording", logging.ErrKey, err,
		"recording_id", recordingID)

	if sendErr := s.messageBuilder.SendRecordingFailed(ctx, models.RecordingFailedEvent{
		RecordingID: recordingID,
		Error:       err.Error(),
	}); sendErr != nil {
		slog.WarnContext(ctx, "failed to announce recording failure", logging.ErrKey, sendErr)
	}

	// The stop below cancels this watcher's context as part of tearing the
	// session down. Detach from it so the recorder drain and the artifact
	// delivery do not see their own cancellation.
	if _, stopErr := s.StopRecording(context.WithoutCancel(ctx), models.StopReasonCaptureFailed); stopErr != nil {
		slog.WarnContext(ctx, "error stopping failed recording", logging.ErrKey, stopErr,
			"recording_id", recordingID)
	}
}

// StopRecording ends the active recording, delivers its artifacts and
// announces the outcome. What was captured before a failure is still
// delivered.
func (s *SessionCoordinator) StopRecording(ctx context.Context, reason models.StopReason) (*models.DeliveryOutcome, error) {
	if !s.ServiceReady() {
		slog.ErrorContext(ctx, "service not initialized", logging.PriorityCritical())
		return nil, domain.NewUnavailableError("service not initialized")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.session == nil || s.session.Status == models.SessionStatusStarting {
		return nil, domain.NewNotFoundError("no active recording")
	}
	if s.session.Status == models.SessionStatusStopping {
		return nil, domain.NewConflictError("a stop is already in progress")
	}
	if s.session.Status != models.SessionStatusActive {
		return nil, domain.NewNotFoundError("no active recording")
	}

	session := s.session
	session.Status = models.SessionStatusStopping
	session.StopReason = reason
	if err := s.sessionRepository.Save(ctx, session); err != nil {
		slog.WarnContext(ctx, "error persisting stopping session", logging.ErrKey, err)
	}

	if s.watchCancel != nil {
		s.watchCancel()
		s.watchCancel = nil
	}

	if err := s.messageBuilder.SendRecordingStopped(ctx, session.TabID, session.RecordingID); err != nil {
		slog.DebugContext(ctx, "could not notify tab of stop", logging.ErrKey, err,
			"tab_id", session.TabID)
	}

	endedAt := time.Now()
	artifact, err := s.recorder.Stop(ctx)
	s.acquirer.Release(ctx, s.acquired)
	s.acquired = nil

	if err != nil {
		slog.ErrorContext(ctx, "recording produced no artifact", logging.ErrKey, err,
			"recording_id", session.RecordingID)
		if sendErr := s.messageBuilder.SendRecordingFailed(ctx, models.RecordingFailedEvent{
			RecordingID: session.RecordingID,
			Error:       err.Error(),
		}); sendErr != nil {
			slog.WarnContext(ctx, "failed to announce recording failure", logging.ErrKey, sendErr)
		}
		s.finalizeLocked(ctx, models.SessionStatusFailed)
		return nil, err
	}

	outcome, err := s.deliverer.DeliverRecording(ctx, session, artifact)
	if err != nil {
		slog.ErrorContext(ctx, "recording could not be preserved anywhere",
			logging.ErrKey, err, logging.PriorityCritical(),
			"recording_id", session.RecordingID)
		if sendErr := s.messageBuilder.SendRecordingFailed(ctx, models.RecordingFailedEvent{
			RecordingID: session.RecordingID,
			Error:       err.Error(),
		}); sendErr != nil {
			slog.WarnContext(ctx, "failed to announce recording failure", logging.ErrKey, sendErr)
		}
		s.finalizeLocked(ctx, models.SessionStatusFailed)
		return nil, err
	}

	if payload := s.tracker.FinalizePayload(ctx, session, endedAt); payload != nil {
		if _, err := s.deliverer.DeliverParticipantData(ctx, session, *payload); err != nil {
			slog.WarnContext(ctx, "participant data could not be preserved", logging.ErrKey, err,
				"recording_id", session.RecordingID)
		}
	}

	if err := s.messageBuilder.SendUploadComplete(ctx, models.UploadCompleteEvent{
		RecordingID: session.RecordingID,
		Outcome:     *outcome,
	}); err != nil {
		slog.WarnContext(ctx, "failed to announce upload completion", logging.ErrKey, err)
	}

	slog.InfoContext(ctx, "recording stopped",
		"recording_id", session.RecordingID,
		"reason", string(reason),
		"mode", string(outcome.Mode),
		"location", outcome.Location)

	s.finalizeLocked(ctx, models.SessionStatusCompleted)
	return outcome, nil
}

// finalizeLocked moves the session to a terminal state and back to idle.
// Callers hold the mutex. Idempotent: finalizing an already cleared session
// is a no-op.
func (s *SessionCoordinator) finalizeLocked(ctx context.Context, terminal models.SessionStatus) {
	if s.session == nil {
		return
	}

	s.session.Status = terminal
	if err := s.sessionRepository.Clear(ctx); err != nil {
		slog.WarnContext(ctx, "error clearing persisted session", logging.ErrKey, err)
	}

	s.session = nil
	s.recorder = nil
	s.acquired = nil
	if s.watchCancel != nil {
		s.watchCancel()
		s.watchCancel = nil
	}
}

// GetState answers a recording state query.
func (s *SessionCoordinator) GetState(ctx context.Context) models.GetRecordingStateResponse {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.session == nil {
		return models.GetRecordingStateResponse{Status: models.SessionStatusIdle, LocalMode: !s.relay.Configured()}
	}

	return models.GetRecordingStateResponse{
		Status:      s.session.Status,
		RecordingID: s.session.RecordingID,
		MeetingID:   s.session.MeetingID,
		StartTime:   utils.TimePtr(s.session.StartTime),
		Quality:     s.session.Quality,
		LocalMode:   s.session.IsLocalMode(),
	}
}

// HandleMeetingDetected starts a recording automatically when the user has
// auto-start enabled.
func (s *SessionCoordinator) HandleMeetingDetected(ctx context.Context, event models.MeetingDetectedEvent) {
	settings, err := s.settingsRepository.Get(ctx)
	if err != nil {
		slog.WarnContext(ctx, "failed to load settings", logging.ErrKey, err)
		return
	}
	if !settings.AutoStart {
		return
	}

	_, err = s.StartRecording(ctx, models.StartRecordingRequest{
		TabID:     event.TabID,
		MeetingID: event.MeetingID,
	})
	if err != nil {
		if domain.GetErrorType(err) == domain.ErrorTypeConflict {
			return
		}
		slog.WarnContext(ctx, "auto-start failed", logging.ErrKey, err,
			"meeting_id", event.MeetingID)
	}
}

// HandleMeetingEnded stops the recording of a meeting that ended, when the
// user has auto-stop enabled.
func (s *SessionCoordinator) HandleMeetingEnded(ctx context.Context, event models.MeetingEndedEvent) {
	settings, err := s.settingsRepository.Get(ctx)
	if err != nil {
		slog.WarnContext(ctx, "failed to load settings", logging.ErrKey, err)
		return
	}
	if !settings.AutoStop {
		return
	}

	s.mu.Lock()
	recording := s.session != nil && s.session.MeetingID == event.MeetingID &&
		s.session.Status == models.SessionStatusActive
	s.mu.Unlock()
	if !recording {
		return
	}

	if _, err := s.StopRecording(ctx, models.StopReasonMeetingEnded); err != nil {
		slog.WarnContext(ctx, "auto-stop failed", logging.ErrKey, err,
			"meeting_id", event.MeetingID)
	}
}

// HandleTabNavigated stops the recording when its tab navigates away from
// the meeting. Navigations that stay on the meeting domain are in-meeting
// route changes and leave the session alone.
func (s *SessionCoordinator) HandleTabNavigated(ctx context.Context, event models.TabNavigatedEvent) {
	s.mu.Lock()
	recording := s.session != nil && s.session.TabID == event.TabID &&
		s.session.Status == models.SessionStatusActive
	s.mu.Unlock()
	if !recording {
		return
	}

	if onMeetingDomain(event.URL) {
		slog.DebugContext(ctx, "recording tab navigated within the meeting",
			"tab_id", event.TabID, "url", event.URL)
		return
	}

	slog.InfoContext(ctx, "recording tab navigated away, stopping",
		"tab_id", event.TabID, "url", event.URL)

	if _, err := s.StopRecording(ctx, models.StopReasonUserLeft); err != nil {
		slog.WarnContext(ctx, "stop after navigation failed", logging.ErrKey, err,
			"tab_id", event.TabID)
	}
}

// onMeetingDomain reports whether a navigation target is still a meeting
// page. An empty or unparseable URL counts as leaving.
func onMeetingDomain(rawURL string) bool {
	if rawURL == "" {
		return false
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	return u.Hostname() == constants.MeetingDomain
}
