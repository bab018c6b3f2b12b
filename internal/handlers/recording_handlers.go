// Copyright Laneway and each contributor to Laneway.
// SPDX-License-Identifier: MIT

// Package handlers routes NATS messages to the services.
package handlers

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/laneway/laneway-recording-service/internal/domain"
	"github.com/laneway/laneway-recording-service/internal/domain/models"
	"github.com/laneway/laneway-recording-service/internal/logging"
	"github.com/laneway/laneway-recording-service/internal/service"
)

// RecordingHandler handles recording lifecycle messages and meeting events.
type RecordingHandler struct {
	coordinator     *service.SessionCoordinator
	tracker         *service.ParticipantTracker
	settingsService *service.SettingsService
}

func NewRecordingHandler(
	coordinator *service.SessionCoordinator,
	tracker *service.ParticipantTracker,
	settingsService *service.SettingsService,
) *RecordingHandler {
	return &RecordingHandler{
		coordinator:     coordinator,
		tracker:         tracker,
		settingsService: settingsService,
	}
}

func (h *RecordingHandler) HandlerReady() bool {
	return h.coordinator.ServiceReady() && h.tracker.ServiceReady() && h.settingsService.ServiceReady()
}

// Subjects returns the subjects this handler subscribes to.
func (h *RecordingHandler) Subjects() []string {
	return []string{
		models.StartRecordingSubject,
		models.StopRecordingSubject,
		models.RecordingStateSubject,
		models.MeetingDetectedSubject,
		models.MeetingEndedSubject,
		models.ParticipantAnalyticsSubject,
		models.TabNavigatedSubject,
		models.SettingsGetSubject,
		models.SettingsUpdateSubject,
	}
}

// HandleMessage implements domain.MessageHandler interface
func (h *RecordingHandler) HandleMessage(ctx context.Context, msg domain.Message) {
	subject := msg.Subject()
	ctx = logging.AppendCtx(ctx, slog.String("subject", subject))
	slog.DebugContext(ctx, "handling NATS message")

	handlers := map[string]func(ctx context.Context, msg domain.Message) ([]byte, error){
		models.StartRecordingSubject:       h.HandleStartRecording,
		models.StopRecordingSubject:        h.HandleStopRecording,
		models.RecordingStateSubject:       h.HandleGetRecordingState,
		models.MeetingDetectedSubject:      h.HandleMeetingDetected,
		models.MeetingEndedSubject:         h.HandleMeetingEnded,
		models.ParticipantAnalyticsSubject: h.HandleParticipantAnalytics,
		models.TabNavigatedSubject:         h.HandleTabNavigated,
		models.SettingsGetSubject:          h.HandleGetSettings,
		models.SettingsUpdateSubject:       h.HandleUpdateSettings,
	}

	handler, ok := handlers[subject]
	if !ok {
		slog.WarnContext(ctx, "unknown subject")
		if msg.HasReply() {
			if err := msg.Respond(nil); err != nil {
				slog.ErrorContext(ctx, "error responding to NATS message", logging.ErrKey, err)
			}
		}
		return
	}

	response, err := handler(ctx, msg)
	if err != nil {
		slog.ErrorContext(ctx, "error handling message", logging.ErrKey, err)
		if msg.HasReply() {
			if err := msg.Respond(response); err != nil {
				slog.ErrorContext(ctx, "error responding to NATS message", logging.ErrKey, err)
			}
		}
		return
	}

	if msg.HasReply() {
		if err := msg.Respond(response); err != nil {
			slog.ErrorContext(ctx, "error responding to NATS message", logging.ErrKey, err)
			return
		}
		slog.DebugContext(ctx, "responded to NATS message")
	} else {
		slog.DebugContext(ctx, "handled NATS message (no reply expected)")
	}
}

// HandleStartRecording handles a user request to start a recording.
func (h *RecordingHandler) HandleStartRecording(ctx context.Context, msg domain.Message) ([]byte, error) {
	var req models.StartRecordingRequest
	if err := json.Unmarshal(msg.Data(), &req); err != nil {
		response, _ := json.Marshal(models.StartRecordingResponse{
			Success: false,
			Status:  models.SessionStatusIdle,
			Error:   "invalid start request",
		})
		return response, domain.NewValidationError("invalid start request", err)
	}

	session, err := h.coordinator.StartRecording(ctx, req)
	if err != nil {
		response, _ := json.Marshal(models.StartRecordingResponse{
			Success: false,
			Status:  h.coordinator.GetState(ctx).Status,
			Error:   err.Error(),
		})
		return response, err
	}

	return json.Marshal(models.StartRecordingResponse{
		Success:     true,
		RecordingID: session.RecordingID,
		Status:      session.Status,
	})
}

// HandleStopRecording handles a user request to stop the active recording.
func (h *RecordingHandler) HandleStopRecording(ctx context.Context, msg domain.Message) ([]byte, error) {
	reason := models.StopReasonUserStop
	if len(msg.Data()) > 0 {
		var req models.StopRecordingRequest
		if err := json.Unmarshal(msg.Data(), &req); err == nil && req.Reason != "" {
			reason = req.Reason
		}
	}

	_, err := h.coordinator.StopRecording(ctx, reason)
	if err != nil {
		response, _ := json.Marshal(models.StopRecordingResponse{
			Success: false,
			Error:   err.Error(),
		})
		return response, err
	}

	return json.Marshal(models.StopRecordingResponse{Success: true})
}

// HandleGetRecordingState answers a recording state query.
func (h *RecordingHandler) HandleGetRecordingState(ctx context.Context, msg domain.Message) ([]byte, error) {
	return json.Marshal(h.coordinator.GetState(ctx))
}

// HandleMeetingDetected handles a tab joining a meeting.
func (h *RecordingHandler) HandleMeetingDetected(ctx context.Context, msg domain.Message) ([]byte, error) {
	var event models.MeetingDetectedEvent
	if err := json.Unmarshal(msg.Data(), &event); err != nil {
		return nil, domain.NewValidationError("invalid meeting detected event", err)
	}

	h.coordinator.HandleMeetingDetected(ctx, event)
	return nil, nil
}

// HandleMeetingEnded handles the user leaving a meeting.
func (h *RecordingHandler) HandleMeetingEnded(ctx context.Context, msg domain.Message) ([]byte, error) {
	var event models.MeetingEndedEvent
	if err := json.Unmarshal(msg.Data(), &event); err != nil {
		return nil, domain.NewValidationError("invalid meeting ended event", err)
	}

	h.coordinator.HandleMeetingEnded(ctx, event)
	return nil, nil
}

// HandleParticipantAnalytics folds a participant snapshot into the tracker.
func (h *RecordingHandler) HandleParticipantAnalytics(ctx context.Context, msg domain.Message) ([]byte, error) {
	var event models.ParticipantAnalyticsEvent
	if err := json.Unmarshal(msg.Data(), &event); err != nil {
		return nil, domain.NewValidationError("invalid analytics event", err)
	}

	h.tracker.Observe(ctx, event)
	return nil, nil
}

// HandleGetSettings answers a user settings query.
func (h *RecordingHandler) HandleGetSettings(ctx context.Context, msg domain.Message) ([]byte, error) {
	settings, err := h.settingsService.GetSettings(ctx)
	if err != nil {
		return nil, err
	}
	return json.Marshal(settings)
}

// HandleUpdateSettings validates and persists updated user settings.
func (h *RecordingHandler) HandleUpdateSettings(ctx context.Context, msg domain.Message) ([]byte, error) {
	var settings models.UserSettings
	if err := json.Unmarshal(msg.Data(), &settings); err != nil {
		return nil, domain.NewValidationError("invalid settings payload", err)
	}

	saved, err := h.settingsService.UpdateSettings(ctx, &settings)
	if err != nil {
		return nil, err
	}
	return json.Marshal(saved)
}

// HandleTabNavigated handles a tab navigating away from its page.
func (h *RecordingHandler) HandleTabNavigated(ctx context.Context, msg domain.Message) ([]byte, error) {
	var event models.TabNavigatedEvent
	if err := json.Unmarshal(msg.Data(), &event); err != nil {
		return nil, domain.NewValidationError("invalid tab navigated event", err)
	}

	h.coordinator.HandleTabNavigated(ctx, event)
	return nil, nil
}
