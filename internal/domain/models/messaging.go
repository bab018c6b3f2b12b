// Copyright Laneway and each contributor to Laneway.
// SPDX-License-Identifier: MIT

package models

import (
	"fmt"
	"time"
)

// NATS subjects for the recording service.
const (
	// StartRecordingSubject carries user requests to start a recording.
	// Request/reply: the response reports whether capture began.
	StartRecordingSubject = "laneway.recording.start"

	// StopRecordingSubject carries user requests to stop the active recording.
	// Request/reply: the response reports whether a stop was initiated.
	StopRecordingSubject = "laneway.recording.stop"

	// RecordingStateSubject answers queries for the current session state.
	RecordingStateSubject = "laneway.recording.state"

	// RecordingFailedSubject announces that an active recording failed.
	RecordingFailedSubject = "laneway.recording.failed"

	// UploadCompleteSubject announces the final disposition of a recording
	// artifact after delivery.
	UploadCompleteSubject = "laneway.recording.upload-complete"

	// MeetingDetectedSubject announces that a tab joined a meeting.
	MeetingDetectedSubject = "laneway.meeting.detected"

	// MeetingEndedSubject announces that the user left a meeting.
	MeetingEndedSubject = "laneway.meeting.ended"

	// ParticipantAnalyticsSubject carries periodic participant snapshots
	// from the meeting page.
	ParticipantAnalyticsSubject = "laneway.analytics.participants"

	// TabNavigatedSubject announces that a tab navigated away from its page.
	TabNavigatedSubject = "laneway.tab.navigated"

	// SettingsGetSubject answers queries for the persisted user settings.
	SettingsGetSubject = "laneway.settings.get"

	// SettingsUpdateSubject carries updates to the persisted user settings.
	// Request/reply: the response carries the saved settings.
	SettingsUpdateSubject = "laneway.settings.update"
)

// TabCommandSubject returns the per-tab subject on which recording lifecycle
// commands are delivered to a meeting tab.
func TabCommandSubject(tabID string) string {
	return fmt.Sprintf("laneway.tab.%s.command", tabID)
}

// TabCommandType is the closed set of commands sent to a meeting tab.
type TabCommandType string

const (
	TabCommandRecordingStarted TabCommandType = "RECORDING_STARTED"
	TabCommandRecordingStopped TabCommandType = "RECORDING_STOPPED"
)

// TabCommand is one lifecycle command addressed to a meeting tab. The
// started command carries the session's resolved delivery target and
// quality so the tab can render the recording indicator accurately.
type TabCommand struct {
	Type         TabCommandType `json:"type"`
	RecordingID  string         `json:"recording_id"`
	UploadTarget *UploadTarget  `json:"upload_target,omitempty"`
	Quality      QualityMode    `json:"quality,omitempty"`
	IsLocalMode  bool           `json:"is_local_mode"`
}

// TabCommandAck is the reply a tab sends to a RECORDING_STARTED command.
type TabCommandAck struct {
	Acknowledged bool   `json:"acknowledged"`
	Error        string `json:"error,omitempty"`
}

// StartRecordingRequest asks the coordinator to begin a recording in the
// given tab.
type StartRecordingRequest struct {
	TabID     string      `json:"tab_id"`
	MeetingID string      `json:"meeting_id"`
	Quality   QualityMode `json:"quality,omitempty"`
}

// StartRecordingResponse reports the result of a start request.
type StartRecordingResponse struct {
	Success     bool          `json:"success"`
	RecordingID string        `json:"recording_id,omitempty"`
	Status      SessionStatus `json:"status"`
	Error       string        `json:"error,omitempty"`
}

// StopRecordingRequest asks the coordinator to stop the active recording.
type StopRecordingRequest struct {
	Reason StopReason `json:"reason"`
}

// StopRecordingResponse reports the result of a stop request.
type StopRecordingResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// GetRecordingStateResponse is the answer to a recording state query.
type GetRecordingStateResponse struct {
	Status      SessionStatus `json:"status"`
	RecordingID string        `json:"recording_id,omitempty"`
	MeetingID   string        `json:"meeting_id,omitempty"`
	StartTime   *time.Time    `json:"start_time,omitempty"`
	Quality     QualityMode   `json:"quality,omitempty"`
	LocalMode   bool          `json:"local_mode"`
}

// MeetingDetectedEvent announces that a tab joined a meeting.
type MeetingDetectedEvent struct {
	TabID        string `json:"tab_id"`
	MeetingID    string `json:"meeting_id"`
	MeetingTitle string `json:"meeting_title,omitempty"`
}

// MeetingEndedEvent announces that the user left a meeting.
type MeetingEndedEvent struct {
	TabID     string `json:"tab_id"`
	MeetingID string `json:"meeting_id"`
}

// TabNavigatedEvent announces that a tab navigated away from its page.
type TabNavigatedEvent struct {
	TabID string `json:"tab_id"`
	URL   string `json:"url,omitempty"`
}

// RecordingFailedEvent announces that an active recording failed.
type RecordingFailedEvent struct {
	RecordingID string `json:"recording_id"`
	Error       string `json:"error"`
}

// UploadCompleteEvent announces the final disposition of a recording
// artifact.
type UploadCompleteEvent struct {
	RecordingID string          `json:"recording_id"`
	Outcome     DeliveryOutcome `json:"outcome"`
}

// ParticipantAnalyticsEvent is one periodic participant snapshot from the
// meeting page.
type ParticipantAnalyticsEvent struct {
	TabID        string                   `json:"tab_id"`
	MeetingID    string                   `json:"meeting_id"`
	MeetingTitle string                   `json:"meeting_title,omitempty"`
	Observations []ParticipantObservation `json:"observations"`
}
