// Copyright Laneway and each contributor to Laneway.
// SPDX-License-Identifier: MIT

// Package models contains the domain entities and message payloads of the
// recording service.
package models

import (
	"fmt"
	"time"
)

// SessionStatus is the lifecycle state of a recording session.
// Transitions are monotonic: a session never re-enters active after stopping.
type SessionStatus string

const (
	SessionStatusIdle      SessionStatus = "idle"
	SessionStatusStarting  SessionStatus = "starting"
	SessionStatusActive    SessionStatus = "active"
	SessionStatusStopping  SessionStatus = "stopping"
	SessionStatusCompleted SessionStatus = "completed"
	SessionStatusFailed    SessionStatus = "failed"
)

// InProgress reports whether the status counts against the
// at-most-one-active invariant.
func (s SessionStatus) InProgress() bool {
	switch s {
	case SessionStatusStarting, SessionStatusActive, SessionStatusStopping:
		return true
	}
	return false
}

// CanTransition reports whether moving from s to next is a legal state
// machine step.
func (s SessionStatus) CanTransition(next SessionStatus) bool {
	switch s {
	case SessionStatusIdle:
		return next == SessionStatusStarting
	case SessionStatusStarting:
		return next == SessionStatusActive || next == SessionStatusFailed
	case SessionStatusActive:
		return next == SessionStatusStopping || next == SessionStatusFailed
	case SessionStatusStopping:
		return next == SessionStatusCompleted || next == SessionStatusFailed
	case SessionStatusCompleted, SessionStatusFailed:
		return next == SessionStatusIdle
	}
	return false
}

// QualityMode selects the capture resolution and bitrate profile.
type QualityMode string

const (
	QualityAudioOnly QualityMode = "audio-only"
	Quality720p      QualityMode = "720p"
	Quality1080p     QualityMode = "1080p"
)

// Valid reports whether q is one of the supported quality modes.
func (q QualityMode) Valid() bool {
	switch q {
	case QualityAudioOnly, Quality720p, Quality1080p:
		return true
	}
	return false
}

// VideoSize returns the ideal capture width and height for the quality mode.
// Audio-only still requests a minimal video surface because display capture
// platforms mandate a video track to unlock the audio path.
func (q QualityMode) VideoSize() (width, height int) {
	switch q {
	case QualityAudioOnly:
		return 640, 480
	case Quality720p:
		return 1280, 720
	default:
		return 1920, 1080
	}
}

// VideoBitsPerSecond returns the encoder video bitrate for the quality mode.
func (q QualityMode) VideoBitsPerSecond() int {
	switch q {
	case QualityAudioOnly:
		return 100_000
	case Quality720p:
		return 1_500_000
	default:
		return 2_500_000
	}
}

// AudioBitsPerSecond returns the encoder audio bitrate for the quality mode.
func (q QualityMode) AudioBitsPerSecond() int {
	return 128_000
}

// UploadTarget is the resolved remote destination of a recording artifact.
// It is resolved once at session creation and never mutated.
type UploadTarget struct {
	URL    string `json:"url" msgpack:"url"`
	APIKey string `json:"api_key,omitempty" msgpack:"api_key"`
}

// StopReason tags why a session ended.
type StopReason string

const (
	StopReasonUserStop      StopReason = "user_stop"
	StopReasonUserLeft      StopReason = "user_left"
	StopReasonCaptureFailed StopReason = "capture_failed"
	StopReasonMeetingEnded  StopReason = "meeting_ended"
)

// RecordingSession is the single authoritative record of an in-progress
// recording. It is exclusively owned and mutated by the session coordinator;
// every other component receives a copy.
type RecordingSession struct {
	RecordingID  string        `json:"recording_id" msgpack:"recording_id"`
	MeetingID    string        `json:"meeting_id" msgpack:"meeting_id"`
	StartTime    time.Time     `json:"start_time" msgpack:"start_time"`
	TabID        string        `json:"tab_id" msgpack:"tab_id"`
	Quality      QualityMode   `json:"quality" msgpack:"quality"`
	UploadTarget *UploadTarget `json:"upload_target,omitempty" msgpack:"upload_target"`
	Status       SessionStatus `json:"status" msgpack:"status"`
	StopReason   StopReason    `json:"stop_reason,omitempty" msgpack:"stop_reason"`
}

// DeriveRecordingID builds the globally unique recording identity from the
// meeting identity and the start instant.
func DeriveRecordingID(meetingID string, start time.Time) string {
	return fmt.Sprintf("%s-%s", meetingID, start.UTC().Format("20060102T150405.000Z0700"))
}

// NewRecordingSession creates a session in the starting state with its
// recording identity derived from the meeting and start instant.
func NewRecordingSession(meetingID, tabID string, quality QualityMode, start time.Time) *RecordingSession {
	return &RecordingSession{
		RecordingID: DeriveRecordingID(meetingID, start),
		MeetingID:   meetingID,
		StartTime:   start.UTC(),
		TabID:       tabID,
		Quality:     quality,
		Status:      SessionStatusStarting,
	}
}

// IsLocalMode reports whether the session has no remote delivery target.
func (s *RecordingSession) IsLocalMode() bool {
	return s.UploadTarget == nil
}

// Copy returns a snapshot of the session safe to hand to other components.
func (s *RecordingSession) Copy() *RecordingSession {
	if s == nil {
		return nil
	}
	out := *s
	if s.UploadTarget != nil {
		target := *s.UploadTarget
		out.UploadTarget = &target
	}
	return &out
}

// UserSettings are the persisted user preferences consulted on meeting
// detection and end.
type UserSettings struct {
	AutoStart      bool        `json:"auto_start"`
	AutoStop       bool        `json:"auto_stop"`
	DefaultQuality QualityMode `json:"default_quality"`
}

// DefaultUserSettings returns the settings used before the user saves any.
func DefaultUserSettings() *UserSettings {
	return &UserSettings{
		AutoStart:      false,
		AutoStop:       true,
		DefaultQuality: QualityAudioOnly,
	}
}
