// Copyright Laneway and each contributor to Laneway.
// SPDX-License-Identifier: MIT

package models

import "time"

// ParticipantObservation is one sample of a participant's state taken from
// the meeting page.
type ParticipantObservation struct {
	Name       string    `json:"name"`
	CameraOn   bool      `json:"camera_on"`
	Speaking   bool      `json:"speaking"`
	ObservedAt time.Time `json:"observed_at"`
}

// SpeakingInterval is one contiguous stretch during which a participant was
// observed speaking.
type SpeakingInterval struct {
	Start time.Time  `json:"start"`
	End   *time.Time `json:"end,omitempty"`
}

// ParticipantRecord accumulates per-participant activity over the lifetime
// of a recording. Durations only ever grow.
type ParticipantRecord struct {
	Name             string             `json:"name"`
	FirstSeen        time.Time          `json:"first_seen"`
	LastSeen         time.Time          `json:"last_seen"`
	CameraOnDuration time.Duration      `json:"camera_on_duration"`
	SpeakingDuration time.Duration      `json:"speaking_duration"`
	Intervals        []SpeakingInterval `json:"speaking_intervals,omitempty"`

	cameraOnSince *time.Time
	speakingSince *time.Time
}

// NewParticipantRecord starts tracking a participant from their first
// observation.
func NewParticipantRecord(obs ParticipantObservation) *ParticipantRecord {
	r := &ParticipantRecord{
		Name:      obs.Name,
		FirstSeen: obs.ObservedAt,
		LastSeen:  obs.ObservedAt,
	}
	r.apply(obs)
	return r
}

// Observe folds one sample into the record. Samples arriving out of order
// are ignored so accumulated durations stay monotonic.
func (r *ParticipantRecord) Observe(obs ParticipantObservation) {
	if obs.ObservedAt.Before(r.LastSeen) {
		return
	}
	r.LastSeen = obs.ObservedAt
	r.apply(obs)
}

func (r *ParticipantRecord) apply(obs ParticipantObservation) {
	if obs.CameraOn {
		if r.cameraOnSince == nil {
			t := obs.ObservedAt
			r.cameraOnSince = &t
		}
	} else if r.cameraOnSince != nil {
		r.CameraOnDuration += obs.ObservedAt.Sub(*r.cameraOnSince)
		r.cameraOnSince = nil
	}

	if obs.Speaking {
		if r.speakingSince == nil {
			t := obs.ObservedAt
			r.speakingSince = &t
			r.Intervals = append(r.Intervals, SpeakingInterval{Start: t})
		}
	} else if r.speakingSince != nil {
		end := obs.ObservedAt
		r.SpeakingDuration += end.Sub(*r.speakingSince)
		r.speakingSince = nil
		if n := len(r.Intervals); n > 0 && r.Intervals[n-1].End == nil {
			r.Intervals[n-1].End = &end
		}
	}
}

// Finalize closes any open camera or speaking stretch at the given instant.
// Called once when the recording stops.
func (r *ParticipantRecord) Finalize(at time.Time) {
	if at.Before(r.LastSeen) {
		at = r.LastSeen
	}
	if r.cameraOnSince != nil {
		r.CameraOnDuration += at.Sub(*r.cameraOnSince)
		r.cameraOnSince = nil
	}
	if r.speakingSince != nil {
		r.SpeakingDuration += at.Sub(*r.speakingSince)
		r.speakingSince = nil
		if n := len(r.Intervals); n > 0 && r.Intervals[n-1].End == nil {
			end := at
			r.Intervals[n-1].End = &end
		}
	}
}

// ParticipantDataPayload is the participant metadata artifact delivered
// alongside a recording.
type ParticipantDataPayload struct {
	MeetingID    string              `json:"meetingId"`
	MeetingTitle string              `json:"meetingTitle"`
	RecordingID  string              `json:"recordingId"`
	RecordedAt   time.Time           `json:"recordedAt"`
	Duration     float64             `json:"duration"`
	Participants []ParticipantRecord `json:"participants"`
}
