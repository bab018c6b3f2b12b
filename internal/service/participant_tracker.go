// Copyright Laneway and each contributor to Laneway.
// SPDX-License-Identifier: MIT

package service

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/laneway/laneway-recording-service/internal/domain"
	"github.com/laneway/laneway-recording-service/internal/domain/models"
	"github.com/laneway/laneway-recording-service/internal/logging"
)

// ParticipantTracker accumulates per-participant activity for the meeting
// being recorded and periodically forwards snapshots to the relay.
type ParticipantTracker struct {
	snapshotRepository domain.ParticipantSnapshotRepository
	relay              domain.RelayClient

	mu           sync.Mutex
	meetingID    string
	meetingTitle string
	records      map[string]*models.ParticipantRecord
}

// NewParticipantTracker creates a new ParticipantTracker.
func NewParticipantTracker(
	snapshotRepository domain.ParticipantSnapshotRepository,
	relay domain.RelayClient,
) *ParticipantTracker {
	return &ParticipantTracker{
		snapshotRepository: snapshotRepository,
		relay:              relay,
		records:            make(map[string]*models.ParticipantRecord),
	}
}

// ServiceReady checks if the service is ready to serve requests.
func (t *ParticipantTracker) ServiceReady() bool {
	return t.snapshotRepository != nil && t.relay != nil
}

// StartTracking begins accumulating activity for a meeting, restoring any
// snapshot a previous agent run persisted.
func (t *ParticipantTracker) StartTracking(ctx context.Context, meetingID, meetingTitle string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.meetingID = meetingID
	t.meetingTitle = meetingTitle
	t.records = make(map[string]*models.ParticipantRecord)

	restored, err := t.snapshotRepository.Get(ctx, meetingID)
	if err != nil {
		slog.WarnContext(ctx, "failed to restore participant snapshot", logging.ErrKey, err, "meeting_id", meetingID)
		return
	}
	for i := range restored {
		record := restored[i]
		t.records[record.Name] = &record
	}
	if len(restored) > 0 {
		slog.InfoContext(ctx, "restored participant snapshot",
			"meeting_id", meetingID, "participants", len(restored))
	}
}

// Observe folds one analytics event into the tracked state and forwards it
// to the relay when one is configured. Forwarding is advisory and never
// fails the caller.
func (t *ParticipantTracker) Observe(ctx context.Context, event models.ParticipantAnalyticsEvent) {
	t.mu.Lock()

	if t.meetingID == "" || event.MeetingID != t.meetingID {
		t.mu.Unlock()
		return
	}
	if event.MeetingTitle != "" {
		t.meetingTitle = event.MeetingTitle
	}

	for _, obs := range event.Observations {
		if record, ok := t.records[obs.Name]; ok {
			record.Observe(obs)
		} else {
			t.records[obs.Name] = models.NewParticipantRecord(obs)
		}
	}

	snapshot := t.snapshotLocked()
	meetingID := t.meetingID
	t.mu.Unlock()

	if err := t.snapshotRepository.Save(ctx, meetingID, snapshot); err != nil {
		slog.WarnContext(ctx, "failed to persist participant snapshot", logging.ErrKey, err, "meeting_id", meetingID)
	}

	if t.relay.Configured() {
		if err := t.relay.PostAnalytics(ctx, event); err != nil {
			slog.DebugContext(ctx, "analytics forwarding failed", logging.ErrKey, err)
		}
	}
}

// snapshotLocked returns the records as a sorted slice. Callers hold the
// mutex.
func (t *ParticipantTracker) snapshotLocked() []models.ParticipantRecord {
	out := make([]models.ParticipantRecord, 0, len(t.records))
	for _, record := range t.records {
		out = append(out, *record)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// FinalizePayload closes all open activity stretches and builds the
// participant metadata artifact for a finished recording. Tracking state is
// cleared afterwards.
func (t *ParticipantTracker) FinalizePayload(ctx context.Context, session *models.RecordingSession, endedAt time.Time) *models.ParticipantDataPayload {
	t.mu.Lock()

	if t.meetingID == "" || session == nil || session.MeetingID != t.meetingID {
		t.mu.Unlock()
		return nil
	}

	for _, record := range t.records {
		record.Finalize(endedAt)
	}

	payload := &models.ParticipantDataPayload{
		MeetingID:    t.meetingID,
		MeetingTitle: t.meetingTitle,
		RecordingID:  session.RecordingID,
		RecordedAt:   session.StartTime,
		Duration:     endedAt.Sub(session.StartTime).Seconds(),
		Participants: t.snapshotLocked(),
	}

	meetingID := t.meetingID
	t.meetingID = ""
	t.meetingTitle = ""
	t.records = make(map[string]*models.ParticipantRecord)
	t.mu.Unlock()

	if err := t.snapshotRepository.Clear(ctx, meetingID); err != nil {
		slog.WarnContext(ctx, "failed to clear participant snapshot", logging.ErrKey, err, "meeting_id", meetingID)
	}

	return payload
}
