// Copyright Laneway and each contributor to Laneway.
// SPDX-License-Identifier: MIT

package store

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/nats-io/nats.go/jetstream"
)

// NATS Object Store names
const (
	ObjectStoreNameRecordings = "recordings"
)

// RecordingObjectName returns the object name of a recording artifact.
func RecordingObjectName(recordingID string) string {
	return fmt.Sprintf("recordings/%s.webm", recordingID)
}

// ParticipantDataObjectName returns the object name of a participant
// metadata artifact.
func ParticipantDataObjectName(recordingID string) string {
	return fmt.Sprintf("participant-data/%s.json", recordingID)
}

// AnalyticsObjectName returns the object name of a stored analytics event.
// Events are timestamped so repeated snapshots for one meeting never collide.
func AnalyticsObjectName(meetingID string, at time.Time) string {
	return fmt.Sprintf("analytics/%s-%d.json", meetingID, at.UnixMilli())
}

// INatsObjectStore is a NATS Object Store interface for artifact storage.
// It matches jetstream.ObjectStore and allows for mocking in tests.
type INatsObjectStore interface {
	Put(ctx context.Context, obj jetstream.ObjectMeta, reader io.Reader) (*jetstream.ObjectInfo, error)
	Get(ctx context.Context, name string, opts ...jetstream.GetObjectOpt) (jetstream.ObjectResult, error)
	GetInfo(ctx context.Context, name string, opts ...jetstream.GetObjectInfoOpt) (*jetstream.ObjectInfo, error)
	List(ctx context.Context, opts ...jetstream.ListObjectsOpt) ([]*jetstream.ObjectInfo, error)
	Delete(ctx context.Context, name string) error
}
