// Copyright Laneway and each contributor to Laneway.
// SPDX-License-Identifier: MIT

package models

import (
	"errors"
	"time"
)

// SegmentEventKind discriminates the events emitted by a segment source.
type SegmentEventKind string

const (
	SegmentEventData  SegmentEventKind = "data"
	SegmentEventEnd   SegmentEventKind = "end"
	SegmentEventError SegmentEventKind = "error"
)

// SegmentEvent is one event from an active capture stream. Data events carry
// an encoded media slice; end marks the stream finished; error carries the
// failure message from the capture side.
type SegmentEvent struct {
	Kind    SegmentEventKind `json:"kind"`
	Data    []byte           `json:"data,omitempty"`
	Message string           `json:"message,omitempty"`
}

// RecordedSegment is one encoded media slice captured during a session.
// Index is assigned in arrival order starting at zero.
type RecordedSegment struct {
	Index      int
	Data       []byte
	CapturedAt time.Time
}

// ErrNoSegments is returned when a recording produced no media at all.
var ErrNoSegments = errors.New("recording produced no segments")

// ConcatenateSegments assembles the final artifact from the captured slices
// in index order. The slices are container fragments of a single continuous
// encode, so simple concatenation yields a playable file.
func ConcatenateSegments(segments []RecordedSegment) ([]byte, error) {
	if len(segments) == 0 {
		return nil, ErrNoSegments
	}

	total := 0
	for i := range segments {
		total += len(segments[i].Data)
	}

	out := make([]byte, 0, total)
	for i := range segments {
		out = append(out, segments[i].Data...)
	}

	if len(out) == 0 {
		return nil, ErrNoSegments
	}

	return out, nil
}
