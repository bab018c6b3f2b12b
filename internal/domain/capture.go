// Copyright Laneway and each contributor to Laneway.
// SPDX-License-Identifier: MIT

package domain

import (
	"context"
	"time"

	"github.com/laneway/laneway-recording-service/internal/domain/models"
)

// DisplayConstraints are the capture parameters requested from the media
// device layer.
type DisplayConstraints struct {
	Width  int
	Height int
}

// MediaStream is an opaque handle to an acquired capture stream. The stream
// stays open until StopTracks releases it.
type MediaStream struct {
	ID        string
	AudioOnly bool
	HasAudio  bool
}

// MediaDevices is the port to the platform media capture layer.
//
// AcquireDisplay asks for a screen share with audio included. The distinct
// error values let the caller drive the audio fallback chain:
// ErrPermissionDenied and ErrNoCaptureSelected abort, any other error moves
// to the next acquisition strategy.
type MediaDevices interface {
	AcquireDisplay(ctx context.Context, c DisplayConstraints) (*MediaStream, error)
	AcquireDisplayAudio(ctx context.Context) (*MediaStream, error)
	AcquireMicrophone(ctx context.Context) (*MediaStream, error)
	// MergeTracks combines the video tracks of display with the audio
	// tracks of audio into a single encodable stream. The source streams
	// stay open and must still be released through StopTracks.
	MergeTracks(ctx context.Context, display, audio *MediaStream) (*MediaStream, error)
	StopTracks(ctx context.Context, stream *MediaStream) error
}

// UserPrompter asks the user questions that block capture setup.
type UserPrompter interface {
	// ConfirmRecordWithoutAudio asks whether to proceed with a silent
	// recording after every audio source failed.
	ConfirmRecordWithoutAudio(ctx context.Context) (bool, error)
}

// EncoderOptions configure the media encoder for a capture stream.
type EncoderOptions struct {
	MimeType           string
	VideoBitsPerSecond int
	AudioBitsPerSecond int
	// Timeslice is how often the encoder emits a data segment.
	Timeslice time.Duration
}

// SegmentSequence is an active encode delivering media slices until Stop.
type SegmentSequence interface {
	// Next blocks for the next segment event. After an end or error event
	// the sequence is exhausted and further calls fail.
	Next(ctx context.Context) (models.SegmentEvent, error)
	// Stop requests the encoder flush and finish. The final slices still
	// arrive through Next, terminated by an end event.
	Stop(ctx context.Context) error
}

// SegmentSource starts an encode over an acquired stream.
type SegmentSource interface {
	// Start begins encoding. It fails with ErrUnsupportedCodec when the
	// requested mime type is not available on the platform.
	Start(ctx context.Context, stream *MediaStream, opts EncoderOptions) (SegmentSequence, error)
}
