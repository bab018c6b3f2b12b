// Copyright Laneway and each contributor to Laneway.
// SPDX-License-Identifier: MIT

// Package capture runs the media acquisition and recording pipeline of the
// agent.
package capture

import (
	"context"
	"errors"
	"log/slog"

	"github.com/laneway/laneway-recording-service/internal/domain"
	"github.com/laneway/laneway-recording-service/internal/domain/models"
	"github.com/laneway/laneway-recording-service/internal/logging"
)

// AcquiredCapture is the result of media acquisition: the display stream
// plus an optional separate audio stream obtained through the fallback
// chain. When a fallback audio stream was acquired, Merged holds the
// combined stream the encoder records from; Display and Audio stay open
// as the track sources. Silent means the user chose to record without any
// audio.
type AcquiredCapture struct {
	Display *domain.MediaStream
	Audio   *domain.MediaStream
	Merged  *domain.MediaStream
	Silent  bool
}

// Stream returns the stream to hand to the encoder.
func (a *AcquiredCapture) Stream() *domain.MediaStream {
	if a.Merged != nil {
		return a.Merged
	}
	return a.Display
}

// MediaCapture acquires capture streams with audio fallback.
type MediaCapture struct {
	devices  domain.MediaDevices
	prompter domain.UserPrompter
}

// NewMediaCapture creates a media capture helper.
func NewMediaCapture(devices domain.MediaDevices, prompter domain.UserPrompter) *MediaCapture {
	return &MediaCapture{
		devices:  devices,
		prompter: prompter,
	}
}

// Acquire obtains the capture streams for a recording. The display stream
// is mandatory: permission denial or no selection aborts. When the display
// stream carries no audio, fallback sources are tried in order, ending with
// a user confirmation to record silently.
func (m *MediaCapture) Acquire(ctx context.Context, quality models.QualityMode) (*AcquiredCapture, error) {
	width, height := quality.VideoSize()
	display, err := m.devices.AcquireDisplay(ctx, domain.DisplayConstraints{Width: width, Height: height})
	if err != nil {
		return nil, err
	}

	if display.HasAudio {
		return &AcquiredCapture{Display: display}, nil
	}

	slog.InfoContext(ctx, "display stream has no audio, trying fallback sources")

	audio, err := m.devices.AcquireDisplayAudio(ctx)
	if err == nil {
		if acquired, mergeErr := m.merge(ctx, display, audio); mergeErr == nil {
			return acquired, nil
		} else if abortsAcquisition(mergeErr) {
			m.release(ctx, display)
			return nil, mergeErr
		}
	} else if abortsAcquisition(err) {
		m.release(ctx, display)
		return nil, err
	} else {
		slog.DebugContext(ctx, "display audio fallback failed", logging.ErrKey, err)
	}

	audio, err = m.devices.AcquireMicrophone(ctx)
	if err == nil {
		if acquired, mergeErr := m.merge(ctx, display, audio); mergeErr == nil {
			return acquired, nil
		} else if abortsAcquisition(mergeErr) {
			m.release(ctx, display)
			return nil, mergeErr
		}
	} else if abortsAcquisition(err) {
		m.release(ctx, display)
		return nil, err
	} else {
		slog.DebugContext(ctx, "microphone fallback failed", logging.ErrKey, err)
	}

	confirmed, err := m.prompter.ConfirmRecordWithoutAudio(ctx)
	if err != nil {
		m.release(ctx, display)
		return nil, err
	}
	if !confirmed {
		m.release(ctx, display)
		return nil, domain.ErrCancelledNoAudio
	}

	slog.InfoContext(ctx, "recording without audio at user's request")
	return &AcquiredCapture{Display: display, Silent: true}, nil
}

// merge combines a fallback audio stream with the display video. On merge
// failure the audio stream is released so the chain can move to the next
// source.
func (m *MediaCapture) merge(ctx context.Context, display, audio *domain.MediaStream) (*AcquiredCapture, error) {
	merged, err := m.devices.MergeTracks(ctx, display, audio)
	if err != nil {
		slog.WarnContext(ctx, "failed to merge fallback audio into capture stream",
			logging.ErrKey, err, "audio_stream_id", audio.ID)
		m.release(ctx, audio)
		return nil, err
	}
	return &AcquiredCapture{Display: display, Audio: audio, Merged: merged}, nil
}

// Release stops all tracks of an acquisition.
func (m *MediaCapture) Release(ctx context.Context, acquired *AcquiredCapture) {
	if acquired == nil {
		return
	}
	m.release(ctx, acquired.Display)
	m.release(ctx, acquired.Audio)
}

func (m *MediaCapture) release(ctx context.Context, stream *domain.MediaStream) {
	if stream == nil {
		return
	}
	if err := m.devices.StopTracks(ctx, stream); err != nil {
		slog.WarnContext(ctx, "failed to stop capture tracks", logging.ErrKey, err, "stream_id", stream.ID)
	}
}

// abortsAcquisition reports whether a fallback source error should end the
// whole acquisition instead of moving to the next source. A denied or
// failed fallback source just moves the chain along; only cancellation
// stops it.
func abortsAcquisition(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
