// Copyright Laneway and each contributor to Laneway.
// SPDX-License-Identifier: MIT

package capture

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/laneway/laneway-recording-service/internal/domain"
	"github.com/laneway/laneway-recording-service/internal/domain/models"
	"github.com/laneway/laneway-recording-service/internal/logging"
	"github.com/laneway/laneway-recording-service/pkg/constants"
)

// Codec preference order for the encoder. The first type the platform
// supports wins.
var codecPreference = []string{
	"video/webm;codecs=vp9,opus",
	"video/webm;codecs=vp8,opus",
	"video/webm",
}

// ChunkRecorder drives one encode, accumulating the emitted segments in
// arrival order until the recording is stopped.
type ChunkRecorder struct {
	source    domain.SegmentSource
	timeslice time.Duration

	mu       sync.Mutex
	segments []models.RecordedSegment

	sequence   domain.SegmentSequence
	done       chan struct{}
	collectErr error
}

// NewChunkRecorder creates a recorder over the given segment source.
func NewChunkRecorder(source domain.SegmentSource) *ChunkRecorder {
	return &ChunkRecorder{
		source:    source,
		timeslice: constants.DefaultSliceInterval,
	}
}

// Start begins encoding the stream and collecting its segments. Codecs are
// tried in preference order until the platform accepts one.
func (r *ChunkRecorder) Start(ctx context.Context, stream *domain.MediaStream, quality models.QualityMode) error {
	opts := domain.EncoderOptions{
		VideoBitsPerSecond: quality.VideoBitsPerSecond(),
		AudioBitsPerSecond: quality.AudioBitsPerSecond(),
		Timeslice:          r.timeslice,
	}

	var sequence domain.SegmentSequence
	var err error
	for _, mimeType := range codecPreference {
		opts.MimeType = mimeType
		sequence, err = r.source.Start(ctx, stream, opts)
		if err == nil {
			slog.DebugContext(ctx, "encoder started", "mime_type", mimeType)
			break
		}
		if !errors.Is(err, domain.ErrUnsupportedCodec) {
			return err
		}
		slog.DebugContext(ctx, "codec not supported, trying next", "mime_type", mimeType)
	}
	if sequence == nil {
		return err
	}

	r.sequence = sequence
	r.done = make(chan struct{})
	go r.collect(ctx)
	return nil
}

// collect consumes segment events until the encode ends or fails.
func (r *ChunkRecorder) collect(ctx context.Context) {
	defer close(r.done)

	for {
		event, err := r.sequence.Next(ctx)
		if err != nil {
			r.mu.Lock()
			r.collectErr = err
			r.mu.Unlock()
			return
		}

		switch event.Kind {
		case models.SegmentEventData:
			r.mu.Lock()
			r.segments = append(r.segments, models.RecordedSegment{
				Index:      len(r.segments),
				Data:       event.Data,
				CapturedAt: time.Now(),
			})
			r.mu.Unlock()
		case models.SegmentEventEnd:
			return
		case models.SegmentEventError:
			r.mu.Lock()
			r.collectErr = domain.NewInternalError("encoder failed: " + event.Message)
			r.mu.Unlock()
			return
		}
	}
}

// Done returns a channel that is closed once collection has finished.
// Used to notice mid-recording encoder failures.
func (r *ChunkRecorder) Done() <-chan struct{} {
	return r.done
}

// Err returns the collection error, if collection has failed.
func (r *ChunkRecorder) Err() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.collectErr
}

// SegmentCount returns how many segments have been collected so far.
func (r *ChunkRecorder) SegmentCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.segments)
}

// Stop flushes the encoder, waits for the final segments and assembles the
// artifact. A recording that produced no media at all is an error.
func (r *ChunkRecorder) Stop(ctx context.Context) ([]byte, error) {
	if r.sequence == nil {
		return nil, domain.NewValidationError("recorder was never started")
	}

	if err := r.sequence.Stop(ctx); err != nil {
		slog.WarnContext(ctx, "error stopping encoder", logging.ErrKey, err)
	}

	// A collection that already finished always yields its segments, even
	// when the caller's context is gone by now.
	select {
	case <-r.done:
	default:
		select {
		case <-r.done:
		case <-time.After(constants.StopCompletionTimeout):
			slog.WarnContext(ctx, "timed out waiting for encoder to finish, assembling what was captured")
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	r.mu.Lock()
	collectErr := r.collectErr
	segments := r.segments
	r.mu.Unlock()

	if collectErr != nil && len(segments) == 0 {
		return nil, collectErr
	}

	return models.ConcatenateSegments(segments)
}
