// Copyright Laneway and each contributor to Laneway.
// SPDX-License-Identifier: MIT

// Package bridge implements the NATS request/reply port to the capture
// helper process, which owns the platform media APIs the agent cannot
// reach directly.
package bridge

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/laneway/laneway-recording-service/internal/domain"
	"github.com/laneway/laneway-recording-service/internal/domain/models"
	"github.com/laneway/laneway-recording-service/internal/logging"
)

// Capture bridge subjects.
const (
	AcquireDisplaySubject      = "laneway.capture.acquire.display"
	AcquireDisplayAudioSubject = "laneway.capture.acquire.display-audio"
	AcquireMicrophoneSubject   = "laneway.capture.acquire.microphone"
	MergeTracksSubject         = "laneway.capture.merge-tracks"
	StopTracksSubject          = "laneway.capture.stop-tracks"
	ConfirmSilentSubject       = "laneway.capture.confirm-silent"
	EncoderStartSubject        = "laneway.capture.encoder.start"
	EncoderStopSubject         = "laneway.capture.encoder.stop"
)

// SegmentSubject returns the subject on which one encode delivers its
// segment events.
func SegmentSubject(encodeID string) string {
	return fmt.Sprintf("laneway.capture.segments.%s", encodeID)
}

// Error codes reported by the capture helper.
const (
	errCodePermissionDenied  = "PERMISSION_DENIED"
	errCodeNoCaptureSelected = "NO_CAPTURE_SELECTED"
	errCodeUnsupportedCodec  = "UNSUPPORTED_CODEC"
)

// acquireTimeout bounds device acquisition, which blocks on a user picker
// dialog.
const acquireTimeout = 2 * time.Minute

// promptTimeout bounds the silent-recording confirmation dialog.
const promptTimeout = 2 * time.Minute

// requestTimeout bounds plain control requests.
const requestTimeout = 10 * time.Second

// IBridgeConn is the NATS connection interface the bridge needs.
type IBridgeConn interface {
	RequestWithContext(ctx context.Context, subj string, data []byte) (*nats.Msg, error)
	ChanSubscribe(subj string, ch chan *nats.Msg) (*nats.Subscription, error)
	Publish(subj string, data []byte) error
}

type bridgeError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type acquireRequest struct {
	Width  int `json:"width,omitempty"`
	Height int `json:"height,omitempty"`
}

type acquireReply struct {
	StreamID  string       `json:"stream_id,omitempty"`
	AudioOnly bool         `json:"audio_only,omitempty"`
	HasAudio  bool         `json:"has_audio,omitempty"`
	Error     *bridgeError `json:"error,omitempty"`
}

type mergeRequest struct {
	DisplayStreamID string `json:"display_stream_id"`
	AudioStreamID   string `json:"audio_stream_id"`
}

type encoderStartRequest struct {
	StreamID           string `json:"stream_id"`
	MimeType           string `json:"mime_type"`
	VideoBitsPerSecond int    `json:"video_bits_per_second,omitempty"`
	AudioBitsPerSecond int    `json:"audio_bits_per_second,omitempty"`
	TimesliceMillis    int64  `json:"timeslice_ms,omitempty"`
}

type encoderStartReply struct {
	EncodeID string       `json:"encode_id,omitempty"`
	Error    *bridgeError `json:"error,omitempty"`
}

type confirmReply struct {
	Confirmed bool         `json:"confirmed"`
	Error     *bridgeError `json:"error,omitempty"`
}

// CaptureBridge implements MediaDevices, UserPrompter and SegmentSource
// over the capture helper's request/reply protocol.
type CaptureBridge struct {
	conn IBridgeConn
}

// NewCaptureBridge creates a bridge over the given NATS connection.
func NewCaptureBridge(conn IBridgeConn) *CaptureBridge {
	return &CaptureBridge{conn: conn}
}

func mapBridgeError(e *bridgeError) error {
	switch e.Code {
	case errCodePermissionDenied:
		return fmt.Errorf("%w: %s", domain.ErrPermissionDenied, e.Message)
	case errCodeNoCaptureSelected:
		return fmt.Errorf("%w: %s", domain.ErrNoCaptureSelected, e.Message)
	case errCodeUnsupportedCodec:
		return fmt.Errorf("%w: %s", domain.ErrUnsupportedCodec, e.Message)
	default:
		return domain.NewInternalError(fmt.Sprintf("capture helper error: %s", e.Message))
	}
}

func (b *CaptureBridge) acquire(ctx context.Context, subject string, req acquireRequest, timeout time.Duration) (*domain.MediaStream, error) {
	data, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	msg, err := b.conn.RequestWithContext(ctx, subject, data)
	if err != nil {
		slog.ErrorContext(ctx, "capture helper request failed",
			logging.ErrKey, err, "subject", subject)
		return nil, domain.NewUnavailableError("capture helper is not responding", err)
	}

	var reply acquireReply
	if err := json.Unmarshal(msg.Data, &reply); err != nil {
		return nil, domain.NewInternalError("invalid capture helper reply", err)
	}
	if reply.Error != nil {
		return nil, mapBridgeError(reply.Error)
	}

	return &domain.MediaStream{
		ID:        reply.StreamID,
		AudioOnly: reply.AudioOnly,
		HasAudio:  reply.HasAudio,
	}, nil
}

// AcquireDisplay asks the helper for a screen share with audio included.
func (b *CaptureBridge) AcquireDisplay(ctx context.Context, c domain.DisplayConstraints) (*domain.MediaStream, error) {
	return b.acquire(ctx, AcquireDisplaySubject, acquireRequest{Width: c.Width, Height: c.Height}, acquireTimeout)
}

// AcquireDisplayAudio asks the helper for a tab-audio only stream.
func (b *CaptureBridge) AcquireDisplayAudio(ctx context.Context) (*domain.MediaStream, error) {
	return b.acquire(ctx, AcquireDisplayAudioSubject, acquireRequest{}, acquireTimeout)
}

// AcquireMicrophone asks the helper for a microphone stream.
func (b *CaptureBridge) AcquireMicrophone(ctx context.Context) (*domain.MediaStream, error) {
	return b.acquire(ctx, AcquireMicrophoneSubject, acquireRequest{}, acquireTimeout)
}

// MergeTracks asks the helper to combine a display stream's video with a
// separately acquired audio stream into one encodable stream.
func (b *CaptureBridge) MergeTracks(ctx context.Context, display, audio *domain.MediaStream) (*domain.MediaStream, error) {
	data, err := json.Marshal(mergeRequest{
		DisplayStreamID: display.ID,
		AudioStreamID:   audio.ID,
	})
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	msg, err := b.conn.RequestWithContext(ctx, MergeTracksSubject, data)
	if err != nil {
		slog.ErrorContext(ctx, "capture helper request failed",
			logging.ErrKey, err, "subject", MergeTracksSubject)
		return nil, domain.NewUnavailableError("capture helper is not responding", err)
	}

	var reply acquireReply
	if err := json.Unmarshal(msg.Data, &reply); err != nil {
		return nil, domain.NewInternalError("invalid capture helper reply", err)
	}
	if reply.Error != nil {
		return nil, mapBridgeError(reply.Error)
	}

	return &domain.MediaStream{
		ID:       reply.StreamID,
		HasAudio: reply.HasAudio,
	}, nil
}

// StopTracks releases an acquired stream.
func (b *CaptureBridge) StopTracks(ctx context.Context, stream *domain.MediaStream) error {
	if stream == nil {
		return nil
	}

	data, err := json.Marshal(map[string]string{"stream_id": stream.ID})
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	if _, err := b.conn.RequestWithContext(ctx, StopTracksSubject, data); err != nil {
		slog.WarnContext(ctx, "failed to release capture stream",
			logging.ErrKey, err, "stream_id", stream.ID)
		return err
	}
	return nil
}

// ConfirmRecordWithoutAudio asks the user whether to proceed with a silent
// recording.
func (b *CaptureBridge) ConfirmRecordWithoutAudio(ctx context.Context) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, promptTimeout)
	defer cancel()

	msg, err := b.conn.RequestWithContext(ctx, ConfirmSilentSubject, nil)
	if err != nil {
		return false, domain.NewUnavailableError("capture helper is not responding", err)
	}

	var reply confirmReply
	if err := json.Unmarshal(msg.Data, &reply); err != nil {
		return false, domain.NewInternalError("invalid capture helper reply", err)
	}
	if reply.Error != nil {
		return false, mapBridgeError(reply.Error)
	}
	return reply.Confirmed, nil
}

// Start begins an encode over an acquired stream. Segment events arrive on
// the per-encode subject and are consumed through the returned sequence.
func (b *CaptureBridge) Start(ctx context.Context, stream *domain.MediaStream, opts domain.EncoderOptions) (domain.SegmentSequence, error) {
	req := encoderStartRequest{
		StreamID:           stream.ID,
		MimeType:           opts.MimeType,
		VideoBitsPerSecond: opts.VideoBitsPerSecond,
		AudioBitsPerSecond: opts.AudioBitsPerSecond,
		TimesliceMillis:    opts.Timeslice.Milliseconds(),
	}
	data, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}

	reqCtx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	msg, err := b.conn.RequestWithContext(reqCtx, EncoderStartSubject, data)
	if err != nil {
		return nil, domain.NewUnavailableError("capture helper is not responding", err)
	}

	var reply encoderStartReply
	if err := json.Unmarshal(msg.Data, &reply); err != nil {
		return nil, domain.NewInternalError("invalid capture helper reply", err)
	}
	if reply.Error != nil {
		return nil, mapBridgeError(reply.Error)
	}

	events := make(chan *nats.Msg, 64)
	sub, err := b.conn.ChanSubscribe(SegmentSubject(reply.EncodeID), events)
	if err != nil {
		return nil, domain.NewInternalError("failed to subscribe to segment events", err)
	}

	return &bridgeSegmentSequence{
		conn:     b.conn,
		encodeID: reply.EncodeID,
		sub:      sub,
		events:   events,
	}, nil
}

// bridgeSegmentSequence consumes segment events from a per-encode subject.
type bridgeSegmentSequence struct {
	conn     IBridgeConn
	encodeID string
	sub      *nats.Subscription
	events   chan *nats.Msg
	done     bool
}

// Next blocks for the next segment event.
func (s *bridgeSegmentSequence) Next(ctx context.Context) (models.SegmentEvent, error) {
	if s.done {
		return models.SegmentEvent{}, domain.NewInternalError("segment sequence is exhausted")
	}

	select {
	case <-ctx.Done():
		return models.SegmentEvent{}, ctx.Err()
	case msg, ok := <-s.events:
		if !ok {
			return models.SegmentEvent{}, domain.NewInternalError("segment subscription closed")
		}

		var event models.SegmentEvent
		if err := json.Unmarshal(msg.Data, &event); err != nil {
			return models.SegmentEvent{}, domain.NewInternalError("invalid segment event", err)
		}

		if event.Kind == models.SegmentEventEnd || event.Kind == models.SegmentEventError {
			s.done = true
			_ = s.sub.Unsubscribe()
		}
		return event, nil
	}
}

// Stop asks the helper to flush and finish the encode. The final slices
// still arrive through Next.
func (s *bridgeSegmentSequence) Stop(ctx context.Context) error {
	data, err := json.Marshal(map[string]string{"encode_id": s.encodeID})
	if err != nil {
		return err
	}
	return s.conn.Publish(EncoderStopSubject, data)
}
