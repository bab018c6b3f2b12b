// Copyright Laneway and each contributor to Laneway.
// SPDX-License-Identifier: MIT

package domain

import (
	"context"

	"github.com/laneway/laneway-recording-service/internal/domain/models"
)

// Message is the interface for messages received from the messaging system.
type Message interface {
	Subject() string
	Data() []byte
	Respond(data []byte) error
	HasReply() bool
}

// MessageHandler handles messages for a set of subjects.
type MessageHandler interface {
	HandleMessage(ctx context.Context, msg Message)
}

// TabCommandSender delivers recording lifecycle commands to meeting tabs.
type TabCommandSender interface {
	// SendRecordingStarted tells the tab to show the recording indicator,
	// carrying the session's delivery target and quality. It waits for the
	// tab's acknowledgement.
	SendRecordingStarted(ctx context.Context, session *models.RecordingSession) error
	// SendRecordingStopped tells the tab recording is over. Fire and forget:
	// the tab may already be gone.
	SendRecordingStopped(ctx context.Context, tabID, recordingID string) error
}

// AgentMessageSender publishes recording lifecycle announcements.
type AgentMessageSender interface {
	SendRecordingFailed(ctx context.Context, event models.RecordingFailedEvent) error
	SendUploadComplete(ctx context.Context, event models.UploadCompleteEvent) error
}

// MessageBuilder is the composed sending interface of the messaging layer.
type MessageBuilder interface {
	TabCommandSender
	AgentMessageSender
}
