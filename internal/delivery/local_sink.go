// Copyright Laneway and each contributor to Laneway.
// SPDX-License-Identifier: MIT

// Package delivery moves finished recording artifacts to their destination.
package delivery

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/laneway/laneway-recording-service/internal/domain"
	"github.com/laneway/laneway-recording-service/internal/domain/models"
)

// FileSink saves artifacts into a local directory.
type FileSink struct {
	dir string
	now func() time.Time
}

// NewFileSink creates a sink writing into dir, creating it if needed.
func NewFileSink(dir string) *FileSink {
	return &FileSink{
		dir: dir,
		now: time.Now,
	}
}

// SaveRecording writes the recording artifact and returns its path. The
// filename carries the recording identity and a save timestamp so repeated
// saves never collide.
func (s *FileSink) SaveRecording(ctx context.Context, recordingID string, artifact []byte) (string, error) {
	if len(artifact) == 0 {
		return "", domain.NewValidationError("recording artifact is empty")
	}

	name := fmt.Sprintf("laneway-recording-%s-%d.webm", recordingID, s.now().UnixMilli())
	return s.write(name, artifact)
}

// SaveParticipantData writes the participant metadata artifact and returns
// its path.
func (s *FileSink) SaveParticipantData(ctx context.Context, recordingID string, payload models.ParticipantDataPayload) (string, error) {
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return "", err
	}

	name := fmt.Sprintf("laneway-participants-%s-%d.json", recordingID, s.now().UnixMilli())
	return s.write(name, data)
}

func (s *FileSink) write(name string, data []byte) (string, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", domain.NewInternalError("failed to create local recording directory", err)
	}

	path := filepath.Join(s.dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", domain.NewInternalError("failed to save artifact locally", err)
	}
	return path, nil
}
