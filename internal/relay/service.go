// Copyright Laneway and each contributor to Laneway.
// SPDX-License-Identifier: MIT

// Package relay implements the stateless HTTP relay that stores recording
// artifacts and participant metadata on behalf of recording agents.
package relay

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/nats-io/nats.go/jetstream"

	"github.com/laneway/laneway-recording-service/internal/domain/models"
	"github.com/laneway/laneway-recording-service/internal/infrastructure/store"
	"github.com/laneway/laneway-recording-service/internal/logging"
	"github.com/laneway/laneway-recording-service/pkg/constants"
)

// Service serves the relay HTTP surface over a JetStream Object Store.
// It holds no per-request state beyond the store handle.
type Service struct {
	objectStore store.INatsObjectStore
	now         func() time.Time
}

// NewService creates a new relay service.
func NewService(objectStore store.INatsObjectStore) *Service {
	return &Service{
		objectStore: objectStore,
		now:         time.Now,
	}
}

// ServiceReady checks if the service is ready to serve requests.
func (s *Service) ServiceReady() bool {
	return s.objectStore != nil
}

// RegisterRoutes mounts all relay endpoints on the given mux.
func (s *Service) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /livez", s.HandleLivez)
	mux.HandleFunc("GET /readyz", s.HandleReadyz)
	mux.HandleFunc("PUT /recordings/{key}", s.HandlePutRecording)
	mux.HandleFunc("PUT /participant-data/{key}", s.HandlePutParticipantData)
	mux.HandleFunc("GET /participant-data/{key}", s.HandleGetParticipantData)
	mux.HandleFunc("GET /list", s.HandleList)
	mux.HandleFunc("POST /analytics", s.HandlePostAnalytics)
}

// putResponse is the success body for artifact uploads.
type putResponse struct {
	Success bool   `json:"success"`
	Key     string `json:"key"`
	Size    int64  `json:"size"`
}

// listEntry describes one stored object in a listing response.
type listEntry struct {
	Key      string    `json:"key"`
	Size     int64     `json:"size"`
	Modified time.Time `json:"modified"`
}

// HandleLivez responds to liveness probes.
func (s *Service) HandleLivez(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK\n"))
}

// HandleReadyz responds to readiness probes.
func (s *Service) HandleReadyz(w http.ResponseWriter, r *http.Request) {
	if !s.ServiceReady() {
		http.Error(w, "object store unavailable", http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK\n"))
}

// HandlePutRecording stores a recording artifact.
func (s *Service) HandlePutRecording(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")
	ctx := logging.AppendCtx(r.Context(), slog.String("key", key))

	artifact, err := io.ReadAll(r.Body)
	if err != nil {
		slog.ErrorContext(ctx, "error reading recording body", logging.ErrKey, err)
		s.writeError(w, http.StatusBadRequest, "unreadable request body")
		return
	}
	if len(artifact) == 0 {
		s.writeError(w, http.StatusBadRequest, "empty recording artifact")
		return
	}
	if ct := r.Header.Get(constants.ContentTypeHeader); ct != "" && ct != constants.ContentTypeWebM {
		s.writeError(w, http.StatusBadRequest, fmt.Sprintf("unsupported content type %q", ct))
		return
	}

	objectName := store.RecordingObjectName(key)
	info, err := s.objectStore.Put(ctx, jetstream.ObjectMeta{Name: objectName}, bytes.NewReader(artifact))
	if err != nil {
		slog.ErrorContext(ctx, "error storing recording artifact", logging.ErrKey, err)
		s.writeError(w, http.StatusInternalServerError, "failed to store recording")
		return
	}

	slog.InfoContext(ctx, "stored recording artifact", "object_name", objectName, "size", info.Size)
	s.writeJSON(w, http.StatusOK, putResponse{Success: true, Key: key, Size: int64(info.Size)})
}

// HandlePutParticipantData stores a participant metadata document.
func (s *Service) HandlePutParticipantData(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")
	ctx := logging.AppendCtx(r.Context(), slog.String("key", key))

	body, err := io.ReadAll(r.Body)
	if err != nil {
		slog.ErrorContext(ctx, "error reading participant data body", logging.ErrKey, err)
		s.writeError(w, http.StatusBadRequest, "unreadable request body")
		return
	}
	if len(body) == 0 {
		s.writeError(w, http.StatusBadRequest, "empty participant data payload")
		return
	}

	var payload models.ParticipantDataPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		s.writeError(w, http.StatusBadRequest, "participant data is not valid JSON")
		return
	}

	objectName := store.ParticipantDataObjectName(key)
	info, err := s.objectStore.Put(ctx, jetstream.ObjectMeta{Name: objectName}, bytes.NewReader(body))
	if err != nil {
		slog.ErrorContext(ctx, "error storing participant data", logging.ErrKey, err)
		s.writeError(w, http.StatusInternalServerError, "failed to store participant data")
		return
	}

	slog.InfoContext(ctx, "stored participant data", "object_name", objectName, "size", info.Size)
	s.writeJSON(w, http.StatusOK, putResponse{Success: true, Key: key, Size: int64(info.Size)})
}

// HandleGetParticipantData returns a stored participant metadata document.
func (s *Service) HandleGetParticipantData(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")
	ctx := logging.AppendCtx(r.Context(), slog.String("key", key))

	result, err := s.objectStore.Get(ctx, store.ParticipantDataObjectName(key))
	if err != nil {
		if errors.Is(err, jetstream.ErrObjectNotFound) {
			s.writeError(w, http.StatusNotFound, "participant data not found")
			return
		}
		slog.ErrorContext(ctx, "error fetching participant data", logging.ErrKey, err)
		s.writeError(w, http.StatusInternalServerError, "failed to fetch participant data")
		return
	}
	defer func() {
		_ = result.Close()
	}()

	w.Header().Set(constants.ContentTypeHeader, constants.ContentTypeJSON)
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, result); err != nil {
		slog.ErrorContext(ctx, "error writing participant data response", logging.ErrKey, err)
	}
}

// HandleList returns a listing of all stored objects.
func (s *Service) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	infos, err := s.objectStore.List(ctx)
	if err != nil {
		if errors.Is(err, jetstream.ErrNoObjectsFound) {
			s.writeJSON(w, http.StatusOK, []listEntry{})
			return
		}
		slog.ErrorContext(ctx, "error listing stored objects", logging.ErrKey, err)
		s.writeError(w, http.StatusInternalServerError, "failed to list objects")
		return
	}

	entries := make([]listEntry, 0, len(infos))
	for _, info := range infos {
		entries = append(entries, listEntry{
			Key:      info.Name,
			Size:     int64(info.Size),
			Modified: info.ModTime,
		})
	}

	s.writeJSON(w, http.StatusOK, entries)
}

// HandlePostAnalytics stores a participant analytics event. The relay does
// not interpret events, it only validates the shape and persists them for
// downstream consumers.
func (s *Service) HandlePostAnalytics(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	body, err := io.ReadAll(r.Body)
	if err != nil {
		slog.ErrorContext(ctx, "error reading analytics body", logging.ErrKey, err)
		s.writeError(w, http.StatusBadRequest, "unreadable request body")
		return
	}

	var event models.ParticipantAnalyticsEvent
	if err := json.Unmarshal(body, &event); err != nil {
		s.writeError(w, http.StatusBadRequest, "analytics event is not valid JSON")
		return
	}
	if event.MeetingID == "" {
		s.writeError(w, http.StatusBadRequest, "analytics event is missing meeting_id")
		return
	}

	objectName := store.AnalyticsObjectName(event.MeetingID, s.now())
	info, err := s.objectStore.Put(ctx, jetstream.ObjectMeta{Name: objectName}, bytes.NewReader(body))
	if err != nil {
		slog.ErrorContext(ctx, "error storing analytics event", logging.ErrKey, err)
		s.writeError(w, http.StatusInternalServerError, "failed to store analytics event")
		return
	}

	slog.DebugContext(ctx, "stored analytics event", "object_name", objectName, "size", info.Size)
	s.writeJSON(w, http.StatusOK, putResponse{Success: true, Key: event.MeetingID, Size: int64(info.Size)})
}

func (s *Service) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set(constants.ContentTypeHeader, constants.ContentTypeJSON)
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("error encoding relay response", logging.ErrKey, err)
	}
}

func (s *Service) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}
