// Copyright Laneway and each contributor to Laneway.
// SPDX-License-Identifier: MIT

// Package relay implements the HTTP client for the remote recording relay.
package relay

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/laneway/laneway-recording-service/internal/domain"
	"github.com/laneway/laneway-recording-service/internal/domain/models"
	"github.com/laneway/laneway-recording-service/internal/logging"
	"github.com/laneway/laneway-recording-service/pkg/constants"
)

// ClientConfig configures the relay client.
type ClientConfig struct {
	// BaseURL is the relay endpoint. Empty means no relay is configured
	// and every recording stays local.
	BaseURL string
	// APIKey is sent on every request in the X-API-Key header.
	APIKey string
}

// Client talks to the remote recording relay.
type Client struct {
	config     ClientConfig
	httpClient *http.Client
}

// NewClient creates a relay client. The transport is instrumented so
// uploads show up in traces.
func NewClient(config ClientConfig) *Client {
	config.BaseURL = strings.TrimRight(config.BaseURL, "/")
	return &Client{
		config: config,
		httpClient: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
			Timeout:   5 * time.Minute,
		},
	}
}

// Configured reports whether a relay endpoint is configured at all.
func (c *Client) Configured() bool {
	return c.config.BaseURL != ""
}

// Probe checks that the relay is reachable and willing to serve.
func (c *Client) Probe(ctx context.Context) error {
	if !c.Configured() {
		return domain.NewUnavailableError("no relay endpoint configured")
	}

	ctx, cancel := context.WithTimeout(ctx, constants.ProbeTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.config.BaseURL+"/livez", nil)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		slog.DebugContext(ctx, "relay probe failed", logging.ErrKey, err)
		return domain.NewUnavailableError("relay is not reachable", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return domain.NewUnavailableError(fmt.Sprintf("relay probe returned status %d", resp.StatusCode))
	}
	return nil
}

// RecordingUploadTarget resolves the upload destination for a recording.
// Returns nil when no relay is configured.
func (c *Client) RecordingUploadTarget(recordingID string) *models.UploadTarget {
	if !c.Configured() {
		return nil
	}
	return &models.UploadTarget{
		URL:    fmt.Sprintf("%s/recordings/%s", c.config.BaseURL, url.PathEscape(recordingID)),
		APIKey: c.config.APIKey,
	}
}

func (c *Client) do(ctx context.Context, method, path, contentType string, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, method, c.config.BaseURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set(constants.ContentTypeHeader, contentType)
	if c.config.APIKey != "" {
		req.Header.Set(constants.APIKeyHeader, c.config.APIKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.NewUnavailableError("relay request failed", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		switch resp.StatusCode {
		case http.StatusUnauthorized:
			return domain.NewValidationError("relay rejected the API key")
		case http.StatusBadRequest:
			return domain.NewValidationError(fmt.Sprintf("relay rejected the request: %s", string(respBody)))
		default:
			return domain.NewInternalError(
				fmt.Sprintf("relay returned status %d: %s", resp.StatusCode, string(respBody)))
		}
	}
	return nil
}

// PutRecording uploads the recording artifact.
func (c *Client) PutRecording(ctx context.Context, recordingID string, artifact []byte) error {
	if len(artifact) == 0 {
		return domain.NewValidationError("recording artifact is empty")
	}
	path := fmt.Sprintf("/recordings/%s", url.PathEscape(recordingID))
	return c.do(ctx, http.MethodPut, path, constants.ContentTypeWebM, artifact)
}

// PutParticipantData uploads the participant metadata artifact.
func (c *Client) PutParticipantData(ctx context.Context, recordingID string, payload models.ParticipantDataPayload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	path := fmt.Sprintf("/participant-data/%s", url.PathEscape(recordingID))
	return c.do(ctx, http.MethodPut, path, constants.ContentTypeJSON, body)
}

// PostAnalytics forwards a participant snapshot. Analytics are advisory:
// the caller treats failures as non-fatal.
func (c *Client) PostAnalytics(ctx context.Context, event models.ParticipantAnalyticsEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return c.do(ctx, http.MethodPost, "/analytics", constants.ContentTypeJSON, body)
}
