// Copyright Laneway and each contributor to Laneway.
// SPDX-License-Identifier: MIT

// Package constants holds shared header names and context keys.
package constants

// Constants for the HTTP request headers
const (
	// APIKeyHeader is the shared-secret header required by the relay
	APIKeyHeader string = "X-API-Key"

	// RequestIDHeader is the header name for the request ID
	RequestIDHeader string = "X-REQUEST-ID"

	// ContentTypeHeader is the header name for the content type
	ContentTypeHeader string = "Content-Type"
)

// Content types used by the relay and delivery pipeline
const (
	// ContentTypeWebM is the media type of recording artifacts
	ContentTypeWebM = "video/webm"

	// ContentTypeJSON is the media type of metadata payloads
	ContentTypeJSON = "application/json"
)

// contextRequestID is the type for the request ID context key
type contextRequestID string

// RequestIDContextID is the context ID for the request ID
const RequestIDContextID contextRequestID = "X-REQUEST-ID"
