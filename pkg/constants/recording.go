// Copyright Laneway and each contributor to Laneway.
// SPDX-License-Identifier: MIT

package constants

import "time"

// Recording defaults shared between the coordinator and the capture side.
const (
	// DefaultSliceInterval bounds memory growth for long meetings while
	// keeping request overhead low.
	DefaultSliceInterval = 5 * time.Minute

	// StopCompletionTimeout bounds the wait for the upload-completion
	// signal after a stop command has been sent.
	StopCompletionTimeout = 60 * time.Second

	// ProbeTimeout bounds the single remote-availability probe performed
	// when a recording starts.
	ProbeTimeout = 3 * time.Second

	// UploadMaxAttempts is the number of remote PUT attempts before the
	// pipeline falls back to local delivery.
	UploadMaxAttempts = 2

	// UploadRetryBackoff is the fixed delay between remote PUT attempts.
	UploadRetryBackoff = 2 * time.Second

	// MeetingDomain is the application domain a recording tab must stay
	// on; navigating elsewhere forcibly terminates the session.
	MeetingDomain = "meet.google.com"
)
