// Copyright Laneway and each contributor to Laneway.
// SPDX-License-Identifier: MIT

package models

// DeliveryMode says where a recording artifact ended up.
type DeliveryMode string

const (
	DeliveryModeRemote DeliveryMode = "remote"
	DeliveryModeLocal  DeliveryMode = "local"
)

// LocalReason explains why an artifact was saved locally.
type LocalReason string

const (
	// LocalReasonLocalMode means no remote target was configured.
	LocalReasonLocalMode LocalReason = "local_mode"
	// LocalReasonRemoteFailed means upload attempts were exhausted.
	LocalReasonRemoteFailed LocalReason = "remote_failed"
)

// DeliveryOutcome describes the final disposition of a recording artifact.
type DeliveryOutcome struct {
	Mode        DeliveryMode `json:"mode"`
	LocalReason LocalReason  `json:"local_reason,omitempty"`
	Location    string       `json:"location"`
	Size        int64        `json:"size"`
}
