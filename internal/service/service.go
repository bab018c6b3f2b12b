// Copyright Laneway and each contributor to Laneway.
// SPDX-License-Identifier: MIT

// Package service implements the business logic of the recording agent.
package service

type Service interface {
	ServiceReady() bool
}

// ServiceConfig is the configuration for the Services.
type ServiceConfig struct {
	// SkipRelayProbe skips the relay reachability probe on session start -
	// only meant for local development.
	SkipRelayProbe bool
}
