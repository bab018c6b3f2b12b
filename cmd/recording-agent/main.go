// Copyright Laneway and each contributor to Laneway.
// SPDX-License-Identifier: MIT

// Package main is the recording agent that owns the recording session
// lifecycle and handles NATS messages from the meeting page, the capture
// helper and the popup.
package main

import (
	"context"
	_ "expvar"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/laneway/laneway-recording-service/internal/capture"
	"github.com/laneway/laneway-recording-service/internal/delivery"
	"github.com/laneway/laneway-recording-service/internal/handlers"
	"github.com/laneway/laneway-recording-service/internal/infrastructure/bridge"
	"github.com/laneway/laneway-recording-service/internal/infrastructure/messaging"
	relayclient "github.com/laneway/laneway-recording-service/internal/infrastructure/relay"
	"github.com/laneway/laneway-recording-service/internal/logging"
	"github.com/laneway/laneway-recording-service/internal/service"
	"github.com/laneway/laneway-recording-service/pkg/utils"
)

func main() {
	env := parseEnv()
	flags := parseFlags(env.Port)

	logging.InitStructureLogConfig()

	// Setup graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	gracefulCloseWG := sync.WaitGroup{}

	// Setup tracing
	shutdownTracing, err := utils.InitTracing(ctx, utils.OTelConfigFromEnv("recording-agent"))
	if err != nil {
		slog.With(logging.ErrKey, err).Error("error setting up tracing")
		return
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			slog.With(logging.ErrKey, err).Error("error shutting down tracing")
		}
	}()

	// Setup NATS connection
	natsConn, err := setupNATS(ctx, env, &gracefulCloseWG, done)
	if err != nil {
		slog.With(logging.ErrKey, err).Error("error setting up NATS")
		return
	}

	// Get the key-value stores for the service.
	repos, err := getKeyValueStores(ctx, natsConn)
	if err != nil {
		slog.With(logging.ErrKey, err).Error("error getting key-value stores")
		return
	}

	// Initialize services
	serviceConfig := service.ServiceConfig{
		SkipRelayProbe: env.SkipRelayProbe,
	}
	messageBuilder := messaging.NewMessageBuilder(natsConn)
	relayClient := relayclient.NewClient(relayclient.ClientConfig{
		BaseURL: env.RelayBaseURL,
		APIKey:  env.RelayAPIKey,
	})
	captureBridge := bridge.NewCaptureBridge(natsConn)
	mediaCapture := capture.NewMediaCapture(captureBridge, captureBridge)
	pipeline := delivery.NewPipeline(relayClient, delivery.NewFileSink(env.DownloadsDir))
	tracker := service.NewParticipantTracker(repos.ParticipantSnapshot, relayClient)
	settingsService := service.NewSettingsService(repos.Settings)
	coordinator := service.NewSessionCoordinator(
		repos.Session,
		repos.Settings,
		messageBuilder,
		relayClient,
		pipeline,
		mediaCapture,
		func() service.Recorder { return capture.NewChunkRecorder(captureBridge) },
		tracker,
		serviceConfig,
	)

	// A session persisted by a previous process cannot resume its capture;
	// announce the failure and clear it before accepting new requests.
	if err := coordinator.Restore(ctx); err != nil {
		slog.With(logging.ErrKey, err).Error("error restoring persisted session state")
		return
	}

	// Initialize handlers
	recordingHandler := handlers.NewRecordingHandler(coordinator, tracker, settingsService)

	httpServer := setupHealthServer(flags, recordingHandler, &gracefulCloseWG)

	// Create NATS subscriptions for the service.
	err = createNatsSubscriptions(ctx, recordingHandler, natsConn)
	if err != nil {
		slog.With(logging.ErrKey, err).Error("error creating NATS subscriptions")
		return
	}

	// This next line blocks until SIGINT or SIGTERM is received.
	<-done

	gracefulShutdown(httpServer, natsConn, &gracefulCloseWG, cancel)
}
