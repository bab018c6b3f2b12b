// Copyright Laneway and each contributor to Laneway.
// SPDX-License-Identifier: MIT

// Package main is the recording relay, a stateless HTTP service that stores
// recording artifacts and participant metadata for recording agents.
package main

import (
	"context"
	_ "expvar"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/laneway/laneway-recording-service/internal/infrastructure/store"
	"github.com/laneway/laneway-recording-service/internal/logging"
	"github.com/laneway/laneway-recording-service/internal/relay"
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
	shutdownTracing, err := utils.InitTracing(ctx, utils.OTelConfigFromEnv("recording-relay"))
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

	// Get the object store backing the relay.
	objectStore, err := getObjectStore(ctx, natsConn)
	if err != nil {
		slog.With(logging.ErrKey, err).Error("error getting object store")
		return
	}

	relayService := relay.NewService(objectStore)

	httpServer := setupHTTPServer(flags, env, relayService, &gracefulCloseWG)

	// This next line blocks until SIGINT or SIGTERM is received.
	<-done

	gracefulShutdown(httpServer, natsConn, &gracefulCloseWG, cancel)
}

// setupNATS connects to the NATS server backing the object store.
func setupNATS(ctx context.Context, env environment, gracefulCloseWG *sync.WaitGroup, done chan os.Signal) (*nats.Conn, error) {
	gracefulCloseWG.Add(1)

	natsConn, err := nats.Connect(
		env.NatsURL,
		nats.DrainTimeout(25*time.Second),
		nats.ConnectHandler(func(_ *nats.Conn) {
			slog.InfoContext(ctx, "connected to NATS server", "nats_url", env.NatsURL)
		}),
		nats.ClosedHandler(func(conn *nats.Conn) {
			slog.InfoContext(ctx, "NATS connection closed")
			gracefulCloseWG.Done()
			if err := conn.LastError(); err != nil {
				slog.ErrorContext(ctx, "NATS connection closed with error", logging.ErrKey, err)
			}
			select {
			case done <- os.Interrupt:
			default:
			}
		}),
	)
	if err != nil {
		gracefulCloseWG.Done()
		return nil, err
	}

	return natsConn, nil
}

// getObjectStore provisions the object store bucket for artifacts.
func getObjectStore(ctx context.Context, natsConn *nats.Conn) (store.INatsObjectStore, error) {
	js, err := jetstream.New(natsConn)
	if err != nil {
		return nil, err
	}

	return js.CreateOrUpdateObjectStore(ctx, jetstream.ObjectStoreConfig{
		Bucket: store.ObjectStoreNameRecordings,
	})
}
