// Copyright Laneway and each contributor to Laneway.
// SPDX-License-Identifier: MIT

package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/laneway/laneway-recording-service/internal/domain"
	"github.com/laneway/laneway-recording-service/internal/handlers"
	"github.com/laneway/laneway-recording-service/internal/infrastructure/store"
	"github.com/laneway/laneway-recording-service/internal/logging"
	"github.com/laneway/laneway-recording-service/pkg/concurrent"
)

// natsSubscriptionQueue is the queue group for the agent's subscriptions.
const natsSubscriptionQueue = "laneway-recording-agent"

// setupNATS connects to the NATS server and registers connection lifecycle
// handlers tied to graceful shutdown.
func setupNATS(ctx context.Context, env environment, gracefulCloseWG *sync.WaitGroup, done chan os.Signal) (*nats.Conn, error) {
	gracefulCloseWG.Add(1)

	natsConn, err := nats.Connect(
		env.NatsURL,
		nats.DrainTimeout(25*time.Second),
		nats.ConnectHandler(func(_ *nats.Conn) {
			slog.InfoContext(ctx, "connected to NATS server", "nats_url", env.NatsURL)
		}),
		nats.ErrorHandler(func(_ *nats.Conn, s *nats.Subscription, err error) {
			if s != nil {
				slog.ErrorContext(ctx, "NATS async error", logging.ErrKey, err, "subject", s.Subject)
				return
			}
			slog.ErrorContext(ctx, "NATS async error", logging.ErrKey, err)
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

// repositories groups the KV-backed repositories used by the agent.
type repositories struct {
	Session             domain.SessionRepository
	Settings            domain.SettingsRepository
	ParticipantSnapshot domain.ParticipantSnapshotRepository
}

// getKeyValueStores provisions the KV buckets and wraps them in repositories.
func getKeyValueStores(ctx context.Context, natsConn *nats.Conn) (*repositories, error) {
	js, err := jetstream.New(natsConn)
	if err != nil {
		return nil, err
	}

	sessionKV, err := js.CreateOrUpdateKeyValue(ctx, jetstream.KeyValueConfig{
		Bucket: store.KVStoreNameRecordingState,
	})
	if err != nil {
		return nil, err
	}

	settingsKV, err := js.CreateOrUpdateKeyValue(ctx, jetstream.KeyValueConfig{
		Bucket: store.KVStoreNameUserSettings,
	})
	if err != nil {
		return nil, err
	}

	snapshotKV, err := js.CreateOrUpdateKeyValue(ctx, jetstream.KeyValueConfig{
		Bucket: store.KVStoreNameParticipantSnapshots,
	})
	if err != nil {
		return nil, err
	}

	return &repositories{
		Session:             store.NewNatsSessionRepository(sessionKV),
		Settings:            store.NewNatsSettingsRepository(settingsKV),
		ParticipantSnapshot: store.NewNatsParticipantSnapshotRepository(snapshotKV),
	}, nil
}

// natsMessage adapts *nats.Msg to the domain message interface.
type natsMessage struct {
	msg *nats.Msg
}

func (m natsMessage) Subject() string {
	return m.msg.Subject
}

func (m natsMessage) Data() []byte {
	return m.msg.Data
}

func (m natsMessage) HasReply() bool {
	return m.msg.Reply != ""
}

func (m natsMessage) Respond(data []byte) error {
	return m.msg.Respond(data)
}

// createNatsSubscriptions subscribes the handler to all of its subjects.
func createNatsSubscriptions(ctx context.Context, handler *handlers.RecordingHandler, natsConn *nats.Conn) error {
	subjects := handler.Subjects()

	pool := concurrent.NewWorkerPool(len(subjects))
	subscribers := make([]func() error, 0, len(subjects))
	for _, subject := range subjects {
		subscribers = append(subscribers, func() error {
			_, err := natsConn.QueueSubscribe(subject, natsSubscriptionQueue, func(msg *nats.Msg) {
				handler.HandleMessage(ctx, natsMessage{msg: msg})
			})
			if err != nil {
				return err
			}
			slog.DebugContext(ctx, "subscribed to NATS subject", "subject", subject)
			return nil
		})
	}

	return pool.Run(ctx, subscribers...)
}

// gracefulShutdown drains the NATS connection and stops the health server.
func gracefulShutdown(httpServer *http.Server, natsConn *nats.Conn, gracefulCloseWG *sync.WaitGroup, cancel context.CancelFunc) {
	slog.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.With(logging.ErrKey, err).Error("error shutting down http server")
	}
	gracefulCloseWG.Done()

	if natsConn != nil && !natsConn.IsClosed() {
		if err := natsConn.Drain(); err != nil {
			slog.With(logging.ErrKey, err).Error("error draining NATS connection")
		}
	}

	cancel()
	gracefulCloseWG.Wait()
	slog.Info("shutdown complete")
}
