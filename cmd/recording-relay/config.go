// Copyright Laneway and each contributor to Laneway.
// SPDX-License-Identifier: MIT

package main

import (
	"flag"
	"log/slog"
	"os"

	"github.com/nats-io/nats.go"

	"github.com/laneway/laneway-recording-service/internal/logging"
)

// flags are the command line flags for the recording relay.
type flags struct {
	Debug bool
	Port  string
	Bind  string
}

// environment are the environment variables for the recording relay.
type environment struct {
	Port    string
	NatsURL string
	APIKey  string
}

// parseFlags parses command line flags for the recording relay
func parseFlags(defaultPort string) flags {
	var debug = flag.Bool("d", false, "enable debug logging")
	var port = flag.String("p", defaultPort, "listen port")
	var bind = flag.String("bind", "*", "interface to bind on")

	flag.Usage = func() {
		flag.PrintDefaults()
		os.Exit(2)
	}
	flag.Parse()

	// Based on the debug flag, set the log level environment variable used by [logging.InitStructureLogConfig]
	if *debug {
		err := os.Setenv("LOG_LEVEL", "debug")
		if err != nil {
			slog.With(logging.ErrKey, err).Error("error setting log level")
			os.Exit(1)
		}
	}

	return flags{
		Debug: *debug,
		Port:  *port,
		Bind:  *bind,
	}
}

// parseEnv parses environment variables for the recording relay
func parseEnv() environment {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8090"
	}

	natsURL := os.Getenv("NATS_URL")
	if natsURL == "" {
		natsURL = nats.DefaultURL
	}

	apiKey := os.Getenv("RELAY_API_KEY")
	if apiKey == "" {
		slog.Error("RELAY_API_KEY environment variable is required but not set")
		os.Exit(1)
	}

	return environment{
		Port:    port,
		NatsURL: natsURL,
		APIKey:  apiKey,
	}
}
