// Copyright Laneway and each contributor to Laneway.
// SPDX-License-Identifier: MIT

package main

import (
	"flag"
	"log/slog"
	"net/url"
	"os"

	"github.com/nats-io/nats.go"

	"github.com/laneway/laneway-recording-service/internal/logging"
)

// flags are the command line flags for the recording agent.
type flags struct {
	Debug bool
	Port  string
	Bind  string
}

// environment are the environment variables for the recording agent.
type environment struct {
	Port           string
	NatsURL        string
	RelayBaseURL   string
	RelayAPIKey    string
	DownloadsDir   string
	SkipRelayProbe bool
}

// parseFlags parses command line flags for the recording agent
func parseFlags(defaultPort string) flags {
	var debug = flag.Bool("d", false, "enable debug logging")
	var port = flag.String("p", defaultPort, "health listen port")
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

// parseEnv parses environment variables for the recording agent
func parseEnv() environment {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	natsURL := os.Getenv("NATS_URL")
	if natsURL == "" {
		natsURL = nats.DefaultURL
	}

	relayBaseURL := os.Getenv("RELAY_BASE_URL")
	if relayBaseURL != "" {
		if _, err := url.Parse(relayBaseURL); err != nil {
			slog.With(logging.ErrKey, err, "url", relayBaseURL).Error("invalid RELAY_BASE_URL provided, running in local-only mode")
			relayBaseURL = ""
		}
	}

	downloadsDir := os.Getenv("DOWNLOADS_DIR")
	if downloadsDir == "" {
		downloadsDir = "downloads"
	}

	return environment{
		Port:           port,
		NatsURL:        natsURL,
		RelayBaseURL:   relayBaseURL,
		RelayAPIKey:    os.Getenv("RELAY_API_KEY"),
		DownloadsDir:   downloadsDir,
		SkipRelayProbe: os.Getenv("SKIP_RELAY_PROBE") == "true",
	}
}
