/*
 * Copyright 2025 Carver Automation Corporation.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os/signal"
	"syscall"

	"github.com/oidyssey/oidyssey/pkg/config"
	"github.com/oidyssey/oidyssey/pkg/logger"
	"github.com/oidyssey/oidyssey/pkg/models"
	"github.com/oidyssey/oidyssey/pkg/natsutil"
	"github.com/oidyssey/oidyssey/pkg/snmputil"
	"github.com/oidyssey/oidyssey/pkg/trap"
)

var (
	errFailedToLoadConfig = fmt.Errorf("failed to load trapd configuration")
	errFailedToInitLogger = fmt.Errorf("failed to initialize logger")
)

const defaultStreamName = "oidyssey-events"

// Config is the trapd daemon configuration.
type Config struct {
	Listener trap.Config    `json:"listener"`
	NATS     *NATSConfig    `json:"nats,omitempty"`
	Logging  *logger.Config `json:"logging,omitempty"`
}

// NATSConfig enables publishing accepted traps to JetStream.
type NATSConfig struct {
	URL    string `json:"url"`
	Stream string `json:"stream,omitempty"`
}

// Validate implements config.Validator.
func (c *Config) Validate() error {
	return c.Listener.Validate()
}

func main() {
	if err := run(); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	configFile := flag.String("config", "/etc/oidyssey/trapd.json", "Path to trapd config file")

	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var cfg Config

	if err := config.NewConfig(nil).LoadAndValidate(ctx, *configFile, &cfg); err != nil {
		return fmt.Errorf("%w: %w", errFailedToLoadConfig, err)
	}

	appLogger, err := logger.New(cfg.Logging)
	if err != nil {
		return fmt.Errorf("%w: %w", errFailedToInitLogger, err)
	}

	return runListener(ctx, &cfg, appLogger)
}

func runListener(ctx context.Context, cfg *Config, appLogger logger.Logger) error {
	registry := trap.NewRegistry()
	defer registry.Teardown()

	listener, err := trap.NewListener(&cfg.Listener, registry, snmputil.NewWireParser(), appLogger)
	if err != nil {
		return fmt.Errorf("failed to create trap listener: %w", err)
	}

	publish, cleanup, err := buildSink(ctx, cfg, appLogger)
	if err != nil {
		return err
	}

	if cleanup != nil {
		defer cleanup()
	}

	listener.OnRecord(func(record models.TrapRecord) {
		appLogger.Info().
			Str("trap_id", record.ID).
			Str("source_ip", record.SourceIP).
			Int("source_port", record.SourcePort).
			Str("version", string(record.Version)).
			Int("varbinds", len(record.VarBinds)).
			Msg("Trap received")

		if publish != nil {
			publish(record)
		}
	})

	if err := listener.Start(ctx); err != nil {
		return fmt.Errorf("failed to start trap listener: %w", err)
	}

	appLogger.Info().
		Int("port", cfg.Listener.Port).
		Str("bind_address", cfg.Listener.BindAddress).
		Msg("Trap daemon started")

	<-ctx.Done()

	listener.Stop()

	if err := listener.Err(); err != nil {
		return err
	}

	appLogger.Info().Uint64("received", listener.Received()).Msg("Trap daemon stopped")

	return nil
}

// buildSink wires the optional NATS publisher. A nil publish function
// means traps are only logged.
func buildSink(ctx context.Context, cfg *Config, appLogger logger.Logger) (func(models.TrapRecord), func(), error) {
	if cfg.NATS == nil || cfg.NATS.URL == "" {
		return nil, nil, nil
	}

	stream := cfg.NATS.Stream
	if stream == "" {
		stream = defaultStreamName
	}

	publisher, nc, err := natsutil.ConnectWithEventPublisher(ctx, cfg.NATS.URL, stream)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to set up NATS trap sink: %w", err)
	}

	appLogger.Info().
		Str("url", cfg.NATS.URL).
		Str("stream", stream).
		Msg("Publishing traps to NATS JetStream")

	return publisher.Sink(appLogger), nc.Close, nil
}
