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

// Package logger provides JSON structured logging using zerolog
package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

type Config struct {
	Level      string `json:"level"`
	Debug      bool   `json:"debug"`
	Output     string `json:"output"`
	TimeFormat string `json:"time_format"`
}

// New builds a Logger from the given config. A nil config yields an
// info-level logger writing JSON to stdout.
func New(config *Config) (Logger, error) {
	if config == nil {
		config = &Config{}
	}

	var output io.Writer = os.Stdout

	if config.Output == "stderr" {
		output = os.Stderr
	}

	level := zerolog.InfoLevel

	if config.Debug {
		level = zerolog.DebugLevel
	} else if config.Level != "" {
		var err error

		level, err = zerolog.ParseLevel(config.Level)
		if err != nil {
			return nil, err
		}
	}

	if config.TimeFormat == "" {
		zerolog.TimeFieldFormat = time.RFC3339
	} else {
		zerolog.TimeFieldFormat = config.TimeFormat
	}

	zl := zerolog.New(output).
		Level(level).
		With().
		Timestamp().
		Logger()

	return &zerologAdapter{logger: zl}, nil
}

// FromZerolog wraps an existing zerolog.Logger in the Logger interface.
func FromZerolog(zl zerolog.Logger) Logger {
	return &zerologAdapter{logger: zl}
}

type zerologAdapter struct {
	logger zerolog.Logger
}

func (a *zerologAdapter) Trace() *zerolog.Event { return a.logger.Trace() }
func (a *zerologAdapter) Debug() *zerolog.Event { return a.logger.Debug() }
func (a *zerologAdapter) Info() *zerolog.Event  { return a.logger.Info() }
func (a *zerologAdapter) Warn() *zerolog.Event  { return a.logger.Warn() }
func (a *zerologAdapter) Error() *zerolog.Event { return a.logger.Error() }
func (a *zerologAdapter) Fatal() *zerolog.Event { return a.logger.Fatal() }
func (a *zerologAdapter) Panic() *zerolog.Event { return a.logger.Panic() }
func (a *zerologAdapter) With() zerolog.Context { return a.logger.With() }

func (a *zerologAdapter) WithComponent(component string) zerolog.Logger {
	return a.logger.With().Str("component", component).Logger()
}

func (a *zerologAdapter) WithFields(fields map[string]interface{}) zerolog.Logger {
	ctx := a.logger.With()
	for key, value := range fields {
		ctx = ctx.Interface(key, value)
	}

	return ctx.Logger()
}

func (a *zerologAdapter) SetLevel(level zerolog.Level) {
	a.logger = a.logger.Level(level)
}

func (a *zerologAdapter) SetDebug(debug bool) {
	if debug {
		a.SetLevel(zerolog.DebugLevel)
	} else {
		a.SetLevel(zerolog.InfoLevel)
	}
}
