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

// Package natsutil publishes received trap notifications as CloudEvents
// on NATS JetStream.
package natsutil

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/oidyssey/oidyssey/pkg/logger"
	"github.com/oidyssey/oidyssey/pkg/models"
)

const (
	eventSource      = "oidyssey/trapd"
	eventType        = "com.oidyssey.trap.received"
	trapEventSubject = "events.snmp.trap"

	defaultPublishTimeout = 5 * time.Second
)

// EventPublisher provides methods for publishing CloudEvents to NATS JetStream.
type EventPublisher struct {
	js     jetstream.JetStream
	stream string
}

// NewEventPublisher creates a new EventPublisher for the specified stream.
func NewEventPublisher(js jetstream.JetStream, streamName string) *EventPublisher {
	return &EventPublisher{
		js:     js,
		stream: streamName,
	}
}

// PublishTrapEvent publishes one received trap as a CloudEvent.
func (p *EventPublisher) PublishTrapEvent(ctx context.Context, record *models.TrapRecord) error {
	receivedAt := record.ReceivedAt

	event := models.CloudEvent{
		SpecVersion:     "1.0",
		ID:              record.ID,
		Source:          eventSource,
		Type:            eventType,
		DataContentType: "application/json",
		Subject:         trapEventSubject,
		Time:            &receivedAt,
		Data:            record,
	}

	eventBytes, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal trap event: %w", err)
	}

	_, err = p.js.Publish(ctx, event.Subject, eventBytes)
	if err != nil {
		return fmt.Errorf("failed to publish trap event: %w", err)
	}

	return nil
}

// Sink adapts the publisher to the listener's record callback. Publish
// failures are logged and dropped so a broker outage never stalls trap
// reception.
func (p *EventPublisher) Sink(log logger.Logger) func(models.TrapRecord) {
	return func(record models.TrapRecord) {
		ctx, cancel := context.WithTimeout(context.Background(), defaultPublishTimeout)
		defer cancel()

		if err := p.PublishTrapEvent(ctx, &record); err != nil {
			log.Error().
				Err(err).
				Str("trap_id", record.ID).
				Str("source_ip", record.SourceIP).
				Msg("Failed to publish trap event")
		}
	}
}

// ConnectWithEventPublisher creates a NATS connection with JetStream and
// returns an EventPublisher, creating the stream when it does not exist.
func ConnectWithEventPublisher(ctx context.Context, natsURL, streamName string, opts ...nats.Option) (*EventPublisher, *nats.Conn, error) {
	nc, err := nats.Connect(natsURL, opts...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}

	if err := ensureStream(ctx, js, streamName); err != nil {
		nc.Close()
		return nil, nil, err
	}

	return NewEventPublisher(js, streamName), nc, nil
}

func ensureStream(ctx context.Context, js jetstream.JetStream, streamName string) error {
	stream, err := js.Stream(ctx, streamName)
	if err == nil {
		// Make sure the trap subject is bound to the stream.
		info, infoErr := stream.Info(ctx)
		if infoErr != nil {
			return fmt.Errorf("failed to inspect stream %s: %w", streamName, infoErr)
		}

		subjects := ensureSubjectList(info.Config.Subjects, trapEventSubject)
		if len(subjects) == len(info.Config.Subjects) {
			return nil
		}

		cfg := info.Config
		cfg.Subjects = subjects

		if _, err := js.UpdateStream(ctx, cfg); err != nil {
			return fmt.Errorf("failed to update stream %s: %w", streamName, err)
		}

		return nil
	}

	if !isStreamMissingErr(err) {
		return fmt.Errorf("failed to look up stream %s: %w", streamName, err)
	}

	streamConfig := jetstream.StreamConfig{
		Name:     streamName,
		Subjects: []string{trapEventSubject},
	}

	if _, err := js.CreateOrUpdateStream(ctx, streamConfig); err != nil {
		return fmt.Errorf("failed to create stream %s: %w", streamName, err)
	}

	return nil
}

// ensureSubjectList appends subject unless an existing entry already
// covers it, wildcards included.
func ensureSubjectList(subjects []string, subject string) []string {
	for _, pattern := range subjects {
		if matchesSubject(pattern, subject) {
			return subjects
		}
	}

	return append(subjects, subject)
}

// matchesSubject reports whether a NATS subject pattern covers subject.
func matchesSubject(pattern, subject string) bool {
	patternTokens := strings.Split(pattern, ".")
	subjectTokens := strings.Split(subject, ".")

	for i, token := range patternTokens {
		if token == ">" {
			return true
		}

		if i >= len(subjectTokens) {
			return false
		}

		if token != "*" && token != subjectTokens[i] {
			return false
		}
	}

	return len(patternTokens) == len(subjectTokens)
}

func isStreamMissingErr(err error) bool {
	return errors.Is(err, jetstream.ErrNoStreamResponse) ||
		errors.Is(err, jetstream.ErrStreamNotFound) ||
		errors.Is(err, nats.ErrNoStreamResponse) ||
		errors.Is(err, nats.ErrStreamNotFound) ||
		errors.Is(err, nats.ErrNoResponders)
}
