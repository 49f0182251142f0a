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

// Package trap receives asynchronous SNMP notifications over UDP,
// filters them by source and content, and emits structured records.
package trap

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/oidyssey/oidyssey/pkg/logger"
	"github.com/oidyssey/oidyssey/pkg/models"
)

const (
	maxPort         = 65535
	datagramBufSize = 65535
)

var (
	errNilRegistry = errors.New("registry must not be nil")
	errNilParser   = errors.New("packet parser must not be nil")
)

// State is the listener lifecycle position.
type State int

const (
	StateIdle State = iota
	StateBinding
	StateListening
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateBinding:
		return "binding"
	case StateListening:
		return "listening"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// Config controls one listener.
type Config struct {
	Port              int             `json:"port"`
	BindAddress       string          `json:"bind_address,omitempty"`
	AllowedSources    []string        `json:"allowed_sources,omitempty"`
	FilterOID         string          `json:"filter_oid,omitempty"`
	FilterCommunity   string          `json:"filter_community,omitempty"`
	IncludeRawPayload bool            `json:"include_raw_payload,omitempty"`
	InactivityTimeout models.Duration `json:"inactivity_timeout,omitempty"`
}

// Validate implements config.Validator.
func (c *Config) Validate() error {
	if c.Port < 1 || c.Port > maxPort {
		return ErrInvalidPort
	}

	return nil
}

// Listener binds one UDP port and converts accepted datagrams into trap
// records. With a record callback set it streams continuously; without
// one it accumulates records until the inactivity timeout or Stop.
type Listener struct {
	config   Config
	registry *Registry
	parser   PacketParser
	filter   *sourceFilter
	logger   logger.Logger
	sink     func(models.TrapRecord)

	mu         sync.Mutex
	conn       *net.UDPConn
	state      State
	records    []models.TrapRecord
	fatalErr   error
	inactivity *time.Timer
	done       chan struct{}
	doneOnce   sync.Once
	received   uint64
	createdAt  time.Time
}

// NewListener validates config and builds a listener in the idle state.
func NewListener(config *Config, registry *Registry, parser PacketParser, log logger.Logger) (*Listener, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	if registry == nil {
		return nil, errNilRegistry
	}

	if parser == nil {
		return nil, errNilParser
	}

	filter, err := newSourceFilter(config.AllowedSources)
	if err != nil {
		return nil, err
	}

	return &Listener{
		config:   *config,
		registry: registry,
		parser:   parser,
		filter:   filter,
		logger:   log,
		done:     make(chan struct{}),
	}, nil
}

// OnRecord switches the listener to continuous mode: each accepted
// record is handed to fn instead of being accumulated. Must be called
// before Start.
func (l *Listener) OnRecord(fn func(models.TrapRecord)) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.sink = fn
}

// Start reserves the port, binds the socket, and begins receiving. Bind
// errors are fatal and surfaced; the listener does not retry.
func (l *Listener) Start(_ context.Context) error {
	l.mu.Lock()

	if l.state != StateIdle {
		l.mu.Unlock()
		return ErrAlreadyStarted
	}

	l.state = StateBinding
	l.mu.Unlock()

	// Reserving before the bind keeps check-then-bind atomic across
	// concurrent starts on the same registry.
	if err := l.registry.reserve(l.config.Port, l); err != nil {
		l.settleBind(StateIdle)
		return fmt.Errorf("%w: port %d", err, l.config.Port)
	}

	bindAddr := l.config.BindAddress
	if bindAddr == "" {
		bindAddr = "0.0.0.0"
	}

	udpAddr, err := net.ResolveUDPAddr("udp", fmt.Sprintf("%s:%d", bindAddr, l.config.Port))
	if err != nil {
		l.registry.release(l.config.Port, l)
		l.settleBind(StateStopped)

		return fmt.Errorf("%w: %w", ErrBindFailed, err)
	}

	conn, err := net.ListenUDP("udp", udpAddr)
	if err != nil {
		l.registry.release(l.config.Port, l)
		l.settleBind(StateStopped)

		return fmt.Errorf("%w: %w", ErrBindFailed, err)
	}

	l.mu.Lock()

	// A Stop that landed mid-bind has already committed StateStopped and
	// closed done; the fresh socket must not come up over it.
	if l.state != StateBinding {
		l.mu.Unlock()

		_ = conn.Close()
		l.registry.release(l.config.Port, l)

		return nil
	}

	l.conn = conn
	l.state = StateListening
	l.createdAt = time.Now()

	if d := l.config.InactivityTimeout.Duration(); d > 0 {
		l.inactivity = time.AfterFunc(d, l.Stop)
	}

	l.mu.Unlock()

	if l.logger != nil {
		l.logger.Info().
			Int("port", l.config.Port).
			Str("bind_address", bindAddr).
			Msg("Trap listener started")
	}

	go l.readLoop(conn)

	return nil
}

// Stop is the unconditional teardown: cancels the inactivity timer,
// closes the socket ignoring close errors, and releases the port. Safe
// to call more than once.
func (l *Listener) Stop() {
	l.mu.Lock()

	if l.state == StateStopped {
		l.mu.Unlock()
		return
	}

	l.state = StateStopped

	if l.inactivity != nil {
		l.inactivity.Stop()
	}

	conn := l.conn

	l.closeDone()
	l.mu.Unlock()

	if conn != nil {
		_ = conn.Close()
	}

	l.registry.release(l.config.Port, l)

	if l.logger != nil {
		l.logger.Info().Int("port", l.config.Port).Msg("Trap listener stopped")
	}
}

// Wait blocks until the listener stops (inactivity timeout, fatal
// socket error, or explicit Stop) and returns the accumulated records.
// This is the batch-collection surface.
func (l *Listener) Wait(ctx context.Context) ([]models.TrapRecord, error) {
	select {
	case <-l.done:
	case <-ctx.Done():
		l.Stop()
	}

	return l.Records(), l.Err()
}

// Records returns a copy of the accumulated records.
func (l *Listener) Records() []models.TrapRecord {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]models.TrapRecord, len(l.records))
	copy(out, l.records)

	return out
}

// Err reports the fatal socket error that stopped the listener, if any.
func (l *Listener) Err() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.fatalErr
}

// State reports the current lifecycle state.
func (l *Listener) State() State {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.state
}

// Received reports the cumulative accepted-trap count.
func (l *Listener) Received() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.received
}

// settleBind records the outcome of a failed or preempted startup. The
// state only moves if no Stop committed StateStopped in the meantime, and
// done closes whenever the listener ends up stopped so Wait never blocks
// on a listener that will not run.
func (l *Listener) settleBind(next State) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.state == StateBinding {
		l.state = next
	}

	if l.state == StateStopped {
		l.closeDone()
	}
}

func (l *Listener) closeDone() {
	l.doneOnce.Do(func() { close(l.done) })
}

func (l *Listener) readLoop(conn *net.UDPConn) {
	buf := make([]byte, datagramBufSize)

	for {
		n, addr, err := conn.ReadFromUDP(buf)
		if err != nil {
			select {
			case <-l.done:
				return
			default:
			}

			l.mu.Lock()
			l.fatalErr = fmt.Errorf("%w: %w", ErrSocketClosed, err)
			l.mu.Unlock()

			if l.logger != nil {
				l.logger.Error().Err(err).Int("port", l.config.Port).Msg("Trap listener socket error")
			}

			l.Stop()

			return
		}

		raw := make([]byte, n)
		copy(raw, buf[:n])

		l.handleDatagram(raw, addr)
	}
}

// handleDatagram runs the full accept pipeline for one datagram. A
// non-matching source or content filter drops it silently; a parse
// failure is swallowed so one malformed packet cannot stop the listener.
func (l *Listener) handleDatagram(raw []byte, addr *net.UDPAddr) {
	l.mu.Lock()
	if l.inactivity != nil {
		l.inactivity.Reset(l.config.InactivityTimeout.Duration())
	}
	l.mu.Unlock()

	if !l.filter.allows(addr.IP) {
		return
	}

	packet, err := l.parser.Parse(raw)
	if err != nil {
		if l.logger != nil {
			l.logger.Debug().Err(err).Str("source", addr.IP.String()).Msg("Discarded malformed trap datagram")
		}

		return
	}

	if !matchesContent(packet, l.config.FilterCommunity, l.config.FilterOID) {
		return
	}

	record := models.TrapRecord{
		ID:           uuid.New().String(),
		ReceivedAt:   time.Now(),
		SourceIP:     addr.IP.String(),
		SourcePort:   addr.Port,
		Version:      packet.Version,
		Community:    packet.Community,
		Enterprise:   packet.Enterprise,
		GenericType:  packet.GenericType,
		SpecificType: packet.SpecificType,
		UptimeTicks:  packet.UptimeTicks,
		VarBinds:     packet.VarBinds,
	}

	if l.config.IncludeRawPayload {
		record.RawPayload = raw
	}

	l.mu.Lock()
	l.received++
	sink := l.sink

	if sink == nil {
		l.records = append(l.records, record)
	}
	l.mu.Unlock()

	if sink != nil {
		sink(record)
	}
}
