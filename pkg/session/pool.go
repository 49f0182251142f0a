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

// Package session pools live protocol handles per device and credential
// set, bounding their number and lifetime.
package session

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/oidyssey/oidyssey/pkg/logger"
	"github.com/oidyssey/oidyssey/pkg/models"
)

const (
	defaultMaxSessions           = 50
	defaultSessionTimeout        = 5 * time.Minute
	defaultCleanupInterval       = time.Minute
	defaultMaxRequestsPerSession = 1000
	defaultSNMPPort              = 161
)

// Config controls the pool. Zero fields take defaults.
type Config struct {
	MaxSessions           int             `json:"max_sessions"`
	SessionTimeout        models.Duration `json:"session_timeout"`
	CleanupInterval       models.Duration `json:"cleanup_interval"`
	MaxRequestsPerSession int             `json:"max_requests_per_session"`
	EnableMetrics         bool            `json:"enable_metrics"`
}

// Validate implements config.Validator.
func (c *Config) Validate() error {
	if c.MaxSessions < 0 {
		return ErrInvalidMaxSessions
	}

	return nil
}

// HealthStatus reports one session's liveness as judged by the validity
// heuristic. A production probe would round-trip the device as well.
type HealthStatus struct {
	Info
	Alive bool `json:"alive"`
}

// Pool owns every Session. Its internal map is never exposed by
// reference; accessors return copies.
type Pool struct {
	mu          sync.Mutex
	sessions    map[string]*Session
	factory     HandleFactory
	maxSessions int
	timeout     time.Duration
	maxRequests int
	metrics     *poolMetrics
	done        chan struct{}
	logger      logger.Logger
	now         func() time.Time
}

// NewPool builds a Pool around the injected handle factory and starts
// its cleanup timer.
func NewPool(config *Config, factory HandleFactory, log logger.Logger) *Pool {
	if config == nil {
		config = &Config{}
	}

	p := &Pool{
		sessions:    make(map[string]*Session),
		factory:     factory,
		maxSessions: config.MaxSessions,
		timeout:     config.SessionTimeout.Duration(),
		maxRequests: config.MaxRequestsPerSession,
		done:        make(chan struct{}),
		logger:      log,
		now:         time.Now,
	}

	if p.maxSessions == 0 {
		p.maxSessions = defaultMaxSessions
	}

	if p.timeout == 0 {
		p.timeout = defaultSessionTimeout
	}

	if p.maxRequests == 0 {
		p.maxRequests = defaultMaxRequestsPerSession
	}

	if config.EnableMetrics {
		p.metrics = newPoolMetrics()
	}

	cleanup := config.CleanupInterval.Duration()
	if cleanup == 0 {
		cleanup = defaultCleanupInterval
	}

	go p.sweepLoop(cleanup)

	return p
}

// Acquire returns a pooled session for the key derived from target,
// version, and credential fingerprint, creating one on a miss. The
// returned session is borrowed, never retained past the call.
func (p *Pool) Acquire(ctx context.Context, target Target, creds *models.Credentials) (*Session, error) {
	if strings.TrimSpace(target.Host) == "" {
		return nil, ErrInvalidHost
	}

	if creds == nil {
		return nil, ErrInvalidCredentials
	}

	if target.Port == 0 {
		target.Port = defaultSNMPPort
	}

	key := poolKey(target, creds)

	if s, err := p.reuseOrReserve(key); s != nil || err != nil {
		return s, err
	}

	handle, err := p.factory.OpenHandle(ctx, target, creds)
	if err != nil {
		p.metrics.recordError()

		return nil, fmt.Errorf("%w: device %s: %s", ErrHandleCreation, target.Host, redact(err, creds))
	}

	return p.register(key, target, creds, handle)
}

// reuseOrReserve returns an existing valid session, or makes room for a
// new one. A nil, nil return means the caller should create the handle.
func (p *Pool) reuseOrReserve(key string) (*Session, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	now := p.now()

	if s, ok := p.sessions[key]; ok {
		if p.validLocked(s, now) {
			s.lastUsed = now
			s.requests++
			s.active = true
			p.metrics.recordRequest()

			return s, nil
		}

		p.destroyLocked(s)
	}

	if len(p.sessions) >= p.maxSessions && !p.evictLRULocked() {
		return nil, ErrPoolAtCapacity
	}

	return nil, nil
}

// register stores a freshly created handle under key. If a concurrent
// acquire won the race, the new handle is closed and the pooled session
// is reused instead.
func (p *Pool) register(key string, target Target, creds *models.Credentials, handle Handle) (*Session, error) {
	p.mu.Lock()

	now := p.now()

	if existing, ok := p.sessions[key]; ok && p.validLocked(existing, now) {
		existing.lastUsed = now
		existing.requests++
		existing.active = true
		p.metrics.recordRequest()
		p.mu.Unlock()

		handle.Close()

		return existing, nil
	}

	if len(p.sessions) >= p.maxSessions && !p.evictLRULocked() {
		p.mu.Unlock()

		handle.Close()

		return nil, ErrPoolAtCapacity
	}

	s := &Session{
		id:          uuid.New().String(),
		key:         key,
		target:      target,
		version:     creds.Version,
		fingerprint: Fingerprint(creds),
		createdAt:   now,
		lastUsed:    now,
		requests:    1,
		active:      true,
		handle:      handle,
	}

	p.sessions[key] = s
	p.metrics.recordRequest()

	if p.logger != nil {
		p.logger.Debug().
			Str("session_id", s.id).
			Str("host", target.Host).
			Str("fingerprint", s.fingerprint).
			Msg("Created session")
	}

	p.mu.Unlock()

	return s, nil
}

// Release marks a session inactive, making it available for reuse or
// eviction without destroying it.
func (p *Pool) Release(sessionID string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for _, s := range p.sessions {
		if s.id == sessionID {
			s.active = false
			return
		}
	}
}

// Close destroys one session. The handle close is best-effort; cleanup
// never reports an error.
func (p *Pool) Close(sessionID string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for _, s := range p.sessions {
		if s.id == sessionID {
			p.destroyLocked(s)
			return
		}
	}
}

// CloseAll destroys every pooled session.
func (p *Pool) CloseAll() {
	p.mu.Lock()
	defer p.mu.Unlock()

	for _, s := range p.sessions {
		p.destroyLocked(s)
	}
}

// Stop tears down the cleanup timer and every session.
func (p *Pool) Stop() {
	select {
	case <-p.done:
	default:
		close(p.done)
	}

	p.CloseAll()
}

// Sessions returns a copied summary of every pooled session.
func (p *Pool) Sessions() []Info {
	p.mu.Lock()
	defer p.mu.Unlock()

	infos := make([]Info, 0, len(p.sessions))
	for _, s := range p.sessions {
		infos = append(infos, s.info())
	}

	return infos
}

// HealthCheck reports per-session liveness using the validity heuristic.
func (p *Pool) HealthCheck() []HealthStatus {
	p.mu.Lock()
	defer p.mu.Unlock()

	now := p.now()
	statuses := make([]HealthStatus, 0, len(p.sessions))

	for _, s := range p.sessions {
		statuses = append(statuses, HealthStatus{
			Info:  s.info(),
			Alive: p.validLocked(s, now),
		})
	}

	return statuses
}

// RecordExchange feeds one transport exchange outcome into pool metrics.
func (p *Pool) RecordExchange(latency time.Duration, err error) {
	p.metrics.recordExchange(latency, err)
}

// Metrics returns a point-in-time metrics summary. Zero values when
// metrics are disabled.
func (p *Pool) Metrics() Metrics {
	p.mu.Lock()

	total := len(p.sessions)
	active := 0

	for _, s := range p.sessions {
		if s.active {
			active++
		}
	}

	maxSessions := p.maxSessions
	p.mu.Unlock()

	m := p.metrics.snapshot()
	m.TotalSessions = total
	m.ActiveSessions = active
	m.Utilization = float64(total) / float64(maxSessions)

	return m
}

// validLocked combines the three independent validity conditions; any
// one failing invalidates the session.
func (p *Pool) validLocked(s *Session, now time.Time) bool {
	if s.handle == nil {
		return false
	}

	if now.Sub(s.lastUsed) >= p.timeout {
		return false
	}

	if s.requests >= p.maxRequests {
		return false
	}

	return true
}

func (p *Pool) destroyLocked(s *Session) {
	if s.handle != nil {
		s.handle.Close()
	}

	delete(p.sessions, s.key)
}

// evictLRULocked destroys the least-recently-used inactive session.
// Returns false when every session is active.
func (p *Pool) evictLRULocked() bool {
	var victim *Session

	for _, s := range p.sessions {
		if s.active {
			continue
		}

		if victim == nil || s.lastUsed.Before(victim.lastUsed) {
			victim = s
		}
	}

	if victim == nil {
		return false
	}

	if p.logger != nil {
		p.logger.Debug().
			Str("session_id", victim.id).
			Str("host", victim.target.Host).
			Msg("Evicted idle session at capacity")
	}

	p.destroyLocked(victim)

	return true
}

func (p *Pool) sweepLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-p.done:
			return
		case <-ticker.C:
			p.sweep()
		}
	}
}

// sweep closes every session that fails its validity check.
func (p *Pool) sweep() {
	p.mu.Lock()
	defer p.mu.Unlock()

	now := p.now()
	removed := 0

	for _, s := range p.sessions {
		if !p.validLocked(s, now) {
			p.destroyLocked(s)

			removed++
		}
	}

	if removed > 0 && p.logger != nil {
		p.logger.Debug().Int("removed", removed).Msg("Session sweep closed invalid sessions")
	}
}
