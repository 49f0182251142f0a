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

// Package ratelimit throttles per-device request rates with a sliding
// window and a block cooldown.
package ratelimit

import (
	"strings"
	"sync"
	"time"

	"github.com/oidyssey/oidyssey/pkg/logger"
	"github.com/oidyssey/oidyssey/pkg/models"
)

const (
	defaultMaxRequestsPerWindow = 60
	defaultWindowSize           = time.Minute
	defaultBlockDuration        = 5 * time.Minute
	defaultSweepInterval        = time.Minute
)

// Config controls the limiter. Zero fields take defaults.
type Config struct {
	MaxRequestsPerWindow int             `json:"max_requests_per_window"`
	WindowSize           models.Duration `json:"window_size"`
	BlockDuration        models.Duration `json:"block_duration"`
	SweepInterval        models.Duration `json:"sweep_interval"`
	Disabled             bool            `json:"disabled"`
}

// Validate implements config.Validator.
func (c *Config) Validate() error {
	if c.MaxRequestsPerWindow < 0 {
		return ErrInvalidMaxRequests
	}

	if c.WindowSize < 0 {
		return ErrInvalidWindowSize
	}

	if c.BlockDuration < 0 {
		return ErrInvalidBlockDuration
	}

	return nil
}

func (c *Config) withDefaults() settings {
	s := settings{
		maxRequests:   c.MaxRequestsPerWindow,
		window:        c.WindowSize.Duration(),
		blockDuration: c.BlockDuration.Duration(),
		sweepInterval: c.SweepInterval.Duration(),
	}

	if s.maxRequests == 0 {
		s.maxRequests = defaultMaxRequestsPerWindow
	}

	if s.window == 0 {
		s.window = defaultWindowSize
	}

	if s.blockDuration == 0 {
		s.blockDuration = defaultBlockDuration
	}

	if s.sweepInterval == 0 {
		s.sweepInterval = defaultSweepInterval
	}

	return s
}

type settings struct {
	maxRequests   int
	window        time.Duration
	blockDuration time.Duration
	sweepInterval time.Duration
}

// Decision is the outcome of a single Check call. A denial is a normal
// return value, never an error.
type Decision struct {
	Allowed    bool
	RetryAfter time.Duration
}

type entry struct {
	timestamps []time.Time
	blocked    bool
	blockedAt  time.Time
	lastSeen   time.Time
}

// Stats is a point-in-time summary of limiter state.
type Stats struct {
	Devices int  `json:"devices"`
	Blocked int  `json:"blocked"`
	Enabled bool `json:"enabled"`
}

// Limiter tracks request timestamps per device key. All state is private;
// accessors return derived values only.
type Limiter struct {
	mu       sync.Mutex
	settings settings
	enabled  bool
	entries  map[string]*entry
	done     chan struct{}
	logger   logger.Logger
	now      func() time.Time
}

// NewLimiter builds a Limiter and, unless disabled, starts its sweep timer.
func NewLimiter(config *Config, log logger.Logger) *Limiter {
	if config == nil {
		config = &Config{}
	}

	l := &Limiter{
		settings: config.withDefaults(),
		enabled:  !config.Disabled,
		entries:  make(map[string]*entry),
		logger:   log,
		now:      time.Now,
	}

	if l.enabled {
		l.done = make(chan struct{})
		go l.sweepLoop(l.done)
	}

	return l
}

// Check reports whether a request for the given device may proceed now.
func (l *Limiter) Check(deviceKey string) Decision {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.enabled {
		return Decision{Allowed: true}
	}

	key := normalizeKey(deviceKey)
	now := l.now()

	e, ok := l.entries[key]
	if !ok {
		e = &entry{}
		l.entries[key] = e
	}

	e.lastSeen = now

	if e.blocked {
		remaining := l.settings.blockDuration - now.Sub(e.blockedAt)
		if remaining > 0 {
			return Decision{Allowed: false, RetryAfter: remaining}
		}

		// Cooldown elapsed: clear the block and start a fresh window.
		e.blocked = false
		e.timestamps = nil
	}

	e.timestamps = pruneBefore(e.timestamps, now.Add(-l.settings.window))

	if len(e.timestamps) >= l.settings.maxRequests {
		e.blocked = true
		e.blockedAt = now

		l.logDenied(key)

		return Decision{Allowed: false, RetryAfter: l.settings.blockDuration}
	}

	e.timestamps = append(e.timestamps, now)

	return Decision{Allowed: true}
}

// Reset forgets all state for one device.
func (l *Limiter) Reset(deviceKey string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	delete(l.entries, normalizeKey(deviceKey))
}

// ResetAll forgets all per-device state.
func (l *Limiter) ResetAll() {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.entries = make(map[string]*entry)
}

// SetEnabled turns limiting on or off at runtime. Disabling tears down
// the sweep timer and clears all state; enabling restarts it.
func (l *Limiter) SetEnabled(enabled bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if enabled == l.enabled {
		return
	}

	l.enabled = enabled

	if enabled {
		l.done = make(chan struct{})
		go l.sweepLoop(l.done)

		return
	}

	if l.done != nil {
		close(l.done)
		l.done = nil
	}

	l.entries = make(map[string]*entry)
}

// Reconfigure applies new window/ceiling/cooldown values. Existing
// per-device windows are kept and re-evaluated against the new limits.
func (l *Limiter) Reconfigure(config *Config) error {
	if config == nil {
		config = &Config{}
	}

	if err := config.Validate(); err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	l.settings = config.withDefaults()

	return nil
}

// Stop tears down the sweep timer. Cleanup is unconditional.
func (l *Limiter) Stop() {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.done != nil {
		close(l.done)
		l.done = nil
	}
}

// Stats returns a summary of current limiter state.
func (l *Limiter) Stats() Stats {
	l.mu.Lock()
	defer l.mu.Unlock()

	blocked := 0

	for _, e := range l.entries {
		if e.blocked {
			blocked++
		}
	}

	return Stats{
		Devices: len(l.entries),
		Blocked: blocked,
		Enabled: l.enabled,
	}
}

func (l *Limiter) sweepLoop(done chan struct{}) {
	ticker := time.NewTicker(l.settings.sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			l.sweep()
		}
	}
}

// sweep drops entries that are both unblocked and empty, bounding memory.
func (l *Limiter) sweep() {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	removed := 0

	for key, e := range l.entries {
		if e.blocked {
			if now.Sub(e.blockedAt) < l.settings.blockDuration {
				continue
			}

			e.blocked = false
			e.timestamps = nil
		}

		e.timestamps = pruneBefore(e.timestamps, now.Add(-l.settings.window))

		if !e.blocked && len(e.timestamps) == 0 {
			delete(l.entries, key)

			removed++
		}
	}

	if removed > 0 && l.logger != nil {
		l.logger.Debug().Int("removed", removed).Msg("Rate limiter sweep removed idle entries")
	}
}

func (l *Limiter) logDenied(key string) {
	if l.logger == nil {
		return
	}

	l.logger.Warn().
		Str("device", key).
		Dur("block_duration", l.settings.blockDuration).
		Msg("Device entered rate limit cooldown")
}

func normalizeKey(deviceKey string) string {
	return strings.ToLower(strings.TrimSpace(deviceKey))
}

// pruneBefore removes timestamps older than cutoff, preserving order.
func pruneBefore(timestamps []time.Time, cutoff time.Time) []time.Time {
	idx := 0

	for idx < len(timestamps) && !timestamps[idx].After(cutoff) {
		idx++
	}

	if idx == 0 {
		return timestamps
	}

	return append(timestamps[:0], timestamps[idx:]...)
}
