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

// Package query orchestrates a single device exchange across the rate
// limiter, response cache, and session pool.
package query

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/oidyssey/oidyssey/pkg/cache"
	"github.com/oidyssey/oidyssey/pkg/logger"
	"github.com/oidyssey/oidyssey/pkg/models"
	"github.com/oidyssey/oidyssey/pkg/ratelimit"
	"github.com/oidyssey/oidyssey/pkg/session"
)

const defaultExchangeTimeout = 10 * time.Second

// Config tunes executor behavior.
type Config struct {
	// ExchangeTimeout bounds a single device exchange. Defaults to 10s.
	ExchangeTimeout models.Duration `json:"exchange_timeout,omitempty"`
}

// Result is the outcome of one executor request. A rate-limited request
// is a valid outcome, not an error: RateLimited is set and RetryAfter
// tells the caller when to come back.
type Result struct {
	Device      string           `json:"device"`
	VarBinds    []models.VarBind `json:"varbinds,omitempty"`
	FromCache   bool             `json:"from_cache,omitempty"`
	RateLimited bool             `json:"rate_limited,omitempty"`
	RetryAfter  time.Duration    `json:"retry_after,omitempty"`
	LatencyMs   float64          `json:"latency_ms,omitempty"`
}

// Executor runs get, bulk, and walk requests through the full pipeline.
// The limiter and cache are optional; a nil value disables that stage.
type Executor struct {
	pool    *session.Pool
	limiter *ratelimit.Limiter
	cache   *cache.Store
	timeout time.Duration
	logger  logger.Logger
	now     func() time.Time
}

// NewExecutor creates an executor over the given components.
func NewExecutor(pool *session.Pool, limiter *ratelimit.Limiter, store *cache.Store, config *Config, log logger.Logger) (*Executor, error) {
	if pool == nil {
		return nil, ErrNilPool
	}

	timeout := defaultExchangeTimeout
	if config != nil && config.ExchangeTimeout.Duration() > 0 {
		timeout = config.ExchangeTimeout.Duration()
	}

	return &Executor{
		pool:    pool,
		limiter: limiter,
		cache:   store,
		timeout: timeout,
		logger:  log,
		now:     time.Now,
	}, nil
}

// Get fetches the given identifiers from a device. Single-identifier
// requests consult the cache first and feed it afterwards.
func (e *Executor) Get(ctx context.Context, target session.Target, creds *models.Credentials, oids []string) (*Result, error) {
	device, err := validateRequest(target, creds, oids)
	if err != nil {
		return nil, err
	}

	if denied, result := e.checkLimit(device); denied {
		return result, nil
	}

	cacheable := e.cache != nil && len(oids) == 1

	if cacheable {
		if value, ok := e.cache.Get(device, oids[0]); ok {
			if varbinds, ok := value.([]models.VarBind); ok {
				return &Result{Device: device, VarBinds: varbinds, FromCache: true}, nil
			}
		}
	}

	varbinds, latency, err := e.exchange(ctx, target, creds, func(ctx context.Context, h session.Handle) ([]models.VarBind, error) {
		return h.Get(ctx, oids)
	})
	if err != nil {
		return nil, err
	}

	if cacheable {
		e.cache.Put(device, oids[0], varbinds, 0)
	}

	return &Result{Device: device, VarBinds: varbinds, LatencyMs: latency}, nil
}

// GetBulk issues a bulk request. Results are never cached: bulk replies
// depend on repetition settings, not just the identifier.
func (e *Executor) GetBulk(ctx context.Context, target session.Target, creds *models.Credentials, oids []string, nonRepeaters, maxRepetitions uint8) (*Result, error) {
	device, err := validateRequest(target, creds, oids)
	if err != nil {
		return nil, err
	}

	if denied, result := e.checkLimit(device); denied {
		return result, nil
	}

	varbinds, latency, err := e.exchange(ctx, target, creds, func(ctx context.Context, h session.Handle) ([]models.VarBind, error) {
		return h.GetBulk(ctx, oids, nonRepeaters, maxRepetitions)
	})
	if err != nil {
		return nil, err
	}

	return &Result{Device: device, VarBinds: varbinds, LatencyMs: latency}, nil
}

// Walk traverses the subtree under rootOID, collecting up to maxResults
// varbinds (0 means unbounded).
func (e *Executor) Walk(ctx context.Context, target session.Target, creds *models.Credentials, rootOID string, maxResults int) (*Result, error) {
	device, err := validateRequest(target, creds, []string{rootOID})
	if err != nil {
		return nil, err
	}

	if denied, result := e.checkLimit(device); denied {
		return result, nil
	}

	var collected []models.VarBind

	_, latency, err := e.exchange(ctx, target, creds, func(ctx context.Context, h session.Handle) ([]models.VarBind, error) {
		walkErr := h.Walk(ctx, rootOID, maxResults, func(vb models.VarBind) error {
			collected = append(collected, vb)
			return nil
		})

		return nil, walkErr
	})
	if err != nil {
		return nil, err
	}

	return &Result{Device: device, VarBinds: collected, LatencyMs: latency}, nil
}

// InvalidateDevice drops all cached values for a device.
func (e *Executor) InvalidateDevice(device string) {
	if e.cache != nil {
		e.cache.InvalidateDevice(device)
	}
}

func (e *Executor) checkLimit(device string) (bool, *Result) {
	if e.limiter == nil {
		return false, nil
	}

	decision := e.limiter.Check(device)
	if decision.Allowed {
		return false, nil
	}

	return true, &Result{
		Device:      device,
		RateLimited: true,
		RetryAfter:  decision.RetryAfter,
	}
}

// exchange acquires a pooled session, runs one operation against it with
// the per-exchange timeout, and feeds the pool's rolling metrics.
func (e *Executor) exchange(
	ctx context.Context,
	target session.Target,
	creds *models.Credentials,
	op func(context.Context, session.Handle) ([]models.VarBind, error),
) ([]models.VarBind, float64, error) {
	sess, err := e.pool.Acquire(ctx, target, creds)
	if err != nil {
		return nil, 0, err
	}

	defer e.pool.Release(sess.ID())

	opCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	start := e.now()
	varbinds, err := op(opCtx, sess.Handle())
	latency := e.now().Sub(start)

	e.pool.RecordExchange(latency, err)

	if err != nil {
		// A failed exchange may have left the handle in an unusable
		// state; drop the session so the next acquire reconnects.
		e.pool.Close(sess.ID())

		return nil, 0, err
	}

	return varbinds, float64(latency.Microseconds()) / 1000.0, nil
}

func validateRequest(target session.Target, creds *models.Credentials, oids []string) (string, error) {
	host := strings.ToLower(strings.TrimSpace(target.Host))
	if host == "" {
		return "", fmt.Errorf("%w: host must not be empty", ErrInvalidInput)
	}

	if creds == nil {
		return "", fmt.Errorf("%w: credentials must not be nil", ErrInvalidInput)
	}

	if len(oids) == 0 {
		return "", fmt.Errorf("%w: at least one OID is required", ErrInvalidInput)
	}

	for _, oid := range oids {
		if strings.TrimSpace(oid) == "" {
			return "", fmt.Errorf("%w: OID must not be empty", ErrInvalidInput)
		}
	}

	return host, nil
}
