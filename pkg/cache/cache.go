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

// Package cache memoizes SNMP query responses per (device, OID) pair
// with OID-pattern-derived TTLs and recency-based eviction.
package cache

import (
	"encoding/json"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/oidyssey/oidyssey/pkg/logger"
	"github.com/oidyssey/oidyssey/pkg/models"
)

const (
	defaultStaticTTL    = 24 * time.Hour
	defaultDynamicTTL   = 5 * time.Minute
	defaultMaxCacheSize = 1000

	// evictShare is the fraction of entries dropped when the store is
	// still over capacity after an expiry sweep.
	evictShare = 0.2

	// entryOverheadBytes approximates per-entry bookkeeping for the
	// memory footprint statistic.
	entryOverheadBytes = 96
)

// Config controls the cache. Zero fields take defaults.
type Config struct {
	StaticDataTTL     models.Duration `json:"static_data_ttl"`
	DynamicDataTTL    models.Duration `json:"dynamic_data_ttl"`
	MaxCacheSize      int             `json:"max_cache_size"`
	EnableCompression bool            `json:"enable_compression"`
}

// Validate implements config.Validator.
func (c *Config) Validate() error {
	if c.MaxCacheSize < 0 {
		return ErrInvalidMaxCacheSize
	}

	return nil
}

type entry struct {
	value      interface{}
	createdAt  time.Time
	ttl        time.Duration
	hits       int
	lastAccess time.Time
	size       int
}

// Stats summarizes cache effectiveness.
type Stats struct {
	Entries     int     `json:"entries"`
	Hits        uint64  `json:"hits"`
	Misses      uint64  `json:"misses"`
	HitRate     float64 `json:"hit_rate"`
	ApproxBytes int     `json:"approx_bytes"`
}

// Store owns all cached entries. Values are copied on the way in and
// out, never aliased to internal storage.
type Store struct {
	mu         sync.Mutex
	entries    map[string]*entry
	staticTTL  time.Duration
	dynamicTTL time.Duration
	maxSize    int
	compress   bool
	hits       uint64
	misses     uint64
	logger     logger.Logger
	now        func() time.Time
}

// NewStore builds a Store from config.
func NewStore(config *Config, log logger.Logger) *Store {
	if config == nil {
		config = &Config{}
	}

	s := &Store{
		entries:    make(map[string]*entry),
		staticTTL:  config.StaticDataTTL.Duration(),
		dynamicTTL: config.DynamicDataTTL.Duration(),
		maxSize:    config.MaxCacheSize,
		compress:   config.EnableCompression,
		logger:     log,
		now:        time.Now,
	}

	if s.staticTTL == 0 {
		s.staticTTL = defaultStaticTTL
	}

	if s.dynamicTTL == 0 {
		s.dynamicTTL = defaultDynamicTTL
	}

	if s.maxSize == 0 {
		s.maxSize = defaultMaxCacheSize
	}

	return s
}

// Get returns the cached value for (device, oid), or ok=false on a miss.
// An expired entry counts as a miss and is removed lazily.
func (s *Store) Get(device, oid string) (interface{}, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := cacheKey(device, oid)
	now := s.now()

	e, ok := s.entries[key]
	if !ok {
		s.misses++
		return nil, false
	}

	if now.Sub(e.createdAt) >= e.ttl {
		delete(s.entries, key)
		s.misses++

		return nil, false
	}

	e.hits++
	e.lastAccess = now
	s.hits++

	return copyValue(e.value), true
}

// Put stores a value for (device, oid). A zero ttl selects one from the
// OID pattern table. Puts never fail; at capacity the store evicts.
func (s *Store) Put(device, oid string, value interface{}, ttl time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if ttl <= 0 {
		ttl = s.ttlForOID(oid)
	}

	key := cacheKey(device, oid)
	now := s.now()

	if _, exists := s.entries[key]; !exists && len(s.entries) >= s.maxSize {
		s.evictLocked(now)
	}

	s.entries[key] = &entry{
		value:      copyValue(value),
		createdAt:  now,
		ttl:        ttl,
		lastAccess: now,
		size:       approxSize(key, value),
	}
}

// Invalidate removes one (device, oid) entry.
func (s *Store) Invalidate(device, oid string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.entries, cacheKey(device, oid))
}

// InvalidateDevice removes every entry for one device.
func (s *Store) InvalidateDevice(device string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prefix := strings.ToLower(strings.TrimSpace(device)) + keySeparator

	for key := range s.entries {
		if strings.HasPrefix(key, prefix) {
			delete(s.entries, key)
		}
	}
}

// Clear removes all entries.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = make(map[string]*entry)
}

// SweepExpired removes every expired entry and reports how many it dropped.
func (s *Store) SweepExpired() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.sweepExpiredLocked(s.now())
}

// Stats returns hit/miss counters and an approximate memory footprint.
func (s *Store) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	total := s.hits + s.misses
	rate := 0.0

	if total > 0 {
		rate = float64(s.hits) / float64(total)
	}

	bytes := 0
	for _, e := range s.entries {
		bytes += e.size
	}

	return Stats{
		Entries:     len(s.entries),
		Hits:        s.hits,
		Misses:      s.misses,
		HitRate:     rate,
		ApproxBytes: bytes,
	}
}

// Len reports the current entry count.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.entries)
}

func (s *Store) sweepExpiredLocked(now time.Time) int {
	removed := 0

	for key, e := range s.entries {
		if now.Sub(e.createdAt) >= e.ttl {
			delete(s.entries, key)

			removed++
		}
	}

	return removed
}

// evictLocked frees room for one insert: expired entries first, then the
// lowest 20% of survivors ordered by (last access, hit count).
func (s *Store) evictLocked(now time.Time) {
	if s.sweepExpiredLocked(now) > 0 && len(s.entries) < s.maxSize {
		return
	}

	type ranked struct {
		key        string
		lastAccess time.Time
		hits       int
	}

	candidates := make([]ranked, 0, len(s.entries))

	for key, e := range s.entries {
		candidates = append(candidates, ranked{key: key, lastAccess: e.lastAccess, hits: e.hits})
	}

	sort.Slice(candidates, func(i, j int) bool {
		if !candidates[i].lastAccess.Equal(candidates[j].lastAccess) {
			return candidates[i].lastAccess.Before(candidates[j].lastAccess)
		}

		return candidates[i].hits < candidates[j].hits
	})

	drop := int(float64(len(candidates)) * evictShare)
	if drop < 1 {
		drop = 1
	}

	for _, c := range candidates[:drop] {
		delete(s.entries, c.key)
	}

	if s.logger != nil {
		s.logger.Debug().Int("evicted", drop).Msg("Cache evicted entries over capacity")
	}
}

const keySeparator = "|"

func cacheKey(device, oid string) string {
	return strings.ToLower(strings.TrimSpace(device)) + keySeparator + oid
}

// copyValue returns a defensive copy for the container shapes the query
// layer stores; scalars pass through as-is.
func copyValue(v interface{}) interface{} {
	switch value := v.(type) {
	case []models.VarBind:
		out := make([]models.VarBind, len(value))
		copy(out, value)

		return out
	case []byte:
		out := make([]byte, len(value))
		copy(out, value)

		return out
	case []interface{}:
		out := make([]interface{}, len(value))
		copy(out, value)

		return out
	case map[string]interface{}:
		out := make(map[string]interface{}, len(value))
		for k, item := range value {
			out[k] = item
		}

		return out
	default:
		return v
	}
}

func approxSize(key string, value interface{}) int {
	size := len(key) + entryOverheadBytes

	if data, err := json.Marshal(value); err == nil {
		size += len(data)
	}

	return size
}
