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

package cache

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oidyssey/oidyssey/pkg/logger"
	"github.com/oidyssey/oidyssey/pkg/models"
)

type fakeClock struct {
	current time.Time
}

func (c *fakeClock) now() time.Time {
	return c.current
}

func (c *fakeClock) advance(d time.Duration) {
	c.current = c.current.Add(d)
}

func newTestStore(t *testing.T, config *Config) (*Store, *fakeClock) {
	t.Helper()

	clock := &fakeClock{current: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}

	s := NewStore(config, logger.NewTestLogger())
	s.now = clock.now

	return s, clock
}

func TestGetPutTTLProperty(t *testing.T) {
	s, clock := newTestStore(t, nil)

	s.Put("h1", "1.3.6.1.2.1.1.1.0", "Linux", 200*time.Millisecond)

	value, ok := s.Get("h1", "1.3.6.1.2.1.1.1.0")
	require.True(t, ok)
	assert.Equal(t, "Linux", value)

	clock.advance(250 * time.Millisecond)

	_, ok = s.Get("h1", "1.3.6.1.2.1.1.1.0")
	assert.False(t, ok)

	// Lazy expiry removed the entry.
	assert.Equal(t, 0, s.Len())
}

func TestPutOverwriteResetsExpiry(t *testing.T) {
	s, clock := newTestStore(t, nil)

	s.Put("h1", "1.3.6.1.2.1.1.5.0", "router-old", time.Second)

	clock.advance(800 * time.Millisecond)
	s.Put("h1", "1.3.6.1.2.1.1.5.0", "router-new", time.Second)

	// Past the first write's expiry but within the second's.
	clock.advance(400 * time.Millisecond)

	value, ok := s.Get("h1", "1.3.6.1.2.1.1.5.0")
	require.True(t, ok)
	assert.Equal(t, "router-new", value)
}

func TestGetDeviceCaseInsensitive(t *testing.T) {
	s, _ := newTestStore(t, nil)

	s.Put("Router-One", "1.3.6.1.2.1.1.1.0", "IOS", time.Minute)

	value, ok := s.Get("  router-one ", "1.3.6.1.2.1.1.1.0")
	require.True(t, ok)
	assert.Equal(t, "IOS", value)
}

func TestEvictionNeverExceedsCapacity(t *testing.T) {
	s, _ := newTestStore(t, &Config{MaxCacheSize: 10})

	for i := 0; i < 50; i++ {
		s.Put("h1", fmt.Sprintf("1.3.6.1.4.1.9.%d", i), i, time.Minute)
		assert.LessOrEqual(t, s.Len(), 10)
	}
}

func TestEvictionDropsLeastRecentlyUsed(t *testing.T) {
	s, clock := newTestStore(t, &Config{MaxCacheSize: 5})

	for i := 0; i < 5; i++ {
		s.Put("h1", fmt.Sprintf("1.3.6.1.4.1.9.%d", i), i, time.Minute)
		clock.advance(time.Second)
	}

	// Touch all but the first entry so it is the eviction candidate.
	for i := 1; i < 5; i++ {
		_, ok := s.Get("h1", fmt.Sprintf("1.3.6.1.4.1.9.%d", i))
		require.True(t, ok)

		clock.advance(time.Second)
	}

	s.Put("h1", "1.3.6.1.4.1.9.99", "new", time.Minute)

	_, ok := s.Get("h1", "1.3.6.1.4.1.9.0")
	assert.False(t, ok)

	_, ok = s.Get("h1", "1.3.6.1.4.1.9.99")
	assert.True(t, ok)
}

func TestEvictionSweepsExpiredFirst(t *testing.T) {
	s, clock := newTestStore(t, &Config{MaxCacheSize: 3})

	s.Put("h1", "1.3.6.1.4.1.9.1", "a", 100*time.Millisecond)
	s.Put("h1", "1.3.6.1.4.1.9.2", "b", time.Minute)
	s.Put("h1", "1.3.6.1.4.1.9.3", "c", time.Minute)

	clock.advance(200 * time.Millisecond)

	// The expired entry makes room; live entries survive.
	s.Put("h1", "1.3.6.1.4.1.9.4", "d", time.Minute)

	_, ok := s.Get("h1", "1.3.6.1.4.1.9.2")
	assert.True(t, ok)

	_, ok = s.Get("h1", "1.3.6.1.4.1.9.3")
	assert.True(t, ok)

	_, ok = s.Get("h1", "1.3.6.1.4.1.9.4")
	assert.True(t, ok)
}

func TestInvalidate(t *testing.T) {
	s, _ := newTestStore(t, nil)

	s.Put("h1", "1.3.6.1.2.1.1.1.0", "a", time.Minute)
	s.Put("h1", "1.3.6.1.2.1.1.5.0", "b", time.Minute)
	s.Put("h2", "1.3.6.1.2.1.1.1.0", "c", time.Minute)

	s.Invalidate("h1", "1.3.6.1.2.1.1.1.0")
	assert.Equal(t, 2, s.Len())

	s.InvalidateDevice("h1")
	assert.Equal(t, 1, s.Len())

	_, ok := s.Get("h2", "1.3.6.1.2.1.1.1.0")
	assert.True(t, ok)

	s.Clear()
	assert.Equal(t, 0, s.Len())
}

func TestCopyOnGet(t *testing.T) {
	s, _ := newTestStore(t, nil)

	original := []models.VarBind{{OID: "1.3.6.1.2.1.1.1.0", Type: "OctetString", Value: "Linux"}}
	s.Put("h1", "1.3.6.1.2.1.1.1.0", original, time.Minute)

	fetched, ok := s.Get("h1", "1.3.6.1.2.1.1.1.0")
	require.True(t, ok)

	varbinds, ok := fetched.([]models.VarBind)
	require.True(t, ok)

	varbinds[0].Value = "mutated"

	again, ok := s.Get("h1", "1.3.6.1.2.1.1.1.0")
	require.True(t, ok)
	assert.Equal(t, "Linux", again.([]models.VarBind)[0].Value)
}

func TestStats(t *testing.T) {
	s, _ := newTestStore(t, nil)

	s.Put("h1", "1.3.6.1.2.1.1.1.0", "Linux", time.Minute)

	_, ok := s.Get("h1", "1.3.6.1.2.1.1.1.0")
	require.True(t, ok)

	_, ok = s.Get("h1", "1.3.6.1.2.1.1.9.9")
	require.False(t, ok)

	stats := s.Stats()
	assert.Equal(t, 1, stats.Entries)
	assert.Equal(t, uint64(1), stats.Hits)
	assert.Equal(t, uint64(1), stats.Misses)
	assert.InDelta(t, 0.5, stats.HitRate, 0.001)
	assert.Positive(t, stats.ApproxBytes)
}

func TestSweepExpired(t *testing.T) {
	s, clock := newTestStore(t, nil)

	s.Put("h1", "1.3.6.1.4.1.9.1", "a", 100*time.Millisecond)
	s.Put("h1", "1.3.6.1.4.1.9.2", "b", time.Minute)

	clock.advance(time.Second)

	assert.Equal(t, 1, s.SweepExpired())
	assert.Equal(t, 1, s.Len())
}

func TestTTLForOID(t *testing.T) {
	s, _ := newTestStore(t, &Config{
		StaticDataTTL:  models.Duration(24 * time.Hour),
		DynamicDataTTL: models.Duration(5 * time.Minute),
	})

	tests := []struct {
		name string
		oid  string
		want time.Duration
	}{
		{name: "sysDescr is static", oid: "1.3.6.1.2.1.1.1.0", want: 24 * time.Hour},
		{name: "sysUpTime is status", oid: "1.3.6.1.2.1.1.3.0", want: statusTTL},
		{name: "leading dot stripped", oid: ".1.3.6.1.2.1.1.5.0", want: 24 * time.Hour},
		{name: "ifDescr is config", oid: "1.3.6.1.2.1.2.2.1.2.1", want: configTTL},
		{name: "ifOperStatus is status", oid: "1.3.6.1.2.1.2.2.1.8.1", want: statusTTL},
		{name: "ifInOctets is counter", oid: "1.3.6.1.2.1.2.2.1.10.1", want: counterTTL},
		{name: "enterprise subtree", oid: "1.3.6.1.4.1.9.2.1.58.0", want: vendorTTL},
		{name: "unknown falls back to dynamic", oid: "1.3.6.1.6.3.1.1.4.1.0", want: 5 * time.Minute},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, s.ttlForOID(tt.oid))
		})
	}
}

func TestConfigValidate(t *testing.T) {
	valid := &Config{MaxCacheSize: 100}
	require.NoError(t, valid.Validate())

	invalid := &Config{MaxCacheSize: -1}
	require.ErrorIs(t, invalid.Validate(), ErrInvalidMaxCacheSize)
}
