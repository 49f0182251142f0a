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
	"bytes"
	"compress/gzip"
	"encoding/json"
	"fmt"
	"io"
	"time"
)

// snapshotEntry is the advisory on-the-wire shape of one cached value.
// Host-defined storage decides where the bytes live.
type snapshotEntry struct {
	Key       string      `json:"key"`
	Value     interface{} `json:"value"`
	CreatedAt time.Time   `json:"created_at"`
	TTL       string      `json:"ttl"`
	Hits      int         `json:"hits"`
}

type snapshot struct {
	ExportedAt time.Time       `json:"exported_at"`
	Entries    []snapshotEntry `json:"entries"`
}

var gzipMagic = []byte{0x1f, 0x8b}

// Export serializes every live entry. With compression enabled the
// snapshot is gzip-wrapped; Import detects either form.
func (s *Store) Export() ([]byte, error) {
	s.mu.Lock()

	snap := snapshot{
		ExportedAt: s.now(),
		Entries:    make([]snapshotEntry, 0, len(s.entries)),
	}

	for key, e := range s.entries {
		snap.Entries = append(snap.Entries, snapshotEntry{
			Key:       key,
			Value:     e.value,
			CreatedAt: e.createdAt,
			TTL:       e.ttl.String(),
			Hits:      e.hits,
		})
	}

	s.mu.Unlock()

	data, err := json.Marshal(snap)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal cache snapshot: %w", err)
	}

	if !s.compress {
		return data, nil
	}

	var buf bytes.Buffer

	zw := gzip.NewWriter(&buf)

	if _, err := zw.Write(data); err != nil {
		return nil, fmt.Errorf("failed to compress cache snapshot: %w", err)
	}

	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("failed to compress cache snapshot: %w", err)
	}

	return buf.Bytes(), nil
}

// Import merges snapshot entries into the store, skipping any whose TTL
// has already elapsed relative to the recorded creation time. It reports
// how many entries were restored.
func (s *Store) Import(data []byte) (int, error) {
	if bytes.HasPrefix(data, gzipMagic) {
		zr, err := gzip.NewReader(bytes.NewReader(data))
		if err != nil {
			return 0, fmt.Errorf("%w: %w", ErrInvalidSnapshot, err)
		}

		data, err = io.ReadAll(zr)
		if err != nil {
			return 0, fmt.Errorf("%w: %w", ErrInvalidSnapshot, err)
		}
	}

	var snap snapshot

	if err := json.Unmarshal(data, &snap); err != nil {
		return 0, fmt.Errorf("%w: %w", ErrInvalidSnapshot, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	restored := 0

	for _, item := range snap.Entries {
		ttl, err := time.ParseDuration(item.TTL)
		if err != nil || ttl <= 0 {
			continue
		}

		if now.Sub(item.CreatedAt) >= ttl {
			continue
		}

		s.entries[item.Key] = &entry{
			value:      item.Value,
			createdAt:  item.CreatedAt,
			ttl:        ttl,
			hits:       item.Hits,
			lastAccess: now,
			size:       approxSize(item.Key, item.Value),
		}

		restored++
	}

	// Restored entries count against the same ceiling as Puts.
	for len(s.entries) > s.maxSize {
		s.evictLocked(now)
	}

	return restored, nil
}
