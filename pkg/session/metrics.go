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

package session

import (
	"sync"
	"time"
)

// latencyWindow caps the rolling sample buffer for average latency.
const latencyWindow = 128

// Metrics is a derived summary of pool activity.
type Metrics struct {
	TotalSessions  int     `json:"total_sessions"`
	ActiveSessions int     `json:"active_sessions"`
	TotalRequests  uint64  `json:"total_requests"`
	AvgLatencyMs   float64 `json:"avg_latency_ms"`
	ErrorRate      float64 `json:"error_rate"`
	Utilization    float64 `json:"utilization"`
}

// poolMetrics accumulates counters and a rolling latency window. A nil
// receiver (metrics disabled) makes every method a no-op.
type poolMetrics struct {
	mu        sync.Mutex
	requests  uint64
	exchanges uint64
	errors    uint64
	latencies []float64
	next      int
}

func newPoolMetrics() *poolMetrics {
	return &poolMetrics{
		latencies: make([]float64, 0, latencyWindow),
	}
}

func (m *poolMetrics) recordRequest() {
	if m == nil {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.requests++
}

func (m *poolMetrics) recordError() {
	if m == nil {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.exchanges++
	m.errors++
}

func (m *poolMetrics) recordExchange(latency time.Duration, err error) {
	if m == nil {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.exchanges++

	if err != nil {
		m.errors++
		return
	}

	ms := float64(latency) / float64(time.Millisecond)

	if len(m.latencies) < latencyWindow {
		m.latencies = append(m.latencies, ms)
	} else {
		m.latencies[m.next] = ms
		m.next = (m.next + 1) % latencyWindow
	}
}

func (m *poolMetrics) snapshot() Metrics {
	if m == nil {
		return Metrics{}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	out := Metrics{TotalRequests: m.requests}

	if len(m.latencies) > 0 {
		sum := 0.0
		for _, v := range m.latencies {
			sum += v
		}

		out.AvgLatencyMs = sum / float64(len(m.latencies))
	}

	if m.exchanges > 0 {
		out.ErrorRate = float64(m.errors) / float64(m.exchanges)
	}

	return out
}
