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

package trap

import (
	"sort"
	"sync"
)

// Registry enforces the one-listener-per-port invariant. It is owned by
// the host service and passed to every listener; there is no hidden
// process-wide instance. The mutex makes the check-and-register step
// atomic with respect to concurrent bind attempts.
type Registry struct {
	mu    sync.Mutex
	ports map[int]*Listener
}

// NewRegistry creates an empty listener registry.
func NewRegistry() *Registry {
	return &Registry{ports: make(map[int]*Listener)}
}

// reserve claims a port for a listener before it binds. The claim is
// released on bind failure or stop.
func (r *Registry) reserve(port int, l *Listener) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, taken := r.ports[port]; taken {
		return ErrPortInUse
	}

	r.ports[port] = l

	return nil
}

// release drops the claim only if it still belongs to l. A listener whose
// reserve failed must not evict the current holder on its way down.
func (r *Registry) release(port int, l *Listener) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.ports[port] == l {
		delete(r.ports, port)
	}
}

// ActivePorts returns the sorted ports with a registered listener.
func (r *Registry) ActivePorts() []int {
	r.mu.Lock()
	defer r.mu.Unlock()

	ports := make([]int, 0, len(r.ports))
	for port := range r.ports {
		ports = append(ports, port)
	}

	sort.Ints(ports)

	return ports
}

// Teardown stops every registered listener. Called at host shutdown;
// cleanup is unconditional.
func (r *Registry) Teardown() {
	r.mu.Lock()

	listeners := make([]*Listener, 0, len(r.ports))
	for _, l := range r.ports {
		listeners = append(listeners, l)
	}

	r.mu.Unlock()

	for _, l := range listeners {
		l.Stop()
	}
}
