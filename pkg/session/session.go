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
	"time"

	"github.com/oidyssey/oidyssey/pkg/models"
)

// Session is one live protocol handle to one device under one credential
// set. Sessions are owned exclusively by the pool; borrowers must not
// retain the reference past the call that acquired it.
type Session struct {
	id          string
	key         string
	target      Target
	version     models.SNMPVersion
	fingerprint string
	createdAt   time.Time
	lastUsed    time.Time
	requests    int
	active      bool
	handle      Handle
}

// ID returns the session's unique identifier.
func (s *Session) ID() string {
	return s.id
}

// Handle returns the borrowed protocol capability.
func (s *Session) Handle() Handle {
	return s.handle
}

// Target returns the device endpoint this session talks to.
func (s *Session) Target() Target {
	return s.target
}

// Info is a copied summary of one session, safe to expose.
type Info struct {
	ID          string             `json:"id"`
	Host        string             `json:"host"`
	Port        uint16             `json:"port"`
	Version     models.SNMPVersion `json:"version"`
	Fingerprint string             `json:"fingerprint"`
	CreatedAt   time.Time          `json:"created_at"`
	LastUsed    time.Time          `json:"last_used"`
	Requests    int                `json:"requests"`
	Active      bool               `json:"active"`
}

func (s *Session) info() Info {
	return Info{
		ID:          s.id,
		Host:        s.target.Host,
		Port:        s.target.Port,
		Version:     s.version,
		Fingerprint: s.fingerprint,
		CreatedAt:   s.createdAt,
		LastUsed:    s.lastUsed,
		Requests:    s.requests,
		Active:      s.active,
	}
}
