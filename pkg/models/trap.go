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

package models

import "time"

// TrapPacket is the parser's view of one inbound notification datagram.
// It carries only what the wire format provides; the listener layers
// receipt metadata on top when it builds a TrapRecord.
type TrapPacket struct {
	Version      SNMPVersion `json:"version"`
	Community    string      `json:"community,omitempty"`
	Enterprise   string      `json:"enterprise,omitempty"`
	GenericType  int         `json:"generic_type"`
	SpecificType int         `json:"specific_type"`
	UptimeTicks  uint32      `json:"uptime_ticks,omitempty"`
	VarBinds     []VarBind   `json:"varbinds"`
}

// TrapRecord is one received, filtered, parsed notification. Immutable
// once constructed; ownership passes to the caller-supplied sink.
type TrapRecord struct {
	ID           string      `json:"id"`
	ReceivedAt   time.Time   `json:"received_at"`
	SourceIP     string      `json:"source_ip"`
	SourcePort   int         `json:"source_port"`
	Version      SNMPVersion `json:"version"`
	Community    string      `json:"community,omitempty"`
	Enterprise   string      `json:"enterprise,omitempty"`
	GenericType  int         `json:"generic_type"`
	SpecificType int         `json:"specific_type"`
	UptimeTicks  uint32      `json:"uptime_ticks,omitempty"`
	VarBinds     []VarBind   `json:"varbinds"`
	RawPayload   []byte      `json:"raw_payload,omitempty"`
}
