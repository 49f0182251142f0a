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

// SNMPVersion identifies the protocol version used for a device exchange.
type SNMPVersion string

const (
	SNMPVersion1  SNMPVersion = "v1"
	SNMPVersion2c SNMPVersion = "v2c"
	SNMPVersion3  SNMPVersion = "v3"
)

// Credentials carries the secrets needed to open a protocol handle.
// Raw values are handed to the transport adapter only; pool keys, logs,
// and error messages must use a derived fingerprint instead.
type Credentials struct {
	Version         SNMPVersion `json:"version"`
	Community       string      `json:"community,omitempty"`
	Username        string      `json:"username,omitempty"`
	AuthProtocol    string      `json:"auth_protocol,omitempty"`
	AuthPassword    string      `json:"auth_password,omitempty"`
	PrivacyProtocol string      `json:"privacy_protocol,omitempty"`
	PrivacyPassword string      `json:"privacy_password,omitempty"`
}

// Secret returns the credential material that identifies this credential
// set for fingerprinting purposes.
func (c *Credentials) Secret() string {
	if c.Version == SNMPVersion3 {
		return c.Username + "\x00" + c.AuthPassword + "\x00" + c.PrivacyPassword
	}

	return c.Community
}

// VarBind is one (identifier, type, value) triple from an exchange or trap.
type VarBind struct {
	OID   string      `json:"oid"`
	Type  string      `json:"type"`
	Value interface{} `json:"value"`
}

// QueryResult is the processed outcome of a single exchange.
type QueryResult struct {
	Device    string    `json:"device"`
	VarBinds  []VarBind `json:"varbinds"`
	FromCache bool      `json:"from_cache,omitempty"`
	LatencyMs float64   `json:"latency_ms,omitempty"`
}
