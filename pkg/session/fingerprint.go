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
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/oidyssey/oidyssey/pkg/models"
)

// fingerprintBytes is how much of the SHA-256 digest the fingerprint
// keeps. Enough to distinguish credential sets, useless for recovery.
const fingerprintBytes = 4

// Fingerprint derives a stable identifier from credential material.
// The raw secret never appears in pool keys, logs, or error text; only
// its length and a truncated digest do.
func Fingerprint(creds *models.Credentials) string {
	secret := creds.Secret()
	sum := sha256.Sum256([]byte(secret))

	return fmt.Sprintf("%d-%s", len(secret), hex.EncodeToString(sum[:fingerprintBytes]))
}

// poolKey computes the unique key for one (device, port, version,
// credential fingerprint) tuple.
func poolKey(target Target, creds *models.Credentials) string {
	return fmt.Sprintf("%s:%d:%s:%s",
		strings.ToLower(strings.TrimSpace(target.Host)),
		target.Port,
		creds.Version,
		Fingerprint(creds))
}

// redact replaces any occurrence of the raw secret in an error message
// with its fingerprint, so transport errors can be surfaced safely.
func redact(err error, creds *models.Credentials) string {
	if err == nil {
		return ""
	}

	msg := err.Error()

	if secret := creds.Secret(); secret != "" {
		msg = strings.ReplaceAll(msg, secret, Fingerprint(creds))
	}

	for _, part := range []string{creds.Community, creds.AuthPassword, creds.PrivacyPassword} {
		if part != "" {
			msg = strings.ReplaceAll(msg, part, "[redacted]")
		}
	}

	return msg
}
