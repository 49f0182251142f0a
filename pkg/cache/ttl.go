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
	"strings"
	"time"
)

// ttlCategory buckets OIDs by how quickly their values change.
type ttlCategory int

const (
	categoryStatic ttlCategory = iota // identity data, changes on reconfiguration only
	categoryConfig                    // semi-static configuration
	categoryCounter                   // monotonic counters
	categoryStatus                    // highly volatile operational state
	categoryVendor                    // enterprise subtrees without a better guess
)

const (
	configTTL  = time.Hour
	counterTTL = 5 * time.Minute
	statusTTL  = 30 * time.Second
	vendorTTL  = 10 * time.Minute
)

type ttlRule struct {
	prefix   string
	category ttlCategory
}

// ttlRules is evaluated in order; the first matching prefix wins. More
// specific prefixes must precede the subtrees that contain them.
var ttlRules = []ttlRule{
	{prefix: "1.3.6.1.2.1.1.3", category: categoryStatus}, // sysUpTime
	{prefix: "1.3.6.1.2.1.1", category: categoryStatic},   // system group
	{prefix: "1.3.6.1.2.1.2.2.1.2", category: categoryConfig},  // ifDescr
	{prefix: "1.3.6.1.2.1.2.2.1.3", category: categoryConfig},  // ifType
	{prefix: "1.3.6.1.2.1.2.2.1.4", category: categoryConfig},  // ifMtu
	{prefix: "1.3.6.1.2.1.2.2.1.5", category: categoryConfig},  // ifSpeed
	{prefix: "1.3.6.1.2.1.2.2.1.6", category: categoryConfig},  // ifPhysAddress
	{prefix: "1.3.6.1.2.1.2.2.1.8", category: categoryStatus},  // ifOperStatus
	{prefix: "1.3.6.1.2.1.2", category: categoryCounter},       // remaining interfaces subtree
	{prefix: "1.3.6.1.2.1.4.20", category: categoryConfig},     // ipAddrTable
	{prefix: "1.3.6.1.2.1.4", category: categoryCounter},       // ip group
	{prefix: "1.3.6.1.2.1.6", category: categoryStatus},        // tcp group
	{prefix: "1.3.6.1.2.1.7", category: categoryStatus},        // udp group
	{prefix: "1.3.6.1.2.1.25.2", category: categoryStatus},     // hrStorage
	{prefix: "1.3.6.1.2.1.25", category: categoryConfig},       // host resources
	{prefix: "1.3.6.1.2.1.31", category: categoryCounter},      // ifXTable
	{prefix: "1.3.6.1.4.1", category: categoryVendor},          // enterprises
}

// ttlForOID derives a TTL for an OID from the pattern table. No match
// falls back to the configured default dynamic TTL.
func (s *Store) ttlForOID(oid string) time.Duration {
	normalized := strings.TrimPrefix(strings.TrimSpace(oid), ".")

	for _, rule := range ttlRules {
		if strings.HasPrefix(normalized, rule.prefix) {
			switch rule.category {
			case categoryStatic:
				return s.staticTTL
			case categoryConfig:
				return configTTL
			case categoryCounter:
				return counterTTL
			case categoryStatus:
				return statusTTL
			case categoryVendor:
				return vendorTTL
			}
		}
	}

	return s.dynamicTTL
}
