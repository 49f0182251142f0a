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
	"fmt"
	"net"
	"strconv"
	"strings"

	"github.com/oidyssey/oidyssey/pkg/models"
)

const maxPrefixLen = 32

// cidrRange is one IPv4 network expressed as masked integers.
type cidrRange struct {
	network uint32
	mask    uint32
}

// sourceFilter evaluates trap source addresses against exact entries and
// IPv4 CIDR blocks. IPv6 prefix matching is not supported.
type sourceFilter struct {
	exact map[string]struct{}
	cidrs []cidrRange
}

func newSourceFilter(allowed []string) (*sourceFilter, error) {
	f := &sourceFilter{exact: make(map[string]struct{})}

	for _, raw := range allowed {
		entry := strings.TrimSpace(raw)
		if entry == "" {
			continue
		}

		if !strings.Contains(entry, "/") {
			ip := net.ParseIP(entry)
			if ip == nil {
				return nil, fmt.Errorf("%w: %s", ErrInvalidSourceFilter, entry)
			}

			f.exact[ip.String()] = struct{}{}

			continue
		}

		r, err := parseCIDR(entry)
		if err != nil {
			return nil, err
		}

		f.cidrs = append(f.cidrs, r)
	}

	return f, nil
}

// empty reports whether no filter entries are configured, which allows
// every source.
func (f *sourceFilter) empty() bool {
	return len(f.exact) == 0 && len(f.cidrs) == 0
}

// allows reports whether a datagram from ip may be processed. A
// non-matching, non-empty filter is a silent drop at the call site.
func (f *sourceFilter) allows(ip net.IP) bool {
	if f.empty() {
		return true
	}

	if _, ok := f.exact[ip.String()]; ok {
		return true
	}

	addr, ok := ipv4ToUint32(ip)
	if !ok {
		return false
	}

	for _, r := range f.cidrs {
		if addr&r.mask == r.network {
			return true
		}
	}

	return false
}

// parseCIDR parses "a.b.c.d/len" into masked integers. IPv4 only.
func parseCIDR(entry string) (cidrRange, error) {
	parts := strings.SplitN(entry, "/", 2)

	ip := net.ParseIP(parts[0])
	if ip == nil {
		return cidrRange{}, fmt.Errorf("%w: %s", ErrInvalidSourceFilter, entry)
	}

	base, ok := ipv4ToUint32(ip)
	if !ok {
		return cidrRange{}, fmt.Errorf("%w: %s is not IPv4", ErrInvalidSourceFilter, entry)
	}

	prefixLen, err := strconv.Atoi(parts[1])
	if err != nil || prefixLen < 0 || prefixLen > maxPrefixLen {
		return cidrRange{}, fmt.Errorf("%w: %s", ErrInvalidSourceFilter, entry)
	}

	mask := uint32(0)
	if prefixLen > 0 {
		mask = ^uint32(0) << (maxPrefixLen - prefixLen)
	}

	return cidrRange{network: base & mask, mask: mask}, nil
}

func ipv4ToUint32(ip net.IP) (uint32, bool) {
	v4 := ip.To4()
	if v4 == nil {
		return 0, false
	}

	return uint32(v4[0])<<24 | uint32(v4[1])<<16 | uint32(v4[2])<<8 | uint32(v4[3]), true
}

// matchesContent applies the optional community and OID-prefix filters.
// Both must pass; an unset filter always passes.
func matchesContent(packet *models.TrapPacket, filterCommunity, filterOID string) bool {
	if filterCommunity != "" && packet.Community != filterCommunity {
		return false
	}

	if filterOID == "" {
		return true
	}

	want := strings.TrimPrefix(filterOID, ".")

	for _, vb := range packet.VarBinds {
		if strings.HasPrefix(strings.TrimPrefix(vb.OID, "."), want) {
			return true
		}
	}

	return false
}
