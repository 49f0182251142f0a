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
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oidyssey/oidyssey/pkg/models"
)

func TestSourceFilterAllows(t *testing.T) {
	tests := []struct {
		name    string
		allowed []string
		source  string
		want    bool
	}{
		{name: "empty filter allows all", allowed: nil, source: "203.0.113.7", want: true},
		{name: "exact match", allowed: []string{"192.168.1.10"}, source: "192.168.1.10", want: true},
		{name: "exact mismatch", allowed: []string{"192.168.1.10"}, source: "192.168.1.11", want: false},
		{name: "cidr match", allowed: []string{"10.0.0.0/8"}, source: "10.5.5.5", want: true},
		{name: "cidr mismatch", allowed: []string{"10.0.0.0/8"}, source: "192.168.1.1", want: false},
		{name: "loopback outside cidr", allowed: []string{"10.0.0.0/8"}, source: "127.0.0.1", want: false},
		{name: "narrow cidr match", allowed: []string{"192.168.1.0/24"}, source: "192.168.1.200", want: true},
		{name: "narrow cidr mismatch", allowed: []string{"192.168.1.0/24"}, source: "192.168.2.1", want: false},
		{name: "host-length cidr", allowed: []string{"172.16.0.1/32"}, source: "172.16.0.1", want: true},
		{name: "zero-length cidr allows all v4", allowed: []string{"0.0.0.0/0"}, source: "8.8.8.8", want: true},
		{name: "mixed entries first wins", allowed: []string{"192.168.1.10", "10.0.0.0/8"}, source: "10.1.2.3", want: true},
		{name: "ipv6 source never matches cidr", allowed: []string{"10.0.0.0/8"}, source: "::1", want: false},
		{name: "ipv6 exact still matches", allowed: []string{"::1"}, source: "::1", want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := newSourceFilter(tt.allowed)
			require.NoError(t, err)

			ip := net.ParseIP(tt.source)
			require.NotNil(t, ip)

			assert.Equal(t, tt.want, f.allows(ip))
		})
	}
}

func TestSourceFilterRejectsMalformedEntries(t *testing.T) {
	tests := []string{
		"not-an-address",
		"10.0.0.0/33",
		"10.0.0.0/-1",
		"10.0.0.0/x",
		"fe80::/64", // IPv6 prefixes unsupported
	}

	for _, entry := range tests {
		t.Run(entry, func(t *testing.T) {
			_, err := newSourceFilter([]string{entry})
			require.ErrorIs(t, err, ErrInvalidSourceFilter)
		})
	}
}

func TestMatchesContent(t *testing.T) {
	packet := &models.TrapPacket{
		Version:   models.SNMPVersion2c,
		Community: "public",
		VarBinds: []models.VarBind{
			{OID: "1.3.6.1.2.1.1.3.0", Type: "TimeTicks", Value: uint32(12345)},
			{OID: ".1.3.6.1.4.1.9.9.41.1.2.3.1.5", Type: "OctetString", Value: "note"},
		},
	}

	tests := []struct {
		name            string
		filterCommunity string
		filterOID       string
		want            bool
	}{
		{name: "no filters pass", want: true},
		{name: "community match", filterCommunity: "public", want: true},
		{name: "community mismatch", filterCommunity: "private", want: false},
		{name: "oid prefix match", filterOID: "1.3.6.1.4.1", want: true},
		{name: "oid prefix with leading dot", filterOID: ".1.3.6.1.4.1", want: true},
		{name: "oid prefix mismatch", filterOID: "1.3.6.1.6.3", want: false},
		{name: "both must pass", filterCommunity: "public", filterOID: "1.3.6.1.6.3", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, matchesContent(packet, tt.filterCommunity, tt.filterOID))
		})
	}
}
