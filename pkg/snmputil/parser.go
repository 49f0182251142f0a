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

package snmputil

import (
	"strings"

	"github.com/gosnmp/gosnmp"

	"github.com/oidyssey/oidyssey/pkg/models"
)

const oidSysUpTime = "1.3.6.1.2.1.1.3.0"

// WireParser decodes raw trap datagrams into the neutral TrapPacket form.
// It handles community-based v1 and v2c notifications; v3 datagrams fail
// to decode and are reported as parse errors.
type WireParser struct{}

// NewWireParser creates a trap wire parser.
func NewWireParser() *WireParser {
	return &WireParser{}
}

// Parse implements trap.PacketParser.
func (*WireParser) Parse(raw []byte) (*models.TrapPacket, error) {
	if len(raw) == 0 {
		return nil, ErrEmptyPacket
	}

	decoder := &gosnmp.GoSNMP{Transport: "udp"}

	packet, err := decoder.UnmarshalTrap(raw, false)
	if err != nil {
		return nil, err
	}

	out := &models.TrapPacket{
		Version:   versionFromWire(packet.Version),
		Community: packet.Community,
	}

	variables := packet.Variables

	// v1 traps carry their identity in a separate header.
	if packet.PDUType == gosnmp.Trap {
		out.Enterprise = packet.SnmpTrap.Enterprise
		out.GenericType = packet.SnmpTrap.GenericTrap
		out.SpecificType = packet.SnmpTrap.SpecificTrap
		out.UptimeTicks = uint32(packet.SnmpTrap.Timestamp)

		if len(packet.SnmpTrap.Variables) > 0 {
			variables = packet.SnmpTrap.Variables
		}
	}

	out.VarBinds = make([]models.VarBind, 0, len(variables))

	for _, pdu := range variables {
		vb, err := pduToVarBind(pdu)
		if err != nil {
			// Keep the raw value rather than dropping the varbind.
			vb = models.VarBind{OID: pdu.Name, Type: pdu.Type.String(), Value: pdu.Value}
		}

		out.VarBinds = append(out.VarBinds, vb)

		if out.UptimeTicks == 0 && pdu.Type == gosnmp.TimeTicks &&
			strings.TrimPrefix(pdu.Name, ".") == oidSysUpTime {
			if ticks, ok := vb.Value.(uint32); ok {
				out.UptimeTicks = ticks
			}
		}
	}

	return out, nil
}

func versionFromWire(v gosnmp.SnmpVersion) models.SNMPVersion {
	switch v {
	case gosnmp.Version1:
		return models.SNMPVersion1
	case gosnmp.Version3:
		return models.SNMPVersion3
	default:
		return models.SNMPVersion2c
	}
}
