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
	"fmt"

	"github.com/gosnmp/gosnmp"

	"github.com/oidyssey/oidyssey/pkg/models"
)

// pduToVarBind converts one wire-level PDU into the neutral VarBind form
// the rest of the system works with.
func pduToVarBind(pdu gosnmp.SnmpPDU) (models.VarBind, error) {
	value, err := convertValue(pdu)
	if err != nil {
		return models.VarBind{}, err
	}

	return models.VarBind{
		OID:   pdu.Name,
		Type:  pdu.Type.String(),
		Value: value,
	}, nil
}

func convertValue(pdu gosnmp.SnmpPDU) (interface{}, error) {
	switch pdu.Type {
	case gosnmp.OctetString, gosnmp.ObjectDescription:
		b, ok := pdu.Value.([]byte)
		if !ok {
			return nil, fmt.Errorf("%w: %s value is %T, expected []byte", ErrSNMPConvert, pdu.Type, pdu.Value)
		}

		return string(b), nil
	case gosnmp.ObjectIdentifier, gosnmp.IPAddress:
		s, ok := pdu.Value.(string)
		if !ok {
			return nil, fmt.Errorf("%w: %s value is %T, expected string", ErrSNMPConvert, pdu.Type, pdu.Value)
		}

		return s, nil
	case gosnmp.Integer:
		return int(gosnmp.ToBigInt(pdu.Value).Int64()), nil
	case gosnmp.Counter64:
		return gosnmp.ToBigInt(pdu.Value).Uint64(), nil
	case gosnmp.Counter32, gosnmp.Gauge32, gosnmp.TimeTicks, gosnmp.Uinteger32:
		return uint32(gosnmp.ToBigInt(pdu.Value).Uint64()), nil
	case gosnmp.Boolean:
		b, ok := pdu.Value.(bool)
		if !ok {
			return nil, fmt.Errorf("%w: Boolean value is %T", ErrSNMPConvert, pdu.Value)
		}

		return b, nil
	case gosnmp.OpaqueFloat, gosnmp.OpaqueDouble:
		return pdu.Value, nil
	case gosnmp.Null, gosnmp.NoSuchObject, gosnmp.NoSuchInstance, gosnmp.EndOfMibView:
		return nil, nil
	default:
		return pdu.Value, nil
	}
}
