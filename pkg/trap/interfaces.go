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

//go:generate mockgen -destination=mock_trap.go -package=trap github.com/oidyssey/oidyssey/pkg/trap PacketParser

package trap

import "github.com/oidyssey/oidyssey/pkg/models"

// PacketParser decodes one raw notification datagram. It may fail on
// malformed input; the listener discards such datagrams and keeps
// receiving.
type PacketParser interface {
	Parse(raw []byte) (*models.TrapPacket, error)
}
