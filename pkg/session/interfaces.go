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

//go:generate mockgen -destination=mock_session.go -package=session github.com/oidyssey/oidyssey/pkg/session Handle,HandleFactory

package session

import (
	"context"

	"github.com/oidyssey/oidyssey/pkg/models"
)

// Handle is the opaque protocol capability a pooled session owns. The
// pool never inspects protocol internals; it only closes handles and
// hands them to borrowers.
type Handle interface {
	Get(ctx context.Context, oids []string) ([]models.VarBind, error)
	GetBulk(ctx context.Context, oids []string, nonRepeaters, maxRepetitions uint8) ([]models.VarBind, error)
	Walk(ctx context.Context, rootOID string, maxItems int, onItem func(models.VarBind) error) error

	// Close releases transport resources. Cleanup is unconditional and
	// never reports an error.
	Close()
}

// HandleFactory opens protocol handles. Implemented by the transport
// adapter and injected into the pool.
type HandleFactory interface {
	OpenHandle(ctx context.Context, target Target, creds *models.Credentials) (Handle, error)
}

// Target identifies one device endpoint.
type Target struct {
	Host string `json:"host"`
	Port uint16 `json:"port"`
}
