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

import "errors"

var (
	ErrInvalidPort         = errors.New("port must be between 1 and 65535")
	ErrPortInUse           = errors.New("a listener is already active on this port")
	ErrInvalidSourceFilter = errors.New("invalid source filter entry")
	ErrBindFailed          = errors.New("failed to bind trap listener socket")
	ErrAlreadyStarted      = errors.New("listener already started")
	ErrSocketClosed        = errors.New("listener socket closed unexpectedly")
)
