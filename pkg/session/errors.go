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

import "errors"

var (
	// ErrPoolAtCapacity occurs when every pooled session is active and
	// none can be evicted to make room.
	ErrPoolAtCapacity = errors.New("session pool at capacity, all sessions active")

	ErrHandleCreation = errors.New("failed to create session handle")

	ErrInvalidHost        = errors.New("host must not be empty")
	ErrInvalidCredentials = errors.New("credentials must not be nil")
	ErrInvalidMaxSessions = errors.New("max sessions must be greater than 0")
)
