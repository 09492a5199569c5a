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

package db

import "errors"

var (

	// Core database errors.

	ErrFailedToQuery  = errors.New("failed to query")
	ErrFailedToInsert = errors.New("failed to insert")
	ErrFailedToInit   = errors.New("failed to initialize schema")

	// Lookup errors.

	ErrDeviceNotFound         = errors.New("device not found")
	ErrModuleDocumentNotFound = errors.New("module document not found")

	// Validation errors.

	ErrDeviceNil            = errors.New("device is nil")
	ErrSerialNumberRequired = errors.New("serial number is required")
	ErrDeviceUUIDRequired   = errors.New("device uuid is required")
	ErrEventNil             = errors.New("event is nil")
	ErrModuleDocumentNil    = errors.New("module document is nil")
	ErrModuleIDRequired     = errors.New("module id is required")
)
