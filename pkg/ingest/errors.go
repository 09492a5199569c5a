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

package ingest

import "errors"

var (
	// ErrAuthentication rejects the whole request before any processing.
	ErrAuthentication = errors.New("authentication failed")

	// ErrIdentity rejects the whole request: telemetry with no reliable
	// device identity must never be stored.
	ErrIdentity = errors.New("device identity could not be established")

	// ErrPersistence wraps a failed ingestion unit of work.
	ErrPersistence = errors.New("failed to persist ingestion")

	// ErrNoModules reports a payload that carried no known module data.
	ErrNoModules = errors.New("payload contains no known modules")
)
