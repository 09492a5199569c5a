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

import (
	"crypto/subtle"
	"fmt"

	"github.com/carverauto/fleetpulse/pkg/models"
)

// Authenticator validates the shared-secret passphrase presented with each
// ingestion. An unconfigured credential set fails closed outside dev mode;
// "no passphrases" must never silently mean "allow all" in production.
type Authenticator struct {
	passphrases []string
	devMode     bool
}

func NewAuthenticator(cfg models.AuthConfig) *Authenticator {
	return &Authenticator{
		passphrases: cfg.Passphrases,
		devMode:     cfg.DevMode,
	}
}

func (a *Authenticator) Authenticate(token string) error {
	if len(a.passphrases) == 0 {
		if a.devMode {
			return nil
		}

		return fmt.Errorf("%w: no credentials configured", ErrAuthentication)
	}

	if token == "" {
		return fmt.Errorf("%w: missing token", ErrAuthentication)
	}

	for _, passphrase := range a.passphrases {
		if subtle.ConstantTimeCompare([]byte(token), []byte(passphrase)) == 1 {
			return nil
		}
	}

	return fmt.Errorf("%w: invalid token", ErrAuthentication)
}
