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

package models

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/carverauto/fleetpulse/pkg/logger"
)

// Duration wraps time.Duration so JSON configs can carry values like "30s".
type Duration time.Duration

func (d *Duration) UnmarshalJSON(data []byte) error {
	var v interface{}
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}

	switch value := v.(type) {
	case float64:
		*d = Duration(time.Duration(value))
		return nil
	case string:
		parsed, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid duration %q: %w", value, err)
		}

		*d = Duration(parsed)

		return nil
	default:
		return fmt.Errorf("invalid duration type %T", v)
	}
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

// AuthConfig holds the shared-secret credential set for the ingestion
// endpoint. Passphrases is empty in an unconfigured deployment; outside
// DevMode an empty set rejects every request.
type AuthConfig struct {
	Passphrases []string `json:"passphrases"`
	DevMode     bool     `json:"dev_mode,omitempty"`
}

// Database configures the Postgres pool backing the pipeline.
type Database struct {
	Host               string            `json:"host"`
	Port               int               `json:"port"`
	Database           string            `json:"database"`
	Username           string            `json:"username"`
	Password           string            `json:"password,omitempty"`
	SSLMode            string            `json:"ssl_mode,omitempty"`
	ApplicationName    string            `json:"application_name,omitempty"`
	MaxConnections     int32             `json:"max_connections,omitempty"`
	MinConnections     int32             `json:"min_connections,omitempty"`
	MaxConnLifetime    Duration          `json:"max_conn_lifetime,omitempty"`
	HealthCheckPeriod  Duration          `json:"health_check_period,omitempty"`
	StatementTimeout   Duration          `json:"statement_timeout,omitempty"`
	ExtraRuntimeParams map[string]string `json:"extra_runtime_params,omitempty"`
}

// NATSConfig configures the optional JetStream event publisher.
type NATSConfig struct {
	URL        string `json:"url"`
	Domain     string `json:"domain,omitempty"`
	StreamName string `json:"stream_name,omitempty"`
}

// Validate ensures the NATS configuration is usable.
func (c *NATSConfig) Validate() error {
	if c.URL == "" {
		return fmt.Errorf("nats url is required")
	}

	if c.StreamName == "" {
		c.StreamName = "events"
	}

	return nil
}

// CoreConfig is the top-level configuration of the ingestion service.
type CoreConfig struct {
	ListenAddr     string         `json:"listen_addr"`
	Auth           AuthConfig     `json:"auth"`
	Database       *Database      `json:"database"`
	NATS           *NATSConfig    `json:"nats,omitempty"`
	Logging        *logger.Config `json:"logging,omitempty"`
	StatusLookback Duration       `json:"status_lookback,omitempty"`
}

// Validate fills defaults and rejects configurations the service cannot
// start with.
func (c *CoreConfig) Validate() error {
	if c.ListenAddr == "" {
		c.ListenAddr = ":8090"
	}

	if c.Database == nil {
		return fmt.Errorf("database configuration is required")
	}

	if c.Database.Host == "" {
		return fmt.Errorf("database host is required")
	}

	if c.Database.Database == "" {
		return fmt.Errorf("database name is required")
	}

	if c.NATS != nil {
		if err := c.NATS.Validate(); err != nil {
			return err
		}
	}

	return nil
}
