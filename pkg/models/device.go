package models

import (
	"time"
)

// Device represents a fleet-managed endpoint.
type Device struct {
	SerialNumber  string    `json:"serial_number"`
	DeviceUUID    string    `json:"device_uuid"`
	DisplayName   string    `json:"display_name,omitempty"`
	Manufacturer  string    `json:"manufacturer,omitempty"`
	Model         string    `json:"model,omitempty"`
	ClientVersion string    `json:"client_version,omitempty"`
	FirstSeen     time.Time `json:"first_seen"`
	LastSeen      time.Time `json:"last_seen"`

	// Status is derived at read time from collection recency and recent
	// events; it is never stored.
	Status DeviceStatus `json:"status,omitempty"`
}

// DeviceStatus is the derived health signal for a device.
type DeviceStatus string

const (
	StatusActive  DeviceStatus = "active"
	StatusStale   DeviceStatus = "stale"
	StatusMissing DeviceStatus = "missing"
	StatusWarning DeviceStatus = "warning"
	StatusError   DeviceStatus = "error"
)
