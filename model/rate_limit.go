package model

import "time"

// RateLimit is the in-memory window kept per identifier and endpoint type.
type RateLimit struct {
	Identifier   string     `json:"identifier"`
	EndpointType string     `json:"endpoint_type"`
	RequestCount int        `json:"request_count"`
	WindowStart  time.Time  `json:"window_start"`
	BlockedUntil *time.Time `json:"blocked_until,omitempty"`
	UpdatedAt    time.Time  `json:"updated_at"`
}
