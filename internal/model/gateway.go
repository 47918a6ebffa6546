package model

import (
	"time"
)

// GatewayRecord is the persisted identity of a monitored branch gateway.
type GatewayRecord struct {
	LANIP       string    `json:"lan_ip"`
	Proto       string    `json:"proto"` // "ssh" or "telnet"
	Name        string    `json:"name"`
	Number      string    `json:"number"`
	PollingSecs int       `json:"polling_secs"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Snapshot is one persisted point-in-time view of a gateway: every
// derived telemetry field plus the identity and polling attributes.
type Snapshot struct {
	ID      string            `json:"id"`
	LANIP   string            `json:"lan_ip"`
	TakenAt time.Time         `json:"taken_at"`
	Fields  map[string]string `json:"fields"`
}
