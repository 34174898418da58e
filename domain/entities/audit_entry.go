package entities

import "time"

// AuditEntry is a persisted record of an administrative action
type AuditEntry struct {
	ID            int64          `db:"id"`
	TeamID        string         `db:"team_id"`
	EventType     string         `db:"event_type"`
	Action        string         `db:"action"`
	ActorID       string         `db:"actor_id"`
	ResourceType  string         `db:"resource_type"`
	ResourceID    string         `db:"resource_id"`
	Payload       map[string]any `db:"payload"`
	PayloadDigest string         `db:"payload_digest"`
	CreatedAt     time.Time      `db:"created_at"`
}
