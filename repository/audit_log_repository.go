package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"fundledger/database"
	"fundledger/domain/entities"
)

// AuditLogRepository implements the AuditLogRepository interface
type AuditLogRepository struct {
	q      Queryable
	teamID string
}

// NewAuditLogRepository creates a new unscoped audit log repository
func NewAuditLogRepository(db *database.DB) *AuditLogRepository {
	return &AuditLogRepository{q: db.Pool}
}

// NewAuditLogRepositoryScoped creates an audit log repository bound to a transaction and team
func NewAuditLogRepositoryScoped(tx Queryable, teamID string) *AuditLogRepository {
	return &AuditLogRepository{
		q:      tx,
		teamID: teamID,
	}
}

// Record inserts an audit entry
func (r *AuditLogRepository) Record(ctx context.Context, entry *entities.AuditEntry) error {
	if entry.TeamID == "" {
		entry.TeamID = r.teamID
	}

	payload, err := json.Marshal(entry.Payload)
	if err != nil {
		return fmt.Errorf("failed to marshal audit payload: %w", err)
	}

	query := `
		INSERT INTO audit_logs (team_id, event_type, action, actor_id, resource_type, resource_id, payload, payload_digest)
		VALUES ($1, $2, $3, $4, $5, $6, $7::jsonb, $8)
		RETURNING id, created_at
	`

	err = r.q.QueryRow(ctx, query,
		entry.TeamID,
		entry.EventType,
		entry.Action,
		entry.ActorID,
		entry.ResourceType,
		entry.ResourceID,
		string(payload),
		entry.PayloadDigest,
	).Scan(&entry.ID, &entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to record audit entry %s for %s %s: %w", entry.Action, entry.ResourceType, entry.ResourceID, err)
	}
	return nil
}

// ListByResource returns audit entries for a resource, newest first
func (r *AuditLogRepository) ListByResource(ctx context.Context, resourceType, resourceID string) ([]*entities.AuditEntry, error) {
	query := `
		SELECT id, team_id, event_type, action, actor_id, resource_type, resource_id, payload, payload_digest, created_at
		FROM audit_logs
		WHERE resource_type = $1 AND resource_id = $2
		  AND ($3::text = '' OR team_id = $3::text)
		ORDER BY created_at DESC, id DESC
	`

	rows, err := r.q.Query(ctx, query, resourceType, resourceID, r.teamID)
	if err != nil {
		return nil, fmt.Errorf("failed to list audit entries for %s %s: %w", resourceType, resourceID, err)
	}
	defer rows.Close()

	var entries []*entities.AuditEntry
	for rows.Next() {
		var entry entities.AuditEntry
		var payload []byte
		if err := rows.Scan(
			&entry.ID,
			&entry.TeamID,
			&entry.EventType,
			&entry.Action,
			&entry.ActorID,
			&entry.ResourceType,
			&entry.ResourceID,
			&payload,
			&entry.PayloadDigest,
			&entry.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan audit entry: %w", err)
		}
		if err := json.Unmarshal(payload, &entry.Payload); err != nil {
			return nil, fmt.Errorf("failed to decode audit payload %d: %w", entry.ID, err)
		}
		entries = append(entries, &entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate audit entries: %w", err)
	}

	return entries, nil
}
