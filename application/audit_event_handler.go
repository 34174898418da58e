package application

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"fundledger/domain/entities"
	"fundledger/domain/events"

	log "github.com/sirupsen/logrus"
)

// AuditEventHandler persists admin actions to the audit trail after they commit
type AuditEventHandler struct {
	uowFactory UnitOfWorkFactory
}

// NewAuditEventHandler creates a new AuditEventHandler
func NewAuditEventHandler(uowFactory UnitOfWorkFactory) *AuditEventHandler {
	return &AuditEventHandler{
		uowFactory: uowFactory,
	}
}

// HandleAdminAction writes one audit row per AdminActionEvent
func (h *AuditEventHandler) HandleAdminAction(ctx context.Context, event events.Event) error {
	e, err := AssertEventType[events.AdminActionEvent](event, "AdminActionEvent")
	if err != nil {
		return err
	}

	payload := e.Details
	if payload == nil {
		payload = map[string]any{}
	}

	digest, err := PayloadDigest(payload)
	if err != nil {
		return err
	}

	entry := &entities.AuditEntry{
		TeamID:        e.TeamID,
		EventType:     string(e.Type()),
		Action:        e.Action,
		ActorID:       e.ActorID,
		ResourceType:  e.ResourceType,
		ResourceID:    e.ResourceID,
		Payload:       payload,
		PayloadDigest: digest,
	}

	uow := h.uowFactory.CreateForTeam(e.TeamID)
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin audit transaction: %w", err)
	}
	defer uow.Rollback()

	if err := uow.AuditLogRepository().Record(ctx, entry); err != nil {
		return err
	}

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit audit entry: %w", err)
	}

	log.WithFields(log.Fields{
		"auditId":      entry.ID,
		"action":       entry.Action,
		"resourceType": entry.ResourceType,
		"resourceId":   entry.ResourceID,
	}).Debug("Recorded audit entry")
	return nil
}

// PayloadDigest is the hex SHA-256 of the payload's canonical JSON (map keys sorted)
func PayloadDigest(payload map[string]any) (string, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal audit payload: %w", err)
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}
