// Package queue defines message payloads exchanged over the message broker
// and the consumer that writes them to the audit log file.
package queue

import (
	"time"

	"github.com/iliyamo/inventory-api/internal/model"
)

// AuditQueueName is the durable queue carrying AuditRecordedEvent messages.
const AuditQueueName = "audit.recorded"

// AuditRecordedEvent is published after an audit row has been persisted.
// It carries the full row so consumers never query the primary database.
type AuditRecordedEvent struct {
	ID         string  `json:"id"`
	UserID     string  `json:"user_id"`
	Role       string  `json:"role,omitempty"`
	Action     string  `json:"action"`
	Resource   string  `json:"resource"`
	ResourceID *string `json:"resource_id,omitempty"`
	IP         string  `json:"ip,omitempty"`
	RecordedAt string  `json:"recorded_at"`
}

// NewAuditRecordedEvent converts a stored audit row into its event form.
func NewAuditRecordedEvent(a model.AuditLog) AuditRecordedEvent {
	return AuditRecordedEvent{
		ID:         a.ID,
		UserID:     a.UserID,
		Role:       a.Role,
		Action:     string(a.Action),
		Resource:   a.Resource,
		ResourceID: a.ResourceID,
		IP:         a.IP,
		RecordedAt: a.CreatedAt.UTC().Format(time.RFC3339),
	}
}
