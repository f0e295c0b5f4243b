package gateway

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// ResourceType enumerates the resource kinds an activity can reference.
type ResourceType string

const (
	ResourcePlugin ResourceType = "plugin"
	ResourceChat   ResourceType = "chat"
	ResourceUser   ResourceType = "user"
)

// Activity action identifiers.
const (
	ActionPluginCreated  = "plugin.created"
	ActionPluginAccessed = "plugin.accessed"
	ActionPluginDeleted  = "plugin.deleted"
	ActionChatStarted    = "chat.started"
	ActionUserSignedIn   = "user.signed_in"
)

// UserActivity captures audit-friendly information about a user action.
// The JSON shape is what HTTP sinks persist verbatim.
type UserActivity struct {
	ID           uuid.UUID      `json:"id"`
	UserID       string         `json:"userId"`
	Action       string         `json:"action"`
	ResourceType ResourceType   `json:"resourceType"`
	ResourceID   string         `json:"resourceId,omitempty"`
	Metadata     map[string]any `json:"metadata,omitempty"`
	Timestamp    time.Time      `json:"timestamp"`
	IPAddress    string         `json:"ipAddress,omitempty"`
	UserAgent    string         `json:"userAgent,omitempty"`
}

// AuditSink persists activity records for auditing/telemetry purposes.
// Persistence is best-effort: the auditor logs failures and moves on.
type AuditSink interface {
	Persist(ctx context.Context, activity UserActivity) error
}

// AuditSinkFunc adapts a function to the AuditSink interface.
type AuditSinkFunc func(ctx context.Context, activity UserActivity) error

// Persist implements AuditSink.
func (f AuditSinkFunc) Persist(ctx context.Context, activity UserActivity) error {
	if f == nil {
		return nil
	}
	return f(ctx, activity)
}

type noopAuditSink struct{}

func (noopAuditSink) Persist(context.Context, UserActivity) error {
	return nil
}

func normalizeAuditSink(s AuditSink) AuditSink {
	if s == nil {
		return noopAuditSink{}
	}
	return s
}
