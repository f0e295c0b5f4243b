// Package bunsink persists UserActivity records to a database table through
// uptrace/bun.
package bunsink

import (
	"context"
	"time"

	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-gateway"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// ActivityRecord is the persisted shape of a UserActivity.
type ActivityRecord struct {
	bun.BaseModel `bun:"table:user_activities,alias:act"`

	ID           uuid.UUID      `bun:"id,pk,type:uuid" json:"id"`
	UserID       string         `bun:"user_id,notnull" json:"user_id"`
	Action       string         `bun:"action,notnull" json:"action"`
	ResourceType string         `bun:"resource_type,notnull" json:"resource_type"`
	ResourceID   string         `bun:"resource_id" json:"resource_id,omitempty"`
	Metadata     map[string]any `bun:"metadata" json:"metadata,omitempty"`
	IPAddress    string         `bun:"ip_address" json:"ip_address,omitempty"`
	UserAgent    string         `bun:"user_agent" json:"user_agent,omitempty"`
	CreatedAt    time.Time      `bun:"created_at,notnull" json:"created_at"`
}

// Sink writes activity rows through db.
type Sink struct {
	db *bun.DB
}

// New creates a Sink over db.
func New(db *bun.DB) *Sink {
	return &Sink{db: db}
}

var _ gateway.AuditSink = &Sink{}

// CreateTable creates the activity table if missing. Intended for tests and
// bootstrap scripts; production schemas belong in migrations.
func (s *Sink) CreateTable(ctx context.Context) error {
	_, err := s.db.NewCreateTable().
		Model((*ActivityRecord)(nil)).
		IfNotExists().
		Exec(ctx)
	if err != nil {
		return errors.Wrap(err, errors.CategoryOperation, "failed to create activity table")
	}
	return nil
}

// Persist implements gateway.AuditSink.
func (s *Sink) Persist(ctx context.Context, activity gateway.UserActivity) error {
	record := &ActivityRecord{
		ID:           activity.ID,
		UserID:       activity.UserID,
		Action:       activity.Action,
		ResourceType: string(activity.ResourceType),
		ResourceID:   activity.ResourceID,
		Metadata:     activity.Metadata,
		IPAddress:    activity.IPAddress,
		UserAgent:    activity.UserAgent,
		CreatedAt:    activity.Timestamp,
	}

	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}

	if _, err := s.db.NewInsert().Model(record).Exec(ctx); err != nil {
		return errors.Wrap(err, errors.CategoryOperation, "failed to insert activity record")
	}

	return nil
}
