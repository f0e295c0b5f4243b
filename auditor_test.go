package gateway_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	gateway "github.com/goliatone/go-gateway"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type collectingSink struct {
	mu         sync.Mutex
	activities []gateway.UserActivity
}

func (s *collectingSink) Persist(_ context.Context, activity gateway.UserActivity) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.activities = append(s.activities, activity)
	return nil
}

func (s *collectingSink) Activities() []gateway.UserActivity {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]gateway.UserActivity(nil), s.activities...)
}

func sessionContext() context.Context {
	ctx := gateway.WithSessionContext(context.Background(), testSession())
	return gateway.WithRequestMeta(ctx, gateway.RequestMeta{
		IPAddress: "203.0.113.7",
		UserAgent: "test-agent/1.0",
	})
}

func TestAuditorRecordWithoutSessionIsNoOp(t *testing.T) {
	sink := &collectingSink{}
	auditor := gateway.NewActivityAuditor(sink)

	auditor.Record(context.Background(), gateway.ActionPluginCreated, gateway.ResourcePlugin)
	auditor.Close()

	assert.Empty(t, sink.Activities())
	assert.Zero(t, auditor.Dropped())
}

func TestAuditorRecordsActivityWithAttribution(t *testing.T) {
	sink := &collectingSink{}
	now := time.Date(2026, 8, 27, 10, 0, 0, 0, time.UTC)
	auditor := gateway.NewActivityAuditor(sink, gateway.WithAuditorClock(func() time.Time {
		return now
	}))

	auditor.Record(sessionContext(), gateway.ActionPluginCreated, gateway.ResourcePlugin,
		gateway.WithResourceID("plugin-42"),
		gateway.WithActivityMetadata(map[string]any{"name": "teleporter"}),
	)
	auditor.Close()

	activities := sink.Activities()
	require.Len(t, activities, 1)

	activity := activities[0]
	assert.NotEqual(t, activity.ID.String(), "00000000-0000-0000-0000-000000000000")
	assert.Equal(t, "user-1", activity.UserID)
	assert.Equal(t, gateway.ActionPluginCreated, activity.Action)
	assert.Equal(t, gateway.ResourcePlugin, activity.ResourceType)
	assert.Equal(t, "plugin-42", activity.ResourceID)
	assert.Equal(t, "teleporter", activity.Metadata["name"])
	assert.Equal(t, now, activity.Timestamp)
	assert.Equal(t, "203.0.113.7", activity.IPAddress)
	assert.Equal(t, "test-agent/1.0", activity.UserAgent)
}

func TestAuditorConvenienceRecorders(t *testing.T) {
	sink := &collectingSink{}
	auditor := gateway.NewActivityAuditor(sink)
	ctx := sessionContext()

	auditor.RecordPluginCreated(ctx, "plugin-1")
	auditor.RecordPluginAccessed(ctx, "plugin-1")
	auditor.RecordPluginDeleted(ctx, "plugin-1")
	auditor.RecordChatStarted(ctx, "chat-9")
	auditor.RecordUserSignedIn(ctx)
	auditor.Close()

	activities := sink.Activities()
	require.Len(t, activities, 5)

	assert.Equal(t, gateway.ActionPluginCreated, activities[0].Action)
	assert.Equal(t, gateway.ResourcePlugin, activities[0].ResourceType)
	assert.Equal(t, gateway.ActionChatStarted, activities[3].Action)
	assert.Equal(t, gateway.ResourceChat, activities[3].ResourceType)
	assert.Equal(t, gateway.ActionUserSignedIn, activities[4].Action)
	assert.Equal(t, gateway.ResourceUser, activities[4].ResourceType)
	assert.Empty(t, activities[4].ResourceID)
}

func TestAuditorSwallowsSinkFailures(t *testing.T) {
	sink := gateway.AuditSinkFunc(func(context.Context, gateway.UserActivity) error {
		return errors.New("sink rejected write")
	})
	auditor := gateway.NewActivityAuditor(sink)

	// must not panic or surface anything
	auditor.RecordPluginCreated(sessionContext(), "plugin-1")
	auditor.Close()

	assert.Zero(t, auditor.Dropped())
}

func TestAuditorDropsWhenBufferFull(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})

	var sink collectingSink
	blocking := gateway.AuditSinkFunc(func(ctx context.Context, activity gateway.UserActivity) error {
		select {
		case started <- struct{}{}:
		default:
		}
		<-release
		return sink.Persist(ctx, activity)
	})

	auditor := gateway.NewActivityAuditor(blocking, gateway.WithAuditorBufferSize(1))
	ctx := sessionContext()

	// first record occupies the worker inside the sink
	auditor.RecordPluginAccessed(ctx, "plugin-1")
	<-started

	// second fills the buffer, third has nowhere to go
	auditor.RecordPluginAccessed(ctx, "plugin-2")
	auditor.RecordPluginAccessed(ctx, "plugin-3")

	assert.Equal(t, uint64(1), auditor.Dropped())

	close(release)
	auditor.Close()

	assert.Len(t, sink.Activities(), 2)
}

func TestAuditorRecordAfterCloseIsNoOp(t *testing.T) {
	sink := &collectingSink{}
	auditor := gateway.NewActivityAuditor(sink)
	auditor.Close()

	auditor.RecordPluginCreated(sessionContext(), "plugin-1")

	assert.Empty(t, sink.Activities())
}
