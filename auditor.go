package gateway

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

const defaultAuditorBuffer = 256

// ActivityAuditor buffers UserActivity records and dispatches them to an
// AuditSink from a single background worker. Record never blocks the caller
// and never surfaces sink failures; when the buffer is full the record is
// dropped and counted instead of backing up request handling.
type ActivityAuditor struct {
	sink      AuditSink
	logger    Logger
	now       func() time.Time
	ch        chan UserActivity
	done      chan struct{}
	wg        sync.WaitGroup
	dropped   atomic.Uint64
	closed    atomic.Bool
	closeOnce sync.Once
}

// AuditorOption customizes an ActivityAuditor.
type AuditorOption func(*auditorOptions)

type auditorOptions struct {
	bufferSize int
	logger     Logger
	clock      func() time.Time
}

// WithAuditorBufferSize bounds the in-flight record buffer.
func WithAuditorBufferSize(n int) AuditorOption {
	return func(o *auditorOptions) {
		if n > 0 {
			o.bufferSize = n
		}
	}
}

// WithAuditorLogger overrides the logger used for sink failures.
func WithAuditorLogger(logger Logger) AuditorOption {
	return func(o *auditorOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithAuditorClock injects a custom clock (useful for tests).
func WithAuditorClock(clock func() time.Time) AuditorOption {
	return func(o *auditorOptions) {
		if clock != nil {
			o.clock = clock
		}
	}
}

// NewActivityAuditor starts the dispatch worker and returns the auditor.
// Call Close to drain on shutdown.
func NewActivityAuditor(sink AuditSink, opts ...AuditorOption) *ActivityAuditor {
	options := &auditorOptions{
		bufferSize: defaultAuditorBuffer,
		logger:     defLogger{},
		clock:      time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(options)
		}
	}

	a := &ActivityAuditor{
		sink:   normalizeAuditSink(sink),
		logger: options.logger,
		now:    options.clock,
		ch:     make(chan UserActivity, options.bufferSize),
		done:   make(chan struct{}),
	}

	a.wg.Add(1)
	go a.run()

	return a
}

func (a *ActivityAuditor) run() {
	defer a.wg.Done()

	for {
		select {
		case activity := <-a.ch:
			a.dispatch(activity)
		case <-a.done:
			for {
				select {
				case activity := <-a.ch:
					a.dispatch(activity)
				default:
					return
				}
			}
		}
	}
}

func (a *ActivityAuditor) dispatch(activity UserActivity) {
	if err := a.sink.Persist(context.Background(), activity); err != nil {
		a.logger.Error("audit sink persist failed", "action", activity.Action, "error", err)
	}
}

// RecordOption decorates a single activity record.
type RecordOption func(*UserActivity)

// WithResourceID attaches the acted-on resource identifier.
func WithResourceID(id string) RecordOption {
	return func(ua *UserActivity) {
		ua.ResourceID = id
	}
}

// WithActivityMetadata merges metadata into the record.
func WithActivityMetadata(metadata map[string]any) RecordOption {
	return func(ua *UserActivity) {
		if len(metadata) == 0 {
			return
		}
		if ua.Metadata == nil {
			ua.Metadata = make(map[string]any, len(metadata))
		}
		for k, v := range metadata {
			ua.Metadata[k] = v
		}
	}
}

// Record enqueues an activity for the session in ctx. Without a session the
// call is a silent no-op: an activity cannot be attributed without an
// identity. Record never fails visibly and never blocks.
func (a *ActivityAuditor) Record(ctx context.Context, action string, resource ResourceType, opts ...RecordOption) {
	if a == nil || a.closed.Load() {
		return
	}

	session, ok := SessionFromContext(ctx)
	if !ok {
		return
	}

	activity := UserActivity{
		ID:           uuid.New(),
		UserID:       session.GetSubjectID(),
		Action:       action,
		ResourceType: resource,
		Timestamp:    a.now(),
	}

	if meta, ok := RequestMetaFromContext(ctx); ok {
		activity.IPAddress = meta.IPAddress
		activity.UserAgent = meta.UserAgent
	}

	for _, opt := range opts {
		if opt != nil {
			opt(&activity)
		}
	}

	select {
	case a.ch <- activity:
	case <-a.done:
	default:
		a.dropped.Add(1)
	}
}

// RecordPluginCreated records a plugin creation.
func (a *ActivityAuditor) RecordPluginCreated(ctx context.Context, pluginID string, opts ...RecordOption) {
	a.Record(ctx, ActionPluginCreated, ResourcePlugin, append([]RecordOption{WithResourceID(pluginID)}, opts...)...)
}

// RecordPluginAccessed records a plugin read.
func (a *ActivityAuditor) RecordPluginAccessed(ctx context.Context, pluginID string, opts ...RecordOption) {
	a.Record(ctx, ActionPluginAccessed, ResourcePlugin, append([]RecordOption{WithResourceID(pluginID)}, opts...)...)
}

// RecordPluginDeleted records a plugin deletion.
func (a *ActivityAuditor) RecordPluginDeleted(ctx context.Context, pluginID string, opts ...RecordOption) {
	a.Record(ctx, ActionPluginDeleted, ResourcePlugin, append([]RecordOption{WithResourceID(pluginID)}, opts...)...)
}

// RecordChatStarted records the start of a chat.
func (a *ActivityAuditor) RecordChatStarted(ctx context.Context, chatID string, opts ...RecordOption) {
	a.Record(ctx, ActionChatStarted, ResourceChat, append([]RecordOption{WithResourceID(chatID)}, opts...)...)
}

// RecordUserSignedIn records a successful sign-in.
func (a *ActivityAuditor) RecordUserSignedIn(ctx context.Context, opts ...RecordOption) {
	a.Record(ctx, ActionUserSignedIn, ResourceUser, opts...)
}

// Dropped returns how many records were discarded because the buffer was full.
func (a *ActivityAuditor) Dropped() uint64 {
	if a == nil {
		return 0
	}
	return a.dropped.Load()
}

// Close stops intake, drains buffered records through the sink, and waits
// for the worker to exit. Safe to call more than once.
func (a *ActivityAuditor) Close() {
	if a == nil {
		return
	}
	a.closeOnce.Do(func() {
		a.closed.Store(true)
		close(a.done)
		a.wg.Wait()
	})
}
