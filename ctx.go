package gateway

import (
	"context"
)

var sessionCtxKey = &contextKey{"session"}
var requestMetaCtxKey = &contextKey{"request_meta"}

type contextKey struct {
	name string
}

// RequestMeta carries request attribution captured at the edge so recorders
// deeper in the stack need no HTTP dependency.
type RequestMeta struct {
	IPAddress string
	UserAgent string
}

// WithSessionContext sets the Session in the given context
func WithSessionContext(r context.Context, session Session) context.Context {
	return context.WithValue(r, sessionCtxKey, session)
}

// SessionFromContext finds the session from the context.
func SessionFromContext(ctx context.Context) (Session, bool) {
	raw, ok := ctx.Value(sessionCtxKey).(Session)
	if !ok || raw == nil {
		return nil, false
	}
	return raw, true
}

// WithRequestMeta sets request attribution in the given context
func WithRequestMeta(r context.Context, meta RequestMeta) context.Context {
	return context.WithValue(r, requestMetaCtxKey, meta)
}

// RequestMetaFromContext finds request attribution from the context.
func RequestMetaFromContext(ctx context.Context) (RequestMeta, bool) {
	raw, ok := ctx.Value(requestMetaCtxKey).(RequestMeta)
	return raw, ok
}
