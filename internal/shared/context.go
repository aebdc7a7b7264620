package shared

import "context"

// ctxKeySession is unexported so only this package can attach sessions.
type ctxKeySession struct{}

// ContextWithSession attaches the request session to ctx.
func ContextWithSession(ctx context.Context, sess *Session) context.Context {
	return context.WithValue(ctx, ctxKeySession{}, sess)
}

// SessionFromContext returns the session attached by the session middleware,
// or nil when the request never passed through it. The nil session is safe
// to query: all Session accessors treat it as anonymous.
func SessionFromContext(ctx context.Context) *Session {
	if ctx == nil {
		return nil
	}
	sess, _ := ctx.Value(ctxKeySession{}).(*Session)
	return sess
}
