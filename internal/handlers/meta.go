package handlers

import "context"

type requestMetaKey struct{}

// RequestMeta holds per-request metadata captured at the edge: the resolved
// client address, user agent, and a generated request ID. The client IP is
// derived from proxy headers and is forgeable; it is adequate for abuse
// dampening, not for authorization.
type RequestMeta struct {
	RequestID string
	ClientIP  string
	UserAgent string
	Referrer  string
}

// ContextWithRequestMeta adds request metadata to context.
func ContextWithRequestMeta(ctx context.Context, meta RequestMeta) context.Context {
	return context.WithValue(ctx, requestMetaKey{}, meta)
}

// RequestMetaFromContext extracts request metadata from context.
func RequestMetaFromContext(ctx context.Context) RequestMeta {
	if v, ok := ctx.Value(requestMetaKey{}).(RequestMeta); ok {
		return v
	}

	return RequestMeta{}
}
