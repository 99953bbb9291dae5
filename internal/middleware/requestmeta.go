package middleware

import (
	"net"
	"strings"

	"github.com/danielgtaylor/huma/v2"
	"github.com/jaevor/go-nanoid"
	"github.com/serroba/admission-gate/internal/handlers"
)

var newRequestID = mustNanoID(16)

func mustNanoID(length int) func() string {
	gen, err := nanoid.Standard(length)
	if err != nil {
		panic(err)
	}

	return gen
}

// RequestMeta is a middleware that assigns a request ID and captures the
// client IP, user agent, and referrer into the request context.
func RequestMeta(_ huma.API) func(ctx huma.Context, next func(huma.Context)) {
	return func(ctx huma.Context, next func(huma.Context)) {
		meta := handlers.RequestMeta{
			RequestID: newRequestID(),
			ClientIP:  ClientIP(ctx),
			UserAgent: ctx.Header("User-Agent"),
			Referrer:  ctx.Header("Referer"),
		}

		newCtx := handlers.ContextWithRequestMeta(ctx.Context(), meta)
		ctx = huma.WithContext(ctx, newCtx)

		next(ctx)
	}
}

// ClientIP extracts the client IP from the request, considering proxies. It
// returns an empty string when no address can be derived.
//
// The forwarded-address chain is attacker-controllable: a client can claim
// any address, so the value is a best-effort discriminator, never an
// authorization boundary.
func ClientIP(ctx huma.Context) string {
	// X-Forwarded-For may contain multiple IPs; the first is the original client.
	if xff := ctx.Header("X-Forwarded-For"); xff != "" {
		if idx := strings.Index(xff, ","); idx != -1 {
			return strings.TrimSpace(xff[:idx])
		}

		return strings.TrimSpace(xff)
	}

	if xri := ctx.Header("X-Real-IP"); xri != "" {
		return xri
	}

	// Fall back to the direct connection address.
	host := ctx.Host()

	ip, _, err := net.SplitHostPort(host)
	if err != nil {
		return host
	}

	return ip
}
