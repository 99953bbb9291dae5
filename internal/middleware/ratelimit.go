package middleware

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/google/uuid"
	"github.com/serroba/admission-gate/internal/audit"
	"github.com/serroba/admission-gate/internal/handlers"
	"github.com/serroba/admission-gate/internal/messaging"
	"github.com/serroba/admission-gate/internal/ratelimit"
	"go.uber.org/zap"
)

// AnonymousClientKey is the shared bucket for requests whose client address
// cannot be determined. Misconfigured proxies degrade to coarse-grained
// limiting rather than no limiting.
const AnonymousClientKey = "anonymous"

// deniedResponse is the body returned on HTTP 429.
type deniedResponse struct {
	Error      string `json:"error"`
	Message    string `json:"message"`
	RetryAfter int64  `json:"retryAfter"`
	Limit      int    `json:"limit"`
	Window     string `json:"window"`
}

// RateLimiter returns a Huma middleware that gates every request through the
// limiter. Admitted requests proceed with X-RateLimit-* headers attached;
// denied requests are answered with 429 and never reach the protected
// operation. The publish function may be nil to disable denial events.
func RateLimiter(
	limiter ratelimit.Limiter,
	cfg ratelimit.Config,
	publishDenied messaging.Publish[audit.DenialEvent],
	logger *zap.Logger,
) func(ctx huma.Context, next func(huma.Context)) {
	return func(ctx huma.Context, next func(huma.Context)) {
		key := ClientKey(ctx)
		decision := limiter.Evaluate(ctx.Context(), key)

		ctx.SetHeader("X-RateLimit-Limit", strconv.Itoa(cfg.Limit))
		ctx.SetHeader("X-RateLimit-Remaining", strconv.Itoa(decision.Remaining))
		ctx.SetHeader("X-RateLimit-Reset", strconv.FormatInt(decision.ResetAt.Unix(), 10))

		if decision.Allowed {
			next(ctx)

			return
		}

		retryAfter := retryAfterSeconds(decision.RetryAfter)
		ctx.SetHeader("Retry-After", strconv.FormatInt(retryAfter, 10))

		logger.Warn("rate limit exceeded",
			zap.String("client", key),
			zap.String("method", ctx.Method()),
			zap.String("path", requestPath(ctx)),
			zap.Int64("retryAfter", retryAfter),
		)

		publishDenial(ctx, publishDenied, cfg, key, retryAfter, logger)
		writeDenied(ctx, cfg, retryAfter, logger)
	}
}

// ClientKey derives the rate limiting identity for a request: a hash of the
// resolved client IP and User-Agent. Requests with no derivable address share
// the anonymous bucket.
func ClientKey(ctx huma.Context) string {
	ip := ClientIP(ctx)
	if ip == "" {
		return AnonymousClientKey
	}

	ua := ctx.Header("User-Agent")
	hash := sha256.Sum256([]byte(ip + "|" + ua))

	return hex.EncodeToString(hash[:])
}

// retryAfterSeconds rounds the wait up to whole seconds, reporting at least
// one so clients never retry immediately.
func retryAfterSeconds(d time.Duration) int64 {
	secs := int64(math.Ceil(d.Seconds()))
	if secs < 1 {
		return 1
	}

	return secs
}

func requestPath(ctx huma.Context) string {
	if op := ctx.Operation(); op != nil && op.Path != "" {
		return op.Path
	}

	u := ctx.URL()

	return u.Path
}

// publishDenial emits a denial event. Fire-and-forget: a publish failure is
// logged and never affects the response.
func publishDenial(
	ctx huma.Context,
	publish messaging.Publish[audit.DenialEvent],
	cfg ratelimit.Config,
	key string,
	retryAfter int64,
	logger *zap.Logger,
) {
	if publish == nil {
		return
	}

	meta := handlers.RequestMetaFromContext(ctx.Context())

	event := &audit.DenialEvent{
		EventID:    uuid.NewString(),
		RequestID:  meta.RequestID,
		ClientKey:  key,
		ClientIP:   ClientIP(ctx),
		Method:     ctx.Method(),
		Path:       requestPath(ctx),
		Limit:      cfg.Limit,
		Window:     cfg.Window.String(),
		RetryAfter: retryAfter,
		DeniedAt:   time.Now(),
	}

	if err := publish(event); err != nil {
		logger.Error("failed to publish denial event", zap.Error(err))
	}
}

func writeDenied(ctx huma.Context, cfg ratelimit.Config, retryAfter int64, logger *zap.Logger) {
	body := deniedResponse{
		Error:      "Rate limit exceeded",
		Message:    fmt.Sprintf("Too many requests: limit is %d per %s", cfg.Limit, cfg.Window),
		RetryAfter: retryAfter,
		Limit:      cfg.Limit,
		Window:     cfg.Window.String(),
	}

	ctx.SetHeader("Content-Type", "application/json")
	ctx.SetStatus(http.StatusTooManyRequests)

	if err := json.NewEncoder(ctx.BodyWriter()).Encode(body); err != nil {
		logger.Error("failed to write rate limit response", zap.Error(err))
	}
}
