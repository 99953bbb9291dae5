package handlers_test

import (
	"context"
	"testing"

	"github.com/serroba/admission-gate/internal/handlers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestDemoHandler_Ping(t *testing.T) {
	h := handlers.NewDemoHandler(zap.NewNop())

	ctx := handlers.ContextWithRequestMeta(context.Background(), handlers.RequestMeta{
		RequestID: "req-1",
	})

	resp, err := h.Ping(ctx, nil)

	require.NoError(t, err)
	assert.Equal(t, "pong", resp.Body.Message)
	assert.Equal(t, "req-1", resp.Body.RequestID)
	assert.False(t, resp.Body.Time.IsZero())
}

func TestDemoHandler_Echo(t *testing.T) {
	h := handlers.NewDemoHandler(zap.NewNop())

	ctx := handlers.ContextWithRequestMeta(context.Background(), handlers.RequestMeta{
		ClientIP: "203.0.113.7",
	})

	req := &handlers.EchoRequest{}
	req.Body.Message = "hello"

	resp, err := h.Echo(ctx, req)

	require.NoError(t, err)
	assert.Equal(t, "hello", resp.Body.Message)
	assert.Equal(t, "203.0.113.7", resp.Body.ClientIP)
}

func TestRequestMetaContextRoundTrip(t *testing.T) {
	meta := handlers.RequestMeta{
		RequestID: "req-1",
		ClientIP:  "203.0.113.7",
		UserAgent: "TestAgent/1.0",
		Referrer:  "https://example.com",
	}

	ctx := handlers.ContextWithRequestMeta(context.Background(), meta)

	assert.Equal(t, meta, handlers.RequestMetaFromContext(ctx))
}
