package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"go.uber.org/zap"
)

// DemoHandler serves a pair of trivial endpoints that stand in for the
// protected operations behind the admission gate. Real deployments register
// their own handlers; the gate does not care what runs behind it.
type DemoHandler struct {
	logger *zap.Logger
}

// NewDemoHandler creates a new demo handler.
func NewDemoHandler(logger *zap.Logger) *DemoHandler {
	return &DemoHandler{logger: logger}
}

// PingResponse is the response for the ping endpoint.
type PingResponse struct {
	Body struct {
		Message   string    `doc:"Static reply"          example:"pong"             json:"message"`
		RequestID string    `doc:"Assigned request ID"   example:"V1StGXR8Z5jdHi6B" json:"requestId,omitempty"`
		Time      time.Time `doc:"Server time"           json:"time"`
	}
}

// EchoRequest is the request body for the echo endpoint.
type EchoRequest struct {
	Body struct {
		Message string `doc:"Message to echo back" example:"hello" json:"message" maxLength:"1024"`
	}
}

// EchoResponse is the response for the echo endpoint.
type EchoResponse struct {
	Body struct {
		Message  string `doc:"Echoed message"      example:"hello"       json:"message"`
		ClientIP string `doc:"Resolved client IP"  example:"203.0.113.7" json:"clientIp,omitempty"`
	}
}

func (h *DemoHandler) Ping(ctx context.Context, _ *struct{}) (*PingResponse, error) {
	meta := RequestMetaFromContext(ctx)

	resp := &PingResponse{}
	resp.Body.Message = "pong"
	resp.Body.RequestID = meta.RequestID
	resp.Body.Time = time.Now().UTC()

	return resp, nil
}

func (h *DemoHandler) Echo(ctx context.Context, req *EchoRequest) (*EchoResponse, error) {
	meta := RequestMetaFromContext(ctx)

	h.logger.Debug("echo request",
		zap.String("requestId", meta.RequestID),
		zap.String("clientIp", meta.ClientIP),
	)

	resp := &EchoResponse{}
	resp.Body.Message = req.Body.Message
	resp.Body.ClientIP = meta.ClientIP

	return resp, nil
}

// RegisterRoutes registers the demo routes.
func RegisterRoutes(api huma.API, h *DemoHandler) {
	huma.Register(api, huma.Operation{
		Method:      http.MethodGet,
		Path:        "/ping",
		Summary:     "Ping",
		Description: "Returns pong. Exists to exercise the admission gate on a read path.",
		Tags:        []string{"Demo"},
	}, h.Ping)

	huma.Register(api, huma.Operation{
		Method:      http.MethodPost,
		Path:        "/echo",
		Summary:     "Echo",
		Description: "Echoes the request body. Exists to exercise the admission gate on a write path.",
		Tags:        []string{"Demo"},
	}, h.Echo)
}
