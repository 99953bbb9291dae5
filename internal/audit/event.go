package audit

import "time"

// TopicDenied is the topic denial events are published on.
const TopicDenied = "ratelimit.denied"

// DenialEvent records one rejected request. It is emitted by the admission
// gate on every 429 and consumed by the auditor for operator visibility.
type DenialEvent struct {
	EventID    string    `json:"eventId"`
	RequestID  string    `json:"requestId,omitempty"`
	ClientKey  string    `json:"clientKey"`
	ClientIP   string    `json:"clientIp,omitempty"`
	Method     string    `json:"method"`
	Path       string    `json:"path"`
	Limit      int       `json:"limit"`
	Window     string    `json:"window"`
	RetryAfter int64     `json:"retryAfter"` // seconds
	DeniedAt   time.Time `json:"deniedAt"`
}
