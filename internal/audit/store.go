package audit

import (
	"context"

	"github.com/serroba/admission-gate/internal/messaging"
)

// Store defines the interface for persisting denial events.
type Store interface {
	SaveDenial(ctx context.Context, event *DenialEvent) error
}

// NewDenialHandler returns a messaging handler that persists denial events to
// the store.
func NewDenialHandler(store Store) messaging.Handler[DenialEvent] {
	return func(ctx context.Context, event *DenialEvent) error {
		return store.SaveDenial(ctx, event)
	}
}
