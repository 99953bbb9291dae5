package audit_test

import (
	"context"
	"errors"
	"testing"

	"github.com/serroba/admission-gate/internal/audit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockStore struct {
	saved   []*audit.DenialEvent
	saveErr error
}

func (m *mockStore) SaveDenial(_ context.Context, event *audit.DenialEvent) error {
	if m.saveErr != nil {
		return m.saveErr
	}

	m.saved = append(m.saved, event)

	return nil
}

func TestNewDenialHandler(t *testing.T) {
	t.Run("persists the event", func(t *testing.T) {
		store := &mockStore{}
		handler := audit.NewDenialHandler(store)

		event := &audit.DenialEvent{EventID: "evt-1", ClientKey: "abc"}

		err := handler(context.Background(), event)

		require.NoError(t, err)
		require.Len(t, store.saved, 1)
		assert.Equal(t, "evt-1", store.saved[0].EventID)
	})

	t.Run("propagates store failures so the message is redelivered", func(t *testing.T) {
		store := &mockStore{saveErr: errors.New("db down")}
		handler := audit.NewDenialHandler(store)

		err := handler(context.Background(), &audit.DenialEvent{EventID: "evt-1"})

		assert.Error(t, err)
	})
}
