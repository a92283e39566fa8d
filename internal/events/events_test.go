package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTaskEvent(t *testing.T) {
	payload := StatusChangedPayload{
		TaskID:    uuid.New(),
		ProjectID: uuid.New(),
		OldStatus: "Pending",
		NewStatus: "In Progress",
		ActorID:   uuid.New(),
	}

	event, err := NewTaskEvent(EventTaskStatusChanged, payload)

	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, event.ID)
	assert.Equal(t, EventTaskStatusChanged, event.Type)
	assert.NotNil(t, event.Payload)
	assert.WithinDuration(t, time.Now(), event.CreatedAt, 2*time.Second)

	// Verify payload was correctly serialized
	var decoded StatusChangedPayload
	err = json.Unmarshal(event.Payload, &decoded)
	require.NoError(t, err)
	assert.Equal(t, payload.TaskID, decoded.TaskID)
	assert.Equal(t, payload.NewStatus, decoded.NewStatus)
}

func TestUnmarshalPayload(t *testing.T) {
	original := RegeneratedPayload{
		ProjectID:      uuid.New(),
		CreatedCount:   4,
		PreservedCount: 2,
		TotalCount:     6,
	}

	event, err := NewTaskEvent(EventTasksRegenerated, original)
	require.NoError(t, err)

	var decoded RegeneratedPayload
	require.NoError(t, event.UnmarshalPayload(&decoded))
	assert.Equal(t, original, decoded)
}

// MockEventHandler implements the EventHandler interface for testing
type MockEventHandler struct {
	// The last event received by this handler
	LastEvent *TaskEvent
	// Error to return from HandleEvent
	HandlerError error
	// Count of events handled
	HandledCount int
}

// HandleEvent implements the EventHandler interface
func (h *MockEventHandler) HandleEvent(ctx context.Context, event *TaskEvent) error {
	h.LastEvent = event
	h.HandledCount++
	return h.HandlerError
}

func TestEventHandler(t *testing.T) {
	handler := &MockEventHandler{}

	event, err := NewTaskEvent(EventTaskAssigned, map[string]string{"key": "value"})
	require.NoError(t, err)

	err = handler.HandleEvent(context.Background(), event)
	assert.NoError(t, err)
	assert.Equal(t, 1, handler.HandledCount)
	assert.Equal(t, event, handler.LastEvent)

	// Test error case
	expectedErr := errors.New("handler error")
	handler.HandlerError = expectedErr
	err = handler.HandleEvent(context.Background(), event)
	assert.Equal(t, expectedErr, err)
	assert.Equal(t, 2, handler.HandledCount)
}
