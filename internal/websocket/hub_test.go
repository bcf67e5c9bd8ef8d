package websocket

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopLogger struct{}

func (nopLogger) Debug(module, message string, details map[string]interface{}) {}
func (nopLogger) Info(module, message string, details map[string]interface{})  {}
func (nopLogger) Warn(module, message string, details map[string]interface{})  {}
func (nopLogger) Error(module, message string, details map[string]interface{}) {}
func (nopLogger) Sync() error                                                  { return nil }

func (h *Hub) clientCount(userID uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID])
}

func TestSaturatedClientIsDroppedWithoutPanic(t *testing.T) {
	hub := NewHub(nil, nopLogger{})
	go hub.Run()

	userID := uuid.New()
	client := &Client{Hub: hub, UserID: userID, Send: make(chan []byte, 1)}
	hub.register <- client
	require.Eventually(t, func() bool { return hub.clientCount(userID) == 1 },
		time.Second, 5*time.Millisecond)

	event := ChatEvent{
		Type: "message.completed",
		Data: map[string]interface{}{"chat_session_id": uuid.New().String()},
	}

	// First event fills the one-slot buffer, the second one finds it full
	// and drops the client instead of the event.
	hub.Send(userID, event)
	hub.Send(userID, event)

	require.Eventually(t, func() bool { return hub.clientCount(userID) == 0 },
		time.Second, 5*time.Millisecond)

	// The unregister branch is the sole owner of the channel close.
	<-client.Send
	select {
	case _, ok := <-client.Send:
		assert.False(t, ok, "send channel should end up closed")
	case <-time.After(time.Second):
		t.Fatal("send channel was never closed")
	}

	// The hub keeps running after the drop.
	hub.Send(userID, event)
}

func TestSendFansOutToEveryDevice(t *testing.T) {
	hub := NewHub(nil, nopLogger{})
	go hub.Run()

	userID := uuid.New()
	phone := &Client{Hub: hub, UserID: userID, Send: make(chan []byte, 4)}
	laptop := &Client{Hub: hub, UserID: userID, Send: make(chan []byte, 4)}
	hub.register <- phone
	hub.register <- laptop
	require.Eventually(t, func() bool { return hub.clientCount(userID) == 2 },
		time.Second, 5*time.Millisecond)

	hub.Send(userID, ChatEvent{Type: "session.archived", Data: map[string]interface{}{}})

	for _, c := range []*Client{phone, laptop} {
		select {
		case data := <-c.Send:
			assert.Contains(t, string(data), "session.archived")
		case <-time.After(time.Second):
			t.Fatal("device never received the event")
		}
	}
}
