package service

import (
	"context"

	"docuchat-be/internal/websocket"
	"docuchat-be/pkg/events"
	pktNats "docuchat-be/pkg/nats"

	"github.com/google/uuid"
)

// IStreamService relays chat lifecycle events from the bus to connected
// websocket clients, so the UI learns a reply completed or failed without
// polling.
type IStreamService interface {
	Start() error
}

type streamService struct {
	subscriber *pktNats.Subscriber
	hub        *websocket.Hub
}

func NewStreamService(subscriber *pktNats.Subscriber, hub *websocket.Hub) IStreamService {
	return &streamService{
		subscriber: subscriber,
		hub:        hub,
	}
}

func (s *streamService) Start() error {
	return s.subscriber.Subscribe("chat.message.>", "chat-stream-relay", s.relay)
}

func (s *streamService) relay(ctx context.Context, event events.Event) error {
	raw, ok := event.Payload()["user_id"].(string)
	if !ok {
		return nil // not addressed to anyone
	}
	userId, err := uuid.Parse(raw)
	if err != nil {
		return nil
	}

	s.hub.Send(userId, websocket.ChatEvent{
		Type: event.EventType(),
		Data: event.Payload(),
	})
	return nil
}
