package events

import (
	"context"
	"encoding/json"
	"fmt"

	"course-commerce/internal/ws"
)

// HubPublisher pushes events to connected websocket dashboards.
type HubPublisher struct {
	hub *ws.Hub
}

func NewHubPublisher(hub *ws.Hub) *HubPublisher {
	return &HubPublisher{hub: hub}
}

func (p *HubPublisher) Publish(_ context.Context, event Event) error {
	payload := map[string]interface{}{
		"type":    "transaction_update",
		"action":  event.Type,
		"order":   event,
		"message": fmt.Sprintf("Order %s is now %s", event.OrderID, event.Status),
	}
	msg, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	p.hub.Send(msg)
	return nil
}
