// webhookd/events.go
package main

import (
	"encoding/json"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
)

const (
	subjectInboundMessage  = "luca.webhook.in.message"
	subjectOutboundMessage = "luca.webhook.out.message"
)

// MessageEvent is the envelope published to NATS for each handled message.
type MessageEvent struct {
	EventID   string    `json:"event_id"`
	Direction string    `json:"direction"` // "in" or "out"
	Sender    string    `json:"sender,omitempty"`
	Recipient string    `json:"recipient,omitempty"`
	Type      string    `json:"type,omitempty"`
	Text      string    `json:"text"`
	Delivered *bool     `json:"delivered,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// EventPublisher mirrors handled messages onto NATS subjects for downstream
// consumers. A nil publisher is a no-op, and publish failures are logged and
// swallowed; event publication is never in the delivery path.
type EventPublisher struct {
	nc *nats.Conn
}

func NewEventPublisher(nc *nats.Conn) *EventPublisher {
	return &EventPublisher{nc: nc}
}

// PublishInbound publishes an extracted inbound message.
func (p *EventPublisher) PublishInbound(msg InboundMessage) {
	p.publish(subjectInboundMessage, MessageEvent{
		EventID:   uuid.NewString(),
		Direction: "in",
		Sender:    msg.SenderID,
		Type:      msg.Type,
		Text:      msg.Text,
		Timestamp: time.Now().UTC(),
	})
}

// PublishOutbound publishes an attempted outbound send and whether the
// messaging API accepted it.
func (p *EventPublisher) PublishOutbound(to, body string, delivered bool) {
	p.publish(subjectOutboundMessage, MessageEvent{
		EventID:   uuid.NewString(),
		Direction: "out",
		Recipient: to,
		Type:      "text",
		Text:      body,
		Delivered: &delivered,
		Timestamp: time.Now().UTC(),
	})
}

func (p *EventPublisher) publish(subject string, event MessageEvent) {
	if p == nil || p.nc == nil {
		return
	}
	data, err := json.Marshal(event)
	if err != nil {
		log.Printf("Error marshalling event for %s: %v", subject, err)
		return
	}
	if err := p.nc.Publish(subject, data); err != nil {
		log.Printf("Error publishing event to %s: %v", subject, err)
	}
}
