package events

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/dannygauntletai/autocrm/internal/model"
)

// Event names carried in the "event" field of each message.
const (
	TicketCreated  = "ticket.created"
	TicketUpdated  = "ticket.updated"
	CommentCreated = "comment.created"
)

// TicketEventProducer is what handlers depend on; the webhook processor and
// HTTP handlers publish through it, tests swap in a recorder.
type TicketEventProducer interface {
	ProduceTicketEvent(ctx context.Context, event string, payload map[string]interface{})
}

// Producer writes ticket events to a Kafka topic. Publishing is best-effort:
// failures are logged and never propagate to the API response.
type Producer struct {
	writer *kafka.Writer
	topic  string
}

// NewProducer creates the producer. With no brokers or an empty topic every
// method is a no-op.
func NewProducer(brokers []string, topic string) *Producer {
	if len(brokers) == 0 || topic == "" {
		return &Producer{}
	}
	return &Producer{
		topic: topic,
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.LeastBytes{},
			BatchTimeout: 10 * time.Millisecond,
		},
	}
}

func (p *Producer) ProduceTicketEvent(ctx context.Context, event string, payload map[string]interface{}) {
	if p.writer == nil {
		return
	}
	msg := map[string]interface{}{"event": event}
	for k, v := range payload {
		msg[k] = v
	}
	body, err := json.Marshal(msg)
	if err != nil {
		log.Printf("events: marshal ticket event: %v", err)
		return
	}
	if err := p.writer.WriteMessages(ctx, kafka.Message{Value: body}); err != nil {
		log.Printf("events: write ticket event: %v", err)
	}
}

func (p *Producer) Close() error {
	if p.writer == nil {
		return nil
	}
	return p.writer.Close()
}

// TicketPayload builds the standard event payload for a ticket.
func TicketPayload(t *model.Ticket) map[string]interface{} {
	if t == nil {
		return nil
	}
	return map[string]interface{}{
		"ticket_id":       t.ID,
		"subject":         t.Subject,
		"status":          string(t.Status),
		"priority":        string(t.Priority),
		"category":        string(t.Category),
		"requester_email": t.RequesterEmail,
	}
}

// CommentPayload builds the standard event payload for a comment.
func CommentPayload(c *model.Comment) map[string]interface{} {
	if c == nil {
		return nil
	}
	return map[string]interface{}{
		"comment_id":    c.ID,
		"ticket_id":     c.TicketID,
		"is_internal":   c.IsInternal,
		"is_from_email": c.IsFromEmail,
	}
}
