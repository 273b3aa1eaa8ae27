package kafka

import (
	"context"
	"encoding/json"

	"github.com/segmentio/kafka-go"

	"ticketly/internal/config"
	"ticketly/internal/models"
)

// Publisher is what the ledger needs from the eventing layer.
type Publisher interface {
	PublishTicketBooked(ctx context.Context, ticket models.Ticket) error
	PublishTicketCancelled(ctx context.Context, ticket models.Ticket) error
	PublishTicketCheckedIn(ctx context.Context, ticket models.Ticket) error
}

type Producer struct {
	booked    *kafka.Writer
	cancelled *kafka.Writer
	checkedIn *kafka.Writer
}

func NewProducer(brokers []string, topics config.TopicConfig) *Producer {
	newWriter := func(topic string) *kafka.Writer {
		return kafka.NewWriter(kafka.WriterConfig{
			Brokers: brokers,
			Topic:   topic,
		})
	}
	return &Producer{
		booked:    newWriter(topics.TicketBooked),
		cancelled: newWriter(topics.TicketCancelled),
		checkedIn: newWriter(topics.TicketCheckedIn),
	}
}

func (p *Producer) publish(ctx context.Context, w *kafka.Writer, ticket models.Ticket) error {
	msgBytes, err := json.Marshal(ticket)
	if err != nil {
		return err
	}
	return w.WriteMessages(ctx, kafka.Message{
		Key:   []byte(ticket.EventID),
		Value: msgBytes,
	})
}

func (p *Producer) PublishTicketBooked(ctx context.Context, ticket models.Ticket) error {
	return p.publish(ctx, p.booked, ticket)
}

func (p *Producer) PublishTicketCancelled(ctx context.Context, ticket models.Ticket) error {
	return p.publish(ctx, p.cancelled, ticket)
}

func (p *Producer) PublishTicketCheckedIn(ctx context.Context, ticket models.Ticket) error {
	return p.publish(ctx, p.checkedIn, ticket)
}

func (p *Producer) Close() error {
	for _, w := range []*kafka.Writer{p.booked, p.cancelled, p.checkedIn} {
		if err := w.Close(); err != nil {
			return err
		}
	}
	return nil
}

// NoopPublisher is used when Kafka is disabled and in tests.
type NoopPublisher struct{}

func (NoopPublisher) PublishTicketBooked(context.Context, models.Ticket) error    { return nil }
func (NoopPublisher) PublishTicketCancelled(context.Context, models.Ticket) error { return nil }
func (NoopPublisher) PublishTicketCheckedIn(context.Context, models.Ticket) error { return nil }
