package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/mamadbah2/papertrail/internal/domain/models"
)

// ErrNoTopic is returned when a kafka publisher is built without a topic.
var ErrNoTopic = errors.New("topic is required")

// Publisher announces ledger rows to downstream consumers.
type Publisher interface {
	PublishTransaction(ctx context.Context, rec models.TransactionRecord) error
	Close() error
}

// TransactionEvent is the wire payload for one recorded outcome.
type TransactionEvent struct {
	TransactionID int64     `json:"transaction_id"`
	Status        string    `json:"status"`
	CustomerName  string    `json:"customer_name"`
	PaperType     string    `json:"paper_type"`
	Quantity      int       `json:"quantity"`
	TotalPrice    float64   `json:"total_price"`
	CreatedAt     string    `json:"created_at"`
	PublishedAt   time.Time `json:"published_at"`
}

// NopPublisher discards every event.
type NopPublisher struct{}

func (NopPublisher) PublishTransaction(context.Context, models.TransactionRecord) error { return nil }
func (NopPublisher) Close() error { return nil }

// Writer is the subset of kafka.Writer used by KafkaPublisher.
type Writer interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher writes one message per transaction, keyed by paper type so
// events for the same item stay ordered within a partition.
type KafkaPublisher struct {
	writer Writer
	topic  string
	now    func() time.Time
}

// NewKafkaPublisher builds a publisher writing to topic on brokers.
func NewKafkaPublisher(brokers []string, topic string) (*KafkaPublisher, error) {
	if topic == "" {
		return nil, ErrNoTopic
	}
	if len(brokers) == 0 {
		return nil, errors.New("at least one kafka broker is required")
	}

	// Publishing runs under the per-item ledger lock, so each message is
	// flushed on its own.
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		BatchSize:    1,
		BatchTimeout: 10 * time.Millisecond,
	}
	return NewKafkaPublisherWithWriter(writer, topic), nil
}

// NewKafkaPublisherWithWriter wraps an existing writer.
func NewKafkaPublisherWithWriter(writer Writer, topic string) *KafkaPublisher {
	return &KafkaPublisher{writer: writer, topic: topic, now: time.Now}
}

// WithNow overrides the time provider for testing purposes.
func (p *KafkaPublisher) WithNow(now func() time.Time) *KafkaPublisher {
	if now != nil {
		p.now = now
	}
	return p
}

func (p *KafkaPublisher) PublishTransaction(ctx context.Context, rec models.TransactionRecord) error {
	event := TransactionEvent{
		TransactionID: rec.ID,
		Status:        string(rec.Status),
		CustomerName:  rec.CustomerName,
		PaperType:     rec.PaperType,
		Quantity:      rec.Quantity,
		TotalPrice:    rec.TotalPrice,
		CreatedAt:     rec.CreatedAt.Format(models.DateLayout),
		PublishedAt:   p.now().UTC(),
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode transaction event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(rec.PaperType),
		Value: payload,
		Time:  event.PublishedAt,
		Headers: []kafka.Header{
			{Key: "status", Value: []byte(rec.Status)},
		},
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("write kafka message to %s: %w", p.topic, err)
	}
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
