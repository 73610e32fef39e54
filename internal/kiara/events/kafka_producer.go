// Package events publishes order lifecycle events to Kafka and reads them
// back for the event tail command.
package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/Alexistodj124/kiarasoftwareback/internal/kiara/models"
	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"github.com/spf13/cast"
	"go.uber.org/zap"
)

var jsonMarshal = json.Marshal

type EventType string

const (
	OrderCreated EventType = "orden_creada"
	OrderUpdated EventType = "orden_actualizada"
	OrderDeleted EventType = "orden_eliminada"
)

// OrderPayload is the order snapshot carried by an event.
type OrderPayload struct {
	ID         uint      `json:"id"`
	Codigo     string    `json:"codigo"`
	Fecha      time.Time `json:"fecha"`
	ClienteID  uint      `json:"cliente_id"`
	EmpleadaID uint      `json:"empleada_id"`
	Items      int       `json:"items"`
	Total      string    `json:"total"`
}

type Event struct {
	ID         string       `json:"id"`
	Type       EventType    `json:"type"`
	OccurredAt time.Time    `json:"occurred_at"`
	Order      OrderPayload `json:"orden"`
}

// NewEvent snapshots the order so later mutations do not leak into the
// queued event.
func NewEvent(eventType EventType, order *models.Order) Event {
	return Event{
		ID:         uuid.NewString(),
		Type:       eventType,
		OccurredAt: time.Now().UTC(),
		Order: OrderPayload{
			ID:         order.ID,
			Codigo:     order.Codigo,
			Fecha:      order.Fecha.UTC(),
			ClienteID:  order.ClienteID,
			EmpleadaID: order.EmpleadaID,
			Items:      len(order.Items),
			Total:      order.Total().StringFixed(2),
		},
	}
}

type KafkaWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type Producer struct {
	writer    KafkaWriter
	events    chan Event
	logger    *zap.Logger
	closeChan chan struct{}
	done      chan struct{}
}

const queueSize = 1000

func NewProducer(brokers []string, topic string, logger *zap.Logger) (*Producer, error) {
	conn, err := kafka.Dial("tcp", brokers[0])
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	err = conn.CreateTopics(kafka.TopicConfig{
		Topic:             topic,
		NumPartitions:     3,
		ReplicationFactor: 1,
	})
	if err != nil {
		logger.Warn("failed to create topic (may already exist)", zap.Error(err))
	}

	return newProducer(&kafka.Writer{
		Addr:     kafka.TCP(brokers...),
		Balancer: &kafka.Hash{},
		Topic:    topic,
	}, logger, queueSize), nil
}

func newProducer(writer KafkaWriter, logger *zap.Logger, size int) *Producer {
	p := &Producer{
		writer:    writer,
		events:    make(chan Event, size),
		logger:    logger.Named("kafka_producer"),
		closeChan: make(chan struct{}),
		done:      make(chan struct{}),
	}
	go p.eventLoop()
	return p
}

// Produce queues the event and never blocks the caller.
func (p *Producer) Produce(eventType EventType, order *models.Order) {
	select {
	case p.events <- NewEvent(eventType, order):
	default:
		p.logger.Warn("Kafka producer queue full, dropping event",
			zap.String("event_type", string(eventType)),
			zap.Uint("order_id", order.ID),
		)
	}
}

func (p *Producer) eventLoop() {
	defer close(p.done)
	for {
		select {
		case event := <-p.events:
			p.sendEvent(context.Background(), event)
		case <-p.closeChan:
			p.drain()
			return
		}
	}
}

// drain flushes whatever is still queued when Close is called.
func (p *Producer) drain() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	for {
		select {
		case event := <-p.events:
			p.sendEvent(ctx, event)
		default:
			return
		}
	}
}

func (p *Producer) sendEvent(ctx context.Context, event Event) {
	value, err := jsonMarshal(event)
	if err != nil {
		p.logger.Error("Failed to serialize event",
			zap.Error(err),
			zap.Uint("order_id", event.Order.ID),
		)
		return
	}
	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(cast.ToString(event.Order.ID)),
		Value: value,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(event.Type)},
		},
	})
	if err != nil {
		p.logger.Error("Failed to produce event",
			zap.Error(err),
			zap.String("event_type", string(event.Type)),
			zap.Uint("order_id", event.Order.ID),
		)
	}
}

func (p *Producer) Close() {
	close(p.closeChan)
	<-p.done
	if err := p.writer.Close(); err != nil {
		p.logger.Error("Failed to close Kafka writer", zap.Error(err))
	}
}

// NopProducer discards events. It is used when no brokers are configured.
type NopProducer struct{}

func (NopProducer) Produce(EventType, *models.Order) {}

func (NopProducer) Close() {}
