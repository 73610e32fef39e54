package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/Alexistodj124/kiarasoftwareback/internal/kiara/models"
	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"
)

// MockKafkaWriter implements KafkaWriter for testing
type MockKafkaWriter struct {
	mock.Mock
}

func (m *MockKafkaWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	args := m.Called(ctx, msgs)
	return args.Error(0)
}

func (m *MockKafkaWriter) Close() error {
	args := m.Called()
	return args.Error(0)
}

func testOrder() *models.Order {
	return &models.Order{
		ID:     7,
		Codigo: "ORD-001",
		Fecha:  time.Date(2025, 11, 10, 10, 10, 0, 0, time.UTC),
		Items: []models.OrderItem{
			{Cantidad: 2, PrecioUnitario: decimal.RequireFromString("25.00")},
		},
	}
}

func TestNewEvent(t *testing.T) {
	order := testOrder()
	event := NewEvent(OrderCreated, order)

	assert.NotEmpty(t, event.ID)
	assert.Equal(t, OrderCreated, event.Type)
	assert.Equal(t, uint(7), event.Order.ID)
	assert.Equal(t, "50.00", event.Order.Total)
	assert.Equal(t, 1, event.Order.Items)

	order.Codigo = "CHANGED"
	assert.Equal(t, "ORD-001", event.Order.Codigo)
}

func TestProducer_Produce(t *testing.T) {
	t.Run("successful produce", func(t *testing.T) {
		producer := &Producer{
			events: make(chan Event, 1),
			logger: zaptest.NewLogger(t),
		}

		producer.Produce(OrderCreated, testOrder())

		assert.Equal(t, 1, len(producer.events))
	})

	t.Run("dropped event when queue full", func(t *testing.T) {
		core, recorded := observer.New(zap.WarnLevel)
		producer := &Producer{
			events: make(chan Event, 1),
			logger: zap.New(core),
		}

		producer.Produce(OrderCreated, testOrder())
		producer.Produce(OrderUpdated, testOrder())

		assert.Equal(t, 1, recorded.FilterMessage("Kafka producer queue full, dropping event").Len())
		assert.Equal(t, 1, recorded.FilterField(zap.Uint("order_id", 7)).Len())
	})
}

func TestProducer_SendEvent(t *testing.T) {
	mockWriter := new(MockKafkaWriter)
	producer := &Producer{
		writer: mockWriter,
		logger: zaptest.NewLogger(t),
	}
	event := NewEvent(OrderCreated, testOrder())

	t.Run("successful send", func(t *testing.T) {
		mockWriter.On("WriteMessages", mock.Anything, mock.Anything).Return(nil).Once()

		producer.sendEvent(context.Background(), event)

		mockWriter.AssertCalled(t, "WriteMessages", mock.Anything, []kafka.Message{
			{
				Key:     []byte("7"),
				Value:   mustMarshal(event),
				Headers: []kafka.Header{{Key: "event_type", Value: []byte(OrderCreated)}},
			},
		})
	})

	t.Run("serialization error", func(t *testing.T) {
		core, recorded := observer.New(zap.ErrorLevel)
		producer.logger = zap.New(core)

		oldMarshal := jsonMarshal
		jsonMarshal = func(_ interface{}) ([]byte, error) {
			return nil, errors.New("mock marshal error")
		}
		defer func() { jsonMarshal = oldMarshal }()

		producer.sendEvent(context.Background(), event)

		assert.Equal(t, 1, recorded.FilterMessage("Failed to serialize event").Len())
	})

	t.Run("write error", func(t *testing.T) {
		core, recorded := observer.New(zap.ErrorLevel)
		producer.logger = zap.New(core)
		mockWriter.ExpectedCalls = nil
		mockWriter.On("WriteMessages", mock.Anything, mock.Anything).Return(errors.New("kafka error"))

		producer.sendEvent(context.Background(), event)

		assert.Equal(t, 1, recorded.FilterMessage("Failed to produce event").Len())
	})
}

func TestProducer_CloseFlushesQueue(t *testing.T) {
	mockWriter := new(MockKafkaWriter)
	mockWriter.On("WriteMessages", mock.Anything, mock.Anything).Return(nil)
	mockWriter.On("Close").Return(nil)

	producer := newProducer(mockWriter, zaptest.NewLogger(t), 10)
	producer.Produce(OrderCreated, testOrder())
	producer.Produce(OrderDeleted, testOrder())

	producer.Close()

	mockWriter.AssertNumberOfCalls(t, "WriteMessages", 2)
	mockWriter.AssertCalled(t, "Close")
}

func TestNopProducer(t *testing.T) {
	assert.NotPanics(t, func() {
		var p NopProducer
		p.Produce(OrderCreated, testOrder())
		p.Close()
	})
}

func mustMarshal(event Event) []byte {
	data, _ := json.Marshal(event)
	return data
}

func TestEventJSONShape(t *testing.T) {
	data := mustMarshal(NewEvent(OrderDeleted, testOrder()))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "orden_eliminada", decoded["type"])
	assert.Equal(t, "ORD-001", decoded["orden"].(map[string]any)["codigo"])
}
