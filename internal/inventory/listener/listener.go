package listener

import (
	"context"
	"encoding/json"
	"time"

	"github.com/fekuna/omnipos-stockroom/internal/inventory"
	"github.com/fekuna/omnipos-stockroom/internal/inventory/dto"
	"github.com/fekuna/omnipos-stockroom/pkg/logger"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

const (
	EventStockReceived = "StockReceived"
	EventStockIssued   = "StockIssued"

	systemActor = "system"
)

// MessageReader is satisfied by *broker.KafkaConsumer.
type MessageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
}

type InventoryListener struct {
	consumer MessageReader
	uc       inventory.UseCase
	logger   logger.ZapLogger
	backoff  time.Duration
}

func NewInventoryListener(consumer MessageReader, uc inventory.UseCase, logger logger.ZapLogger) *InventoryListener {
	return &InventoryListener{
		consumer: consumer,
		uc:       uc,
		logger:   logger,
		backoff:  time.Second,
	}
}

func (l *InventoryListener) Start(ctx context.Context) {
	l.logger.Info("Starting stock movement listener")
	for {
		select {
		case <-ctx.Done():
			l.logger.Info("Stopping stock movement listener")
			return
		default:
			msg, err := l.consumer.ReadMessage(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				l.logger.Error("Failed to read kafka message", zap.Error(err))
				time.Sleep(l.backoff)
				continue
			}
			l.processMessage(ctx, msg.Value)
		}
	}
}

type StockMovementEvent struct {
	EventID   string               `json:"event_id"`
	EventType string               `json:"event_type"`
	Payload   StockMovementPayload `json:"payload"`
	Timestamp time.Time            `json:"timestamp"`
}

type StockMovementPayload struct {
	Barcode       string  `json:"barcode"`
	WarehouseName string  `json:"warehouse_name"`
	Quantity      float64 `json:"quantity"`
	ReferenceDoc  string  `json:"reference_doc"`
	Reason        string  `json:"reason"`
}

// processMessage applies one event. Failures are logged; the offset still
// advances so a poison message cannot stall the partition.
func (l *InventoryListener) processMessage(ctx context.Context, value []byte) {
	var event StockMovementEvent
	if err := json.Unmarshal(value, &event); err != nil {
		l.logger.Error("Failed to unmarshal event", zap.Error(err))
		return
	}

	input := &dto.StockMovementInput{
		Barcode:       event.Payload.Barcode,
		WarehouseName: event.Payload.WarehouseName,
		Quantity:      event.Payload.Quantity,
		ReferenceDoc:  event.Payload.ReferenceDoc,
		Reason:        event.Payload.Reason,
		UserID:        systemActor,
	}

	var err error
	switch event.EventType {
	case EventStockReceived:
		_, err = l.uc.Receive(ctx, input)
	case EventStockIssued:
		_, err = l.uc.Issue(ctx, input)
	default:
		return
	}

	if err != nil {
		l.logger.Error("Failed to apply stock movement event",
			zap.String("event_id", event.EventID),
			zap.String("event_type", event.EventType),
			zap.String("barcode", input.Barcode),
			zap.String("warehouse", input.WarehouseName),
			zap.Error(err),
		)
		return
	}
	l.logger.Info("Applied stock movement event",
		zap.String("event_id", event.EventID),
		zap.String("event_type", event.EventType),
	)
}
