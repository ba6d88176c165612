package listener

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/bookstock/inventory-service/internal/inventory"
	"github.com/bookstock/inventory-service/internal/inventory/dto"
	"github.com/bookstock/inventory-service/pkg/broker"
	"github.com/bookstock/inventory-service/pkg/logger"
)

// ReceiptListener consumes stock receipt events published by the
// procurement side and feeds them into the ledger.
type ReceiptListener struct {
	consumer *broker.KafkaConsumer
	uc       inventory.UseCase
	logger   logger.Logger
}

func NewReceiptListener(consumer *broker.KafkaConsumer, uc inventory.UseCase, log logger.Logger) *ReceiptListener {
	return &ReceiptListener{
		consumer: consumer,
		uc:       uc,
		logger:   log,
	}
}

func (l *ReceiptListener) Start(ctx context.Context) {
	l.logger.Info("starting stock receipts listener")
	for {
		select {
		case <-ctx.Done():
			l.logger.Info("stopping stock receipts listener")
			return
		default:
			msg, err := l.consumer.ReadMessage(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				l.logger.Error("failed to read kafka message", zap.Error(err))
				time.Sleep(1 * time.Second)
				continue
			}
			l.processMessage(ctx, msg.Value)
		}
	}
}

type StockReceivedEvent struct {
	EventID   string         `json:"event_id"`
	EventType string         `json:"event_type"`
	Payload   ReceiptPayload `json:"payload"`
	Timestamp time.Time      `json:"timestamp"`
}

type ReceiptPayload struct {
	ReceiptID string        `json:"receipt_id"`
	BranchID  string        `json:"branch_id"`
	Lines     []ReceiptLine `json:"lines"`
}

type ReceiptLine struct {
	ItemID string `json:"item_id"`
	Qty    int    `json:"qty"`
}

func (l *ReceiptListener) processMessage(ctx context.Context, value []byte) {
	var event StockReceivedEvent
	if err := json.Unmarshal(value, &event); err != nil {
		l.logger.Error("failed to unmarshal event", zap.Error(err))
		return
	}

	if event.EventType != "StockReceived" {
		return
	}

	branchID, err := uuid.Parse(event.Payload.BranchID)
	if err != nil {
		l.logger.Error("invalid branch_id in StockReceived event",
			zap.String("branch_id", event.Payload.BranchID), zap.Error(err))
		return
	}

	var refID *uuid.UUID
	if id, err := uuid.Parse(event.Payload.ReceiptID); err == nil {
		refID = &id
	}

	l.logger.Info("processing StockReceived event",
		zap.String("receipt_id", event.Payload.ReceiptID),
		zap.Int("lines", len(event.Payload.Lines)))

	for _, line := range event.Payload.Lines {
		itemID, err := uuid.Parse(line.ItemID)
		if err != nil {
			l.logger.Error("invalid item_id in receipt line",
				zap.String("receipt_id", event.Payload.ReceiptID),
				zap.String("item_id", line.ItemID), zap.Error(err))
			continue
		}

		input := &dto.ReceiveStockInput{
			BranchID: branchID,
			ItemID:   itemID,
			Qty:      line.Qty,
			RefID:    refID,
		}
		if _, err := l.uc.ReceiveStock(ctx, input); err != nil {
			l.logger.Error("failed to receive stock for receipt line",
				zap.String("receipt_id", event.Payload.ReceiptID),
				zap.String("item_id", line.ItemID),
				zap.Error(err),
			)
		}
	}
}
