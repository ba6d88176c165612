package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/bookstock/inventory-service/internal/apperrors"
	"github.com/bookstock/inventory-service/internal/inventory"
	"github.com/bookstock/inventory-service/internal/inventory/dto"
	"github.com/bookstock/inventory-service/internal/ledger"
	"github.com/bookstock/inventory-service/internal/model"
	"github.com/bookstock/inventory-service/internal/reservation"
	"github.com/bookstock/inventory-service/pkg/cache"
	"github.com/bookstock/inventory-service/pkg/logger"
	"github.com/bookstock/inventory-service/pkg/postgres"
)

const (
	refTypeReceipt    = "receipt"
	refTypeAdjustment = "adjustment"
	refTypeTransfer   = "transfer"
)

type inventoryUseCase struct {
	db        postgres.Querier
	txm       postgres.TxRunner
	ledger    ledger.Repository
	resRepo   reservation.Repository
	allocator inventory.Allocator
	cache     *cache.RedisClient
	logger    logger.Logger
	cacheTTL  time.Duration

	now func() time.Time
}

func NewInventoryUseCase(
	db postgres.Querier,
	txm postgres.TxRunner,
	ledgerRepo ledger.Repository,
	resRepo reservation.Repository,
	allocator inventory.Allocator,
	redis *cache.RedisClient,
	log logger.Logger,
	cacheTTL time.Duration,
) inventory.UseCase {
	return &inventoryUseCase{
		db:        db,
		txm:       txm,
		ledger:    ledgerRepo,
		resRepo:   resRepo,
		allocator: allocator,
		cache:     redis,
		logger:    log,
		cacheTTL:  cacheTTL,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (uc *inventoryUseCase) GetSummary(ctx context.Context, branchID, itemID uuid.UUID) (*dto.InventorySummary, error) {
	cacheKey := dto.SummaryCacheKey(branchID, itemID)
	if uc.cache != nil {
		var cached dto.InventorySummary
		if hit, err := uc.cache.GetJSON(ctx, cacheKey, &cached); err == nil && hit {
			return &cached, nil
		}
	}

	summary, err := uc.summarize(ctx, uc.db, branchID, itemID)
	if err != nil {
		return nil, err
	}

	if uc.cache != nil {
		if err := uc.cache.SetJSON(ctx, cacheKey, summary, uc.cacheTTL); err != nil {
			uc.logger.Warn("failed to cache inventory summary", zap.Error(err))
		}
	}
	return summary, nil
}

func (uc *inventoryUseCase) summarize(ctx context.Context, q postgres.Querier, branchID, itemID uuid.UUID) (*dto.InventorySummary, error) {
	onHand, err := uc.ledger.SumPhysical(ctx, q, branchID, itemID)
	if err != nil {
		return nil, err
	}
	reserved, err := uc.resRepo.ReservedQty(ctx, q, branchID, itemID)
	if err != nil {
		return nil, err
	}
	return &dto.InventorySummary{
		BranchID:  branchID,
		ItemID:    itemID,
		OnHand:    onHand,
		Reserved:  reserved,
		Available: onHand - reserved,
	}, nil
}

func (uc *inventoryUseCase) ReceiveStock(ctx context.Context, input *dto.ReceiveStockInput) (*dto.InventorySummary, error) {
	if input.Qty <= 0 {
		return nil, apperrors.Validationf("qty must be > 0, got %d", input.Qty)
	}

	refType := refTypeReceipt
	err := uc.txm.RunInTx(ctx, func(q postgres.Querier) error {
		_, err := uc.ledger.Append(ctx, q, &model.StockLedger{
			BranchID: input.BranchID,
			ItemID:   input.ItemID,
			Event:    model.EventReceive,
			Qty:      input.Qty,
			RefType:  &refType,
			RefID:    input.RefID,
			At:       uc.now(),
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	uc.afterStockChange(ctx, input.BranchID, input.ItemID)
	return uc.summarize(ctx, uc.db, input.BranchID, input.ItemID)
}

func (uc *inventoryUseCase) AdjustStock(ctx context.Context, input *dto.AdjustStockInput) (*dto.InventorySummary, error) {
	if input.Delta == 0 {
		return nil, apperrors.Validationf("delta must be non-zero")
	}
	reason := input.Reason
	if reason == "" {
		reason = "manual_adjustment"
	}

	err := uc.txm.RunInTx(ctx, func(q postgres.Querier) error {
		// Negative adjustments race with reservation creation on the same
		// availability read, so take the pair lock.
		if err := uc.resRepo.AcquirePairLock(ctx, q, input.BranchID, input.ItemID); err != nil {
			return err
		}

		onHand, err := uc.ledger.SumPhysical(ctx, q, input.BranchID, input.ItemID)
		if err != nil {
			return err
		}
		reserved, err := uc.resRepo.ReservedQty(ctx, q, input.BranchID, input.ItemID)
		if err != nil {
			return err
		}
		if newOnHand := onHand + input.Delta; newOnHand < reserved {
			return apperrors.Validationf("adjustment would make on_hand %d below reserved %d", newOnHand, reserved)
		}

		adjID, err := uc.ledger.InsertAdjustment(ctx, q, &model.Adjustment{
			BranchID:    input.BranchID,
			ItemID:      input.ItemID,
			DeltaOnHand: input.Delta,
			Reason:      reason,
			Actor:       input.Actor,
		})
		if err != nil {
			return err
		}

		refType := refTypeAdjustment
		_, err = uc.ledger.Append(ctx, q, &model.StockLedger{
			BranchID: input.BranchID,
			ItemID:   input.ItemID,
			Event:    model.EventAdjust,
			Qty:      input.Delta,
			RefType:  &refType,
			RefID:    &adjID,
			At:       uc.now(),
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	if input.Delta > 0 {
		uc.afterStockChange(ctx, input.BranchID, input.ItemID)
	} else {
		uc.invalidateSummary(input.BranchID, input.ItemID)
	}
	return uc.summarize(ctx, uc.db, input.BranchID, input.ItemID)
}

func (uc *inventoryUseCase) TransferStock(ctx context.Context, input *dto.TransferStockInput) (*dto.TransferSummary, error) {
	if input.Qty <= 0 {
		return nil, apperrors.Validationf("qty must be > 0, got %d", input.Qty)
	}
	if input.FromBranchID == input.ToBranchID {
		return nil, apperrors.Validationf("cannot transfer within the same branch")
	}

	err := uc.txm.RunInTx(ctx, func(q postgres.Querier) error {
		if err := uc.resRepo.AcquirePairLock(ctx, q, input.FromBranchID, input.ItemID); err != nil {
			return err
		}

		onHand, err := uc.ledger.SumPhysical(ctx, q, input.FromBranchID, input.ItemID)
		if err != nil {
			return err
		}
		reserved, err := uc.resRepo.ReservedQty(ctx, q, input.FromBranchID, input.ItemID)
		if err != nil {
			return err
		}
		if available := onHand - reserved; available < input.Qty {
			return &apperrors.InsufficientStockError{
				BranchID: input.FromBranchID, ItemID: input.ItemID,
				Requested: input.Qty, Available: available,
			}
		}

		now := uc.now()
		refType := refTypeTransfer
		if _, err := uc.ledger.Append(ctx, q, &model.StockLedger{
			BranchID: input.FromBranchID,
			ItemID:   input.ItemID,
			Event:    model.EventTransferOut,
			Qty:      -input.Qty,
			RefType:  &refType,
			At:       now,
		}); err != nil {
			return err
		}
		_, err = uc.ledger.Append(ctx, q, &model.StockLedger{
			BranchID: input.ToBranchID,
			ItemID:   input.ItemID,
			Event:    model.EventTransferIn,
			Qty:      input.Qty,
			RefType:  &refType,
			At:       now,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	uc.invalidateSummary(input.FromBranchID, input.ItemID)
	uc.afterStockChange(ctx, input.ToBranchID, input.ItemID)

	from, err := uc.summarize(ctx, uc.db, input.FromBranchID, input.ItemID)
	if err != nil {
		return nil, err
	}
	to, err := uc.summarize(ctx, uc.db, input.ToBranchID, input.ItemID)
	if err != nil {
		return nil, err
	}
	return &dto.TransferSummary{From: *from, To: *to}, nil
}

// afterStockChange runs when stock arrived at a pair: drop the cached
// summary and let waiting reservations claim the new units. Promotion
// failures are logged, never surfaced; the next trigger retries.
func (uc *inventoryUseCase) afterStockChange(ctx context.Context, branchID, itemID uuid.UUID) {
	uc.invalidateSummary(branchID, itemID)

	if uc.allocator == nil {
		return
	}
	if _, err := uc.allocator.ActivateHolds(ctx, branchID, itemID); err != nil {
		uc.logger.Warn("hold activation after stock change failed",
			zap.String("branch_id", branchID.String()),
			zap.String("item_id", itemID.String()),
			zap.Error(err))
	}
	if _, err := uc.allocator.AllocateQueued(ctx, branchID, itemID); err != nil {
		uc.logger.Warn("queued allocation after stock change failed",
			zap.String("branch_id", branchID.String()),
			zap.String("item_id", itemID.String()),
			zap.Error(err))
	}
}

func (uc *inventoryUseCase) invalidateSummary(branchID, itemID uuid.UUID) {
	if uc.cache == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := uc.cache.Delete(ctx, dto.SummaryCacheKey(branchID, itemID)); err != nil {
		uc.logger.Warn("failed to invalidate inventory summary cache", zap.Error(err))
	}
}
