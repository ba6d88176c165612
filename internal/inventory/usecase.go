package inventory

import (
	"context"

	"github.com/google/uuid"

	"github.com/bookstock/inventory-service/internal/inventory/dto"
)

// UseCase exposes the stock-side operations: derived accounting plus the
// ledger writers (receive, adjust, transfer). Reservation-side mutations
// live in the reservation engine.
type UseCase interface {
	// GetSummary derives {on_hand, reserved, available} for the pair.
	GetSummary(ctx context.Context, branchID, itemID uuid.UUID) (*dto.InventorySummary, error)

	ReceiveStock(ctx context.Context, input *dto.ReceiveStockInput) (*dto.InventorySummary, error)

	// AdjustStock appends a manual correction paired with its audit row.
	// Adjustments that would push on-hand below reserved are rejected.
	AdjustStock(ctx context.Context, input *dto.AdjustStockInput) (*dto.InventorySummary, error)

	// TransferStock moves available units between branches: transfer_out
	// and transfer_in land in one transaction.
	TransferStock(ctx context.Context, input *dto.TransferStockInput) (*dto.TransferSummary, error)
}

// Allocator promotes waiting reservations once stock arrives. Implemented
// by the reservation engine; declared here so this package does not depend
// on it.
type Allocator interface {
	AllocateQueued(ctx context.Context, branchID, itemID uuid.UUID) (int, error)
	ActivateHolds(ctx context.Context, branchID, itemID uuid.UUID) (int, error)
}
