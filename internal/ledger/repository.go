package ledger

import (
	"context"

	"github.com/google/uuid"

	"github.com/bookstock/inventory-service/internal/model"
	"github.com/bookstock/inventory-service/pkg/postgres"
)

// Repository is the append-only stock ledger. There is deliberately no
// update or delete: corrections are compensating entries. Callers wrap
// appends and the reservation mutations they belong to in one transaction
// by passing the same Querier.
type Repository interface {
	Append(ctx context.Context, q postgres.Querier, entry *model.StockLedger) (int64, error)

	// SumPhysical derives on-hand: the signed sum of physical event kinds
	// for the pair.
	SumPhysical(ctx context.Context, q postgres.Querier, branchID, itemID uuid.UUID) (int, error)

	ListByPair(ctx context.Context, q postgres.Querier, branchID, itemID uuid.UUID, limit int) ([]model.StockLedger, error)

	InsertAdjustment(ctx context.Context, q postgres.Querier, adj *model.Adjustment) (uuid.UUID, error)
}
