package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/bookstock/inventory-service/internal/model"
	"github.com/bookstock/inventory-service/pkg/postgres"
)

type PGRepository struct{}

func NewPGRepository() *PGRepository {
	return &PGRepository{}
}

func (r *PGRepository) Append(ctx context.Context, q postgres.Querier, entry *model.StockLedger) (int64, error) {
	if entry.At.IsZero() {
		entry.At = time.Now().UTC()
	}

	var id int64
	err := sqlx.GetContext(ctx, q, &id, `
        INSERT INTO stock_ledger (branch_id, item_id, event, qty, ref_type, ref_id, at)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
        RETURNING id
    `, entry.BranchID, entry.ItemID, entry.Event, entry.Qty, entry.RefType, entry.RefID, entry.At)
	if err != nil {
		return 0, errors.Wrap(err, "append stock ledger")
	}
	return id, nil
}

func (r *PGRepository) SumPhysical(ctx context.Context, q postgres.Querier, branchID, itemID uuid.UUID) (int, error) {
	var sum int
	err := sqlx.GetContext(ctx, q, &sum, `
        SELECT COALESCE(SUM(qty), 0)
        FROM stock_ledger
        WHERE branch_id = $1
          AND item_id = $2
          AND event NOT IN ('reserve_hold', 'reserve_release', 'expire')
    `, branchID, itemID)
	if err != nil {
		return 0, errors.Wrap(err, "sum physical ledger")
	}
	return sum, nil
}

func (r *PGRepository) ListByPair(ctx context.Context, q postgres.Querier, branchID, itemID uuid.UUID, limit int) ([]model.StockLedger, error) {
	if limit <= 0 {
		limit = 100
	}

	var rows []model.StockLedger
	err := sqlx.SelectContext(ctx, q, &rows, `
        SELECT id, branch_id, item_id, event, qty, ref_type, ref_id, at
        FROM stock_ledger
        WHERE branch_id = $1 AND item_id = $2
        ORDER BY at DESC, id DESC
        LIMIT $3
    `, branchID, itemID, limit)
	if err != nil {
		return nil, errors.Wrap(err, "list ledger by pair")
	}
	return rows, nil
}

func (r *PGRepository) InsertAdjustment(ctx context.Context, q postgres.Querier, adj *model.Adjustment) (uuid.UUID, error) {
	var id uuid.UUID
	err := sqlx.GetContext(ctx, q, &id, `
        INSERT INTO adjustments (branch_id, item_id, delta_on_hand, reason, actor)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING id
    `, adj.BranchID, adj.ItemID, adj.DeltaOnHand, adj.Reason, adj.Actor)
	if err != nil {
		return uuid.Nil, errors.Wrap(err, "insert adjustment")
	}
	return id, nil
}
