package dto

import "github.com/google/uuid"

type ReceiveStockInput struct {
	BranchID uuid.UUID
	ItemID   uuid.UUID
	Qty      int
	// Optional procurement reference carried onto the ledger row.
	RefID *uuid.UUID
}

type AdjustStockInput struct {
	BranchID uuid.UUID
	ItemID   uuid.UUID
	Delta    int
	Reason   string
	Actor    *string
}

type TransferStockInput struct {
	FromBranchID uuid.UUID
	ToBranchID   uuid.UUID
	ItemID       uuid.UUID
	Qty          int
}
