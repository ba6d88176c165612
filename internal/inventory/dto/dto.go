package dto

import (
	"fmt"

	"github.com/google/uuid"
)

// InventorySummary is the derived view of a pair: nothing here is stored.
type InventorySummary struct {
	BranchID  uuid.UUID `json:"branch_id"`
	ItemID    uuid.UUID `json:"item_id"`
	OnHand    int       `json:"on_hand"`
	Reserved  int       `json:"reserved"`
	Available int       `json:"available"`
}

// SummaryCacheKey is the redis key for a pair's cached summary. Mutating
// flows delete it after commit.
func SummaryCacheKey(branchID, itemID uuid.UUID) string {
	return fmt.Sprintf("inventory:summary:%s:%s", branchID, itemID)
}

// TransferSummary reports both sides of a branch transfer.
type TransferSummary struct {
	From InventorySummary `json:"from_summary"`
	To   InventorySummary `json:"to_summary"`
}
