package model

import (
	"time"

	"github.com/google/uuid"
)

// StockEventKind tags an entry in the append-only stock ledger.
type StockEventKind string

const (
	EventReceive        StockEventKind = "receive"
	EventAdjust         StockEventKind = "adjust"
	EventReserveHold    StockEventKind = "reserve_hold"
	EventReserveRelease StockEventKind = "reserve_release"
	EventShip           StockEventKind = "ship"
	EventReturn         StockEventKind = "return"
	EventTransferOut    StockEventKind = "transfer_out"
	EventTransferIn     StockEventKind = "transfer_in"
	EventExpire         StockEventKind = "expire"
)

// Physical reports whether the kind moves physical stock. Reservation
// bookkeeping kinds (hold, release and the expiry compensation) track
// promises, not units on the shelf, and are excluded from the on-hand sum.
func (k StockEventKind) Physical() bool {
	switch k {
	case EventReserveHold, EventReserveRelease, EventExpire:
		return false
	}
	return true
}

// StockLedger is one immutable row of the per-(branch,item) event log.
// Rows are never updated or deleted; corrections are compensating entries.
type StockLedger struct {
	ID       int64          `db:"id" json:"id"`
	BranchID uuid.UUID      `db:"branch_id" json:"branch_id"`
	ItemID   uuid.UUID      `db:"item_id" json:"item_id"`
	Event    StockEventKind `db:"event" json:"event"`
	Qty      int            `db:"qty" json:"qty"`
	RefType  *string        `db:"ref_type" json:"ref_type,omitempty"`
	RefID    *uuid.UUID     `db:"ref_id" json:"ref_id,omitempty"`
	At       time.Time      `db:"at" json:"at"`
}

// OnHandFromEvents is the pure reducer over a pair's ledger: the signed sum
// of physical kinds equals units on the shelf.
func OnHandFromEvents(events []StockLedger) int {
	total := 0
	for _, e := range events {
		if e.Event.Physical() {
			total += e.Qty
		}
	}
	return total
}

// Adjustment is the human-readable audit record paired 1:1 with a manual
// "adjust" ledger event.
type Adjustment struct {
	ID          uuid.UUID `db:"id" json:"id"`
	BranchID    uuid.UUID `db:"branch_id" json:"branch_id"`
	ItemID      uuid.UUID `db:"item_id" json:"item_id"`
	DeltaOnHand int       `db:"delta_on_hand" json:"delta_on_hand"`
	Reason      string    `db:"reason" json:"reason"`
	Actor       *string   `db:"actor" json:"actor,omitempty"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}
