package dto

import (
	"time"

	"github.com/google/uuid"
)

// ReservationSummary is the joined caller-facing view of a reservation.
type ReservationSummary struct {
	ID     uuid.UUID `db:"id" json:"id"`
	Qty    int       `db:"qty" json:"qty"`
	Status string    `db:"status" json:"status"`

	WindowStart *time.Time `db:"window_start" json:"window_start,omitempty"`
	WindowEnd   *time.Time `db:"window_end" json:"window_end,omitempty"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
	FulfilledAt *time.Time `db:"fulfilled_at" json:"fulfilled_at,omitempty"`
	NotifiedAt  *time.Time `db:"notified_at" json:"notified_at,omitempty"`
	PrepaidAt   *time.Time `db:"prepaid_at" json:"prepaid_at,omitempty"`

	BranchID   uuid.UUID `db:"branch_id" json:"branch_id"`
	BranchCode string    `db:"branch_code" json:"branch_code"`

	ItemID   uuid.UUID `db:"item_id" json:"item_id"`
	SKU      string    `db:"sku" json:"sku"`
	ItemName string    `db:"item_name" json:"item_name"`

	StudentID    *uuid.UUID `db:"student_id" json:"student_id,omitempty"`
	StudentName  *string    `db:"student_name" json:"student_name,omitempty"`
	StudentPhone *string    `db:"student_phone" json:"student_phone,omitempty"`

	UnitPriceCents int64 `db:"unit_price_cents" json:"unit_price_cents"`
	PrepaidCents   int64 `db:"prepaid_cents" json:"prepaid_cents"`
}

// FulfillResult reports the committed sale and the pair's inventory after
// the transaction.
type FulfillResult struct {
	ReservationID  uuid.UUID `json:"reservation_id"`
	SaleID         uuid.UUID `json:"sale_id"`
	Qty            int       `json:"qty"`
	UnitPriceCents int64     `json:"unit_price_cents"`
	TotalCents     int64     `json:"total_cents"`
	SoldAt         time.Time `json:"sold_at"`
	OnHand         int       `json:"on_hand"`
	Reserved       int       `json:"reserved"`
	Available      int       `json:"available"`
}
