package model

import (
	"time"

	"github.com/google/uuid"
)

// Sale is created exactly once per successful fulfillment and is immutable.
// Unfulfill deletes the row as part of its compensating transaction.
type Sale struct {
	ID        uuid.UUID `db:"id" json:"id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	SoldAt    time.Time `db:"sold_at" json:"sold_at"`

	BranchID      uuid.UUID  `db:"branch_id" json:"branch_id"`
	ItemID        uuid.UUID  `db:"item_id" json:"item_id"`
	ReservationID *uuid.UUID `db:"reservation_id" json:"reservation_id,omitempty"`
	StudentID     *uuid.UUID `db:"student_id" json:"student_id,omitempty"`

	Qty            int           `db:"qty" json:"qty"`
	UnitPriceCents int64         `db:"unit_price_cents" json:"unit_price_cents"`
	TotalCents     int64         `db:"total_cents" json:"total_cents"`
	PaymentMethod  PaymentMethod `db:"payment_method" json:"payment_method"`
}
