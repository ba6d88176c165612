package model

import (
	"time"

	"github.com/google/uuid"
)

// ReservationStatus is the reservation state machine's state set.
//
//	queued -> hold -> active -> fulfilled
//	hold|active -> cancelled | expired
//	fulfilled -> active (compensating unfulfill)
//
// queued means accepted without a stock promise; hold and active both count
// toward reserved stock.
type ReservationStatus string

const (
	StatusQueued    ReservationStatus = "queued"
	StatusHold      ReservationStatus = "hold"
	StatusActive    ReservationStatus = "active"
	StatusFulfilled ReservationStatus = "fulfilled"
	StatusCancelled ReservationStatus = "cancelled"
	StatusExpired   ReservationStatus = "expired"
)

// Terminal reports whether the status ends the lifecycle. Terminal rows are
// immutable except for the explicit unfulfill compensation.
func (s ReservationStatus) Terminal() bool {
	switch s {
	case StatusFulfilled, StatusCancelled, StatusExpired:
		return true
	}
	return false
}

// Open reports whether the reservation holds stock (counts toward reserved).
func (s ReservationStatus) Open() bool {
	return s == StatusHold || s == StatusActive
}

type PaymentMethod string

const (
	PaymentCash         PaymentMethod = "cash"
	PaymentVodafoneCash PaymentMethod = "vodafone_cash"
	PaymentInstapay     PaymentMethod = "instapay"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentCash, PaymentVodafoneCash, PaymentInstapay:
		return true
	}
	return false
}

// HoldWindow is the half-open range [Start, End) during which a
// reservation's stock commitment is valid before automatic expiry.
type HoldWindow struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether t falls inside the window.
func (w HoldWindow) Contains(t time.Time) bool {
	return !t.Before(w.Start) && t.Before(w.End)
}

// Expired reports whether the window's upper bound has passed.
func (w HoldWindow) Expired(now time.Time) bool {
	return !now.Before(w.End)
}

type Reservation struct {
	ID        uuid.UUID `db:"id" json:"id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`

	BranchID  uuid.UUID  `db:"branch_id" json:"branch_id"`
	ItemID    uuid.UUID  `db:"item_id" json:"item_id"`
	StudentID *uuid.UUID `db:"student_id" json:"student_id,omitempty"`

	Qty    int               `db:"qty" json:"qty"`
	Status ReservationStatus `db:"status" json:"status"`

	// Null while queued: no stock promise yet.
	WindowStart *time.Time `db:"window_start" json:"window_start,omitempty"`
	WindowEnd   *time.Time `db:"window_end" json:"window_end,omitempty"`

	UnitPriceCents int64      `db:"unit_price_cents" json:"unit_price_cents"`
	PrepaidCents   int64      `db:"prepaid_cents" json:"prepaid_cents"`
	PrepaidAt      *time.Time `db:"prepaid_at" json:"prepaid_at,omitempty"`

	PaymentMethod   *PaymentMethod `db:"payment_method" json:"payment_method,omitempty"`
	PayerReference  *string        `db:"payer_reference" json:"payer_reference,omitempty"`
	PaymentProofURL *string        `db:"payment_proof_url" json:"payment_proof_url,omitempty"`

	NotifiedAt  *time.Time `db:"notified_at" json:"notified_at,omitempty"`
	FulfilledAt *time.Time `db:"fulfilled_at" json:"fulfilled_at,omitempty"`
	ExpiredAt   *time.Time `db:"expired_at" json:"expired_at,omitempty"`
	CancelledAt *time.Time `db:"cancelled_at" json:"cancelled_at,omitempty"`
}

// Window returns the hold window when both bounds are set.
func (r *Reservation) Window() (HoldWindow, bool) {
	if r.WindowStart == nil || r.WindowEnd == nil {
		return HoldWindow{}, false
	}
	return HoldWindow{Start: *r.WindowStart, End: *r.WindowEnd}, true
}
