package dto

import (
	"github.com/google/uuid"

	"github.com/bookstock/inventory-service/internal/model"
)

type CreateReservationInput struct {
	BranchID  uuid.UUID
	ItemID    uuid.UUID
	StudentID *uuid.UUID
	Qty       int

	UnitPriceCents int64
	PrepaidCents   int64

	PaymentMethod   *model.PaymentMethod
	PayerReference  *string
	PaymentProofURL *string
}

type PrepayInput struct {
	ReservationID  uuid.UUID
	UnitPriceCents int64
	// Nil means "unit price times quantity".
	PrepaidCents *int64
}

type MarkReadyInput struct {
	ReservationID uuid.UUID
	Notify        bool
}

type SearchFilters struct {
	Query string
	Phone string
	Limit int
}
