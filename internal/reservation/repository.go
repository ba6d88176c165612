package reservation

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/bookstock/inventory-service/internal/model"
	"github.com/bookstock/inventory-service/internal/reservation/dto"
	"github.com/bookstock/inventory-service/pkg/postgres"
)

// UniqueOpenConstraint is the partial unique index guaranteeing at most one
// open (hold|active) reservation per (branch, item, student). Create relies
// on it for idempotency under concurrency.
const UniqueOpenConstraint = "uq_reservations_open_student"

// Repository is the mutable reservation store plus the transaction-scoped
// primitives the engine's concurrency discipline needs. Methods take a
// Querier so the usecase decides the transaction boundary.
type Repository interface {
	// AcquirePairLock takes the per-(branch,item) advisory lock. It is
	// transaction-scoped: the database releases it at commit or rollback,
	// so it is never held across external I/O.
	AcquirePairLock(ctx context.Context, q postgres.Querier, branchID, itemID uuid.UUID) error

	Insert(ctx context.Context, q postgres.Querier, r *model.Reservation) (uuid.UUID, error)
	GetByID(ctx context.Context, q postgres.Querier, id uuid.UUID) (*model.Reservation, error)
	GetForUpdate(ctx context.Context, q postgres.Querier, id uuid.UUID) (*model.Reservation, error)

	// FindOpenByStudent returns the id of an existing hold/active
	// reservation for the (branch, item, student) triple, if any.
	FindOpenByStudent(ctx context.Context, q postgres.Querier, branchID, itemID uuid.UUID, studentID *uuid.UUID) (uuid.UUID, bool, error)

	// Activate moves a row to active with a fresh window. notifiedAt is
	// stamped when non-nil.
	Activate(ctx context.Context, q postgres.Querier, id uuid.UUID, window model.HoldWindow, notifiedAt *time.Time) error
	MarkCancelled(ctx context.Context, q postgres.Querier, id uuid.UUID, at time.Time) error
	MarkFulfilled(ctx context.Context, q postgres.Querier, id uuid.UUID, at time.Time) error
	// MarkUnfulfilled reverses a fulfillment: status back to active,
	// fulfilled_at cleared.
	MarkUnfulfilled(ctx context.Context, q postgres.Querier, id uuid.UUID) error
	SetPrepayment(ctx context.Context, q postgres.Querier, id uuid.UUID, unitPriceCents, prepaidCents int64, at time.Time) error

	// ReservedQty sums open (hold|active) reservation quantities for the pair.
	ReservedQty(ctx context.Context, q postgres.Querier, branchID, itemID uuid.UUID) (int, error)
	// ActiveReservedQty sums active-only quantities; used when promoting
	// holds, which are already counted as reserved.
	ActiveReservedQty(ctx context.Context, q postgres.Querier, branchID, itemID uuid.UUID) (int, error)

	// ListQueuedFIFO returns queued rows for the pair oldest-first, locked
	// with SKIP LOCKED so concurrent allocators do not collide.
	ListQueuedFIFO(ctx context.Context, q postgres.Querier, branchID, itemID uuid.UUID, limit int) ([]model.Reservation, error)
	// ListHoldsFIFO returns hold rows for the pair oldest-first.
	ListHoldsFIFO(ctx context.Context, q postgres.Querier, branchID, itemID uuid.UUID, limit int) ([]model.Reservation, error)

	// ExpireOverdue flips every hold/active row whose window upper bound
	// precedes now to expired in one statement and returns the affected
	// rows for ledger compensation.
	ExpireOverdue(ctx context.Context, q postgres.Querier, now time.Time) ([]model.Reservation, error)

	// ItemUnitPriceCents reads the item's default price; ok=false means the
	// item does not exist.
	ItemUnitPriceCents(ctx context.Context, q postgres.Querier, itemID uuid.UUID) (int64, bool, error)

	GetSummary(ctx context.Context, q postgres.Querier, id uuid.UUID) (*dto.ReservationSummary, error)
	Search(ctx context.Context, q postgres.Querier, filters *dto.SearchFilters) ([]dto.ReservationSummary, error)

	InsertSale(ctx context.Context, q postgres.Querier, s *model.Sale) (uuid.UUID, error)
	DeleteSaleByReservation(ctx context.Context, q postgres.Querier, reservationID uuid.UUID) error
}
