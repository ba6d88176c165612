package reservation

import (
	"context"

	"github.com/google/uuid"

	"github.com/bookstock/inventory-service/internal/reservation/dto"
)

// UseCase is the reservation lifecycle engine. It owns the concurrency
// discipline: any operation that reads availability and writes based on it
// serializes on the per-(branch,item) advisory lock inside one transaction.
type UseCase interface {
	// Create is idempotent per (branch, item, student): an existing open
	// reservation for the triple is returned instead of a duplicate. The
	// new reservation starts as hold (stock committed, short window) when
	// availability covers qty, else queued (no stock promise).
	Create(ctx context.Context, input *dto.CreateReservationInput) (uuid.UUID, error)

	// Prepay records pricing/prepayment on a non-terminal reservation.
	Prepay(ctx context.Context, input *dto.PrepayInput) (*dto.ReservationSummary, error)

	// MarkReady moves a reservation to active with a fresh pickup window,
	// committing stock first when the row was queued. A pickup notification
	// is enqueued fire-and-forget when notify is set.
	MarkReady(ctx context.Context, input *dto.MarkReadyInput) (*dto.ReservationSummary, error)

	// Cancel releases held stock and is an idempotent no-op on terminal rows.
	Cancel(ctx context.Context, id uuid.UUID) error

	// Fulfill ships an active reservation and records its sale.
	Fulfill(ctx context.Context, id uuid.UUID) (*dto.FulfillResult, error)

	// Unfulfill compensates a fulfillment: deletes the sale, restores the
	// stock hold, and returns the row to active.
	Unfulfill(ctx context.Context, id uuid.UUID) (*dto.ReservationSummary, error)

	// AllocateQueued promotes queued rows for the pair to active, FIFO,
	// stopping at the first row the remaining capacity cannot cover.
	AllocateQueued(ctx context.Context, branchID, itemID uuid.UUID) (int, error)

	// ActivateHolds promotes the oldest hold rows to active up to physical
	// capacity not yet claimed by active rows.
	ActivateHolds(ctx context.Context, branchID, itemID uuid.UUID) (int, error)

	// ExpireSweep expires every overdue hold/active row in one transaction
	// and returns the count.
	ExpireSweep(ctx context.Context) (int, error)

	GetSummary(ctx context.Context, id uuid.UUID) (*dto.ReservationSummary, error)
	Search(ctx context.Context, filters *dto.SearchFilters) ([]dto.ReservationSummary, error)
}
