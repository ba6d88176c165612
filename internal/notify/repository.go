package notify

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/bookstock/inventory-service/internal/model"
	"github.com/bookstock/inventory-service/pkg/postgres"
)

// ReadyInfo is what the pickup-message template needs, joined from the
// reservation and its student/item/branch rows.
type ReadyInfo struct {
	Phone       *string    `db:"phone"`
	StudentName *string    `db:"student_name"`
	ItemName    string     `db:"item_name"`
	BranchCode  string     `db:"branch_code"`
	WindowEnd   *time.Time `db:"window_end"`
}

type Repository interface {
	Insert(ctx context.Context, q postgres.Querier, o *model.NotifyOutbox) (uuid.UUID, error)

	// ListPending returns pending rows for the channel, oldest first.
	ListPending(ctx context.Context, q postgres.Querier, channel string, limit int) ([]model.NotifyOutbox, error)

	IncrementAttempts(ctx context.Context, q postgres.Querier, id uuid.UUID) error
	MarkSent(ctx context.Context, q postgres.Querier, id uuid.UUID, at time.Time) error
	// SetFailure records the error; state stays pending below the attempt
	// cap so the next drain retries.
	SetFailure(ctx context.Context, q postgres.Querier, id uuid.UUID, state model.OutboxState, lastError string) error

	// ReadyInfo loads the message ingredients for a reservation; nil when
	// the reservation does not exist.
	ReadyInfo(ctx context.Context, q postgres.Querier, reservationID uuid.UUID) (*ReadyInfo, error)
}
