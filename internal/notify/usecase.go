package notify

import (
	"context"

	"github.com/google/uuid"
)

// Sender is the outbound transport contract. Implementations deliver one
// message; the drain loop owns retries and bookkeeping.
type Sender interface {
	Send(ctx context.Context, to, message string) error
}

type DrainResult struct {
	Sent    int `json:"sent"`
	Failed  int `json:"failed"`
	Scanned int `json:"scanned"`
}

// UseCase is the notification outbox the reservation engine enqueues into.
// Enqueue never blocks on delivery; Drain sends asynchronously and retries
// up to the attempt cap.
type UseCase interface {
	Enqueue(ctx context.Context, reservationID uuid.UUID, phone, message string) (uuid.UUID, error)

	// EnsureQueuedReady enqueues a "ready for pickup" message for the
	// reservation. Returns false without error when there is no phone to
	// notify.
	EnsureQueuedReady(ctx context.Context, reservationID uuid.UUID) (uuid.UUID, bool, error)

	Drain(ctx context.Context, limit int) (*DrainResult, error)
}
