package model

import (
	"time"

	"github.com/google/uuid"
)

type OutboxState string

const (
	OutboxPending OutboxState = "pending"
	OutboxSent    OutboxState = "sent"
	OutboxFailed  OutboxState = "failed"
)

const OutboxChannelWhatsApp = "wa_web"

// NotifyOutbox is a queued outbound message. The engine enqueues
// fire-and-forget; the drain worker sends and retries up to the attempt cap.
type NotifyOutbox struct {
	ID      uuid.UUID `db:"id" json:"id"`
	Channel string    `db:"channel" json:"channel"`
	To      string    `db:"to" json:"to"`
	Message string    `db:"message" json:"message"`

	TemplateKey *string `db:"template_key" json:"template_key,omitempty"`

	State     OutboxState `db:"state" json:"state"`
	Attempts  int         `db:"attempts" json:"attempts"`
	LastError *string     `db:"last_error" json:"last_error,omitempty"`

	ReservationID *uuid.UUID `db:"reservation_id" json:"reservation_id,omitempty"`

	CreatedAt time.Time  `db:"created_at" json:"created_at"`
	SentAt    *time.Time `db:"sent_at" json:"sent_at,omitempty"`
}
