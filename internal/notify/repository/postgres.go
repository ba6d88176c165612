package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/bookstock/inventory-service/internal/model"
	"github.com/bookstock/inventory-service/internal/notify"
	"github.com/bookstock/inventory-service/pkg/postgres"
)

type PGRepository struct{}

func NewPGRepository() *PGRepository {
	return &PGRepository{}
}

func (r *PGRepository) Insert(ctx context.Context, q postgres.Querier, o *model.NotifyOutbox) (uuid.UUID, error) {
	var id uuid.UUID
	err := sqlx.GetContext(ctx, q, &id, `
        INSERT INTO notification_outbox (channel, "to", message, template_key, state, attempts, reservation_id)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
        RETURNING id
    `, o.Channel, o.To, o.Message, o.TemplateKey, o.State, o.Attempts, o.ReservationID)
	if err != nil {
		return uuid.Nil, errors.Wrap(err, "insert outbox message")
	}
	return id, nil
}

func (r *PGRepository) ListPending(ctx context.Context, q postgres.Querier, channel string, limit int) ([]model.NotifyOutbox, error) {
	if limit <= 0 {
		limit = 10
	}

	var rows []model.NotifyOutbox
	err := sqlx.SelectContext(ctx, q, &rows, `
        SELECT id, channel, "to", message, template_key, state, attempts, last_error,
               reservation_id, created_at, sent_at
        FROM notification_outbox
        WHERE channel = $1 AND state = 'pending'
        ORDER BY created_at ASC
        LIMIT $2
    `, channel, limit)
	if err != nil {
		return nil, errors.Wrap(err, "list pending outbox")
	}
	return rows, nil
}

func (r *PGRepository) IncrementAttempts(ctx context.Context, q postgres.Querier, id uuid.UUID) error {
	_, err := q.ExecContext(ctx, `
        UPDATE notification_outbox SET attempts = attempts + 1 WHERE id = $1
    `, id)
	return errors.Wrap(err, "increment outbox attempts")
}

func (r *PGRepository) MarkSent(ctx context.Context, q postgres.Querier, id uuid.UUID, at time.Time) error {
	_, err := q.ExecContext(ctx, `
        UPDATE notification_outbox
        SET state = 'sent', sent_at = $2, last_error = NULL
        WHERE id = $1
    `, id, at)
	return errors.Wrap(err, "mark outbox sent")
}

func (r *PGRepository) SetFailure(ctx context.Context, q postgres.Querier, id uuid.UUID, state model.OutboxState, lastError string) error {
	_, err := q.ExecContext(ctx, `
        UPDATE notification_outbox SET state = $2, last_error = $3 WHERE id = $1
    `, id, state, lastError)
	return errors.Wrap(err, "mark outbox failure")
}

func (r *PGRepository) ReadyInfo(ctx context.Context, q postgres.Querier, reservationID uuid.UUID) (*notify.ReadyInfo, error) {
	var info notify.ReadyInfo
	err := sqlx.GetContext(ctx, q, &info, `
        SELECT s.phone AS phone,
               s.full_name AS student_name,
               i.name AS item_name,
               b.code AS branch_code,
               r.window_end AS window_end
        FROM reservations r
        JOIN branches b ON b.id = r.branch_id
        JOIN items i ON i.id = r.item_id
        LEFT JOIN students s ON s.id = r.student_id
        WHERE r.id = $1
    `, reservationID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "load ready info")
	}
	return &info, nil
}
