package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/bookstock/inventory-service/internal/model"
	"github.com/bookstock/inventory-service/internal/reservation/dto"
	"github.com/bookstock/inventory-service/pkg/postgres"
)

const reservationColumns = `
    id, created_at, branch_id, item_id, student_id, qty, status,
    window_start, window_end,
    unit_price_cents, prepaid_cents, prepaid_at,
    payment_method, payer_reference, payment_proof_url,
    notified_at, fulfilled_at, expired_at, cancelled_at
`

type PGRepository struct{}

func NewPGRepository() *PGRepository {
	return &PGRepository{}
}

func (r *PGRepository) AcquirePairLock(ctx context.Context, q postgres.Querier, branchID, itemID uuid.UUID) error {
	key := fmt.Sprintf("%s:%s", branchID, itemID)
	if _, err := q.ExecContext(ctx, `SELECT pg_advisory_xact_lock(hashtextextended($1, 0))`, key); err != nil {
		return errors.Wrap(err, "acquire pair lock")
	}
	return nil
}

func (r *PGRepository) Insert(ctx context.Context, q postgres.Querier, res *model.Reservation) (uuid.UUID, error) {
	var id uuid.UUID
	err := sqlx.GetContext(ctx, q, &id, `
        INSERT INTO reservations (
            branch_id, item_id, student_id, qty, status,
            window_start, window_end,
            unit_price_cents, prepaid_cents,
            payment_method, payer_reference, payment_proof_url
        )
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
        RETURNING id
    `,
		res.BranchID, res.ItemID, res.StudentID, res.Qty, res.Status,
		res.WindowStart, res.WindowEnd,
		res.UnitPriceCents, res.PrepaidCents,
		res.PaymentMethod, res.PayerReference, res.PaymentProofURL,
	)
	if err != nil {
		return uuid.Nil, errors.Wrap(err, "insert reservation")
	}
	return id, nil
}

func (r *PGRepository) GetByID(ctx context.Context, q postgres.Querier, id uuid.UUID) (*model.Reservation, error) {
	return r.get(ctx, q, id, false)
}

func (r *PGRepository) GetForUpdate(ctx context.Context, q postgres.Querier, id uuid.UUID) (*model.Reservation, error) {
	return r.get(ctx, q, id, true)
}

func (r *PGRepository) get(ctx context.Context, q postgres.Querier, id uuid.UUID, forUpdate bool) (*model.Reservation, error) {
	query := `SELECT ` + reservationColumns + ` FROM reservations WHERE id = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}

	var res model.Reservation
	err := sqlx.GetContext(ctx, q, &res, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "get reservation")
	}
	return &res, nil
}

func (r *PGRepository) FindOpenByStudent(ctx context.Context, q postgres.Querier, branchID, itemID uuid.UUID, studentID *uuid.UUID) (uuid.UUID, bool, error) {
	if studentID == nil {
		return uuid.Nil, false, nil
	}

	var id uuid.UUID
	err := sqlx.GetContext(ctx, q, &id, `
        SELECT id FROM reservations
        WHERE branch_id = $1 AND item_id = $2 AND student_id = $3
          AND status IN ('hold', 'active')
    `, branchID, itemID, *studentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return uuid.Nil, false, nil
		}
		return uuid.Nil, false, errors.Wrap(err, "find open reservation")
	}
	return id, true, nil
}

func (r *PGRepository) Activate(ctx context.Context, q postgres.Querier, id uuid.UUID, window model.HoldWindow, notifiedAt *time.Time) error {
	_, err := q.ExecContext(ctx, `
        UPDATE reservations
        SET status = 'active',
            window_start = $2,
            window_end = $3,
            notified_at = COALESCE($4, notified_at)
        WHERE id = $1
    `, id, window.Start, window.End, notifiedAt)
	return errors.Wrap(err, "activate reservation")
}

func (r *PGRepository) MarkCancelled(ctx context.Context, q postgres.Querier, id uuid.UUID, at time.Time) error {
	_, err := q.ExecContext(ctx, `
        UPDATE reservations SET status = 'cancelled', cancelled_at = $2 WHERE id = $1
    `, id, at)
	return errors.Wrap(err, "cancel reservation")
}

func (r *PGRepository) MarkFulfilled(ctx context.Context, q postgres.Querier, id uuid.UUID, at time.Time) error {
	_, err := q.ExecContext(ctx, `
        UPDATE reservations SET status = 'fulfilled', fulfilled_at = $2 WHERE id = $1
    `, id, at)
	return errors.Wrap(err, "fulfill reservation")
}

func (r *PGRepository) MarkUnfulfilled(ctx context.Context, q postgres.Querier, id uuid.UUID) error {
	_, err := q.ExecContext(ctx, `
        UPDATE reservations SET status = 'active', fulfilled_at = NULL WHERE id = $1
    `, id)
	return errors.Wrap(err, "unfulfill reservation")
}

func (r *PGRepository) SetPrepayment(ctx context.Context, q postgres.Querier, id uuid.UUID, unitPriceCents, prepaidCents int64, at time.Time) error {
	_, err := q.ExecContext(ctx, `
        UPDATE reservations
        SET unit_price_cents = $2, prepaid_cents = $3, prepaid_at = $4
        WHERE id = $1
    `, id, unitPriceCents, prepaidCents, at)
	return errors.Wrap(err, "set prepayment")
}

func (r *PGRepository) ReservedQty(ctx context.Context, q postgres.Querier, branchID, itemID uuid.UUID) (int, error) {
	return r.sumQty(ctx, q, branchID, itemID, []string{"hold", "active"})
}

func (r *PGRepository) ActiveReservedQty(ctx context.Context, q postgres.Querier, branchID, itemID uuid.UUID) (int, error) {
	return r.sumQty(ctx, q, branchID, itemID, []string{"active"})
}

func (r *PGRepository) sumQty(ctx context.Context, q postgres.Querier, branchID, itemID uuid.UUID, statuses []string) (int, error) {
	query, args, err := sqlx.In(`
        SELECT COALESCE(SUM(qty), 0) FROM reservations
        WHERE branch_id = ? AND item_id = ? AND status IN (?)
    `, branchID, itemID, statuses)
	if err != nil {
		return 0, errors.Wrap(err, "build reserved query")
	}
	query = q.Rebind(query)

	var sum int
	if err := sqlx.GetContext(ctx, q, &sum, query, args...); err != nil {
		return 0, errors.Wrap(err, "sum reserved qty")
	}
	return sum, nil
}

func (r *PGRepository) ListQueuedFIFO(ctx context.Context, q postgres.Querier, branchID, itemID uuid.UUID, limit int) ([]model.Reservation, error) {
	return r.listByStatusFIFO(ctx, q, branchID, itemID, model.StatusQueued, limit)
}

func (r *PGRepository) ListHoldsFIFO(ctx context.Context, q postgres.Querier, branchID, itemID uuid.UUID, limit int) ([]model.Reservation, error) {
	return r.listByStatusFIFO(ctx, q, branchID, itemID, model.StatusHold, limit)
}

func (r *PGRepository) listByStatusFIFO(ctx context.Context, q postgres.Querier, branchID, itemID uuid.UUID, status model.ReservationStatus, limit int) ([]model.Reservation, error) {
	if limit <= 0 {
		limit = 1000
	}

	var rows []model.Reservation
	err := sqlx.SelectContext(ctx, q, &rows, `
        SELECT `+reservationColumns+`
        FROM reservations
        WHERE branch_id = $1 AND item_id = $2 AND status = $3
        ORDER BY created_at ASC
        LIMIT $4
        FOR UPDATE SKIP LOCKED
    `, branchID, itemID, status, limit)
	if err != nil {
		return nil, errors.Wrapf(err, "list %s reservations", status)
	}
	return rows, nil
}

func (r *PGRepository) ExpireOverdue(ctx context.Context, q postgres.Querier, now time.Time) ([]model.Reservation, error) {
	var rows []model.Reservation
	err := sqlx.SelectContext(ctx, q, &rows, `
        UPDATE reservations
        SET status = 'expired', expired_at = $1
        WHERE status IN ('hold', 'active') AND window_end < $1
        RETURNING id, branch_id, item_id, qty, status, created_at
    `, now)
	if err != nil {
		return nil, errors.Wrap(err, "expire overdue reservations")
	}
	return rows, nil
}

func (r *PGRepository) ItemUnitPriceCents(ctx context.Context, q postgres.Querier, itemID uuid.UUID) (int64, bool, error) {
	var price int64
	err := sqlx.GetContext(ctx, q, &price, `
        SELECT default_price_cents FROM items WHERE id = $1
    `, itemID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, false, nil
		}
		return 0, false, errors.Wrap(err, "get item price")
	}
	return price, true, nil
}

const summarySelect = `
    SELECT r.id, r.qty, r.status,
           r.window_start, r.window_end,
           r.created_at, r.fulfilled_at, r.notified_at, r.prepaid_at,
           b.id AS branch_id, b.code AS branch_code,
           i.id AS item_id, i.sku AS sku, i.name AS item_name,
           s.id AS student_id, s.full_name AS student_name, s.phone AS student_phone,
           r.unit_price_cents, r.prepaid_cents
    FROM reservations r
    JOIN branches b ON b.id = r.branch_id
    JOIN items i ON i.id = r.item_id
    LEFT JOIN students s ON s.id = r.student_id
`

func (r *PGRepository) GetSummary(ctx context.Context, q postgres.Querier, id uuid.UUID) (*dto.ReservationSummary, error) {
	var out dto.ReservationSummary
	err := sqlx.GetContext(ctx, q, &out, summarySelect+` WHERE r.id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "get reservation summary")
	}
	return &out, nil
}

func (r *PGRepository) Search(ctx context.Context, q postgres.Querier, filters *dto.SearchFilters) ([]dto.ReservationSummary, error) {
	conditions := []string{}
	args := []interface{}{}

	if filters.Query != "" {
		args = append(args, "%"+strings.ToLower(filters.Query)+"%")
		conditions = append(conditions, fmt.Sprintf("LOWER(s.full_name) LIKE $%d", len(args)))
	}
	if filters.Phone != "" {
		phone := strings.TrimSpace(filters.Phone)
		// Local numbers are stored either raw or with the country prefix.
		alt := phone
		if strings.HasPrefix(phone, "0") {
			alt = "+2" + phone
		}
		args = append(args, "%"+phone+"%", "%"+alt+"%")
		conditions = append(conditions, fmt.Sprintf("(s.phone ILIKE $%d OR s.phone ILIKE $%d)", len(args)-1, len(args)))
	}

	query := summarySelect
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}

	limit := filters.Limit
	if limit <= 0 {
		limit = 50
	}
	args = append(args, limit)
	query += fmt.Sprintf(" ORDER BY r.fulfilled_at DESC NULLS LAST, r.created_at DESC LIMIT $%d", len(args))

	var rows []dto.ReservationSummary
	if err := sqlx.SelectContext(ctx, q, &rows, query, args...); err != nil {
		return nil, errors.Wrap(err, "search reservations")
	}
	return rows, nil
}

func (r *PGRepository) InsertSale(ctx context.Context, q postgres.Querier, s *model.Sale) (uuid.UUID, error) {
	var id uuid.UUID
	err := sqlx.GetContext(ctx, q, &id, `
        INSERT INTO sales (
            branch_id, item_id, reservation_id, student_id,
            qty, unit_price_cents, total_cents, payment_method, sold_at
        )
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
        RETURNING id
    `,
		s.BranchID, s.ItemID, s.ReservationID, s.StudentID,
		s.Qty, s.UnitPriceCents, s.TotalCents, s.PaymentMethod, s.SoldAt,
	)
	if err != nil {
		return uuid.Nil, errors.Wrap(err, "insert sale")
	}
	return id, nil
}

func (r *PGRepository) DeleteSaleByReservation(ctx context.Context, q postgres.Querier, reservationID uuid.UUID) error {
	_, err := q.ExecContext(ctx, `DELETE FROM sales WHERE reservation_id = $1`, reservationID)
	return errors.Wrap(err, "delete sale")
}
