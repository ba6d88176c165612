package usecase

import (
	"context"
	"database/sql"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/bookstock/inventory-service/internal/model"
	"github.com/bookstock/inventory-service/internal/notify"
	"github.com/bookstock/inventory-service/internal/reservation"
	"github.com/bookstock/inventory-service/internal/reservation/dto"
	"github.com/bookstock/inventory-service/pkg/postgres"
)

// memTx satisfies postgres.Querier so in-memory fakes can stand in for the
// database. The SQL surface is never invoked; only its identity matters,
// because pair locks are scoped to the transaction that took them.
type memTx struct{ id int64 }

func (t *memTx) DriverName() string         { return "mem" }
func (t *memTx) Rebind(query string) string { return query }
func (t *memTx) BindNamed(query string, arg interface{}) (string, []interface{}, error) {
	return query, nil, nil
}
func (t *memTx) QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error) {
	return nil, nil
}
func (t *memTx) QueryxContext(ctx context.Context, query string, args ...interface{}) (*sqlx.Rows, error) {
	return nil, nil
}
func (t *memTx) QueryRowxContext(ctx context.Context, query string, args ...interface{}) *sqlx.Row {
	return nil
}
func (t *memTx) ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	return nil, nil
}
func (t *memTx) GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error {
	return nil
}
func (t *memTx) SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error {
	return nil
}

// memStore holds the shared state behind the fake repositories. Pair locks
// mirror the advisory-lock discipline: held for the life of a transaction,
// released when it ends.
type memStore struct {
	mu  sync.Mutex
	seq int64

	ledger       []model.StockLedger
	reservations map[uuid.UUID]*model.Reservation
	sales        map[uuid.UUID]model.Sale
	adjustments  []model.Adjustment
	items        map[uuid.UUID]int64

	pairLocks map[string]*sync.Mutex
	held      map[*memTx][]*sync.Mutex

	// When positive, FindOpenByStudent misses that many times. Lets tests
	// drive the insert into the unique constraint the way a lost race does.
	missOpenLookups int
}

func newMemStore() *memStore {
	return &memStore{
		reservations: make(map[uuid.UUID]*model.Reservation),
		sales:        make(map[uuid.UUID]model.Sale),
		items:        make(map[uuid.UUID]int64),
		pairLocks:    make(map[string]*sync.Mutex),
		held:         make(map[*memTx][]*sync.Mutex),
	}
}

func (s *memStore) nextSeq() int64 {
	s.seq++
	return s.seq
}

// tick hands out strictly increasing timestamps so FIFO ordering by
// created_at is deterministic.
func (s *memStore) tick() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC).Add(time.Duration(s.nextSeq()) * time.Second)
}

func (s *memStore) lockPair(tx *memTx, branchID, itemID uuid.UUID) {
	key := branchID.String() + ":" + itemID.String()

	s.mu.Lock()
	m, ok := s.pairLocks[key]
	if !ok {
		m = &sync.Mutex{}
		s.pairLocks[key] = m
	}
	for _, h := range s.held[tx] {
		if h == m {
			s.mu.Unlock()
			return
		}
	}
	s.mu.Unlock()

	m.Lock()
	s.mu.Lock()
	s.held[tx] = append(s.held[tx], m)
	s.mu.Unlock()
}

func (s *memStore) endTx(tx *memTx) {
	s.mu.Lock()
	held := s.held[tx]
	delete(s.held, tx)
	s.mu.Unlock()
	for i := len(held) - 1; i >= 0; i-- {
		held[i].Unlock()
	}
}

func (s *memStore) onHand(branchID, itemID uuid.UUID) int {
	total := 0
	for _, e := range s.ledger {
		if e.BranchID == branchID && e.ItemID == itemID && e.Event.Physical() {
			total += e.Qty
		}
	}
	return total
}

func (s *memStore) countEvents(branchID, itemID uuid.UUID, kind model.StockEventKind) int {
	n := 0
	for _, e := range s.ledger {
		if e.BranchID == branchID && e.ItemID == itemID && e.Event == kind {
			n++
		}
	}
	return n
}

type fakeTxRunner struct{ store *memStore }

func (f *fakeTxRunner) RunInTx(ctx context.Context, fn func(q postgres.Querier) error) error {
	f.store.mu.Lock()
	tx := &memTx{id: f.store.nextSeq()}
	f.store.mu.Unlock()
	defer f.store.endTx(tx)
	return fn(tx)
}

type fakeLedgerRepo struct{ store *memStore }

func (r *fakeLedgerRepo) Append(ctx context.Context, q postgres.Querier, entry *model.StockLedger) (int64, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	e := *entry
	e.ID = s.nextSeq()
	s.ledger = append(s.ledger, e)
	return e.ID, nil
}

func (r *fakeLedgerRepo) SumPhysical(ctx context.Context, q postgres.Querier, branchID, itemID uuid.UUID) (int, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.onHand(branchID, itemID), nil
}

func (r *fakeLedgerRepo) ListByPair(ctx context.Context, q postgres.Querier, branchID, itemID uuid.UUID, limit int) ([]model.StockLedger, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.StockLedger
	for _, e := range s.ledger {
		if e.BranchID == branchID && e.ItemID == itemID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *fakeLedgerRepo) InsertAdjustment(ctx context.Context, q postgres.Querier, adj *model.Adjustment) (uuid.UUID, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	a := *adj
	a.ID = uuid.New()
	s.adjustments = append(s.adjustments, a)
	return a.ID, nil
}

type fakeReservationRepo struct{ store *memStore }

var _ reservation.Repository = (*fakeReservationRepo)(nil)

func (r *fakeReservationRepo) AcquirePairLock(ctx context.Context, q postgres.Querier, branchID, itemID uuid.UUID) error {
	if tx, ok := q.(*memTx); ok {
		r.store.lockPair(tx, branchID, itemID)
	}
	return nil
}

func (r *fakeReservationRepo) Insert(ctx context.Context, q postgres.Querier, res *model.Reservation) (uuid.UUID, error) {
	s := r.store
	created := s.tick()
	s.mu.Lock()
	defer s.mu.Unlock()

	if res.StudentID != nil && res.Status.Open() {
		for _, other := range s.reservations {
			if other.BranchID == res.BranchID && other.ItemID == res.ItemID &&
				other.StudentID != nil && *other.StudentID == *res.StudentID &&
				other.Status.Open() {
				return uuid.Nil, &pgconn.PgError{
					Code:           "23505",
					ConstraintName: reservation.UniqueOpenConstraint,
				}
			}
		}
	}

	row := *res
	row.ID = uuid.New()
	row.CreatedAt = created
	s.reservations[row.ID] = &row
	return row.ID, nil
}

func (r *fakeReservationRepo) get(id uuid.UUID) *model.Reservation {
	if row, ok := r.store.reservations[id]; ok {
		cp := *row
		return &cp
	}
	return nil
}

func (r *fakeReservationRepo) GetByID(ctx context.Context, q postgres.Querier, id uuid.UUID) (*model.Reservation, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	return r.get(id), nil
}

func (r *fakeReservationRepo) GetForUpdate(ctx context.Context, q postgres.Querier, id uuid.UUID) (*model.Reservation, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	return r.get(id), nil
}

func (r *fakeReservationRepo) FindOpenByStudent(ctx context.Context, q postgres.Querier, branchID, itemID uuid.UUID, studentID *uuid.UUID) (uuid.UUID, bool, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	if studentID == nil {
		return uuid.Nil, false, nil
	}
	if s.missOpenLookups > 0 {
		s.missOpenLookups--
		return uuid.Nil, false, nil
	}
	for id, row := range s.reservations {
		if row.BranchID == branchID && row.ItemID == itemID &&
			row.StudentID != nil && *row.StudentID == *studentID && row.Status.Open() {
			return id, true, nil
		}
	}
	return uuid.Nil, false, nil
}

func (r *fakeReservationRepo) Activate(ctx context.Context, q postgres.Querier, id uuid.UUID, window model.HoldWindow, notifiedAt *time.Time) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	row := s.reservations[id]
	row.Status = model.StatusActive
	start, end := window.Start, window.End
	row.WindowStart, row.WindowEnd = &start, &end
	if notifiedAt != nil && row.NotifiedAt == nil {
		at := *notifiedAt
		row.NotifiedAt = &at
	}
	return nil
}

func (r *fakeReservationRepo) MarkCancelled(ctx context.Context, q postgres.Querier, id uuid.UUID, at time.Time) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	row := s.reservations[id]
	row.Status = model.StatusCancelled
	row.CancelledAt = &at
	return nil
}

func (r *fakeReservationRepo) MarkFulfilled(ctx context.Context, q postgres.Querier, id uuid.UUID, at time.Time) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	row := s.reservations[id]
	row.Status = model.StatusFulfilled
	row.FulfilledAt = &at
	return nil
}

func (r *fakeReservationRepo) MarkUnfulfilled(ctx context.Context, q postgres.Querier, id uuid.UUID) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	row := s.reservations[id]
	row.Status = model.StatusActive
	row.FulfilledAt = nil
	return nil
}

func (r *fakeReservationRepo) SetPrepayment(ctx context.Context, q postgres.Querier, id uuid.UUID, unitPriceCents, prepaidCents int64, at time.Time) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	row := s.reservations[id]
	row.UnitPriceCents = unitPriceCents
	row.PrepaidCents = prepaidCents
	row.PrepaidAt = &at
	return nil
}

func (r *fakeReservationRepo) sumQty(branchID, itemID uuid.UUID, statuses ...model.ReservationStatus) int {
	total := 0
	for _, row := range r.store.reservations {
		if row.BranchID != branchID || row.ItemID != itemID {
			continue
		}
		for _, st := range statuses {
			if row.Status == st {
				total += row.Qty
			}
		}
	}
	return total
}

func (r *fakeReservationRepo) ReservedQty(ctx context.Context, q postgres.Querier, branchID, itemID uuid.UUID) (int, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	return r.sumQty(branchID, itemID, model.StatusHold, model.StatusActive), nil
}

func (r *fakeReservationRepo) ActiveReservedQty(ctx context.Context, q postgres.Querier, branchID, itemID uuid.UUID) (int, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	return r.sumQty(branchID, itemID, model.StatusActive), nil
}

func (r *fakeReservationRepo) listFIFO(branchID, itemID uuid.UUID, status model.ReservationStatus, limit int) []model.Reservation {
	var out []model.Reservation
	for _, row := range r.store.reservations {
		if row.BranchID == branchID && row.ItemID == itemID && row.Status == status {
			out = append(out, *row)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

func (r *fakeReservationRepo) ListQueuedFIFO(ctx context.Context, q postgres.Querier, branchID, itemID uuid.UUID, limit int) ([]model.Reservation, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	return r.listFIFO(branchID, itemID, model.StatusQueued, limit), nil
}

func (r *fakeReservationRepo) ListHoldsFIFO(ctx context.Context, q postgres.Querier, branchID, itemID uuid.UUID, limit int) ([]model.Reservation, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	return r.listFIFO(branchID, itemID, model.StatusHold, limit), nil
}

func (r *fakeReservationRepo) ExpireOverdue(ctx context.Context, q postgres.Querier, now time.Time) ([]model.Reservation, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Reservation
	for _, row := range s.reservations {
		if !row.Status.Open() || row.WindowEnd == nil {
			continue
		}
		if now.Before(*row.WindowEnd) {
			continue
		}
		row.Status = model.StatusExpired
		at := now
		row.ExpiredAt = &at
		out = append(out, *row)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *fakeReservationRepo) ItemUnitPriceCents(ctx context.Context, q postgres.Querier, itemID uuid.UUID) (int64, bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	price, ok := r.store.items[itemID]
	return price, ok, nil
}

func (r *fakeReservationRepo) GetSummary(ctx context.Context, q postgres.Querier, id uuid.UUID) (*dto.ReservationSummary, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	row := r.store.reservations[id]
	if row == nil {
		return nil, nil
	}
	return &dto.ReservationSummary{
		ID:             row.ID,
		Qty:            row.Qty,
		Status:         string(row.Status),
		WindowStart:    row.WindowStart,
		WindowEnd:      row.WindowEnd,
		CreatedAt:      row.CreatedAt,
		FulfilledAt:    row.FulfilledAt,
		NotifiedAt:     row.NotifiedAt,
		PrepaidAt:      row.PrepaidAt,
		BranchID:       row.BranchID,
		ItemID:         row.ItemID,
		StudentID:      row.StudentID,
		UnitPriceCents: row.UnitPriceCents,
		PrepaidCents:   row.PrepaidCents,
	}, nil
}

func (r *fakeReservationRepo) Search(ctx context.Context, q postgres.Querier, filters *dto.SearchFilters) ([]dto.ReservationSummary, error) {
	r.store.mu.Lock()
	ids := make([]uuid.UUID, 0, len(r.store.reservations))
	for id := range r.store.reservations {
		ids = append(ids, id)
	}
	r.store.mu.Unlock()

	var out []dto.ReservationSummary
	for _, id := range ids {
		s, _ := r.GetSummary(ctx, q, id)
		if s != nil {
			out = append(out, *s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if filters.Limit > 0 && len(out) > filters.Limit {
		out = out[:filters.Limit]
	}
	return out, nil
}

func (r *fakeReservationRepo) InsertSale(ctx context.Context, q postgres.Querier, sale *model.Sale) (uuid.UUID, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	row := *sale
	row.ID = uuid.New()
	s.sales[row.ID] = row
	return row.ID, nil
}

func (r *fakeReservationRepo) DeleteSaleByReservation(ctx context.Context, q postgres.Querier, reservationID uuid.UUID) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, sale := range s.sales {
		if sale.ReservationID != nil && *sale.ReservationID == reservationID {
			delete(s.sales, id)
		}
	}
	return nil
}

// fakeNotifier records ready notifications instead of enqueueing them.
type fakeNotifier struct {
	mu    sync.Mutex
	ready []uuid.UUID
}

var _ notify.UseCase = (*fakeNotifier)(nil)

func (n *fakeNotifier) Enqueue(ctx context.Context, reservationID uuid.UUID, phone, message string) (uuid.UUID, error) {
	return uuid.New(), nil
}

func (n *fakeNotifier) EnsureQueuedReady(ctx context.Context, reservationID uuid.UUID) (uuid.UUID, bool, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.ready = append(n.ready, reservationID)
	return uuid.New(), true, nil
}

func (n *fakeNotifier) Drain(ctx context.Context, limit int) (*notify.DrainResult, error) {
	return &notify.DrainResult{}, nil
}

func (n *fakeNotifier) readyCount() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.ready)
}

type nopLogger struct{}

func (nopLogger) Debug(msg string, fields ...zap.Field) {}
func (nopLogger) Info(msg string, fields ...zap.Field)  {}
func (nopLogger) Warn(msg string, fields ...zap.Field)  {}
func (nopLogger) Error(msg string, fields ...zap.Field) {}
func (nopLogger) Fatal(msg string, fields ...zap.Field) {}
func (nopLogger) Sync() error                           { return nil }
