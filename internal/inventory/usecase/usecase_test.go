package usecase

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/bookstock/inventory-service/internal/apperrors"
	"github.com/bookstock/inventory-service/internal/inventory/dto"
	"github.com/bookstock/inventory-service/internal/model"
	"github.com/bookstock/inventory-service/internal/reservation"
	"github.com/bookstock/inventory-service/pkg/postgres"
)

type memTx struct{}

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

type fakeTxRunner struct{}

func (fakeTxRunner) RunInTx(ctx context.Context, fn func(q postgres.Querier) error) error {
	return fn(&memTx{})
}

type fakeLedgerRepo struct {
	entries     []model.StockLedger
	adjustments []model.Adjustment
	seq         int64
}

func (r *fakeLedgerRepo) Append(ctx context.Context, q postgres.Querier, entry *model.StockLedger) (int64, error) {
	e := *entry
	r.seq++
	e.ID = r.seq
	r.entries = append(r.entries, e)
	return e.ID, nil
}

func (r *fakeLedgerRepo) SumPhysical(ctx context.Context, q postgres.Querier, branchID, itemID uuid.UUID) (int, error) {
	total := 0
	for _, e := range r.entries {
		if e.BranchID == branchID && e.ItemID == itemID && e.Event.Physical() {
			total += e.Qty
		}
	}
	return total, nil
}

func (r *fakeLedgerRepo) ListByPair(ctx context.Context, q postgres.Querier, branchID, itemID uuid.UUID, limit int) ([]model.StockLedger, error) {
	var out []model.StockLedger
	for _, e := range r.entries {
		if e.BranchID == branchID && e.ItemID == itemID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *fakeLedgerRepo) InsertAdjustment(ctx context.Context, q postgres.Querier, adj *model.Adjustment) (uuid.UUID, error) {
	a := *adj
	a.ID = uuid.New()
	r.adjustments = append(r.adjustments, a)
	return a.ID, nil
}

func (r *fakeLedgerRepo) countEvents(kind model.StockEventKind) int {
	n := 0
	for _, e := range r.entries {
		if e.Event == kind {
			n++
		}
	}
	return n
}

// fakeResRepo implements only the reservation surface the stock side
// touches; everything else panics through the embedded nil interface.
type fakeResRepo struct {
	reservation.Repository
	reserved map[uuid.UUID]int // keyed by branch
}

func (r *fakeResRepo) AcquirePairLock(ctx context.Context, q postgres.Querier, branchID, itemID uuid.UUID) error {
	return nil
}

func (r *fakeResRepo) ReservedQty(ctx context.Context, q postgres.Querier, branchID, itemID uuid.UUID) (int, error) {
	return r.reserved[branchID], nil
}

type fakeAllocator struct {
	activateCalls []uuid.UUID
	allocateCalls []uuid.UUID
}

func (a *fakeAllocator) AllocateQueued(ctx context.Context, branchID, itemID uuid.UUID) (int, error) {
	a.allocateCalls = append(a.allocateCalls, branchID)
	return 0, nil
}

func (a *fakeAllocator) ActivateHolds(ctx context.Context, branchID, itemID uuid.UUID) (int, error) {
	a.activateCalls = append(a.activateCalls, branchID)
	return 0, nil
}

type nopLogger struct{}

func (nopLogger) Debug(msg string, fields ...zap.Field) {}
func (nopLogger) Info(msg string, fields ...zap.Field)  {}
func (nopLogger) Warn(msg string, fields ...zap.Field)  {}
func (nopLogger) Error(msg string, fields ...zap.Field) {}
func (nopLogger) Fatal(msg string, fields ...zap.Field) {}
func (nopLogger) Sync() error                           { return nil }

type stockFixture struct {
	ledger    *fakeLedgerRepo
	resRepo   *fakeResRepo
	allocator *fakeAllocator
	uc        *inventoryUseCase

	branchID uuid.UUID
	itemID   uuid.UUID
}

func newStockFixture(t *testing.T) *stockFixture {
	t.Helper()
	f := &stockFixture{
		ledger:    &fakeLedgerRepo{},
		resRepo:   &fakeResRepo{reserved: make(map[uuid.UUID]int)},
		allocator: &fakeAllocator{},
		branchID:  uuid.New(),
		itemID:    uuid.New(),
	}
	f.uc = NewInventoryUseCase(
		&memTx{}, fakeTxRunner{}, f.ledger, f.resRepo, f.allocator,
		nil, nopLogger{}, 5*time.Second,
	).(*inventoryUseCase)
	return f
}

func (f *stockFixture) seed(branchID uuid.UUID, qty int) {
	f.ledger.seq++
	f.ledger.entries = append(f.ledger.entries, model.StockLedger{
		ID: f.ledger.seq, BranchID: branchID, ItemID: f.itemID,
		Event: model.EventReceive, Qty: qty, At: time.Now().UTC(),
	})
}

func TestReceiveStock(t *testing.T) {
	f := newStockFixture(t)
	refID := uuid.New()

	summary, err := f.uc.ReceiveStock(context.Background(), &dto.ReceiveStockInput{
		BranchID: f.branchID, ItemID: f.itemID, Qty: 7, RefID: &refID,
	})
	require.NoError(t, err)

	assert.Equal(t, 7, summary.OnHand)
	assert.Equal(t, 7, summary.Available)

	require.Len(t, f.ledger.entries, 1)
	entry := f.ledger.entries[0]
	assert.Equal(t, model.EventReceive, entry.Event)
	require.NotNil(t, entry.RefType)
	assert.Equal(t, "receipt", *entry.RefType)
	require.NotNil(t, entry.RefID)
	assert.Equal(t, refID, *entry.RefID)

	// New stock triggers both promotion passes for the pair.
	assert.Equal(t, []uuid.UUID{f.branchID}, f.allocator.activateCalls)
	assert.Equal(t, []uuid.UUID{f.branchID}, f.allocator.allocateCalls)
}

func TestReceiveStock_RejectsNonPositiveQty(t *testing.T) {
	f := newStockFixture(t)

	_, err := f.uc.ReceiveStock(context.Background(), &dto.ReceiveStockInput{
		BranchID: f.branchID, ItemID: f.itemID, Qty: 0,
	})
	assert.True(t, apperrors.IsValidation(err))
	assert.Empty(t, f.ledger.entries)
}

func TestAdjustStock_RecordsAuditPair(t *testing.T) {
	f := newStockFixture(t)
	f.seed(f.branchID, 10)
	actor := "clerk-7"

	summary, err := f.uc.AdjustStock(context.Background(), &dto.AdjustStockInput{
		BranchID: f.branchID, ItemID: f.itemID, Delta: -3,
		Reason: "damaged in storage", Actor: &actor,
	})
	require.NoError(t, err)
	assert.Equal(t, 7, summary.OnHand)

	require.Len(t, f.ledger.adjustments, 1)
	adj := f.ledger.adjustments[0]
	assert.Equal(t, -3, adj.DeltaOnHand)
	assert.Equal(t, "damaged in storage", adj.Reason)

	assert.Equal(t, 1, f.ledger.countEvents(model.EventAdjust))
	last := f.ledger.entries[len(f.ledger.entries)-1]
	require.NotNil(t, last.RefID)
	assert.Equal(t, adj.ID, *last.RefID)
}

func TestAdjustStock_CannotDropBelowReserved(t *testing.T) {
	f := newStockFixture(t)
	f.seed(f.branchID, 10)
	f.resRepo.reserved[f.branchID] = 8

	_, err := f.uc.AdjustStock(context.Background(), &dto.AdjustStockInput{
		BranchID: f.branchID, ItemID: f.itemID, Delta: -5, Reason: "shrinkage",
	})
	assert.True(t, apperrors.IsValidation(err))
	assert.Empty(t, f.ledger.adjustments)
	assert.Zero(t, f.ledger.countEvents(model.EventAdjust))
}

func TestAdjustStock_RejectsZeroDelta(t *testing.T) {
	f := newStockFixture(t)

	_, err := f.uc.AdjustStock(context.Background(), &dto.AdjustStockInput{
		BranchID: f.branchID, ItemID: f.itemID, Delta: 0,
	})
	assert.True(t, apperrors.IsValidation(err))
}

func TestTransferStock(t *testing.T) {
	f := newStockFixture(t)
	toBranch := uuid.New()
	f.seed(f.branchID, 10)

	result, err := f.uc.TransferStock(context.Background(), &dto.TransferStockInput{
		FromBranchID: f.branchID, ToBranchID: toBranch, ItemID: f.itemID, Qty: 4,
	})
	require.NoError(t, err)

	assert.Equal(t, 6, result.From.OnHand)
	assert.Equal(t, 4, result.To.OnHand)
	assert.Equal(t, 1, f.ledger.countEvents(model.EventTransferOut))
	assert.Equal(t, 1, f.ledger.countEvents(model.EventTransferIn))

	// Arrival at the destination is new stock for its waiters.
	assert.Contains(t, f.allocator.allocateCalls, toBranch)
}

func TestTransferStock_OnlyAvailableMoves(t *testing.T) {
	f := newStockFixture(t)
	toBranch := uuid.New()
	f.seed(f.branchID, 10)
	f.resRepo.reserved[f.branchID] = 8

	_, err := f.uc.TransferStock(context.Background(), &dto.TransferStockInput{
		FromBranchID: f.branchID, ToBranchID: toBranch, ItemID: f.itemID, Qty: 4,
	})
	require.True(t, apperrors.IsInsufficientStock(err))

	var stockErr *apperrors.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, 2, stockErr.Available)
	assert.Zero(t, f.ledger.countEvents(model.EventTransferOut))
}

func TestTransferStock_SameBranchRejected(t *testing.T) {
	f := newStockFixture(t)

	_, err := f.uc.TransferStock(context.Background(), &dto.TransferStockInput{
		FromBranchID: f.branchID, ToBranchID: f.branchID, ItemID: f.itemID, Qty: 1,
	})
	assert.True(t, apperrors.IsValidation(err))
}

func TestGetSummary_DerivesFromLedgerAndReservations(t *testing.T) {
	f := newStockFixture(t)
	f.seed(f.branchID, 12)
	f.resRepo.reserved[f.branchID] = 5

	summary, err := f.uc.GetSummary(context.Background(), f.branchID, f.itemID)
	require.NoError(t, err)

	assert.Equal(t, 12, summary.OnHand)
	assert.Equal(t, 5, summary.Reserved)
	assert.Equal(t, 7, summary.Available)
}
