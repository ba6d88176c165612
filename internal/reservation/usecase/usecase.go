package usecase

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/bookstock/inventory-service/config"
	"github.com/bookstock/inventory-service/internal/apperrors"
	invdto "github.com/bookstock/inventory-service/internal/inventory/dto"
	"github.com/bookstock/inventory-service/internal/ledger"
	"github.com/bookstock/inventory-service/internal/model"
	"github.com/bookstock/inventory-service/internal/notify"
	"github.com/bookstock/inventory-service/internal/reservation"
	"github.com/bookstock/inventory-service/internal/reservation/dto"
	"github.com/bookstock/inventory-service/pkg/cache"
	"github.com/bookstock/inventory-service/pkg/logger"
	"github.com/bookstock/inventory-service/pkg/postgres"
	"github.com/bookstock/inventory-service/pkg/search"
)

const (
	refTypeReservation = "reservation"
	esIndexName        = "reservations"

	allocationBatchLimit = 1000
)

type reservationUseCase struct {
	db       postgres.Querier
	txm      postgres.TxRunner
	repo     reservation.Repository
	ledger   ledger.Repository
	notifier notify.UseCase
	cache    *cache.RedisClient
	es       *search.Client
	logger   logger.Logger
	cfg      config.ReservationConfig

	now func() time.Time
}

// NewReservationUseCase wires the engine. cache and es may be nil; both are
// read-side conveniences the engine's correctness never depends on.
func NewReservationUseCase(
	db postgres.Querier,
	txm postgres.TxRunner,
	repo reservation.Repository,
	ledgerRepo ledger.Repository,
	notifier notify.UseCase,
	redis *cache.RedisClient,
	es *search.Client,
	log logger.Logger,
	cfg config.ReservationConfig,
) reservation.UseCase {
	if cfg.HoldMinutes <= 0 {
		cfg.HoldMinutes = 120
	}
	if cfg.ActiveDays <= 0 {
		cfg.ActiveDays = 14
	}
	return &reservationUseCase{
		db:       db,
		txm:      txm,
		repo:     repo,
		ledger:   ledgerRepo,
		notifier: notifier,
		cache:    redis,
		es:       es,
		logger:   log,
		cfg:      cfg,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (uc *reservationUseCase) holdWindow(start time.Time) model.HoldWindow {
	return model.HoldWindow{Start: start, End: start.Add(time.Duration(uc.cfg.HoldMinutes) * time.Minute)}
}

func (uc *reservationUseCase) activeWindow(start time.Time) model.HoldWindow {
	return model.HoldWindow{Start: start, End: start.AddDate(0, 0, uc.cfg.ActiveDays)}
}

func (uc *reservationUseCase) availability(ctx context.Context, q postgres.Querier, branchID, itemID uuid.UUID) (onHand, reserved int, err error) {
	onHand, err = uc.ledger.SumPhysical(ctx, q, branchID, itemID)
	if err != nil {
		return 0, 0, err
	}
	reserved, err = uc.repo.ReservedQty(ctx, q, branchID, itemID)
	if err != nil {
		return 0, 0, err
	}
	return onHand, reserved, nil
}

func (uc *reservationUseCase) Create(ctx context.Context, input *dto.CreateReservationInput) (uuid.UUID, error) {
	if input.Qty <= 0 {
		return uuid.Nil, apperrors.Validationf("qty must be > 0, got %d", input.Qty)
	}
	if input.UnitPriceCents < 0 || input.PrepaidCents < 0 {
		return uuid.Nil, apperrors.Validationf("prices must be >= 0")
	}
	if input.PaymentMethod != nil && !input.PaymentMethod.Valid() {
		return uuid.Nil, apperrors.Validationf("unknown payment method %q", *input.PaymentMethod)
	}

	var resID uuid.UUID
	err := uc.txm.RunInTx(ctx, func(q postgres.Querier) error {
		// Serialize on the pair before reading availability so two
		// concurrent creates cannot both see the last unit.
		if err := uc.repo.AcquirePairLock(ctx, q, input.BranchID, input.ItemID); err != nil {
			return err
		}

		defaultPrice, ok, err := uc.repo.ItemUnitPriceCents(ctx, q, input.ItemID)
		if err != nil {
			return err
		}
		if !ok {
			return apperrors.NotFound("item", input.ItemID)
		}

		if existing, found, err := uc.repo.FindOpenByStudent(ctx, q, input.BranchID, input.ItemID, input.StudentID); err != nil {
			return err
		} else if found {
			resID = existing
			return nil
		}

		onHand, reserved, err := uc.availability(ctx, q, input.BranchID, input.ItemID)
		if err != nil {
			return err
		}
		available := onHand - reserved

		unitPrice := input.UnitPriceCents
		if unitPrice == 0 {
			unitPrice = defaultPrice
		}

		now := uc.now()
		res := &model.Reservation{
			BranchID:        input.BranchID,
			ItemID:          input.ItemID,
			StudentID:       input.StudentID,
			Qty:             input.Qty,
			Status:          model.StatusQueued,
			UnitPriceCents:  unitPrice,
			PrepaidCents:    input.PrepaidCents,
			PaymentMethod:   input.PaymentMethod,
			PayerReference:  input.PayerReference,
			PaymentProofURL: input.PaymentProofURL,
		}
		if available >= input.Qty {
			w := uc.holdWindow(now)
			res.Status = model.StatusHold
			res.WindowStart, res.WindowEnd = &w.Start, &w.End
		}

		id, err := uc.repo.Insert(ctx, q, res)
		if err != nil {
			return err
		}

		if res.Status == model.StatusHold {
			if _, err := uc.ledger.Append(ctx, q, holdEntry(input.BranchID, input.ItemID, -input.Qty, id, now)); err != nil {
				return err
			}
		}

		resID = id
		return nil
	})

	if err != nil {
		// Another create for the same triple won the race between our
		// existence check and the insert: re-read and return its id.
		if postgres.IsUniqueViolation(err, reservation.UniqueOpenConstraint) {
			if existing, found, ferr := uc.repo.FindOpenByStudent(ctx, uc.db, input.BranchID, input.ItemID, input.StudentID); ferr == nil && found {
				return existing, nil
			}
			return uuid.Nil, &apperrors.ConflictError{Constraint: reservation.UniqueOpenConstraint, Detail: err.Error()}
		}
		return uuid.Nil, err
	}

	uc.afterMutation(input.BranchID, input.ItemID, resID)
	return resID, nil
}

func (uc *reservationUseCase) Prepay(ctx context.Context, input *dto.PrepayInput) (*dto.ReservationSummary, error) {
	if input.UnitPriceCents < 0 {
		return nil, apperrors.Validationf("unit_price_cents must be >= 0")
	}

	err := uc.txm.RunInTx(ctx, func(q postgres.Querier) error {
		res, err := uc.repo.GetForUpdate(ctx, q, input.ReservationID)
		if err != nil {
			return err
		}
		if res == nil {
			return apperrors.NotFound("reservation", input.ReservationID)
		}
		if res.Status.Terminal() {
			return &apperrors.InvalidStateError{Op: "prepay", Status: string(res.Status)}
		}

		total := input.UnitPriceCents * int64(res.Qty)
		if input.PrepaidCents != nil {
			total = *input.PrepaidCents
		}
		if total < 0 {
			return apperrors.Validationf("prepaid_cents must be >= 0")
		}

		return uc.repo.SetPrepayment(ctx, q, res.ID, input.UnitPriceCents, total, uc.now())
	})
	if err != nil {
		return nil, err
	}

	return uc.GetSummary(ctx, input.ReservationID)
}

func (uc *reservationUseCase) MarkReady(ctx context.Context, input *dto.MarkReadyInput) (*dto.ReservationSummary, error) {
	var branchID, itemID uuid.UUID

	err := uc.txm.RunInTx(ctx, func(q postgres.Querier) error {
		res, err := uc.repo.GetForUpdate(ctx, q, input.ReservationID)
		if err != nil {
			return err
		}
		if res == nil {
			return apperrors.NotFound("reservation", input.ReservationID)
		}
		if res.Status.Terminal() {
			return &apperrors.InvalidStateError{Op: "mark ready", Status: string(res.Status)}
		}
		branchID, itemID = res.BranchID, res.ItemID

		now := uc.now()

		if res.Status == model.StatusQueued {
			// Queued rows carry no stock promise yet; commit one now or
			// refuse without touching the row.
			if err := uc.repo.AcquirePairLock(ctx, q, res.BranchID, res.ItemID); err != nil {
				return err
			}
			onHand, reserved, err := uc.availability(ctx, q, res.BranchID, res.ItemID)
			if err != nil {
				return err
			}
			if available := onHand - reserved; available < res.Qty {
				return &apperrors.InsufficientStockError{
					BranchID: res.BranchID, ItemID: res.ItemID,
					Requested: res.Qty, Available: available,
				}
			}
			if _, err := uc.ledger.Append(ctx, q, holdEntry(res.BranchID, res.ItemID, -res.Qty, res.ID, now)); err != nil {
				return err
			}
		}

		var notifiedAt *time.Time
		if input.Notify {
			notifiedAt = &now
		}
		return uc.repo.Activate(ctx, q, res.ID, uc.activeWindow(now), notifiedAt)
	})
	if err != nil {
		return nil, err
	}

	if input.Notify {
		// Enqueue-only: a notification failure degrades to an outbox retry
		// and never rolls back the transition that triggered it.
		if _, _, err := uc.notifier.EnsureQueuedReady(ctx, input.ReservationID); err != nil {
			uc.logger.Warn("failed to enqueue pickup notification",
				zap.String("reservation_id", input.ReservationID.String()), zap.Error(err))
		}
	}

	uc.afterMutation(branchID, itemID, input.ReservationID)
	return uc.GetSummary(ctx, input.ReservationID)
}

func (uc *reservationUseCase) Cancel(ctx context.Context, id uuid.UUID) error {
	var (
		branchID, itemID uuid.UUID
		freedStock       bool
	)

	err := uc.txm.RunInTx(ctx, func(q postgres.Querier) error {
		res, err := uc.repo.GetForUpdate(ctx, q, id)
		if err != nil {
			return err
		}
		if res == nil {
			return apperrors.NotFound("reservation", id)
		}
		if res.Status.Terminal() {
			// Idempotent: cancelling twice must not double-release stock.
			return nil
		}
		branchID, itemID = res.BranchID, res.ItemID

		now := uc.now()
		if err := uc.repo.MarkCancelled(ctx, q, id, now); err != nil {
			return err
		}

		if res.Status.Open() {
			if _, err := uc.ledger.Append(ctx, q, releaseEntry(res.BranchID, res.ItemID, res.Qty, id, now)); err != nil {
				return err
			}
			freedStock = true
		}
		return nil
	})
	if err != nil {
		return err
	}

	if freedStock {
		uc.afterMutation(branchID, itemID, id)
		if _, err := uc.AllocateQueued(ctx, branchID, itemID); err != nil {
			uc.logger.Warn("allocation after cancel failed",
				zap.String("branch_id", branchID.String()),
				zap.String("item_id", itemID.String()),
				zap.Error(err))
		}
	}
	return nil
}

func (uc *reservationUseCase) Fulfill(ctx context.Context, id uuid.UUID) (*dto.FulfillResult, error) {
	var (
		result           dto.FulfillResult
		branchID, itemID uuid.UUID
	)

	err := uc.txm.RunInTx(ctx, func(q postgres.Querier) error {
		res, err := uc.repo.GetForUpdate(ctx, q, id)
		if err != nil {
			return err
		}
		if res == nil {
			return apperrors.NotFound("reservation", id)
		}
		if res.Status != model.StatusActive {
			return &apperrors.InvalidStateError{Op: "fulfill", Status: string(res.Status)}
		}
		branchID, itemID = res.BranchID, res.ItemID

		// Stock can have drifted through adjustments since activation;
		// re-validate physical on-hand under the pair lock.
		if err := uc.repo.AcquirePairLock(ctx, q, res.BranchID, res.ItemID); err != nil {
			return err
		}
		onHand, err := uc.ledger.SumPhysical(ctx, q, res.BranchID, res.ItemID)
		if err != nil {
			return err
		}
		if onHand < res.Qty {
			return &apperrors.InsufficientStockError{
				BranchID: res.BranchID, ItemID: res.ItemID,
				Requested: res.Qty, Available: onHand,
			}
		}

		now := uc.now()
		if err := uc.repo.MarkFulfilled(ctx, q, id, now); err != nil {
			return err
		}
		if _, err := uc.ledger.Append(ctx, q, releaseEntry(res.BranchID, res.ItemID, res.Qty, id, now)); err != nil {
			return err
		}
		if _, err := uc.ledger.Append(ctx, q, shipEntry(res.BranchID, res.ItemID, -res.Qty, id, now)); err != nil {
			return err
		}

		method := model.PaymentCash
		if res.PaymentMethod != nil {
			method = *res.PaymentMethod
		}
		total := res.UnitPriceCents * int64(res.Qty)
		saleID, err := uc.repo.InsertSale(ctx, q, &model.Sale{
			BranchID:       res.BranchID,
			ItemID:         res.ItemID,
			ReservationID:  &res.ID,
			StudentID:      res.StudentID,
			Qty:            res.Qty,
			UnitPriceCents: res.UnitPriceCents,
			TotalCents:     total,
			PaymentMethod:  method,
			SoldAt:         now,
		})
		if err != nil {
			return err
		}

		reservedAfter, err := uc.repo.ReservedQty(ctx, q, res.BranchID, res.ItemID)
		if err != nil {
			return err
		}
		onHandAfter := onHand - res.Qty

		result = dto.FulfillResult{
			ReservationID:  id,
			SaleID:         saleID,
			Qty:            res.Qty,
			UnitPriceCents: res.UnitPriceCents,
			TotalCents:     total,
			SoldAt:         now,
			OnHand:         onHandAfter,
			Reserved:       reservedAfter,
			Available:      onHandAfter - reservedAfter,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.afterMutation(branchID, itemID, id)
	return &result, nil
}

func (uc *reservationUseCase) Unfulfill(ctx context.Context, id uuid.UUID) (*dto.ReservationSummary, error) {
	var branchID, itemID uuid.UUID

	err := uc.txm.RunInTx(ctx, func(q postgres.Querier) error {
		res, err := uc.repo.GetForUpdate(ctx, q, id)
		if err != nil {
			return err
		}
		if res == nil {
			return apperrors.NotFound("reservation", id)
		}
		if res.Status != model.StatusFulfilled {
			return &apperrors.InvalidStateError{Op: "unfulfill", Status: string(res.Status)}
		}
		branchID, itemID = res.BranchID, res.ItemID

		if err := uc.repo.DeleteSaleByReservation(ctx, q, id); err != nil {
			return err
		}

		// Compensate the fulfillment exactly: put the units back on the
		// shelf and re-establish the hold.
		now := uc.now()
		if _, err := uc.ledger.Append(ctx, q, holdEntry(res.BranchID, res.ItemID, -res.Qty, id, now)); err != nil {
			return err
		}
		if _, err := uc.ledger.Append(ctx, q, shipEntry(res.BranchID, res.ItemID, res.Qty, id, now)); err != nil {
			return err
		}

		return uc.repo.MarkUnfulfilled(ctx, q, id)
	})
	if err != nil {
		return nil, err
	}

	uc.afterMutation(branchID, itemID, id)
	return uc.GetSummary(ctx, id)
}

func (uc *reservationUseCase) AllocateQueued(ctx context.Context, branchID, itemID uuid.UUID) (int, error) {
	var promoted []uuid.UUID

	err := uc.txm.RunInTx(ctx, func(q postgres.Querier) error {
		if err := uc.repo.AcquirePairLock(ctx, q, branchID, itemID); err != nil {
			return err
		}

		onHand, reserved, err := uc.availability(ctx, q, branchID, itemID)
		if err != nil {
			return err
		}
		available := onHand - reserved
		if available <= 0 {
			return nil
		}

		rows, err := uc.repo.ListQueuedFIFO(ctx, q, branchID, itemID, allocationBatchLimit)
		if err != nil {
			return err
		}

		now := uc.now()
		window := uc.activeWindow(now)
		for _, row := range rows {
			// Strict head-of-queue blocking: no partial allocation, no
			// skipping ahead.
			if row.Qty > available {
				break
			}
			if _, err := uc.ledger.Append(ctx, q, holdEntry(branchID, itemID, -row.Qty, row.ID, now)); err != nil {
				return err
			}
			if err := uc.repo.Activate(ctx, q, row.ID, window, &now); err != nil {
				return err
			}
			available -= row.Qty
			promoted = append(promoted, row.ID)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	uc.notifyPromoted(ctx, branchID, itemID, promoted)
	return len(promoted), nil
}

func (uc *reservationUseCase) ActivateHolds(ctx context.Context, branchID, itemID uuid.UUID) (int, error) {
	var promoted []uuid.UUID

	err := uc.txm.RunInTx(ctx, func(q postgres.Querier) error {
		if err := uc.repo.AcquirePairLock(ctx, q, branchID, itemID); err != nil {
			return err
		}

		onHand, err := uc.ledger.SumPhysical(ctx, q, branchID, itemID)
		if err != nil {
			return err
		}
		activeReserved, err := uc.repo.ActiveReservedQty(ctx, q, branchID, itemID)
		if err != nil {
			return err
		}
		// Holds already count as reserved; active means picking up, so the
		// cap is physical stock not yet claimed by active rows.
		capacity := onHand - activeReserved
		if capacity <= 0 {
			return nil
		}

		rows, err := uc.repo.ListHoldsFIFO(ctx, q, branchID, itemID, allocationBatchLimit)
		if err != nil {
			return err
		}

		now := uc.now()
		window := uc.activeWindow(now)
		for _, row := range rows {
			if row.Qty > capacity {
				break
			}
			if err := uc.repo.Activate(ctx, q, row.ID, window, &now); err != nil {
				return err
			}
			capacity -= row.Qty
			promoted = append(promoted, row.ID)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	uc.notifyPromoted(ctx, branchID, itemID, promoted)
	return len(promoted), nil
}

func (uc *reservationUseCase) ExpireSweep(ctx context.Context) (int, error) {
	var expired []model.Reservation

	err := uc.txm.RunInTx(ctx, func(q postgres.Querier) error {
		rows, err := uc.repo.ExpireOverdue(ctx, q, uc.now())
		if err != nil {
			return err
		}
		for _, row := range rows {
			if _, err := uc.ledger.Append(ctx, q, expireEntry(row.BranchID, row.ItemID, row.Qty, row.ID, uc.now())); err != nil {
				return err
			}
		}
		expired = rows
		return nil
	})
	if err != nil {
		return 0, err
	}

	// Expiry frees stock; give waiting queued rows a chance per pair.
	seen := map[string]bool{}
	for _, row := range expired {
		key := row.BranchID.String() + ":" + row.ItemID.String()
		if seen[key] {
			continue
		}
		seen[key] = true
		uc.invalidateSummary(row.BranchID, row.ItemID)
		if _, err := uc.AllocateQueued(ctx, row.BranchID, row.ItemID); err != nil {
			uc.logger.Warn("allocation after expiry failed",
				zap.String("branch_id", row.BranchID.String()),
				zap.String("item_id", row.ItemID.String()),
				zap.Error(err))
		}
	}

	return len(expired), nil
}

func (uc *reservationUseCase) GetSummary(ctx context.Context, id uuid.UUID) (*dto.ReservationSummary, error) {
	summary, err := uc.repo.GetSummary(ctx, uc.db, id)
	if err != nil {
		return nil, err
	}
	if summary == nil {
		return nil, apperrors.NotFound("reservation", id)
	}
	return summary, nil
}

func (uc *reservationUseCase) Search(ctx context.Context, filters *dto.SearchFilters) ([]dto.ReservationSummary, error) {
	if out, ok := uc.searchElastic(ctx, filters); ok {
		return out, nil
	}
	return uc.repo.Search(ctx, uc.db, filters)
}

func (uc *reservationUseCase) searchElastic(ctx context.Context, filters *dto.SearchFilters) ([]dto.ReservationSummary, bool) {
	if uc.es == nil || (filters.Query == "" && filters.Phone == "") {
		return nil, false
	}

	must := []map[string]interface{}{}
	if filters.Query != "" {
		must = append(must, map[string]interface{}{
			"query_string": map[string]interface{}{
				"query":  "*" + filters.Query + "*",
				"fields": []string{"student_name^3", "item_name", "sku"},
			},
		})
	}
	if filters.Phone != "" {
		must = append(must, map[string]interface{}{
			"wildcard": map[string]interface{}{
				"student_phone": "*" + filters.Phone + "*",
			},
		})
	}

	query := map[string]interface{}{
		"query": map[string]interface{}{
			"bool": map[string]interface{}{"must": must},
		},
		"sort": []map[string]interface{}{
			{"created_at": map[string]interface{}{"order": "desc"}},
		},
	}
	if filters.Limit > 0 {
		query["size"] = filters.Limit
	}

	res, err := uc.es.Search(ctx, esIndexName, query)
	if err != nil {
		uc.logger.Error("reservation search via elasticsearch failed, falling back to SQL", zap.Error(err))
		return nil, false
	}

	out := make([]dto.ReservationSummary, 0, len(res.Hits.Hits))
	for _, hit := range res.Hits.Hits {
		var s dto.ReservationSummary
		if err := json.Unmarshal(hit.Source, &s); err == nil {
			out = append(out, s)
		}
	}
	return out, true
}

// afterMutation refreshes the read side: drops the pair's cached summary
// and re-indexes the reservation document.
func (uc *reservationUseCase) afterMutation(branchID, itemID, reservationID uuid.UUID) {
	uc.invalidateSummary(branchID, itemID)
	uc.syncToElastic(reservationID)
}

func (uc *reservationUseCase) invalidateSummary(branchID, itemID uuid.UUID) {
	if uc.cache == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := uc.cache.Delete(ctx, invdto.SummaryCacheKey(branchID, itemID)); err != nil {
		uc.logger.Warn("failed to invalidate inventory summary cache", zap.Error(err))
	}
}

// EnsureSearchIndex creates the reservation search index if missing. Run
// once at startup; indexing and search tolerate the index already existing.
func EnsureSearchIndex(ctx context.Context, es *search.Client) error {
	if es == nil {
		return nil
	}
	mapping := `{
		"mappings": {
			"properties": {
				"id": { "type": "keyword" },
				"branch_id": { "type": "keyword" },
				"branch_code": { "type": "keyword" },
				"item_id": { "type": "keyword" },
				"sku": { "type": "keyword" },
				"item_name": { "type": "text" },
				"student_id": { "type": "keyword" },
				"student_name": { "type": "text" },
				"student_phone": { "type": "keyword" },
				"status": { "type": "keyword" },
				"qty": { "type": "integer" },
				"created_at": { "type": "date" }
			}
		}
	}`
	return es.CreateIndex(ctx, esIndexName, mapping)
}

func (uc *reservationUseCase) syncToElastic(reservationID uuid.UUID) {
	if uc.es == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		summary, err := uc.repo.GetSummary(ctx, uc.db, reservationID)
		if err != nil || summary == nil {
			return
		}
		if err := uc.es.Index(ctx, esIndexName, reservationID.String(), summary); err != nil {
			uc.logger.Error("failed to index reservation", zap.Error(err))
		}
	}()
}

func (uc *reservationUseCase) notifyPromoted(ctx context.Context, branchID, itemID uuid.UUID, promoted []uuid.UUID) {
	if len(promoted) == 0 {
		return
	}
	uc.invalidateSummary(branchID, itemID)
	for _, id := range promoted {
		if _, _, err := uc.notifier.EnsureQueuedReady(ctx, id); err != nil {
			uc.logger.Warn("failed to enqueue pickup notification",
				zap.String("reservation_id", id.String()), zap.Error(err))
		}
		uc.syncToElastic(id)
	}
}

func holdEntry(branchID, itemID uuid.UUID, qty int, resID uuid.UUID, at time.Time) *model.StockLedger {
	return ledgerEntry(branchID, itemID, model.EventReserveHold, qty, resID, at)
}

func releaseEntry(branchID, itemID uuid.UUID, qty int, resID uuid.UUID, at time.Time) *model.StockLedger {
	return ledgerEntry(branchID, itemID, model.EventReserveRelease, qty, resID, at)
}

func shipEntry(branchID, itemID uuid.UUID, qty int, resID uuid.UUID, at time.Time) *model.StockLedger {
	return ledgerEntry(branchID, itemID, model.EventShip, qty, resID, at)
}

func expireEntry(branchID, itemID uuid.UUID, qty int, resID uuid.UUID, at time.Time) *model.StockLedger {
	return ledgerEntry(branchID, itemID, model.EventExpire, qty, resID, at)
}

func ledgerEntry(branchID, itemID uuid.UUID, kind model.StockEventKind, qty int, resID uuid.UUID, at time.Time) *model.StockLedger {
	refType := refTypeReservation
	refID := resID
	return &model.StockLedger{
		BranchID: branchID,
		ItemID:   itemID,
		Event:    kind,
		Qty:      qty,
		RefType:  &refType,
		RefID:    &refID,
		At:       at,
	}
}
