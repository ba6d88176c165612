package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/bookstock/inventory-service/internal/model"
	"github.com/bookstock/inventory-service/internal/notify"
	"github.com/bookstock/inventory-service/pkg/logger"
	"github.com/bookstock/inventory-service/pkg/postgres"
)

const readyTemplateKey = "reservation_ready"

type notifyUseCase struct {
	db          postgres.Querier
	repo        notify.Repository
	sender      notify.Sender
	logger      logger.Logger
	maxAttempts int
	now         func() time.Time
}

func NewNotifyUseCase(db postgres.Querier, repo notify.Repository, sender notify.Sender, log logger.Logger, maxAttempts int) notify.UseCase {
	if maxAttempts <= 0 {
		maxAttempts = 2
	}
	return &notifyUseCase{
		db:          db,
		repo:        repo,
		sender:      sender,
		logger:      log,
		maxAttempts: maxAttempts,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

func (uc *notifyUseCase) Enqueue(ctx context.Context, reservationID uuid.UUID, phone, message string) (uuid.UUID, error) {
	tpl := readyTemplateKey
	resID := reservationID
	return uc.repo.Insert(ctx, uc.db, &model.NotifyOutbox{
		Channel:       model.OutboxChannelWhatsApp,
		To:            phone,
		Message:       message,
		TemplateKey:   &tpl,
		State:         model.OutboxPending,
		Attempts:      0,
		ReservationID: &resID,
	})
}

func (uc *notifyUseCase) EnsureQueuedReady(ctx context.Context, reservationID uuid.UUID) (uuid.UUID, bool, error) {
	info, err := uc.repo.ReadyInfo(ctx, uc.db, reservationID)
	if err != nil {
		return uuid.Nil, false, err
	}
	if info == nil {
		return uuid.Nil, false, nil
	}

	phone := ""
	if info.Phone != nil {
		phone = strings.TrimSpace(*info.Phone)
	}
	if phone == "" {
		return uuid.Nil, false, nil
	}

	id, err := uc.Enqueue(ctx, reservationID, phone, readyMessage(info))
	if err != nil {
		return uuid.Nil, false, err
	}
	return id, true, nil
}

func readyMessage(info *notify.ReadyInfo) string {
	student := ""
	if info.StudentName != nil {
		student = *info.StudentName
	}
	deadline := ""
	if info.WindowEnd != nil {
		deadline = info.WindowEnd.Format("Mon, 02 Jan 2006 15:04")
	}
	return fmt.Sprintf(
		"Hi %s 👋\nYour book '%s' is ready at %s.\nPlease collect before: %s. Note: No returns are allowed.",
		student, info.ItemName, info.BranchCode, deadline,
	)
}

func (uc *notifyUseCase) Drain(ctx context.Context, limit int) (*notify.DrainResult, error) {
	rows, err := uc.repo.ListPending(ctx, uc.db, model.OutboxChannelWhatsApp, limit)
	if err != nil {
		return nil, err
	}

	result := &notify.DrainResult{Scanned: len(rows)}
	for _, row := range rows {
		// The attempt is recorded before sending so a crash mid-send still
		// counts against the cap.
		if err := uc.repo.IncrementAttempts(ctx, uc.db, row.ID); err != nil {
			uc.logger.Error("failed to record outbox attempt", zap.String("outbox_id", row.ID.String()), zap.Error(err))
			continue
		}
		attempts := row.Attempts + 1

		if err := uc.sender.Send(ctx, row.To, row.Message); err != nil {
			uc.markFailure(ctx, row.ID, attempts, err)
			result.Failed++
			continue
		}

		if err := uc.repo.MarkSent(ctx, uc.db, row.ID, uc.now()); err != nil {
			uc.logger.Error("failed to mark outbox sent", zap.String("outbox_id", row.ID.String()), zap.Error(err))
			continue
		}
		result.Sent++
	}

	return result, nil
}

func (uc *notifyUseCase) markFailure(ctx context.Context, id uuid.UUID, attempts int, sendErr error) {
	state := model.OutboxPending
	if attempts >= uc.maxAttempts {
		state = model.OutboxFailed
	}
	if err := uc.repo.SetFailure(ctx, uc.db, id, state, sendErr.Error()); err != nil {
		uc.logger.Error("failed to mark outbox failure", zap.String("outbox_id", id.String()), zap.Error(err))
	}
	uc.logger.Warn("notification send failed",
		zap.String("outbox_id", id.String()),
		zap.Int("attempts", attempts),
		zap.String("state", string(state)),
		zap.Error(sendErr),
	)
}
