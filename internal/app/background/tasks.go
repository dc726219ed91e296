package background

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/squeakroad/case-service/internal/domain"
	"github.com/squeakroad/case-service/internal/infrastructure/idempotency"
	usecase "github.com/squeakroad/case-service/internal/usecase/cases"
)

const resubscribeDelay = 5 * time.Second

type BackgroundTasks struct {
	CaseUsecase   usecase.CaseUsecase
	Settlements   domain.SettlementSource
	Dedup         domain.DedupStore // optional
	SweepInterval time.Duration

	log *slog.Logger
	wg  sync.WaitGroup
}

func NewBackgroundTasks(
	caseUC usecase.CaseUsecase,
	settlements domain.SettlementSource,
	dedup domain.DedupStore,
	sweepInterval time.Duration,
	log *slog.Logger,
) *BackgroundTasks {
	return &BackgroundTasks{
		CaseUsecase:   caseUC,
		Settlements:   settlements,
		Dedup:         dedup,
		SweepInterval: sweepInterval,
		log:           log,
	}
}

func (bt *BackgroundTasks) StartAll(ctx context.Context) {
	bt.wg.Add(2)
	go func() {
		defer bt.wg.Done()
		bt.WatchPayments(ctx)
	}()
	go func() {
		defer bt.wg.Done()
		bt.SweepUnpaid(ctx)
	}()
}

// Wait blocks until every loop started by StartAll has returned.
func (bt *BackgroundTasks) Wait() {
	bt.wg.Wait()
}

// WatchPayments confirms settlements until ctx is done, resubscribing when
// the source closes its stream.
func (bt *BackgroundTasks) WatchPayments(ctx context.Context) {
	for {
		settlements, err := bt.Settlements.Settlements(ctx)
		if err != nil {
			bt.log.Error("failed to subscribe to settlements", "error", err)
		} else {
			for s := range settlements {
				bt.handleSettlement(ctx, s)
			}
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(resubscribeDelay):
		}
	}
}

func (bt *BackgroundTasks) handleSettlement(ctx context.Context, s domain.Settlement) {
	key := idempotency.SettlementKey(s.PaymentHash)
	if bt.Dedup != nil {
		seen, err := bt.Dedup.Seen(ctx, key)
		if err != nil {
			bt.log.Warn("settlement dedup lookup failed", "payment_hash", s.PaymentHash, "error", err)
		} else if seen {
			return
		}
	}

	c, err := bt.CaseUsecase.ConfirmPayment(ctx, s)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		bt.log.Debug("settlement for unknown invoice", "payment_hash", s.PaymentHash)
		return
	case err != nil:
		bt.log.Error("failed to confirm payment", "payment_hash", s.PaymentHash, "error", err)
		return
	}
	bt.log.Info("payment confirmed", "case_public_id", c.PublicID, "amount_paid_msat", s.AmountPaidMsat)

	if bt.Dedup != nil {
		if err := bt.Dedup.Mark(ctx, key); err != nil {
			bt.log.Warn("failed to mark settlement", "payment_hash", s.PaymentHash, "error", err)
		}
	}
}

func (bt *BackgroundTasks) SweepUnpaid(ctx context.Context) {
	ticker := time.NewTicker(bt.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			res, err := bt.CaseUsecase.SweepUnpaidCases(ctx)
			if err != nil {
				bt.log.Error("unpaid case sweep failed", "error", err)
				continue
			}
			if res.Paid > 0 || res.Expired > 0 || res.Failed > 0 {
				bt.log.Info("unpaid case sweep",
					"checked", res.Checked,
					"paid", res.Paid,
					"expired", res.Expired,
					"failed", res.Failed,
				)
			}
		}
	}
}
