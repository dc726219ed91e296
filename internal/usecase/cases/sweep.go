package usecase

import (
	"context"
	"errors"

	"github.com/squeakroad/case-service/internal/domain"
	casedto "github.com/squeakroad/case-service/internal/usecase/dto/case"
)

// SweepUnpaidCases reconciles the oldest unpaid, unexpired cases with the
// payment node, canceled ones included. Settled invoices are confirmed.
// Invoices the node canceled, or that stayed open past expiry plus grace,
// expire the case and release its admission slot. Lookup failures are logged
// and retried on the next sweep.
func (uc *DefaultCaseUsecase) SweepUnpaidCases(ctx context.Context) (*casedto.SweepResult, error) {
	cases, err := uc.caseRepo.ListUnpaidOpenCases(ctx, uc.settings.SweepBatchSize)
	if err != nil {
		return nil, err
	}

	result := &casedto.SweepResult{}
	lapseAfter := uc.settings.InvoiceExpiry + uc.settings.ExpiryGrace
	now := uc.now()
	for _, c := range cases {
		if ctx.Err() != nil {
			break
		}
		result.Checked++

		st, err := uc.invoices.LookupInvoice(ctx, c.InvoiceHash)
		if err != nil {
			result.Failed++
			uc.log.Warn("invoice lookup failed", "case_public_id", c.PublicID, "error", err)
			continue
		}

		switch {
		case st.State == domain.InvoiceSettled:
			if _, err := uc.ConfirmPayment(ctx, domain.Settlement{
				PaymentHash:    c.InvoiceHash,
				AmountPaidMsat: st.AmountPaidMsat,
				SettledAt:      st.SettledAt,
			}); err != nil {
				result.Failed++
				continue
			}
			result.Paid++

		case st.State == domain.InvoiceCanceled,
			st.State == domain.InvoiceOpen && now.After(c.CreatedTime.Add(lapseAfter)):
			expired, err := uc.expire(ctx, c)
			if err != nil {
				result.Failed++
				continue
			}
			if expired {
				result.Expired++
			}
		}
	}

	if unpaid, err := uc.caseRepo.CountUnpaidOpenCases(ctx); err == nil {
		uc.metrics.SetUnpaidOpenCases(unpaid)
	}
	return result, nil
}

func (uc *DefaultCaseUsecase) expire(ctx context.Context, c *domain.Case) (bool, error) {
	updated, err := uc.caseRepo.Expire(ctx, c.ID)
	if errors.Is(err, domain.ErrAlreadyPaid) {
		// Settled between the lookup and the lock; the watcher owns it now.
		return false, nil
	}
	if err != nil {
		uc.metrics.RecordCaseError("expire", errorKind(err))
		uc.log.Error("failed to expire case", "case_public_id", c.PublicID, "error", err)
		return false, err
	}

	uc.metrics.RecordCaseExpired()
	uc.log.Info("case expired", "case_public_id", updated.PublicID)
	uc.publish(ctx, domain.CaseExpired, updated)
	return true, nil
}
