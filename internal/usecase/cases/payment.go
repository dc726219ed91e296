package usecase

import (
	"context"
	"errors"

	"github.com/squeakroad/case-service/internal/domain"
)

// ConfirmPayment applies a settlement to the case bound to its invoice.
// Repeated deliveries of the same settlement return the case unchanged.
func (uc *DefaultCaseUsecase) ConfirmPayment(ctx context.Context, settlement domain.Settlement) (*domain.Case, error) {
	c, err := uc.caseRepo.GetCaseByInvoiceHash(ctx, settlement.PaymentHash)
	if err != nil {
		uc.metrics.RecordCaseError("confirm_payment", errorKind(err))
		return nil, err
	}
	if c.Paid {
		return c, nil
	}

	settledAt := settlement.SettledAt
	if settledAt.IsZero() {
		settledAt = uc.now()
	}

	updated, err := uc.caseRepo.MarkPaid(ctx, c.ID, settledAt.UTC(), settlement.AmountPaidMsat)
	if errors.Is(err, domain.ErrAlreadyPaid) {
		return uc.caseRepo.GetCaseByID(ctx, c.ID)
	}
	if err != nil {
		uc.metrics.RecordCaseError("confirm_payment", errorKind(err))
		uc.log.Error("failed to confirm payment",
			"case_public_id", c.PublicID,
			"invoice_hash", settlement.PaymentHash,
			"amount_paid_msat", settlement.AmountPaidMsat,
			"error", err,
		)
		return nil, err
	}

	uc.metrics.RecordCasePaid()
	if updated.Canceled() {
		uc.log.Warn("payment received for canceled case", "case_public_id", updated.PublicID)
	} else {
		uc.log.Info("case paid", "case_public_id", updated.PublicID)
	}
	uc.publish(ctx, domain.CasePaid, updated)
	return updated, nil
}
