package usecase

import (
	"context"

	"github.com/squeakroad/case-service/internal/domain"
)

// CancelCase cancels on behalf of the case's buyer or seller. Canceling
// twice as the same party is a no-op.
func (uc *DefaultCaseUsecase) CancelCase(ctx context.Context, party domain.Party, publicID string) (*domain.Case, error) {
	c, err := uc.caseRepo.GetCaseByPublicID(ctx, publicID)
	if err != nil {
		return nil, err
	}

	var (
		role            domain.PartyRole
		alreadyCanceled bool
		cancel          func(context.Context, int64) (*domain.Case, error)
	)
	switch party.ID {
	case c.BuyerID:
		role, alreadyCanceled, cancel = domain.RoleBuyer, c.CanceledByBuyer, uc.caseRepo.CancelByBuyer
	case c.SellerID:
		role, alreadyCanceled, cancel = domain.RoleSeller, c.CanceledBySeller, uc.caseRepo.CancelBySeller
	default:
		return nil, domain.ErrForbidden
	}
	if alreadyCanceled {
		return c, nil
	}

	updated, err := cancel(ctx, c.ID)
	if err != nil {
		uc.metrics.RecordCaseError("cancel", errorKind(err))
		return nil, err
	}

	uc.metrics.RecordCaseCanceled(string(role))
	uc.log.Info("case canceled", "case_public_id", updated.PublicID, "by", role)
	uc.publish(ctx, domain.CaseCanceled, updated)
	return updated, nil
}
