package usecase

import (
	"context"

	"github.com/squeakroad/case-service/internal/domain"
)

// AwardCase releases a paid case to the seller. Only the seller or an admin
// may award.
func (uc *DefaultCaseUsecase) AwardCase(ctx context.Context, party domain.Party, publicID string) (*domain.Case, error) {
	c, err := uc.caseRepo.GetCaseByPublicID(ctx, publicID)
	if err != nil {
		return nil, err
	}
	if !party.IsAdmin && party.ID != c.SellerID {
		return nil, domain.ErrForbidden
	}

	updated, err := uc.caseRepo.MarkAwarded(ctx, c.ID)
	if err != nil {
		uc.metrics.RecordCaseError("award", errorKind(err))
		return nil, err
	}

	uc.metrics.RecordCaseAwarded()
	uc.log.Info("case awarded", "case_public_id", updated.PublicID, "by", party.ID)
	uc.publish(ctx, domain.CaseAwarded, updated)
	return updated, nil
}
