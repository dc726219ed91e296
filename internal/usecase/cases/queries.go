package usecase

import (
	"context"
	"math"

	"github.com/squeakroad/case-service/internal/domain"
	casedto "github.com/squeakroad/case-service/internal/usecase/dto/case"
)

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
)

func (uc *DefaultCaseUsecase) GetCaseForParty(ctx context.Context, party domain.Party, publicID string) (*domain.Case, error) {
	c, err := uc.caseRepo.GetCaseByPublicID(ctx, publicID)
	if err != nil {
		return nil, err
	}
	if !party.IsAdmin && party.ID != c.BuyerID && party.ID != c.SellerID {
		return nil, domain.ErrForbidden
	}
	return c, nil
}

func (uc *DefaultCaseUsecase) GetPartyCases(ctx context.Context, input *casedto.GetPartyCasesInput) (*casedto.GetPartyCasesOutput, error) {
	switch input.Role {
	case domain.RoleBuyer, domain.RoleSeller:
	default:
		return nil, domain.NewValidationError("role must be buyer or seller")
	}

	page, limit := input.Page, input.Limit
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}
	// The row offset must fit an int on every platform.
	if page-1 > math.MaxInt32/limit {
		return nil, domain.NewValidationError("page out of range")
	}

	cases, total, err := uc.caseRepo.GetCasesByParty(ctx, input.Party.ID, input.Role, page, limit)
	if err != nil {
		return nil, err
	}

	return &casedto.GetPartyCasesOutput{
		Cases: cases,
		Pagination: casedto.Pagination{
			CurrentPage:  page,
			TotalPages:   (total + limit - 1) / limit,
			TotalItems:   total,
			ItemsPerPage: limit,
		},
	}, nil
}
