package casedto

import "github.com/squeakroad/case-service/internal/domain"

type CreateCaseInput struct {
	Party           domain.Party
	ListingPublicID string
	Quantity        uint64
	CaseDetails     string
}

type GetPartyCasesInput struct {
	Party domain.Party
	Role  domain.PartyRole
	Page  int64
	Limit int64
}
