package casedto

import "github.com/squeakroad/case-service/internal/domain"

type CaseOutput struct {
	Case    domain.Case
	Listing domain.Listing
}

type Pagination struct {
	CurrentPage  int64
	TotalPages   int64
	TotalItems   int64
	ItemsPerPage int64
}

type GetPartyCasesOutput struct {
	Cases      []*domain.Case
	Pagination Pagination
}

type SweepResult struct {
	Checked int
	Paid    int
	Expired int
	Failed  int
}
