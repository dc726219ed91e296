package setup

import (
	"github.com/squeakroad/case-service/internal/infrastructure/pgp"
	usecase "github.com/squeakroad/case-service/internal/usecase/cases"
)

type UseCases struct {
	CaseUsecase usecase.CaseUsecase
}

func InitializeUseCases(deps *Dependencies) *UseCases {
	market := deps.Config.Market
	caseUsecase := usecase.NewDefaultCaseUsecase(
		deps.Repositories.CaseRepo,
		deps.Repositories.ListingRepo,
		deps.Lightning,
		deps.Lightning,
		pgp.NewMessageValidator(),
		deps.CaseEvents,
		deps.Repositories.FailureLog,
		deps.Metrics,
		deps.Log,
		usecase.Settings{
			MaxUnpaidCases: market.MaxUnpaidCases,
			InvoiceExpiry:  market.InvoiceExpiry,
			ExpiryGrace:    deps.Config.Lightning.InvoiceTimeout + market.SweepInterval,
			SweepBatchSize: market.SweepBatchSize,
		},
	)
	return &UseCases{CaseUsecase: caseUsecase}
}
