package usecase

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/squeakroad/case-service/internal/domain"
	"github.com/squeakroad/case-service/internal/infrastructure/metrics"
	casedto "github.com/squeakroad/case-service/internal/usecase/dto/case"
)

type CaseUsecase interface {
	CreateCase(ctx context.Context, input *casedto.CreateCaseInput) (*casedto.CaseOutput, error)
	ConfirmPayment(ctx context.Context, settlement domain.Settlement) (*domain.Case, error)
	AwardCase(ctx context.Context, party domain.Party, publicID string) (*domain.Case, error)
	CancelCase(ctx context.Context, party domain.Party, publicID string) (*domain.Case, error)
	SweepUnpaidCases(ctx context.Context) (*casedto.SweepResult, error)
	GetCaseForParty(ctx context.Context, party domain.Party, publicID string) (*domain.Case, error)
	GetPartyCases(ctx context.Context, input *casedto.GetPartyCasesInput) (*casedto.GetPartyCasesOutput, error)
}

type Settings struct {
	MaxUnpaidCases int64
	InvoiceExpiry  time.Duration
	// ExpiryGrace is added to InvoiceExpiry before an open invoice counts as
	// lapsed. It must cover the invoice RPC and one sweep interval, since
	// created_time is taken before the node starts the invoice clock.
	ExpiryGrace    time.Duration
	SweepBatchSize int
}

type DefaultCaseUsecase struct {
	caseRepo    domain.CaseRepository
	listingRepo domain.ListingRepository
	issuer      domain.InvoiceIssuer
	invoices    domain.InvoiceLookup
	validator   domain.CaseDetailsValidator
	events      domain.CaseEventPublisher
	failures    domain.CaseFailureLogger
	metrics     *metrics.CaseMetrics
	log         *slog.Logger
	settings    Settings

	now         func() time.Time
	newPublicID func() string
}

func NewDefaultCaseUsecase(
	caseRepo domain.CaseRepository,
	listingRepo domain.ListingRepository,
	issuer domain.InvoiceIssuer,
	invoices domain.InvoiceLookup,
	validator domain.CaseDetailsValidator,
	events domain.CaseEventPublisher,
	failures domain.CaseFailureLogger,
	caseMetrics *metrics.CaseMetrics,
	log *slog.Logger,
	settings Settings,
) *DefaultCaseUsecase {
	return &DefaultCaseUsecase{
		caseRepo:    caseRepo,
		listingRepo: listingRepo,
		issuer:      issuer,
		invoices:    invoices,
		validator:   validator,
		events:      events,
		failures:    failures,
		metrics:     caseMetrics,
		log:         log,
		settings:    settings,
		now:         time.Now,
		newPublicID: uuid.NewString,
	}
}

// publish never fails the caller: the ledger is the source of truth and
// events are a best-effort notification.
func (uc *DefaultCaseUsecase) publish(ctx context.Context, eventType domain.CaseEventType, c *domain.Case) {
	if err := uc.events.PublishCaseEvent(ctx, eventType, c); err != nil {
		uc.log.Error("failed to publish case event",
			"type", eventType,
			"case_public_id", c.PublicID,
			"error", err,
		)
	}
}

// errorKind names the error family for metrics and the failure audit log.
func errorKind(err error) string {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return "validation"
	case errors.Is(err, domain.ErrOverflow):
		return "overflow"
	case errors.Is(err, domain.ErrAdmissionDenied):
		return "admission_denied"
	case errors.Is(err, domain.ErrPaymentNodeUnavailable):
		return "payment_node_unavailable"
	case errors.Is(err, domain.ErrInvoiceCreationFailed):
		return "invoice_creation_failed"
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrForbidden):
		return "forbidden"
	case errors.Is(err, domain.ErrAmountMismatch):
		return "amount_mismatch"
	case errors.Is(err, domain.ErrAlreadyPaid),
		errors.Is(err, domain.ErrNotPaid),
		errors.Is(err, domain.ErrAlreadyAwarded),
		errors.Is(err, domain.ErrAlreadyCanceled):
		return "guard"
	case errors.Is(err, domain.ErrPersistence):
		return "persistence"
	default:
		return "unknown"
	}
}
