package usecase

import (
	"context"
	"errors"

	"github.com/squeakroad/case-service/internal/domain"
	casedto "github.com/squeakroad/case-service/internal/usecase/dto/case"
)

// CreateCase validates the request, prices it, issues an invoice for the
// amount owed and stores the case under the unpaid ceiling.
func (uc *DefaultCaseUsecase) CreateCase(ctx context.Context, input *casedto.CreateCaseInput) (*casedto.CaseOutput, error) {
	start := uc.now()

	listing, err := uc.listingRepo.GetListingByPublicID(ctx, input.ListingPublicID)
	if err != nil {
		return nil, uc.createFailed(ctx, input, err, "")
	}

	if err := uc.validateCreate(input, listing); err != nil {
		return nil, uc.createFailed(ctx, input, err, "")
	}

	terms, err := domain.ComputeTerms(input.Quantity, listing.PriceSat, listing.FeeRateBasisPoints)
	if err != nil {
		return nil, uc.createFailed(ctx, input, err, "")
	}
	amountMsat, err := domain.SatToMsat(terms.AmountOwedSat)
	if err != nil {
		return nil, uc.createFailed(ctx, input, err, "")
	}

	// Cheap early refusal so a full market does not mint invoices. Insert
	// checks again.
	unpaid, err := uc.caseRepo.CountUnpaidOpenCases(ctx)
	if err != nil {
		return nil, uc.createFailed(ctx, input, err, "")
	}
	if unpaid >= uc.settings.MaxUnpaidCases {
		return nil, uc.createFailed(ctx, input, domain.ErrAdmissionDenied, "")
	}

	publicID := uc.newPublicID()
	invoice, err := uc.issuer.CreateInvoice(ctx, amountMsat, "case "+publicID)
	if err != nil {
		return nil, uc.createFailed(ctx, input, err, "")
	}

	c := &domain.Case{
		PublicID:              publicID,
		Quantity:              input.Quantity,
		BuyerID:               input.Party.ID,
		SellerID:              listing.OwnerID,
		ListingID:             listing.ID,
		CaseDetails:           input.CaseDetails,
		AmountOwedSat:         terms.AmountOwedSat,
		MarketFeeSat:          terms.MarketFeeSat,
		SellerCreditSat:       terms.SellerCreditSat,
		InvoiceHash:           invoice.PaymentHash,
		InvoicePaymentRequest: invoice.PaymentRequest,
		CreatedTime:           start.UTC(),
	}
	if _, err := uc.caseRepo.Insert(ctx, c, uc.settings.MaxUnpaidCases); err != nil {
		uc.log.Warn("invoice orphaned by failed case insert",
			"invoice_hash", invoice.PaymentHash,
			"case_public_id", publicID,
			"error", err,
		)
		return nil, uc.createFailed(ctx, input, err, invoice.PaymentHash)
	}

	uc.metrics.RecordCaseCreated(terms.AmountOwedSat, terms.MarketFeeSat, terms.SellerCreditSat, uc.now().Sub(start).Seconds())
	uc.log.Info("case created",
		"case_public_id", c.PublicID,
		"listing_public_id", listing.PublicID,
		"buyer_id", c.BuyerID,
		"amount_owed_sat", c.AmountOwedSat,
	)
	uc.publish(ctx, domain.CaseCreated, c)

	return &casedto.CaseOutput{Case: *c, Listing: *listing}, nil
}

func (uc *DefaultCaseUsecase) validateCreate(input *casedto.CreateCaseInput, listing *domain.Listing) error {
	if err := uc.validator.ValidateMessage(input.CaseDetails); err != nil {
		return domain.NewValidationError("Invalid PGP message.")
	}
	if input.CaseDetails == "" {
		return domain.NewValidationError("Case details cannot be empty.")
	}
	if len(input.CaseDetails) > domain.MaxCaseDetailsLength {
		return domain.NewValidationError("Case details length is too long.")
	}
	if listing.OwnerID == input.Party.ID {
		return domain.NewValidationError("Listing belongs to same user as buyer.")
	}
	if !listing.Approved {
		return domain.NewValidationError("Listing has not been approved by admin.")
	}
	if listing.Deactivated() {
		return domain.NewValidationError("Listing has been deactivated.")
	}
	if input.Party.IsAdmin {
		return domain.NewValidationError("Admin user cannot create a case.")
	}
	if input.Quantity == 0 {
		return domain.NewValidationError("Quantity must be positive.")
	}
	return nil
}

// createFailed records a failed creation and returns err unchanged.
func (uc *DefaultCaseUsecase) createFailed(ctx context.Context, input *casedto.CreateCaseInput, err error, orphanInvoiceHash string) error {
	kind := errorKind(err)
	uc.metrics.RecordCaseError("create", kind)
	if errors.Is(err, domain.ErrAdmissionDenied) {
		uc.metrics.RecordAdmissionDenied()
	}

	switch kind {
	case "validation", "not_found", "admission_denied":
		uc.log.Info("case creation rejected", "listing_public_id", input.ListingPublicID, "reason", err)
	default:
		uc.log.Error("case creation failed",
			"listing_public_id", input.ListingPublicID,
			"buyer_id", input.Party.ID,
			"kind", kind,
			"error", err,
		)
	}

	failure := domain.CaseFailure{
		ListingPublicID:   input.ListingPublicID,
		BuyerID:           input.Party.ID,
		Kind:              kind,
		Reason:            err.Error(),
		OrphanInvoiceHash: orphanInvoiceHash,
		Timestamp:         uc.now().UTC(),
	}
	if logErr := uc.failures.LogCaseFailed(ctx, failure); logErr != nil {
		uc.log.Error("failed to record case failure", "kind", kind, "error", logErr)
	}
	return err
}
