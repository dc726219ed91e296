package mappers

import (
	"time"

	"github.com/squeakroad/case-service/internal/domain"
	"github.com/squeakroad/case-service/internal/infrastructure/postgres/models"
)

func ToDomainCase(model *models.CaseModel) *domain.Case {
	var paymentTime time.Time
	if model.PaymentTime != nil {
		paymentTime = *model.PaymentTime
	}
	return &domain.Case{
		ID:                    model.ID,
		PublicID:              model.PublicID,
		Quantity:              uint64(model.Quantity),
		BuyerID:               model.BuyerID,
		SellerID:              model.SellerID,
		ListingID:             model.ListingID,
		CaseDetails:           model.CaseDetails,
		AmountOwedSat:         uint64(model.AmountOwedSat),
		MarketFeeSat:          uint64(model.MarketFeeSat),
		SellerCreditSat:       uint64(model.SellerCreditSat),
		InvoiceHash:           model.InvoiceHash,
		InvoicePaymentRequest: model.InvoicePaymentRequest,
		Paid:                  model.Paid,
		Awarded:               model.Awarded,
		CanceledBySeller:      model.CanceledBySeller,
		CanceledByBuyer:       model.CanceledByBuyer,
		Expired:               model.Expired,
		AmountPaidMsat:        model.AmountPaidMsat,
		CreatedTime:           model.CreatedTime,
		PaymentTime:           paymentTime,
	}
}

// ToGORMCase expects amounts already checked to fit in int64.
func ToGORMCase(c *domain.Case) *models.CaseModel {
	var paymentTime *time.Time
	if !c.PaymentTime.IsZero() {
		t := c.PaymentTime
		paymentTime = &t
	}
	return &models.CaseModel{
		ID:                    c.ID,
		PublicID:              c.PublicID,
		Quantity:              int64(c.Quantity),
		BuyerID:               c.BuyerID,
		SellerID:              c.SellerID,
		ListingID:             c.ListingID,
		CaseDetails:           c.CaseDetails,
		AmountOwedSat:         int64(c.AmountOwedSat),
		MarketFeeSat:          int64(c.MarketFeeSat),
		SellerCreditSat:       int64(c.SellerCreditSat),
		InvoiceHash:           c.InvoiceHash,
		InvoicePaymentRequest: c.InvoicePaymentRequest,
		Paid:                  c.Paid,
		Awarded:               c.Awarded,
		CanceledBySeller:      c.CanceledBySeller,
		CanceledByBuyer:       c.CanceledByBuyer,
		Expired:               c.Expired,
		AmountPaidMsat:        c.AmountPaidMsat,
		CreatedTime:           c.CreatedTime,
		PaymentTime:           paymentTime,
	}
}

func ToDomainListing(model *models.ListingModel) *domain.Listing {
	return &domain.Listing{
		ID:                  model.ID,
		PublicID:            model.PublicID,
		OwnerID:             model.OwnerID,
		Title:               model.Title,
		PriceSat:            uint64(model.PriceSat),
		FeeRateBasisPoints:  uint32(model.FeeRateBasisPoints),
		Approved:            model.Approved,
		DeactivatedBySeller: model.DeactivatedBySeller,
		DeactivatedByAdmin:  model.DeactivatedByAdmin,
	}
}
