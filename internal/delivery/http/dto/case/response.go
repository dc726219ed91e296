package casehttp

import (
	"time"

	"github.com/squeakroad/case-service/internal/domain"
	casedto "github.com/squeakroad/case-service/internal/usecase/dto/case"
)

type CaseResponse struct {
	PublicID              string     `json:"public_id"`
	State                 string     `json:"state"`
	ListingID             int64      `json:"listing_id"`
	BuyerID               int64      `json:"buyer_id"`
	SellerID              int64      `json:"seller_id"`
	Quantity              uint64     `json:"quantity"`
	CaseDetails           string     `json:"case_details"`
	AmountOwedSat         uint64     `json:"amount_owed_sat"`
	MarketFeeSat          uint64     `json:"market_fee_sat"`
	SellerCreditSat       uint64     `json:"seller_credit_sat"`
	InvoiceHash           string     `json:"invoice_hash"`
	InvoicePaymentRequest string     `json:"invoice_payment_request"`
	Paid                  bool       `json:"paid"`
	Awarded               bool       `json:"awarded"`
	CanceledByBuyer       bool       `json:"canceled_by_buyer"`
	CanceledBySeller      bool       `json:"canceled_by_seller"`
	Expired               bool       `json:"expired"`
	CreatedTime           time.Time  `json:"created_time"`
	PaymentTime           *time.Time `json:"payment_time,omitempty"`
}

type PaginationResponse struct {
	CurrentPage  int64 `json:"current_page"`
	TotalPages   int64 `json:"total_pages"`
	TotalItems   int64 `json:"total_items"`
	ItemsPerPage int64 `json:"items_per_page"`
}

type CaseListResponse struct {
	Cases      []CaseResponse     `json:"cases"`
	Pagination PaginationResponse `json:"pagination"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

func ToCaseResponse(c *domain.Case) CaseResponse {
	resp := CaseResponse{
		PublicID:              c.PublicID,
		State:                 string(c.State()),
		ListingID:             c.ListingID,
		BuyerID:               c.BuyerID,
		SellerID:              c.SellerID,
		Quantity:              c.Quantity,
		CaseDetails:           c.CaseDetails,
		AmountOwedSat:         c.AmountOwedSat,
		MarketFeeSat:          c.MarketFeeSat,
		SellerCreditSat:       c.SellerCreditSat,
		InvoiceHash:           c.InvoiceHash,
		InvoicePaymentRequest: c.InvoicePaymentRequest,
		Paid:                  c.Paid,
		Awarded:               c.Awarded,
		CanceledByBuyer:       c.CanceledByBuyer,
		CanceledBySeller:      c.CanceledBySeller,
		Expired:               c.Expired,
		CreatedTime:           c.CreatedTime,
	}
	if !c.PaymentTime.IsZero() {
		t := c.PaymentTime
		resp.PaymentTime = &t
	}
	return resp
}

func ToCaseListResponse(out *casedto.GetPartyCasesOutput) CaseListResponse {
	cases := make([]CaseResponse, len(out.Cases))
	for i, c := range out.Cases {
		cases[i] = ToCaseResponse(c)
	}
	return CaseListResponse{
		Cases: cases,
		Pagination: PaginationResponse{
			CurrentPage:  out.Pagination.CurrentPage,
			TotalPages:   out.Pagination.TotalPages,
			TotalItems:   out.Pagination.TotalItems,
			ItemsPerPage: out.Pagination.ItemsPerPage,
		},
	}
}
