package domain

import (
	"context"
	"time"
)

type Invoice struct {
	PaymentRequest string
	// PaymentHash is hex encoded.
	PaymentHash string
	AddIndex    uint64
}

type InvoiceState string

const (
	InvoiceOpen     InvoiceState = "OPEN"
	InvoiceAccepted InvoiceState = "ACCEPTED"
	InvoiceSettled  InvoiceState = "SETTLED"
	InvoiceCanceled InvoiceState = "CANCELED"
)

type InvoiceStatus struct {
	PaymentHash    string
	State          InvoiceState
	AmountPaidMsat int64
	SettledAt      time.Time
}

// InvoiceIssuer creates invoices on the payment node. CreateInvoice is not
// idempotent: a retry after a timeout may leave an orphaned invoice behind.
type InvoiceIssuer interface {
	CreateInvoice(ctx context.Context, amountMsat int64, memo string) (*Invoice, error)
}

type InvoiceLookup interface {
	LookupInvoice(ctx context.Context, paymentHash string) (*InvoiceStatus, error)
}

// Settlement is a payment confirmation observed by a watcher. Watchers may
// deliver the same settlement more than once.
type Settlement struct {
	PaymentHash    string    `json:"payment_hash"`
	AmountPaidMsat int64     `json:"amount_paid_msat"`
	SettledAt      time.Time `json:"settled_at"`
	SettleIndex    uint64    `json:"settle_index,omitempty"`
}

type SettlementSource interface {
	Settlements(ctx context.Context) (<-chan Settlement, error)
}
