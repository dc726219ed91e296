package domain

import (
	"context"
	"time"
)

type CaseEventType string

const (
	CaseCreated  CaseEventType = "case.created"
	CasePaid     CaseEventType = "case.paid"
	CaseAwarded  CaseEventType = "case.awarded"
	CaseCanceled CaseEventType = "case.canceled"
	CaseExpired  CaseEventType = "case.expired"
)

// CaseFailure is an audit record of a case creation that did not complete.
// OrphanInvoiceHash is set when an invoice was issued but the case was not
// persisted; such invoices are left on the node for manual reconciliation.
type CaseFailure struct {
	ListingPublicID   string
	BuyerID           int64
	Kind              string
	Reason            string
	OrphanInvoiceHash string
	Timestamp         time.Time
}

type CaseFailureLogger interface {
	LogCaseFailed(ctx context.Context, failure CaseFailure) error
}

// CaseEventPublisher announces case lifecycle transitions to other services.
type CaseEventPublisher interface {
	PublishCaseEvent(ctx context.Context, eventType CaseEventType, c *Case) error
}
