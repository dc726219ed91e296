package domain

import (
	"context"
	"fmt"
	"time"
)

const (
	// MaxCaseDetailsLength bounds the encrypted case details blob, in bytes.
	MaxCaseDetailsLength = 4096
	// MsatPerSat is the LND sub-unit conversion factor.
	MsatPerSat = 1000
)

type CaseState string

const (
	StateCreated  CaseState = "CREATED"
	StatePaid     CaseState = "PAID"
	StateAwarded  CaseState = "AWARDED"
	StateCanceled CaseState = "CANCELED"
)

// Case is a buyer's escrowed commitment to purchase a quantity of a listing.
type Case struct {
	ID        int64
	PublicID  string
	Quantity  uint64
	BuyerID   int64
	SellerID  int64
	ListingID int64

	CaseDetails string

	AmountOwedSat   uint64
	MarketFeeSat    uint64
	SellerCreditSat uint64

	InvoiceHash           string
	InvoicePaymentRequest string

	Paid             bool
	Awarded          bool
	CanceledBySeller bool
	CanceledByBuyer  bool
	Expired          bool

	AmountPaidMsat int64
	CreatedTime    time.Time
	PaymentTime    time.Time
}

func (c *Case) Canceled() bool {
	return c.CanceledByBuyer || c.CanceledBySeller || c.Expired
}

func (c *Case) State() CaseState {
	switch {
	case c.Awarded:
		return StateAwarded
	case c.Canceled():
		return StateCanceled
	case c.Paid:
		return StatePaid
	default:
		return StateCreated
	}
}

// AmountOwedMsat converts the amount owed into the payment node's sub-unit.
func (c *Case) AmountOwedMsat() (int64, error) {
	return SatToMsat(c.AmountOwedSat)
}

// MarkPaid records settlement of the case invoice. A settlement arriving
// after a cancel is still recorded: the money has moved regardless.
func (c *Case) MarkPaid(at time.Time, amountPaidMsat int64) error {
	if c.Paid {
		return ErrAlreadyPaid
	}
	owed, err := c.AmountOwedMsat()
	if err != nil {
		return err
	}
	if amountPaidMsat < owed {
		return fmt.Errorf("paid %d msat, owed %d msat: %w", amountPaidMsat, owed, ErrAmountMismatch)
	}
	c.Paid = true
	c.PaymentTime = at
	c.AmountPaidMsat = amountPaidMsat
	return nil
}

func (c *Case) Award() error {
	if c.Awarded {
		return ErrAlreadyAwarded
	}
	if !c.Paid {
		return ErrNotPaid
	}
	if c.Canceled() {
		return ErrAlreadyCanceled
	}
	c.Awarded = true
	return nil
}

func (c *Case) CancelByBuyer() error {
	if c.Awarded {
		return ErrAlreadyAwarded
	}
	c.CanceledByBuyer = true
	return nil
}

func (c *Case) CancelBySeller() error {
	if c.Awarded {
		return ErrAlreadyAwarded
	}
	c.CanceledBySeller = true
	return nil
}

// Expire cancels an unpaid case whose invoice can no longer be paid.
func (c *Case) Expire() error {
	if c.Awarded {
		return ErrAlreadyAwarded
	}
	if c.Paid {
		return ErrAlreadyPaid
	}
	c.Expired = true
	return nil
}

func SatToMsat(sat uint64) (int64, error) {
	const maxSat = uint64((1<<63 - 1) / MsatPerSat)
	if sat > maxSat {
		return 0, fmt.Errorf("%d sat in msat: %w", sat, ErrOverflow)
	}
	return int64(sat) * MsatPerSat, nil
}

type PartyRole string

const (
	RoleBuyer  PartyRole = "buyer"
	RoleSeller PartyRole = "seller"
)

// CaseRepository is the order ledger. Every mutation is a single locked
// read-modify-write on one case row.
type CaseRepository interface {
	Insert(ctx context.Context, c *Case, maxUnpaidCases int64) (int64, error)
	MarkPaid(ctx context.Context, caseID int64, paymentTime time.Time, amountPaidMsat int64) (*Case, error)
	MarkAwarded(ctx context.Context, caseID int64) (*Case, error)
	CancelByBuyer(ctx context.Context, caseID int64) (*Case, error)
	CancelBySeller(ctx context.Context, caseID int64) (*Case, error)
	Expire(ctx context.Context, caseID int64) (*Case, error)

	GetCaseByID(ctx context.Context, caseID int64) (*Case, error)
	GetCaseByPublicID(ctx context.Context, publicID string) (*Case, error)
	GetCaseByInvoiceHash(ctx context.Context, invoiceHash string) (*Case, error)
	GetCasesByParty(ctx context.Context, partyID int64, role PartyRole, page, limit int64) ([]*Case, int64, error)
	ListUnpaidOpenCases(ctx context.Context, limit int) ([]*Case, error)
	CountUnpaidOpenCases(ctx context.Context) (int64, error)
}

// CaseDetailsValidator checks that case details are a well-formed encrypted
// message without reading its content.
type CaseDetailsValidator interface {
	ValidateMessage(armored string) error
}
