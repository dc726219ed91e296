package lightning

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/lightningnetwork/lnd/lnrpc"
	"github.com/squeakroad/case-service/internal/domain"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// CreateInvoice adds a regular invoice for amountMsat. It is never retried:
// a timed-out call may still have created the invoice on the node.
func (c *Client) CreateInvoice(ctx context.Context, amountMsat int64, memo string) (*domain.Invoice, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.ln.AddInvoice(ctx, &lnrpc.Invoice{
		Memo:      memo,
		ValueMsat: amountMsat,
		Expiry:    int64(c.invoiceExpiry / time.Second),
	})
	if err != nil {
		return nil, mapRPCError(err, domain.ErrInvoiceCreationFailed)
	}
	if len(resp.RHash) == 0 || resp.PaymentRequest == "" {
		return nil, fmt.Errorf("%w: empty invoice in response", domain.ErrInvoiceCreationFailed)
	}

	return &domain.Invoice{
		PaymentRequest: resp.PaymentRequest,
		PaymentHash:    hex.EncodeToString(resp.RHash),
		AddIndex:       resp.AddIndex,
	}, nil
}

func (c *Client) LookupInvoice(ctx context.Context, paymentHash string) (*domain.InvoiceStatus, error) {
	rHash, err := hex.DecodeString(paymentHash)
	if err != nil {
		return nil, domain.NewValidationError("invalid payment hash")
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	inv, err := c.ln.LookupInvoice(ctx, &lnrpc.PaymentHash{RHash: rHash})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, domain.ErrNotFound
		}
		return nil, mapRPCError(err, errors.New("invoice lookup failed"))
	}
	return toInvoiceStatus(inv), nil
}

func toInvoiceStatus(inv *lnrpc.Invoice) *domain.InvoiceStatus {
	st := &domain.InvoiceStatus{
		PaymentHash:    hex.EncodeToString(inv.RHash),
		State:          toInvoiceState(inv.State),
		AmountPaidMsat: inv.AmtPaidMsat,
	}
	if inv.SettleDate > 0 {
		st.SettledAt = time.Unix(inv.SettleDate, 0).UTC()
	}
	return st
}

func toInvoiceState(s lnrpc.Invoice_InvoiceState) domain.InvoiceState {
	switch s {
	case lnrpc.Invoice_SETTLED:
		return domain.InvoiceSettled
	case lnrpc.Invoice_CANCELED:
		return domain.InvoiceCanceled
	case lnrpc.Invoice_ACCEPTED:
		return domain.InvoiceAccepted
	default:
		return domain.InvoiceOpen
	}
}

// mapRPCError classifies a node error. Transport failures and timeouts mean
// the node is unreachable; anything else is reported as fallback.
func mapRPCError(err error, fallback error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", domain.ErrPaymentNodeUnavailable, err)
	}
	switch status.Code(err) {
	case codes.Unavailable, codes.DeadlineExceeded:
		return fmt.Errorf("%w: %v", domain.ErrPaymentNodeUnavailable, err)
	default:
		return fmt.Errorf("%w: %v", fallback, err)
	}
}
