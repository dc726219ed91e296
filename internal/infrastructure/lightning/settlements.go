package lightning

import (
	"context"
	"encoding/hex"
	"time"

	"github.com/lightningnetwork/lnd/lnrpc"
	"github.com/squeakroad/case-service/internal/domain"
)

const (
	minResubscribeDelay = time.Second
	maxResubscribeDelay = time.Minute
)

// Settlements streams settled invoices from the node. The subscription is
// re-established after stream errors, resuming after the last settle index
// seen, until ctx is done.
func (c *Client) Settlements(ctx context.Context) (<-chan domain.Settlement, error) {
	out := make(chan domain.Settlement)
	go func() {
		defer close(out)

		var settleIndex uint64
		delay := minResubscribeDelay
		for {
			received, err := c.streamSettlements(ctx, &settleIndex, out)
			if ctx.Err() != nil {
				return
			}
			if received {
				delay = minResubscribeDelay
			}
			c.log.Warn("invoice subscription dropped", "settle_index", settleIndex, "retry_in", delay, "error", err)

			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return
			}
			delay = min(delay*2, maxResubscribeDelay)
		}
	}()
	return out, nil
}

// streamSettlements forwards settled invoices from one subscription and
// advances settleIndex as they are delivered.
func (c *Client) streamSettlements(ctx context.Context, settleIndex *uint64, out chan<- domain.Settlement) (bool, error) {
	stream, err := c.ln.SubscribeInvoices(ctx, &lnrpc.InvoiceSubscription{SettleIndex: *settleIndex})
	if err != nil {
		return false, err
	}

	received := false
	for {
		inv, err := stream.Recv()
		if err != nil {
			return received, err
		}
		received = true

		settlement, ok := toSettlement(inv)
		if !ok {
			continue
		}
		select {
		case out <- settlement:
			if settlement.SettleIndex > *settleIndex {
				*settleIndex = settlement.SettleIndex
			}
		case <-ctx.Done():
			return received, ctx.Err()
		}
	}
}

func toSettlement(inv *lnrpc.Invoice) (domain.Settlement, bool) {
	if inv.State != lnrpc.Invoice_SETTLED {
		return domain.Settlement{}, false
	}
	settledAt := time.Now().UTC()
	if inv.SettleDate > 0 {
		settledAt = time.Unix(inv.SettleDate, 0).UTC()
	}
	return domain.Settlement{
		PaymentHash:    hex.EncodeToString(inv.RHash),
		AmountPaidMsat: inv.AmtPaidMsat,
		SettledAt:      settledAt,
		SettleIndex:    inv.SettleIndex,
	}, true
}
