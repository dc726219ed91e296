package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/jaevor/go-nanoid"
	"github.com/shopspring/decimal"
	"github.com/squeakroad/case-service/internal/domain"
)

var satsPerBTC = decimal.New(1, 8)

type CaseEvent struct {
	EventID         string    `json:"event_id"`
	Type            string    `json:"type"`
	CasePublicID    string    `json:"case_public_id"`
	BuyerID         int64     `json:"buyer_id"`
	SellerID        int64     `json:"seller_id"`
	State           string    `json:"state"`
	AmountOwedSat   uint64    `json:"amount_owed_sat"`
	AmountOwedBTC   string    `json:"amount_owed_btc"`
	MarketFeeSat    uint64    `json:"market_fee_sat"`
	SellerCreditSat uint64    `json:"seller_credit_sat"`
	OccurredAt      time.Time `json:"occurred_at"`
}

func NewCaseEvent(eventID string, eventType domain.CaseEventType, c *domain.Case, at time.Time) CaseEvent {
	owed := decimal.RequireFromString(strconv.FormatUint(c.AmountOwedSat, 10))
	return CaseEvent{
		EventID:         eventID,
		Type:            string(eventType),
		CasePublicID:    c.PublicID,
		BuyerID:         c.BuyerID,
		SellerID:        c.SellerID,
		State:           string(c.State()),
		AmountOwedSat:   c.AmountOwedSat,
		AmountOwedBTC:   owed.Div(satsPerBTC).StringFixed(8),
		MarketFeeSat:    c.MarketFeeSat,
		SellerCreditSat: c.SellerCreditSat,
		OccurredAt:      at,
	}
}

// CaseEventPublisher encodes case transitions onto the case events topic,
// keyed by case public id so a case's events stay ordered.
type CaseEventPublisher struct {
	publisher domain.PublisherPort
	topic     string
	newID     func() string
	now       func() time.Time
}

func NewCaseEventPublisher(publisher domain.PublisherPort, topic string) (*CaseEventPublisher, error) {
	idGenerator, err := nanoid.Standard(21)
	if err != nil {
		return nil, fmt.Errorf("event id generator: %w", err)
	}
	return &CaseEventPublisher{
		publisher: publisher,
		topic:     topic,
		newID:     idGenerator,
		now:       time.Now,
	}, nil
}

func (p *CaseEventPublisher) PublishCaseEvent(ctx context.Context, eventType domain.CaseEventType, c *domain.Case) error {
	event := NewCaseEvent(p.newID(), eventType, c, p.now().UTC())
	v, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return p.publisher.Publish(ctx, p.topic, domain.Message{Key: []byte(c.PublicID), Value: v})
}
