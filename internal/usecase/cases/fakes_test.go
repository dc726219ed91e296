package usecase

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/squeakroad/case-service/internal/domain"
	"github.com/squeakroad/case-service/internal/infrastructure/metrics"
)

type memCaseRepo struct {
	mu     sync.Mutex
	nextID int64
	cases  map[int64]*domain.Case
	hashes map[string]int64

	insertErr error
}

func newMemCaseRepo() *memCaseRepo {
	return &memCaseRepo{cases: map[int64]*domain.Case{}, hashes: map[string]int64{}}
}

func (r *memCaseRepo) unpaidOpen() int64 {
	var n int64
	for _, c := range r.cases {
		if !c.Paid && !c.Expired {
			n++
		}
	}
	return n
}

func (r *memCaseRepo) Insert(_ context.Context, c *domain.Case, maxUnpaidCases int64) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.insertErr != nil {
		return 0, r.insertErr
	}
	if r.unpaidOpen() >= maxUnpaidCases {
		return 0, domain.ErrAdmissionDenied
	}
	if _, ok := r.hashes[c.InvoiceHash]; ok {
		return 0, fmt.Errorf("%w: duplicate invoice hash", domain.ErrPersistence)
	}
	r.nextID++
	c.ID = r.nextID
	stored := *c
	r.cases[c.ID] = &stored
	r.hashes[c.InvoiceHash] = c.ID
	return c.ID, nil
}

func (r *memCaseRepo) mutate(id int64, transition func(*domain.Case) error) (*domain.Case, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.cases[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	next := *stored
	if err := transition(&next); err != nil {
		return nil, err
	}
	r.cases[id] = &next
	out := next
	return &out, nil
}

func (r *memCaseRepo) MarkPaid(_ context.Context, id int64, at time.Time, amountPaidMsat int64) (*domain.Case, error) {
	return r.mutate(id, func(c *domain.Case) error { return c.MarkPaid(at, amountPaidMsat) })
}

func (r *memCaseRepo) MarkAwarded(_ context.Context, id int64) (*domain.Case, error) {
	return r.mutate(id, (*domain.Case).Award)
}

func (r *memCaseRepo) CancelByBuyer(_ context.Context, id int64) (*domain.Case, error) {
	return r.mutate(id, (*domain.Case).CancelByBuyer)
}

func (r *memCaseRepo) CancelBySeller(_ context.Context, id int64) (*domain.Case, error) {
	return r.mutate(id, (*domain.Case).CancelBySeller)
}

func (r *memCaseRepo) Expire(_ context.Context, id int64) (*domain.Case, error) {
	return r.mutate(id, (*domain.Case).Expire)
}

func (r *memCaseRepo) find(match func(*domain.Case) bool) (*domain.Case, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.cases {
		if match(c) {
			out := *c
			return &out, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *memCaseRepo) GetCaseByID(_ context.Context, id int64) (*domain.Case, error) {
	return r.find(func(c *domain.Case) bool { return c.ID == id })
}

func (r *memCaseRepo) GetCaseByPublicID(_ context.Context, publicID string) (*domain.Case, error) {
	return r.find(func(c *domain.Case) bool { return c.PublicID == publicID })
}

func (r *memCaseRepo) GetCaseByInvoiceHash(_ context.Context, hash string) (*domain.Case, error) {
	return r.find(func(c *domain.Case) bool { return c.InvoiceHash == hash })
}

func (r *memCaseRepo) sorted(match func(*domain.Case) bool) []*domain.Case {
	var out []*domain.Case
	for _, c := range r.cases {
		if match(c) {
			cp := *c
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r *memCaseRepo) GetCasesByParty(_ context.Context, partyID int64, role domain.PartyRole, page, limit int64) ([]*domain.Case, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	all := r.sorted(func(c *domain.Case) bool {
		if role == domain.RoleBuyer {
			return c.BuyerID == partyID
		}
		return c.SellerID == partyID
	})
	total := int64(len(all))
	from := min((page-1)*limit, total)
	to := min(from+limit, total)
	return all[from:to], total, nil
}

func (r *memCaseRepo) ListUnpaidOpenCases(_ context.Context, limit int) ([]*domain.Case, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	all := r.sorted(func(c *domain.Case) bool { return !c.Paid && !c.Expired })
	if len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

func (r *memCaseRepo) CountUnpaidOpenCases(context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.unpaidOpen(), nil
}

type memListingRepo struct {
	listings map[string]*domain.Listing
}

func (r *memListingRepo) GetListingByPublicID(_ context.Context, publicID string) (*domain.Listing, error) {
	l, ok := r.listings[publicID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *l
	return &cp, nil
}

// fakeNode issues invoices whose hash is sha256 of a counter and answers
// lookups from a settable state table.
type fakeNode struct {
	mu        sync.Mutex
	n         int
	issued    []int64
	createErr error
	states    map[string]*domain.InvoiceStatus
	lookupErr error
}

func newFakeNode() *fakeNode {
	return &fakeNode{states: map[string]*domain.InvoiceStatus{}}
}

func (f *fakeNode) CreateInvoice(_ context.Context, amountMsat int64, _ string) (*domain.Invoice, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.n++
	sum := sha256.Sum256([]byte(fmt.Sprintf("invoice-%d", f.n)))
	hash := hex.EncodeToString(sum[:])
	f.issued = append(f.issued, amountMsat)
	f.states[hash] = &domain.InvoiceStatus{PaymentHash: hash, State: domain.InvoiceOpen}
	return &domain.Invoice{PaymentHash: hash, PaymentRequest: "lnbc" + hash[:8], AddIndex: uint64(f.n)}, nil
}

func (f *fakeNode) LookupInvoice(_ context.Context, hash string) (*domain.InvoiceStatus, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.lookupErr != nil {
		return nil, f.lookupErr
	}
	st, ok := f.states[hash]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *st
	return &cp, nil
}

func (f *fakeNode) settle(hash string, amountMsat int64, at time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.states[hash] = &domain.InvoiceStatus{PaymentHash: hash, State: domain.InvoiceSettled, AmountPaidMsat: amountMsat, SettledAt: at}
}

func (f *fakeNode) cancel(hash string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.states[hash].State = domain.InvoiceCanceled
}

type prefixValidator struct{}

func (prefixValidator) ValidateMessage(armored string) error {
	if !strings.HasPrefix(armored, "-----BEGIN PGP MESSAGE-----") {
		return errors.New("not a pgp message")
	}
	return nil
}

type recordedEvent struct {
	Type     domain.CaseEventType
	PublicID string
}

type recordingEvents struct {
	mu     sync.Mutex
	events []recordedEvent
	err    error
}

func (r *recordingEvents) PublishCaseEvent(_ context.Context, t domain.CaseEventType, c *domain.Case) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, recordedEvent{Type: t, PublicID: c.PublicID})
	return r.err
}

func (r *recordingEvents) types() []domain.CaseEventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.CaseEventType, len(r.events))
	for i, e := range r.events {
		out[i] = e.Type
	}
	return out
}

type recordingFailures struct {
	mu       sync.Mutex
	failures []domain.CaseFailure
}

func (r *recordingFailures) LogCaseFailed(_ context.Context, f domain.CaseFailure) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failures = append(r.failures, f)
	return nil
}

const (
	sellerID = 20
	buyerID  = 10
)

var validDetails = "-----BEGIN PGP MESSAGE-----\n\nhQEMA...\n-----END PGP MESSAGE-----"

type fixture struct {
	uc       *DefaultCaseUsecase
	cases    *memCaseRepo
	node     *fakeNode
	events   *recordingEvents
	failures *recordingFailures
	metrics  *metrics.CaseMetrics
	clock    time.Time
}

func newFixture(t *testing.T, maxUnpaid int64) *fixture {
	t.Helper()
	f := &fixture{
		cases:    newMemCaseRepo(),
		node:     newFakeNode(),
		events:   &recordingEvents{},
		failures: &recordingFailures{},
		metrics:  metrics.NewCaseMetrics(prometheus.NewRegistry()),
		clock:    time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	listings := &memListingRepo{listings: map[string]*domain.Listing{
		"lst-1":       {ID: 1, PublicID: "lst-1", OwnerID: sellerID, PriceSat: 350, FeeRateBasisPoints: 100, Approved: true},
		"lst-pending": {ID: 2, PublicID: "lst-pending", OwnerID: sellerID, PriceSat: 350, FeeRateBasisPoints: 100},
		"lst-off":     {ID: 3, PublicID: "lst-off", OwnerID: sellerID, PriceSat: 350, Approved: true, DeactivatedByAdmin: true},
		"lst-huge":    {ID: 4, PublicID: "lst-huge", OwnerID: sellerID, PriceSat: 1 << 62, Approved: true},
	}}

	f.uc = NewDefaultCaseUsecase(
		f.cases,
		listings,
		f.node,
		f.node,
		prefixValidator{},
		f.events,
		f.failures,
		f.metrics,
		slog.New(slog.NewTextHandler(io.Discard, nil)),
		Settings{MaxUnpaidCases: maxUnpaid, InvoiceExpiry: time.Hour, ExpiryGrace: time.Minute, SweepBatchSize: 50},
	)
	f.uc.now = func() time.Time { return f.clock }
	return f
}
