package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	casehttp "github.com/squeakroad/case-service/internal/delivery/http/dto/case"
	"github.com/squeakroad/case-service/internal/delivery/http/middleware"
	"github.com/squeakroad/case-service/internal/domain"
	casedto "github.com/squeakroad/case-service/internal/usecase/dto/case"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const jwtSecret = "handler-secret"

type stubCaseUsecase struct {
	err error

	createInput *casedto.CreateCaseInput
	listInput   *casedto.GetPartyCasesInput
	lastParty   domain.Party
	lastID      string
}

func (s *stubCaseUsecase) sample() *domain.Case {
	return &domain.Case{
		PublicID:        "pub-1",
		Quantity:        3,
		BuyerID:         10,
		SellerID:        20,
		AmountOwedSat:   1050,
		MarketFeeSat:    11,
		SellerCreditSat: 1039,
		InvoiceHash:     "aa11",
		CreatedTime:     time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func (s *stubCaseUsecase) CreateCase(_ context.Context, input *casedto.CreateCaseInput) (*casedto.CaseOutput, error) {
	s.createInput = input
	if s.err != nil {
		return nil, s.err
	}
	return &casedto.CaseOutput{Case: *s.sample()}, nil
}

func (s *stubCaseUsecase) ConfirmPayment(context.Context, domain.Settlement) (*domain.Case, error) {
	return nil, errors.New("not used")
}

func (s *stubCaseUsecase) AwardCase(_ context.Context, party domain.Party, publicID string) (*domain.Case, error) {
	s.lastParty, s.lastID = party, publicID
	if s.err != nil {
		return nil, s.err
	}
	c := s.sample()
	c.Paid, c.Awarded = true, true
	c.PaymentTime = c.CreatedTime.Add(time.Minute)
	return c, nil
}

func (s *stubCaseUsecase) CancelCase(_ context.Context, party domain.Party, publicID string) (*domain.Case, error) {
	s.lastParty, s.lastID = party, publicID
	if s.err != nil {
		return nil, s.err
	}
	c := s.sample()
	c.CanceledByBuyer = true
	return c, nil
}

func (s *stubCaseUsecase) SweepUnpaidCases(context.Context) (*casedto.SweepResult, error) {
	return &casedto.SweepResult{}, nil
}

func (s *stubCaseUsecase) GetCaseForParty(_ context.Context, party domain.Party, publicID string) (*domain.Case, error) {
	s.lastParty, s.lastID = party, publicID
	if s.err != nil {
		return nil, s.err
	}
	return s.sample(), nil
}

func (s *stubCaseUsecase) GetPartyCases(_ context.Context, input *casedto.GetPartyCasesInput) (*casedto.GetPartyCasesOutput, error) {
	s.listInput = input
	if s.err != nil {
		return nil, s.err
	}
	return &casedto.GetPartyCasesOutput{
		Cases:      []*domain.Case{s.sample()},
		Pagination: casedto.Pagination{CurrentPage: 1, TotalPages: 1, TotalItems: 1, ItemsPerPage: 20},
	}, nil
}

func newTestServer(t *testing.T, uc *stubCaseUsecase) *httptest.Server {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	srv := httptest.NewServer(NewRouter(NewCaseHandler(log, uc), jwtSecret, prometheus.NewRegistry()))
	t.Cleanup(srv.Close)
	return srv
}

func do(t *testing.T, srv *httptest.Server, method, path, body string, party *domain.Party) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, srv.URL+path, reader)
	require.NoError(t, err)
	if party != nil {
		token, err := middleware.BuildToken(jwtSecret, *party, time.Hour)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestCreateCase(t *testing.T) {
	uc := &stubCaseUsecase{}
	srv := newTestServer(t, uc)
	buyer := domain.Party{ID: 10}

	resp := do(t, srv, http.MethodPost, "/listings/lst-1/cases",
		`{"quantity":3,"case_details":"-----BEGIN PGP MESSAGE-----"}`, &buyer)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var body casehttp.CaseResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "pub-1", body.PublicID)
	assert.Equal(t, uint64(1050), body.AmountOwedSat)
	assert.Nil(t, body.PaymentTime)

	require.NotNil(t, uc.createInput)
	assert.Equal(t, buyer, uc.createInput.Party)
	assert.Equal(t, "lst-1", uc.createInput.ListingPublicID)
	assert.Equal(t, uint64(3), uc.createInput.Quantity)
}

func TestCreateCaseRejectsBadBody(t *testing.T) {
	uc := &stubCaseUsecase{}
	srv := newTestServer(t, uc)

	resp := do(t, srv, http.MethodPost, "/listings/lst-1/cases", `{"quantity":`, &domain.Party{ID: 10})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Nil(t, uc.createInput)
}

func TestRequestsWithoutTokenAreUnauthorized(t *testing.T) {
	srv := newTestServer(t, &stubCaseUsecase{})

	resp := do(t, srv, http.MethodGet, "/cases/pub-1", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestHealthAndMetricsAreOpen(t *testing.T) {
	srv := newTestServer(t, &stubCaseUsecase{})

	assert.Equal(t, http.StatusOK, do(t, srv, http.MethodGet, "/healthz", "", nil).StatusCode)
	assert.Equal(t, http.StatusOK, do(t, srv, http.MethodGet, "/metrics", "", nil).StatusCode)
}

func TestListCasesDefaultsToBuyerRole(t *testing.T) {
	uc := &stubCaseUsecase{}
	srv := newTestServer(t, uc)

	resp := do(t, srv, http.MethodGet, "/cases?page=2&limit=5", "", &domain.Party{ID: 10})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body casehttp.CaseListResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Len(t, body.Cases, 1)
	assert.Equal(t, int64(1), body.Pagination.TotalItems)

	require.NotNil(t, uc.listInput)
	assert.Equal(t, domain.RoleBuyer, uc.listInput.Role)
	assert.Equal(t, int64(2), uc.listInput.Page)
	assert.Equal(t, int64(5), uc.listInput.Limit)
}

func TestListCasesRejectsNonNumericPage(t *testing.T) {
	uc := &stubCaseUsecase{}
	srv := newTestServer(t, uc)

	resp := do(t, srv, http.MethodGet, "/cases?role=seller&page=two", "", &domain.Party{ID: 20})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Nil(t, uc.listInput)
}

func TestAwardAndCancelPassParty(t *testing.T) {
	uc := &stubCaseUsecase{}
	srv := newTestServer(t, uc)
	seller := domain.Party{ID: 20}

	resp := do(t, srv, http.MethodPost, "/cases/pub-9/award", "", &seller)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var awarded casehttp.CaseResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&awarded))
	assert.True(t, awarded.Awarded)
	assert.NotNil(t, awarded.PaymentTime)
	assert.Equal(t, seller, uc.lastParty)
	assert.Equal(t, "pub-9", uc.lastID)

	resp = do(t, srv, http.MethodPost, "/cases/pub-8/cancel", "", &domain.Party{ID: 10})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "pub-8", uc.lastID)
}

func TestErrorStatusMapping(t *testing.T) {
	tests := []struct {
		err    error
		status int
	}{
		{domain.NewValidationError("Quantity must be positive."), http.StatusBadRequest},
		{domain.ErrOverflow, http.StatusBadRequest},
		{domain.ErrForbidden, http.StatusForbidden},
		{domain.ErrNotFound, http.StatusNotFound},
		{domain.ErrNotPaid, http.StatusConflict},
		{domain.ErrAlreadyAwarded, http.StatusConflict},
		{domain.ErrAlreadyCanceled, http.StatusConflict},
		{domain.ErrAdmissionDenied, http.StatusTooManyRequests},
		{domain.ErrPaymentNodeUnavailable, http.StatusServiceUnavailable},
		{domain.ErrInvoiceCreationFailed, http.StatusBadGateway},
		{fmt.Errorf("%w: conn refused", domain.ErrPersistence), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			srv := newTestServer(t, &stubCaseUsecase{err: tt.err})

			resp := do(t, srv, http.MethodGet, "/cases/pub-1", "", &domain.Party{ID: 10})
			assert.Equal(t, tt.status, resp.StatusCode)

			var body casehttp.ErrorResponse
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
			assert.NotEmpty(t, body.Error)
			assert.NotContains(t, body.Error, "conn refused")
		})
	}
}
