package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// CaseMetrics holds the case lifecycle metrics.
type CaseMetrics struct {
	CasesCreatedTotal  prometheus.Counter
	CasesPaidTotal     prometheus.Counter
	CasesAwardedTotal  prometheus.Counter
	CasesCanceledTotal *prometheus.CounterVec
	CasesExpiredTotal  prometheus.Counter

	// Fee split of admitted cases, in sat.
	AmountOwedSatTotal   prometheus.Counter
	MarketFeeSatTotal    prometheus.Counter
	SellerCreditSatTotal prometheus.Counter

	AdmissionDeniedTotal prometheus.Counter
	UnpaidOpenCases      prometheus.Gauge

	CaseErrorsTotal *prometheus.CounterVec

	CaseCreationDuration prometheus.Histogram
}

// NewCaseMetrics registers the case metrics with reg.
func NewCaseMetrics(reg prometheus.Registerer) *CaseMetrics {
	factory := promauto.With(reg)
	return &CaseMetrics{
		CasesCreatedTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "cases_created_total",
			Help: "Cases admitted and persisted with an invoice",
		}),
		CasesPaidTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "cases_paid_total",
			Help: "Cases whose invoice settled",
		}),
		CasesAwardedTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "cases_awarded_total",
			Help: "Cases awarded to the seller",
		}),
		CasesCanceledTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cases_canceled_total",
				Help: "Cases canceled, by canceling party",
			},
			[]string{"by"},
		),
		CasesExpiredTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "cases_expired_total",
			Help: "Unpaid cases expired by the invoice sweep",
		}),

		AmountOwedSatTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "cases_amount_owed_sat_total",
			Help: "Sum of amount owed over created cases",
		}),
		MarketFeeSatTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "cases_market_fee_sat_total",
			Help: "Sum of market fee over created cases",
		}),
		SellerCreditSatTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "cases_seller_credit_sat_total",
			Help: "Sum of seller credit over created cases",
		}),

		AdmissionDeniedTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "cases_admission_denied_total",
			Help: "Case creations rejected by the unpaid ceiling",
		}),
		UnpaidOpenCases: factory.NewGauge(prometheus.GaugeOpts{
			Name: "cases_unpaid_open",
			Help: "Unpaid cases that still hold an admission slot, as of the last sweep",
		}),

		CaseErrorsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "case_errors_total",
				Help: "Case operation failures by operation and kind",
			},
			[]string{"operation", "kind"},
		),

		CaseCreationDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "case_creation_duration_seconds",
			Help:    "Time from request to persisted case, invoice round-trip included",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
	}
}

func (m *CaseMetrics) RecordCaseCreated(amountOwedSat, marketFeeSat, sellerCreditSat uint64, durationSeconds float64) {
	m.CasesCreatedTotal.Inc()
	m.AmountOwedSatTotal.Add(float64(amountOwedSat))
	m.MarketFeeSatTotal.Add(float64(marketFeeSat))
	m.SellerCreditSatTotal.Add(float64(sellerCreditSat))
	m.CaseCreationDuration.Observe(durationSeconds)
}

func (m *CaseMetrics) RecordCasePaid() {
	m.CasesPaidTotal.Inc()
}

func (m *CaseMetrics) RecordCaseAwarded() {
	m.CasesAwardedTotal.Inc()
}

// RecordCaseCanceled takes the canceling role, "buyer" or "seller".
func (m *CaseMetrics) RecordCaseCanceled(by string) {
	m.CasesCanceledTotal.WithLabelValues(by).Inc()
}

func (m *CaseMetrics) RecordCaseExpired() {
	m.CasesExpiredTotal.Inc()
}

func (m *CaseMetrics) RecordAdmissionDenied() {
	m.AdmissionDeniedTotal.Inc()
}

func (m *CaseMetrics) SetUnpaidOpenCases(n int64) {
	m.UnpaidOpenCases.Set(float64(n))
}

func (m *CaseMetrics) RecordCaseError(operation, kind string) {
	m.CaseErrorsTotal.WithLabelValues(operation, kind).Inc()
}
