package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics groups the service collectors. A nil *Metrics is valid and
// records nothing, so tests can skip wiring a registry.
type Metrics struct {
	HTTPRequests    *prometheus.CounterVec
	HTTPLatency     *prometheus.HistogramVec
	Applications    *prometheus.CounterVec
	Disbursements   *prometheus.CounterVec
	TransferLatency prometheus.Histogram
	Payments        prometheus.Counter
	OverdueMarked   prometheus.Counter
	SweepRuns       *prometheus.CounterVec
}

func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		HTTPRequests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "loanledger_http_requests_total",
			Help: "Total HTTP requests",
		}, []string{"method", "route", "status"}),
		HTTPLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "loanledger_http_request_duration_seconds",
			Help:    "Request latency",
			Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		}, []string{"method", "route"}),
		Applications: f.NewCounterVec(prometheus.CounterOpts{
			Name: "loanledger_applications_total",
			Help: "Submitted applications by initial status",
		}, []string{"status"}),
		Disbursements: f.NewCounterVec(prometheus.CounterOpts{
			Name: "loanledger_disbursements_total",
			Help: "Disbursement attempts by outcome",
		}, []string{"outcome"}),
		TransferLatency: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "loanledger_transfer_duration_seconds",
			Help:    "Time spent in the transfer step, retries included",
			Buckets: prometheus.DefBuckets,
		}),
		Payments: f.NewCounter(prometheus.CounterOpts{
			Name: "loanledger_installments_paid_total",
			Help: "Installments paid",
		}),
		OverdueMarked: f.NewCounter(prometheus.CounterOpts{
			Name: "loanledger_installments_overdue_total",
			Help: "Installments moved to OVERDUE by the sweep",
		}),
		SweepRuns: f.NewCounterVec(prometheus.CounterOpts{
			Name: "loanledger_worker_runs_total",
			Help: "Background job runs by job and result",
		}, []string{"job", "result"}),
	}
}

func (m *Metrics) ApplicationSubmitted(status string) {
	if m != nil {
		m.Applications.WithLabelValues(status).Inc()
	}
}

func (m *Metrics) DisbursementOutcome(outcome string) {
	if m != nil {
		m.Disbursements.WithLabelValues(outcome).Inc()
	}
}

func (m *Metrics) ObserveTransfer(seconds float64) {
	if m != nil {
		m.TransferLatency.Observe(seconds)
	}
}

func (m *Metrics) InstallmentPaid() {
	if m != nil {
		m.Payments.Inc()
	}
}

func (m *Metrics) InstallmentsOverdue(n int) {
	if m != nil && n > 0 {
		m.OverdueMarked.Add(float64(n))
	}
}

func (m *Metrics) JobRun(job string, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.SweepRuns.WithLabelValues(job, result).Inc()
}
