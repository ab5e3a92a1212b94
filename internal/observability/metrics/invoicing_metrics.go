package metrics

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dbutil "github.com/whizlyai/whizly/pkg/db"
)

const (
	PaymentOutcomeRecorded      = "recorded"
	PaymentOutcomeInvalidAmount = "invalid_amount"
	PaymentOutcomeOverpayment   = "overpayment"
	PaymentOutcomeNotFound      = "not_found"
	PaymentOutcomeConflict      = "conflict"
	PaymentOutcomeDuplicate     = "duplicate"
	PaymentOutcomePersistence   = "persistence_error"
)

const (
	RetryReasonVersionConflict      = "version_conflict"
	RetryReasonSerializationFailure = "serialization_failure"
	RetryReasonDBLockTimeout        = "db_lock_timeout"
	RetryReasonUniqueViolation      = "unique_violation"
	RetryReasonDeadlineExceeded     = "deadline_exceeded"
	RetryReasonUnknown              = "unknown"
)

// InvoicingMetrics captures invoice creation and payment reconciliation signals.
type InvoicingMetrics struct {
	invoicesCreated *prometheus.CounterVec
	payments        *prometheus.CounterVec
	paymentRetries  *prometheus.CounterVec
	paymentDuration *prometheus.HistogramVec
	webhookEvents   *prometheus.CounterVec
	paymentOutcomes map[string]prometheus.Counter
}

var (
	invoicingMetricsOnce sync.Once
	invoicingMetrics     *InvoicingMetrics
)

// Invoicing returns the singleton invoicing metrics registry.
func Invoicing() *InvoicingMetrics {
	return InvoicingWithConfig(Config{})
}

// InvoicingWithConfig returns the singleton invoicing metrics registry using config labels.
func InvoicingWithConfig(cfg Config) *InvoicingMetrics {
	invoicingMetricsOnce.Do(func() {
		invoicingMetrics = newInvoicingMetrics(prometheus.DefaultRegisterer, cfg)
	})
	return invoicingMetrics
}

// ResetInvoicingMetricsForTest resets the invoicing metrics singleton for tests.
func ResetInvoicingMetricsForTest() {
	invoicingMetricsOnce = sync.Once{}
	invoicingMetrics = nil
}

// NewInvoicingMetrics registers a standalone set of invoicing collectors.
func NewInvoicingMetrics(registerer prometheus.Registerer, cfg Config) *InvoicingMetrics {
	return newInvoicingMetrics(registerer, cfg)
}

func newInvoicingMetrics(registerer prometheus.Registerer, cfg Config) *InvoicingMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	serviceName := strings.TrimSpace(cfg.ServiceName)
	if serviceName == "" {
		serviceName = "whizly"
	}
	environment := strings.TrimSpace(cfg.Environment)
	if environment == "" {
		environment = "unknown"
	}
	constLabels := prometheus.Labels{
		"service": serviceName,
		"env":     environment,
	}

	invoicesCreated := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name:        "whizly_invoices_created_total",
		Help:        "Invoices created by initial status.",
		ConstLabels: constLabels,
	}, []string{"status"})
	payments := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name:        "whizly_invoice_payments_total",
		Help:        "Payment recording attempts by outcome.",
		ConstLabels: constLabels,
	}, []string{"outcome"})
	paymentRetries := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name:        "whizly_invoice_payment_retries_total",
		Help:        "Payment recording retries by low-cardinality reason.",
		ConstLabels: constLabels,
	}, []string{"reason"})
	paymentDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:        "whizly_invoice_payment_duration_seconds",
		Help:        "Latency of payment recording including retries.",
		Buckets:     []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		ConstLabels: constLabels,
	}, []string{"outcome"})
	webhookEvents := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name:        "whizly_payment_webhook_events_total",
		Help:        "Payment provider webhook deliveries by provider and result.",
		ConstLabels: constLabels,
	}, []string{"provider", "result"})

	registerer.MustRegister(
		invoicesCreated,
		payments,
		paymentRetries,
		paymentDuration,
		webhookEvents,
	)

	outcomes := map[string]prometheus.Counter{}
	for _, outcome := range []string{
		PaymentOutcomeRecorded,
		PaymentOutcomeInvalidAmount,
		PaymentOutcomeOverpayment,
		PaymentOutcomeNotFound,
		PaymentOutcomeConflict,
		PaymentOutcomeDuplicate,
		PaymentOutcomePersistence,
	} {
		outcomes[outcome] = payments.WithLabelValues(outcome)
	}

	return &InvoicingMetrics{
		invoicesCreated: invoicesCreated,
		payments:        payments,
		paymentRetries:  paymentRetries,
		paymentDuration: paymentDuration,
		webhookEvents:   webhookEvents,
		paymentOutcomes: outcomes,
	}
}

// IncInvoiceCreated increments the created counter for the invoice's initial status.
func (m *InvoicingMetrics) IncInvoiceCreated(status string) {
	if m == nil {
		return
	}
	m.invoicesCreated.WithLabelValues(status).Inc()
}

// ObservePayment records the outcome and latency of one payment attempt.
func (m *InvoicingMetrics) ObservePayment(outcome string, duration time.Duration) {
	if m == nil {
		return
	}
	if counter, ok := m.paymentOutcomes[outcome]; ok {
		counter.Inc()
	} else {
		m.payments.WithLabelValues(outcome).Inc()
	}
	m.paymentDuration.WithLabelValues(outcome).Observe(duration.Seconds())
}

// IncPaymentRetry increments the retry counter.
func (m *InvoicingMetrics) IncPaymentRetry(reason string) {
	if m == nil {
		return
	}
	m.paymentRetries.WithLabelValues(reason).Inc()
}

// IncWebhookEvent counts a webhook delivery.
func (m *InvoicingMetrics) IncWebhookEvent(provider, result string) {
	if m == nil {
		return
	}
	m.webhookEvents.WithLabelValues(provider, result).Inc()
}

// ClassifyRetryReason maps storage errors to low-cardinality retry reasons.
func ClassifyRetryReason(err error) string {
	if err == nil {
		return RetryReasonVersionConflict
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return RetryReasonDeadlineExceeded
	}
	switch dbutil.PGCode(err) {
	case dbutil.PGLockNotAvailable:
		return RetryReasonDBLockTimeout
	case dbutil.PGSerializationFailure, dbutil.PGDeadlockDetected:
		return RetryReasonSerializationFailure
	}
	if dbutil.IsDuplicateKeyErr(err) {
		return RetryReasonUniqueViolation
	}
	if dbutil.IsTransient(err) {
		return RetryReasonDBLockTimeout
	}
	return RetryReasonUnknown
}

// IsRetryableDBError reports whether a storage error is transient and worth retrying.
func IsRetryableDBError(err error) bool {
	return dbutil.IsTransient(err)
}
