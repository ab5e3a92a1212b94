package metrics

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestClassifyRetryReason(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want string
	}{
		{name: "version_conflict", err: nil, want: RetryReasonVersionConflict},
		{name: "deadline", err: context.DeadlineExceeded, want: RetryReasonDeadlineExceeded},
		{name: "lock_timeout", err: &pgconn.PgError{Code: "55P03"}, want: RetryReasonDBLockTimeout},
		{name: "serialization", err: &pgconn.PgError{Code: "40001"}, want: RetryReasonSerializationFailure},
		{name: "unique", err: gorm.ErrDuplicatedKey, want: RetryReasonUniqueViolation},
		{name: "unknown", err: errors.New("boom"), want: RetryReasonUnknown},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ClassifyRetryReason(tc.err))
		})
	}
}

func TestIsRetryableDBError(t *testing.T) {
	assert.True(t, IsRetryableDBError(&pgconn.PgError{Code: "40001"}))
	assert.False(t, IsRetryableDBError(&pgconn.PgError{Code: "23505"}))
	assert.False(t, IsRetryableDBError(nil))
}

func TestObservePaymentCountsOutcome(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := newInvoicingMetrics(registry, Config{ServiceName: "whizly", Environment: "test"})

	m.ObservePayment(PaymentOutcomeRecorded, 10*time.Millisecond)
	m.ObservePayment(PaymentOutcomeRecorded, 10*time.Millisecond)
	m.ObservePayment(PaymentOutcomeOverpayment, time.Millisecond)
	m.IncPaymentRetry(RetryReasonVersionConflict)

	assert.Equal(t, float64(2), testutil.ToFloat64(m.payments.WithLabelValues(PaymentOutcomeRecorded)))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.payments.WithLabelValues(PaymentOutcomeOverpayment)))

	value := gatheredCounterValue(t, registry, "whizly_invoice_payment_retries_total", map[string]string{
		"reason":  RetryReasonVersionConflict,
		"service": "whizly",
		"env":     "test",
	})
	assert.Equal(t, float64(1), value)
}

func TestHTTPMetricsMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	registry := prometheus.NewRegistry()
	m := newHTTPMetrics(registry, Config{ServiceName: "whizly"})

	engine := gin.New()
	engine.Use(m.GinMiddleware())
	engine.GET("/ping", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ping", nil))
	require.Equal(t, http.StatusNoContent, rec.Code)

	assert.Equal(t, float64(1), testutil.ToFloat64(m.requests.WithLabelValues(http.MethodGet, "/ping", "204")))

	again := newHTTPMetrics(registry, Config{ServiceName: "whizly"})
	assert.Same(t, m.requests, again.requests)
}

func gatheredCounterValue(t *testing.T, gatherer prometheus.Gatherer, name string, labels map[string]string) float64 {
	t.Helper()
	families, err := gatherer.Gather()
	require.NoError(t, err)
	for _, family := range families {
		if family.GetName() != name {
			continue
		}
		for _, m := range family.GetMetric() {
			if labelsMatch(m.GetLabel(), labels) {
				return m.GetCounter().GetValue()
			}
		}
	}
	t.Fatalf("metric %s with labels %v not found", name, labels)
	return 0
}

func labelsMatch(pairs []*dto.LabelPair, want map[string]string) bool {
	if len(pairs) != len(want) {
		return false
	}
	for _, pair := range pairs {
		if want[pair.GetName()] != pair.GetValue() {
			return false
		}
	}
	return true
}
