package webhook

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/whizlyai/whizly/internal/clock"
	invoicedomain "github.com/whizlyai/whizly/internal/invoice/domain"
	"github.com/whizlyai/whizly/internal/observability/metrics"
	"github.com/whizlyai/whizly/internal/orgcontext"
	"github.com/whizlyai/whizly/internal/payment/adapters"
	"github.com/whizlyai/whizly/internal/payment/adapters/razorpay"
	paymentdomain "github.com/whizlyai/whizly/internal/payment/domain"
	"github.com/whizlyai/whizly/internal/payment/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const testSecret = "whsec_test"

type recordedCall struct {
	orgID snowflake.ID
	req   invoicedomain.RecordPaymentRequest
}

// stubInvoices implements only RecordPayment; other methods panic if reached.
type stubInvoices struct {
	invoicedomain.Service
	calls []recordedCall
	err   error
}

func (s *stubInvoices) RecordPayment(ctx context.Context, req invoicedomain.RecordPaymentRequest) (*invoicedomain.Invoice, error) {
	orgID, _ := orgcontext.OrgIDFromContext(ctx)
	s.calls = append(s.calls, recordedCall{orgID: orgID, req: req})
	if s.err != nil {
		return nil, s.err
	}
	return &invoicedomain.Invoice{}, nil
}

type harness struct {
	svc      paymentdomain.Service
	db       *gorm.DB
	invoices *stubInvoices
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&paymentdomain.EventRecord{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	registry, err := adapters.NewRegistry(map[string]string{razorpay.Provider: testSecret}, razorpay.NewFactory())
	require.NoError(t, err)

	invoices := &stubInvoices{}
	svc := NewService(Params{
		DB:         db,
		Log:        zap.NewNop(),
		GenID:      node,
		Repo:       repository.Provide(),
		InvoiceSvc: invoices,
		Adapters:   registry,
		Clock:      clock.NewFakeClock(time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)),
		Counters:   metrics.NewInvoicingMetrics(prometheus.NewRegistry(), metrics.Config{}),
	})
	return &harness{svc: svc, db: db, invoices: invoices}
}

func capturedPayload(paymentID string, paise int64) []byte {
	return []byte(fmt.Sprintf(`{"entity":"event","event":"payment.captured","created_at":1700000001,`+
		`"payload":{"payment":{"entity":{"id":%q,"amount":%d,"currency":"INR","status":"captured",`+
		`"notes":{"invoice_id":"2002","org_id":"1001"}}}}}`, paymentID, paise))
}

func signed(payload []byte) http.Header {
	headers := http.Header{}
	headers.Set("X-Razorpay-Signature", hex.EncodeToString(razorpay.Sign(payload, testSecret)))
	return headers
}

func (h *harness) event(t *testing.T, providerEventID string) paymentdomain.EventRecord {
	t.Helper()
	var record paymentdomain.EventRecord
	require.NoError(t, h.db.Where("provider_event_id = ?", providerEventID).Take(&record).Error)
	return record
}

func TestIngestWebhookAppliesPayment(t *testing.T) {
	h := newHarness(t)
	payload := capturedPayload("pay_1", 29100)

	require.NoError(t, h.svc.IngestWebhook(context.Background(), "razorpay", payload, signed(payload)))

	require.Len(t, h.invoices.calls, 1)
	call := h.invoices.calls[0]
	assert.Equal(t, snowflake.ID(1001), call.orgID)
	assert.Equal(t, "2002", call.req.InvoiceID)
	assert.Equal(t, invoicedomain.PaymentMethodRazorpay, call.req.Method)
	assert.Equal(t, "pay_1", call.req.ProviderPaymentID)
	assert.True(t, decimal.RequireFromString("291").Equal(call.req.Amount))

	record := h.event(t, "payment.captured:pay_1")
	assert.Equal(t, resultApplied, record.Result)
	assert.NotNil(t, record.ProcessedAt)
}

func TestIngestWebhookReplayIsAcknowledged(t *testing.T) {
	h := newHarness(t)
	payload := capturedPayload("pay_1", 10000)

	require.NoError(t, h.svc.IngestWebhook(context.Background(), "razorpay", payload, signed(payload)))
	require.NoError(t, h.svc.IngestWebhook(context.Background(), "razorpay", payload, signed(payload)))

	assert.Len(t, h.invoices.calls, 1)
}

func TestIngestWebhookRejectsBadSignature(t *testing.T) {
	h := newHarness(t)
	payload := capturedPayload("pay_1", 10000)

	headers := http.Header{}
	headers.Set("X-Razorpay-Signature", hex.EncodeToString(razorpay.Sign(payload, "wrong")))

	err := h.svc.IngestWebhook(context.Background(), "razorpay", payload, headers)
	assert.ErrorIs(t, err, paymentdomain.ErrInvalidSignature)
	assert.Empty(t, h.invoices.calls)
}

func TestIngestWebhookUnknownProvider(t *testing.T) {
	h := newHarness(t)
	err := h.svc.IngestWebhook(context.Background(), "stripe", []byte(`{}`), http.Header{})
	assert.ErrorIs(t, err, paymentdomain.ErrProviderNotFound)
}

func TestIngestWebhookIgnoresOtherEvents(t *testing.T) {
	h := newHarness(t)
	payload := []byte(`{"event":"payment.failed","payload":{}}`)

	require.NoError(t, h.svc.IngestWebhook(context.Background(), "razorpay", payload, signed(payload)))
	assert.Empty(t, h.invoices.calls)
}

func TestIngestWebhookAcknowledgesOverpayment(t *testing.T) {
	h := newHarness(t)
	h.invoices.err = &invoicedomain.OverpaymentError{
		Amount:    decimal.RequireFromString("500"),
		Remaining: decimal.RequireFromString("291"),
	}
	payload := capturedPayload("pay_big", 50000)

	require.NoError(t, h.svc.IngestWebhook(context.Background(), "razorpay", payload, signed(payload)))

	record := h.event(t, "payment.captured:pay_big")
	assert.Equal(t, resultRejected, record.Result)
	assert.NotNil(t, record.ProcessedAt)
}

func TestIngestWebhookTransientFailureIsRedelivered(t *testing.T) {
	h := newHarness(t)
	h.invoices.err = invoicedomain.NewPersistenceError("record_payment", errors.New("db down"))
	payload := capturedPayload("pay_2", 10000)

	err := h.svc.IngestWebhook(context.Background(), "razorpay", payload, signed(payload))
	assert.ErrorIs(t, err, invoicedomain.ErrPersistence)
	assert.Nil(t, h.event(t, "payment.captured:pay_2").ProcessedAt)

	h.invoices.err = nil
	require.NoError(t, h.svc.IngestWebhook(context.Background(), "razorpay", payload, signed(payload)))
	assert.Len(t, h.invoices.calls, 2)
	assert.Equal(t, resultApplied, h.event(t, "payment.captured:pay_2").Result)
}
