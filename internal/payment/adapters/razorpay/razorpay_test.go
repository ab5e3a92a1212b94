package razorpay

import (
	"context"
	"encoding/hex"
	"net/http"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/whizlyai/whizly/internal/payment/domain"
)

const testSecret = "whsec_test"

func capturedPayload() []byte {
	return []byte(`{"entity":"event","event":"payment.captured","created_at":1700000001,` +
		`"payload":{"payment":{"entity":{"id":"pay_123","amount":29100,"currency":"inr","status":"captured",` +
		`"created_at":1700000000,"notes":{"invoice_id":"2002","org_id":"1001"}}}}}`)
}

func signedHeaders(payload []byte, secret string) http.Header {
	headers := http.Header{}
	headers.Set(signatureHeader, hex.EncodeToString(Sign(payload, secret)))
	return headers
}

func newAdapter(t *testing.T) domain.PaymentAdapter {
	t.Helper()
	adapter, err := NewFactory().NewAdapter(domain.AdapterConfig{WebhookSecret: testSecret})
	require.NoError(t, err)
	return adapter
}

func TestNewAdapterRequiresSecret(t *testing.T) {
	_, err := NewFactory().NewAdapter(domain.AdapterConfig{})
	assert.ErrorIs(t, err, domain.ErrInvalidConfig)
}

func TestVerify(t *testing.T) {
	adapter := newAdapter(t)
	payload := capturedPayload()

	require.NoError(t, adapter.Verify(context.Background(), payload, signedHeaders(payload, testSecret)))

	assert.ErrorIs(t, adapter.Verify(context.Background(), payload, http.Header{}), domain.ErrInvalidSignature)
	assert.ErrorIs(t, adapter.Verify(context.Background(), payload, signedHeaders(payload, "other")), domain.ErrInvalidSignature)

	bad := http.Header{}
	bad.Set(signatureHeader, "not-hex")
	assert.ErrorIs(t, adapter.Verify(context.Background(), payload, bad), domain.ErrInvalidSignature)

	tampered := append([]byte{}, payload...)
	tampered[len(tampered)-2] = ' '
	assert.ErrorIs(t, adapter.Verify(context.Background(), tampered, signedHeaders(payload, testSecret)), domain.ErrInvalidSignature)
}

func TestParseCaptured(t *testing.T) {
	event, err := newAdapter(t).Parse(context.Background(), capturedPayload())
	require.NoError(t, err)

	assert.Equal(t, "pay_123", event.ProviderPaymentID)
	assert.Equal(t, "payment.captured:pay_123", event.ProviderEventID)
	assert.Equal(t, snowflake.ID(1001), event.OrgID)
	assert.Equal(t, snowflake.ID(2002), event.InvoiceID)
	assert.True(t, decimal.RequireFromString("291").Equal(event.Amount))
	assert.Equal(t, "INR", event.Currency)
	assert.Equal(t, int64(1700000001), event.OccurredAt.Unix())
}

func TestParseIgnoresOtherEvents(t *testing.T) {
	_, err := newAdapter(t).Parse(context.Background(), []byte(`{"event":"payment.failed"}`))
	assert.ErrorIs(t, err, domain.ErrEventIgnored)
}

func TestParseRejectsMalformed(t *testing.T) {
	adapter := newAdapter(t)

	_, err := adapter.Parse(context.Background(), []byte(`{`))
	assert.ErrorIs(t, err, domain.ErrInvalidPayload)

	_, err = adapter.Parse(context.Background(), []byte(`{"event":"payment.captured","payload":{"payment":{"entity":{"id":"pay_1","amount":100,"notes":{}}}}}`))
	assert.ErrorIs(t, err, domain.ErrInvalidEvent)
}
