package razorpay

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/whizlyai/whizly/internal/payment/domain"
	"github.com/whizlyai/whizly/pkg/money"
)

// Provider is the registry key and webhook URL segment.
const Provider = "razorpay"

const (
	signatureHeader = "X-Razorpay-Signature"

	eventPaymentCaptured = "payment.captured"
)

type Factory struct{}

func NewFactory() *Factory { return &Factory{} }

func (f *Factory) Provider() string { return Provider }

func (f *Factory) NewAdapter(cfg domain.AdapterConfig) (domain.PaymentAdapter, error) {
	secret := strings.TrimSpace(cfg.WebhookSecret)
	if secret == "" {
		return nil, domain.ErrInvalidConfig
	}
	return &Adapter{webhookSecret: secret}, nil
}

type Adapter struct {
	webhookSecret string
}

// Verify checks the hex HMAC-SHA256 of the raw body against the signature header.
func (a *Adapter) Verify(ctx context.Context, payload []byte, headers http.Header) error {
	signature := strings.TrimSpace(headers.Get(signatureHeader))
	if signature == "" {
		return domain.ErrInvalidSignature
	}
	expected, err := hex.DecodeString(signature)
	if err != nil {
		return domain.ErrInvalidSignature
	}
	if !hmac.Equal(expected, Sign(payload, a.webhookSecret)) {
		return domain.ErrInvalidSignature
	}
	return nil
}

func (a *Adapter) Parse(ctx context.Context, payload []byte) (*domain.PaymentEvent, error) {
	var envelope webhookEnvelope
	if err := json.Unmarshal(payload, &envelope); err != nil {
		return nil, domain.ErrInvalidPayload
	}

	switch envelope.Event {
	case eventPaymentCaptured:
		return parseCaptured(envelope)
	default:
		return nil, domain.ErrEventIgnored
	}
}

func parseCaptured(envelope webhookEnvelope) (*domain.PaymentEvent, error) {
	entity := envelope.Payload.Payment.Entity
	paymentID := strings.TrimSpace(entity.ID)
	if paymentID == "" || entity.Amount <= 0 {
		return nil, domain.ErrInvalidEvent
	}

	orgID, ok := parseID(entity.Notes.OrgID)
	if !ok {
		return nil, domain.ErrInvalidEvent
	}
	invoiceID, ok := parseID(entity.Notes.InvoiceID)
	if !ok {
		return nil, domain.ErrInvalidEvent
	}

	occurredAt := time.Unix(envelope.CreatedAt, 0).UTC()
	if envelope.CreatedAt <= 0 {
		occurredAt = time.Unix(entity.CreatedAt, 0).UTC()
	}

	return &domain.PaymentEvent{
		Provider:          Provider,
		ProviderEventID:   eventPaymentCaptured + ":" + paymentID,
		ProviderPaymentID: paymentID,
		Type:              domain.EventTypePaymentCaptured,
		OrgID:             orgID,
		InvoiceID:         invoiceID,
		Amount:            money.FromPaise(entity.Amount),
		Currency:          strings.ToUpper(strings.TrimSpace(entity.Currency)),
		OccurredAt:        occurredAt,
	}, nil
}

func parseID(raw string) (snowflake.ID, bool) {
	id, err := snowflake.ParseString(strings.TrimSpace(raw))
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// Sign returns the raw HMAC-SHA256 of payload keyed by secret.
func Sign(payload []byte, secret string) []byte {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return mac.Sum(nil)
}

type webhookEnvelope struct {
	Event     string `json:"event"`
	CreatedAt int64  `json:"created_at"`
	Payload   struct {
		Payment struct {
			Entity paymentEntity `json:"entity"`
		} `json:"payment"`
	} `json:"payload"`
}

type paymentEntity struct {
	ID        string       `json:"id"`
	Amount    int64        `json:"amount"`
	Currency  string       `json:"currency"`
	Status    string       `json:"status"`
	CreatedAt int64        `json:"created_at"`
	Notes     paymentNotes `json:"notes"`
}

type paymentNotes struct {
	InvoiceID string `json:"invoice_id"`
	OrgID     string `json:"org_id"`
}
