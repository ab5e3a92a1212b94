package webhook

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/whizlyai/whizly/internal/clock"
	invoicedomain "github.com/whizlyai/whizly/internal/invoice/domain"
	"github.com/whizlyai/whizly/internal/observability/metrics"
	"github.com/whizlyai/whizly/internal/orgcontext"
	"github.com/whizlyai/whizly/internal/payment/adapters"
	paymentdomain "github.com/whizlyai/whizly/internal/payment/domain"
	"github.com/whizlyai/whizly/internal/ratelimit"
	"github.com/whizlyai/whizly/pkg/telemetry/correlation"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	resultApplied   = "applied"
	resultDuplicate = "duplicate"
	resultRejected  = "rejected"
	resultIgnored   = "ignored"
	resultInvalid   = "invalid"
	resultFailed    = "failed"
)

type Params struct {
	fx.In

	DB         *gorm.DB
	Log        *zap.Logger
	GenID      *snowflake.Node
	Repo       paymentdomain.Repository
	InvoiceSvc invoicedomain.Service
	Adapters   *adapters.Registry
	Clock      clock.Clock
	Limiter    *ratelimit.PaymentLimiter `optional:"true"`
	Metrics    *metrics.Metrics          `optional:"true"`
	Counters   *metrics.InvoicingMetrics `optional:"true"`
}

type Service struct {
	db         *gorm.DB
	log        *zap.Logger
	genID      *snowflake.Node
	repo       paymentdomain.Repository
	invoiceSvc invoicedomain.Service
	adapters   *adapters.Registry
	clock      clock.Clock
	limiter    *ratelimit.PaymentLimiter
	otel       *metrics.Metrics
	counters   *metrics.InvoicingMetrics
	tracer     trace.Tracer
}

func NewService(p Params) paymentdomain.Service {
	counters := p.Counters
	if counters == nil {
		counters = metrics.Invoicing()
	}
	return &Service{
		db:         p.DB,
		log:        p.Log.Named("payment.webhook"),
		genID:      p.GenID,
		repo:       p.Repo,
		invoiceSvc: p.InvoiceSvc,
		adapters:   p.Adapters,
		clock:      p.Clock,
		limiter:    p.Limiter,
		otel:       p.Metrics,
		counters:   counters,
		tracer:     otel.Tracer("whizly/payment"),
	}
}

// IngestWebhook verifies a provider webhook and applies the payment it
// carries. Business rejections are acknowledged; only transient failures
// return an error so the provider redelivers.
func (s *Service) IngestWebhook(ctx context.Context, provider string, payload []byte, headers http.Header) (err error) {
	ctx, span := s.tracer.Start(ctx, "payment.webhook.ingest")
	defer span.End()

	provider = strings.ToLower(strings.TrimSpace(provider))
	span.SetAttributes(attribute.String("provider", provider))

	result := resultFailed
	defer func() {
		s.counters.IncWebhookEvent(provider, result)
	}()

	adapter, err := s.adapters.Adapter(provider)
	switch {
	case errors.Is(err, paymentdomain.ErrProviderNotFound):
		result = resultInvalid
		return err
	case err != nil:
		s.log.Error("payment adapter unavailable", zap.String("provider", provider), zap.Error(err))
		return err
	}
	if !json.Valid(payload) {
		result = resultInvalid
		return paymentdomain.ErrInvalidPayload
	}
	if err := adapter.Verify(ctx, payload, headers); err != nil {
		result = resultInvalid
		s.log.Warn("webhook signature rejected", zap.String("provider", provider))
		return err
	}

	event, err := adapter.Parse(ctx, payload)
	if err != nil {
		if errors.Is(err, paymentdomain.ErrEventIgnored) {
			result = resultIgnored
			return nil
		}
		result = resultInvalid
		return err
	}
	ctx = correlation.ForPayment(ctx, provider, event.ProviderPaymentID)
	s.otel.RecordWebhookEvent(ctx, provider, event.Type)

	token, acquired, err := s.limiter.TryLockWebhook(ctx, provider, event.ProviderPaymentID)
	if err != nil {
		s.log.Warn("webhook lock unavailable", zap.String("provider", provider), zap.Error(err))
	} else if !acquired {
		return paymentdomain.ErrEventInProgress
	} else {
		defer func() {
			releaseErr := s.limiter.ReleaseWebhook(context.WithoutCancel(ctx), provider, event.ProviderPaymentID, token)
			switch {
			case errors.Is(releaseErr, ratelimit.ErrWebhookClaimExpired):
				s.log.Warn("webhook claim expired during processing",
					zap.String("provider", provider),
					zap.String("payment_id", event.ProviderPaymentID),
				)
			case releaseErr != nil:
				s.log.Warn("failed to release webhook lock", zap.Error(releaseErr))
			}
		}()
	}

	record, err := s.recordEvent(ctx, event, payload)
	if err != nil {
		return err
	}
	if record.ProcessedAt != nil {
		result = resultDuplicate
		return nil
	}

	result, err = s.applyPayment(ctx, event)
	if err != nil {
		return err
	}
	if err := s.repo.MarkProcessed(ctx, s.db, record.ID, result, s.clock.Now().UTC()); err != nil {
		s.log.Error("failed to mark payment event processed", zap.String("event_id", record.ID.String()), zap.Error(err))
	}
	return nil
}

func (s *Service) recordEvent(ctx context.Context, event *paymentdomain.PaymentEvent, payload []byte) (*paymentdomain.EventRecord, error) {
	record := &paymentdomain.EventRecord{
		ID:              s.genID.Generate(),
		OrgID:           event.OrgID,
		Provider:        event.Provider,
		ProviderEventID: event.ProviderEventID,
		EventType:       event.Type,
		InvoiceID:       event.InvoiceID,
		Payload:         datatypes.JSON(payload),
		ReceivedAt:      s.clock.Now().UTC(),
	}
	inserted, err := s.repo.InsertEvent(ctx, s.db, record)
	if err != nil {
		return nil, invoicedomain.NewPersistenceError("insert_payment_event", err)
	}
	if inserted {
		return record, nil
	}

	existing, err := s.repo.FindEvent(ctx, s.db, event.Provider, event.ProviderEventID)
	if err != nil {
		return nil, invoicedomain.NewPersistenceError("find_payment_event", err)
	}
	if existing == nil {
		return nil, invoicedomain.NewPersistenceError("find_payment_event", gorm.ErrRecordNotFound)
	}
	return existing, nil
}

// applyPayment returns the terminal result for the event, or an error when
// the provider should redeliver.
func (s *Service) applyPayment(ctx context.Context, event *paymentdomain.PaymentEvent) (string, error) {
	logger := s.log.With(
		zap.String("provider", event.Provider),
		zap.String("provider_payment_id", event.ProviderPaymentID),
		zap.String("org_id", event.OrgID.String()),
		zap.String("invoice_id", event.InvoiceID.String()),
	)

	if event.Currency != "" && event.Currency != "INR" {
		logger.Warn("payment currency not supported", zap.String("currency", event.Currency))
		return resultRejected, nil
	}

	orgCtx := orgcontext.WithOrgID(ctx, event.OrgID)
	_, err := s.invoiceSvc.RecordPayment(orgCtx, invoicedomain.RecordPaymentRequest{
		InvoiceID:         event.InvoiceID.String(),
		Amount:            event.Amount,
		Method:            invoicedomain.PaymentMethodRazorpay,
		ProviderPaymentID: event.ProviderPaymentID,
	})
	switch {
	case err == nil:
		logger.Info("webhook payment applied", zap.String("amount", event.Amount.StringFixed(2)))
		return resultApplied, nil
	case errors.Is(err, invoicedomain.ErrDuplicatePayment):
		return resultDuplicate, nil
	case errors.Is(err, invoicedomain.ErrOverpayment),
		errors.Is(err, invoicedomain.ErrInvalidAmount),
		errors.Is(err, invoicedomain.ErrInvoiceNotFound),
		errors.Is(err, invoicedomain.ErrInvalidID),
		errors.Is(err, invoicedomain.ErrValidation):
		logger.Warn("webhook payment rejected", zap.Error(err))
		return resultRejected, nil
	default:
		logger.Error("webhook payment failed", zap.Error(err))
		return resultFailed, err
	}
}
