package service

import (
	"context"
	"errors"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	auditdomain "github.com/whizlyai/whizly/internal/audit/domain"
	invoicedomain "github.com/whizlyai/whizly/internal/invoice/domain"
	"github.com/whizlyai/whizly/internal/observability/metrics"
	"github.com/whizlyai/whizly/pkg/money"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	errVersionConflict  = errors.New("invoice version changed")
	errProviderRecorded = errors.New("provider payment already recorded")
)

// RecordPayment applies a payment with an optimistic read-modify-write on
// the invoice version. A lost race re-reads the invoice and re-checks the
// balance, up to PaymentMaxRetries attempts.
func (s *Service) RecordPayment(ctx context.Context, req invoicedomain.RecordPaymentRequest) (*invoicedomain.Invoice, error) {
	ctx, span := s.tracer.Start(ctx, "invoice.record_payment")
	defer span.End()

	started := time.Now()
	outcome := metrics.PaymentOutcomeRecorded
	defer func() {
		s.counters.ObservePayment(outcome, time.Since(started))
	}()

	orgID, err := s.orgIDFromContext(ctx)
	if err != nil {
		outcome = metrics.PaymentOutcomeNotFound
		return nil, err
	}
	invoiceID, err := parseID(req.InvoiceID)
	if err != nil {
		outcome = metrics.PaymentOutcomeNotFound
		return nil, invoicedomain.ErrInvalidID
	}
	if !req.Amount.IsPositive() || !money.IsWholePaise(req.Amount) {
		outcome = metrics.PaymentOutcomeInvalidAmount
		return nil, invoicedomain.ErrInvalidAmount
	}

	method := req.Method
	if method == "" {
		method = invoicedomain.PaymentMethodManual
	}
	if method != invoicedomain.PaymentMethodManual && method != invoicedomain.PaymentMethodRazorpay {
		outcome = metrics.PaymentOutcomeInvalidAmount
		verr := &invoicedomain.ValidationError{}
		verr.Add("method", "invalid", "payment method must be manual or razorpay")
		return nil, verr
	}
	providerPaymentID := strings.TrimSpace(req.ProviderPaymentID)

	span.SetAttributes(
		attribute.String("invoice.id", invoiceID.String()),
		attribute.String("payment.method", string(method)),
	)

	if providerPaymentID != "" {
		existing, err := s.repo.FindPaymentByProviderID(ctx, s.db, method, providerPaymentID)
		if err != nil {
			outcome = metrics.PaymentOutcomePersistence
			return nil, s.persistenceError(span, "find_payment", err)
		}
		if existing != nil {
			outcome = metrics.PaymentOutcomeDuplicate
			return s.duplicatePayment(ctx, span, orgID, existing.InvoiceID)
		}
	}

	maxAttempts := s.cfg.Get().PaymentMaxRetries
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		invoice, err := s.repo.FindByID(ctx, s.db, orgID, invoiceID)
		if err != nil {
			outcome = metrics.PaymentOutcomePersistence
			return nil, s.persistenceError(span, "find_invoice", err)
		}
		if invoice == nil {
			outcome = metrics.PaymentOutcomeNotFound
			return nil, invoicedomain.ErrInvoiceNotFound
		}

		remaining := invoicedomain.RemainingBalance(invoice)
		if req.Amount.GreaterThan(remaining) {
			outcome = metrics.PaymentOutcomeOverpayment
			return nil, &invoicedomain.OverpaymentError{
				Amount:    req.Amount,
				Remaining: money.Max(remaining, decimal.Zero),
			}
		}

		now := s.clock.Now().UTC()
		amountPaid := invoice.AmountPaid.Add(req.Amount)
		status := invoicedomain.DeriveStatus(invoice.Amount, amountPaid, false)
		paidAt := invoice.PaidAt
		if status == invoicedomain.InvoiceStatusPaid && paidAt == nil {
			paidAt = &now
		}

		payment := &invoicedomain.InvoicePayment{
			ID:         s.genID.Generate(),
			OrgID:      orgID,
			InvoiceID:  invoiceID,
			Amount:     req.Amount,
			Method:     method,
			Note:       strings.TrimSpace(req.Note),
			RecordedAt: now,
		}
		if providerPaymentID != "" {
			payment.ProviderPaymentID = &providerPaymentID
		}

		err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			applied, err := s.repo.ApplyPayment(ctx, tx, invoicedomain.PaymentUpdate{
				OrgID:           orgID,
				InvoiceID:       invoiceID,
				ExpectedVersion: invoice.Version,
				AmountPaid:      amountPaid,
				Status:          status,
				PaidAt:          paidAt,
				UpdatedAt:       now,
			})
			if err != nil {
				return err
			}
			if !applied {
				return errVersionConflict
			}
			inserted, err := s.repo.InsertPayment(ctx, tx, payment)
			if err != nil {
				return err
			}
			if !inserted {
				return errProviderRecorded
			}
			return nil
		})

		switch {
		case err == nil:
			invoice.AmountPaid = amountPaid
			invoice.Status = status
			invoice.PaidAt = paidAt
			invoice.UpdatedAt = now
			invoice.Version++
			invoicedomain.ApplyView(invoice, now)

			amount, _ := req.Amount.Float64()
			s.otel.RecordPayment(ctx, orgID.String(), string(method), amount)
			s.emitAudit(ctx, auditdomain.ActionInvoicePaymentRecorded, invoice, map[string]any{
				"payment_id":     payment.ID.String(),
				"payment_amount": req.Amount.StringFixed(2),
				"method":         string(method),
				"attempts":       attempt,
			})
			s.log.Info("payment recorded",
				zap.String("org_id", orgID.String()),
				zap.String("invoice_id", invoiceID.String()),
				zap.String("amount", req.Amount.StringFixed(2)),
				zap.String("status", string(status)),
				zap.Int("attempt", attempt),
			)
			return invoice, nil

		case errors.Is(err, errProviderRecorded):
			outcome = metrics.PaymentOutcomeDuplicate
			return s.duplicatePayment(ctx, span, orgID, invoiceID)

		case errors.Is(err, errVersionConflict):
			s.counters.IncPaymentRetry(metrics.RetryReasonVersionConflict)

		case metrics.IsRetryableDBError(err):
			s.counters.IncPaymentRetry(metrics.ClassifyRetryReason(err))

		default:
			outcome = metrics.PaymentOutcomePersistence
			return nil, s.persistenceError(span, "record_payment", err)
		}

		if attempt == maxAttempts {
			break
		}
		if err := sleepContext(ctx, s.backoff(attempt)); err != nil {
			outcome = metrics.PaymentOutcomePersistence
			return nil, s.persistenceError(span, "record_payment", err)
		}
	}

	outcome = metrics.PaymentOutcomeConflict
	s.log.Warn("payment retries exhausted",
		zap.String("org_id", orgID.String()),
		zap.String("invoice_id", invoiceID.String()),
		zap.Int("attempts", maxAttempts),
	)
	return nil, invoicedomain.ErrConcurrencyConflict
}

// duplicatePayment returns the invoice a replayed provider payment was
// recorded against, together with ErrDuplicatePayment. The lookup stays
// tenant scoped.
func (s *Service) duplicatePayment(ctx context.Context, span trace.Span, orgID, invoiceID snowflake.ID) (*invoicedomain.Invoice, error) {
	invoice, err := s.loadInvoice(ctx, span, orgID, invoiceID)
	if err != nil {
		return nil, err
	}
	return invoice, invoicedomain.ErrDuplicatePayment
}

func jitteredBackoff(attempt int) time.Duration {
	base := time.Duration(attempt) * 10 * time.Millisecond
	return base + time.Duration(rand.Int64N(int64(10*time.Millisecond)))
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
