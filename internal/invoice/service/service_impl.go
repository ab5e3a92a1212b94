package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	auditdomain "github.com/whizlyai/whizly/internal/audit/domain"
	"github.com/whizlyai/whizly/internal/clock"
	"github.com/whizlyai/whizly/internal/config"
	invoicedomain "github.com/whizlyai/whizly/internal/invoice/domain"
	invoiceformat "github.com/whizlyai/whizly/internal/invoice/format"
	"github.com/whizlyai/whizly/internal/observability/metrics"
	"github.com/whizlyai/whizly/internal/orgcontext"
	"github.com/whizlyai/whizly/internal/providers/pdf"
	taxdomain "github.com/whizlyai/whizly/internal/tax/domain"
	dbutil "github.com/whizlyai/whizly/pkg/db"
	"github.com/whizlyai/whizly/pkg/db/pagination"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type ServiceParam struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	GenID    *snowflake.Node
	Repo     invoicedomain.Repository
	Clients  invoicedomain.ClientDirectory
	Tax      taxdomain.PolicyProvider
	Config   config.InvoicingConfigProvider
	Clock    clock.Clock
	AppCfg   config.Config
	PDF      pdf.Provider              `optional:"true"`
	AuditSvc auditdomain.Service       `optional:"true"`
	Metrics  *metrics.Metrics          `optional:"true"`
	Counters *metrics.InvoicingMetrics `optional:"true"`
}

type Service struct {
	db       *gorm.DB
	log      *zap.Logger
	genID    *snowflake.Node
	repo     invoicedomain.Repository
	clients  invoicedomain.ClientDirectory
	tax      taxdomain.PolicyProvider
	cfg      config.InvoicingConfigProvider
	clock    clock.Clock
	company  config.CompanyProfile
	pdf      pdf.Provider
	auditSvc auditdomain.Service
	otel     *metrics.Metrics
	counters *metrics.InvoicingMetrics
	tracer   trace.Tracer

	backoff func(attempt int) time.Duration
}

func NewService(p ServiceParam) invoicedomain.Service {
	counters := p.Counters
	if counters == nil {
		counters = metrics.Invoicing()
	}
	renderer := p.PDF
	if renderer == nil {
		renderer = pdf.New()
	}
	return &Service{
		db:       p.DB,
		log:      p.Log.Named("invoice.service"),
		genID:    p.GenID,
		repo:     p.Repo,
		clients:  p.Clients,
		tax:      p.Tax,
		cfg:      p.Config,
		clock:    p.Clock,
		company:  p.AppCfg.Company,
		pdf:      renderer,
		auditSvc: p.AuditSvc,
		otel:     p.Metrics,
		counters: counters,
		tracer:   otel.Tracer("whizly/invoice"),
		backoff:  jitteredBackoff,
	}
}

func (s *Service) Preview(ctx context.Context, req invoicedomain.PreviewRequest) (invoicedomain.Totals, error) {
	_, span := s.tracer.Start(ctx, "invoice.preview")
	defer span.End()

	verr := &invoicedomain.ValidationError{}
	policy := s.tax.Policy()
	validateTaxInputs(verr, policy, req.WithholdingTaxType, req.WithholdingTaxRate)
	validateLineItems(verr, policy, req.LineItems)
	if verr.HasErrors() {
		return invoicedomain.Totals{}, verr
	}

	return invoicedomain.ComputeTotals(req.LineItems, req.WithholdingTaxRate), nil
}

func (s *Service) CreateInvoice(ctx context.Context, req invoicedomain.CreateInvoiceRequest) (*invoicedomain.Invoice, error) {
	ctx, span := s.tracer.Start(ctx, "invoice.create")
	defer span.End()

	orgID, err := s.orgIDFromContext(ctx)
	if err != nil {
		return nil, err
	}

	cfg := s.cfg.Get()
	policy := s.tax.Policy()
	verr := &invoicedomain.ValidationError{}

	customerID := parseRequiredID(verr, "customer_id", req.CustomerID)
	issueDate := parseRequiredDate(verr, "issue_date", req.IssueDate)
	dueDate := parseRequiredDate(verr, "due_date", req.DueDate)
	if !issueDate.IsZero() && !dueDate.IsZero() && dueDate.Before(issueDate) {
		verr.Add("due_date", "before_issue_date", "due date cannot be before the issue date")
	}
	withholdingType := validateTaxInputs(verr, policy, req.WithholdingTaxType, req.WithholdingTaxRate)
	items := normalizeLineItems(req.LineItems)
	validateLineItems(verr, policy, items)
	if cfg.RejectEmptyInvoices && len(items) == 0 {
		verr.Add("line_items", "required", "at least one line item is required")
	}

	var client *invoicedomain.Client
	if customerID != 0 {
		client, err = s.clients.GetClient(ctx, orgID, customerID)
		if err != nil {
			return nil, s.persistenceError(span, "get_client", err)
		}
		if client == nil {
			verr.Add("customer_id", "not_found", "client does not exist")
		}
	}
	if verr.HasErrors() {
		span.SetStatus(codes.Error, invoicedomain.ErrValidation.Error())
		return nil, verr
	}

	currency := strings.ToUpper(strings.TrimSpace(req.Currency))
	if currency == "" {
		currency = cfg.DefaultCurrency
	}

	totals := invoicedomain.ComputeTotals(items, req.WithholdingTaxRate)
	now := s.clock.Now().UTC()
	invoice := &invoicedomain.Invoice{
		ID:                 s.genID.Generate(),
		OrgID:              orgID,
		CustomerID:         client.ID,
		CustomerName:       client.Name,
		CustomerAddress:    client.Address,
		CustomerTaxID:      client.TaxID,
		Currency:           currency,
		IssueDate:          issueDate,
		DueDate:            dueDate,
		LineItems:          items,
		Subtotal:           totals.Subtotal,
		GSTTotal:           totals.GSTTotal,
		WithholdingTaxType: withholdingType,
		WithholdingTaxRate: req.WithholdingTaxRate,
		WithholdingTax:     totals.WithholdingTax,
		Amount:             totals.GrandTotal,
		Status:             invoicedomain.DeriveStatus(totals.GrandTotal, decimal.Zero, req.SaveAsDraft),
		Notes:              strings.TrimSpace(req.Notes),
		Version:            1,
		Metadata:           req.Metadata,
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		seq, err := s.repo.NextSequence(ctx, tx, orgID, now)
		if err != nil {
			return err
		}
		number, err := invoiceformat.FormatInvoiceNumber(cfg.NumberTemplate, issueDate, seq)
		if err != nil {
			return err
		}
		invoice.InvoiceNumber = number
		return s.repo.Insert(ctx, tx, invoice)
	})
	if err != nil {
		if dbutil.IsDuplicateKeyErr(err) {
			verr := &invoicedomain.ValidationError{}
			verr.Add("invoice_number", "duplicate", "invoice number already issued for this organization")
			return nil, verr
		}
		return nil, s.persistenceError(span, "create_invoice", err)
	}

	span.SetAttributes(
		attribute.String("invoice.id", invoice.ID.String()),
		attribute.String("invoice.status", string(invoice.Status)),
	)
	s.counters.IncInvoiceCreated(string(invoice.Status))
	s.otel.RecordInvoiceCreated(ctx, orgID.String(), string(invoice.Status))
	s.emitAudit(ctx, auditdomain.ActionInvoiceCreated, invoice, map[string]any{
		"customer_tax_id": invoice.CustomerTaxID,
	})
	s.log.Info("invoice created",
		zap.String("org_id", orgID.String()),
		zap.String("invoice_id", invoice.ID.String()),
		zap.String("invoice_number", invoice.InvoiceNumber),
		zap.String("amount", invoice.Amount.StringFixed(2)),
	)

	invoicedomain.ApplyView(invoice, now)
	return invoice, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (*invoicedomain.Invoice, error) {
	ctx, span := s.tracer.Start(ctx, "invoice.get")
	defer span.End()

	orgID, err := s.orgIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	invoiceID, err := parseID(id)
	if err != nil {
		return nil, invoicedomain.ErrInvalidID
	}

	return s.loadInvoice(ctx, span, orgID, invoiceID)
}

func (s *Service) List(ctx context.Context, req invoicedomain.ListInvoiceRequest) (invoicedomain.ListInvoiceResponse, error) {
	ctx, span := s.tracer.Start(ctx, "invoice.list")
	defer span.End()

	orgID, err := s.orgIDFromContext(ctx)
	if err != nil {
		return invoicedomain.ListInvoiceResponse{}, err
	}

	now := s.clock.Now().UTC()
	filter := invoicedomain.ListFilter{Today: startOfDay(now)}
	verr := &invoicedomain.ValidationError{}

	if raw := strings.ToUpper(strings.TrimSpace(req.Status)); raw != "" {
		status, ok := invoicedomain.ParseStatus(raw)
		if !ok {
			verr.Add("status", "invalid", "unknown invoice status")
		}
		filter.Status = status
	}
	if raw := strings.TrimSpace(req.CustomerID); raw != "" {
		customerID, err := parseID(raw)
		if err != nil {
			verr.Add("customer_id", "invalid", "customer_id must be a numeric id")
		}
		filter.CustomerID = customerID
	}
	if raw := strings.TrimSpace(req.IssuedFrom); raw != "" {
		from, err := parseDate(raw)
		if err != nil {
			verr.Add("issued_from", "invalid", "expected YYYY-MM-DD")
		} else {
			filter.IssuedFrom = &from
		}
	}
	if raw := strings.TrimSpace(req.IssuedTo); raw != "" {
		to, err := parseDate(raw)
		if err != nil {
			verr.Add("issued_to", "invalid", "expected YYYY-MM-DD")
		} else {
			filter.IssuedTo = &to
		}
	}
	switch strings.ToLower(strings.TrimSpace(req.OrderBy)) {
	case "", "desc":
	case "asc":
		filter.Ascending = true
	default:
		verr.Add("order_by", "invalid", "order_by must be asc or desc")
	}
	if token := strings.TrimSpace(req.PageToken); token != "" {
		cursor, err := pagination.DecodeCursor(token)
		if err != nil {
			verr.Add("page_token", "invalid", "malformed page token")
		} else {
			issue, issueErr := time.Parse(time.RFC3339, cursor.IssueDate)
			afterID, idErr := parseID(cursor.ID)
			if issueErr != nil || idErr != nil {
				verr.Add("page_token", "invalid", "malformed page token")
			} else {
				filter.AfterIssue = &issue
				filter.AfterID = afterID
			}
		}
	}
	if verr.HasErrors() {
		return invoicedomain.ListInvoiceResponse{}, verr
	}

	limit := req.Limit()
	filter.Limit = limit + 1

	items, err := s.repo.List(ctx, s.db, orgID, filter)
	if err != nil {
		return invoicedomain.ListInvoiceResponse{}, s.persistenceError(span, "list_invoices", err)
	}

	pageInfo := pagination.BuildCursorPageInfo(items, limit, func(item *invoicedomain.Invoice) string {
		token, err := pagination.EncodeCursor(pagination.Cursor{
			ID:        item.ID.String(),
			IssueDate: item.IssueDate.UTC().Format(time.RFC3339),
		})
		if err != nil {
			return ""
		}
		return token
	})
	if len(items) > limit {
		items = items[:limit]
	}

	invoices := make([]invoicedomain.Invoice, 0, len(items))
	for _, item := range items {
		invoicedomain.ApplyView(item, now)
		invoices = append(invoices, *item)
	}

	return invoicedomain.ListInvoiceResponse{
		PageInfo: *pageInfo,
		Invoices: invoices,
	}, nil
}

func (s *Service) ListPayments(ctx context.Context, id string) ([]invoicedomain.InvoicePayment, error) {
	ctx, span := s.tracer.Start(ctx, "invoice.list_payments")
	defer span.End()

	orgID, err := s.orgIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	invoiceID, err := parseID(id)
	if err != nil {
		return nil, invoicedomain.ErrInvalidID
	}
	if _, err := s.loadInvoice(ctx, span, orgID, invoiceID); err != nil {
		return nil, err
	}

	payments, err := s.repo.ListPayments(ctx, s.db, orgID, invoiceID)
	if err != nil {
		return nil, s.persistenceError(span, "list_payments", err)
	}
	return payments, nil
}

func (s *Service) loadInvoice(ctx context.Context, span trace.Span, orgID, invoiceID snowflake.ID) (*invoicedomain.Invoice, error) {
	invoice, err := s.repo.FindByID(ctx, s.db, orgID, invoiceID)
	if err != nil {
		return nil, s.persistenceError(span, "find_invoice", err)
	}
	if invoice == nil {
		return nil, invoicedomain.ErrInvoiceNotFound
	}
	invoicedomain.ApplyView(invoice, s.clock.Now())
	return invoice, nil
}

func (s *Service) persistenceError(span trace.Span, op string, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, op)
	s.log.Error("storage failure", zap.String("op", op), zap.Error(err))
	return invoicedomain.NewPersistenceError(op, err)
}

func (s *Service) emitAudit(ctx context.Context, action string, invoice *invoicedomain.Invoice, extra map[string]any) {
	if s.auditSvc == nil || invoice == nil {
		return
	}
	metadata := map[string]any{
		"invoice_number": invoice.InvoiceNumber,
		"customer_id":    invoice.CustomerID.String(),
		"currency":       invoice.Currency,
		"amount":         invoice.Amount.StringFixed(2),
		"amount_paid":    invoice.AmountPaid.StringFixed(2),
		"status":         string(invoice.Status),
	}
	for key, value := range extra {
		if key == "" {
			continue
		}
		metadata[key] = value
	}

	if err := s.auditSvc.Record(ctx, auditdomain.Entry{
		OrgID:      invoice.OrgID,
		Action:     action,
		TargetType: auditdomain.TargetInvoice,
		TargetID:   invoice.ID.String(),
		Metadata:   metadata,
	}); err != nil {
		s.log.Warn("audit log failed", zap.String("action", action), zap.Error(err))
	}
}

func (s *Service) orgIDFromContext(ctx context.Context) (snowflake.ID, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok {
		return 0, invoicedomain.ErrInvalidOrganization
	}
	return orgID, nil
}

func parseID(raw string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(raw))
	if err != nil {
		return 0, err
	}
	if id <= 0 {
		return 0, errors.New("id must be positive")
	}
	return id, nil
}

func startOfDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
