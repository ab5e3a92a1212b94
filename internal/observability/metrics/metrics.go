package metrics

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const defaultExportInterval = 10 * time.Second

// Config configures the metrics provider.
type Config struct {
	Enabled          bool
	ExporterEndpoint string
	ExporterProtocol string
	ExportInterval   time.Duration
	ServiceName      string
	Environment      string
}

func (c Config) meterName() string {
	if name := strings.TrimSpace(c.ServiceName); name != "" {
		return name
	}
	return "whizly"
}

func (c Config) interval() time.Duration {
	if c.ExportInterval <= 0 {
		return defaultExportInterval
	}
	return c.ExportInterval
}

// Metrics holds the OTel counters for invoicing and payment activity.
type Metrics struct {
	counters      map[string]metric.Int64Counter
	paymentAmount metric.Float64Counter
}

const (
	instInvoicesCreated  = "whizly_invoices_created"
	instPaymentsRecorded = "whizly_payments_recorded"
	instWebhookEvents    = "whizly_payment_webhook_events"
	instRateLimitAllowed = "whizly_rate_limit_allowed"
	instRateLimitDenied  = "whizly_rate_limit_denied"
	instPaymentAmount    = "whizly_payment_amount"
)

var int64Instruments = []struct {
	name        string
	description string
}{
	{instInvoicesCreated, "Invoices issued"},
	{instPaymentsRecorded, "Payments applied to invoices"},
	{instWebhookEvents, "Verified payment provider webhook events"},
	{instRateLimitAllowed, "Requests admitted by the org rate limiter"},
	{instRateLimitDenied, "Requests rejected by the org rate limiter"},
}

// NewProvider registers the global meter provider. A disabled config yields a noop provider.
func NewProvider(lc fx.Lifecycle, cfg Config, log *zap.Logger) (metric.MeterProvider, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if !cfg.Enabled {
		provider := noop.NewMeterProvider()
		otel.SetMeterProvider(provider)
		return provider, nil
	}

	exporter, err := newExporter(cfg.ExporterProtocol, cfg.ExporterEndpoint)
	if err != nil {
		return nil, err
	}

	provider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(cfg.interval()))),
	)
	otel.SetMeterProvider(provider)

	if lc != nil {
		lc.Append(fx.StopHook(func(ctx context.Context) error {
			log.Info("flushing meter provider")
			return provider.Shutdown(ctx)
		}))
	}

	log.Info("otel metrics exporter ready",
		zap.String("endpoint", cfg.ExporterEndpoint),
		zap.String("protocol", cfg.ExporterProtocol),
		zap.Duration("interval", cfg.interval()),
	)
	return provider, nil
}

// New builds the invoicing instruments on the given provider.
func New(cfg Config, provider metric.MeterProvider) (*Metrics, error) {
	meter := provider.Meter(cfg.meterName())

	m := &Metrics{counters: make(map[string]metric.Int64Counter, len(int64Instruments))}
	for _, inst := range int64Instruments {
		counter, err := meter.Int64Counter(inst.name, metric.WithDescription(inst.description))
		if err != nil {
			return nil, fmt.Errorf("create %s: %w", inst.name, err)
		}
		m.counters[inst.name] = counter
	}

	amount, err := meter.Float64Counter(instPaymentAmount,
		metric.WithUnit("{INR}"),
		metric.WithDescription("Total payment amount applied to invoices"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", instPaymentAmount, err)
	}
	m.paymentAmount = amount
	return m, nil
}

func (m *Metrics) inc(ctx context.Context, name string, attrs ...attribute.KeyValue) {
	if m == nil {
		return
	}
	counter, ok := m.counters[name]
	if !ok {
		return
	}
	counter.Add(ctx, 1, metric.WithAttributes(FilterAttributes(attrs...)...))
}

func label(key, value string) attribute.KeyValue {
	return attribute.String(key, strings.TrimSpace(value))
}

// RecordInvoiceCreated counts an issued invoice.
func (m *Metrics) RecordInvoiceCreated(ctx context.Context, orgID, status string) {
	m.inc(ctx, instInvoicesCreated, label("org_id", orgID), label("status", status))
}

// RecordPayment counts an applied payment and adds its amount.
func (m *Metrics) RecordPayment(ctx context.Context, orgID, method string, amount float64) {
	if m == nil {
		return
	}
	attrs := []attribute.KeyValue{label("org_id", orgID), label("method", method)}
	m.inc(ctx, instPaymentsRecorded, attrs...)
	if amount > 0 && m.paymentAmount != nil {
		m.paymentAmount.Add(ctx, amount, metric.WithAttributes(FilterAttributes(attrs...)...))
	}
}

func (m *Metrics) RecordWebhookEvent(ctx context.Context, provider, eventType string) {
	m.inc(ctx, instWebhookEvents, label("provider", provider), label("event_type", eventType))
}

func (m *Metrics) RecordRateLimitAllowed(ctx context.Context, orgID, endpoint string) {
	m.inc(ctx, instRateLimitAllowed, label("org_id", orgID), label("endpoint", endpoint))
}

func (m *Metrics) RecordRateLimitDenied(ctx context.Context, orgID, endpoint, reason string) {
	m.inc(ctx, instRateLimitDenied, label("org_id", orgID), label("endpoint", endpoint), label("reason", reason))
}

func newExporter(protocol, endpoint string) (sdkmetric.Exporter, error) {
	ctx := context.Background()
	switch strings.ToLower(strings.TrimSpace(protocol)) {
	case "http", "http/protobuf":
		var opts []otlpmetrichttp.Option
		if endpoint != "" {
			opts = append(opts, otlpmetrichttp.WithEndpoint(endpoint))
		}
		return otlpmetrichttp.New(ctx, opts...)
	case "", "grpc", "grpc/protobuf":
		opts := []otlpmetricgrpc.Option{otlpmetricgrpc.WithInsecure()}
		if endpoint != "" {
			opts = append(opts, otlpmetricgrpc.WithEndpoint(endpoint))
		}
		return otlpmetricgrpc.New(ctx, opts...)
	}
	return nil, fmt.Errorf("metrics: unsupported otlp protocol %q", protocol)
}

// Label keys permitted on exported series. Invoice and customer IDs never appear here.
var allowedLabelKeys = map[attribute.Key]struct{}{
	"org_id":     {},
	"endpoint":   {},
	"status":     {},
	"method":     {},
	"provider":   {},
	"event_type": {},
	"reason":     {},
}

// FilterAttributes drops labels outside the allowed set and empty values.
func FilterAttributes(attrs ...attribute.KeyValue) []attribute.KeyValue {
	filtered := make([]attribute.KeyValue, 0, len(attrs))
	for _, attr := range attrs {
		if _, ok := allowedLabelKeys[attr.Key]; !ok {
			continue
		}
		if attr.Value.Type() == attribute.STRING && attr.Value.AsString() == "" {
			continue
		}
		filtered = append(filtered, attr)
	}
	return filtered
}
