package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/whizlyai/whizly/internal/audit"
	auditdomain "github.com/whizlyai/whizly/internal/audit/domain"
	"github.com/whizlyai/whizly/internal/cache"
	"github.com/whizlyai/whizly/internal/config"
	"github.com/whizlyai/whizly/internal/customer"
	customerdomain "github.com/whizlyai/whizly/internal/customer/domain"
	"github.com/whizlyai/whizly/internal/invoice"
	invoicedomain "github.com/whizlyai/whizly/internal/invoice/domain"
	"github.com/whizlyai/whizly/internal/observability"
	obsmiddleware "github.com/whizlyai/whizly/internal/observability/logger"
	obsmetrics "github.com/whizlyai/whizly/internal/observability/metrics"
	obstracing "github.com/whizlyai/whizly/internal/observability/tracing"
	"github.com/whizlyai/whizly/internal/payment"
	paymentdomain "github.com/whizlyai/whizly/internal/payment/domain"
	"github.com/whizlyai/whizly/internal/providers/pdf"
	"github.com/whizlyai/whizly/internal/ratelimit"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("http.server",
	cache.Module,
	ratelimit.Module,
	audit.Module,
	pdf.Module,
	customer.Module,
	invoice.Module,
	payment.Module,
	fx.Provide(registerGin),
	fx.Provide(NewServer),
	fx.Invoke(run),
)

func NewEngine(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obsmiddleware.GinMiddleware(obsmiddleware.MiddlewareConfig{
		Debug:           obsCfg.Debug(),
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(obstracing.GinMiddleware())
	r.Use(httpMetrics.GinMiddleware())
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	if !obsCfg.Debug() {
		gin.SetMode(gin.ReleaseMode)
	}
	return NewEngine(obsCfg, httpMetrics)
}

func run(lc fx.Lifecycle, shutdowner fx.Shutdowner, s *Server, cfg config.Config, log *zap.Logger) {
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				log.Info("http server listening", zap.String("addr", srv.Addr))
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Error("http server stopped", zap.Error(err))
					_ = shutdowner.Shutdown(fx.ExitCode(1))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine      *gin.Engine
	cfg         config.Config
	log         *zap.Logger
	auditSvc    auditdomain.Service
	customerSvc customerdomain.Service
	invoiceSvc  invoicedomain.Service
	paymentSvc  paymentdomain.Service
	limiter     *ratelimit.PaymentLimiter
	obsMetrics  *obsmetrics.Metrics
}

type ServerParams struct {
	fx.In

	Gin         *gin.Engine
	Cfg         config.Config
	Log         *zap.Logger
	AuditSvc    auditdomain.Service
	CustomerSvc customerdomain.Service
	InvoiceSvc  invoicedomain.Service
	PaymentSvc  paymentdomain.Service
	Limiter     *ratelimit.PaymentLimiter `optional:"true"`
	ObsMetrics  *obsmetrics.Metrics       `optional:"true"`
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:      p.Gin,
		cfg:         p.Cfg,
		log:         p.Log.Named("http.server"),
		auditSvc:    p.AuditSvc,
		customerSvc: p.CustomerSvc,
		invoiceSvc:  p.InvoiceSvc,
		paymentSvc:  p.PaymentSvc,
		limiter:     p.Limiter,
		obsMetrics:  p.ObsMetrics,
	}

	svc.registerAPIRoutes()
	svc.registerFallback()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/api")

	// -------- Payment Webhooks --------
	api.POST("/payments/webhooks/:provider", s.HandlePaymentWebhook)

	tenant := api.Group("", s.OrgRequired())

	// -------- Invoices --------
	tenant.POST("/invoices/preview", s.PreviewInvoice)
	tenant.POST("/invoices", s.CreateInvoice)
	tenant.GET("/invoices", s.ListInvoices)
	tenant.GET("/invoices/:id", s.GetInvoiceByID)
	tenant.GET("/invoices/:id/pdf", s.DownloadInvoicePDF)
	tenant.GET("/invoices/:id/payments", s.ListInvoicePayments)
	tenant.POST("/invoices/:id/payments", s.PaymentRateLimit(), s.RecordPayment)

	// -------- Customers --------
	tenant.GET("/customers", s.ListCustomers)
	tenant.POST("/customers", s.CreateCustomer)
	tenant.GET("/customers/:id", s.GetCustomerByID)

	// -------- Audit --------
	tenant.GET("/audit_logs", s.ListAuditLogs)
}

func (s *Server) registerFallback() {
	s.engine.NoRoute(func(c *gin.Context) {
		AbortWithError(c, ErrNotFound)
	})
}
