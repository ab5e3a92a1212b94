package config

import (
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	invoiceformat "github.com/whizlyai/whizly/internal/invoice/format"
)

// InvoicingConfig is the tax and numbering policy applied to new invoices.
type InvoicingConfig struct {
	GSTSlabs            []float64     `mapstructure:"gstSlabs"`
	WithholdingRates    []float64     `mapstructure:"withholdingRates"`
	NumberTemplate      string        `mapstructure:"numberTemplate"`
	DefaultCurrency     string        `mapstructure:"defaultCurrency"`
	PaymentMaxRetries   int           `mapstructure:"paymentMaxRetries"`
	RejectEmptyInvoices bool          `mapstructure:"rejectEmptyInvoices"`
	ClientCacheTTL      time.Duration `mapstructure:"clientCacheTTL"`
}

func DefaultInvoicingConfig() InvoicingConfig {
	return InvoicingConfig{
		GSTSlabs:            []float64{0, 5, 12, 18, 28},
		WithholdingRates:    []float64{0, 0.1, 1, 2, 5, 10},
		NumberTemplate:      invoiceformat.DefaultNumberTemplate,
		DefaultCurrency:     "INR",
		PaymentMaxRetries:   5,
		RejectEmptyInvoices: false,
		ClientCacheTTL:      5 * time.Minute,
	}
}

// InvoicingConfigProvider exposes the current invoicing policy.
type InvoicingConfigProvider interface {
	Get() InvoicingConfig
}

type InvoicingConfigHolder struct {
	current atomic.Value // holds InvoicingConfig
}

// NewStaticInvoicingConfig returns a holder that never reloads.
func NewStaticInvoicingConfig(cfg InvoicingConfig) *InvoicingConfigHolder {
	holder := &InvoicingConfigHolder{}
	holder.current.Store(cfg)
	return holder
}

func NewInvoicingConfigHolder(log *zap.Logger) (*InvoicingConfigHolder, error) {
	if log == nil {
		log = zap.NewNop()
	}
	log = log.Named("config.invoicing")

	v := viper.New()

	v.SetConfigName("invoicing")
	v.SetConfigType("yml")
	v.AddConfigPath("/var/lib/whizly/config")
	v.AddConfigPath("/etc/whizly")
	v.AddConfigPath(".")

	v.SetEnvPrefix("WHIZLY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	defaults := DefaultInvoicingConfig()
	v.SetDefault("invoicing.gstSlabs", defaults.GSTSlabs)
	v.SetDefault("invoicing.withholdingRates", defaults.WithholdingRates)
	v.SetDefault("invoicing.numberTemplate", defaults.NumberTemplate)
	v.SetDefault("invoicing.defaultCurrency", defaults.DefaultCurrency)
	v.SetDefault("invoicing.paymentMaxRetries", defaults.PaymentMaxRetries)
	v.SetDefault("invoicing.rejectEmptyInvoices", defaults.RejectEmptyInvoices)
	v.SetDefault("invoicing.clientCacheTTL", defaults.ClientCacheTTL)

	fileFound := true
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		fileFound = false
	}

	var cfg InvoicingConfig
	if err := v.UnmarshalKey("invoicing", &cfg); err != nil {
		return nil, err
	}
	if err := ValidateInvoicingConfig(cfg); err != nil {
		return nil, err
	}

	holder := NewStaticInvoicingConfig(cfg)
	if !fileFound {
		log.Info("invoicing config file not found, using defaults")
		return holder, nil
	}

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		var updated InvoicingConfig
		if err := v.UnmarshalKey("invoicing", &updated); err != nil {
			log.Warn("reload failed", zap.Error(err))
			return
		}
		if err := ValidateInvoicingConfig(updated); err != nil {
			log.Warn("invalid config ignored", zap.Error(err))
			return
		}
		holder.current.Store(updated)
		log.Info("reloaded", zap.String("file", e.Name))
	})

	return holder, nil
}

func (h *InvoicingConfigHolder) Get() InvoicingConfig {
	return h.current.Load().(InvoicingConfig)
}

func ValidateInvoicingConfig(cfg InvoicingConfig) error {
	if len(cfg.GSTSlabs) == 0 {
		return errors.New("invoicing.gstSlabs cannot be empty")
	}
	for _, slab := range cfg.GSTSlabs {
		if slab < 0 || slab > 100 {
			return fmt.Errorf("invoicing.gstSlabs contains out of range value %v", slab)
		}
	}
	if len(cfg.WithholdingRates) == 0 {
		return errors.New("invoicing.withholdingRates cannot be empty")
	}
	for _, rate := range cfg.WithholdingRates {
		if rate < 0 || rate > 100 {
			return fmt.Errorf("invoicing.withholdingRates contains out of range value %v", rate)
		}
	}
	if err := invoiceformat.ValidateTemplate(cfg.NumberTemplate); err != nil {
		return fmt.Errorf("invoicing.numberTemplate: %w", err)
	}
	if cfg.PaymentMaxRetries < 1 {
		return errors.New("invoicing.paymentMaxRetries must be at least 1")
	}
	return nil
}
