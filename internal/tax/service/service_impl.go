package service

import (
	"github.com/shopspring/decimal"
	"github.com/whizlyai/whizly/internal/config"
	taxdomain "github.com/whizlyai/whizly/internal/tax/domain"
	"go.uber.org/fx"
)

type Params struct {
	fx.In

	Config config.InvoicingConfigProvider
}

type policyProvider struct {
	cfg config.InvoicingConfigProvider
}

// NewPolicyProvider reads GST slabs and withholding rates from the
// hot-reloadable invoicing config on every call.
func NewPolicyProvider(p Params) taxdomain.PolicyProvider {
	return &policyProvider{cfg: p.Config}
}

func (p *policyProvider) Policy() taxdomain.Policy {
	current := p.cfg.Get()
	return taxdomain.Policy{
		GSTSlabs:         toDecimals(current.GSTSlabs),
		WithholdingRates: toDecimals(current.WithholdingRates),
	}
}

func toDecimals(values []float64) []decimal.Decimal {
	out := make([]decimal.Decimal, 0, len(values))
	for _, v := range values {
		out = append(out, decimal.NewFromFloat(v))
	}
	return out
}
