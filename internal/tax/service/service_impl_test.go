package service

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/whizlyai/whizly/internal/config"
)

func TestPolicyProviderUsesDefaults(t *testing.T) {
	provider := NewPolicyProvider(Params{Config: config.NewStaticInvoicingConfig(config.DefaultInvoicingConfig())})
	policy := provider.Policy()

	for _, slab := range []string{"0", "5", "12", "18", "28"} {
		assert.True(t, policy.IsValidGSTRate(decimal.RequireFromString(slab)), slab)
	}
	assert.False(t, policy.IsValidGSTRate(decimal.NewFromInt(15)))

	for _, rate := range []string{"0", "0.1", "1", "2", "5", "10"} {
		assert.True(t, policy.IsValidWithholdingRate(decimal.RequireFromString(rate)), rate)
	}
	assert.False(t, policy.IsValidWithholdingRate(decimal.RequireFromString("0.5")))
}

func TestPolicyProviderFollowsConfig(t *testing.T) {
	cfg := config.DefaultInvoicingConfig()
	cfg.GSTSlabs = []float64{0, 3}
	provider := NewPolicyProvider(Params{Config: config.NewStaticInvoicingConfig(cfg)})

	assert.True(t, provider.Policy().IsValidGSTRate(decimal.NewFromInt(3)))
	assert.False(t, provider.Policy().IsValidGSTRate(decimal.NewFromInt(18)))
}
