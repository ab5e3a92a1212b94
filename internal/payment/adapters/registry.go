package adapters

import (
	"fmt"
	"sort"
	"strings"

	"github.com/whizlyai/whizly/internal/payment/domain"
)

// Registry holds one verified adapter per configured provider. Providers
// that are known but have no webhook secret stay registered so callers can
// tell "unknown" from "not configured".
type Registry struct {
	adapters     map[string]domain.PaymentAdapter
	unconfigured map[string]struct{}
}

// NewRegistry builds adapters up front from the per-provider secrets.
func NewRegistry(secrets map[string]string, factories ...domain.AdapterFactory) (*Registry, error) {
	r := &Registry{
		adapters:     map[string]domain.PaymentAdapter{},
		unconfigured: map[string]struct{}{},
	}
	for _, factory := range factories {
		if factory == nil {
			continue
		}
		provider := normalize(factory.Provider())
		if provider == "" {
			continue
		}
		secret := strings.TrimSpace(secrets[provider])
		if secret == "" {
			r.unconfigured[provider] = struct{}{}
			continue
		}
		adapter, err := factory.NewAdapter(domain.AdapterConfig{WebhookSecret: secret})
		if err != nil {
			return nil, fmt.Errorf("payment provider %s: %w", provider, err)
		}
		r.adapters[provider] = adapter
	}
	return r, nil
}

// Adapter returns ErrProviderNotFound for unknown providers and
// ErrInvalidConfig for known providers without credentials.
func (r *Registry) Adapter(provider string) (domain.PaymentAdapter, error) {
	if r == nil {
		return nil, domain.ErrProviderNotFound
	}
	provider = normalize(provider)
	if adapter, ok := r.adapters[provider]; ok {
		return adapter, nil
	}
	if _, ok := r.unconfigured[provider]; ok {
		return nil, domain.ErrInvalidConfig
	}
	return nil, domain.ErrProviderNotFound
}

// Configured lists providers that can accept webhooks.
func (r *Registry) Configured() []string {
	if r == nil {
		return nil
	}
	out := make([]string, 0, len(r.adapters))
	for provider := range r.adapters {
		out = append(out, provider)
	}
	sort.Strings(out)
	return out
}

func normalize(provider string) string {
	return strings.ToLower(strings.TrimSpace(provider))
}
