package payment

import (
	"github.com/whizlyai/whizly/internal/config"
	"github.com/whizlyai/whizly/internal/payment/adapters"
	"github.com/whizlyai/whizly/internal/payment/adapters/razorpay"
	"github.com/whizlyai/whizly/internal/payment/repository"
	"github.com/whizlyai/whizly/internal/payment/webhook"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("payment.webhook",
	fx.Provide(repository.Provide),
	fx.Provide(provideRegistry),
	fx.Provide(webhook.NewService),
)

func provideRegistry(cfg config.Config, log *zap.Logger) (*adapters.Registry, error) {
	registry, err := adapters.NewRegistry(map[string]string{
		razorpay.Provider: cfg.Razorpay.WebhookSecret,
	}, razorpay.NewFactory())
	if err != nil {
		return nil, err
	}
	if len(registry.Configured()) == 0 {
		log.Warn("no payment provider webhook secret configured; webhooks will be refused")
	}
	return registry, nil
}
