package config

import "go.uber.org/fx"

var Module = fx.Module("config",
	fx.Provide(Load),
	fx.Provide(NewInvoicingConfigHolder),
	fx.Provide(func(h *InvoicingConfigHolder) InvoicingConfigProvider { return h }),
)
