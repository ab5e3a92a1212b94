package tax

import (
	"github.com/whizlyai/whizly/internal/tax/service"
	"go.uber.org/fx"
)

var Module = fx.Module("tax.service",
	fx.Provide(service.NewPolicyProvider),
)
