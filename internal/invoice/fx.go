package invoice

import (
	"github.com/whizlyai/whizly/internal/invoice/repository"
	"github.com/whizlyai/whizly/internal/invoice/service"
	"github.com/whizlyai/whizly/internal/tax"
	"go.uber.org/fx"
)

var Module = fx.Module("invoice.service",
	tax.Module,
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
