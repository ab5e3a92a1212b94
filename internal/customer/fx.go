package customer

import (
	"github.com/whizlyai/whizly/internal/customer/repository"
	"github.com/whizlyai/whizly/internal/customer/service"
	"go.uber.org/fx"
)

var Module = fx.Module("customer.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
	fx.Provide(service.NewDirectory),
)
