package audit

import (
	"github.com/whizlyai/whizly/internal/audit/repository"
	"github.com/whizlyai/whizly/internal/audit/service"
	"go.uber.org/fx"
)

var Module = fx.Module("audit.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
