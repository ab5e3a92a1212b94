package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/whizlyai/whizly/internal/clock"
	"github.com/whizlyai/whizly/internal/config"
	"github.com/whizlyai/whizly/internal/migration"
	"github.com/whizlyai/whizly/internal/observability"
	"github.com/whizlyai/whizly/internal/server"
	"github.com/whizlyai/whizly/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

func main() {
	app := fx.New(
		// Core Infrastructure
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		migration.Module,

		// Domains and HTTP
		server.Module,

		fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: log.Named("fx")}
		}),
	)
	app.Run()
}

func RegisterSnowflake(cfg config.Config) (*snowflake.Node, error) {
	return snowflake.NewNode(cfg.NodeID)
}
