package main

import (
	"fmt"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/salesinvoice/internal/clock"
	"github.com/smallbiznis/salesinvoice/internal/config"
	"github.com/smallbiznis/salesinvoice/internal/lock"
	"github.com/smallbiznis/salesinvoice/internal/migration"
	"github.com/smallbiznis/salesinvoice/internal/observability"
	"github.com/smallbiznis/salesinvoice/internal/scheduler"
	"github.com/smallbiznis/salesinvoice/internal/server"
	"github.com/smallbiznis/salesinvoice/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		lock.Module,
		migration.Module,
		server.Module,
		scheduler.Module,
	)
	app.Run()
}

// RegisterSnowflake gives each replica its own node so ids never collide.
func RegisterSnowflake(cfg config.Config) (*snowflake.Node, error) {
	node, err := snowflake.NewNode(cfg.SnowflakeNode)
	if err != nil {
		return nil, fmt.Errorf("snowflake node %d: %w", cfg.SnowflakeNode, err)
	}
	return node, nil
}
