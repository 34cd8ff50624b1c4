package migration

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/salesinvoice/internal/config"
	"github.com/smallbiznis/salesinvoice/internal/seed"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config, node *snowflake.Node, log *zap.Logger) error {
		if err := Apply(conn); err != nil {
			return err
		}
		if !cfg.SeedDefaults {
			return nil
		}
		return seed.EnsureDefaults(context.Background(), conn, node, log)
	}),
)
