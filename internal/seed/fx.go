package seed

import (
	"github.com/iitsoft/asovec/internal/config"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

// Module seeds default records once migrations have run.
var Module = fx.Module("seed",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config) error {
		if !cfg.SeedDefaults {
			return nil
		}
		return EnsureDefaults(conn)
	}),
)
