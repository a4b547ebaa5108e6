// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"

	flagstore "github.com/dalemusser/folio/internal/app/store/flags"
	linkstore "github.com/dalemusser/folio/internal/app/store/links"
	"github.com/dalemusser/folio/internal/app/store/seed"
	"github.com/dalemusser/folio/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// Startup runs one-time initialization after connections and schema are
// ready: it installs the configured deadlines and applies the seed file.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	timeouts.Configure(timeouts.Config{
		Store:  appCfg.TimeoutStore,
		Verify: appCfg.TimeoutVerify,
		Mail:   appCfg.TimeoutMail,
	})

	if appCfg.SeedFile == "" {
		return nil
	}
	f, err := seed.Read(appCfg.SeedFile)
	if err != nil {
		logger.Error("seed file unreadable", zap.String("path", appCfg.SeedFile), zap.Error(err))
		return err
	}
	if err := seed.Apply(ctx, f, linkstore.New(deps.KV), flagstore.New(deps.KV)); err != nil {
		logger.Error("seed apply failed", zap.Error(err))
		return err
	}
	logger.Info("seed applied",
		zap.String("path", appCfg.SeedFile),
		zap.Int("links", len(f.Links)),
		zap.Int("flags", len(f.Flags)))
	return nil
}
