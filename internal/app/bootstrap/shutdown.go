// internal/app/bootstrap/shutdown.go
package bootstrap

import (
	"context"
	"errors"

	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// Shutdown closes the key-value store and the relational store.
// Both are attempted; the errors are joined.
func Shutdown(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	var errs []error

	if deps.KV != nil {
		logger.Info("closing kv store")
		if err := deps.KV.Close(ctx); err != nil {
			logger.Error("kv close failed", zap.Error(err))
			errs = append(errs, err)
		}
	}

	if deps.DB != nil {
		logger.Info("closing relational store")
		sqlDB, err := deps.DB.DB()
		if err == nil {
			err = sqlDB.Close()
		}
		if err != nil {
			logger.Error("relational store close failed", zap.Error(err))
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}
