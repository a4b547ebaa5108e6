// internal/app/bootstrap/db.go
package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/dalemusser/folio/internal/app/store/kv"
	"github.com/dalemusser/folio/internal/app/system/schema"
	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// ConnectDB opens the relational store and the key-value backend.
// A failure on the second closes the first.
func ConnectDB(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) (DBDeps, error) {
	db, err := openDB(appCfg.DBDriver, appCfg.DBDSN)
	if err != nil {
		logger.Error("relational store connect failed", zap.String("driver", appCfg.DBDriver), zap.Error(err))
		return DBDeps{}, err
	}
	logger.Info("connected to relational store", zap.String("driver", appCfg.DBDriver))

	store, err := connectKV(ctx, appCfg)
	if err != nil {
		logger.Error("kv connect failed", zap.String("backend", appCfg.KVBackend), zap.Error(err))
		if sqlDB, derr := db.DB(); derr == nil {
			_ = sqlDB.Close()
		}
		return DBDeps{}, err
	}
	logger.Info("connected to kv store", zap.String("backend", appCfg.KVBackend))

	return DBDeps{DB: db, KV: store}, nil
}

func openDB(driver, dsn string) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch driver {
	case driverPostgres:
		dialector = postgres.Open(dsn)
	case driverSQLite:
		dialector = sqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("unknown db_driver %q", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if driver == driverSQLite {
		// sqlite allows a single writer
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxOpenConns(20)
		sqlDB.SetConnMaxLifetime(time.Hour)
	}
	return db, nil
}

func connectKV(ctx context.Context, appCfg AppConfig) (kv.Store, error) {
	switch appCfg.KVBackend {
	case kv.BackendRedis:
		return kv.NewRedis(ctx, kv.RedisOptions{
			Addr:     appCfg.RedisAddr,
			Password: appCfg.RedisPassword,
			DB:       appCfg.RedisDB,
		})
	case kv.BackendMongo:
		return kv.ConnectMongo(ctx, appCfg.MongoURI, appCfg.MongoDatabase)
	case kv.BackendMemory:
		return kv.NewMemory(), nil
	}
	return nil, fmt.Errorf("unknown kv_backend %q", appCfg.KVBackend)
}

// EnsureSchema migrates the relational tables and, for the Mongo backend,
// the TTL index that expires rate-limit windows.
func EnsureSchema(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	if err := schema.EnsureAll(ctx, deps.DB); err != nil {
		logger.Error("schema migration failed", zap.Error(err))
		return err
	}
	if ms, ok := deps.KV.(*kv.MongoStore); ok {
		if err := ms.EnsureIndexes(ctx); err != nil {
			logger.Error("kv index setup failed", zap.Error(err))
			return err
		}
	}
	return nil
}
