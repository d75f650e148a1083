package storage

import (
	"fmt"

	"wardrobe-client/internal/config"
)

// Open builds the Store selected by cfg.Type.
func Open(cfg config.StorageConfig) (Store, error) {
	switch cfg.Type {
	case config.StorageMemory:
		return NewMemoryStore(), nil
	case config.StorageSQLite, "":
		return NewSQLiteStore(cfg.Path, cfg.KeyPrefix)
	case config.StorageMySQL:
		return NewMySQLStore(cfg.MySQLDSN(), cfg.KeyPrefix)
	case config.StoragePostgres:
		return NewPostgresStore(cfg.PostgresDSN(), cfg.KeyPrefix)
	case config.StorageRedis:
		return NewRedisStore(RedisConfig{
			Addr:      cfg.RedisAddress(),
			Password:  cfg.RedisPassword,
			DB:        cfg.RedisDB,
			KeyPrefix: cfg.KeyPrefix,
		})
	default:
		return nil, fmt.Errorf("unknown storage type %q", cfg.Type)
	}
}
