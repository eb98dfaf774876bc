package config

import (
	"fmt"

	"github.com/spf13/viper"

	"github.com/Veraticus/qflow/internal/common"
	"github.com/Veraticus/qflow/internal/storage"
)

// Memory backends.
const (
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
)

// StoreConfig selects where keyword memory is kept.
type StoreConfig struct {
	Backend      string
	DatabasePath string
	Redis        storage.RedisConfig
}

// LoadStoreConfig reads memory.backend, database.path and redis.* keys.
func LoadStoreConfig() (StoreConfig, error) {
	cfg := StoreConfig{
		Backend:      viper.GetString("memory.backend"),
		DatabasePath: ExpandPath(viper.GetString("database.path")),
		Redis: storage.RedisConfig{
			Addr:     viper.GetString("redis.addr"),
			Password: viper.GetString("redis.password"),
			DB:       viper.GetInt("redis.db"),
			Prefix:   viper.GetString("redis.prefix"),
		},
	}

	if cfg.Backend == "" {
		cfg.Backend = BackendSQLite
	}
	if cfg.DatabasePath == "" {
		cfg.DatabasePath = DefaultDatabasePath()
	}

	switch cfg.Backend {
	case BackendSQLite:
	case BackendRedis:
		if cfg.Redis.Addr == "" {
			return StoreConfig{}, fmt.Errorf("%w: redis.addr is required for the redis backend", common.ErrMissingConfig)
		}
	default:
		return StoreConfig{}, fmt.Errorf("%w: unknown memory backend %q", common.ErrInvalidConfig, cfg.Backend)
	}

	return cfg, nil
}
