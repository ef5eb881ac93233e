package database

import (
	"context"
	"fmt"

	"work-advisor/internal/common/config"
)

// KeyValue is the storage port shared by every backend in this package.
type KeyValue interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Ping(ctx context.Context) error
	Close() error
}

// OpenKeyValue connects the backend selected by storage.driver and verifies it answers.
func OpenKeyValue(ctx context.Context, cfg *config.Config) (KeyValue, error) {
	var (
		kv  KeyValue
		err error
	)

	switch cfg.Storage.Driver {
	case config.StorageDriverRedis, "":
		kv, err = NewRedis(cfg.Database.Redis)
	case config.StorageDriverPostgres:
		var pg *PostgresClient
		pg, err = NewPostgres(cfg.Database.Postgres)
		if err == nil {
			if err = pg.EnsureSchema(ctx); err != nil {
				pg.Close()
			}
		}
		kv = pg
	case config.StorageDriverElasticsearch:
		kv, err = NewElasticsearch(cfg.Database.Elasticsearch)
	case config.StorageDriverMemory:
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown storage driver: %s", cfg.Storage.Driver)
	}
	if err != nil {
		return nil, err
	}

	if err := kv.Ping(ctx); err != nil {
		kv.Close()
		return nil, err
	}
	return kv, nil
}
