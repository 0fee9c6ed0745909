// Package store opens the key-value store that backs local mode.
package store

import (
	"context"
	"fmt"
	"io"
	"strings"

	"ncmr/internal/ncmr/local"
	"ncmr/internal/ncmr/store/badger"
	"ncmr/internal/ncmr/store/memory"
	"ncmr/internal/ncmr/store/postgres"
	redisstore "ncmr/internal/ncmr/store/redis"
	"ncmr/internal/ncmr/store/s3"
	"ncmr/internal/ncmr/store/sqlite"
	"ncmr/internal/platform/config"
	"ncmr/internal/platform/redis"
)

type Driver string

const (
	DriverMemory   Driver = "memory"
	DriverSQLite   Driver = "sqlite"
	DriverPostgres Driver = "postgres"
	DriverRedis    Driver = "redis"
	DriverBadger   Driver = "badger"
	DriverS3       Driver = "s3"
)

// Handle is an opened store together with whatever must be released when
// the process stops.
type Handle struct {
	local.KV
	Driver Driver
	closer io.Closer
}

func (h *Handle) Close() error {
	if h.closer == nil {
		return nil
	}
	return h.closer.Close()
}

// Open selects the store implementation from cfg.Driver.
func Open(ctx context.Context, cfg config.Store) (*Handle, error) {
	driver := Driver(strings.ToLower(strings.TrimSpace(cfg.Driver)))
	switch driver {
	case "", DriverMemory:
		return &Handle{KV: memory.New(), Driver: DriverMemory}, nil
	case DriverSQLite:
		s, err := sqlite.Open(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		return &Handle{KV: s, Driver: driver, closer: s}, nil
	case DriverPostgres:
		s, err := postgres.Open(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, err
		}
		return &Handle{KV: s, Driver: driver, closer: s}, nil
	case DriverRedis:
		client, err := redis.New(ctx, cfg.Redis)
		if err != nil {
			return nil, err
		}
		s := redisstore.New(client.Client, redisstore.WithKeyPrefix(cfg.Redis.KeyPrefix))
		return &Handle{KV: s, Driver: driver, closer: client}, nil
	case DriverBadger:
		s, err := badger.Open(cfg.BadgerPath)
		if err != nil {
			return nil, err
		}
		return &Handle{KV: s, Driver: driver, closer: s}, nil
	case DriverS3:
		s, err := s3.New(ctx, s3.Config{
			Bucket:    cfg.S3.Bucket,
			Region:    cfg.S3.Region,
			Endpoint:  cfg.S3.Endpoint,
			Prefix:    cfg.S3.Prefix,
			PathStyle: cfg.S3.PathStyle,
		})
		if err != nil {
			return nil, err
		}
		return &Handle{KV: s, Driver: driver}, nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
}
