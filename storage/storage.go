package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/fabienng71/Rclx-sub001/config"
)

// ErrKeyNotFound is returned by Get when nothing is stored under the key.
var ErrKeyNotFound = errors.New("storage key not found")

// Storage is the key-value model every store persists through.
type Storage interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// Closer is implemented by backends holding a connection.
type Closer interface {
	Close() error
}

// Open builds the backend selected by cfg.StorageDriver.
func Open(ctx context.Context, cfg config.Config) (Storage, error) {
	var (
		s   Storage
		err error
	)
	switch strings.ToLower(cfg.StorageDriver) {
	case "memory":
		s = NewMemoryStorage()
	case "postgres":
		s, err = unwrap(OpenPostgres(ctx, cfg.DatabaseDSN))
	case "gorm-postgres":
		s, err = unwrap(OpenGormPostgres(cfg.DatabaseDSN))
	case "sqlite":
		s, err = unwrap(OpenGormSQLite(cfg.SQLitePath))
	case "redis":
		s, err = unwrap(OpenRedis(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB))
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}

// unwrap keeps a typed nil pointer from leaking out as a non-nil Storage.
func unwrap[T Storage](s T, err error) (Storage, error) {
	if err != nil {
		return nil, err
	}
	return s, nil
}

// Close releases the backend connection when it has one.
func Close(s Storage) error {
	if c, ok := s.(Closer); ok {
		return c.Close()
	}
	return nil
}
