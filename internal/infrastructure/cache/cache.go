// Package cache ofrece un almacén clave/valor con TTL: Redis en producción, memoria en
// desarrollo y tests.
package cache

import (
	"context"
	"errors"
	"time"
)

// Cache define la interfaz del almacén.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	// Incr incrementa un contador; el TTL se fija solo al crearlo (ventana fija).
	Incr(ctx context.Context, key string, ttl time.Duration) (int64, error)
	Close() error
}

// ErrCacheMiss la clave no existe o expiró.
var ErrCacheMiss = errors.New("cache miss")

// Key arma claves con prefijo de namespace.
func Key(namespace, id string) string {
	return namespace + ":" + id
}
