package cache

import (
	"context"
	"strconv"
	"sync"
	"time"
)

// MemoryCache implementa Cache en memoria del proceso.
type MemoryCache struct {
	mu   sync.RWMutex
	data map[string]*cacheItem
	now  func() time.Time
	done chan struct{}
	once sync.Once
}

type cacheItem struct {
	value      []byte
	expiration time.Time
}

// NewMemoryCache crea el caché y arranca la limpieza periódica.
func NewMemoryCache() *MemoryCache {
	mc := newMemoryCache(time.Now)
	go mc.cleanup(time.Minute)
	return mc
}

func newMemoryCache(now func() time.Time) *MemoryCache {
	return &MemoryCache{
		data: make(map[string]*cacheItem),
		now:  now,
		done: make(chan struct{}),
	}
}

// Get devuelve el valor o ErrCacheMiss.
func (m *MemoryCache) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	item, ok := m.data[key]
	if !ok || m.now().After(item.expiration) {
		return nil, ErrCacheMiss
	}
	return item.value, nil
}

// Set guarda el valor con TTL.
func (m *MemoryCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.data[key] = &cacheItem{value: value, expiration: m.now().Add(ttl)}
	return nil
}

// Delete elimina la clave.
func (m *MemoryCache) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.data, key)
	return nil
}

// Incr incrementa el contador de forma atómica respecto de otras llamadas.
func (m *MemoryCache) Incr(_ context.Context, key string, ttl time.Duration) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	item, ok := m.data[key]
	if !ok || now.After(item.expiration) {
		m.data[key] = &cacheItem{value: []byte("1"), expiration: now.Add(ttl)}
		return 1, nil
	}
	n, err := strconv.ParseInt(string(item.value), 10, 64)
	if err != nil {
		n = 0
	}
	n++
	item.value = []byte(strconv.FormatInt(n, 10))
	return n, nil
}

// cleanup elimina periódicamente los elementos expirados.
func (m *MemoryCache) cleanup(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.mu.Lock()
			now := m.now()
			for key, item := range m.data {
				if now.After(item.expiration) {
					delete(m.data, key)
				}
			}
			m.mu.Unlock()
		case <-m.done:
			return
		}
	}
}

// Close detiene la limpieza.
func (m *MemoryCache) Close() error {
	m.once.Do(func() { close(m.done) })
	return nil
}
