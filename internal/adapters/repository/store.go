// Package repository provides the key-value byte stores that persisted
// records are written to.
package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/okian/admitcalc/pkg/metrics"
)

// Driver names a Store implementation.
type Driver string

// Supported drivers.
const (
	DriverMemory   Driver = "memory"
	DriverFile     Driver = "file"
	DriverSQLite   Driver = "sqlite"
	DriverPostgres Driver = "postgres"
	DriverRedis    Driver = "redis"
)

// Store is a flat key-value store of opaque values.
type Store interface {
	// Get returns the value for key, or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)
	// Put creates or replaces the value for key.
	Put(ctx context.Context, key string, value []byte) error
	// Delete removes key; deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// Close releases the underlying resources.
	Close() error
}

// Open builds the store for driver, namespaces its keys with the configured
// prefix and instruments every call.
func Open(ctx context.Context, driver Driver, opts ...Option) (Store, error) {
	s := settings{
		path: defaultFilePath,
	}
	for _, opt := range opts {
		opt(&s)
	}

	var (
		store Store
		err   error
	)
	switch driver {
	case "", DriverMemory:
		driver = DriverMemory
		store = NewMemoryStore()
	case DriverFile:
		store, err = NewFileStore(s.path)
	case DriverSQLite, DriverPostgres:
		store, err = OpenSQL(ctx, driver, s.dsn)
	case DriverRedis:
		store, err = OpenRedis(ctx, s.redisAddr, s.redisDB)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedDriver, driver)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", driver, err)
	}
	if s.prefix != "" {
		store = &prefixed{Store: store, prefix: s.prefix}
	}
	return &instrumented{Store: store, driver: string(driver)}, nil
}

// prefixed namespaces every key.
type prefixed struct {
	Store
	prefix string
}

func (p *prefixed) Get(ctx context.Context, key string) ([]byte, error) {
	if key == "" {
		return nil, ErrEmptyKey
	}
	return p.Store.Get(ctx, p.prefix+key)
}

func (p *prefixed) Put(ctx context.Context, key string, value []byte) error {
	if key == "" {
		return ErrEmptyKey
	}
	return p.Store.Put(ctx, p.prefix+key, value)
}

func (p *prefixed) Delete(ctx context.Context, key string) error {
	if key == "" {
		return ErrEmptyKey
	}
	return p.Store.Delete(ctx, p.prefix+key)
}

// instrumented records per-operation latency.
type instrumented struct {
	Store
	driver string
}

func (i *instrumented) observe(op string, start time.Time) {
	metrics.RecordKVLatency(i.driver, op, float64(time.Since(start).Microseconds())/1000)
}

func (i *instrumented) Get(ctx context.Context, key string) ([]byte, error) {
	defer i.observe("get", time.Now())
	return i.Store.Get(ctx, key)
}

func (i *instrumented) Put(ctx context.Context, key string, value []byte) error {
	defer i.observe("put", time.Now())
	return i.Store.Put(ctx, key, value)
}

func (i *instrumented) Delete(ctx context.Context, key string) error {
	defer i.observe("delete", time.Now())
	return i.Store.Delete(ctx, key)
}
