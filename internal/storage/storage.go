// Package storage defines the key/value "local storage" every persisted record set lives in.
package storage

import "context"

// Store maps string keys to opaque values. Each Set replaces the whole value.
type Store interface {
	// Get returns the value for key or errs.ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)
	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key string, value []byte) error
	// Remove deletes key. Removing an absent key is not an error.
	Remove(ctx context.Context, key string) error
	// Close releases underlying resources.
	Close() error
}

// Driver names accepted by the application config.
const (
	DriverMemory   = "memory"
	DriverFile     = "file"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverRedis    = "redis"
)
