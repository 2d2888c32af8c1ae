// Package blob stores opaque payloads under string keys. It backs the saved
// formula list, which is rewritten wholesale on every save.
package blob

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"flaromlab/internal/config"
)

// Driver identifies a concrete blob storage backend implementation.
type Driver string

const (
	DriverFilesystem Driver = "fs"     // local filesystem (default)
	DriverS3         Driver = "s3"     // S3 / MinIO compatible
	DriverMemory     Driver = "memory" // in-memory (tests)
	DriverDatabase   Driver = "db"     // gorm table
)

// ErrNotFound is returned by Get when no payload exists under the key.
var ErrNotFound = errors.New("blob: not found")

// Store is a minimal key-value blob abstraction. Put overwrites.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, data []byte) error
	Delete(ctx context.Context, key string) (bool, error)
	Driver() Driver
}

// Open selects a Store implementation from configuration. The database handle
// is only consulted by the db driver.
func Open(ctx context.Context, cfg config.FormulaStoreConfig, db *gorm.DB) (Store, error) {
	switch Driver(cfg.Driver) {
	case DriverFilesystem, "":
		return NewFilesystem(cfg.FSRoot)
	case DriverS3:
		return NewS3(ctx, S3Config{
			Bucket:    cfg.S3.Bucket,
			Region:    cfg.S3.Region,
			Endpoint:  cfg.S3.Endpoint,
			PathStyle: cfg.S3.PathStyle,
		})
	case DriverMemory:
		return NewMemory(), nil
	case DriverDatabase:
		return NewDatabase(db)
	default:
		return nil, fmt.Errorf("unknown blob driver %s", cfg.Driver)
	}
}
