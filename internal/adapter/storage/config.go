package storage

import (
	"fmt"

	"github.com/couchcryptid/birdflu-tracker/internal/config"
	"github.com/couchcryptid/birdflu-tracker/internal/dataset"
)

// FromConfig returns the store selected by DATA_SOURCE.
func FromConfig(cfg *config.Config) (dataset.Store, error) {
	switch cfg.DataSource {
	case config.SourceS3:
		return NewS3Store(S3Config{
			Endpoint:  cfg.S3Endpoint,
			Bucket:    cfg.S3Bucket,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
			Region:    cfg.S3Region,
			UseSSL:    cfg.S3UseSSL,
		})
	case config.SourceFile, "":
		return NewFileStore(cfg.DataDir), nil
	default:
		return nil, fmt.Errorf("unknown data source %q", cfg.DataSource)
	}
}
