package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/couchcryptid/birdflu-tracker/internal/dataset"
)

// S3Config holds connection settings for an S3-compatible bucket.
type S3Config struct {
	Endpoint  string
	Bucket    string
	AccessKey string
	SecretKey string
	Region    string
	UseSSL    bool
}

// S3Store reads objects from a MinIO/S3 bucket.
type S3Store struct {
	client *minio.Client
	bucket string
}

// NewS3Store creates a minio-go client for the configured endpoint.
func NewS3Store(cfg S3Config) (*S3Store, error) {
	if cfg.Endpoint == "" {
		return nil, errors.New("s3 endpoint is required")
	}
	if cfg.Bucket == "" {
		return nil, errors.New("s3 bucket is required")
	}

	endpoint := cfg.Endpoint
	useSSL := cfg.UseSSL
	if u, err := url.Parse(cfg.Endpoint); err == nil && u.Host != "" {
		endpoint = u.Host
		if u.Scheme == "https" {
			useSSL = true
		}
	}

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: useSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}
	return &S3Store{client: client, bucket: cfg.Bucket}, nil
}

// Open fetches an object. GetObject is lazy, so the object is stat'ed first to
// surface a missing key as dataset.ErrDatasetNotFound before any read.
func (s *S3Store) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, name, minio.GetObjectOptions{})
	if err != nil {
		return nil, classifyError(s.bucket, name, err)
	}
	if _, err := obj.Stat(); err != nil {
		obj.Close()
		return nil, classifyError(s.bucket, name, err)
	}
	return obj, nil
}

// String describes the store for logs.
func (s *S3Store) String() string {
	return "s3://" + s.bucket
}

func classifyError(bucket, name string, err error) error {
	switch minio.ToErrorResponse(err).Code {
	case "NoSuchKey", "NoSuchBucket":
		return fmt.Errorf("s3://%s/%s: %w", bucket, name, dataset.ErrDatasetNotFound)
	}
	return fmt.Errorf("s3://%s/%s: %w", bucket, name, err)
}
