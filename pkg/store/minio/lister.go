package minio

import (
	"context"
	"fmt"
	"net/url"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/de-tools/bucket-freshness/pkg/models/domain"
	"github.com/de-tools/bucket-freshness/pkg/services/config"
	"github.com/de-tools/bucket-freshness/pkg/store/objectstore"
)

const defaultPageSize = 1000

// Config holds connection settings for an S3-compatible MinIO endpoint.
type Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	UseSSL    bool
	// Region skips the bucket location lookup when set.
	Region string
}

// Lister implements objectstore.Lister on top of minio-go.
type Lister struct {
	client   *minio.Client
	pageSize int
}

func NewLister(cfg Config) (*Lister, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("minio endpoint is required")
	}
	if cfg.AccessKey == "" {
		return nil, fmt.Errorf("minio access key is required")
	}
	if cfg.SecretKey == "" {
		return nil, fmt.Errorf("minio secret key is required")
	}

	endpoint := cfg.Endpoint
	secure := cfg.UseSSL
	if u, err := url.Parse(cfg.Endpoint); err == nil && u.Host != "" {
		endpoint = u.Host
		secure = u.Scheme == "https"
	}

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: secure,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client failed: %w", err)
	}
	return &Lister{client: client, pageSize: defaultPageSize}, nil
}

func Factory(_ context.Context, settings *config.Settings) (objectstore.Lister, error) {
	return NewLister(Config{
		Endpoint:  settings.MinIOEndpoint,
		AccessKey: settings.MinIOAccessKey,
		SecretKey: settings.MinIOSecretKey,
		UseSSL:    settings.MinIOUseSSL,
		Region:    settings.AWSRegion,
	})
}

func (l *Lister) ListObjects(ctx context.Context, bucket, prefix string, fn objectstore.PageFunc) error {
	// Cancelling stops the listing goroutine inside minio-go.
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	objectCh := l.client.ListObjects(ctx, bucket, minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: true,
		MaxKeys:   l.pageSize,
	})

	page := make([]domain.StorageObject, 0, l.pageSize)
	for obj := range objectCh {
		if obj.Err != nil {
			return fmt.Errorf("failed to list minio bucket %s/%s: %w", bucket, prefix, obj.Err)
		}
		page = append(page, domain.StorageObject{Key: obj.Key, LastModified: obj.LastModified})
		if len(page) == l.pageSize {
			if !fn(page) {
				return nil
			}
			page = make([]domain.StorageObject, 0, l.pageSize)
		}
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("failed to list minio bucket %s/%s: %w", bucket, prefix, err)
	}

	fn(page)
	return nil
}
