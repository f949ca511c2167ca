package s3

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/de-tools/bucket-freshness/pkg/models/domain"
	"github.com/de-tools/bucket-freshness/pkg/services/awscfg"
	"github.com/de-tools/bucket-freshness/pkg/services/config"
	"github.com/de-tools/bucket-freshness/pkg/store/objectstore"
)

type Lister struct {
	client s3.ListObjectsV2APIClient
}

func NewLister(client s3.ListObjectsV2APIClient) *Lister {
	return &Lister{client: client}
}

// Factory builds an S3 lister from the shared AWS config. S3_ENDPOINT switches
// the client to path-style addressing for S3-compatible gateways.
func Factory(ctx context.Context, settings *config.Settings) (objectstore.Lister, error) {
	cfg, err := awscfg.LoadConfig(ctx, settings)
	if err != nil {
		return nil, err
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if settings.S3Endpoint != "" {
			o.BaseEndpoint = aws.String(settings.S3Endpoint)
			o.UsePathStyle = true
		}
	})
	return NewLister(client), nil
}

func (l *Lister) ListObjects(ctx context.Context, bucket, prefix string, fn objectstore.PageFunc) error {
	paginator := s3.NewListObjectsV2Paginator(l.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(bucket),
		Prefix: aws.String(prefix),
	})

	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return fmt.Errorf("failed to list s3://%s/%s: %w", bucket, prefix, err)
		}

		objects := make([]domain.StorageObject, 0, len(page.Contents))
		for _, obj := range page.Contents {
			objects = append(objects, domain.StorageObject{
				Key:          aws.ToString(obj.Key),
				LastModified: aws.ToTime(obj.LastModified),
			})
		}

		if !fn(objects) {
			return nil
		}
	}
	return nil
}
