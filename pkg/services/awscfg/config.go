package awscfg

import (
	"context"
	"fmt"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"

	freshnesscfg "github.com/de-tools/bucket-freshness/pkg/services/config"
)

// LoadConfig builds the shared AWS SDK config used by the S3 and SNS clients.
func LoadConfig(ctx context.Context, s *freshnesscfg.Settings) (awssdk.Config, error) {
	region := s.AWSRegion
	if region == "" {
		region = freshnesscfg.DefaultRegion
	}

	opts := []func(*config.LoadOptions) error{
		config.WithDefaultRegion(region),
	}
	if s.AWSProfile != "" {
		opts = append(opts, config.WithSharedConfigProfile(s.AWSProfile))
	}
	if s.AWSMaxAttempts > 0 {
		opts = append(opts, config.WithRetryMaxAttempts(s.AWSMaxAttempts))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return awssdk.Config{}, fmt.Errorf("unable to load AWS SDK config: %w", err)
	}
	return awsCfg, nil
}
