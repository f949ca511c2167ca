package alerting

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/sns"

	"github.com/de-tools/bucket-freshness/pkg/services/awscfg"
	"github.com/de-tools/bucket-freshness/pkg/services/config"
)

// NewPublisher builds the publisher selected by settings.Notifier.
func NewPublisher(ctx context.Context, settings *config.Settings) (Publisher, error) {
	switch settings.Notifier {
	case config.NotifierSNS:
		cfg, err := awscfg.LoadConfig(ctx, settings)
		if err != nil {
			return nil, err
		}
		return NewSNSPublisher(sns.NewFromConfig(cfg), settings.SNSTopicARN), nil
	case config.NotifierWebhook:
		return NewWebhookPublisher(settings.WebhookURL, nil), nil
	case config.NotifierLog:
		return LogPublisher{}, nil
	default:
		return nil, fmt.Errorf("unsupported notifier %q", settings.Notifier)
	}
}
