package alerting

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/de-tools/bucket-freshness/pkg/models/domain"
)

var ErrPublish = errors.New("failed to publish alert")

// Publisher delivers a notification to a pre-configured destination and
// returns the message id assigned by the destination.
type Publisher interface {
	Publish(ctx context.Context, subject, body string) (string, error)
}

// Notifier batches all alerts of a run into a single publish call.
type Notifier struct {
	publisher Publisher
}

func NewNotifier(publisher Publisher) *Notifier {
	return &Notifier{publisher: publisher}
}

// Notify publishes one message describing every alert. Nothing is sent when
// alerts is empty.
func (n *Notifier) Notify(ctx context.Context, alerts []domain.Alert) (string, error) {
	if len(alerts) == 0 {
		return "", nil
	}
	logger := zerolog.Ctx(ctx)

	body, err := BuildMessage(alerts)
	if err != nil {
		return "", err
	}

	messageID, err := n.publisher.Publish(ctx, Subject, body)
	if err != nil {
		logger.Error().Err(err).Int("alerts", len(alerts)).Msg("failed to send alert")
		return "", fmt.Errorf("%w: %w", ErrPublish, err)
	}

	logger.Info().Str("message_id", messageID).Int("alerts", len(alerts)).Msg("alert sent")
	return messageID, nil
}
