package alerting

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// LogPublisher writes the notification to the context logger instead of
// sending it anywhere. Used for dry runs.
type LogPublisher struct{}

func (LogPublisher) Publish(ctx context.Context, subject, body string) (string, error) {
	id := uuid.NewString()
	zerolog.Ctx(ctx).Warn().
		Str("message_id", id).
		Str("subject", subject).
		Str("body", body).
		Msg("alert (dry run)")
	return id, nil
}
