package freshness

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/de-tools/bucket-freshness/pkg/models/domain"
	"github.com/de-tools/bucket-freshness/pkg/store/objectstore"
)

// Evaluator decides whether a prefix received a recent enough object.
type Evaluator interface {
	CheckFilesUploaded(ctx context.Context, bucket, prefix string, days int) (domain.CheckResult, error)
}

type Options struct {
	Location *time.Location
	Mode     CutoffMode
	// Now defaults to time.Now.
	Now func() time.Time
}

type Checker struct {
	lister objectstore.Lister
	loc    *time.Location
	mode   CutoffMode
	now    func() time.Time
}

func NewChecker(lister objectstore.Lister, opts Options) *Checker {
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.Mode == "" {
		opts.Mode = CutoffRolling
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Checker{
		lister: lister,
		loc:    opts.Location,
		mode:   opts.Mode,
		now:    opts.Now,
	}
}

// Now returns the current time in the configured zone.
func (c *Checker) Now() time.Time {
	return c.now().In(c.loc)
}

// CheckFilesUploaded scans bucket/prefix for an object modified at or after the
// cutoff. Folder markers are ignored and an empty listing is stale. A listing
// failure yields OutcomeError together with the error.
func (c *Checker) CheckFilesUploaded(ctx context.Context, bucket, prefix string, days int) (domain.CheckResult, error) {
	res := domain.CheckResult{
		Bucket:            bucket,
		Prefix:            prefix,
		RecencyWindowDays: days,
		Cutoff:            Cutoff(c.now(), c.loc, days, c.mode),
	}

	logger := zerolog.Ctx(ctx).With().
		Str("bucket", bucket).
		Str("prefix", prefix).
		Int("timedelta_days", days).
		Time("cutoff", res.Cutoff).
		Logger()

	found := false
	err := c.lister.ListObjects(ctx, bucket, prefix, func(objects []domain.StorageObject) bool {
		for _, obj := range objects {
			res.Scanned++
			if obj.IsFolderMarker() {
				continue
			}
			if !obj.LastModified.Before(res.Cutoff) {
				res.MatchedKey = obj.Key
				found = true
				return false
			}
		}
		return true
	})

	switch {
	case err != nil:
		res.Outcome = domain.OutcomeError
		res.Err = err
		logger.Error().Err(err).Msg("failed to list objects")
		return res, err
	case found:
		res.Outcome = domain.OutcomeFresh
		logger.Info().Str("key", res.MatchedKey).Msg("found file within cutoff date")
	case res.Scanned == 0:
		res.Outcome = domain.OutcomeStale
		logger.Warn().Msg("empty directory")
	default:
		res.Outcome = domain.OutcomeStale
		logger.Warn().Int("scanned", res.Scanned).Msg("all files beyond cutoff date")
	}
	return res, nil
}
