package workflow

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/de-tools/bucket-freshness/pkg/metrics"
	"github.com/de-tools/bucket-freshness/pkg/models/domain"
	"github.com/de-tools/bucket-freshness/pkg/services/alerting"
)

type mockEvaluator struct {
	mock.Mock
}

func (m *mockEvaluator) CheckFilesUploaded(ctx context.Context, bucket, prefix string, days int) (domain.CheckResult, error) {
	args := m.Called(ctx, bucket, prefix, days)
	return args.Get(0).(domain.CheckResult), args.Error(1)
}

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) Publish(ctx context.Context, subject, body string) (string, error) {
	args := m.Called(ctx, subject, body)
	return args.String(0), args.Error(1)
}

func staticConfig(cfg *domain.Configuration) ConfigLoader {
	return func(context.Context) (*domain.Configuration, error) { return cfg, nil }
}

func result(bucket, prefix string, days int, outcome domain.Outcome) domain.CheckResult {
	return domain.CheckResult{Bucket: bucket, Prefix: prefix, RecencyWindowDays: days, Outcome: outcome}
}

var threeChecks = &domain.Configuration{Buckets: []domain.BucketChecks{
	{Bucket: "db-backups", Checks: []domain.CheckSpec{
		{Prefix: "mysql/", RecencyWindowDays: 1},
		{Prefix: "postgres/", RecencyWindowDays: 1},
	}},
	{Bucket: "etl-archive", Checks: []domain.CheckSpec{
		{Prefix: "exports/", RecencyWindowDays: 7},
	}},
}}

func TestRunner_AggregatesFailuresIntoOneNotification(t *testing.T) {
	// Given
	eval := new(mockEvaluator)
	eval.On("CheckFilesUploaded", mock.Anything, "db-backups", "mysql/", 1).
		Return(result("db-backups", "mysql/", 1, domain.OutcomeStale), nil)
	eval.On("CheckFilesUploaded", mock.Anything, "db-backups", "postgres/", 1).
		Return(result("db-backups", "postgres/", 1, domain.OutcomeFresh), nil)
	eval.On("CheckFilesUploaded", mock.Anything, "etl-archive", "exports/", 7).
		Return(result("etl-archive", "exports/", 7, domain.OutcomeStale), nil)

	wantBody := "\nThis alert was sent because there are missing backup files.\n\n" +
		"bucket_name: db-backups\nPrefix: mysql/\nTimedelta Days: 1\n\n" +
		"bucket_name: etl-archive\nPrefix: exports/\nTimedelta Days: 7\n\n"
	pub := new(mockPublisher)
	pub.On("Publish", mock.Anything, alerting.Subject, wantBody).Return("msg-42", nil).Once()

	runner := NewRunner(staticConfig(threeChecks), eval, alerting.NewNotifier(pub))

	// When
	report, err := runner.Run(context.Background())

	// Then
	require.NoError(t, err)
	assert.Equal(t, "msg-42", report.MessageID)
	assert.Len(t, report.Results, 3)
	assert.Equal(t, []domain.Alert{
		{Kind: domain.AlertKindStale, Bucket: "db-backups", Prefix: "mysql/", RecencyWindowDays: 1},
		{Kind: domain.AlertKindStale, Bucket: "etl-archive", Prefix: "exports/", RecencyWindowDays: 7},
	}, report.Alerts)
	eval.AssertExpectations(t)
	pub.AssertNumberOfCalls(t, "Publish", 1)
}

func TestRunner_AllFreshPublishesNothing(t *testing.T) {
	eval := new(mockEvaluator)
	eval.On("CheckFilesUploaded", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(result("any", "any", 1, domain.OutcomeFresh), nil)
	pub := new(mockPublisher)

	report, err := NewRunner(staticConfig(threeChecks), eval, alerting.NewNotifier(pub)).Run(context.Background())

	require.NoError(t, err)
	assert.Empty(t, report.Alerts)
	assert.Empty(t, report.MessageID)
	eval.AssertNumberOfCalls(t, "CheckFilesUploaded", 3)
	pub.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything, mock.Anything)
}

func TestRunner_ConfigLoadFailureSkipsEverything(t *testing.T) {
	eval := new(mockEvaluator)
	pub := new(mockPublisher)
	loadErr := errors.New("open ./config.json: no such file or directory")
	loader := func(context.Context) (*domain.Configuration, error) { return nil, loadErr }

	report, err := NewRunner(loader, eval, alerting.NewNotifier(pub)).Run(context.Background())

	assert.Nil(t, report)
	assert.ErrorIs(t, err, ErrNoConfiguration)
	assert.ErrorIs(t, err, loadErr)
	eval.AssertNotCalled(t, "CheckFilesUploaded", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	pub.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything, mock.Anything)
}

func TestRunner_EmptyConfigurationRunsZeroChecks(t *testing.T) {
	eval := new(mockEvaluator)
	pub := new(mockPublisher)

	report, err := NewRunner(staticConfig(&domain.Configuration{}), eval, alerting.NewNotifier(pub)).Run(context.Background())

	require.NoError(t, err)
	assert.Empty(t, report.Results)
	eval.AssertNotCalled(t, "CheckFilesUploaded", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	pub.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything, mock.Anything)
}

func TestRunner_ListingErrorRaisesErrorAlert(t *testing.T) {
	listErr := errors.New("AccessDenied")
	cfg := &domain.Configuration{Buckets: []domain.BucketChecks{
		{Bucket: "locked", Checks: []domain.CheckSpec{{Prefix: "a/", RecencyWindowDays: 2}}},
	}}
	failed := result("locked", "a/", 2, domain.OutcomeError)
	failed.Err = listErr

	eval := new(mockEvaluator)
	eval.On("CheckFilesUploaded", mock.Anything, "locked", "a/", 2).Return(failed, listErr)
	pub := new(mockPublisher)
	pub.On("Publish", mock.Anything, alerting.Subject, mock.MatchedBy(func(body string) bool {
		return strings.Contains(body, "Error: AccessDenied")
	})).Return("msg-1", nil)

	report, err := NewRunner(staticConfig(cfg), eval, alerting.NewNotifier(pub)).Run(context.Background())

	require.NoError(t, err)
	require.Len(t, report.Alerts, 1)
	assert.Equal(t, domain.AlertKindError, report.Alerts[0].Kind)
	assert.Equal(t, "AccessDenied", report.Alerts[0].Reason)
	pub.AssertExpectations(t)
}

func TestRunner_PublishFailureIsReturned(t *testing.T) {
	eval := new(mockEvaluator)
	eval.On("CheckFilesUploaded", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(result("db-backups", "mysql/", 1, domain.OutcomeStale), nil)
	pub := new(mockPublisher)
	pub.On("Publish", mock.Anything, mock.Anything, mock.Anything).Return("", errors.New("throttled"))
	rec := metrics.NewRecorder()

	report, err := NewRunner(staticConfig(threeChecks), eval, alerting.NewNotifier(pub), WithMetrics(rec)).
		Run(context.Background())

	assert.ErrorIs(t, err, alerting.ErrPublish)
	require.NotNil(t, report)
	assert.Len(t, report.Alerts, 3)
	assert.Empty(t, report.MessageID)
}

func TestRunner_RecordsTimes(t *testing.T) {
	start := time.Date(2026, 10, 15, 8, 0, 0, 0, time.UTC)
	ticks := []time.Time{start, start.Add(3 * time.Second)}
	clock := func() time.Time {
		now := ticks[0]
		if len(ticks) > 1 {
			ticks = ticks[1:]
		}
		return now
	}
	pub := new(mockPublisher)

	report, err := NewRunner(staticConfig(&domain.Configuration{}), new(mockEvaluator), alerting.NewNotifier(pub), WithClock(clock)).
		Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, start, report.StartedAt)
	assert.Equal(t, 3*time.Second, report.Duration())
}

func TestRunner_CancelledContextReportsUncheckedLocations(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	eval := new(mockEvaluator)
	pub := new(mockPublisher)
	pub.On("Publish", mock.MatchedBy(func(ctx context.Context) bool { return ctx.Err() == nil }),
		alerting.Subject, mock.Anything).Return("msg-1", nil).Once()

	report, err := NewRunner(staticConfig(threeChecks), eval, alerting.NewNotifier(pub)).Run(ctx)

	assert.ErrorIs(t, err, context.Canceled)
	eval.AssertNotCalled(t, "CheckFilesUploaded", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	require.Len(t, report.Alerts, 3)
	for _, a := range report.Alerts {
		assert.Equal(t, domain.AlertKindError, a.Kind)
		assert.Contains(t, a.Reason, "not checked")
	}
	assert.Equal(t, "msg-1", report.MessageID)
	pub.AssertExpectations(t)
}

func TestRunner_DeadlineMidRunStillPublishesCollectedAlerts(t *testing.T) {
	// Given the second check blocks until the run deadline
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	eval := new(mockEvaluator)
	eval.On("CheckFilesUploaded", mock.Anything, "db-backups", "mysql/", 1).
		Return(result("db-backups", "mysql/", 1, domain.OutcomeStale), nil)
	timedOut := result("db-backups", "postgres/", 1, domain.OutcomeError)
	timedOut.Err = context.DeadlineExceeded
	eval.On("CheckFilesUploaded", mock.Anything, "db-backups", "postgres/", 1).
		Run(func(args mock.Arguments) { <-args.Get(0).(context.Context).Done() }).
		Return(timedOut, context.DeadlineExceeded)

	var body string
	pub := new(mockPublisher)
	pub.On("Publish", mock.MatchedBy(func(ctx context.Context) bool { return ctx.Err() == nil }),
		alerting.Subject, mock.Anything).
		Run(func(args mock.Arguments) { body = args.String(2) }).
		Return("msg-7", nil).Once()

	// When
	report, err := NewRunner(staticConfig(threeChecks), eval, alerting.NewNotifier(pub),
		WithPublishTimeout(time.Second)).Run(ctx)

	// Then
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	require.NotNil(t, report)
	assert.Equal(t, "msg-7", report.MessageID)
	require.Len(t, report.Alerts, 3)
	assert.Equal(t, domain.AlertKindStale, report.Alerts[0].Kind)
	assert.Equal(t, domain.AlertKindError, report.Alerts[1].Kind)
	assert.Equal(t, domain.AlertKindError, report.Alerts[2].Kind)
	assert.Equal(t, "exports/", report.Alerts[2].Prefix)
	assert.Contains(t, body, "Prefix: mysql/")
	assert.Contains(t, body, "Prefix: postgres/")
	assert.Contains(t, body, "Prefix: exports/")
	eval.AssertNotCalled(t, "CheckFilesUploaded", mock.Anything, "etl-archive", "exports/", 7)
	pub.AssertNumberOfCalls(t, "Publish", 1)
}

func TestRunner_Metrics(t *testing.T) {
	eval := new(mockEvaluator)
	eval.On("CheckFilesUploaded", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(result("db-backups", "x", 1, domain.OutcomeFresh), nil)
	rec := metrics.NewRecorder()

	_, err := NewRunner(staticConfig(threeChecks), eval, alerting.NewNotifier(new(mockPublisher)), WithMetrics(rec)).
		Run(context.Background())

	require.NoError(t, err)
	series, err := testutil.GatherAndCount(rec.Gatherer(), "bucket_freshness_check_results_total")
	require.NoError(t, err)
	assert.Equal(t, 1, series)
	runs, err := testutil.GatherAndCount(rec.Gatherer(), "bucket_freshness_run_total")
	require.NoError(t, err)
	assert.Equal(t, 1, runs)
}
