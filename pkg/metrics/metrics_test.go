package metrics

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/de-tools/bucket-freshness/pkg/models/domain"
)

func TestRecorder_ObserveCheck(t *testing.T) {
	r := NewRecorder()

	r.ObserveCheck(domain.CheckResult{Bucket: "a", Outcome: domain.OutcomeFresh})
	r.ObserveCheck(domain.CheckResult{Bucket: "a", Outcome: domain.OutcomeStale})
	r.ObserveCheck(domain.CheckResult{Bucket: "a", Outcome: domain.OutcomeStale})

	assert.Equal(t, 1.0, testutil.ToFloat64(r.checksTotal.WithLabelValues("a", "fresh")))
	assert.Equal(t, 2.0, testutil.ToFloat64(r.checksTotal.WithLabelValues("a", "stale")))
}

func TestRecorder_ObserveRun(t *testing.T) {
	r := NewRecorder()
	finished := time.Date(2026, 10, 15, 8, 0, 0, 0, time.UTC)

	r.ObserveRun(2*time.Second, finished, nil)
	r.ObserveRun(time.Second, finished.Add(time.Hour), errors.New("publish failed"))

	assert.Equal(t, 1.0, testutil.ToFloat64(r.runsTotal.WithLabelValues("succeeded")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.runsTotal.WithLabelValues("failed")))
	assert.Equal(t, float64(finished.Unix()), testutil.ToFloat64(r.lastSuccessfulAt))
}

func TestRecorder_ObservePublish(t *testing.T) {
	r := NewRecorder()

	r.ObservePublish(nil)
	r.ObservePublish(errors.New("boom"))

	assert.Equal(t, 1.0, testutil.ToFloat64(r.alertsPublished))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.publishFailures))
}

func TestRecorder_NilIsNoop(t *testing.T) {
	var r *Recorder

	assert.NotPanics(t, func() {
		r.ObserveCheck(domain.CheckResult{})
		r.ObservePublish(nil)
		r.ObserveRun(time.Second, time.Now(), nil)
	})
}

func TestRecorder_Handler(t *testing.T) {
	r := NewRecorder()
	r.ObserveCheck(domain.CheckResult{Bucket: "backups", Outcome: domain.OutcomeError})

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `bucket_freshness_check_results_total{bucket="backups",outcome="error"} 1`)
}

func TestRecorder_Push(t *testing.T) {
	var path string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		path = req.URL.Path
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	r := NewRecorder()
	r.ObservePublish(nil)

	require.NoError(t, r.Push(context.Background(), srv.URL, "bucket-freshness"))
	assert.True(t, strings.HasSuffix(path, "/metrics/job/bucket-freshness"), path)
}
