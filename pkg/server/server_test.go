package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/de-tools/bucket-freshness/pkg/services/workflow"
)

type staticStatus struct {
	status workflow.Status
}

func (s staticStatus) Status() workflow.Status { return s.status }

func TestHealthz(t *testing.T) {
	tests := []struct {
		name       string
		status     workflow.Status
		wantStatus int
	}{
		{
			name:       "no run yet",
			status:     workflow.Status{},
			wantStatus: http.StatusOK,
		},
		{
			name:       "last run succeeded",
			status:     workflow.Status{Runs: 2, LastSuccessAt: time.Now()},
			wantStatus: http.StatusOK,
		},
		{
			name:       "last run failed",
			status:     workflow.Status{Runs: 1, LastError: "failed to publish alert"},
			wantStatus: http.StatusServiceUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := NewWebAPI(zerolog.Nop(), Config{
				Dependencies: Dependencies{Status: staticStatus{tt.status}},
			})
			rec := httptest.NewRecorder()

			api.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

			assert.Equal(t, tt.wantStatus, rec.Code)
			var body workflow.Status
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.status.Runs, body.Runs)
			assert.Equal(t, tt.status.LastError, body.LastError)
		})
	}
}

func TestMetricsRoute(t *testing.T) {
	metrics := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, "# metrics")
	})
	api := NewWebAPI(zerolog.Nop(), Config{
		Dependencies: Dependencies{Status: staticStatus{}, Metrics: metrics},
	})
	rec := httptest.NewRecorder()

	api.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "# metrics", rec.Body.String())
}

func TestMetricsRouteAbsentWithoutHandler(t *testing.T) {
	api := NewWebAPI(zerolog.Nop(), Config{Dependencies: Dependencies{Status: staticStatus{}}})
	rec := httptest.NewRecorder()

	api.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestStartStopsOnContextCancel(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := l.Addr().String()
	require.NoError(t, l.Close())

	api := NewWebAPI(zerolog.Nop(), Config{
		Addr:         addr,
		Dependencies: Dependencies{Status: staticStatus{}},
	})
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- api.Start(ctx) }()

	assert.Eventually(t, func() bool {
		resp, err := http.Get("http://" + addr + "/healthz")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}
