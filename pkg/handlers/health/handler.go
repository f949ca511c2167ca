package health

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/de-tools/bucket-freshness/pkg/services/workflow"
)

// StatusProvider exposes the state of the most recent scheduled run.
type StatusProvider interface {
	Status() workflow.Status
}

type Handler struct {
	status StatusProvider
}

func NewHandler(status StatusProvider) *Handler {
	return &Handler{status: status}
}

// Healthz reports 200 while the last run succeeded or no run happened yet,
// and 503 after a failed run.
func (h *Handler) Healthz(w http.ResponseWriter, req *http.Request) {
	st := h.status.Status()

	code := http.StatusOK
	if st.LastError != "" {
		code = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(st); err != nil {
		zerolog.Ctx(req.Context()).Error().Err(err).Msg("failed to encode health status")
	}
}
