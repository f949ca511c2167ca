package domain

import "time"

// RunReport summarises a single pass over the configuration
type RunReport struct {
	StartedAt  time.Time
	FinishedAt time.Time
	Results    []CheckResult
	Alerts     []Alert
	// MessageID is set when a notification was published.
	MessageID string
}

// Count returns the number of results with the given outcome.
func (r *RunReport) Count(outcome Outcome) int {
	n := 0
	for _, res := range r.Results {
		if res.Outcome == outcome {
			n++
		}
	}
	return n
}

// StaleAlerts returns alerts raised because no recent object was found.
func (r *RunReport) StaleAlerts() []Alert {
	return filterAlerts(r.Alerts, AlertKindStale)
}

// ErrorAlerts returns alerts raised because the listing failed.
func (r *RunReport) ErrorAlerts() []Alert {
	return filterAlerts(r.Alerts, AlertKindError)
}

func filterAlerts(alerts []Alert, kind AlertKind) []Alert {
	var out []Alert
	for _, a := range alerts {
		if a.Kind == kind {
			out = append(out, a)
		}
	}
	return out
}

func (r *RunReport) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}
