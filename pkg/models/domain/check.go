package domain

import "time"

type Outcome string

const (
	OutcomeFresh Outcome = "fresh"
	OutcomeStale Outcome = "stale"
	OutcomeError Outcome = "error"
)

// CheckResult is the evaluation of a single CheckSpec against a bucket.
type CheckResult struct {
	Bucket            string
	Prefix            string
	RecencyWindowDays int
	Cutoff            time.Time
	Outcome           Outcome
	// MatchedKey is the first object found within the window, empty unless fresh.
	MatchedKey string
	// Scanned counts listed objects, folder markers included.
	Scanned int
	Err     error
}

type AlertKind string

const (
	AlertKindStale AlertKind = "stale"
	AlertKindError AlertKind = "error"
)

// Alert is raised for every check that is not fresh.
type Alert struct {
	Kind              AlertKind
	Bucket            string
	Prefix            string
	RecencyWindowDays int
	Reason            string
}

// NewAlert maps a non-fresh result to an alert. ok is false for fresh results.
func NewAlert(res CheckResult) (Alert, bool) {
	alert := Alert{
		Bucket:            res.Bucket,
		Prefix:            res.Prefix,
		RecencyWindowDays: res.RecencyWindowDays,
	}
	switch res.Outcome {
	case OutcomeStale:
		alert.Kind = AlertKindStale
	case OutcomeError:
		alert.Kind = AlertKindError
		if res.Err != nil {
			alert.Reason = res.Err.Error()
		}
	default:
		return Alert{}, false
	}
	return alert, true
}
