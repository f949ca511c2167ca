package freshness

import (
	"fmt"
	"time"
)

type CutoffMode string

const (
	// CutoffRolling subtracts the window from the current instant. The zone
	// only changes how the cutoff is rendered.
	CutoffRolling CutoffMode = "rolling"
	// CutoffDay aligns now to local midnight before subtracting the window,
	// so a window of N days accepts anything written since the start of the
	// local day N days ago. Between two zones the cutoff moves by the offset
	// difference, less 24h when the zones are on different local dates.
	CutoffDay CutoffMode = "day"
)

func ParseCutoffMode(s string) (CutoffMode, error) {
	switch CutoffMode(s) {
	case CutoffDay, CutoffRolling:
		return CutoffMode(s), nil
	case "":
		return CutoffRolling, nil
	default:
		return "", fmt.Errorf("unknown cutoff mode %q", s)
	}
}

// Cutoff returns the oldest last-modified time that still counts as fresh.
func Cutoff(now time.Time, loc *time.Location, days int, mode CutoffMode) time.Time {
	local := now.In(loc)
	if mode == CutoffDay {
		y, m, d := local.Date()
		local = time.Date(y, m, d, 0, 0, 0, 0, loc)
	}
	return local.AddDate(0, 0, -days)
}
