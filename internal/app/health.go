package app

import (
	"time"

	"github.com/YoshitsuguKoike/tasktrack/internal/buildinfo"
)

// Health represents the liveness payload served by the API
type Health struct {
	Status  string `json:"status"`
	TS      string `json:"ts"`
	Version string `json:"version"`
}

// CurrentHealth reports the process as alive at now
func CurrentHealth(now time.Time) Health {
	return Health{
		Status:  "ok",
		TS:      now.UTC().Format(time.RFC3339Nano),
		Version: buildinfo.GetVersion(),
	}
}
