package docsync

import (
	"time"

	"git.home.luguber.info/inful/autodoc/internal/metrics"
)

// Report summarizes one synchronization run.
type Report struct {
	BuildID string
	App     string
	Version string
	Started time.Time

	// Written and Skipped count artifacts; Skipped are pages left in place
	// because they already existed.
	Written          int
	Skipped          int
	ManifestsUpdated int
	// MissingDefinitions lists model folders skipped for lack of a usable definition.
	MissingDefinitions []string
	Duration           time.Duration
}

// Outcome classifies the run for metrics.
func (r *Report) Outcome() metrics.BuildOutcomeLabel {
	if len(r.MissingDefinitions) > 0 {
		return metrics.BuildOutcomeWarning
	}
	return metrics.BuildOutcomeSuccess
}
