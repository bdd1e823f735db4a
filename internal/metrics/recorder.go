package metrics

import "time"

// ResultLabel enumerates artifact write results for counters.
type ResultLabel string

const (
	ResultWritten ResultLabel = "written"
	ResultSkipped ResultLabel = "skipped"
	ResultFailed  ResultLabel = "failed"
)

// Artifact kinds.
const (
	KindLanding = "landing"
	KindFolder  = "folder"
	KindModel   = "model"
	KindModule  = "module"
	KindLicense = "license"
	KindPage    = "page"
	KindRaw     = "raw"
)

// BuildOutcomeLabel is the final status of a synchronization or publish run.
type BuildOutcomeLabel string

const (
	BuildOutcomeSuccess BuildOutcomeLabel = "success"
	BuildOutcomeWarning BuildOutcomeLabel = "warning"
	BuildOutcomeFailed  BuildOutcomeLabel = "failed"
)

// Recorder defines observability hooks for generator runs. Implementations
// may forward to Prometheus or a test double.
type Recorder interface {
	IncArtifact(kind string, result ResultLabel)
	IncManifest(changed bool)
	ObserveBuildDuration(d time.Duration)
	IncBuildOutcome(outcome BuildOutcomeLabel)
}

// NoopRecorder is a Recorder that does nothing (default when metrics not configured).
type NoopRecorder struct{}

func (NoopRecorder) IncArtifact(string, ResultLabel)    {}
func (NoopRecorder) IncManifest(bool)                   {}
func (NoopRecorder) ObserveBuildDuration(time.Duration) {}
func (NoopRecorder) IncBuildOutcome(BuildOutcomeLabel)  {}

// OrNoop returns r, or a NoopRecorder when r is nil.
func OrNoop(r Recorder) Recorder {
	if r == nil {
		return NoopRecorder{}
	}
	return r
}
