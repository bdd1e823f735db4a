package metrics

import (
	"sync"
	"time"
)

// testRecorder counts calls per label.
type testRecorder struct {
	mu             sync.Mutex
	artifacts      map[string]map[ResultLabel]int
	manifests      map[bool]int
	buildDurations int
	buildOutcomes  map[BuildOutcomeLabel]int
}

func newTestRecorder() *testRecorder {
	return &testRecorder{
		artifacts:     map[string]map[ResultLabel]int{},
		manifests:     map[bool]int{},
		buildOutcomes: map[BuildOutcomeLabel]int{},
	}
}

func (t *testRecorder) IncArtifact(kind string, result ResultLabel) {
	t.mu.Lock()
	defer t.mu.Unlock()
	m, ok := t.artifacts[kind]
	if !ok {
		m = map[ResultLabel]int{}
		t.artifacts[kind] = m
	}
	m[result]++
}

func (t *testRecorder) IncManifest(changed bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.manifests[changed]++
}

func (t *testRecorder) ObserveBuildDuration(time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.buildDurations++
}

func (t *testRecorder) IncBuildOutcome(outcome BuildOutcomeLabel) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.buildOutcomes[outcome]++
}

var _ Recorder = (*testRecorder)(nil)
