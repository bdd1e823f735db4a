package metrics

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrometheusRecorder(t *testing.T) {
	reg := prom.NewRegistry()
	pr := NewPrometheusRecorder(reg)
	pr.IncArtifact(KindModel, ResultWritten)
	pr.IncArtifact(KindModel, ResultWritten)
	pr.IncArtifact(KindModel, ResultSkipped)
	pr.IncManifest(true)
	pr.ObserveBuildDuration(500 * time.Millisecond)
	pr.IncBuildOutcome(BuildOutcomeSuccess)

	assert.InDelta(t, 2, testutil.ToFloat64(pr.artifacts.WithLabelValues(KindModel, string(ResultWritten))), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(pr.artifacts.WithLabelValues(KindModel, string(ResultSkipped))), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(pr.manifests.WithLabelValues("true")), 0)

	mfs, err := reg.Gather()
	require.NoError(t, err)
	assert.Len(t, mfs, 4)
}

func TestPrometheusRecorder_NilSafe(t *testing.T) {
	var pr *PrometheusRecorder
	pr.IncArtifact(KindModel, ResultWritten)
	pr.IncManifest(false)
	pr.ObserveBuildDuration(time.Second)
	pr.IncBuildOutcome(BuildOutcomeFailed)
}

func TestWriteTextfile(t *testing.T) {
	pr := NewPrometheusRecorder(nil)
	pr.IncBuildOutcome(BuildOutcomeWarning)

	path := filepath.Join(t.TempDir(), "autodoc.prom")
	require.NoError(t, pr.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `autodoc_build_outcomes_total{outcome="warning"} 1`)
}

func TestOrNoop(t *testing.T) {
	assert.Equal(t, NoopRecorder{}, OrNoop(nil))
	rec := newTestRecorder()
	assert.Same(t, rec, OrNoop(rec))
	OrNoop(rec).IncManifest(true)
	assert.Equal(t, 1, rec.manifests[true])
}
