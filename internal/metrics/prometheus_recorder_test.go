package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestPrometheusRecorder(t *testing.T) {
	reg := prom.NewRegistry()
	pr := NewPrometheusRecorder(reg)

	pr.ObserveHookDuration("post-build", "publish", 150*time.Millisecond)
	pr.IncHookResult("post-build", "publish", ResultSuccess)
	pr.IncManifestRewrite("compose", true, 2)
	pr.IncManifestRewrite("chart", false, 0)
	pr.AddPublished("tree", 3, 1024)
	pr.ObserveSmokeDuration(4 * time.Second)
	pr.IncSmokeOutcome(SmokeNotFound)

	require.InDelta(t, 2, testutil.ToFloat64(pr.manifestReplaced.WithLabelValues("compose")), 0)
	require.InDelta(t, 1, testutil.ToFloat64(pr.manifestRewrites.WithLabelValues("chart", "false")), 0)
	require.InDelta(t, 1024, testutil.ToFloat64(pr.publishedBytes.WithLabelValues("tree")), 0)
	require.InDelta(t, 1, testutil.ToFloat64(pr.smokeOutcomes.WithLabelValues("not_found")), 0)

	mfs, err := reg.Gather()
	require.NoError(t, err)
	require.NotEmpty(t, mfs)
}

func TestPrometheusRecorder_WriteTextfile(t *testing.T) {
	pr := NewPrometheusRecorder(nil)
	pr.IncSmokeOutcome(SmokeFound)

	path := filepath.Join(t.TempDir(), "sitehooks.prom")
	require.NoError(t, pr.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.True(t, strings.Contains(string(data), `sitehooks_smoke_outcomes_total{outcome="found"} 1`))
	require.Contains(t, string(data), "sitehooks_last_run_timestamp_seconds")
}

func TestOrNoop(t *testing.T) {
	require.Equal(t, NoopRecorder{}, OrNoop(nil))
	pr := NewPrometheusRecorder(nil)
	require.Same(t, pr, OrNoop(pr))
}
