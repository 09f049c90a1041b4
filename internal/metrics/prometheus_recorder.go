package metrics

import (
	"fmt"
	"strconv"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	reg              *prom.Registry
	hookDuration     *prom.HistogramVec
	hookResults      *prom.CounterVec
	manifestRewrites *prom.CounterVec
	manifestReplaced *prom.CounterVec
	publishedFiles   *prom.CounterVec
	publishedBytes   *prom.CounterVec
	smokeDuration    prom.Histogram
	smokeOutcomes    *prom.CounterVec
	lastRunTimestamp prom.Gauge
}

// NewPrometheusRecorder constructs and registers the sitehooks metrics on reg.
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{
		reg: reg,
		hookDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: "sitehooks",
			Name:      "hook_duration_seconds",
			Help:      "Duration of build hook runs",
			Buckets:   prom.DefBuckets,
		}, []string{"stage", "hook"}),
		hookResults: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "sitehooks",
			Name:      "hook_results_total",
			Help:      "Build hook results by outcome",
		}, []string{"stage", "hook", "result"}),
		manifestRewrites: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "sitehooks",
			Name:      "manifest_rewrites_total",
			Help:      "Manifest rule applications by whether the file changed",
		}, []string{"rule", "changed"}),
		manifestReplaced: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "sitehooks",
			Name:      "manifest_placeholders_replaced_total",
			Help:      "Placeholder occurrences replaced per rule",
		}, []string{"rule"}),
		publishedFiles: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "sitehooks",
			Name:      "published_files_total",
			Help:      "Files copied into the built site",
		}, []string{"kind"}),
		publishedBytes: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "sitehooks",
			Name:      "published_bytes_total",
			Help:      "Bytes copied into the built site",
		}, []string{"kind"}),
		smokeDuration: prom.NewHistogram(prom.HistogramOpts{
			Namespace: "sitehooks",
			Name:      "smoke_duration_seconds",
			Help:      "Duration of the search smoke test",
			Buckets:   []float64{1, 2, 5, 10, 20, 30, 60},
		}),
		smokeOutcomes: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "sitehooks",
			Name:      "smoke_outcomes_total",
			Help:      "Search smoke test outcomes",
		}, []string{"outcome"}),
		lastRunTimestamp: prom.NewGauge(prom.GaugeOpts{
			Namespace: "sitehooks",
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix time the metrics file was last written",
		}),
	}
	reg.MustRegister(pr.hookDuration, pr.hookResults, pr.manifestRewrites, pr.manifestReplaced,
		pr.publishedFiles, pr.publishedBytes, pr.smokeDuration, pr.smokeOutcomes, pr.lastRunTimestamp)
	return pr
}

func (p *PrometheusRecorder) ObserveHookDuration(stage, hook string, d time.Duration) {
	p.hookDuration.WithLabelValues(stage, hook).Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncHookResult(stage, hook string, result ResultLabel) {
	p.hookResults.WithLabelValues(stage, hook, string(result)).Inc()
}

func (p *PrometheusRecorder) IncManifestRewrite(rule string, changed bool, replacements int) {
	p.manifestRewrites.WithLabelValues(rule, strconv.FormatBool(changed)).Inc()
	if replacements > 0 {
		p.manifestReplaced.WithLabelValues(rule).Add(float64(replacements))
	}
}

func (p *PrometheusRecorder) AddPublished(kind string, files int, bytes int64) {
	p.publishedFiles.WithLabelValues(kind).Add(float64(files))
	p.publishedBytes.WithLabelValues(kind).Add(float64(bytes))
}

func (p *PrometheusRecorder) ObserveSmokeDuration(d time.Duration) {
	p.smokeDuration.Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncSmokeOutcome(outcome SmokeOutcome) {
	p.smokeOutcomes.WithLabelValues(string(outcome)).Inc()
}

// WriteTextfile writes the registry in text exposition format for the
// node_exporter textfile collector. The write is atomic.
func (p *PrometheusRecorder) WriteTextfile(path string) error {
	p.lastRunTimestamp.SetToCurrentTime()
	if err := prom.WriteToTextfile(path, p.reg); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
