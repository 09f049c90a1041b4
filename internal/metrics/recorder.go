package metrics

import "time"

// ResultLabel enumerates hook result categories for counters.
type ResultLabel string

const (
	ResultSuccess ResultLabel = "success"
	ResultFailed  ResultLabel = "failed"
)

// SmokeOutcome is the terminal state of a smoke run.
type SmokeOutcome string

const (
	SmokeFound    SmokeOutcome = "found"
	SmokeNotFound SmokeOutcome = "not_found"
	SmokeError    SmokeOutcome = "error"
)

// Recorder defines observability hooks for build hooks and smoke runs.
type Recorder interface {
	ObserveHookDuration(stage, hook string, d time.Duration)
	IncHookResult(stage, hook string, result ResultLabel)
	IncManifestRewrite(rule string, changed bool, replacements int)
	AddPublished(kind string, files int, bytes int64)
	ObserveSmokeDuration(d time.Duration)
	IncSmokeOutcome(outcome SmokeOutcome)
}

// NoopRecorder is a Recorder that does nothing (default when metrics not configured).
type NoopRecorder struct{}

func (NoopRecorder) ObserveHookDuration(string, string, time.Duration) {}
func (NoopRecorder) IncHookResult(string, string, ResultLabel)         {}
func (NoopRecorder) IncManifestRewrite(string, bool, int)              {}
func (NoopRecorder) AddPublished(string, int, int64)                   {}
func (NoopRecorder) ObserveSmokeDuration(time.Duration)                {}
func (NoopRecorder) IncSmokeOutcome(SmokeOutcome)                      {}

// OrNoop returns r, or NoopRecorder when r is nil.
func OrNoop(r Recorder) Recorder {
	if r == nil {
		return NoopRecorder{}
	}
	return r
}
