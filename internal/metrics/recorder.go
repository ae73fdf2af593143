package metrics

import "time"

// ResultLabel enumerates stage result categories for counters.
type ResultLabel string

const (
	ResultSuccess ResultLabel = "success"
	ResultFailed  ResultLabel = "failed"
	ResultSkipped ResultLabel = "skipped"
)

// Recorder defines observability hooks for build runs and their stages.
type Recorder interface {
	ObserveStageDuration(stage string, d time.Duration)
	IncStageResult(stage string, result ResultLabel)
	ObserveBuildDuration(mode string, d time.Duration)
	IncBuildOutcome(mode string, outcome ResultLabel)
	SetBuildCounter(n int)
}

// NoopRecorder is a Recorder that does nothing (default when metrics not configured).
type NoopRecorder struct{}

func (NoopRecorder) ObserveStageDuration(string, time.Duration) {}
func (NoopRecorder) IncStageResult(string, ResultLabel)         {}
func (NoopRecorder) ObserveBuildDuration(string, time.Duration) {}
func (NoopRecorder) IncBuildOutcome(string, ResultLabel)        {}
func (NoopRecorder) SetBuildCounter(int)                        {}
