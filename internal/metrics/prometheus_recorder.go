package metrics

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	registry      *prom.Registry
	stageDuration *prom.HistogramVec
	stageResults  *prom.CounterVec
	buildDuration *prom.HistogramVec
	buildOutcome  *prom.CounterVec
	buildCounter  prom.Gauge
	lastRun       prom.Gauge
}

// NewPrometheusRecorder constructs and registers hotbuild metrics on reg
// (a fresh registry when nil).
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{registry: reg}
	pr.stageDuration = prom.NewHistogramVec(prom.HistogramOpts{
		Namespace: "hotbuild",
		Name:      "stage_duration_seconds",
		Help:      "Duration of individual build stages",
		Buckets:   prom.DefBuckets,
	}, []string{"stage"})
	pr.stageResults = prom.NewCounterVec(prom.CounterOpts{
		Namespace: "hotbuild",
		Name:      "stage_results_total",
		Help:      "Stage result counts by outcome",
	}, []string{"stage", "result"})
	pr.buildDuration = prom.NewHistogramVec(prom.HistogramOpts{
		Namespace: "hotbuild",
		Name:      "build_duration_seconds",
		Help:      "Total run duration by mode",
		Buckets:   prom.DefBuckets,
	}, []string{"mode"})
	pr.buildOutcome = prom.NewCounterVec(prom.CounterOpts{
		Namespace: "hotbuild",
		Name:      "builds_total",
		Help:      "Build runs by mode and final status",
	}, []string{"mode", "outcome"})
	pr.buildCounter = prom.NewGauge(prom.GaugeOpts{
		Namespace: "hotbuild",
		Name:      "build_counter",
		Help:      "Current debug-symbol build counter",
	})
	pr.lastRun = prom.NewGauge(prom.GaugeOpts{
		Namespace: "hotbuild",
		Name:      "last_run_timestamp_seconds",
		Help:      "Unix time of the last finished run",
	})
	reg.MustRegister(pr.stageDuration, pr.stageResults, pr.buildDuration, pr.buildOutcome, pr.buildCounter, pr.lastRun)
	return pr
}

// Registry returns the registry the metrics are registered on.
func (p *PrometheusRecorder) Registry() *prom.Registry { return p.registry }

func (p *PrometheusRecorder) ObserveStageDuration(stage string, d time.Duration) {
	if p == nil || p.stageDuration == nil {
		return
	}
	p.stageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncStageResult(stage string, result ResultLabel) {
	if p == nil || p.stageResults == nil {
		return
	}
	p.stageResults.WithLabelValues(stage, string(result)).Inc()
}

func (p *PrometheusRecorder) ObserveBuildDuration(mode string, d time.Duration) {
	if p == nil || p.buildDuration == nil {
		return
	}
	p.buildDuration.WithLabelValues(mode).Observe(d.Seconds())
	p.lastRun.SetToCurrentTime()
}

func (p *PrometheusRecorder) IncBuildOutcome(mode string, outcome ResultLabel) {
	if p == nil || p.buildOutcome == nil {
		return
	}
	p.buildOutcome.WithLabelValues(mode, string(outcome)).Inc()
}

func (p *PrometheusRecorder) SetBuildCounter(n int) {
	if p == nil || p.buildCounter == nil {
		return
	}
	p.buildCounter.Set(float64(n))
}

// WriteTextfile writes the registry to path in the text exposition format.
// The write goes through a temporary file so collectors never read a partial file.
func (p *PrometheusRecorder) WriteTextfile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("create metrics directory: %w", err)
	}
	if err := prom.WriteToTextfile(path, p.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
