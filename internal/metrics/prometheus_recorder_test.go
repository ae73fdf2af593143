package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

func TestPrometheusRecorder(t *testing.T) {
	reg := prom.NewRegistry()
	pr := NewPrometheusRecorder(reg)
	pr.ObserveStageDuration("library", 150*time.Millisecond)
	pr.IncStageResult("library", ResultSuccess)
	pr.IncStageResult("executable", ResultSkipped)
	pr.ObserveBuildDuration("hot_reload", 500*time.Millisecond)
	pr.IncBuildOutcome("hot_reload", ResultSuccess)
	pr.IncBuildOutcome("hot_reload", ResultSuccess)
	pr.SetBuildCounter(6)

	if got := gatherValue(t, reg, "hotbuild_builds_total", map[string]string{"mode": "hot_reload", "outcome": "success"}); got != 2 {
		t.Fatalf("builds_total = %v, want 2", got)
	}
	if got := gatherValue(t, reg, "hotbuild_build_counter", nil); got != 6 {
		t.Fatalf("build_counter = %v, want 6", got)
	}
	if got := gatherValue(t, reg, "hotbuild_stage_results_total", map[string]string{"stage": "executable", "result": "skipped"}); got != 1 {
		t.Fatalf("stage_results_total = %v, want 1", got)
	}
}

// gatherValue returns the counter or gauge value of the series matching labels.
func gatherValue(t *testing.T, reg *prom.Registry, name string, labels map[string]string) float64 {
	t.Helper()
	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	for _, mf := range mfs {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			matched := 0
			for _, lp := range m.GetLabel() {
				if v, ok := labels[lp.GetName()]; ok && v == lp.GetValue() {
					matched++
				}
			}
			if matched != len(labels) {
				continue
			}
			if c := m.GetCounter(); c != nil {
				return c.GetValue()
			}
			return m.GetGauge().GetValue()
		}
	}
	t.Fatalf("series %s%v not found", name, labels)
	return 0
}

func TestWriteTextfile(t *testing.T) {
	pr := NewPrometheusRecorder(nil)
	pr.SetBuildCounter(3)

	path := filepath.Join(t.TempDir(), "textfile", "hotbuild.prom")
	if err := pr.WriteTextfile(path); err != nil {
		t.Fatalf("WriteTextfile: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !strings.Contains(string(data), "hotbuild_build_counter 3") {
		t.Fatalf("textfile missing counter:\n%s", data)
	}
}

func TestNilRecorderIsSafe(t *testing.T) {
	var pr *PrometheusRecorder
	pr.ObserveStageDuration("library", time.Second)
	pr.IncStageResult("library", ResultFailed)
	pr.ObserveBuildDuration("cold_start", time.Second)
	pr.IncBuildOutcome("cold_start", ResultFailed)
	pr.SetBuildCounter(1)

	var _ Recorder = NoopRecorder{}
	var _ Recorder = pr
}
