// Package metrics records build observability data.
//
// Components receive a Recorder through dependency injection and default to
// NoopRecorder, so metrics cost nothing unless configured:
//
//	recorder := metrics.NewPrometheusRecorder(registry)
//	orch := orchestrator.New(deps, orchestrator.WithRecorder(recorder))
//
// hotbuild is a short-lived process, so the Prometheus registry is not served
// over HTTP. WriteTextfile dumps it in the text exposition format for the
// node_exporter textfile collector instead.
package metrics
