// Package metrics records generator metrics.
//
// Components receive a Recorder and never check it for nil; NoopRecorder is
// the default. PrometheusRecorder registers its collectors on a private
// registry that the CLI exports as a node_exporter textfile after a build.
package metrics
