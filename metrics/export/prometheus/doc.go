// Package prometheus provides Prometheus exporters for cookiegate metrics.
//
// [NewCollector] adapts engine metric snapshots into a client_golang
// prometheus.Collector for deployments that already run a registry.
// [NewPrometheusExporter] wraps that Collector in a private registry and
// exposes it as an [http.Handler] (promhttp) and a text-exposition Render.
// Counter names are prefixed cookiegate_*_total; the single histogram is
// cookiegate_auth_latency_seconds.
//
// # What this package must NOT do
//
//   - Register metrics in a global Prometheus registry — callers mount the Handler
//     or register the Collector themselves.
//   - Mutate engine state.
package prometheus
