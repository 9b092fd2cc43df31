package prometheus

import (
	"bytes"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/common/expfmt"

	cookiegate "github.com/formbridge/cookiegate"
)

type metricsSource interface {
	MetricsSnapshot() cookiegate.MetricsSnapshot
	AuditDropped() uint64
}

// PrometheusExporter serves cookiegate metrics from a private client_golang
// registry holding a single [Collector]. Every metric family is always
// present in the output, zero-valued when nothing has been recorded yet.
//
//	Docs: docs/metrics.md
type PrometheusExporter struct {
	registry *prometheus.Registry
}

// NewPrometheusExporter creates a Prometheus exporter that reads from the given [cookiegate.Engine].
//
//	Docs: docs/metrics.md
func NewPrometheusExporter(engine *cookiegate.Engine) *PrometheusExporter {
	return NewPrometheusExporterFromSource(engine)
}

// NewPrometheusExporterFromSource creates a Prometheus exporter from a
// custom metrics source.
//
//	Docs: docs/metrics.md
func NewPrometheusExporterFromSource(source metricsSource) *PrometheusExporter {
	registry := prometheus.NewRegistry()
	registry.MustRegister(NewCollectorFromSource(source))
	return &PrometheusExporter{registry: registry}
}

// Handler returns an http.Handler that serves Prometheus metrics.
//
//	Docs: docs/metrics.md
func (p *PrometheusExporter) Handler() http.Handler {
	if p == nil || p.registry == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{})
}

// Render gathers the registry once and encodes it in text exposition format.
//
//	Docs: docs/metrics.md
func (p *PrometheusExporter) Render() string {
	if p == nil || p.registry == nil {
		return ""
	}

	families, err := p.registry.Gather()
	if err != nil {
		return ""
	}

	var buf bytes.Buffer
	for _, family := range families {
		if _, err := expfmt.MetricFamilyToText(&buf, family); err != nil {
			return ""
		}
	}
	return buf.String()
}
