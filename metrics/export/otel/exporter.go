package otel

import (
	"context"
	"errors"
	"fmt"

	cookiegate "github.com/formbridge/cookiegate"
	"github.com/formbridge/cookiegate/metrics/export/internaldefs"
	"go.opentelemetry.io/otel/metric"
)

var (
	ErrNilMeter  = errors.New("nil meter")
	ErrNilSource = errors.New("nil metrics source")
)

type metricsSource interface {
	MetricsSnapshot() cookiegate.MetricsSnapshot
	AuditDropped() uint64
}

// snapshotView is one gathered observation pass: counters as recorded,
// histograms already folded to cumulative form, and the audit drop count.
type snapshotView struct {
	counters   map[cookiegate.MetricID]uint64
	cumulative map[cookiegate.MetricID][8]uint64
	dropped    uint64
}

// reading pairs an instrument with the function that extracts its value from
// a snapshot view. All instruments, counter or histogram-derived, observe
// through this single shape.
type reading struct {
	instrument metric.Int64Observable
	value      func(view snapshotView) int64
}

type OTelExporter struct {
	source       metricsSource
	readings     []reading
	registration metric.Registration
}

func NewOTelExporter(meter metric.Meter, engine *cookiegate.Engine) (*OTelExporter, error) {
	return NewOTelExporterFromSource(meter, engine)
}

func NewOTelExporterFromSource(meter metric.Meter, source metricsSource) (*OTelExporter, error) {
	if meter == nil {
		return nil, ErrNilMeter
	}
	if source == nil {
		return nil, ErrNilSource
	}

	exporter := &OTelExporter{source: source}

	for _, def := range internaldefs.CounterDefs {
		id := def.ID
		ins, err := meter.Int64ObservableCounter(def.Name, metric.WithDescription(def.Help))
		if err != nil {
			return nil, fmt.Errorf("create observable counter %s: %w", def.Name, err)
		}
		exporter.readings = append(exporter.readings, reading{
			instrument: ins,
			value:      func(view snapshotView) int64 { return int64(view.counters[id]) },
		})
	}

	for _, def := range internaldefs.HistogramDefs {
		id := def.ID
		for i, suffix := range internaldefs.HistogramBoundSuffix {
			bucket := i
			ins, err := meter.Int64ObservableGauge(
				def.Name+"_bucket_le_"+suffix,
				metric.WithDescription("Cumulative histogram bucket count."),
			)
			if err != nil {
				return nil, fmt.Errorf("create histogram bucket gauge %s_%s: %w", def.Name, suffix, err)
			}
			exporter.readings = append(exporter.readings, reading{
				instrument: ins,
				value:      func(view snapshotView) int64 { return int64(view.cumulative[id][bucket]) },
			})
		}
		countIns, err := meter.Int64ObservableGauge(
			def.Name+"_count",
			metric.WithDescription("Histogram total sample count."),
		)
		if err != nil {
			return nil, fmt.Errorf("create histogram count gauge %s_count: %w", def.Name, err)
		}
		exporter.readings = append(exporter.readings, reading{
			instrument: countIns,
			value:      func(view snapshotView) int64 { return int64(view.cumulative[id][7]) },
		})
	}

	droppedIns, err := meter.Int64ObservableCounter(
		"cookiegate_audit_dropped_total",
		metric.WithDescription("Dropped audit events due to dispatcher backpressure."),
	)
	if err != nil {
		return nil, fmt.Errorf("create audit dropped counter: %w", err)
	}
	exporter.readings = append(exporter.readings, reading{
		instrument: droppedIns,
		value:      func(view snapshotView) int64 { return int64(view.dropped) },
	})

	observables := make([]metric.Observable, len(exporter.readings))
	for i, r := range exporter.readings {
		observables[i] = r.instrument
	}

	registration, err := meter.RegisterCallback(func(_ context.Context, observer metric.Observer) error {
		view := exporter.gather()
		for _, r := range exporter.readings {
			observer.ObserveInt64(r.instrument, r.value(view))
		}
		return nil
	}, observables...)
	if err != nil {
		return nil, fmt.Errorf("register callback: %w", err)
	}

	exporter.registration = registration
	return exporter, nil
}

func (e *OTelExporter) gather() snapshotView {
	snapshot := e.source.MetricsSnapshot()
	view := snapshotView{
		counters:   snapshot.Counters,
		cumulative: make(map[cookiegate.MetricID][8]uint64, len(snapshot.Histograms)),
		dropped:    e.source.AuditDropped(),
	}
	for id, raw := range snapshot.Histograms {
		view.cumulative[id] = internaldefs.CumulativeBuckets(internaldefs.NormalizeBuckets(raw))
	}
	return view
}

func (e *OTelExporter) Close() error {
	if e == nil || e.registration == nil {
		return nil
	}
	return e.registration.Unregister()
}
