package obs

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Label is a key/value pair attached to measurements.
type Label struct {
	Key   string
	Value string
}

// Meter is a very small interface for emitting counters/histograms.
// Implementations may no-op or bridge to a metrics system.
type Meter interface {
	Counter(name string, value float64, labels ...Label)
	Histogram(name string, value float64, labels ...Label)
}

// NopMeter is a Meter that discards all measurements.
type NopMeter struct{}

func (NopMeter) Counter(name string, value float64, labels ...Label)   {}
func (NopMeter) Histogram(name string, value float64, labels ...Label) {}

// OtelMeter bridges Meter to an OpenTelemetry meter. Instruments are
// created on first use and cached by name.
type OtelMeter struct {
	m        metric.Meter
	mu       sync.Mutex
	counters map[string]metric.Float64Counter
	hists    map[string]metric.Float64Histogram
}

func NewOtelMeter(m metric.Meter) *OtelMeter {
	return &OtelMeter{
		m:        m,
		counters: make(map[string]metric.Float64Counter),
		hists:    make(map[string]metric.Float64Histogram),
	}
}

func (o *OtelMeter) Counter(name string, value float64, labels ...Label) {
	o.mu.Lock()
	c, ok := o.counters[name]
	if !ok {
		var err error
		c, err = o.m.Float64Counter(name)
		if err != nil {
			o.mu.Unlock()
			return
		}
		o.counters[name] = c
	}
	o.mu.Unlock()
	c.Add(context.Background(), value, metric.WithAttributes(attrs(labels)...))
}

func (o *OtelMeter) Histogram(name string, value float64, labels ...Label) {
	o.mu.Lock()
	h, ok := o.hists[name]
	if !ok {
		var err error
		h, err = o.m.Float64Histogram(name)
		if err != nil {
			o.mu.Unlock()
			return
		}
		o.hists[name] = h
	}
	o.mu.Unlock()
	h.Record(context.Background(), value, metric.WithAttributes(attrs(labels)...))
}

func attrs(labels []Label) []attribute.KeyValue {
	if len(labels) == 0 {
		return nil
	}
	kvs := make([]attribute.KeyValue, 0, len(labels))
	for _, l := range labels {
		kvs = append(kvs, attribute.String(l.Key, l.Value))
	}
	return kvs
}
