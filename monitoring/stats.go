package monitoring

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

// Stats receives merge session counters.
type Stats interface {
	SourceOpened(kind string)
	SourceRetired(kind string)
	TupleEmitted()
	SetHeapSources(n int)
	RecordError(kind string)
}

type noopStats struct{}

// NoopStats returns a Stats that records nothing.
func NoopStats() Stats { return noopStats{} }

func (noopStats) SourceOpened(string) {}
func (noopStats) SourceRetired(string) {}
func (noopStats) TupleEmitted() {}
func (noopStats) SetHeapSources(int) {}
func (noopStats) RecordError(string) {}

// PrometheusStats exports session counters as prometheus metrics.
type PrometheusStats struct {
	emitted prometheus.Counter
	opened  *prometheus.CounterVec
	retired *prometheus.CounterVec
	errors  *prometheus.CounterVec
	heap    prometheus.Gauge
}

// NewPrometheusStats creates the merger metrics and registers them with reg.
// Collectors already registered by an earlier call are reused.
func NewPrometheusStats(reg prometheus.Registerer) (*PrometheusStats, error) {
	s := &PrometheusStats{
		emitted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "merger_tuples_emitted_total",
			Help: "Total number of tuples handed out by merge sessions.",
		}),
		opened: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "merger_sources_total",
			Help: "Total number of sources accepted by merge sessions.",
		}, []string{"kind"}),
		retired: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "merger_sources_retired_total",
			Help: "Total number of sources removed from the merge heap at end of stream.",
		}, []string{"kind"}),
		errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "merger_errors_total",
			Help: "Total number of merge errors by kind.",
		}, []string{"kind"}),
		heap: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "merger_heap_sources",
			Help: "Number of sources currently in the merge heap.",
		}),
	}

	var err error
	s.emitted, err = register(reg, s.emitted)
	if err != nil {
		return nil, err
	}
	if s.opened, err = register(reg, s.opened); err != nil {
		return nil, err
	}
	if s.retired, err = register(reg, s.retired); err != nil {
		return nil, err
	}
	if s.errors, err = register(reg, s.errors); err != nil {
		return nil, err
	}
	if s.heap, err = register(reg, s.heap); err != nil {
		return nil, err
	}
	return s, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

func (s *PrometheusStats) SourceOpened(kind string) {
	s.opened.WithLabelValues(kind).Inc()
}

func (s *PrometheusStats) SourceRetired(kind string) {
	s.retired.WithLabelValues(kind).Inc()
}

func (s *PrometheusStats) TupleEmitted() {
	s.emitted.Inc()
}

func (s *PrometheusStats) SetHeapSources(n int) {
	s.heap.Set(float64(n))
}

func (s *PrometheusStats) RecordError(kind string) {
	s.errors.WithLabelValues(kind).Inc()
}
