package app

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/dshills/blockedit/internal/module"
	"github.com/dshills/blockedit/internal/pipeline"
)

// Metrics tracks editor activity as Prometheus collectors.
type Metrics struct {
	prepares     *prometheus.CounterVec
	rendered     *prometheus.CounterVec
	saveDuration prometheus.Histogram
	saveToolTime prometheus.Histogram
	dropped      prometheus.Counter
	saves        prometheus.Counter
}

// NewMetrics creates the collectors and registers them with reg. A nil
// reg uses a fresh private registry. Collectors already registered by
// another editor are shared.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	m := &Metrics{
		prepares: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "blockedit_module_prepare_total",
				Help: "Module preparations by outcome",
			},
			[]string{"module", "result"},
		),
		rendered: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "blockedit_rendered_blocks_total",
				Help: "Rendered blocks by kind",
			},
			[]string{"kind"},
		),
		saveDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "blockedit_save_duration_seconds",
			Help:    "Wall time of document saves",
			Buckets: prometheus.ExponentialBuckets(0.0005, 4, 8),
		}),
		saveToolTime: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "blockedit_save_tool_seconds",
			Help:    "Summed tool extraction time of saved blocks",
			Buckets: prometheus.ExponentialBuckets(0.0005, 4, 8),
		}),
		dropped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "blockedit_save_dropped_blocks_total",
			Help: "Blocks dropped from saves because they failed validation",
		}),
		saves: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "blockedit_saves_total",
			Help: "Completed document saves",
		}),
	}

	var err error
	m.prepares, err = register(reg, m.prepares)
	if err != nil {
		return nil, err
	}
	m.rendered, err = register(reg, m.rendered)
	if err != nil {
		return nil, err
	}
	m.saveDuration, err = register(reg, m.saveDuration)
	if err != nil {
		return nil, err
	}
	m.saveToolTime, err = register(reg, m.saveToolTime)
	if err != nil {
		return nil, err
	}
	m.dropped, err = register(reg, m.dropped)
	if err != nil {
		return nil, err
	}
	m.saves, err = register(reg, m.saves)
	if err != nil {
		return nil, err
	}
	return m, nil
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

// RecordPrepare counts the outcome of one module preparation.
func (m *Metrics) RecordPrepare(name module.Name, res module.Result) {
	if m == nil {
		return
	}
	m.prepares.WithLabelValues(string(name), res.Severity().String()).Inc()
}

// RecordPreparePanic counts a preparation that panicked.
func (m *Metrics) RecordPreparePanic(name module.Name) {
	if m == nil {
		return
	}
	m.prepares.WithLabelValues(string(name), "panic").Inc()
}

// RecordBlock counts one rendered block.
func (m *Metrics) RecordBlock(_ string, stubbed bool) {
	if m == nil {
		return
	}
	kind := "tool"
	if stubbed {
		kind = "stub"
	}
	m.rendered.WithLabelValues(kind).Inc()
}

// RecordSave records a completed save.
func (m *Metrics) RecordSave(stats pipeline.SaveStats, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.saves.Inc()
	m.saveDuration.Observe(elapsed.Seconds())
	m.saveToolTime.Observe(stats.ToolTime.Seconds())
	m.dropped.Add(float64(stats.Dropped))
}
