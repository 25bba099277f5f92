// Package observe provides tinyioc.Observer implementations for metrics, tracing and logging.
package observe

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"

	"github.com/andriiyaremenko/tinyioc"
)

const namespace = "tinyioc"

var _ tinyioc.Observer = new(Metrics)

// Metrics records container events on its own registry:
//   - tinyioc_phase_duration_seconds (histogram by phase and status)
//   - tinyioc_bean_instantiation_seconds (histogram by status)
//   - tinyioc_beans (gauge by phase, beans known when phase was reached)
type Metrics struct {
	registry      *prometheus.Registry
	phaseDuration *prometheus.HistogramVec
	beanDuration  *prometheus.HistogramVec
	beans         *prometheus.GaugeVec
}

func NewMetrics() (*Metrics, error) {
	registry := prometheus.NewRegistry()

	phaseDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "phase_duration_seconds",
			Help:      "Duration of container phases in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 10),
		},
		[]string{"phase", "status"},
	)

	beanDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "bean_instantiation_seconds",
			Help:      "Duration of bean constructors in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.00001, 4, 10),
		},
		[]string{"status"},
	)

	beans := prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "beans",
			Help:      "Number of beans registered when a phase completed",
		},
		[]string{"phase"},
	)

	for _, c := range []prometheus.Collector{phaseDuration, beanDuration, beans} {
		if err := registry.Register(c); err != nil {
			return nil, fmt.Errorf("register metric: %w", err)
		}
	}

	return &Metrics{
		registry:      registry,
		phaseDuration: phaseDuration,
		beanDuration:  beanDuration,
		beans:         beans,
	}, nil
}

func (m *Metrics) PhaseCompleted(e tinyioc.PhaseEvent) {
	phase := e.Phase.String()

	m.phaseDuration.WithLabelValues(phase, status(e.Err)).Observe(e.Duration().Seconds())

	if e.Err == nil {
		m.beans.WithLabelValues(phase).Set(float64(e.Beans))
	}
}

func (m *Metrics) BeanInstantiated(e tinyioc.BeanEvent) {
	m.beanDuration.WithLabelValues(status(e.Err)).Observe(e.Duration().Seconds())
}

// Returns registry metrics are recorded on.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Pushes recorded metrics to Pushgateway at url under job.
func (m *Metrics) Push(ctx context.Context, url, job string) error {
	return push.New(url, job).
		Gatherer(m.registry).
		PushContext(ctx)
}

func status(err error) string {
	if err != nil {
		return "error"
	}

	return "success"
}
