// Package metrics records job and group measurements on a Prometheus
// registry. Recording is fire-and-forget: failures are logged, never returned.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

const namespace = "foodshare"

// Emitter owns the registry and the collectors the sweeps write to.
type Emitter struct {
	registry     *prometheus.Registry
	taskDuration *prometheus.HistogramVec
	taskLastRun  *prometheus.GaugeVec
	taskRuns     *prometheus.CounterVec
	taskFields   *prometheus.CounterVec
	groupFields  *prometheus.GaugeVec
	logger       *zap.Logger
}

// New creates an emitter with a fresh registry.
func New(logger *zap.Logger) *Emitter {
	e := &Emitter{
		registry: prometheus.NewRegistry(),
		taskDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "periodic_task_duration_seconds",
			Help:      "Elapsed time of periodic task runs.",
			Buckets:   []float64{0.1, 0.5, 1, 5, 15, 60, 300, 900},
		}, []string{"task"}),
		taskLastRun: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "periodic_task_last_run_seconds",
			Help:      "Elapsed time of the latest run of a periodic task.",
		}, []string{"task"}),
		taskRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "periodic_task_runs_total",
			Help:      "Number of periodic task runs.",
		}, []string{"task"}),
		taskFields: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "periodic_task_field_total",
			Help:      "Counters reported by periodic tasks, summed over runs.",
		}, []string{"task", "field"}),
		groupFields: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "group_field",
			Help:      "Latest per-group measurement.",
		}, []string{"measurement", "group", "field"}),
		logger: logger.Named("metrics"),
	}

	e.registry.MustRegister(
		e.taskDuration, e.taskLastRun, e.taskRuns, e.taskFields, e.groupFields,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return e
}

// Registry exposes the underlying registry.
func (e *Emitter) Registry() *prometheus.Registry {
	return e.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (e *Emitter) Handler() http.Handler {
	return promhttp.HandlerFor(e.registry, promhttp.HandlerOpts{})
}

// RecordJob records one run of a periodic task with its counters.
func (e *Emitter) RecordJob(task string, elapsed time.Duration, fields map[string]float64) {
	defer e.swallow("RecordJob", task)

	seconds := elapsed.Seconds()
	e.taskDuration.WithLabelValues(task).Observe(seconds)
	e.taskLastRun.WithLabelValues(task).Set(seconds)
	e.taskRuns.WithLabelValues(task).Inc()

	for field, value := range fields {
		counter, err := e.taskFields.GetMetricWithLabelValues(task, field)
		if err != nil {
			e.logger.Warn("Dropping task field", zap.String("task", task), zap.String("field", field), zap.Error(err))
			continue
		}
		if value < 0 {
			e.logger.Warn("Dropping negative task field", zap.String("task", task), zap.String("field", field))
			continue
		}
		counter.Add(value)
	}
}

// RecordGroup sets the latest measurement of a group.
func (e *Emitter) RecordGroup(measurement string, groupID uint, fields map[string]float64) {
	defer e.swallow("RecordGroup", measurement)

	group := strconv.FormatUint(uint64(groupID), 10)
	for field, value := range fields {
		gauge, err := e.groupFields.GetMetricWithLabelValues(measurement, group, field)
		if err != nil {
			e.logger.Warn("Dropping group field", zap.String("measurement", measurement), zap.String("field", field), zap.Error(err))
			continue
		}
		gauge.Set(value)
	}
}

func (e *Emitter) swallow(op, name string) {
	if r := recover(); r != nil {
		e.logger.Warn("Metrics recording failed", zap.String("op", op), zap.String("name", name), zap.Any("panic", r))
	}
}

// Timer measures elapsed wall time.
type Timer struct {
	start time.Time
}

// StartTimer starts a timer now.
func StartTimer() Timer {
	return Timer{start: time.Now()}
}

// Elapsed returns the time since the timer started.
func (t Timer) Elapsed() time.Duration {
	return time.Since(t.start)
}
