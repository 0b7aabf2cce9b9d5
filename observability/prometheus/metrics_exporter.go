package prometheus

import (
	"errors"
	"fmt"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"

	"github.com/Swind/go-async-core/queued"
)

// ExporterOptions controls collector configuration.
type ExporterOptions struct {
	DurationBuckets []float64
	BurstBuckets    []float64
}

// MetricsExporter adapts queued.Metrics to Prometheus collectors.
type MetricsExporter struct {
	taskDurationSeconds  *prom.HistogramVec
	taskPanicTotal       *prom.CounterVec
	taskRejectedTotal    *prom.CounterVec
	outstandingTasks     *prom.GaugeVec
	burstDurationSeconds *prom.HistogramVec
	burstPolledTotal     *prom.CounterVec
}

var _ queued.Metrics = (*MetricsExporter)(nil)

// NewMetricsExporter creates and registers Prometheus collectors for queued.Metrics.
func NewMetricsExporter(namespace string, reg prom.Registerer, opts ExporterOptions) (*MetricsExporter, error) {
	if namespace == "" {
		namespace = "asynccore"
	}
	if reg == nil {
		reg = prom.DefaultRegisterer
	}
	durationBuckets := opts.DurationBuckets
	if len(durationBuckets) == 0 {
		durationBuckets = prom.DefBuckets
	}
	burstBuckets := opts.BurstBuckets
	if len(burstBuckets) == 0 {
		burstBuckets = prom.ExponentialBuckets(0.00001, 4, 10)
	}

	durationVec := prom.NewHistogramVec(prom.HistogramOpts{
		Namespace: namespace,
		Name:      "task_duration_seconds",
		Help:      "Time from enqueue to completion of a task, in seconds.",
		Buckets:   durationBuckets,
	}, []string{"scheduler"})
	panicVec := prom.NewCounterVec(prom.CounterOpts{
		Namespace: namespace,
		Name:      "task_panic_total",
		Help:      "Total number of task panics.",
	}, []string{"scheduler"})
	rejectedVec := prom.NewCounterVec(prom.CounterOpts{
		Namespace: namespace,
		Name:      "task_rejected_total",
		Help:      "Total number of rejection events.",
	}, []string{"scheduler", "reason"})
	outstandingVec := prom.NewGaugeVec(prom.GaugeOpts{
		Namespace: namespace,
		Name:      "outstanding_tasks",
		Help:      "Current number of outstanding tasks.",
	}, []string{"scheduler"})
	burstVec := prom.NewHistogramVec(prom.HistogramOpts{
		Namespace: namespace,
		Name:      "burst_duration_seconds",
		Help:      "Duration of one pass over the run queue, in seconds.",
		Buckets:   burstBuckets,
	}, []string{"scheduler"})
	polledVec := prom.NewCounterVec(prom.CounterOpts{
		Namespace: namespace,
		Name:      "task_polls_total",
		Help:      "Total number of task polls.",
	}, []string{"scheduler"})

	var err error
	if durationVec, err = registerCollector(reg, durationVec); err != nil {
		return nil, err
	}
	if panicVec, err = registerCollector(reg, panicVec); err != nil {
		return nil, err
	}
	if rejectedVec, err = registerCollector(reg, rejectedVec); err != nil {
		return nil, err
	}
	if outstandingVec, err = registerCollector(reg, outstandingVec); err != nil {
		return nil, err
	}
	if burstVec, err = registerCollector(reg, burstVec); err != nil {
		return nil, err
	}
	if polledVec, err = registerCollector(reg, polledVec); err != nil {
		return nil, err
	}

	return &MetricsExporter{
		taskDurationSeconds:  durationVec,
		taskPanicTotal:       panicVec,
		taskRejectedTotal:    rejectedVec,
		outstandingTasks:     outstandingVec,
		burstDurationSeconds: burstVec,
		burstPolledTotal:     polledVec,
	}, nil
}

// RecordTaskDuration records the lifetime of a finished task.
func (m *MetricsExporter) RecordTaskDuration(schedulerName string, duration time.Duration) {
	if m == nil {
		return
	}
	m.taskDurationSeconds.WithLabelValues(normalizeLabel(schedulerName, "unknown")).Observe(duration.Seconds())
}

// RecordTaskPanic records task panic events.
func (m *MetricsExporter) RecordTaskPanic(schedulerName string, panicInfo any) {
	if m == nil {
		return
	}
	m.taskPanicTotal.WithLabelValues(normalizeLabel(schedulerName, "unknown")).Inc()
}

// RecordOutstanding records the number of outstanding tasks.
func (m *MetricsExporter) RecordOutstanding(schedulerName string, outstanding int) {
	if m == nil {
		return
	}
	m.outstandingTasks.WithLabelValues(normalizeLabel(schedulerName, "unknown")).Set(float64(outstanding))
}

// RecordTaskRejected records task rejection events.
func (m *MetricsExporter) RecordTaskRejected(schedulerName string, reason string) {
	if m == nil {
		return
	}
	m.taskRejectedTotal.WithLabelValues(normalizeLabel(schedulerName, "unknown"), normalizeLabel(reason, "unknown")).Inc()
}

// RecordBurst records the duration and size of one burst.
func (m *MetricsExporter) RecordBurst(schedulerName string, polled int, duration time.Duration) {
	if m == nil {
		return
	}
	name := normalizeLabel(schedulerName, "unknown")
	m.burstDurationSeconds.WithLabelValues(name).Observe(duration.Seconds())
	m.burstPolledTotal.WithLabelValues(name).Add(float64(polled))
}

func normalizeLabel(v string, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}

func registerCollector[T prom.Collector](reg prom.Registerer, collector T) (T, error) {
	err := reg.Register(collector)
	if err == nil {
		return collector, nil
	}

	var alreadyRegisteredErr prom.AlreadyRegisteredError
	if errors.As(err, &alreadyRegisteredErr) {
		existing, ok := alreadyRegisteredErr.ExistingCollector.(T)
		if !ok {
			return collector, fmt.Errorf("collector type mismatch for %T", collector)
		}
		return existing, nil
	}

	return collector, err
}
