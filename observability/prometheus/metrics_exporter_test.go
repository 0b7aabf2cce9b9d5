package prometheus

import (
	"context"
	"testing"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Swind/go-async-core/core"
	"github.com/Swind/go-async-core/queued"
)

func TestMetricsExporter_RecordMethods(t *testing.T) {
	reg := prom.NewRegistry()
	exporter, err := NewMetricsExporter("asynccore", reg, ExporterOptions{})
	require.NoError(t, err)

	exporter.RecordTaskDuration("sched-a", 250*time.Millisecond)
	exporter.RecordTaskPanic("sched-a", "panic")
	exporter.RecordOutstanding("sched-a", 7)
	exporter.RecordTaskRejected("sched-a", queued.RejectStopped)
	exporter.RecordBurst("sched-a", 3, time.Millisecond)

	assert.Equal(t, float64(1), testutil.ToFloat64(exporter.taskPanicTotal.WithLabelValues("sched-a")))
	assert.Equal(t, float64(7), testutil.ToFloat64(exporter.outstandingTasks.WithLabelValues("sched-a")))
	assert.Equal(t, float64(1), testutil.ToFloat64(exporter.taskRejectedTotal.WithLabelValues("sched-a", "stopped")))
	assert.Equal(t, float64(3), testutil.ToFloat64(exporter.burstPolledTotal.WithLabelValues("sched-a")))

	histCount, err := histogramSampleCount(exporter.taskDurationSeconds.WithLabelValues("sched-a"))
	require.NoError(t, err)
	assert.EqualValues(t, 1, histCount)
}

func TestMetricsExporter_EmptyLabels(t *testing.T) {
	reg := prom.NewRegistry()
	exporter, err := NewMetricsExporter("", reg, ExporterOptions{})
	require.NoError(t, err)

	exporter.RecordTaskRejected("", "")

	assert.Equal(t, float64(1), testutil.ToFloat64(exporter.taskRejectedTotal.WithLabelValues("unknown", "unknown")))
}

func TestMetricsExporter_AlreadyRegisteredReuse(t *testing.T) {
	reg := prom.NewRegistry()
	first, err := NewMetricsExporter("asynccore", reg, ExporterOptions{})
	require.NoError(t, err)
	second, err := NewMetricsExporter("asynccore", reg, ExporterOptions{})
	require.NoError(t, err)

	first.RecordTaskPanic("sched-a", nil)
	second.RecordTaskPanic("sched-a", nil)

	assert.Equal(t, float64(2), testutil.ToFloat64(first.taskPanicTotal.WithLabelValues("sched-a")))
}

func TestMetricsExporter_WiredIntoScheduler(t *testing.T) {
	reg := prom.NewRegistry()
	exporter, err := NewMetricsExporter("asynccore", reg, ExporterOptions{})
	require.NoError(t, err)

	s := queued.New(
		queued.WithName("wired"),
		queued.WithLogger(queued.NewNoOpLogger()),
		queued.WithMetrics(exporter),
	)
	root := core.Lazy(func(ctx context.Context) core.Task {
		sched := core.CurrentScheduler(ctx)
		h := sched.SpawnFunc(func(context.Context) {})
		return core.Discard[core.Unit](h)
	})
	require.NoError(t, s.Run(context.Background(), root))

	histCount, err := histogramSampleCount(exporter.taskDurationSeconds.WithLabelValues("wired"))
	require.NoError(t, err)
	assert.EqualValues(t, 2, histCount)
	assert.Equal(t, float64(0), testutil.ToFloat64(exporter.outstandingTasks.WithLabelValues("wired")))
}

func histogramSampleCount(observer prom.Observer) (uint64, error) {
	collector, ok := observer.(prom.Collector)
	if !ok {
		return 0, nil
	}

	metricCh := make(chan prom.Metric, 1)
	collector.Collect(metricCh)
	close(metricCh)
	for metric := range metricCh {
		msg := &dto.Metric{}
		if err := metric.Write(msg); err != nil {
			return 0, err
		}
		if msg.Histogram != nil {
			return msg.Histogram.GetSampleCount(), nil
		}
	}
	return 0, nil
}
