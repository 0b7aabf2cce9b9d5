package prometheus

import (
	"context"
	"sync"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"

	"github.com/Swind/go-async-core/queued"
)

// SchedulerSnapshotProvider provides current scheduler stats snapshots.
type SchedulerSnapshotProvider interface {
	Stats() queued.Stats
}

// SnapshotPoller periodically exports scheduler Stats() snapshots into Prometheus gauges.
type SnapshotPoller struct {
	interval time.Duration

	schedulersMu sync.RWMutex
	schedulers   map[string]SchedulerSnapshotProvider

	outstanding *prom.GaugeVec
	timers      *prom.GaugeVec
	offloads    *prom.GaugeVec
	bursts      *prom.GaugeVec
	completed   *prom.GaugeVec
	panicked    *prom.GaugeVec
	running     *prom.GaugeVec
	stopped     *prom.GaugeVec

	stateMu sync.Mutex
	active  bool
	cancel  context.CancelFunc
	done    chan struct{}
}

// NewSnapshotPoller creates a snapshot poller and registers its collectors.
func NewSnapshotPoller(reg prom.Registerer, interval time.Duration) (*SnapshotPoller, error) {
	if reg == nil {
		reg = prom.DefaultRegisterer
	}
	if interval <= 0 {
		interval = time.Second
	}

	gauge := func(name, help string) *prom.GaugeVec {
		return prom.NewGaugeVec(prom.GaugeOpts{
			Namespace: "asynccore",
			Subsystem: "scheduler",
			Name:      name,
			Help:      help,
		}, []string{"scheduler", "id"})
	}

	p := &SnapshotPoller{
		interval:    interval,
		schedulers:  make(map[string]SchedulerSnapshotProvider),
		outstanding: gauge("outstanding", "Outstanding tasks per scheduler."),
		timers:      gauge("timers", "Registered sleep deadlines per scheduler."),
		offloads:    gauge("offloads", "Offloaded blocking calls in flight per scheduler."),
		bursts:      gauge("bursts_total", "Burst count snapshot per scheduler."),
		completed:   gauge("completed_total", "Completed task count snapshot per scheduler."),
		panicked:    gauge("panicked_total", "Panicked task count snapshot per scheduler."),
		running:     gauge("running", "Scheduler running state (1=running, 0=idle)."),
		stopped:     gauge("stopped", "Scheduler stopped state (1=stopped, 0=open)."),
	}

	var err error
	for _, g := range []**prom.GaugeVec{
		&p.outstanding, &p.timers, &p.offloads, &p.bursts,
		&p.completed, &p.panicked, &p.running, &p.stopped,
	} {
		if *g, err = registerCollector(reg, *g); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// AddScheduler adds or replaces a scheduler snapshot provider by name.
func (p *SnapshotPoller) AddScheduler(name string, provider SchedulerSnapshotProvider) {
	if p == nil || provider == nil {
		return
	}
	name = normalizeLabel(name, "scheduler")
	p.schedulersMu.Lock()
	p.schedulers[name] = provider
	p.schedulersMu.Unlock()
}

// Start begins periodic polling; repeated calls are no-ops.
func (p *SnapshotPoller) Start(ctx context.Context) {
	if p == nil {
		return
	}

	p.stateMu.Lock()
	if p.active {
		p.stateMu.Unlock()
		return
	}
	pollCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.done = make(chan struct{})
	p.active = true
	p.stateMu.Unlock()

	go p.loop(pollCtx)
}

// Stop stops periodic polling; repeated calls are safe.
func (p *SnapshotPoller) Stop() {
	if p == nil {
		return
	}

	p.stateMu.Lock()
	if !p.active {
		p.stateMu.Unlock()
		return
	}
	cancel := p.cancel
	done := p.done
	p.stateMu.Unlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}

	p.stateMu.Lock()
	p.active = false
	p.cancel = nil
	p.done = nil
	p.stateMu.Unlock()
}

func (p *SnapshotPoller) loop(ctx context.Context) {
	defer close(p.done)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.collectOnce()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.collectOnce()
		}
	}
}

func (p *SnapshotPoller) collectOnce() {
	p.schedulersMu.RLock()
	defer p.schedulersMu.RUnlock()

	for name, provider := range p.schedulers {
		stats := provider.Stats()
		id := normalizeLabel(stats.ID, "unknown")
		p.outstanding.WithLabelValues(name, id).Set(float64(stats.Outstanding))
		p.timers.WithLabelValues(name, id).Set(float64(stats.Timers))
		p.offloads.WithLabelValues(name, id).Set(float64(stats.Offloads))
		p.bursts.WithLabelValues(name, id).Set(float64(stats.Bursts))
		p.completed.WithLabelValues(name, id).Set(float64(stats.Completed))
		p.panicked.WithLabelValues(name, id).Set(float64(stats.Panicked))
		p.running.WithLabelValues(name, id).Set(boolGauge(stats.Running))
		p.stopped.WithLabelValues(name, id).Set(boolGauge(stats.Stopped))
	}
}

func boolGauge(v bool) float64 {
	if v {
		return 1
	}
	return 0
}
