package queued

import "time"

// Stats is a point-in-time snapshot of a scheduler.
type Stats struct {
	ID          string
	Name        string
	Outstanding int
	Timers      int
	Offloads    int64
	Bursts      int64
	Polls       int64
	Completed   int64
	Panicked    int64
	Rejected    int64
	Running     bool
	Stopped     bool
	LastTask    string
	LastTaskAt  time.Time
}

// Stats returns the current scheduler snapshot.
func (s *Scheduler) Stats() Stats {
	s.mu.Lock()
	outstanding := len(s.outstanding)
	timers := len(s.timers)
	s.mu.Unlock()

	stats := Stats{
		ID:          s.id,
		Name:        s.name,
		Outstanding: outstanding,
		Timers:      timers,
		Offloads:    s.offloads.Load(),
		Bursts:      s.bursts.Load(),
		Polls:       s.polls.Load(),
		Completed:   s.completed.Load(),
		Panicked:    s.panicked.Load(),
		Rejected:    s.rejected.Load(),
		Running:     s.running.Load(),
		Stopped:     s.stopped.Load(),
	}
	if last, ok := s.history.Last(); ok {
		stats.LastTask = last.Name
		stats.LastTaskAt = last.FinishedAt
	}
	return stats
}
