// Package syncx is the background push engine: trackers persist the set of
// records awaiting upload, the scheduler runs at most one push job per entity
// type at a time, and workers walk a batch of pending ids through the API.
package syncx

import (
	"context"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/dkazakov/fieldsale/internal/logging"
)

// Outcome is a job's terminal report for one batch attempt.
type Outcome int

const (
	// OutcomeSuccess means every item in the batch was resolved.
	OutcomeSuccess Outcome = iota
	// OutcomeRetry means at least one item failed; the scheduler re-runs the
	// job after a backoff delay.
	OutcomeRetry
)

// Job is one schedulable unit of background work. Jobs sharing a Name occupy
// the same slot: submitting while a job with that name is queued replaces the
// queued one instead of stacking behind it.
type Job struct {
	Name string
	Run  func(ctx context.Context) Outcome
}

type slot struct {
	running bool
	queued  *Job
}

// Scheduler runs jobs with at-most-one-in-flight semantics per name and
// retries OutcomeRetry with exponential backoff. While the connectivity check
// reports offline, attempts are held back rather than burned.
type Scheduler struct {
	online func() bool
	log    logging.Logger

	mu    sync.Mutex
	slots map[string]*slot

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	// test seams
	newBackoff  func() backoff.BackOff
	offlineWait time.Duration
}

// NewScheduler returns a scheduler gated by the online check.
func NewScheduler(online func() bool, log logging.Logger) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		online:      online,
		log:         log,
		slots:       make(map[string]*slot),
		ctx:         ctx,
		cancel:      cancel,
		newBackoff:  defaultBackoff,
		offlineWait: time.Second,
	}
}

func defaultBackoff() backoff.BackOff {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = time.Second
	bo.MaxInterval = time.Minute
	bo.MaxElapsedTime = 0 // keep retrying until the job reports success
	return bo
}

// Submit hands the job to its slot. If the slot is idle the job starts
// immediately on a scheduler goroutine; if a job of the same name is already
// running, the new one is parked as the slot's single queued follow-up,
// overwriting any previously queued job.
func (s *Scheduler) Submit(job Job) {
	s.mu.Lock()
	sl, ok := s.slots[job.Name]
	if !ok {
		sl = &slot{}
		s.slots[job.Name] = sl
	}
	if sl.running {
		sl.queued = &job
		s.mu.Unlock()
		s.log.Debug(s.ctx, "job queued, replacing earlier submission", "job", job.Name)
		return
	}
	sl.running = true
	s.mu.Unlock()

	s.wg.Add(1)
	go s.runSlot(job)
}

func (s *Scheduler) runSlot(job Job) {
	defer s.wg.Done()
	bo := s.newBackoff()

	for {
		if s.ctx.Err() != nil {
			return
		}

		// a fresher submission supersedes whatever we were retrying
		if next := s.takeQueued(job.Name); next != nil {
			job = *next
			bo.Reset()
		}

		if !s.online() {
			if !s.sleep(s.offlineWait) {
				return
			}
			continue
		}

		if job.Run(s.ctx) == OutcomeSuccess {
			s.mu.Lock()
			sl := s.slots[job.Name]
			if sl.queued != nil {
				job = *sl.queued
				sl.queued = nil
				s.mu.Unlock()
				bo.Reset()
				continue
			}
			sl.running = false
			s.mu.Unlock()
			return
		}

		delay := bo.NextBackOff()
		if delay == backoff.Stop {
			delay = time.Minute
		}
		s.log.Info(s.ctx, "job incomplete, retrying", "job", job.Name, "delay", delay)
		if !s.sleep(delay) {
			return
		}
	}
}

func (s *Scheduler) takeQueued(name string) *Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	sl := s.slots[name]
	if sl == nil || sl.queued == nil {
		return nil
	}
	next := sl.queued
	sl.queued = nil
	return next
}

func (s *Scheduler) sleep(d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return true
	case <-s.ctx.Done():
		return false
	}
}

// Close cancels in-flight jobs and waits for slot goroutines to drain.
func (s *Scheduler) Close() {
	s.cancel()
	s.wg.Wait()
}
