// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package scheduler runs the periodic maintenance jobs: cache warming and
// event log retention.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"golang.org/x/time/rate"
)

// jobTimeout bounds a single job run.
const jobTimeout = 2 * time.Minute

// triggerInterval is the minimum spacing of manual runs of one job.
const triggerInterval = 30 * time.Second

// Errors returned by Trigger.
var (
	ErrJobNotFound   = errors.New("scheduler: job not found")
	ErrJobThrottled  = errors.New("scheduler: job triggered too recently")
	ErrJobInProgress = errors.New("scheduler: job already running")
)

// JobFunc is the body of a scheduled job.
type JobFunc func(ctx context.Context) error

// Job describes a scheduled job.
type Job struct {
	Name        string
	Description string
	Schedule    string
	Run         JobFunc
}

// JobInfo is the public view of a registered job.
type JobInfo struct {
	Name        string
	Description string
	Schedule    string
	LastRun     time.Time
	LastError   string
	NextRun     time.Time
	Running     bool
}

type registeredJob struct {
	Job
	entryID cron.EntryID
	limiter *rate.Limiter

	mu      sync.Mutex
	running bool
	lastRun time.Time
	lastErr error
}

// Scheduler handles the scheduled jobs.
type Scheduler struct {
	cron   *cron.Cron
	logger *slog.Logger

	mu   sync.RWMutex
	jobs map[string]*registeredJob
}

// New creates a new scheduler instance.
func New(logger *slog.Logger) *Scheduler {
	return &Scheduler{
		cron:   cron.New(),
		logger: logger,
		jobs:   make(map[string]*registeredJob),
	}
}

// Add registers j. The schedule uses the standard five-field cron syntax.
func (s *Scheduler) Add(j Job) error {
	if j.Name == "" || j.Run == nil {
		return fmt.Errorf("scheduler: job needs a name and a body")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.jobs[j.Name]; ok {
		return fmt.Errorf("scheduler: job %q already registered", j.Name)
	}

	rj := &registeredJob{
		Job:     j,
		limiter: rate.NewLimiter(rate.Every(triggerInterval), 1),
	}
	id, err := s.cron.AddFunc(j.Schedule, func() {
		_ = s.run(rj)
	})
	if err != nil {
		return fmt.Errorf("scheduling %s: %w", j.Name, err)
	}
	rj.entryID = id
	s.jobs[j.Name] = rj

	s.logger.Debug("registered scheduled job", "name", j.Name, "schedule", j.Schedule)
	return nil
}

// Start begins running the registered jobs.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("scheduler started", "jobs", len(s.cron.Entries()))
}

// Stop stops the scheduler and waits for running jobs to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("scheduler stopped")
}

// Jobs returns the registered jobs sorted by name.
func (s *Scheduler) Jobs() []JobInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]JobInfo, 0, len(s.jobs))
	for _, j := range s.jobs {
		entry := s.cron.Entry(j.entryID)

		j.mu.Lock()
		info := JobInfo{
			Name:        j.Name,
			Description: j.Description,
			Schedule:    j.Schedule,
			LastRun:     j.lastRun,
			NextRun:     entry.Next,
			Running:     j.running,
		}
		if j.lastErr != nil {
			info.LastError = j.lastErr.Error()
		}
		j.mu.Unlock()

		out = append(out, info)
	}

	sort.Slice(out, func(i, k int) bool { return out[i].Name < out[k].Name })
	return out
}

// Trigger runs the named job now and returns its error. Manual runs of a
// job are spaced at least triggerInterval apart.
func (s *Scheduler) Trigger(name string) error {
	s.mu.RLock()
	j, ok := s.jobs[name]
	s.mu.RUnlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrJobNotFound, name)
	}
	if !j.limiter.Allow() {
		return ErrJobThrottled
	}

	s.logger.Info("manually triggering job", "name", name)
	return s.run(j)
}

// run executes j unless a run is already in progress.
func (s *Scheduler) run(j *registeredJob) error {
	j.mu.Lock()
	if j.running {
		j.mu.Unlock()
		s.logger.Warn("skipping overlapping job run", "name", j.Name)
		return ErrJobInProgress
	}
	j.running = true
	j.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	start := time.Now()
	err := j.Run(ctx)

	j.mu.Lock()
	j.running = false
	j.lastRun = start
	j.lastErr = err
	j.mu.Unlock()

	if err != nil {
		s.logger.Error("scheduled job failed", "name", j.Name, "error", err, "duration", time.Since(start))
		return err
	}
	s.logger.Debug("scheduled job finished", "name", j.Name, "duration", time.Since(start))
	return nil
}
