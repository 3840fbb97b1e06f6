package scheduler

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/yungbote/sotfinder-backend/internal/platform/logger"
)

// TaskFunc is one scheduled unit of work.
type TaskFunc func(ctx context.Context) error

type TaskInfo struct {
	Name    string    `json:"name"`
	Spec    string    `json:"spec"`
	NextRun time.Time `json:"next_run"`
	PrevRun time.Time `json:"prev_run,omitempty"`
}

// Scheduler runs named tasks on cron specs (with a seconds field) or fixed
// intervals. A task never overlaps with itself, whether started by a tick or
// by RunNow: a run that arrives while the previous one is going is skipped.
type Scheduler struct {
	cron        *cron.Cron
	log         *logger.Logger
	taskTimeout time.Duration

	mu      sync.RWMutex
	tasks   map[string]entry
	running bool

	// one per task name, shared by cron ticks and RunNow
	inflightMu sync.Mutex
	inflight   map[string]*sync.Mutex

	// cancels in-flight task contexts on Stop
	baseCtx    context.Context
	cancelBase context.CancelFunc
}

type entry struct {
	id   cron.EntryID
	spec string
}

func New(baseLog *logger.Logger, taskTimeout time.Duration) *Scheduler {
	log := baseLog.With("component", "Scheduler")
	cl := cronLogger{log: log}
	if taskTimeout <= 0 {
		taskTimeout = 30 * time.Minute
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		cron: cron.New(
			cron.WithSeconds(),
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		log:         log,
		taskTimeout: taskTimeout,
		tasks:       map[string]entry{},
		inflight:    map[string]*sync.Mutex{},
		baseCtx:     ctx,
		cancelBase:  cancel,
	}
}

func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return
	}
	s.cron.Start()
	s.running = true
	s.log.Info("scheduler started", "tasks", len(s.tasks))
}

// Stop waits for running tasks until ctx expires, then cancels them.
func (s *Scheduler) Stop(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return
	}
	done := s.cron.Stop()
	select {
	case <-done.Done():
		s.log.Info("scheduler stopped")
	case <-ctx.Done():
		s.log.Warn("scheduler stop timed out; cancelling running tasks")
	}
	s.cancelBase()
	s.running = false
}

// AddCronTask registers task under name, replacing an existing task of the
// same name. spec uses six fields: "sec min hour dom month dow".
func (s *Scheduler) AddCronTask(name, spec string, task TaskFunc) error {
	if task == nil {
		return fmt.Errorf("task %q: nil func", name)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if old, ok := s.tasks[name]; ok {
		s.cron.Remove(old.id)
		delete(s.tasks, name)
	}
	id, err := s.cron.AddFunc(spec, func() { s.runTask(name, task) })
	if err != nil {
		return fmt.Errorf("task %q: bad schedule %q: %w", name, spec, err)
	}
	s.tasks[name] = entry{id: id, spec: spec}
	s.log.Info("added cron task", "name", name, "spec", spec)
	return nil
}

func (s *Scheduler) AddIntervalTask(name string, every time.Duration, task TaskFunc) error {
	if every <= 0 {
		return fmt.Errorf("task %q: interval must be positive", name)
	}
	return s.AddCronTask(name, "@every "+every.String(), task)
}

// RunNow executes a task on a new goroutine, outside its schedule. It is
// skipped if a run of the same name is in progress. The returned channel
// closes when the run finishes or is skipped.
func (s *Scheduler) RunNow(name string, task TaskFunc) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		s.runTask(name, task)
	}()
	return done
}

func (s *Scheduler) taskLock(name string) *sync.Mutex {
	s.inflightMu.Lock()
	defer s.inflightMu.Unlock()
	l, ok := s.inflight[name]
	if !ok {
		l = &sync.Mutex{}
		s.inflight[name] = l
	}
	return l
}

func (s *Scheduler) runTask(name string, task TaskFunc) {
	lock := s.taskLock(name)
	if !lock.TryLock() {
		s.log.Info("skipping scheduled task; previous run still in progress", "name", name)
		return
	}
	defer lock.Unlock()

	start := time.Now()
	ctx, cancel := context.WithTimeout(s.baseCtx, s.taskTimeout)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			s.log.Error("scheduled task panic", "name", name, "panic", r)
		}
	}()

	s.log.Debug("running scheduled task", "name", name)
	if err := task(ctx); err != nil {
		s.log.Error("scheduled task failed",
			"name", name,
			"error", err,
			"duration_ms", time.Since(start).Milliseconds(),
		)
		return
	}
	s.log.Debug("scheduled task completed", "name", name, "duration_ms", time.Since(start).Milliseconds())
}

func (s *Scheduler) Tasks() []TaskInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]TaskInfo, 0, len(s.tasks))
	for name, e := range s.tasks {
		ce := s.cron.Entry(e.id)
		out = append(out, TaskInfo{Name: name, Spec: e.spec, NextRun: ce.Next, PrevRun: ce.Prev})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (s *Scheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}

// cronLogger adapts the app logger to cron.Logger.
type cronLogger struct {
	log *logger.Logger
}

func (c cronLogger) Info(msg string, keysAndValues ...interface{}) {
	c.log.Debug("cron: "+msg, keysAndValues...)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	c.log.Error("cron: "+msg, append(keysAndValues, "error", err)...)
}
