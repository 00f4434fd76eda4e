package accrual

import (
	"context"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"lounge-pos-billing/internal/domain"
	"lounge-pos-billing/internal/logger"
)

// DefaultInterval is the live display refresh period
const DefaultInterval = time.Second

// Reading is one session's figure at a tick
type Reading struct {
	SessionID string    `json:"sessionId"`
	PCID      string    `json:"pcId"`
	At        time.Time `json:"at"`
	Accrual
}

// Sink receives the readings of every tick
type Sink func(readings []Reading)

type MonitorOption func(*Monitor)

// WithClock replaces time.Now, mostly for tests
func WithClock(clock func() time.Time) MonitorOption {
	return func(m *Monitor) { m.clock = clock }
}

func WithInterval(interval time.Duration) MonitorOption {
	return func(m *Monitor) { m.interval = interval }
}

// Monitor re-samples the clock on a fixed tick and republishes the cost of
// a snapshot of active sessions. It is scoped to one consuming view: Stop
// (or cancelling the context passed to Start) tears the schedule down, and
// replacing the snapshot replaces the schedule so no tick ever runs against
// a removed session. Ticks only redisplay; a missed tick is corrected by
// the next one.
type Monitor struct {
	mu       sync.Mutex
	cron     *cron.Cron
	entry    cron.EntryID
	sessions []domain.Session
	interval time.Duration
	clock    func() time.Time
	sink     Sink
	running  bool
	// done is closed when the current run stops
	done chan struct{}
}

func NewMonitor(sink Sink, opts ...MonitorOption) *Monitor {
	m := &Monitor{
		interval: DefaultInterval,
		clock:    time.Now,
		sink:     sink,
	}
	for _, opt := range opts {
		opt(m)
	}
	cl := logger.CronLogger()
	m.cron = cron.New(
		cron.WithLocation(time.UTC),
		cron.WithLogger(cl),
		cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
	)
	return m
}

// Start begins ticking until ctx is done or Stop is called. Each run is
// bound to its own context: cancelling the context of an earlier run never
// stops a later one.
func (m *Monitor) Start(ctx context.Context) {
	m.mu.Lock()
	if m.running {
		m.mu.Unlock()
		return
	}
	m.running = true
	done := make(chan struct{})
	m.done = done
	m.scheduleLocked()
	count := len(m.sessions)
	m.mu.Unlock()

	m.cron.Start()
	logger.Debug("Accrual monitor started", "interval", m.interval, "sessions", count)

	go func() {
		select {
		case <-ctx.Done():
			m.stop(done)
		case <-done:
		}
	}()
}

// SetSessions tears down the current schedule and starts a new one bound
// to the given snapshot
func (m *Monitor) SetSessions(sessions []domain.Session) {
	snapshot := make([]domain.Session, 0, len(sessions))
	for _, s := range sessions {
		if s.IsActive() {
			snapshot = append(snapshot, s)
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.entry != 0 {
		m.cron.Remove(m.entry)
		m.entry = 0
	}
	m.sessions = snapshot
	if m.running {
		m.scheduleLocked()
	}
}

// Stop removes the schedule and waits for a running tick to finish
func (m *Monitor) Stop() {
	m.stop(nil)
}

// stop ends the run owning done, or whatever run is current when done is nil
func (m *Monitor) stop(done chan struct{}) {
	m.mu.Lock()
	if !m.running || (done != nil && done != m.done) {
		m.mu.Unlock()
		return
	}
	m.running = false
	close(m.done)
	m.done = nil
	if m.entry != 0 {
		m.cron.Remove(m.entry)
		m.entry = 0
	}
	m.mu.Unlock()

	<-m.cron.Stop().Done()
	logger.Debug("Accrual monitor stopped")
}

// Tick computes readings for the current snapshot at the current clock
func (m *Monitor) Tick() []Reading {
	m.mu.Lock()
	sessions := m.sessions
	m.mu.Unlock()

	now := m.clock()
	readings := make([]Reading, 0, len(sessions))
	for _, s := range sessions {
		readings = append(readings, Reading{
			SessionID: s.ID,
			PCID:      s.PCID,
			At:        now,
			Accrual:   ForSession(s, now),
		})
	}
	return readings
}

func (m *Monitor) scheduleLocked() {
	if len(m.sessions) == 0 {
		return
	}
	m.entry = m.cron.Schedule(cron.Every(m.interval), cron.FuncJob(func() {
		m.sink(m.Tick())
	}))
}
