package logger

import (
	"log/slog"
	"sync"
	"time"

	"github.com/cenkalti/backoff"
)

const (
	periodicMinSleep = 2 * time.Second
	periodicMaxSleep = 365 * 24 * time.Hour // FIXME max representable
)

// StatsFunc reports a periodic statistic to l; sinceLast is how long it's
// been since this particular reporter last ran.
type StatsFunc func(l *slog.Logger, sinceLast time.Duration)

type periodicLogger struct {
	id       string
	report   StatsFunc
	interval backoff.ExponentialBackOff
	nextRun  time.Time
	lastRun  time.Time
}

// Periodic runs a set of registered StatsFuncs on their own
// exponentially-widening schedule, adapted from the teacher's own periodic
// logger runner but reporting through a *slog.Logger instead of its
// Composer.
type Periodic struct {
	base    *slog.Logger
	timer   *time.Timer
	loggers []*periodicLogger
	mu      sync.Mutex
	stop    bool
}

// NewPeriodic creates a Periodic bound to base and starts its background
// runner goroutine.
func NewPeriodic(base *slog.Logger) *Periodic {
	p := &Periodic{
		base:  base,
		timer: time.NewTimer(periodicMaxSleep),
	}
	go p.run()
	return p
}

// Close stops the background runner; no further StatsFuncs will be called.
func (p *Periodic) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stop = true
	p.timer.Stop()
	p.timer.Reset(0)
}

// Add registers f under id. It first runs after minInterval; the interval
// then triples after every run, up to maxInterval.
func (p *Periodic) Add(id string, minInterval, maxInterval time.Duration, f StatsFunc) {
	b := backoff.ExponentialBackOff{
		InitialInterval:     minInterval,
		MaxInterval:         maxInterval,
		Multiplier:          3.0,
		RandomizationFactor: 0.0,
		MaxElapsedTime:      0,
		Clock:               backoff.SystemClock,
	}
	b.Reset()

	p.mu.Lock()
	defer p.mu.Unlock()
	for _, existing := range p.loggers {
		if existing.id == id {
			p.base.Error("periodic logger already registered", "id", id)
			return
		}
	}
	added := time.Now()
	p.loggers = append(p.loggers, &periodicLogger{
		id:       id,
		report:   f,
		interval: b,
		lastRun:  added,
		nextRun:  added.Add(b.NextBackOff()),
	})
	p.resetTimer(added)
}

// Remove unregisters a StatsFunc so it is never called again.
func (p *Periodic) Remove(id string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := len(p.loggers)
	for i := 0; i < n; i++ {
		if p.loggers[i].id == id {
			p.loggers[i] = p.loggers[n-1]
			p.loggers = p.loggers[:n-1]
			return
		}
	}
	p.base.Error("no such periodic logger to remove", "id", id)
}

func (p *Periodic) run() {
	for {
		now := <-p.timer.C
		p.mu.Lock()
		if p.stop {
			p.mu.Unlock()
			return
		}
		p.runDue(periodicMinSleep, now)
		p.resetTimer(now)
		p.mu.Unlock()
	}
}

func (p *Periodic) runDue(minSleep time.Duration, started time.Time) {
	limit := started.Add(minSleep)
	for _, pl := range p.loggers {
		if limit.After(pl.nextRun) {
			pl.report(p.base, started.Sub(pl.lastRun))
			pl.lastRun = started
			next := pl.interval.NextBackOff()
			if next <= 0 {
				p.base.Warn("stopping periodic logger", "id", pl.id)
				next = periodicMaxSleep
			}
			pl.nextRun = started.Add(next)
		}
	}
}

func (p *Periodic) resetTimer(now time.Time) {
	next := now.Add(periodicMaxSleep)
	for _, pl := range p.loggers {
		if next.After(pl.nextRun) {
			next = pl.nextRun
		}
	}
	p.timer.Stop()
	p.timer.Reset(next.Sub(now))
}
