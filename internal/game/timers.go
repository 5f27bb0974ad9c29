package game

import (
	"sync"
	"time"
)

// Scheduler runs f after d and returns a function that cancels it.
type Scheduler func(d time.Duration, f func()) (stop func() bool)

// AfterFunc is the production Scheduler.
func AfterFunc(d time.Duration, f func()) func() bool {
	return time.AfterFunc(d, f).Stop
}

type TimerHooks struct {
	OnTick   func(remaining time.Duration)
	OnExpire func()
}

// Timers owns the play countdown of every game. One timer per game code;
// starting a new one replaces the old.
type Timers struct {
	mu       sync.Mutex
	now      func() time.Time
	schedule Scheduler
	tick     time.Duration
	active   map[string]*playTimer
}

type playTimer struct {
	roundID  string
	deadline time.Time
	stops    []func() bool
}

func NewTimers(now func() time.Time, schedule Scheduler, tick time.Duration) *Timers {
	if now == nil {
		now = time.Now
	}
	if schedule == nil {
		schedule = AfterFunc
	}
	return &Timers{
		now:      now,
		schedule: schedule,
		tick:     tick,
		active:   make(map[string]*playTimer),
	}
}

// Start begins a countdown of d for the round and returns its deadline.
func (t *Timers) Start(code, roundID string, d time.Duration, hooks TimerHooks) time.Time {
	deadline := t.now().Add(d)
	t.StartAt(code, roundID, deadline, hooks)
	return deadline
}

// StartAt arms the countdown for an absolute deadline. A deadline already in
// the past expires on the next scheduler turn.
func (t *Timers) StartAt(code, roundID string, deadline time.Time, hooks TimerHooks) {
	timer := &playTimer{roundID: roundID, deadline: deadline}

	t.mu.Lock()
	if existing, ok := t.active[code]; ok {
		existing.stop()
	}
	t.active[code] = timer
	wait := deadline.Sub(t.now())
	if wait < 0 {
		wait = 0
	}
	timer.stops = append(timer.stops, t.schedule(wait, func() {
		if t.finish(code, timer) && hooks.OnExpire != nil {
			hooks.OnExpire()
		}
	}))
	if t.tick > 0 && hooks.OnTick != nil && wait > t.tick {
		t.scheduleTickLocked(code, timer, hooks.OnTick)
	}
	t.mu.Unlock()
}

func (t *Timers) scheduleTickLocked(code string, timer *playTimer, onTick func(time.Duration)) {
	timer.stops = append(timer.stops, t.schedule(t.tick, func() {
		t.mu.Lock()
		if t.active[code] != timer {
			t.mu.Unlock()
			return
		}
		remaining := timer.deadline.Sub(t.now())
		if remaining > t.tick {
			t.scheduleTickLocked(code, timer, onTick)
		}
		t.mu.Unlock()
		if remaining > 0 {
			onTick(remaining)
		}
	}))
}

// finish removes timer if it is still the active one for code.
func (t *Timers) finish(code string, timer *playTimer) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.active[code] != timer {
		return false
	}
	delete(t.active, code)
	return true
}

func (t *Timers) Remaining(code string) time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	timer, ok := t.active[code]
	if !ok {
		return 0
	}
	if remaining := timer.deadline.Sub(t.now()); remaining > 0 {
		return remaining
	}
	return 0
}

func (t *Timers) IsExpired(code string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	timer, ok := t.active[code]
	if !ok {
		return false
	}
	return !t.now().Before(timer.deadline)
}

// Running reports the round a countdown is active for.
func (t *Timers) Running(code string) (string, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	timer, ok := t.active[code]
	if !ok {
		return "", false
	}
	return timer.roundID, true
}

func (t *Timers) Stop(code string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if timer, ok := t.active[code]; ok {
		timer.stop()
		delete(t.active, code)
	}
}

func (t *Timers) StopAll() {
	t.mu.Lock()
	defer t.mu.Unlock()
	for code, timer := range t.active {
		timer.stop()
		delete(t.active, code)
	}
}

func (p *playTimer) stop() {
	for _, stop := range p.stops {
		stop()
	}
	p.stops = nil
}
