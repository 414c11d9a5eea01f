// Package timer drives the once-per-second evaluation of an active fast.
package timer

import (
	"context"
	"sync"
	"time"
)

// DefaultInterval is the tick granularity.
const DefaultInterval = time.Second

// Tick is the state computed on each evaluation.
type Tick struct {
	Elapsed     int64 // whole seconds since start
	GoalHours   float64
	GoalReached bool
}

// Config configures a Driver.
type Config struct {
	Start     time.Time
	GoalHours float64

	// Reached marks the goal as already announced, e.g. when re-arming after a restart.
	Reached bool

	Interval time.Duration
	Now      func() time.Time

	// Ticks replaces the internal ticker when set. Used by tests.
	Ticks <-chan time.Time

	OnTick        func(Tick)
	OnGoalReached func(Tick)
}

// Evaluate computes elapsed seconds and whether the goal-reached side effect should fire.
// It fires only when the goal has been crossed and has not fired before.
func Evaluate(start, now time.Time, goalHours float64, reached bool) (elapsed int64, fire bool) {
	elapsed = max(int64(now.Sub(start)/time.Second), 0)
	if reached || goalHours <= 0 {
		return elapsed, false
	}
	return elapsed, float64(elapsed) >= goalHours*3600
}

// Driver owns a single goroutine that evaluates a fast until stopped.
// Callbacks run on that goroutine, one evaluation at a time.
type Driver struct {
	cfg Config

	mu      sync.Mutex
	goal    float64
	reached bool

	cancel   context.CancelFunc
	done     chan struct{}
	stopOnce sync.Once
}

// Start launches a driver. The first evaluation happens immediately.
// The driver stops when ctx is cancelled or Stop is called.
func Start(ctx context.Context, cfg Config) *Driver {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultInterval
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	ctx, cancel := context.WithCancel(ctx)
	d := &Driver{
		cfg:     cfg,
		goal:    cfg.GoalHours,
		reached: cfg.Reached,
		cancel:  cancel,
		done:    make(chan struct{}),
	}
	go d.run(ctx)
	return d
}

func (d *Driver) run(ctx context.Context) {
	defer close(d.done)

	ticks := d.cfg.Ticks
	if ticks == nil {
		ticker := time.NewTicker(d.cfg.Interval)
		defer ticker.Stop()
		ticks = ticker.C
	}

	d.evaluate()
	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-ticks:
			if !ok {
				return
			}
			// Stop may have raced with the tick.
			if ctx.Err() != nil {
				return
			}
			d.evaluate()
		}
	}
}

func (d *Driver) evaluate() {
	d.mu.Lock()
	elapsed, fire := Evaluate(d.cfg.Start, d.cfg.Now(), d.goal, d.reached)
	if fire {
		d.reached = true
	}
	tick := Tick{Elapsed: elapsed, GoalHours: d.goal, GoalReached: d.reached}
	d.mu.Unlock()

	if d.cfg.OnTick != nil {
		d.cfg.OnTick(tick)
	}
	if fire && d.cfg.OnGoalReached != nil {
		d.cfg.OnGoalReached(tick)
	}
}

// SetGoal changes the goal for subsequent ticks. A goal that already fired does not fire again.
func (d *Driver) SetGoal(hours float64) {
	d.mu.Lock()
	d.goal = hours
	d.mu.Unlock()
}

// Reached reports whether the goal-reached side effect has fired.
func (d *Driver) Reached() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.reached
}

// Stop cancels the driver and waits for its goroutine to exit. Safe to call more than once,
// but not from inside a callback.
func (d *Driver) Stop() {
	d.stopOnce.Do(d.cancel)
	<-d.done
}

// Done is closed once the driver's goroutine has exited.
func (d *Driver) Done() <-chan struct{} {
	return d.done
}
