package timekeeper

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"timekeeper/internal/core/effect"
	"timekeeper/internal/core/model"
)

// EffectSink executes side effects requested by the machine.
type EffectSink interface {
	Handle(effects []effect.Effect)
}

// Config contains runtime options for Keeper.
type Config struct {
	Clock  Clock
	Sink   EffectSink
	Logger *zap.Logger
}

// Keeper drives a Machine from a single tick source and serializes every mutation.
// At most one ticker is live at a time; ticks and auto-start timers from an older
// generation are ignored once the session was paused, reset or switched.
type Keeper struct {
	mu      sync.Mutex
	machine *Machine
	options Config
	logger  *zap.Logger

	ticker       Ticker
	tickStop     chan struct{}
	tickInterval time.Duration
	tickGen      uint64
	lastTick     time.Time

	autoStart    Timer
	autoStartGen uint64

	events []chan Event
	closed bool
}

// New creates a Keeper around a fresh machine.
func New(settings model.Settings, options Config) *Keeper {
	if options.Clock == nil {
		options.Clock = SystemClock()
	}
	if options.Logger == nil {
		options.Logger = zap.NewNop()
	}
	return &Keeper{
		machine: NewMachine(settings),
		options: options,
		logger:  options.Logger,
	}
}

// Subscribe registers a new observer channel.
func (keeper *Keeper) Subscribe(buffer int) <-chan Event {
	if buffer <= 0 {
		buffer = 1
	}
	ch := make(chan Event, buffer)
	keeper.mu.Lock()
	if keeper.closed {
		close(ch)
	} else {
		keeper.events = append(keeper.events, ch)
	}
	keeper.mu.Unlock()
	return ch
}

// Snapshot returns a copy of the current session state.
func (keeper *Keeper) Snapshot() Snapshot {
	keeper.mu.Lock()
	defer keeper.mu.Unlock()
	return keeper.machine.Snapshot()
}

// Start starts the active session.
func (keeper *Keeper) Start() {
	keeper.apply("start", (*Machine).Start)
}

// Pause pauses the active session.
func (keeper *Keeper) Pause() {
	keeper.apply("pause", (*Machine).Pause)
}

// Toggle starts or pauses the active session.
func (keeper *Keeper) Toggle() {
	keeper.apply("toggle", (*Machine).Toggle)
}

// Reset restores the active session to its nominal state.
func (keeper *Keeper) Reset() {
	keeper.apply("reset", (*Machine).Reset)
}

// Skip completes the current pomodoro or breathing phase.
func (keeper *Keeper) Skip() {
	keeper.apply("skip", (*Machine).Skip)
}

// Lap records a stopwatch lap.
func (keeper *Keeper) Lap() {
	keeper.apply("lap", (*Machine).Lap)
}

// SwitchMode stops the active session and activates mode.
func (keeper *Keeper) SwitchMode(mode model.Mode) {
	keeper.apply("switch_mode", func(machine *Machine) []effect.Effect {
		return machine.SwitchMode(mode)
	})
}

// SetFocusMinutes selects the pomodoro focus length.
func (keeper *Keeper) SetFocusMinutes(minutes int) {
	keeper.apply("set_focus", func(machine *Machine) []effect.Effect {
		return machine.SetFocusMinutes(minutes)
	})
}

// SetCountdown configures the countdown length.
func (keeper *Keeper) SetCountdown(duration time.Duration) {
	keeper.apply("set_countdown", func(machine *Machine) []effect.Effect {
		return machine.SetCountdown(duration)
	})
}

// UpdateSettings applies changed settings to the machine.
func (keeper *Keeper) UpdateSettings(settings model.Settings) {
	keeper.mu.Lock()
	if keeper.closed {
		keeper.mu.Unlock()
		return
	}
	effects := keeper.machine.UpdateSettings(settings)
	snapshot := keeper.machine.Snapshot()
	keeper.mu.Unlock()

	keeper.deliver(EventStateChange, effects, snapshot, keeper.options.Clock.Now())
}

// Close stops ticking and closes observers.
func (keeper *Keeper) Close() {
	keeper.mu.Lock()
	if keeper.closed {
		keeper.mu.Unlock()
		return
	}
	keeper.settleStopwatchLocked()
	effects := keeper.machine.Pause()
	keeper.disarmLocked()
	keeper.cancelAutoStartLocked()
	keeper.closed = true
	events := keeper.events
	keeper.events = nil
	keeper.mu.Unlock()

	if len(effects) > 0 && keeper.options.Sink != nil {
		keeper.options.Sink.Handle(effects)
	}
	for _, ch := range events {
		close(ch)
	}
}

func (keeper *Keeper) apply(operation string, mutate func(*Machine) []effect.Effect) {
	keeper.applyIf(operation, nil, mutate)
}

// applyIf runs mutate under the lock unless guard reports the request as stale.
func (keeper *Keeper) applyIf(operation string, guard func() bool, mutate func(*Machine) []effect.Effect) {
	keeper.mu.Lock()
	if keeper.closed || (guard != nil && !guard()) {
		keeper.mu.Unlock()
		return
	}
	keeper.cancelAutoStartLocked()
	keeper.settleStopwatchLocked()
	effects := keeper.scheduleLocked(mutate(keeper.machine))
	keeper.syncTickerLocked()
	snapshot := keeper.machine.Snapshot()
	keeper.mu.Unlock()

	keeper.logger.Debug("session operation",
		zap.String("operation", operation),
		zap.String("mode", string(snapshot.Mode)),
		zap.Bool("running", snapshot.Running),
		zap.Int("effects", len(effects)))

	keeper.deliver(EventStateChange, effects, snapshot, keeper.options.Clock.Now())
}

// syncTickerLocked arms a ticker for a running session and disarms it otherwise.
func (keeper *Keeper) syncTickerLocked() {
	if !keeper.machine.Running() {
		keeper.disarmLocked()
		return
	}
	interval := keeper.machine.TickInterval()
	if keeper.ticker != nil && keeper.tickInterval == interval {
		return
	}
	keeper.disarmLocked()

	keeper.tickGen++
	generation := keeper.tickGen
	ticker := keeper.options.Clock.NewTicker(interval)
	stop := make(chan struct{})
	keeper.ticker = ticker
	keeper.tickStop = stop
	keeper.tickInterval = interval
	keeper.lastTick = keeper.options.Clock.Now()

	go keeper.run(generation, ticker, stop)
}

// settleStopwatchLocked credits the running stopwatch with the time since its last tick.
func (keeper *Keeper) settleStopwatchLocked() {
	if keeper.ticker == nil || keeper.machine.Mode() != model.ModeStopwatch {
		return
	}
	now := keeper.options.Clock.Now()
	keeper.machine.Tick(now.Sub(keeper.lastTick))
	keeper.lastTick = now
}

func (keeper *Keeper) disarmLocked() {
	if keeper.ticker == nil {
		return
	}
	keeper.tickGen++
	close(keeper.tickStop)
	keeper.ticker.Stop()
	keeper.ticker = nil
	keeper.tickStop = nil
	keeper.tickInterval = 0
}

func (keeper *Keeper) run(generation uint64, ticker Ticker, stop <-chan struct{}) {
	for {
		select {
		case <-stop:
			return
		case tickTime := <-ticker.C():
			keeper.tick(generation, tickTime)
		}
	}
}

func (keeper *Keeper) tick(generation uint64, tickTime time.Time) {
	keeper.mu.Lock()
	if keeper.closed || generation != keeper.tickGen {
		keeper.mu.Unlock()
		return
	}

	delta := keeper.tickInterval
	if keeper.machine.Mode() == model.ModeStopwatch {
		// Stopwatch time follows the clock so slow ticks do not lose time.
		delta = tickTime.Sub(keeper.lastTick)
	}
	keeper.lastTick = tickTime

	effects := keeper.scheduleLocked(keeper.machine.Tick(delta))
	keeper.syncTickerLocked()
	snapshot := keeper.machine.Snapshot()
	keeper.mu.Unlock()

	eventType := EventProgress
	if !snapshot.Running {
		eventType = EventStateChange
	}
	keeper.deliver(eventType, effects, snapshot, tickTime)
}

// scheduleLocked arms auto-start timers requested by the machine and returns the remaining effects.
func (keeper *Keeper) scheduleLocked(effects []effect.Effect) []effect.Effect {
	forward := effects[:0:0]
	for _, requested := range effects {
		if requested.Kind != effect.KindScheduleAutoStart {
			forward = append(forward, requested)
			continue
		}
		keeper.cancelAutoStartLocked()
		generation := keeper.autoStartGen
		keeper.autoStart = keeper.options.Clock.AfterFunc(requested.Duration, func() {
			keeper.applyIf("auto_start", func() bool {
				return generation == keeper.autoStartGen
			}, (*Machine).Start)
		})
	}
	return forward
}

func (keeper *Keeper) cancelAutoStartLocked() {
	keeper.autoStartGen++
	if keeper.autoStart != nil {
		keeper.autoStart.Stop()
		keeper.autoStart = nil
	}
}

func (keeper *Keeper) deliver(eventType EventType, effects []effect.Effect, snapshot Snapshot, at time.Time) {
	if len(effects) > 0 && keeper.options.Sink != nil {
		keeper.options.Sink.Handle(effects)
	}

	keeper.emit(Event{
		Type:     eventType,
		Snapshot: snapshot,
		Effects:  effects,
		At:       at,
	})
}

func (keeper *Keeper) emit(event Event) {
	keeper.mu.Lock()
	defer keeper.mu.Unlock()
	for _, ch := range keeper.events {
		select {
		case ch <- event:
		default:
		}
	}
}
