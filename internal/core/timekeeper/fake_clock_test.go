package timekeeper

import (
	"sync"
	"time"
)

// fakeClock is a manual Clock. Advance fires due ticks and timers in time order;
// tick sends block until the keeper's tick loop receives them.
type fakeClock struct {
	mu      sync.Mutex
	now     time.Time
	tickers []*fakeTicker
	timers  []*fakeTimer
}

type fakeTicker struct {
	interval time.Duration
	next     time.Time
	ch       chan time.Time
	done     chan struct{}
	once     sync.Once
}

type fakeTimer struct {
	clock   *fakeClock
	at      time.Time
	fn      func()
	stopped bool
	fired   bool
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)}
}

func (clock *fakeClock) Now() time.Time {
	clock.mu.Lock()
	defer clock.mu.Unlock()
	return clock.now
}

func (clock *fakeClock) NewTicker(interval time.Duration) Ticker {
	clock.mu.Lock()
	defer clock.mu.Unlock()
	ticker := &fakeTicker{
		interval: interval,
		next:     clock.now.Add(interval),
		ch:       make(chan time.Time),
		done:     make(chan struct{}),
	}
	clock.tickers = append(clock.tickers, ticker)
	return ticker
}

func (clock *fakeClock) AfterFunc(delay time.Duration, fn func()) Timer {
	clock.mu.Lock()
	defer clock.mu.Unlock()
	timer := &fakeTimer{clock: clock, at: clock.now.Add(delay), fn: fn}
	clock.timers = append(clock.timers, timer)
	return timer
}

// Advance moves the clock forward, firing everything that falls due on the way.
func (clock *fakeClock) Advance(delta time.Duration) {
	clock.mu.Lock()
	target := clock.now.Add(delta)
	clock.mu.Unlock()

	for {
		clock.mu.Lock()
		ticker, timer, at := clock.nextDueLocked(target)
		if ticker == nil && timer == nil {
			clock.now = target
			clock.mu.Unlock()
			return
		}
		clock.now = at
		if ticker != nil {
			ticker.next = at.Add(ticker.interval)
		} else {
			timer.fired = true
		}
		clock.mu.Unlock()

		if ticker != nil {
			select {
			case ticker.ch <- at:
			case <-ticker.done:
			}
			continue
		}
		timer.fn()
	}
}

func (clock *fakeClock) nextDueLocked(target time.Time) (*fakeTicker, *fakeTimer, time.Time) {
	var (
		dueTicker *fakeTicker
		dueTimer  *fakeTimer
		at        time.Time
	)
	for _, ticker := range clock.tickers {
		if ticker.stopped() || ticker.next.After(target) {
			continue
		}
		if dueTicker == nil || ticker.next.Before(at) {
			dueTicker, at = ticker, ticker.next
		}
	}
	for _, timer := range clock.timers {
		if timer.stopped || timer.fired || timer.at.After(target) {
			continue
		}
		if (dueTicker == nil && dueTimer == nil) || timer.at.Before(at) {
			dueTicker, dueTimer, at = nil, timer, timer.at
		}
	}
	return dueTicker, dueTimer, at
}

func (ticker *fakeTicker) C() <-chan time.Time {
	return ticker.ch
}

func (ticker *fakeTicker) Stop() {
	ticker.once.Do(func() { close(ticker.done) })
}

func (ticker *fakeTicker) stopped() bool {
	select {
	case <-ticker.done:
		return true
	default:
		return false
	}
}

func (timer *fakeTimer) Stop() bool {
	timer.clock.mu.Lock()
	defer timer.clock.mu.Unlock()
	if timer.stopped || timer.fired {
		return false
	}
	timer.stopped = true
	return true
}

func (clock *fakeClock) liveTickers() int {
	clock.mu.Lock()
	defer clock.mu.Unlock()
	live := 0
	for _, ticker := range clock.tickers {
		if !ticker.stopped() {
			live++
		}
	}
	return live
}
