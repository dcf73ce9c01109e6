package animation

import (
	"context"
	"sync"
	"time"

	"timekeeper/internal/core/model"
	"timekeeper/internal/core/timekeeper"
)

// Config contains animation timing values.
type Config struct {
	FrameInterval time.Duration
	MinScale      float32
	MaxScale      float32
}

// Engine animates the breathing circle between keeper ticks.
type Engine struct {
	mu          sync.Mutex
	config      Config
	updateScale func(float32)
	cancel      context.CancelFunc
	now         func() time.Time
}

// New creates a new animation engine.
func New(config Config, updateScale func(float32)) *Engine {
	return &Engine{
		config:      config,
		updateScale: updateScale,
		now:         time.Now,
	}
}

// Follow animates from the given phase position until the phase ends or ctx is cancelled.
// Each keeper update calls Follow again, which replaces the running animation.
func (engine *Engine) Follow(ctx context.Context, phase model.BreathPhase, remaining time.Duration) {
	engine.start(ctx, func(runCtx context.Context) {
		started := engine.now()
		for {
			left := remaining - engine.now().Sub(started)
			if left < 0 {
				left = 0
			}
			if !engine.draw(runCtx, engine.ScaleAt(phase, left)) {
				return
			}
			if left == 0 {
				return
			}
			if !sleepWithContext(runCtx, engine.config.FrameInterval) {
				return
			}
		}
	})
}

// Hold shows a fixed scale and stops any running animation.
func (engine *Engine) Hold(phase model.BreathPhase, remaining time.Duration) {
	engine.mu.Lock()
	defer engine.mu.Unlock()
	engine.stopLocked()
	engine.updateScale(engine.ScaleAt(phase, remaining))
}

// Stop terminates any active animation.
func (engine *Engine) Stop() {
	engine.mu.Lock()
	defer engine.mu.Unlock()
	engine.stopLocked()
}

func (engine *Engine) stopLocked() {
	if engine.cancel != nil {
		engine.cancel()
		engine.cancel = nil
	}
}

// draw publishes a frame unless the animation was replaced or stopped.
func (engine *Engine) draw(runCtx context.Context, scale float32) bool {
	engine.mu.Lock()
	defer engine.mu.Unlock()
	if runCtx.Err() != nil {
		return false
	}
	engine.updateScale(scale)
	return true
}

// ScaleAt maps a breathing position to a circle scale: inhale grows, hold stays full, exhale shrinks.
func (engine *Engine) ScaleAt(phase model.BreathPhase, remaining time.Duration) float32 {
	low, high := engine.config.MinScale, engine.config.MaxScale
	total := timekeeper.BreathPhaseDuration(phase)
	done := float32(1)
	if total > 0 {
		done = 1 - float32(remaining)/float32(total)
	}
	if done < 0 {
		done = 0
	}
	if done > 1 {
		done = 1
	}

	switch phase {
	case model.BreathInhale:
		return low + (high-low)*done
	case model.BreathHold:
		return high
	case model.BreathExhale:
		return high - (high-low)*done
	}
	return low
}

func (engine *Engine) start(parent context.Context, run func(context.Context)) {
	engine.mu.Lock()
	engine.stopLocked()
	runCtx, cancel := context.WithCancel(parent)
	engine.cancel = cancel
	engine.mu.Unlock()

	go run(runCtx)
}

func sleepWithContext(ctx context.Context, duration time.Duration) bool {
	timer := time.NewTimer(duration)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
