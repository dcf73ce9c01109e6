package timekeeper_test

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"timekeeper/internal/core/effect"
	"timekeeper/internal/core/model"
	"timekeeper/internal/core/timekeeper"
)

func completeRunning(machine *timekeeper.Machine) []effect.Effect {
	var effects []effect.Effect
	for i := 0; machine.Running() && i < 100_000; i++ {
		effects = append(effects, machine.Tick(machine.TickInterval())...)
	}
	return effects
}

var _ = Describe("Session machine", func() {
	var (
		settings model.Settings
		machine  *timekeeper.Machine
	)

	BeforeEach(func() {
		settings = model.DefaultSettings()
	})

	JustBeforeEach(func() {
		machine = timekeeper.NewMachine(settings)
	})

	Describe("Pomodoro cycle", func() {
		Context("with long breaks every third session", func() {
			BeforeEach(func() {
				settings.LongBreakEnabled = true
				settings.SessionsTillLong = 3
				settings.BreakMinutes = 2
				settings.LongBreakMinutes = 10
			})

			It("should take a long break after the third focus session", func() {
				machine.SetFocusMinutes(5)
				var phases []model.PomodoroPhase
				for i := 0; i < 6; i++ {
					machine.Start()
					completeRunning(machine)
					phases = append(phases, machine.Snapshot().Pomodoro.Phase)
				}

				Expect(phases).To(Equal([]model.PomodoroPhase{
					model.PhaseBreak, model.PhaseFocus,
					model.PhaseBreak, model.PhaseFocus,
					model.PhaseLongBreak, model.PhaseFocus,
				}))
			})

			It("should size each break from the settings", func() {
				machine.SetFocusMinutes(5)
				machine.Start()
				completeRunning(machine)
				Expect(machine.Snapshot().Pomodoro.Remaining).To(Equal(2 * time.Minute))
			})
		})

		Context("when a focus session is paused half way", func() {
			It("should record only the focused time", func() {
				machine.SetFocusMinutes(2)
				machine.Start()
				for i := 0; i < 60; i++ {
					machine.Tick(time.Second)
				}
				machine.Pause()
				machine.Start()

				effects := completeRunning(machine)

				var completion effect.Completion
				for _, requested := range effects {
					if requested.Kind == effect.KindRecordCompletion {
						completion = requested.Completion
					}
				}
				Expect(completion.Type).To(Equal(model.CompletionPomodoro))
				Expect(completion.FocusedSeconds).To(BeEquivalentTo(120))
				Expect(completion.Duration).To(Equal(2 * time.Minute))
			})
		})

		Context("when reset during a break", func() {
			It("should return to the selected focus length", func() {
				machine.SetFocusMinutes(5)
				machine.Skip()
				Expect(machine.Snapshot().Pomodoro.Phase).To(Equal(model.PhaseBreak))

				machine.Reset()

				snapshot := machine.Snapshot().Pomodoro
				Expect(snapshot.Phase).To(Equal(model.PhaseFocus))
				Expect(snapshot.Remaining).To(Equal(5 * time.Minute))
				Expect(snapshot.CompletedFocusCount).To(Equal(1))
			})
		})
	})

	Describe("Countdown", func() {
		It("should chime and record exactly once", func() {
			machine.SwitchMode(model.ModeCountdown)
			machine.SetCountdown(3 * time.Second)
			machine.Start()

			effects := completeRunning(machine)

			Expect(effect.Count(effects, effect.KindCompletionChime)).To(Equal(1))
			Expect(effect.Count(effects, effect.KindRecordCompletion)).To(Equal(1))
			Expect(effects).To(ContainElement(effect.ShowToast("Timer complete!")))
			Expect(machine.Snapshot().Countdown.Remaining).To(BeZero())
		})
	})

	Describe("Breathing", func() {
		It("should walk inhale, hold, exhale and back", func() {
			machine.SwitchMode(model.ModeBreathing)
			machine.Start()

			seen := []model.BreathPhase{machine.Snapshot().Breathing.Phase}
			for i := 0; i < 19; i++ {
				machine.Tick(time.Second)
				phase := machine.Snapshot().Breathing.Phase
				if phase != seen[len(seen)-1] {
					seen = append(seen, phase)
				}
			}

			Expect(seen).To(Equal([]model.BreathPhase{
				model.BreathInhale, model.BreathHold, model.BreathExhale, model.BreathInhale,
			}))
			Expect(machine.Snapshot().Breathing.CompletedCycles).To(Equal(1))
		})

		It("should carry a long tick into the following phases", func() {
			machine.SwitchMode(model.ModeBreathing)
			machine.Start()
			machine.Tick(12 * time.Second)

			breathing := machine.Snapshot().Breathing
			Expect(breathing.Phase).To(Equal(model.BreathExhale))
			Expect(breathing.PhaseRemaining).To(Equal(7 * time.Second))
			Expect(breathing.TotalElapsed).To(Equal(12 * time.Second))
		})
	})
})
