package preferences

import (
	"testing"

	"fyne.io/fyne/v2/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"timekeeper/internal/core/effect"
	"timekeeper/internal/core/model"
	"timekeeper/internal/core/settings"
)

func TestReadCoversEveryField(t *testing.T) {
	store := settings.New(model.DefaultSettings(), model.ThemeWarm)
	form := Read(store)

	assert.Len(t, form.Values, len(settings.Fields()))
	assert.Equal(t, "60", form.Values["volume"])
	assert.Equal(t, "true", form.Values["sound_effects"])
	assert.Equal(t, model.ThemeWarm, form.Theme)
}

func TestApplyWritesChangesWithOnePersist(t *testing.T) {
	store := settings.New(model.DefaultSettings(), model.ThemeLight)
	form := Read(store)
	form.Values["break_minutes"] = "10"
	form.Values["long_break_enabled"] = "true"
	form.Theme = model.ThemeForest

	effects, err := form.Apply(store)
	require.NoError(t, err)
	assert.Equal(t, 1, effect.Count(effects, effect.KindPersistState))
	assert.Equal(t, 10, store.Settings().BreakMinutes)
	assert.True(t, store.Settings().LongBreakEnabled)
	assert.Equal(t, model.ThemeForest, store.Theme())
}

func TestApplyKeepsToneWhenSoundTurnsOn(t *testing.T) {
	initial := model.DefaultSettings()
	initial.SoundEffects = false
	store := settings.New(initial, model.ThemeLight)
	form := Read(store)
	form.Values["sound_effects"] = "true"

	effects, err := form.Apply(store)
	require.NoError(t, err)
	assert.True(t, effect.Has(effects, effect.KindPlayTone))
	assert.True(t, effect.Has(effects, effect.KindPersistState))
}

func TestApplyUnchangedFormRequestsNothing(t *testing.T) {
	store := settings.New(model.DefaultSettings(), model.ThemeLight)

	effects, err := Read(store).Apply(store)
	require.NoError(t, err)
	assert.Empty(t, effects)
}

func TestApplyRejectsInvalidFormAtomically(t *testing.T) {
	store := settings.New(model.DefaultSettings(), model.ThemeLight)
	form := Read(store)
	form.Values["break_minutes"] = "12"
	form.Values["sessions_till_long"] = "99"

	_, err := form.Apply(store)
	require.Error(t, err)
	assert.Equal(t, 5, store.Settings().BreakMinutes)
	assert.Equal(t, 4, store.Settings().SessionsTillLong)

	form = Read(store)
	form.Theme = "neon"
	_, err = form.Apply(store)
	assert.Error(t, err)
}

func TestWindowSaveAppliesEffects(t *testing.T) {
	app := test.NewApp()
	defer app.Quit()

	store := settings.New(model.DefaultSettings(), model.ThemeLight)
	var applied []effect.Effect
	prefs := New(app, store, func(effects []effect.Effect) { applied = append(applied, effects...) })

	prefs.checks["auto_break"].SetChecked(true)
	prefs.entries["break_minutes"].SetText("8")
	prefs.volume.SetValue(25)
	prefs.theme.SetSelected("cool")
	prefs.handleSave()

	current := store.Settings()
	assert.True(t, current.AutoBreak)
	assert.Equal(t, 8, current.BreakMinutes)
	assert.Equal(t, 25, current.Volume)
	assert.Equal(t, model.ThemeCool, store.Theme())
	assert.True(t, effect.Has(applied, effect.KindPersistState))
}

func TestWindowShowsValidationError(t *testing.T) {
	app := test.NewApp()
	defer app.Quit()

	store := settings.New(model.DefaultSettings(), model.ThemeLight)
	prefs := New(app, store, nil)

	prefs.entries["long_break_minutes"].SetText("abc")
	prefs.handleSave()

	assert.NotEmpty(t, prefs.errors.Text)
	assert.Equal(t, 15, store.Settings().LongBreakMinutes)
}
