package preferences

import (
	"strconv"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/widget"

	"timekeeper/internal/core/effect"
	"timekeeper/internal/core/model"
	"timekeeper/internal/core/settings"
)

// Window handles the options UI.
type Window struct {
	window  fyne.Window
	store   *settings.Store
	apply   func([]effect.Effect)
	checks  map[string]*widget.Check
	entries map[string]*widget.Entry
	volume  *widget.Slider
	theme   *widget.Select
	errors  *widget.Label
}

// New creates an options window bound to the settings store.
func New(app fyne.App, store *settings.Store, apply func([]effect.Effect)) *Window {
	window := app.NewWindow("TimeKeeper Options")

	prefs := &Window{
		window:  window,
		store:   store,
		apply:   apply,
		checks:  make(map[string]*widget.Check),
		entries: make(map[string]*widget.Entry),
		errors:  widget.NewLabel(""),
	}

	themes := make([]string, 0, len(model.Themes))
	for _, theme := range model.Themes {
		themes = append(themes, string(theme))
	}
	prefs.theme = widget.NewSelect(themes, nil)

	toggles := container.NewVBox(widget.NewLabelWithStyle("General", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}))
	numbers := container.NewVBox(widget.NewLabelWithStyle("Timing", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}))
	for _, field := range settings.Fields() {
		switch {
		case field.Flag:
			check := widget.NewCheck(field.Label, nil)
			prefs.checks[field.Key] = check
			toggles.Add(check)
		case field.Key == "volume":
			prefs.volume = widget.NewSlider(float64(field.Min), float64(field.Max))
			prefs.volume.Step = 5
			numbers.Add(widget.NewLabel(field.Label))
			numbers.Add(prefs.volume)
		default:
			entry := widget.NewEntry()
			prefs.entries[field.Key] = entry
			numbers.Add(container.NewBorder(nil, nil, widget.NewLabel(field.Label), widget.NewLabel(rangeHint(field)), entry))
		}
	}
	numbers.Add(container.NewBorder(nil, nil, widget.NewLabel("Theme"), nil, prefs.theme))

	saveButton := widget.NewButton("Save", prefs.handleSave)
	cancelButton := widget.NewButton("Cancel", window.Hide)
	buttons := container.NewHBox(saveButton, layout.NewSpacer(), prefs.errors, layout.NewSpacer(), cancelButton)

	content := container.NewBorder(nil, buttons, nil, nil, container.NewGridWithColumns(2, toggles, numbers))
	window.SetContent(content)
	window.SetCloseIntercept(window.Hide)
	window.Resize(fyne.NewSize(640, 460))

	prefs.load(Read(store))
	return prefs
}

// Show reloads the current values and displays the window.
func (prefs *Window) Show() {
	prefs.load(Read(prefs.store))
	prefs.errors.SetText("")
	prefs.window.Show()
	prefs.window.RequestFocus()
}

func (prefs *Window) load(form Form) {
	for key, check := range prefs.checks {
		check.SetChecked(form.Values[key] == "true")
	}
	for key, entry := range prefs.entries {
		entry.SetText(form.Values[key])
	}
	if prefs.volume != nil {
		volume, _ := strconv.Atoi(form.Values["volume"])
		prefs.volume.SetValue(float64(volume))
	}
	prefs.theme.SetSelected(string(form.Theme))
}

func (prefs *Window) collect() Form {
	form := Form{Values: make(map[string]string), Theme: model.Theme(prefs.theme.Selected)}
	for key, check := range prefs.checks {
		form.Values[key] = strconv.FormatBool(check.Checked)
	}
	for key, entry := range prefs.entries {
		form.Values[key] = entry.Text
	}
	if prefs.volume != nil {
		form.Values["volume"] = strconv.Itoa(int(prefs.volume.Value))
	}
	return form
}

func (prefs *Window) handleSave() {
	effects, err := prefs.collect().Apply(prefs.store)
	if err != nil {
		prefs.errors.SetText(err.Error())
		return
	}
	if prefs.apply != nil && len(effects) > 0 {
		prefs.apply(effects)
	}
	prefs.window.Hide()
}

func rangeHint(field settings.Field) string {
	return strconv.Itoa(field.Min) + "–" + strconv.Itoa(field.Max)
}
