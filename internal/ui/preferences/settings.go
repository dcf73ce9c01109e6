package preferences

import (
	"fmt"

	"timekeeper/internal/core/effect"
	"timekeeper/internal/core/model"
	"timekeeper/internal/core/settings"
)

// Form holds the editable text of every setting plus the theme.
type Form struct {
	Values map[string]string
	Theme  model.Theme
}

// Read copies the current store values into a form.
func Read(store *settings.Store) Form {
	form := Form{Values: make(map[string]string), Theme: store.Theme()}
	for _, field := range settings.Fields() {
		if value, err := store.Get(field.Key); err == nil {
			form.Values[field.Key] = value
		}
	}
	return form
}

// Apply writes changed values to the store. Values are checked before anything is written,
// so an invalid form leaves the store untouched.
func (form Form) Apply(store *settings.Store) ([]effect.Effect, error) {
	current := Read(store)
	if form.Theme != "" && !form.Theme.Valid() {
		return nil, fmt.Errorf("unknown theme %q", form.Theme)
	}

	scratch := settings.New(store.Settings(), store.Theme())
	changed := make(map[string]string)
	for key, value := range form.Values {
		if current.Values[key] == value {
			continue
		}
		if _, err := scratch.Set(key, value); err != nil {
			return nil, err
		}
		changed[key] = value
	}

	var requested []effect.Effect
	for key, value := range changed {
		effects, err := store.Set(key, value)
		if err != nil {
			return nil, err
		}
		requested = append(requested, withoutPersist(effects)...)
	}
	if form.Theme != "" && form.Theme != current.Theme {
		if _, err := store.SetTheme(form.Theme); err != nil {
			return nil, err
		}
		changed["theme"] = string(form.Theme)
	}

	if len(changed) > 0 {
		requested = append(requested, effect.PersistState())
	}
	return requested, nil
}

func withoutPersist(effects []effect.Effect) []effect.Effect {
	kept := effects[:0:0]
	for _, requested := range effects {
		if requested.Kind != effect.KindPersistState {
			kept = append(kept, requested)
		}
	}
	return kept
}
