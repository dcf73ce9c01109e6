package settings

import (
	"sort"

	"timekeeper/internal/core/model"
)

// field binds a text key to one settings field. Exactly one of flag or number is set.
type field struct {
	label    string
	flag     func(*model.Settings) *bool
	number   func(*model.Settings) *int
	min, max int
}

// fields is keyed by the YAML names of the settings.
var fields = map[string]field{
	"sound_effects":         {label: "Sound effects", flag: func(s *model.Settings) *bool { return &s.SoundEffects }},
	"sound_ambient":         {label: "Ambient sound", flag: func(s *model.Settings) *bool { return &s.SoundAmbient }},
	"sound_tick":            {label: "Tick sound", flag: func(s *model.Settings) *bool { return &s.SoundTick }},
	"volume":                {label: "Volume", number: func(s *model.Settings) *int { return &s.Volume }, min: 0, max: 100},
	"auto_break":            {label: "Auto-start breaks", flag: func(s *model.Settings) *bool { return &s.AutoBreak }},
	"long_break_enabled":    {label: "Long breaks", flag: func(s *model.Settings) *bool { return &s.LongBreakEnabled }},
	"break_minutes":         {label: "Break minutes", number: func(s *model.Settings) *int { return &s.BreakMinutes }, min: 1, max: 60},
	"long_break_minutes":    {label: "Long break minutes", number: func(s *model.Settings) *int { return &s.LongBreakMinutes }, min: 1, max: 120},
	"sessions_till_long":    {label: "Sessions until long break", number: func(s *model.Settings) *int { return &s.SessionsTillLong }, min: 1, max: 12},
	"desktop_notifications": {label: "Desktop notifications", flag: func(s *model.Settings) *bool { return &s.DesktopNotify }},
	"title_progress":        {label: "Progress in title", flag: func(s *model.Settings) *bool { return &s.TitleProgress }},
	"clock_24h":             {label: "24-hour clock", flag: func(s *model.Settings) *bool { return &s.Clock24h }},
	"show_hundredths":       {label: "Show hundredths", flag: func(s *model.Settings) *bool { return &s.ShowHundredths }},
	"dim_inactive":          {label: "Dim when inactive", flag: func(s *model.Settings) *bool { return &s.DimInactive }},
}

// Field describes one editable setting.
type Field struct {
	Key   string
	Label string
	Flag  bool
	Min   int
	Max   int
}

// Fields lists every editable setting ordered by key.
func Fields() []Field {
	described := make([]Field, 0, len(fields))
	for key, field := range fields {
		described = append(described, Field{
			Key:   key,
			Label: field.label,
			Flag:  field.flag != nil,
			Min:   field.min,
			Max:   field.max,
		})
	}
	sort.Slice(described, func(i, j int) bool { return described[i].Key < described[j].Key })
	return described
}
