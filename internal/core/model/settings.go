package model

import "time"

// Settings contains user-configurable timer behavior.
type Settings struct {
	SoundEffects     bool `yaml:"sound_effects" json:"soundComplete"`
	SoundAmbient     bool `yaml:"sound_ambient" json:"soundAmbient"`
	SoundTick        bool `yaml:"sound_tick" json:"soundTick"`
	Volume           int  `yaml:"volume" json:"volume"`
	AutoBreak        bool `yaml:"auto_break" json:"autoBreak"`
	LongBreakEnabled bool `yaml:"long_break_enabled" json:"longBreakEnabled"`
	BreakMinutes     int  `yaml:"break_minutes" json:"breakDuration"`
	LongBreakMinutes int  `yaml:"long_break_minutes" json:"longBreakDuration"`
	SessionsTillLong int  `yaml:"sessions_till_long" json:"sessionsTillLong"`
	DesktopNotify    bool `yaml:"desktop_notifications" json:"desktopNotif"`
	TitleProgress    bool `yaml:"title_progress" json:"titleProgress"`
	Clock24h         bool `yaml:"clock_24h" json:"time24h"`
	ShowHundredths   bool `yaml:"show_hundredths" json:"showMs"`
	DimInactive      bool `yaml:"dim_inactive" json:"dimInactive"`
}

// DefaultSettings returns the settings used on first launch.
func DefaultSettings() Settings {
	return Settings{
		SoundEffects:     true,
		SoundAmbient:     false,
		SoundTick:        false,
		Volume:           60,
		AutoBreak:        false,
		LongBreakEnabled: false,
		BreakMinutes:     5,
		LongBreakMinutes: 15,
		SessionsTillLong: 4,
		DesktopNotify:    false,
		TitleProgress:    true,
		Clock24h:         false,
		ShowHundredths:   true,
		DimInactive:      true,
	}
}

// BreakDuration returns the short break length.
func (settings Settings) BreakDuration() time.Duration {
	return time.Duration(settings.BreakMinutes) * time.Minute
}

// LongBreakDuration returns the long break length.
func (settings Settings) LongBreakDuration() time.Duration {
	return time.Duration(settings.LongBreakMinutes) * time.Minute
}

// VolumeScale scales a base gain by the configured volume.
func (settings Settings) VolumeScale(base float64) float64 {
	volume := settings.Volume
	if volume < 0 {
		volume = 0
	}
	return base * float64(volume) / 100
}
