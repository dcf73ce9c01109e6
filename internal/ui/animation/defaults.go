package animation

import "time"

// DefaultConfig returns a 30 fps pulse between 40% and 100% of the circle size.
func DefaultConfig() Config {
	return Config{
		FrameInterval: 33 * time.Millisecond,
		MinScale:      0.4,
		MaxScale:      1,
	}
}
