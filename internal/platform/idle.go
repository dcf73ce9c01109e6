package platform

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ErrIdleUnsupported is returned where the desktop does not expose input idle time.
var ErrIdleUnsupported = errors.New("idle detection unsupported")

// IdleProvider returns the duration since last user input.
type IdleProvider interface {
	IdleDuration() (time.Duration, error)
}

// NewIdleProvider returns a platform-specific idle provider.
func NewIdleProvider() IdleProvider {
	return newIdleProvider()
}

// parseIdleMillis reads the millisecond count printed by idle query tools.
func parseIdleMillis(output string) (time.Duration, error) {
	value, err := strconv.ParseInt(strings.TrimSpace(output), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse idle milliseconds: %w", err)
	}
	if value < 0 {
		value = 0
	}
	return time.Duration(value) * time.Millisecond, nil
}
