package platform

import (
	"fmt"
	"os"
	"os/exec"
	"time"

	"github.com/godbus/dbus/v5"
)

const (
	mutterIdleService = "org.gnome.Mutter.IdleMonitor"
	mutterIdlePath    = "/org/gnome/Mutter/IdleMonitor/Core"
	mutterIdleMethod  = "org.gnome.Mutter.IdleMonitor.GetIdletime"
)

// idleProvider asks the GNOME idle monitor over the session bus, which also works under
// Wayland, and falls back to xprintidle on X11 desktops.
type idleProvider struct {
	bus            *dbus.Conn
	xprintidlePath string
}

func newIdleProvider() IdleProvider {
	provider := &idleProvider{}
	if bus, err := dbus.ConnectSessionBus(); err == nil {
		provider.bus = bus
	}
	if os.Getenv("DISPLAY") != "" {
		if path, err := exec.LookPath("xprintidle"); err == nil {
			provider.xprintidlePath = path
		}
	}
	return provider
}

func (provider *idleProvider) IdleDuration() (time.Duration, error) {
	if provider.bus != nil {
		var millis uint64
		call := provider.bus.Object(mutterIdleService, dbus.ObjectPath(mutterIdlePath)).Call(mutterIdleMethod, 0)
		if err := call.Store(&millis); err == nil {
			return time.Duration(millis) * time.Millisecond, nil
		}
	}
	if provider.xprintidlePath == "" {
		return 0, ErrIdleUnsupported
	}
	output, err := exec.Command(provider.xprintidlePath).Output()
	if err != nil {
		return 0, fmt.Errorf("xprintidle: %w", err)
	}
	return parseIdleMillis(string(output))
}
