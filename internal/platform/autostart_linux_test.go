//go:build linux

package platform

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildDesktopEntryQuotesArguments(t *testing.T) {
	entry := buildDesktopEntry("TimeKeeper", []string{"/opt/time keeper/timekeeper", "tray"})

	assert.Contains(t, entry, "Name=TimeKeeper\n")
	assert.Contains(t, entry, `Exec="/opt/time keeper/timekeeper" tray`+"\n")
	assert.Equal(t, "time-keeper.desktop", desktopFileName(" Time Keeper "))
}
