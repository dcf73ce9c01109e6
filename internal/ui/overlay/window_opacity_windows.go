//go:build windows

package overlay

import (
	"syscall"

	"fyne.io/fyne/v2/driver"
)

const (
	gwlExStyle  int32 = -20
	wsExLayered       = 0x00080000
	lwaAlpha          = 0x2
)

var (
	user32               = syscall.NewLazyDLL("user32.dll")
	getWindowLongPtr     = user32.NewProc("GetWindowLongPtrW")
	setWindowLongPtr     = user32.NewProc("SetWindowLongPtrW")
	setLayeredAttributes = user32.NewProc("SetLayeredWindowAttributes")
)

// applyNativeOpacity fades the whole window through the layered-window alpha.
func (overlay *Window) applyNativeOpacity(alpha uint8) {
	nativeWindow, ok := overlay.window.(driver.NativeWindow)
	if !ok {
		overlay.fadeText(alpha)
		return
	}
	nativeWindow.RunNative(func(context any) {
		hwnd := windowHandle(context)
		if hwnd == 0 {
			overlay.fadeText(alpha)
			return
		}
		setWindowAlpha(hwnd, alpha)
	})
}

func windowHandle(context any) uintptr {
	switch value := context.(type) {
	case driver.WindowsWindowContext:
		return value.HWND
	case *driver.WindowsWindowContext:
		return value.HWND
	}
	return 0
}

func setWindowAlpha(hwnd uintptr, alpha uint8) {
	exStyle := uintptr(uint32(gwlExStyle))
	style, _, _ := getWindowLongPtr.Call(hwnd, exStyle)
	if style&wsExLayered == 0 {
		_, _, _ = setWindowLongPtr.Call(hwnd, exStyle, style|wsExLayered)
	}
	_, _, _ = setLayeredAttributes.Call(hwnd, 0, uintptr(alpha), lwaAlpha)
}
