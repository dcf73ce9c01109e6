//go:build !windows

package overlay

// applyNativeOpacity fades the text; other drivers expose no window alpha.
func (overlay *Window) applyNativeOpacity(alpha uint8) {
	overlay.fadeText(alpha)
}
