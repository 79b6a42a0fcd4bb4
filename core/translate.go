package core

import (
	"unsafe"

	"golang.org/x/sys/windows"
)

// Key Translation (spec §4.A): three pure queries over a virtual key
// code, all OS roundtrips. Grounded on original_source/src/win/mod.rs
// (to_code, to_unicode, get_foreground_window_keyboard_layout) and
// the teacher's core/keyboard_hook.go (GetKeyState via a LazyDLL
// proc table) / core/app_detector.go (GetForegroundWindow +
// GetWindowThreadProcessId pattern, adapted here rather than copied
// wholesale since app_detector.go's surrounding file is IME-specific).
//
// Per spec: no error is surfaced. Inability to translate yields
// 0/"" rather than an error value.

const (
	mapvkVKToVSC  = 0
	mapvkVKToChar = 2
)

var (
	user32 = windows.NewLazySystemDLL("user32.dll")

	procMapVirtualKeyW           = user32.NewProc("MapVirtualKeyW")
	procGetKeyboardState         = user32.NewProc("GetKeyboardState")
	procToUnicodeEx              = user32.NewProc("ToUnicodeEx")
	procGetForegroundWindow      = user32.NewProc("GetForegroundWindow")
	procGetWindowThreadProcessId = user32.NewProc("GetWindowThreadProcessId")
	procGetKeyboardLayout        = user32.NewProc("GetKeyboardLayout")
	procSendInput                = user32.NewProc("SendInput")
)

// KeyTranslator is the subset of Translator's queries the matcher
// needs to evaluate Scancode/Character chord entries. A seam so tests
// can substitute a fake layout without touching the real OS calls.
type KeyTranslator interface {
	ToScancode(vk uint32) uint32
	ToUnicodeLocalized(vk uint32) (string, bool)
}

// Translator performs the three OS queries §4.A describes. It holds
// no state of its own; every method is a pure function over a vk.
type Translator struct{}

// ToScancode returns the hardware scan code for vk using the default
// OS mapping; 0 if unmapped.
func (Translator) ToScancode(vk uint32) uint32 {
	ret, _, _ := procMapVirtualKeyW.Call(uintptr(vk), uintptr(mapvkVKToVSC))
	return uint32(ret)
}

// ToUnicode returns the Unicode string produced by pressing vk with
// the current physical keyboard state, in the system-default layout.
func (Translator) ToUnicode(vk uint32) (string, bool) {
	return toUnicode(vk, 0)
}

// ToUnicodeLocalized is the same query, but using the keyboard layout
// of the currently foregrounded window's input thread.
func (Translator) ToUnicodeLocalized(vk uint32) (string, bool) {
	return toUnicode(vk, foregroundWindowKeyboardLayout())
}

func toUnicode(vk uint32, layout uintptr) (string, bool) {
	var keyState [256]byte
	ret, _, _ := procGetKeyboardState.Call(uintptr(unsafe.Pointer(&keyState[0])))
	var keyStatePtr uintptr
	if ret != 0 {
		keyStatePtr = uintptr(unsafe.Pointer(&keyState[0]))
	}

	scan, _, _ := procMapVirtualKeyW.Call(uintptr(vk), uintptr(mapvkVKToVSC))

	var buf [5]uint16
	n, _, _ := procToUnicodeEx.Call(
		uintptr(vk),
		scan,
		keyStatePtr,
		uintptr(unsafe.Pointer(&buf[0])),
		uintptr(len(buf)),
		0,
		layout,
	)
	count := int32(n)
	if count <= 0 {
		return "", false
	}
	return windows.UTF16ToString(buf[:count]), true
}

func foregroundWindowKeyboardLayout() uintptr {
	hwnd, _, _ := procGetForegroundWindow.Call()
	if hwnd == 0 {
		return 0
	}
	threadID, _, _ := procGetWindowThreadProcessId.Call(hwnd, 0)
	layout, _, _ := procGetKeyboardLayout.Call(threadID)
	return layout
}
