package core

import (
	"log/slog"
	"syscall"
	"unsafe"
)

// Low-level keyboard hook installer (spec §4.F, §6 "OS hook"). Grounded
// on the teacher's core/keyboard_hook.go WH_KEYBOARD_LL plumbing, gutted
// of everything downstream of the IME bridge/format-hotkey logic: here
// the callback does exactly one thing — translate a KBDLLHOOKSTRUCT
// into a Tracker.OnPress/OnRelease call and honor its suppression
// verdict. Matching runs synchronously inside that Tracker call;
// synthesis happens off this thread, in the binding workers.

const (
	whKeyboardLL   = 13
	wmKeyDown      = 0x0100
	wmKeyUp        = 0x0101
	wmSysKeyDown   = 0x0104
	wmSysKeyUp     = 0x0105
	llkhfInjected  = 0x00000010
)

// sentinelExtraInfo tags events this process injects via SendInput, so
// the hook can recognize them and pass them on without handing them to
// the Tracker, instead of mistaking them for fresh physical presses (spec §4.D "tag synthetic events with a fixed
// sentinel value").
const sentinelExtraInfo = uintptr(0x666)

// kbdllhookstruct mirrors the OS KBDLLHOOKSTRUCT layout exactly; field
// order and width must not change.
type kbdllhookstruct struct {
	VkCode      uint32
	ScanCode    uint32
	Flags       uint32
	Time        uint32
	DwExtraInfo uintptr
}

var (
	kernel32 = syscall.NewLazyDLL("kernel32.dll")

	procSetWindowsHookExW   = user32.NewProc("SetWindowsHookExW")
	procUnhookWindowsHookEx = user32.NewProc("UnhookWindowsHookEx")
	procCallNextHookEx      = user32.NewProc("CallNextHookEx")
	procGetModuleHandleW    = kernel32.NewProc("GetModuleHandleW")
)

// LowLevelHook installs and owns one WH_KEYBOARD_LL hook for the
// lifetime of the process. It must be started and stopped from the
// same OS thread (the caller is expected to have called
// runtime.LockOSThread — see cmd/chordkeyd).
type LowLevelHook struct {
	tracker  *Tracker
	log      *slog.Logger
	hookID   uintptr
	hookProc uintptr // retained to keep the callback reachable to the GC
}

// NewLowLevelHook binds the hook to tracker; every physical or
// injected key transition is forwarded to tracker.OnPress/OnRelease,
// except events carrying sentinelExtraInfo.
func NewLowLevelHook(tracker *Tracker, log *slog.Logger) *LowLevelHook {
	if log == nil {
		log = slog.Default()
	}
	return &LowLevelHook{tracker: tracker, log: log}
}

// Start installs the hook. Returns an error if the OS call fails.
func (h *LowLevelHook) Start() error {
	if h.hookID != 0 {
		return nil
	}
	h.hookProc = syscall.NewCallback(h.callback)
	hMod, _, _ := procGetModuleHandleW.Call(0)
	hookID, _, err := procSetWindowsHookExW.Call(
		uintptr(whKeyboardLL),
		h.hookProc,
		hMod,
		0,
	)
	if hookID == 0 {
		h.log.Error("SetWindowsHookExW failed", "err", err)
		return err
	}
	h.hookID = hookID
	h.log.Info("keyboard hook installed")
	return nil
}

// Stop removes the hook. Safe to call on an already-stopped hook.
func (h *LowLevelHook) Stop() {
	if h.hookID == 0 {
		return
	}
	procUnhookWindowsHookEx.Call(h.hookID)
	h.hookID = 0
	h.log.Info("keyboard hook removed")
}

func (h *LowLevelHook) callback(nCode int, wParam uintptr, lParam uintptr) uintptr {
	if nCode >= 0 {
		ks := (*kbdllhookstruct)(unsafe.Pointer(lParam))

		// Our own synthesized events never reach the tracker: the
		// pressed-key set must stay exactly what the user physically
		// holds (spec §4.D). Only the OS-injected flag on a non-sentinel
		// event still goes through, marked, for hooks that care.
		if ks.DwExtraInfo == sentinelExtraInfo {
			ret, _, _ := procCallNextHookEx.Call(h.hookID, uintptr(nCode), wParam, lParam)
			return ret
		}
		injected := ks.Flags&llkhfInjected != 0

		var suppress bool
		switch wParam {
		case wmKeyDown, wmSysKeyDown:
			suppress = h.tracker.OnPress(ks.VkCode, injected)
		case wmKeyUp, wmSysKeyUp:
			suppress = h.tracker.OnRelease(ks.VkCode, injected)
		}
		if suppress {
			return 1
		}
	}
	ret, _, _ := procCallNextHookEx.Call(h.hookID, uintptr(nCode), wParam, lParam)
	return ret
}
