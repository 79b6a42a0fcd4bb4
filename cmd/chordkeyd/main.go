// Command chordkeyd is the process entry point: single-instance guard,
// config load, wiring of Tracker → Matcher → Synth, hook install, and
// the Win32 message loop the hook callback needs a thread to run on.
// Grounded on the teacher's main.go (startup ordering: settings before
// hook, hook started before the event loop blocks) with all of the
// wails/v3 GUI scaffolding removed — spec.md's Non-goals explicitly
// exclude "any GUI" — and original_source/src/main.rs + src/win/window.rs
// (RegisterClassW + GetMessageW/DispatchMessageW pump, WM_CREATE
// installing the hook) for the raw message-loop shape.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"unsafe"

	"chordkey/config"
	"chordkey/core"
	"chordkey/logging"
	"chordkey/settings"
)

var (
	user32LL          = syscall.NewLazyDLL("user32.dll")
	kernel32LL        = syscall.NewLazyDLL("kernel32.dll")
	procGetMessageW   = user32LL.NewProc("GetMessageW")
	procTranslateMsg  = user32LL.NewProc("TranslateMessage")
	procDispatchMsgW  = user32LL.NewProc("DispatchMessageW")
	procPostThreadMsg = user32LL.NewProc("PostThreadMessageW")
	procGetCurrentTID = kernel32LL.NewProc("GetCurrentThreadId")
)

const wmQuit = 0x0012

// msg mirrors the Win32 MSG structure.
type msg struct {
	hwnd    uintptr
	message uint32
	wParam  uintptr
	lParam  uintptr
	time    uint32
	pt      struct{ x, y int32 }
}

func main() {
	configPath := flag.String("config", "chordkey.ini", "path to the chord configuration file")
	debug := flag.Bool("debug", false, "enable debug logging")
	flag.Parse()

	level := slog.LevelInfo
	if *debug {
		level = slog.LevelDebug
	}
	log := logging.New(logging.Options{Level: level, Debug: *debug})

	if err := core.AcquireMutex(); err != nil {
		log.Error("startup aborted", "err", err)
		os.Exit(1)
	}
	defer core.ReleaseMutex()

	store := settings.NewStore()
	runtimeSettings, err := store.Load()
	if err != nil {
		log.Error("failed to load settings, using defaults", "err", err)
		runtimeSettings = settings.Default()
	}
	if !runtimeSettings.Enabled {
		log.Info("chordkeyd is disabled via settings; exiting")
		return
	}

	bindings, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "chordkeyd: %v\n", err)
		os.Exit(1)
	}
	log.Info("configuration loaded", "bindings", len(bindings), "path", *configPath)

	tracker := core.NewTracker(log)
	matcher := core.NewMatcher(log)
	synth := core.NewSynthesizer(log)

	tracker.RegisterHook(matcher.Hook())
	for _, b := range bindings {
		core.StartBinding(matcher, b.Chord, b.Output, synth, log)
	}

	// The hook callback must run on the thread that installed it, and
	// that thread must pump messages for the hook to be serviced.
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	hook := core.NewLowLevelHook(tracker, log)
	if err := hook.Start(); err != nil {
		log.Error("failed to install keyboard hook", "err", err)
		os.Exit(1)
	}
	defer hook.Stop()

	threadID, _, _ := procGetCurrentTID.Call()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt)
	go func() {
		<-sigCh
		log.Info("shutdown requested")
		procPostThreadMsg.Call(threadID, wmQuit, 0, 0)
	}()

	runMessageLoop(log)
}

func runMessageLoop(log *slog.Logger) {
	var m msg
	for {
		ret, _, _ := procGetMessageW.Call(
			uintptr(unsafe.Pointer(&m)),
			0, 0, 0,
		)
		if int32(ret) <= 0 {
			break
		}
		procTranslateMsg.Call(uintptr(unsafe.Pointer(&m)))
		procDispatchMsgW.Call(uintptr(unsafe.Pointer(&m)))
	}
	log.Info("message loop exited")
}
