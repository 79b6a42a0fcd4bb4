package core

import (
	"fmt"
	"syscall"
	"unsafe"
)

// Single-instance guard (spec §6 "the process refuses to start a
// second instance"). Grounded on the teacher's core/elevation.go
// CreateMutexW call, trimmed of the UAC elevate/de-elevate relaunch
// dance — this spec has no privilege-elevation concept, see
// DESIGN.md — and of its Vietnamese-IME-specific mutex name and error
// text.

const (
	mutexName          = `Global\chordkeyd`
	errorAlreadyExists = 183
)

var (
	procCreateMutexW = kernel32.NewProc("CreateMutexW")
	procReleaseMutex = kernel32.NewProc("ReleaseMutex")
)

var mutexHandle syscall.Handle

// AcquireMutex claims the process-wide named mutex. A non-nil error
// means another instance already holds it.
func AcquireMutex() error {
	namePtr, err := syscall.UTF16PtrFromString(mutexName)
	if err != nil {
		return err
	}
	handle, _, callErr := procCreateMutexW.Call(
		0,
		1,
		uintptr(unsafe.Pointer(namePtr)),
	)
	if handle == 0 {
		return fmt.Errorf("CreateMutexW failed: %w", callErr)
	}
	if errno, ok := callErr.(syscall.Errno); ok && errno == errorAlreadyExists {
		syscall.CloseHandle(syscall.Handle(handle))
		return fmt.Errorf("another instance is already running")
	}
	mutexHandle = syscall.Handle(handle)
	return nil
}

// ReleaseMutex releases the mutex acquired by AcquireMutex, if any.
func ReleaseMutex() {
	if mutexHandle != 0 {
		procReleaseMutex.Call(uintptr(mutexHandle))
		syscall.CloseHandle(mutexHandle)
		mutexHandle = 0
	}
}
