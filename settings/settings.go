// Package settings persists the two runtime toggles spec.md's core
// treats as external collaborators: whether remapping is currently
// enabled, and whether the process starts with Windows. Grounded on
// the teacher's services/settings.go Registry plumbing, trimmed of
// everything specific to an IME (input method, tone placement,
// per-app profiles, legacy-key migration, shortcuts) — this domain has
// none of that.
package settings

import (
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sys/windows/registry"
)

const (
	keyPath     = `SOFTWARE\chordkeyd`
	autoStartKeyPath = `SOFTWARE\Microsoft\Windows\CurrentVersion\Run`
	appName     = "chordkeyd"

	valueEnabled   = "Enabled"
	valueAutoStart = "AutoStart"
)

// Settings holds the two persisted toggles.
type Settings struct {
	Enabled   bool
	AutoStart bool
}

// Default returns the out-of-the-box settings: remapping on, no
// autostart entry.
func Default() *Settings {
	return &Settings{Enabled: true, AutoStart: false}
}

// Store reads and writes Settings through the Windows registry.
type Store struct{}

// NewStore constructs a Store.
func NewStore() *Store { return &Store{} }

// Load reads persisted settings, falling back to Default for any value
// that's missing (first run, or a key deleted out from under us).
func (s *Store) Load() (*Settings, error) {
	out := Default()
	key, err := registry.OpenKey(registry.CURRENT_USER, keyPath, registry.QUERY_VALUE)
	if err != nil {
		return out, nil
	}
	defer key.Close()

	out.Enabled = readBool(key, valueEnabled, out.Enabled)
	out.AutoStart = readBool(key, valueAutoStart, out.AutoStart)
	return out, nil
}

// Save persists cfg and reconciles the Windows "Run" autostart entry
// to match cfg.AutoStart.
func (s *Store) Save(cfg *Settings) error {
	key, _, err := registry.CreateKey(registry.CURRENT_USER, keyPath, registry.SET_VALUE)
	if err != nil {
		return fmt.Errorf("open settings key: %w", err)
	}
	defer key.Close()

	writeBool(key, valueEnabled, cfg.Enabled)
	writeBool(key, valueAutoStart, cfg.AutoStart)

	return s.reconcileAutoStart(cfg.AutoStart)
}

func (s *Store) reconcileAutoStart(enabled bool) error {
	key, err := registry.OpenKey(registry.CURRENT_USER, autoStartKeyPath, registry.SET_VALUE)
	if err != nil {
		return fmt.Errorf("open autostart key: %w", err)
	}
	defer key.Close()

	if !enabled {
		key.DeleteValue(appName)
		return nil
	}

	exePath, err := os.Executable()
	if err != nil {
		return fmt.Errorf("resolve executable path: %w", err)
	}
	exePath, _ = filepath.EvalSymlinks(exePath)
	return key.SetStringValue(appName, fmt.Sprintf(`"%s"`, exePath))
}

func readBool(key registry.Key, name string, fallback bool) bool {
	val, _, err := key.GetIntegerValue(name)
	if err != nil {
		return fallback
	}
	return val != 0
}

func writeBool(key registry.Key, name string, val bool) {
	var dw uint32
	if val {
		dw = 1
	}
	key.SetDWordValue(name, dw)
}
