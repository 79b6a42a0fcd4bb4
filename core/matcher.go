package core

import (
	"log/slog"
	"sync"
)

// Hotkey Matcher (spec §4.C). Grounded on original_source/src/
// hotkeymanager.rs's HotkeyManager::process + its BindingTable bucketed
// by chord length, translated into Go idioms: a registered Tracker
// Hook closure instead of a trait object, explicit channels instead of
// mpsc senders (Design Note §9).

// BindingTable buckets bindings by chord length so a press with N keys
// held only scans candidates of exactly N keys, never the whole table.
type BindingTable map[int][]*Binding

// Matcher owns the binding table and is registered once as a Tracker
// Hook. It holds no back-reference to the Tracker it is registered
// with (Design Note §9: one-way observer list).
type Matcher struct {
	mu         sync.Mutex
	table      BindingTable
	translator KeyTranslator
	log        *slog.Logger
}

// NewMatcher constructs an empty Matcher backed by the real OS
// Translator.
func NewMatcher(log *slog.Logger) *Matcher {
	return NewMatcherWithTranslator(log, Translator{})
}

// NewMatcherWithTranslator is NewMatcher with an injectable
// KeyTranslator, used by tests to fake scancode/Unicode lookups
// without touching the real OS calls.
func NewMatcherWithTranslator(log *slog.Logger, translator KeyTranslator) *Matcher {
	if log == nil {
		log = slog.Default()
	}
	return &Matcher{
		table:      make(BindingTable),
		translator: translator,
		log:        log,
	}
}

// AddBinding registers chord and returns the press/release channels its
// worker goroutines should read from (spec §4.D: every binding owns a
// press worker and a release worker fed by these channels). ordered is
// stored on the Binding but never consulted by matching (spec §9 Open
// Question).
func (m *Matcher) AddBinding(chord Chord, ordered bool) (*Binding, <-chan TriggeredEvent, <-chan TriggeredEvent) {
	pressCh := make(chan TriggeredEvent, 4)
	releaseCh := make(chan TriggeredEvent, 4)

	b := &Binding{
		Chord:     chord,
		OnPress:   pressCh,
		OnRelease: releaseCh,
		Ordered:   ordered,
	}

	m.mu.Lock()
	m.table[len(chord)] = append(m.table[len(chord)], b)
	m.mu.Unlock()

	return b, pressCh, releaseCh
}

// Hook returns the Tracker.Hook closure driving the matching
// algorithm. Register it once: tracker.RegisterHook(matcher.Hook()).
func (m *Matcher) Hook() Hook {
	return func(meta *HookMetadata) (bool, error) {
		m.mu.Lock()
		defer m.mu.Unlock()

		if IsMetaOrAlt(meta.Key) && m.anyTriggeredContains(meta.Key) {
			if meta.Phase == Press && meta.PressedBefore.Contains(meta.Key) {
				// OS auto-repeat on a meta key belonging to a chord
				// already triggered: the user is still holding the
				// chord down.
				return true, nil
			}
			if meta.Phase == Release && meta.Injected {
				// Bounce from our own restore-press of this meta key
				// (core/synth.go deactivation sequence).
				return true, nil
			}
		}

		cache := newTranslationCache(m.translator)
		switch meta.Phase {
		case Press:
			return m.matchPress(meta, cache), nil
		case Release:
			return m.matchRelease(meta, cache), nil
		}
		return false, nil
	}
}

// anyTriggeredContains reports whether any currently-triggered
// binding's chord contains vk. must be called with m.mu held.
func (m *Matcher) anyTriggeredContains(vk uint32) bool {
	for _, bindings := range m.table {
		for _, b := range bindings {
			if b.Triggered && b.Chord.HasVirtualKey(vk) {
				return true
			}
		}
	}
	return false
}

// matchPress looks for a binding whose full chord is exactly the
// currently-pressed key set. must be called with m.mu held.
func (m *Matcher) matchPress(meta *HookMetadata, cache *translationCache) bool {
	for _, b := range m.table[meta.Pressed.Len()] {
		if !m.chordSatisfied(b.Chord, meta.Pressed, cache) {
			continue
		}
		// Triggered is monotone, but a repeat press while already
		// triggered still fires on_press (spec §4.C "Triggered-state
		// transitions" — treats OS key-repeat as a retrigger event).
		wasTriggered := b.Triggered
		b.Triggered = true
		b.send(b.OnPress, TriggeredEvent{Chord: b.Chord, Pressed: meta.Pressed, Repeat: wasTriggered}, m.logf)
		return true
	}
	return false
}

// matchRelease looks for a triggered binding whose chord was satisfied
// by the pre-release pressed set. The released key need not itself be
// a KindVirtualKey chord entry — a Character or Scancode entry is
// satisfied by whichever pressed key currently translates to it, so
// the only way to find the binding a release belongs to is by testing
// chordSatisfied against meta.PressedBefore, not by looking the
// released key up in the chord directly. Since a bucket only holds
// chords of length meta.PressedBefore.Len(), a satisfied chord there
// normally has every held key as a contributing member, so any one of
// them releasing breaks the match. When one pressed key satisfies
// several chord entries (see chordSatisfied), a held key may not
// contribute; its release still deactivates the binding. must be
// called with m.mu held.
func (m *Matcher) matchRelease(meta *HookMetadata, cache *translationCache) bool {
	for _, b := range m.table[meta.PressedBefore.Len()] {
		if !b.Triggered {
			continue
		}
		if !m.chordSatisfied(b.Chord, meta.PressedBefore, cache) {
			continue
		}
		b.Triggered = false
		// Pressed here is the post-removal set: whichever of the
		// chord's keys the user is still physically holding, which is
		// exactly what the deactivation sequence needs to know what
		// to restore (spec §4.D step 2).
		b.send(b.OnRelease, TriggeredEvent{Chord: b.Chord, Pressed: meta.Pressed}, m.logf)
		return true
	}
	return false
}

// chordSatisfied reports whether every key in chord is satisfied by
// some currently-pressed key (spec §4.C should_trigger). Matching is
// not bijective: the same pressed key may satisfy more than one chord
// entry — an accepted limitation (spec §9 Open Questions), pinned by
// TestMatcher_ChordSatisfied_OverlappingSatisfaction.
func (m *Matcher) chordSatisfied(chord Chord, pressed *PressedKeys, cache *translationCache) bool {
	for _, k := range chord {
		switch k.Kind {
		case KindVirtualKey:
			if !pressed.Contains(k.VK) {
				return false
			}
		case KindScancode:
			if !cache.anyScancodeMatches(pressed, k.Scancode) {
				return false
			}
		case KindCharacter:
			if !cache.anyUnicodeMatches(pressed, k.Char) {
				return false
			}
		}
	}
	return true
}

func (m *Matcher) logf(msg string, args ...any) {
	m.log.Debug(msg, args...)
}

// translationCache memoizes per-vk scancode/Unicode lookups for the
// duration of a single event's matching pass, since Translator's
// queries are OS roundtrips and a bucket may hold several candidate
// bindings over the same pressed-key set (spec §4.A "callers must
// cache results per event").
type translationCache struct {
	translator KeyTranslator
	scancodes  map[uint32]uint32
	unicode    map[uint32]string
}

func newTranslationCache(t KeyTranslator) *translationCache {
	return &translationCache{
		translator: t,
		scancodes:  make(map[uint32]uint32),
		unicode:    make(map[uint32]string),
	}
}

func (c *translationCache) scancodeOf(vk uint32) uint32 {
	if sc, ok := c.scancodes[vk]; ok {
		return sc
	}
	sc := c.translator.ToScancode(vk)
	c.scancodes[vk] = sc
	return sc
}

func (c *translationCache) unicodeOf(vk uint32) string {
	if s, ok := c.unicode[vk]; ok {
		return s
	}
	s, _ := c.translator.ToUnicodeLocalized(vk)
	c.unicode[vk] = s
	return s
}

func (c *translationCache) anyScancodeMatches(pressed *PressedKeys, sc uint32) bool {
	for _, vk := range pressed.Keys() {
		if c.scancodeOf(vk) == sc {
			return true
		}
	}
	return false
}

func (c *translationCache) anyUnicodeMatches(pressed *PressedKeys, s string) bool {
	for _, vk := range pressed.Keys() {
		if c.unicodeOf(vk) == s {
			return true
		}
	}
	return false
}
