package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTranslator struct {
	scancodes map[uint32]uint32
	unicode   map[uint32]string
}

func (f fakeTranslator) ToScancode(vk uint32) uint32 {
	return f.scancodes[vk]
}

func (f fakeTranslator) ToUnicodeLocalized(vk uint32) (string, bool) {
	s, ok := f.unicode[vk]
	return s, ok
}

func recvWithin(t *testing.T, ch <-chan TriggeredEvent, d time.Duration) TriggeredEvent {
	t.Helper()
	select {
	case evt := <-ch:
		return evt
	case <-time.After(d):
		t.Fatal("timed out waiting for triggered event")
		return TriggeredEvent{}
	}
}

func assertNoEvent(t *testing.T, ch <-chan TriggeredEvent, d time.Duration) {
	t.Helper()
	select {
	case evt := <-ch:
		t.Fatalf("unexpected event: %+v", evt)
	case <-time.After(d):
	}
}

func TestMatcher_PressMatchesExactChord(t *testing.T) {
	tr := NewTracker(nil)
	m := NewMatcher(nil)
	tr.RegisterHook(m.Hook())

	chord := Chord{VirtualKey(VK_LMENU), VirtualKey(VK_E)}
	_, press, release := m.AddBinding(chord, false)

	suppressed := tr.OnPress(VK_LMENU, false)
	assert.False(t, suppressed)
	assertNoEvent(t, press, 10*time.Millisecond)

	suppressed = tr.OnPress(VK_E, false)
	assert.True(t, suppressed)
	evt := recvWithin(t, press, time.Second)
	assert.Equal(t, chord.String(), evt.Chord.String())
	assert.False(t, evt.Repeat)

	suppressed = tr.OnRelease(VK_E, false)
	assert.True(t, suppressed)
	recvWithin(t, release, time.Second)
}

func TestMatcher_ReleaseOfCharacterKindMemberDeactivatesBinding(t *testing.T) {
	// Regression test: the spec's flagship chord is {VirtualKey(lalt),
	// Character("e")}. Releasing the physical 'e' key must reset
	// Triggered and fire OnRelease even though the chord has no
	// KindVirtualKey entry for 'e' to look up directly.
	tr := NewTracker(nil)
	m := NewMatcherWithTranslator(nil, fakeTranslator{
		unicode: map[uint32]string{VK_E: "e"},
	})
	tr.RegisterHook(m.Hook())

	chord := Chord{VirtualKey(VK_LMENU), Character("e")}
	b, press, release := m.AddBinding(chord, false)

	require.False(t, tr.OnPress(VK_LMENU, false))
	suppressed := tr.OnPress(VK_E, false)
	assert.True(t, suppressed)
	recvWithin(t, press, time.Second)
	assert.True(t, b.Triggered)

	suppressed = tr.OnRelease(VK_E, false)
	assert.True(t, suppressed)
	evt := recvWithin(t, release, time.Second)
	assert.False(t, b.Triggered)
	assert.Equal(t, chord.String(), evt.Chord.String())
}

func TestMatcher_LengthMismatchNeverFires(t *testing.T) {
	tr := NewTracker(nil)
	m := NewMatcher(nil)
	tr.RegisterHook(m.Hook())

	chord := Chord{VirtualKey(VK_LMENU), VirtualKey(VK_E)}
	_, press, _ := m.AddBinding(chord, false)

	suppressed := tr.OnPress(VK_A, false)
	assert.False(t, suppressed)
	assertNoEvent(t, press, 10*time.Millisecond)
}

func TestMatcher_RepeatPressWhileTriggeredRefires(t *testing.T) {
	tr := NewTracker(nil)
	m := NewMatcher(nil)
	tr.RegisterHook(m.Hook())

	chord := Chord{VirtualKey(VK_E)}
	_, press, _ := m.AddBinding(chord, false)

	require.True(t, tr.OnPress(VK_E, false))
	first := recvWithin(t, press, time.Second)
	assert.False(t, first.Repeat)

	require.True(t, tr.OnPress(VK_E, false))
	second := recvWithin(t, press, time.Second)
	assert.True(t, second.Repeat)
}

func TestMatcher_MetaKeyGuardSuppressesRepeatOnlyWhenTriggered(t *testing.T) {
	m := NewMatcher(nil)
	hook := m.Hook()

	pressed := NewPressedKeys(2)
	pressed.Insert(VK_LMENU)
	before := NewPressedKeys(2)
	before.Insert(VK_LMENU)

	// No binding is triggered yet: a meta-key repeat must not be
	// suppressed by the guard (it simply won't match anything).
	suppressed, err := hook(&HookMetadata{Phase: Press, Key: VK_LMENU, Pressed: pressed, PressedBefore: before})
	require.NoError(t, err)
	assert.False(t, suppressed)
}

func TestMatcher_MetaKeyGuardSuppressesInjectedReleaseBounce(t *testing.T) {
	m := NewMatcher(nil)
	_, _, _ = m.AddBinding(Chord{VirtualKey(VK_LMENU), VirtualKey(VK_E)}, false)
	m.table[2][0].Triggered = true

	pressed := NewPressedKeys(1)
	before := NewPressedKeys(2)
	before.Insert(VK_LMENU)
	before.Insert(VK_E)

	hook := m.Hook()
	suppressed, err := hook(&HookMetadata{
		Phase: Release, Key: VK_LMENU, Injected: true,
		Pressed: pressed, PressedBefore: before,
	})
	require.NoError(t, err)
	assert.True(t, suppressed)
}

func TestMatcher_ChordSatisfied_OverlappingSatisfaction(t *testing.T) {
	// A single pressed key can satisfy both a Character and a Scancode
	// chord entry; this is an accepted limitation (spec §9).
	m := NewMatcherWithTranslator(nil, fakeTranslator{
		scancodes: map[uint32]uint32{VK_E: 0x12},
		unicode:   map[uint32]string{VK_E: "e"},
	})
	chord := Chord{Character("e"), ScancodeKey(0x12)}

	pressed := NewPressedKeys(1)
	pressed.Insert(VK_E)

	assert.True(t, m.chordSatisfied(chord, pressed, newTranslationCache(m.translator)))
}

func TestMatcher_ScancodeMatchIsLayoutIndependent(t *testing.T) {
	m := NewMatcherWithTranslator(nil, fakeTranslator{
		scancodes: map[uint32]uint32{VK_E: 0x12},
	})
	chord := Chord{ScancodeKey(0x12)}

	pressed := NewPressedKeys(1)
	pressed.Insert(VK_E)

	assert.True(t, m.chordSatisfied(chord, pressed, newTranslationCache(m.translator)))
}
