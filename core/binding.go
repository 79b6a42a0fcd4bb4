package core

import "sync"

// TriggeredEvent is delivered to a binding's on-press/on-release
// worker when its chord transitions (spec §3 Action/TriggeredEvent).
// Both snapshot fields must not be mutated by the receiver, and remain
// valid after the hook callback returns.
//
// On a press event, Pressed is the full pressed-key set that satisfied
// the chord. On a release event, Pressed is the post-removal pressed
// set — whichever of the chord's keys the user is still physically
// holding.
type TriggeredEvent struct {
	Chord   Chord
	Pressed *PressedKeys

	// Repeat is true when this press arrives while the binding was
	// already triggered (OS key-repeat). Meaningless on a release
	// event. See spec §4.D activation sequence step 1.
	Repeat bool
}

// Binding is one configured chord plus its press/release actions
// (spec §3). Ordered is stored but never consulted by matching — see
// DESIGN.md's Open Question resolution.
type Binding struct {
	Chord     Chord
	OnPress   chan<- TriggeredEvent
	OnRelease chan<- TriggeredEvent
	Ordered   bool

	// Triggered is monotone within a single press/release cycle: a
	// second matching press while already triggered must not flip it
	// again (it re-fires OnPress without changing this flag), and a
	// release when not triggered must not fire OnRelease.
	Triggered bool

	// releaseMu guards releasedKeys, written by the press worker and
	// read by the release worker — the only state shared between a
	// binding's two workers (spec §4.D deactivation step 2 needs to
	// know what the activation sequence released).
	releaseMu    sync.Mutex
	releasedKeys []uint32
}

// setReleasedKeys records which virtual keys the activation sequence
// released synthetically, in the order they were released.
func (b *Binding) setReleasedKeys(vks []uint32) {
	b.releaseMu.Lock()
	b.releasedKeys = vks
	b.releaseMu.Unlock()
}

// releasedKeysHeld returns the subset of the recorded released keys
// that still appear in stillHeld, in their original release order.
func (b *Binding) releasedKeysHeld(stillHeld *PressedKeys) []uint32 {
	b.releaseMu.Lock()
	defer b.releaseMu.Unlock()
	restore := make([]uint32, 0, len(b.releasedKeys))
	for _, vk := range b.releasedKeys {
		if stillHeld.Contains(vk) {
			restore = append(restore, vk)
		}
	}
	return restore
}

func (b *Binding) send(ch chan<- TriggeredEvent, evt TriggeredEvent, log func(string, ...any)) {
	select {
	case ch <- evt:
	default:
		// Channel send failure (full buffer / no receiver) is logged
		// and swallowed per spec §7 — the event is dropped, not
		// retried, and the rest of the system keeps running.
		if log != nil {
			log("worker channel send failed, dropping event", "chord", b.Chord.String())
		}
	}
}
