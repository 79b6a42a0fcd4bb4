package core

import "fmt"

// Port of the remapping core from the original HotkeyManager/KeyManager
// (Rust: hotkeymanager.rs, keymanager.rs). Keeps the same shapes the
// source used — key variant, ordered chord, length-bucketed table —
// translated into Go's idioms: tagged struct instead of enum, slice
// instead of IndexSet, channels instead of mpsc.

// KeyKind discriminates the three heterogeneous key variants a chord
// entry can be.
type KeyKind uint8

const (
	KindVirtualKey KeyKind = iota
	KindCharacter
	KindScancode
)

// Key is one entry of a Chord. Equality is structural: same Kind and
// same payload field for that kind.
type Key struct {
	Kind     KeyKind
	VK       uint32 // valid when Kind == KindVirtualKey
	Char     string // valid when Kind == KindCharacter
	Scancode uint32 // valid when Kind == KindScancode
}

func VirtualKey(vk uint32) Key   { return Key{Kind: KindVirtualKey, VK: vk} }
func Character(s string) Key     { return Key{Kind: KindCharacter, Char: s} }
func ScancodeKey(sc uint32) Key  { return Key{Kind: KindScancode, Scancode: sc} }

func (k Key) String() string {
	switch k.Kind {
	case KindVirtualKey:
		if name, ok := VKName(k.VK); ok {
			return name
		}
		return fmt.Sprintf("VK(0x%X)", k.VK)
	case KindCharacter:
		return k.Char
	case KindScancode:
		return fmt.Sprintf("0x%x", k.Scancode)
	default:
		return "?"
	}
}

// Chord is an ordered sequence of Key. Order is stored but matching is
// order-insensitive (see spec's Open Questions — the `ordered` flag on
// Binding is stored but never consulted).
//
// Invariant: len(Chord) >= 1.
type Chord []Key

func (c Chord) String() string {
	s := ""
	for i, k := range c {
		if i > 0 {
			s += "+"
		}
		s += k.String()
	}
	return s
}

// HasVirtualKey reports whether the chord contains the exact virtual
// key vk.
func (c Chord) HasVirtualKey(vk uint32) bool {
	for _, k := range c {
		if k.Kind == KindVirtualKey && k.VK == vk {
			return true
		}
	}
	return false
}
