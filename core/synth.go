package core

import (
	"log/slog"
	"unsafe"
)

// Synthesis & Suppression (spec §4.D): turns a matched chord into
// OS-level input via SendInput, tagging every synthetic event with
// sentinelExtraInfo so the low-level hook recognizes and does not
// re-process it. Adapted from the teacher's core/text_sender.go
// INPUT/KEYBDINPUT plumbing; the delay-tiered "injection method"
// selection (fast/slow/extra-slow per foreground app) belonged to a
// text-replacement feature this spec does not have and was dropped —
// see DESIGN.md.

const (
	inputKeyboard    = 1
	keyeventfKeyUp   = 0x0002
	keyeventfUnicode = 0x0004
)

// input and keybdinput mirror the OS INPUT/KEYBDINPUT layout exactly
// (the trailing padding makes INPUT 40 bytes on amd64, matching the
// union's largest member).
type input struct {
	Type uint32
	Ki   keybdinput
	_    [8]byte
}

type keybdinput struct {
	WVk         uint16
	WScan       uint16
	DwFlags     uint32
	Time        uint32
	DwExtraInfo uintptr
}

var inputSize = unsafe.Sizeof(input{})

// Synthesizer submits tagged synthetic key input. SendInput is a
// stateless syscall safe to call from multiple goroutines at once, so
// a single Synthesizer is shared by every binding's workers.
type Synthesizer struct {
	log *slog.Logger
}

// NewSynthesizer constructs a Synthesizer.
func NewSynthesizer(log *slog.Logger) *Synthesizer {
	if log == nil {
		log = slog.Default()
	}
	return &Synthesizer{log: log}
}

func vkEvent(vk uint32, up bool) input {
	flags := uint32(0)
	if up {
		flags |= keyeventfKeyUp
	}
	return input{Type: inputKeyboard, Ki: keybdinput{WVk: uint16(vk), DwFlags: flags, DwExtraInfo: sentinelExtraInfo}}
}

func runeEvent(r rune, up bool) input {
	flags := uint32(keyeventfUnicode)
	if up {
		flags |= keyeventfKeyUp
	}
	return input{Type: inputKeyboard, Ki: keybdinput{WScan: uint16(r), DwFlags: flags, DwExtraInfo: sentinelExtraInfo}}
}

func (s *Synthesizer) send(inputs []input) {
	if len(inputs) == 0 {
		return
	}
	sent, _, err := procSendInput.Call(
		uintptr(len(inputs)),
		uintptr(unsafe.Pointer(&inputs[0])),
		uintptr(inputSize),
	)
	if int(sent) != len(inputs) {
		s.log.Error("SendInput delivered fewer events than requested", "requested", len(inputs), "sent", sent, "err", err)
	}
}

// activate runs the spec §4.D activation sequence for one binding.
// evt.Repeat true means the chord was already triggered (OS
// key-repeat): only the character press is (re-)emitted. Otherwise
// every currently-held key is released, in reverse press order, and
// the character press follows in the same batch.
func (s *Synthesizer) activate(b *Binding, evt TriggeredEvent, output rune) {
	if evt.Repeat {
		s.send([]input{runeEvent(output, false)})
		return
	}

	vks := evt.Pressed.Keys()
	released := make([]uint32, len(vks))
	copy(released, vks)
	for i, j := 0, len(released)-1; i < j; i, j = i+1, j-1 {
		released[i], released[j] = released[j], released[i]
	}
	b.setReleasedKeys(released)

	inputs := make([]input, 0, len(released)+1)
	for _, vk := range released {
		inputs = append(inputs, vkEvent(vk, true))
	}
	inputs = append(inputs, runeEvent(output, false))
	s.send(inputs)
}

// deactivate runs the spec §4.D deactivation sequence: the character
// release, then a restore-press for whichever of the keys activate
// synthetically released are still physically held.
func (s *Synthesizer) deactivate(b *Binding, evt TriggeredEvent, output rune) {
	restore := b.releasedKeysHeld(evt.Pressed)

	inputs := make([]input, 0, len(restore)+1)
	inputs = append(inputs, runeEvent(output, true))
	for _, vk := range restore {
		inputs = append(inputs, vkEvent(vk, false))
	}
	s.send(inputs)
}

// StartBinding registers chord with matcher and spawns the press and
// release worker goroutines that carry out the substitution — synthesis
// never happens inline on the hook thread (Design Note §9). output is
// the Unicode character the chord emits.
func StartBinding(matcher *Matcher, chord Chord, output rune, synth *Synthesizer, log *slog.Logger) {
	if log == nil {
		log = slog.Default()
	}
	b, press, release := matcher.AddBinding(chord, false)

	go func() {
		for evt := range press {
			log.Debug("chord triggered", "chord", evt.Chord.String(), "output", string(output), "repeat", evt.Repeat)
			synth.activate(b, evt, output)
		}
	}()
	go func() {
		for evt := range release {
			log.Debug("chord released", "chord", evt.Chord.String())
			synth.deactivate(b, evt, output)
		}
	}()
}
