// Package config loads the INI-style chord configuration (spec §6)
// and expands it into the concrete core.Chord/output pairs
// cmd/chordkeyd wires into a core.Matcher. Grounded on
// original_source/src/keybindings.rs (parse_binding, bindings_from_map,
// expand_modifiers) — this is the external configuration loader
// spec.md treats as a collaborator, fully specified in spec §6.
package config

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gopkg.in/ini.v1"

	"chordkey/core"
)

// Binding is one fully-expanded chord/output pair, ready to hand to
// core.StartBinding.
type Binding struct {
	Chord  core.Chord
	Output rune
}

// Load reads path, parses every section, and returns the fully
// expanded set of bindings (after modifier fanout and case fanout).
// Any parse error is fatal per spec §7 — the caller should abort
// startup on a non-nil error.
func Load(path string) ([]Binding, error) {
	file, err := ini.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load config %q: %w", path, err)
	}

	caser := cases.Upper(language.Und)
	var out []Binding

	for _, section := range file.Sections() {
		name := section.Name()
		if name == ini.DefaultSection {
			continue
		}
		runes := []rune(name)
		if len(runes) != 1 {
			return nil, fmt.Errorf("section %q: name must be exactly one character", name)
		}
		output := runes[0]

		for _, key := range section.Keys() {
			chord, err := parseChord(key.Name())
			if err != nil {
				return nil, fmt.Errorf("section %q: %w", name, err)
			}
			hasValue := key.Value() != ""

			for _, variant := range expandModifiers(chord) {
				out = append(out, Binding{Chord: variant, Output: output})

				if hasValue || !unicode.IsLower(output) {
					continue
				}
				upperRunes := []rune(caser.String(string(output)))
				if len(upperRunes) != 1 || upperRunes[0] == output {
					continue
				}
				upperChord := make(core.Chord, 0, len(variant)+1)
				upperChord = append(upperChord, core.VirtualKey(core.VK_SHIFT))
				upperChord = append(upperChord, variant...)
				out = append(out, Binding{Chord: upperChord, Output: upperRunes[0]})
			}
		}
	}
	return out, nil
}

// parseChord parses one "+"-joined chord string (spec §6 grammar).
func parseChord(s string) (core.Chord, error) {
	parts := strings.Split(s, "+")
	chord := make(core.Chord, 0, len(parts))
	for _, tok := range parts {
		key, err := parseToken(tok)
		if err != nil {
			return nil, err
		}
		chord = append(chord, key)
	}
	if len(chord) == 0 {
		return nil, fmt.Errorf("empty chord")
	}
	return chord, nil
}

// parseToken resolves one chord token to a Key: "0x"-prefixed hex is a
// Scancode, a single character is a Character, anything else is
// resolved through the virtual-key name table — an unknown name is a
// fatal startup error (spec §6, §7).
func parseToken(tok string) (core.Key, error) {
	if strings.HasPrefix(tok, "0x") {
		val, err := strconv.ParseUint(tok[2:], 16, 32)
		if err != nil {
			return core.Key{}, fmt.Errorf("invalid scancode token %q: %w", tok, err)
		}
		return core.ScancodeKey(uint32(val)), nil
	}
	if runes := []rune(tok); len(runes) == 1 {
		return core.Character(tok), nil
	}
	vk, ok := core.VKByName(strings.ToLower(tok))
	if !ok {
		return core.Key{}, fmt.Errorf("unknown key name %q", tok)
	}
	return core.VirtualKey(vk), nil
}

// expandModifiers performs the modifier fanout of spec §6: every
// unsided modifier occurrence is replaced by its left/right pair,
// producing the full 2^N cross product for N unsided modifiers.
func expandModifiers(chord core.Chord) []core.Chord {
	variants := []core.Chord{append(core.Chord(nil), chord...)}
	for i, k := range chord {
		if k.Kind != core.KindVirtualKey {
			continue
		}
		left, right, ok := core.IsUnsidedModifier(k.VK)
		if !ok {
			continue
		}
		next := make([]core.Chord, 0, len(variants)*2)
		for _, v := range variants {
			l := append(core.Chord(nil), v...)
			l[i] = core.VirtualKey(left)
			r := append(core.Chord(nil), v...)
			r[i] = core.VirtualKey(right)
			next = append(next, l, r)
		}
		variants = next
	}
	return variants
}
