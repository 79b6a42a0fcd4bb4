package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chordkey/core"
)

func TestParseToken(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    core.Key
		wantErr bool
	}{
		{"scancode hex", "0x1e", core.ScancodeKey(0x1e), false},
		{"single char", "e", core.Character("e"), false},
		{"unicode char", "є", core.Character("є"), false},
		{"named vk lowercase", "lalt", core.VirtualKey(core.VK_LMENU), false},
		{"named vk mixed case", "LAlt", core.VirtualKey(core.VK_LMENU), false},
		{"unknown name", "banana", core.Key{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseToken(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseChord(t *testing.T) {
	chord, err := parseChord("lalt+e")
	require.NoError(t, err)
	assert.Equal(t, core.Chord{core.VirtualKey(core.VK_LMENU), core.Character("e")}, chord)
}

func TestParseChordRejectsEmpty(t *testing.T) {
	_, err := parseChord("")
	assert.Error(t, err)
}

func TestExpandModifiersSingleUnsidedModifier(t *testing.T) {
	chord := core.Chord{core.VirtualKey(core.VK_MENU), core.Character("e")}
	variants := expandModifiers(chord)

	require.Len(t, variants, 2)
	assert.Contains(t, variants, core.Chord{core.VirtualKey(core.VK_LMENU), core.Character("e")})
	assert.Contains(t, variants, core.Chord{core.VirtualKey(core.VK_RMENU), core.Character("e")})
}

func TestExpandModifiersCrossProductOfTwoUnsidedModifiers(t *testing.T) {
	chord := core.Chord{core.VirtualKey(core.VK_CONTROL), core.VirtualKey(core.VK_SHIFT), core.Character("e")}
	variants := expandModifiers(chord)

	require.Len(t, variants, 4)
	assert.Contains(t, variants, core.Chord{core.VirtualKey(core.VK_LCONTROL), core.VirtualKey(core.VK_LSHIFT), core.Character("e")})
	assert.Contains(t, variants, core.Chord{core.VirtualKey(core.VK_LCONTROL), core.VirtualKey(core.VK_RSHIFT), core.Character("e")})
	assert.Contains(t, variants, core.Chord{core.VirtualKey(core.VK_RCONTROL), core.VirtualKey(core.VK_LSHIFT), core.Character("e")})
	assert.Contains(t, variants, core.Chord{core.VirtualKey(core.VK_RCONTROL), core.VirtualKey(core.VK_RSHIFT), core.Character("e")})
}

func TestExpandModifiersNoUnsidedModifierIsIdentity(t *testing.T) {
	chord := core.Chord{core.VirtualKey(core.VK_LMENU), core.Character("e")}
	variants := expandModifiers(chord)

	require.Len(t, variants, 1)
	assert.Equal(t, chord, variants[0])
}

func TestLoadExpandsModifiersAndUppercaseVariant(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "chordkey.ini")
	writeFile(t, path, "[є]\nlalt+e=\n")

	bindings, err := Load(path)
	require.NoError(t, err)

	require.Len(t, bindings, 2)
	assert.Equal(t, core.Chord{core.VirtualKey(core.VK_LMENU), core.Character("e")}, bindings[0].Chord)
	assert.Equal(t, 'є', bindings[0].Output)

	assert.Equal(t, 'Є', bindings[1].Output)
	assert.Equal(t, core.VirtualKey(core.VK_SHIFT), bindings[1].Chord[0])
	assert.Equal(t, bindings[0].Chord, core.Chord(bindings[1].Chord[1:]))
}

func TestLoadSkipsUppercaseVariantWhenValueExplicit(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "chordkey.ini")
	writeFile(t, path, "[є]\nlalt+e=noop\n")

	bindings, err := Load(path)
	require.NoError(t, err)
	assert.Len(t, bindings, 1)
}

func TestLoadSkipsUppercaseVariantForNonLetterOutput(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "chordkey.ini")
	writeFile(t, path, "[!]\nlalt+1=\n")

	bindings, err := Load(path)
	require.NoError(t, err)
	assert.Len(t, bindings, 1)
}

func TestLoadRejectsMultiCharacterSectionName(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "chordkey.ini")
	writeFile(t, path, "[ab]\nlalt+e=\n")

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadRejectsUnknownKeyName(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "chordkey.ini")
	writeFile(t, path, "[є]\nlalt+banana=\n")

	_, err := Load(path)
	assert.Error(t, err)
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}
