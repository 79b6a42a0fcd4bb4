package core

// Virtual key codes and the human name table used by the config
// chord grammar (spec §6: "a multi-character alphanumeric name ...
// resolved via a name table; unknown names are a fatal startup
// error"). Grounded on the teacher's core/keyboard_hook.go VK_*
// constants and original_source's win/keyboard_vk.rs KNOWN_VIRTUAL_KEY
// enum (referenced by name in hotkeymanager.rs/keybindings.rs but not
// itself present in the retrieval pack — reconstructed here from the
// VK codes those files do reference directly).
const (
	VK_BACK    = 0x08
	VK_TAB     = 0x09
	VK_RETURN  = 0x0D
	VK_SHIFT   = 0x10
	VK_CONTROL = 0x11
	VK_MENU    = 0x12 // Alt
	VK_CAPITAL = 0x14
	VK_ESCAPE  = 0x1B
	VK_SPACE   = 0x20

	VK_LSHIFT   = 0xA0
	VK_RSHIFT   = 0xA1
	VK_LCONTROL = 0xA2
	VK_RCONTROL = 0xA3
	VK_LMENU    = 0xA4
	VK_RMENU    = 0xA5

	VK_LWIN = 0x5B
	VK_RWIN = 0x5C

	VK_A = 0x41
	VK_E = 0x45
	VK_Z = 0x5A
	VK_0 = 0x30
	VK_9 = 0x39

	VK_OEM_1      = 0xBA
	VK_OEM_2      = 0xBF
	VK_OEM_3      = 0xC0
	VK_OEM_4      = 0xDB
	VK_OEM_5      = 0xDC
	VK_OEM_6      = 0xDD
	VK_OEM_7      = 0xDE
	VK_OEM_PLUS   = 0xBB
	VK_OEM_COMMA  = 0xBC
	VK_OEM_MINUS  = 0xBD
	VK_OEM_PERIOD = 0xBE
)

// vkNames maps the lowercase human token (as it appears in a chord
// string, e.g. "lalt", "lshift", "menu") to its virtual key code.
// Unsided "shift"/"menu"/"control" entries are the ones subject to
// modifier fanout in the config package.
var vkNames = map[string]uint32{
	"shift":   VK_SHIFT,
	"lshift":  VK_LSHIFT,
	"rshift":  VK_RSHIFT,
	"control": VK_CONTROL,
	"ctrl":    VK_CONTROL,
	"lctrl":   VK_LCONTROL,
	"rctrl":   VK_RCONTROL,
	"menu":    VK_MENU,
	"alt":     VK_MENU,
	"lalt":    VK_LMENU,
	"ralt":    VK_RMENU,
	"lwin":    VK_LWIN,
	"rwin":    VK_RWIN,
	"win":     VK_LWIN,

	"tab":      VK_TAB,
	"back":     VK_BACK,
	"return":   VK_RETURN,
	"enter":    VK_RETURN,
	"escape":   VK_ESCAPE,
	"esc":      VK_ESCAPE,
	"space":    VK_SPACE,
	"capital":  VK_CAPITAL,
	"capslock": VK_CAPITAL,
}

var vkDisplayNames = func() map[uint32]string {
	m := make(map[uint32]string, len(vkNames))
	// Prefer the sided/canonical spelling for display when more than
	// one name maps to the same code (e.g. "menu" and "alt" both map
	// to VK_MENU; "menu" wins because spec examples use it).
	order := []string{
		"lshift", "rshift", "shift", "lctrl", "rctrl", "control",
		"lalt", "ralt", "menu", "lwin", "rwin",
		"tab", "back", "return", "escape", "space", "capital",
	}
	for _, name := range order {
		if vk, ok := vkNames[name]; ok {
			if _, taken := m[vk]; !taken {
				m[vk] = name
			}
		}
	}
	return m
}()

// VKByName resolves a config chord token to a virtual key code. The
// second return value is false for unknown names — the config loader
// treats that as a fatal startup error per spec §7.
func VKByName(name string) (uint32, bool) {
	vk, ok := vkNames[name]
	return vk, ok
}

// VKName returns the display name for a virtual key code, if known.
func VKName(vk uint32) (string, bool) {
	name, ok := vkDisplayNames[vk]
	return name, ok
}

// IsUnsidedModifier reports whether vk is one of the three unsided
// modifier codes subject to modifier fanout (spec §6 "Expansion").
func IsUnsidedModifier(vk uint32) (left, right uint32, yes bool) {
	switch vk {
	case VK_SHIFT:
		return VK_LSHIFT, VK_RSHIFT, true
	case VK_MENU:
		return VK_LMENU, VK_RMENU, true
	case VK_CONTROL:
		return VK_LCONTROL, VK_RCONTROL, true
	default:
		return 0, 0, false
	}
}

// IsMetaOrAlt reports whether vk is one of the meta keys the matcher's
// active-chord guard singles out (spec §4.C step 1, §GLOSSARY "Meta
// key"). Grounded on original_source/src/win/mod.rs::is_meta_or_alt.
func IsMetaOrAlt(vk uint32) bool {
	return vk == VK_LMENU || vk == VK_RMENU || vk == VK_LWIN || vk == VK_RWIN
}
