package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVkEventFlagsAndSentinel(t *testing.T) {
	down := vkEvent(VK_LMENU, false)
	assert.Equal(t, uint32(0), down.Ki.DwFlags)
	assert.Equal(t, sentinelExtraInfo, down.Ki.DwExtraInfo)
	assert.Equal(t, uint16(VK_LMENU), down.Ki.WVk)

	up := vkEvent(VK_LMENU, true)
	assert.Equal(t, uint32(keyeventfKeyUp), up.Ki.DwFlags)
}

func TestRuneEventCarriesUnicodeFlagAndCodeUnit(t *testing.T) {
	down := runeEvent('є', false)
	assert.Equal(t, uint32(keyeventfUnicode), down.Ki.DwFlags)
	assert.Equal(t, uint16('є'), down.Ki.WScan)
	assert.Equal(t, uint16(0), down.Ki.WVk)

	up := runeEvent('є', true)
	assert.Equal(t, uint32(keyeventfUnicode|keyeventfKeyUp), up.Ki.DwFlags)
}

func TestBinding_ReleasedKeysHeldFiltersToStillHeld(t *testing.T) {
	b := &Binding{Chord: Chord{VirtualKey(VK_LMENU), VirtualKey(VK_E)}}
	b.setReleasedKeys([]uint32{VK_E, VK_LMENU})

	stillHeld := NewPressedKeys(1)
	stillHeld.Insert(VK_LMENU)

	restore := b.releasedKeysHeld(stillHeld)
	assert.Equal(t, []uint32{VK_LMENU}, restore)
}

func TestBinding_ReleasedKeysHeldEmptyWhenNothingHeld(t *testing.T) {
	b := &Binding{}
	b.setReleasedKeys([]uint32{VK_E, VK_LMENU})

	restore := b.releasedKeysHeld(NewPressedKeys(0))
	assert.Empty(t, restore)
}
