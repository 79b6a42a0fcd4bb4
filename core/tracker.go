package core

import (
	"log/slog"
	"sync"
)

// Phase distinguishes a press from a release event. Closed sum type
// per Design Note §9, rather than an interface{} + downcast the
// original Rust source used (KeyboardHookMetadata::Press/Release).
type Phase uint8

const (
	Press Phase = iota
	Release
)

func (p Phase) String() string {
	if p == Press {
		return "press"
	}
	return "release"
}

// PressedKeys is an insertion-ordered set of virtual keys, mirroring
// the Rust source's IndexSet<VIRTUAL_KEY> (original_source's
// hotkeymanager.rs). Order matters for debugging and for restore-
// sequence ordering on release (spec §3).
type PressedKeys struct {
	order []uint32
	index map[uint32]int
}

// NewPressedKeys returns an empty set with room for capacity keys.
func NewPressedKeys(capacity int) *PressedKeys {
	return &PressedKeys{
		order: make([]uint32, 0, capacity),
		index: make(map[uint32]int, capacity),
	}
}

// Clone returns an independent copy, used to snapshot state into a
// HookMetadata — the set must not be mutated after the event it
// describes has fired (spec §3 "Immutable once constructed").
func (p *PressedKeys) Clone() *PressedKeys {
	clone := &PressedKeys{
		order: append([]uint32(nil), p.order...),
		index: make(map[uint32]int, len(p.index)),
	}
	for k, v := range p.index {
		clone.index[k] = v
	}
	return clone
}

// Insert adds vk if absent. Re-inserting an already-present key is
// allowed (OS key-repeat produces this) and is a no-op (spec §4.B
// invariant: "insertion is idempotent").
func (p *PressedKeys) Insert(vk uint32) {
	if _, ok := p.index[vk]; ok {
		return
	}
	p.index[vk] = len(p.order)
	p.order = append(p.order, vk)
}

// Remove deletes vk if present, returning whether it was present.
// Removing an absent key is allowed and returns false (spec §4.B
// invariant: "removal of an absent key is allowed").
func (p *PressedKeys) Remove(vk uint32) bool {
	i, ok := p.index[vk]
	if !ok {
		return false
	}
	delete(p.index, vk)
	p.order = append(p.order[:i], p.order[i+1:]...)
	for j := i; j < len(p.order); j++ {
		p.index[p.order[j]] = j
	}
	return true
}

// Contains reports whether vk is currently held.
func (p *PressedKeys) Contains(vk uint32) bool {
	_, ok := p.index[vk]
	return ok
}

// Len returns the number of currently-held keys.
func (p *PressedKeys) Len() int {
	return len(p.order)
}

// Keys returns the held keys in insertion order. The caller must not
// mutate the returned slice.
func (p *PressedKeys) Keys() []uint32 {
	return p.order
}

// HookMetadata describes one physical or injected keyboard event.
// Immutable once constructed (spec §3).
type HookMetadata struct {
	Phase         Phase
	Key           uint32
	Injected      bool
	Pressed       *PressedKeys // state after applying this event
	PressedBefore *PressedKeys // state prior to applying this event
}

// Hook is a registered observer on the Tracker. It receives the event
// metadata and returns whether the event should be suppressed
// (true = do not forward to applications). An error is logged and
// treated as false (spec §4.B / §7).
type Hook func(meta *HookMetadata) (bool, error)

// Tracker is the single process-wide pressed-key tracker (spec §4.B).
// Guarded by a read-write lock; every event is write-acquired so hook
// callbacks run serialized with respect to the pressed-key set.
type Tracker struct {
	mu      sync.RWMutex
	pressed *PressedKeys
	hooks   []Hook
	log     *slog.Logger
}

// NewTracker constructs an explicit, non-lazy Tracker (Design Note §9
// prefers explicit construction + reference-passing over a lazily
// initialized global).
func NewTracker(log *slog.Logger) *Tracker {
	if log == nil {
		log = slog.Default()
	}
	return &Tracker{
		pressed: NewPressedKeys(20),
		log:     log,
	}
}

// RegisterHook appends a hook, invoked in registration order on every
// event until one returns true.
func (t *Tracker) RegisterHook(h Hook) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.hooks = append(t.hooks, h)
}

// OnPress records vk as held and dispatches a Press event to every
// registered hook in order, stopping at the first one that returns
// true. Returns that value, or false if none suppressed it.
func (t *Tracker) OnPress(vk uint32, injected bool) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	before := t.pressed.Clone()
	t.pressed.Insert(vk)
	meta := &HookMetadata{
		Phase:         Press,
		Key:           vk,
		Injected:      injected,
		Pressed:       t.pressed.Clone(),
		PressedBefore: before,
	}
	return t.dispatch(meta)
}

// OnRelease removes vk from the held set (preserving the pre-removal
// snapshot as PressedBefore) and dispatches a Release event the same
// way OnPress does.
func (t *Tracker) OnRelease(vk uint32, injected bool) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	before := t.pressed.Clone()
	t.pressed.Remove(vk)
	meta := &HookMetadata{
		Phase:         Release,
		Key:           vk,
		Injected:      injected,
		Pressed:       t.pressed.Clone(),
		PressedBefore: before,
	}
	return t.dispatch(meta)
}

// dispatch must be called with t.mu held.
func (t *Tracker) dispatch(meta *HookMetadata) bool {
	for i, hook := range t.hooks {
		suppress, err := hook(meta)
		if err != nil {
			t.log.Error("hook invocation failed", "hook_index", i, "phase", meta.Phase.String(), "err", err)
			continue
		}
		if suppress {
			return true
		}
	}
	return false
}

// Snapshot returns a copy of the currently-held keys. Intended for
// diagnostics; the hot path uses the snapshots already carried on
// HookMetadata.
func (t *Tracker) Snapshot() *PressedKeys {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.pressed.Clone()
}
