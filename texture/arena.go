package texture

import (
	"github.com/google/uuid"

	"github.com/retrofx/slangchain/core"
)

// Handle is an identifier index into an Arena. Spec §9 Design Notes asks
// for exactly this in place of the original's pointer-to-pointer texture
// slots: bindings store a Handle, the arena resolves it in O(1), and a
// feedback swap becomes an index swap rather than a pointer mutation.
type Handle int

// Invalid is the zero-value-safe "no texture bound" handle.
const Invalid Handle = Handle(core.InvalidIndex)

// Descriptor is the arena-owned metadata for one texture slot. The actual
// GPU resource lives behind gpu.Device; Arena only tracks the bookkeeping
// the core needs to reason about sizing, reallocation and feedback swap.
type Descriptor struct {
	Name    string
	Width   int
	Height  int
	Format  PixelFormat
	Mipmap  bool
	Wrap    WrapMode
	Filter  FilterMode
	Cleared bool
}

// Arena is a growable, append-or-reuse store of Descriptors, indexed
// by Handle. It owns no GPU resources directly; gpu.Device implementations
// key their own resource tables by the same Handle.
type Arena struct {
	slots []*Descriptor
	free  []Handle
}

// NewArena builds an empty arena. capacity is a hint, not a hard limit.
func NewArena(capacity int) *Arena {
	return &Arena{
		slots: make([]*Descriptor, 0, capacity),
	}
}

// Alloc reserves a new slot (reusing a freed one if available) and returns
// its Handle. New slots start Cleared, matching spec §9's decision that
// feedback textures are all-zero on first use (the history ring allocates
// no arena slots; it holds caller-supplied handles).
func (a *Arena) Alloc(desc Descriptor) Handle {
	desc.Cleared = true
	if n := len(a.free); n > 0 {
		h := a.free[n-1]
		a.free = a.free[:n-1]
		a.slots[h] = &desc
		return h
	}
	a.slots = append(a.slots, &desc)
	return Handle(len(a.slots) - 1)
}

// Free releases a slot back to the pool. Freed handles are invalid until
// reassigned by a later Alloc.
func (a *Arena) Free(h Handle) {
	if !a.valid(h) {
		return
	}
	a.slots[h] = nil
	a.free = append(a.free, h)
}

// Get returns the descriptor for h, or nil if h is not currently live.
func (a *Arena) Get(h Handle) *Descriptor {
	if !a.valid(h) {
		return nil
	}
	return a.slots[h]
}

// AnonymousName mints a debug name for a slot the caller didn't name
// explicitly (e.g. a generated history/feedback texture), grounded on the
// teacher's use of uuid.New() to name generated render-target textures in
// engine/systems/renderview.go.
func AnonymousName() string {
	return "slangchain-" + uuid.New().String()
}

// Swap exchanges the descriptors at two handles in place. Used by the
// filter chain's end-of-frame feedback swap (spec §4.F step 3a): this
// frame's pass output becomes next frame's feedback input without moving
// any GPU resource or rewriting any binding table.
func (a *Arena) Swap(x, y Handle) {
	if !a.valid(x) || !a.valid(y) {
		return
	}
	a.slots[x], a.slots[y] = a.slots[y], a.slots[x]
}

// Resize replaces the descriptor at h with one of the given dimensions,
// preserving its format/wrap/filter settings and marking it freshly
// cleared (the GPU resource itself is reallocated by the caller's
// gpu.Device; Arena only tracks the new logical size).
func (a *Arena) Resize(h Handle, width, height int) {
	d := a.Get(h)
	if d == nil {
		return
	}
	d.Width = width
	d.Height = height
	d.Cleared = true
}

func (a *Arena) valid(h Handle) bool {
	return h >= 0 && int(h) < len(a.slots) && a.slots[h] != nil
}
