package chain

import "github.com/retrofx/slangchain/texture"

// historyRing is the original-history ring (spec §4.F Texture graph, §9
// Design Notes): a fixed-capacity circular buffer addressed by a
// monotonically-advancing cursor, generalized from the teacher's
// engine/containers/ring_queue.go read/write-index pattern. Advancing the
// ring never moves a handle between slots; it only moves the cursor, so
// OriginalHistoryK handles a caller already bound stay valid across frames
// until they roll back out of range.
type historyRing struct {
	handles []texture.Handle
	cursor  int // index holding this frame's OriginalHistory0 (current Original)
}

func newHistoryRing(handles []texture.Handle) *historyRing {
	return &historyRing{handles: handles}
}

// at returns the handle for OriginalHistoryK (k=0 is the current frame's
// Original).
func (r *historyRing) at(k int) texture.Handle {
	n := len(r.handles)
	idx := ((r.cursor-k)%n + n) % n
	return r.handles[idx]
}

// advance rotates the ring one slot forward (spec §4.F step 3b: "shift the
// original-history ring by one slot... schedule slot 0 to be written by next
// frame's source upload") and returns the handle the next frame's source
// upload should target.
func (r *historyRing) advance() texture.Handle {
	n := len(r.handles)
	r.cursor = (r.cursor + 1) % n
	return r.handles[r.cursor]
}

// current returns the handle currently addressed as OriginalHistory0.
func (r *historyRing) current() texture.Handle {
	return r.handles[r.cursor]
}
