package input

import (
	"fmt"

	"github.com/veandco/go-sdl2/sdl"
)

// PointerDelta latches the most recent relative pointer motion until the
// next frame consumes it. Later motion overwrites earlier, unconsumed motion.
type PointerDelta struct {
	dx, dy  float32
	pending bool
}

// Latch stores a delta, replacing any pending one.
func (p *PointerDelta) Latch(dx, dy float32) {
	p.dx = dx
	p.dy = dy
	p.pending = true
}

// Consume returns the pending delta and clears it. ok is false when
// nothing was latched since the last call.
func (p *PointerDelta) Consume() (dx, dy float32, ok bool) {
	if !p.pending {
		return 0, 0, false
	}
	p.pending = false
	return p.dx, p.dy, true
}

// Pending reports whether a delta is waiting.
func (p *PointerDelta) Pending() bool {
	return p.pending
}

// PointerLock grants relative pointer motion while engaged.
type PointerLock interface {
	Engaged() bool
	SetEngaged(engaged bool) error
}

// RelativeMouse implements PointerLock with SDL relative mouse mode,
// which hides the cursor and reports motion as deltas.
type RelativeMouse struct{}

// Engaged reports whether relative mouse mode is on.
func (RelativeMouse) Engaged() bool {
	return sdl.GetRelativeMouseMode()
}

// SetEngaged turns relative mouse mode on or off.
func (RelativeMouse) SetEngaged(engaged bool) error {
	if code := sdl.SetRelativeMouseMode(engaged); code < 0 {
		return fmt.Errorf("SDL_SetRelativeMouseMode: %w", sdl.GetError())
	}
	return nil
}
