package viewer

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/objview/internal/engine/input"
	"github.com/Faultbox/objview/internal/logger"
)

// EventSource yields input events once per frame.
type EventSource interface {
	// Update polls pending events and reports whether a quit was requested.
	Update() bool
	Events() []input.Event
}

// Surface presents finished frames.
type Surface interface {
	SwapBuffers()
	DrawableSize() (int, int)
	SetTitle(title string)
}

// Run drives frames until the user quits or ctx is cancelled.
func (v *Viewer) Run(ctx context.Context, events EventSource, surface Surface) error {
	if v.state != StateRunning {
		return ErrNotRunning
	}

	lastTime := time.Now()
	frameCount := 0
	fpsTimer := lastTime

	logger.Info("starting render loop")

	for {
		if err := ctx.Err(); err != nil {
			logger.Info("render loop cancelled", zap.Error(err))
			return nil
		}

		now := time.Now()
		dt := now.Sub(lastTime)
		lastTime = now

		quit := events.Update()
		for _, e := range events.Events() {
			if e.Type == input.EventWindowResize {
				// Window size is in screen coordinates, the viewport wants pixels.
				e.Width, e.Height = surface.DrawableSize()
			}
			if v.HandleEvent(e) {
				quit = true
			}
		}
		if quit {
			logger.Info("render loop finished")
			return nil
		}

		if err := v.Frame(); err != nil {
			return err
		}
		surface.SwapBuffers()

		frameCount++
		if time.Since(fpsTimer) >= time.Second {
			logger.Debug("fps",
				zap.Int("count", frameCount),
				zap.Duration("dt", dt),
			)
			surface.SetTitle(fmt.Sprintf("%s - %d FPS", v.title, frameCount))
			frameCount = 0
			fpsTimer = time.Now()
		}
	}
}
