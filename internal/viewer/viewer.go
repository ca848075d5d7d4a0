// Package viewer implements the render loop and input dispatch.
package viewer

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/objview/internal/config"
	"github.com/Faultbox/objview/internal/engine/camera"
	"github.com/Faultbox/objview/internal/engine/debug"
	"github.com/Faultbox/objview/internal/engine/input"
	"github.com/Faultbox/objview/internal/engine/mesh"
	"github.com/Faultbox/objview/internal/engine/renderer"
	"github.com/Faultbox/objview/internal/logger"
	"github.com/Faultbox/objview/pkg/math"
)

// State is the lifecycle stage of a Viewer.
type State int

const (
	StateUninitialized State = iota
	StateRunning
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateRunning:
		return "running"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

var (
	ErrAlreadyStarted = errors.New("viewer already started")
	ErrNotRunning     = errors.New("viewer not running")
)

// GPU is the part of the renderer a frame needs.
type GPU interface {
	Upload(m *mesh.Mesh) error
	Resize(width, height int)
	SetProjection(m math.Mat4)
	SetModelView(m math.Mat4)
	Clear(c renderer.Color)
	DrawRange(first, count int, c renderer.Color)
	ReadPixels() ([]byte, int, int)
}

var _ GPU = (*renderer.Renderer)(nil)

// Viewer owns the camera, the pending pointer delta and the mesh on screen.
type Viewer struct {
	state State
	gpu   GPU
	mesh  *mesh.Mesh

	camera *camera.FreeCamera
	delta  input.PointerDelta
	lock   input.PointerLock
	shots  *debug.ScreenshotCapture

	title string

	fov, near, far float32
	aspect         float32

	background    renderer.Color
	triangleColor renderer.Color
	quadColor     renderer.Color

	screenshotPending bool
}

// New creates a viewer from configuration. shots may be nil to disable F12.
func New(cfg *config.Config, lock input.PointerLock, shots *debug.ScreenshotCapture) *Viewer {
	v := &Viewer{
		title:         cfg.Window.Title,
		camera:        NewCamera(cfg.Camera),
		lock:          lock,
		shots:         shots,
		fov:           math.Radians(cfg.Render.FOVDeg),
		near:          cfg.Render.Near,
		far:           cfg.Render.Far,
		background:    renderer.Color(cfg.Render.Background),
		triangleColor: renderer.Color(cfg.Render.TriangleColor),
		quadColor:     renderer.Color(cfg.Render.QuadColor),
	}
	v.setAspect(cfg.Window.Width, cfg.Window.Height)
	return v
}

// NewCamera builds the starting camera from configuration.
func NewCamera(cfg config.CameraConfig) *camera.FreeCamera {
	c := camera.NewFreeCamera()
	c.Position = math.V3(cfg.Position)
	c.Target = math.V3(cfg.Target)
	c.YawOffset = math.Radians(cfg.YawOffsetDeg)
	c.StepVertical = cfg.StepVertical
	c.StepHorizontal = cfg.StepHorizontal
	c.StepDepth = cfg.StepDepth
	c.RotateSensitivity = cfg.RotateSensitivity
	c.PanSensitivity = cfg.PanSensitivity
	return c
}

// State returns the current lifecycle stage.
func (v *Viewer) State() State {
	return v.state
}

// Camera returns the viewer's camera.
func (v *Viewer) Camera() *camera.FreeCamera {
	return v.camera
}

// Start uploads the merged mesh and moves the viewer to StateRunning.
// It succeeds at most once; on error the viewer stays uninitialized.
func (v *Viewer) Start(m *mesh.Mesh, gpu GPU) error {
	if v.state != StateUninitialized {
		return ErrAlreadyStarted
	}
	if err := gpu.Upload(m); err != nil {
		return fmt.Errorf("uploading mesh: %w", err)
	}

	v.gpu = gpu
	v.mesh = m
	v.state = StateRunning

	logger.Info("viewer started",
		zap.Int("vertices", m.VertexCount()),
		zap.Int("offset", m.Offset),
	)
	return nil
}

// HandleEvent applies one input event. It returns true when the viewer
// should quit.
func (v *Viewer) HandleEvent(e input.Event) bool {
	switch e.Type {
	case input.EventQuit:
		return true
	case input.EventWindowResize:
		v.Resize(e.Width, e.Height)
	case input.EventPointerMove:
		if v.lock != nil && v.lock.Engaged() {
			v.delta.Latch(e.DX, e.DY)
		}
	case input.EventKeyDown:
		return v.handleKey(e)
	}
	return false
}

var keyActions = map[input.Key]camera.Action{
	input.KeyPageDown:   camera.ActionMoveDown,
	input.KeyPageUp:     camera.ActionMoveUp,
	input.KeyArrowLeft:  camera.ActionMoveLeft,
	input.KeyArrowRight: camera.ActionMoveRight,
	input.KeyArrowUp:    camera.ActionMoveForward,
	input.KeyArrowDown:  camera.ActionMoveBackward,
}

func (v *Viewer) handleKey(e input.Event) bool {
	if action, ok := keyActions[e.Key]; ok {
		v.camera.HandleAction(action)
		return false
	}

	switch e.Key {
	case input.KeyEscape:
		return true
	case input.KeyP:
		if !e.Repeat {
			v.togglePointerLock()
		}
	case input.KeyF12:
		if !e.Repeat {
			v.screenshotPending = true
		}
	}
	return false
}

func (v *Viewer) togglePointerLock() {
	if v.lock == nil {
		return
	}
	engaged := !v.lock.Engaged()
	if err := v.lock.SetEngaged(engaged); err != nil {
		logger.Warn("pointer lock toggle failed", zap.Error(err))
		return
	}
	logger.Debug("pointer lock", zap.Bool("engaged", engaged))
}

// Resize updates the aspect ratio and, once running, the viewport.
// Zero sizes (minimized window) are ignored.
func (v *Viewer) Resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	v.setAspect(width, height)
	if v.gpu != nil {
		v.gpu.Resize(width, height)
	}
}

func (v *Viewer) setAspect(width, height int) {
	if width > 0 && height > 0 {
		v.aspect = float32(width) / float32(height)
	}
}

// Frame renders one frame: projection, pending pointer delta, view, clear,
// then the triangle range and the quad range of the mesh.
func (v *Viewer) Frame() error {
	if v.state != StateRunning {
		return ErrNotRunning
	}

	v.gpu.SetProjection(math.Perspective(v.fov, v.aspect, v.near, v.far))

	if dx, dy, ok := v.delta.Consume(); ok {
		v.camera.Rotate(dx, dy)
	}
	v.gpu.SetModelView(v.camera.ViewMatrix())

	v.gpu.Clear(v.background)
	v.gpu.DrawRange(0, v.mesh.Offset, v.triangleColor)
	v.gpu.DrawRange(v.mesh.Offset, v.mesh.VertexCount()-v.mesh.Offset, v.quadColor)

	if v.screenshotPending {
		v.screenshotPending = false
		v.captureScreenshot()
	}
	return nil
}

func (v *Viewer) captureScreenshot() {
	if v.shots == nil {
		return
	}
	pixels, w, h := v.gpu.ReadPixels()
	path, err := v.shots.CaptureFromPixels(pixels, w, h)
	if err != nil {
		logger.Warn("screenshot failed", zap.Error(err))
		return
	}
	logger.Info("screenshot saved", zap.String("path", path))
}
