package viewer

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/Faultbox/objview/internal/config"
	"github.com/Faultbox/objview/internal/engine/debug"
	"github.com/Faultbox/objview/internal/engine/input"
	"github.com/Faultbox/objview/internal/engine/mesh"
	"github.com/Faultbox/objview/internal/engine/renderer"
	"github.com/Faultbox/objview/pkg/math"
)

type call struct {
	name  string
	first int
	count int
	color renderer.Color
	mat   math.Mat4
}

// recordingGPU records every call in order.
type recordingGPU struct {
	calls     []call
	uploaded  *mesh.Mesh
	uploadErr error
	width     int
	height    int
}

func (g *recordingGPU) Upload(m *mesh.Mesh) error {
	if g.uploadErr != nil {
		return g.uploadErr
	}
	g.uploaded = m
	return nil
}

func (g *recordingGPU) Resize(width, height int) {
	g.width, g.height = width, height
	g.calls = append(g.calls, call{name: "resize"})
}

func (g *recordingGPU) SetProjection(m math.Mat4) {
	g.calls = append(g.calls, call{name: "projection", mat: m})
}

func (g *recordingGPU) SetModelView(m math.Mat4) {
	g.calls = append(g.calls, call{name: "modelview", mat: m})
}

func (g *recordingGPU) Clear(c renderer.Color) {
	g.calls = append(g.calls, call{name: "clear", color: c})
}

func (g *recordingGPU) DrawRange(first, count int, c renderer.Color) {
	g.calls = append(g.calls, call{name: "draw", first: first, count: count, color: c})
}

func (g *recordingGPU) ReadPixels() ([]byte, int, int) {
	g.calls = append(g.calls, call{name: "read"})
	return make([]byte, 2*2*4), 2, 2
}

type fakeLock struct {
	engaged bool
	err     error
	toggles int
}

func (l *fakeLock) Engaged() bool { return l.engaged }

func (l *fakeLock) SetEngaged(engaged bool) error {
	if l.err != nil {
		return l.err
	}
	l.engaged = engaged
	l.toggles++
	return nil
}

// testMesh has 3 triangle vertices followed by 6 quad vertices.
func testMesh() *mesh.Mesh {
	return &mesh.Mesh{
		Data:   make([]float32, 9*mesh.Stride),
		Offset: 3,
	}
}

func startedViewer(t *testing.T) (*Viewer, *recordingGPU, *fakeLock) {
	t.Helper()
	lock := &fakeLock{}
	v := New(config.Default(), lock, nil)
	gpu := &recordingGPU{}
	if err := v.Start(testMesh(), gpu); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	return v, gpu, lock
}

func keyDown(k input.Key) input.Event {
	return input.Event{Type: input.EventKeyDown, Key: k}
}

func TestStateTransition(t *testing.T) {
	v := New(config.Default(), &fakeLock{}, nil)
	if v.State() != StateUninitialized {
		t.Fatalf("initial state: got %v", v.State())
	}

	gpu := &recordingGPU{}
	if err := v.Frame(); !errors.Is(err, ErrNotRunning) {
		t.Errorf("Frame before Start: expected ErrNotRunning, got %v", err)
	}
	if len(gpu.calls) != 0 {
		t.Errorf("GPU used before Start: %v", gpu.calls)
	}

	m := testMesh()
	if err := v.Start(m, gpu); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if v.State() != StateRunning {
		t.Errorf("state after Start: got %v", v.State())
	}
	if gpu.uploaded != m {
		t.Error("mesh was not uploaded")
	}

	if err := v.Start(m, gpu); !errors.Is(err, ErrAlreadyStarted) {
		t.Errorf("second Start: expected ErrAlreadyStarted, got %v", err)
	}
}

func TestStartUploadFailure(t *testing.T) {
	v := New(config.Default(), &fakeLock{}, nil)
	uploadErr := errors.New("out of memory")

	err := v.Start(testMesh(), &recordingGPU{uploadErr: uploadErr})
	if !errors.Is(err, uploadErr) {
		t.Fatalf("expected upload error, got %v", err)
	}
	if v.State() != StateUninitialized {
		t.Errorf("state after failed Start: got %v", v.State())
	}
}

func TestFrameSequence(t *testing.T) {
	v, gpu, _ := startedViewer(t)

	if err := v.Frame(); err != nil {
		t.Fatalf("Frame failed: %v", err)
	}

	want := []string{"projection", "modelview", "clear", "draw", "draw"}
	if len(gpu.calls) != len(want) {
		t.Fatalf("expected %d calls, got %d: %+v", len(want), len(gpu.calls), gpu.calls)
	}
	for i, name := range want {
		if gpu.calls[i].name != name {
			t.Errorf("call %d: got %s, want %s", i, gpu.calls[i].name, name)
		}
	}

	if c := gpu.calls[2].color; c != (renderer.Color{1, 1, 1, 1}) {
		t.Errorf("clear colour: got %v", c)
	}

	tri := gpu.calls[3]
	if tri.first != 0 || tri.count != 3 || tri.color != (renderer.Color{0.3, 0.3, 0.3, 1}) {
		t.Errorf("triangle draw: got %+v", tri)
	}
	quad := gpu.calls[4]
	if quad.first != 3 || quad.count != 6 || quad.color != (renderer.Color{0.5, 1, 0.5, 1}) {
		t.Errorf("quad draw: got %+v", quad)
	}
}

func TestFrameProjection(t *testing.T) {
	v, gpu, _ := startedViewer(t)

	if err := v.Frame(); err != nil {
		t.Fatalf("Frame failed: %v", err)
	}

	want := math.Perspective(math.Radians(60), 1280.0/720.0, 0.1, 200)
	if gpu.calls[0].mat != want {
		t.Errorf("projection: got %v, want %v", gpu.calls[0].mat, want)
	}
	if gpu.calls[1].mat != v.Camera().ViewMatrix() {
		t.Error("model-view does not match camera view matrix")
	}
}

func TestResizeUpdatesAspect(t *testing.T) {
	v, gpu, _ := startedViewer(t)

	v.HandleEvent(input.Event{Type: input.EventWindowResize, Width: 800, Height: 800})
	if gpu.width != 800 || gpu.height != 800 {
		t.Errorf("viewport: got %dx%d", gpu.width, gpu.height)
	}

	gpu.calls = nil
	if err := v.Frame(); err != nil {
		t.Fatalf("Frame failed: %v", err)
	}
	want := math.Perspective(math.Radians(60), 1, 0.1, 200)
	if gpu.calls[0].mat != want {
		t.Error("projection did not pick up the new aspect ratio")
	}

	// Minimized windows report zero size
	v.HandleEvent(input.Event{Type: input.EventWindowResize})
	if gpu.width != 800 {
		t.Error("zero-size resize should be ignored")
	}
}

func TestKeyMovesCamera(t *testing.T) {
	cfg := config.Default()
	cfg.Camera.StepHorizontal = 0.14
	v := New(cfg, &fakeLock{}, nil)
	cam := v.Camera()
	pos, target := cam.Position, cam.Target

	if quit := v.HandleEvent(keyDown(input.KeyArrowRight)); quit {
		t.Fatal("arrow key requested quit")
	}

	if cam.Position.X != pos.X+0.14 || cam.Target.X != target.X+0.14 {
		t.Errorf("ArrowRight: position %v target %v", cam.Position, cam.Target)
	}
	if cam.Position.Y != pos.Y || cam.Position.Z != pos.Z {
		t.Errorf("ArrowRight moved other axes: %v", cam.Position)
	}
}

func TestKeyBindings(t *testing.T) {
	tests := []struct {
		key  input.Key
		axis func(v math.Vec3) float32
		sign float32
	}{
		{input.KeyPageUp, func(v math.Vec3) float32 { return v.Y }, 1},
		{input.KeyPageDown, func(v math.Vec3) float32 { return v.Y }, -1},
		{input.KeyArrowLeft, func(v math.Vec3) float32 { return v.X }, -1},
		{input.KeyArrowRight, func(v math.Vec3) float32 { return v.X }, 1},
		{input.KeyArrowUp, func(v math.Vec3) float32 { return v.Z }, -1},
		{input.KeyArrowDown, func(v math.Vec3) float32 { return v.Z }, 1},
	}

	for _, tt := range tests {
		t.Run(tt.key.String(), func(t *testing.T) {
			v := New(config.Default(), &fakeLock{}, nil)
			before := tt.axis(v.Camera().Position)

			v.HandleEvent(keyDown(tt.key))
			v.HandleEvent(input.Event{Type: input.EventKeyDown, Key: tt.key, Repeat: true})

			moved := tt.axis(v.Camera().Position) - before
			if moved*tt.sign <= 0 {
				t.Errorf("expected movement with sign %v, got %f", tt.sign, moved)
			}
		})
	}
}

func TestPointerLockToggle(t *testing.T) {
	v, _, lock := startedViewer(t)

	v.HandleEvent(keyDown(input.KeyP))
	if !lock.engaged {
		t.Fatal("p should engage pointer lock")
	}

	// Held key does not flip the lock back and forth
	v.HandleEvent(input.Event{Type: input.EventKeyDown, Key: input.KeyP, Repeat: true})
	if !lock.engaged || lock.toggles != 1 {
		t.Errorf("repeat toggled lock: engaged=%v toggles=%d", lock.engaged, lock.toggles)
	}

	v.HandleEvent(keyDown(input.KeyP))
	if lock.engaged {
		t.Error("second p should release pointer lock")
	}
}

func TestPointerLockToggleError(t *testing.T) {
	lock := &fakeLock{err: errors.New("unsupported")}
	v := New(config.Default(), lock, nil)

	if quit := v.HandleEvent(keyDown(input.KeyP)); quit {
		t.Error("lock failure should not quit")
	}
	if lock.engaged {
		t.Error("lock should stay released")
	}
}

func TestPointerMotionRequiresLock(t *testing.T) {
	v, _, lock := startedViewer(t)

	v.HandleEvent(input.Event{Type: input.EventPointerMove, DX: 10, DY: 10})
	if v.delta.Pending() {
		t.Fatal("motion latched without pointer lock")
	}

	lock.engaged = true
	v.HandleEvent(input.Event{Type: input.EventPointerMove, DX: 10, DY: 10})
	if !v.delta.Pending() {
		t.Fatal("motion not latched with pointer lock")
	}
}

func TestPointerDeltaLastWriteWins(t *testing.T) {
	v, _, lock := startedViewer(t)
	lock.engaged = true
	cam := v.Camera()

	v.HandleEvent(input.Event{Type: input.EventPointerMove, DX: 100, DY: 100})
	v.HandleEvent(input.Event{Type: input.EventPointerMove, DX: 4, DY: -2})

	if err := v.Frame(); err != nil {
		t.Fatalf("Frame failed: %v", err)
	}

	wantYaw := 4 * cam.RotateSensitivity
	wantPitch := 2 * cam.RotateSensitivity
	if cam.Theta.Yaw != wantYaw || cam.Theta.Pitch != wantPitch {
		t.Errorf("theta: got %+v, want yaw=%f pitch=%f", cam.Theta, wantYaw, wantPitch)
	}
	if v.delta.Pending() {
		t.Error("delta still pending after frame")
	}

	// A frame with no motion leaves orientation alone
	if err := v.Frame(); err != nil {
		t.Fatalf("Frame failed: %v", err)
	}
	if cam.Theta.Yaw != wantYaw {
		t.Errorf("yaw changed without motion: %f", cam.Theta.Yaw)
	}
}

func TestQuitEvents(t *testing.T) {
	v := New(config.Default(), &fakeLock{}, nil)

	if !v.HandleEvent(keyDown(input.KeyEscape)) {
		t.Error("Escape should quit")
	}
	if !v.HandleEvent(input.Event{Type: input.EventQuit}) {
		t.Error("window close should quit")
	}
}

func TestScreenshotKey(t *testing.T) {
	dir := t.TempDir()
	lock := &fakeLock{}
	v := New(config.Default(), lock, debug.NewScreenshotCapture(dir, "test", "png"))
	gpu := &recordingGPU{}
	if err := v.Start(testMesh(), gpu); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	v.HandleEvent(keyDown(input.KeyF12))
	if err := v.Frame(); err != nil {
		t.Fatalf("Frame failed: %v", err)
	}

	last := gpu.calls[len(gpu.calls)-1]
	if last.name != "read" {
		t.Errorf("expected pixels read after drawing, last call %s", last.name)
	}

	files, err := filepath.Glob(filepath.Join(dir, "test_*.png"))
	if err != nil || len(files) != 1 {
		t.Fatalf("expected one screenshot, got %v (%v)", files, err)
	}
	if info, err := os.Stat(files[0]); err != nil || info.Size() == 0 {
		t.Errorf("screenshot empty or missing: %v", err)
	}

	gpu.calls = nil
	if err := v.Frame(); err != nil {
		t.Fatalf("Frame failed: %v", err)
	}
	for _, c := range gpu.calls {
		if c.name == "read" {
			t.Error("screenshot taken twice for one key press")
		}
	}
}

func TestFrameEmptyMesh(t *testing.T) {
	m, err := mesh.Load([]byte("v 0 0 0\nvn 0 0 1\n"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	v := New(config.Default(), &fakeLock{}, nil)
	gpu := &recordingGPU{}
	if err := v.Start(m, gpu); err != nil {
		t.Fatalf("Start with empty mesh failed: %v", err)
	}
	if err := v.Frame(); err != nil {
		t.Fatalf("Frame failed: %v", err)
	}

	for _, c := range gpu.calls {
		if c.name == "draw" && (c.first != 0 || c.count != 0) {
			t.Errorf("empty mesh drew [%d, +%d)", c.first, c.count)
		}
	}
}
