// Package camera provides camera implementations for 3D rendering.
package camera

import (
	gomath "math"

	"github.com/Faultbox/objview/pkg/math"
)

// Action is a discrete camera movement bound to a key.
type Action int

const (
	ActionNone Action = iota
	ActionMoveDown
	ActionMoveUp
	ActionMoveLeft
	ActionMoveRight
	ActionMoveForward
	ActionMoveBackward
)

// String returns the action name.
func (a Action) String() string {
	switch a {
	case ActionMoveDown:
		return "move_down"
	case ActionMoveUp:
		return "move_up"
	case ActionMoveLeft:
		return "move_left"
	case ActionMoveRight:
		return "move_right"
	case ActionMoveForward:
		return "move_forward"
	case ActionMoveBackward:
		return "move_backward"
	default:
		return "none"
	}
}

// Theta holds the camera orientation angles in radians. Roll is unused.
type Theta struct {
	Pitch float32
	Yaw   float32
	Roll  float32
}

// maxPitch keeps the camera from flipping over the vertical.
const maxPitch = float32(gomath.Pi / 2)

// FreeCamera looks from Position at Target, with extra yaw/pitch applied
// on top of the look-at transform.
type FreeCamera struct {
	Position math.Vec3
	Target   math.Vec3
	Theta    Theta

	// Fixed yaw composed after the look-at transform (radians)
	YawOffset float32

	// Translation per key press
	StepVertical   float32
	StepHorizontal float32
	StepDepth      float32

	// Pointer response
	RotateSensitivity float32 // radians per pixel
	PanSensitivity    float32 // world units per pixel
}

// NewFreeCamera creates a camera at (0, 4, 10) looking at the origin.
func NewFreeCamera() *FreeCamera {
	return &FreeCamera{
		Position:          math.Vec3{X: 0, Y: 4, Z: 10},
		Target:            math.Vec3{},
		YawOffset:         math.Radians(-45),
		StepVertical:      0.25,
		StepHorizontal:    0.15,
		StepDepth:         0.55,
		RotateSensitivity: 0.0025,
		PanSensitivity:    0.01,
	}
}

// HandleAction translates position and target together by one step.
// Unknown actions are ignored.
func (c *FreeCamera) HandleAction(a Action) {
	var d math.Vec3
	switch a {
	case ActionMoveDown:
		d.Y = -c.StepVertical
	case ActionMoveUp:
		d.Y = c.StepVertical
	case ActionMoveLeft:
		d.X = -c.StepHorizontal
	case ActionMoveRight:
		d.X = c.StepHorizontal
	case ActionMoveForward:
		d.Z = -c.StepDepth
	case ActionMoveBackward:
		d.Z = c.StepDepth
	default:
		return
	}
	c.Position = c.Position.Add(d)
	c.Target = c.Target.Add(d)
}

// Rotate applies one pointer delta: yaw and pitch turn, the target pans.
func (c *FreeCamera) Rotate(dx, dy float32) {
	c.Theta.Yaw += dx * c.RotateSensitivity
	c.Theta.Pitch -= dy * c.RotateSensitivity
	c.Theta.Pitch = math.Clamp(c.Theta.Pitch, -maxPitch, maxPitch)

	c.Target = c.Target.Add(math.Vec3{X: dx, Y: -dy}.Scale(c.PanSensitivity))
}

// ViewMatrix returns LookAt * RotY(offset) * RotY(yaw) * RotX(pitch).
// The composition order is fixed; reordering changes the orientation.
func (c *FreeCamera) ViewMatrix() math.Mat4 {
	up := math.Vec3{X: 0, Y: 1, Z: 0}
	return math.LookAt(c.Position, c.Target, up).
		Mul(math.RotateY(c.YawOffset)).
		Mul(math.RotateY(c.Theta.Yaw)).
		Mul(math.RotateX(c.Theta.Pitch))
}
