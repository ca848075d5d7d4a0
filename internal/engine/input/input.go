// Package input handles SDL2 input events.
package input

import (
	"github.com/veandco/go-sdl2/sdl"
)

// Event types for viewer use
type EventType int

const (
	EventNone EventType = iota
	EventQuit
	EventWindowResize
	EventKeyDown
	EventPointerMove
)

// Key is a symbolic key name, independent of the SDL keycode.
type Key int

const (
	KeyNone Key = iota
	KeyPageUp
	KeyPageDown
	KeyArrowLeft
	KeyArrowRight
	KeyArrowUp
	KeyArrowDown
	KeyP
	KeyEscape
	KeyF12
)

var keyNames = map[Key]string{
	KeyNone:       "None",
	KeyPageUp:     "PageUp",
	KeyPageDown:   "PageDown",
	KeyArrowLeft:  "ArrowLeft",
	KeyArrowRight: "ArrowRight",
	KeyArrowUp:    "ArrowUp",
	KeyArrowDown:  "ArrowDown",
	KeyP:          "p",
	KeyEscape:     "Escape",
	KeyF12:        "F12",
}

// String returns the key name.
func (k Key) String() string {
	if name, ok := keyNames[k]; ok {
		return name
	}
	return "Unknown"
}

var sdlKeys = map[sdl.Keycode]Key{
	sdl.K_PAGEUP:   KeyPageUp,
	sdl.K_PAGEDOWN: KeyPageDown,
	sdl.K_LEFT:     KeyArrowLeft,
	sdl.K_RIGHT:    KeyArrowRight,
	sdl.K_UP:       KeyArrowUp,
	sdl.K_DOWN:     KeyArrowDown,
	sdl.K_p:        KeyP,
	sdl.K_ESCAPE:   KeyEscape,
	sdl.K_F12:      KeyF12,
}

// Event represents a processed input event.
type Event struct {
	Type   EventType
	Key    Key
	Repeat bool
	Width  int
	Height int
	DX     float32
	DY     float32
}

// Input handles all input processing.
type Input struct {
	events []Event
}

// New creates a new input handler.
func New() *Input {
	return &Input{
		events: make([]Event, 0, 16),
	}
}

// Update polls SDL events and converts them to viewer events.
// Returns true if the viewer should quit.
func (i *Input) Update() bool {
	i.events = i.events[:0] // Clear previous events

	for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
		e, ok := Translate(event)
		if !ok {
			continue
		}
		i.events = append(i.events, e)
		if e.Type == EventQuit {
			return true
		}
	}

	return false
}

// Events returns the events from the last Update.
func (i *Input) Events() []Event {
	return i.events
}

// Translate converts one SDL event. Events the viewer does not use, and
// keys without a binding, report false.
func Translate(event sdl.Event) (Event, bool) {
	switch e := event.(type) {
	case *sdl.QuitEvent:
		return Event{Type: EventQuit}, true

	case *sdl.WindowEvent:
		if e.Event == sdl.WINDOWEVENT_RESIZED || e.Event == sdl.WINDOWEVENT_SIZE_CHANGED {
			return Event{
				Type:   EventWindowResize,
				Width:  int(e.Data1),
				Height: int(e.Data2),
			}, true
		}

	case *sdl.KeyboardEvent:
		if e.Type != sdl.KEYDOWN {
			return Event{}, false
		}
		key, ok := sdlKeys[e.Keysym.Sym]
		if !ok {
			return Event{}, false
		}
		// Auto-repeat is kept: every repeat moves the camera again
		return Event{Type: EventKeyDown, Key: key, Repeat: e.Repeat != 0}, true

	case *sdl.MouseMotionEvent:
		return Event{
			Type: EventPointerMove,
			DX:   float32(e.XRel),
			DY:   float32(e.YRel),
		}, true
	}

	return Event{}, false
}
