package canvas

import (
	"sync"

	"github.com/gogpu/gpucontext"
)

// EventKind names a window event.
type EventKind string

// Window event kinds.
const (
	EventMove       EventKind = "move"
	EventResize     EventKind = "resize"
	EventFullscreen EventKind = "fullscreen"
	EventInput      EventKind = "input"
	EventKeyDown    EventKind = "keydown"
	EventKeyUp      EventKind = "keyup"
	EventMouseMove  EventKind = "mousemove"
	EventMouseDown  EventKind = "mousedown"
	EventMouseUp    EventKind = "mouseup"
	EventClick      EventKind = "click"
	EventDblClick   EventKind = "dblclick"
	EventWheel      EventKind = "wheel"
	EventFrame      EventKind = "frame"
)

// Event is one of the *Event types in this package.
type Event interface {
	Kind() EventKind
}

// Modifiers are the modifier keys held during an input event.
type Modifiers struct {
	Alt, Ctrl, Meta, Shift bool
}

func modifiersOf(m gpucontext.Modifiers) Modifiers {
	return Modifiers{
		Alt:   m.HasAlt(),
		Ctrl:  m.HasControl(),
		Meta:  m.HasSuper(),
		Shift: m.HasShift(),
	}
}

// MoveEvent reports a new window position.
type MoveEvent struct{ X, Y int }

// Kind implements Event.
func (MoveEvent) Kind() EventKind { return EventMove }

// ResizeEvent reports a new window size.
type ResizeEvent struct{ Width, Height int }

// Kind implements Event.
func (ResizeEvent) Kind() EventKind { return EventResize }

// FullscreenEvent reports entering or leaving full screen.
type FullscreenEvent struct{ Fullscreen bool }

// Kind implements Event.
func (FullscreenEvent) Kind() EventKind { return EventFullscreen }

// InputEvent carries one committed character of text input.
type InputEvent struct {
	Data      string
	CodePoint rune
	Modifiers
}

// Kind implements Event.
func (InputEvent) Kind() EventKind { return EventInput }

// KeyEvent is a key press or release. Calling PreventDefault from a
// keydown handler suppresses the window's default key bindings.
type KeyEvent struct {
	Type   EventKind
	Key    string
	Code   string
	Repeat bool
	Modifiers

	prevented bool
}

// Kind implements Event.
func (e *KeyEvent) Kind() EventKind { return e.Type }

// PreventDefault cancels the default action for this event.
func (e *KeyEvent) PreventDefault() { e.prevented = true }

// DefaultPrevented reports whether PreventDefault was called.
func (e *KeyEvent) DefaultPrevented() bool { return e.prevented }

// MouseEvent is a pointer event in window coordinates.
type MouseEvent struct {
	Type   EventKind
	X, Y   float64
	Button gpucontext.Button
	Modifiers
}

// Kind implements Event.
func (e MouseEvent) Kind() EventKind { return e.Type }

// WheelEvent is a scroll. DeltaZ is always zero.
type WheelEvent struct {
	DeltaX, DeltaY, DeltaZ float64
}

// Kind implements Event.
func (WheelEvent) Kind() EventKind { return EventWheel }

// FrameEvent is emitted once per animation tick. Frame counts from zero.
type FrameEvent struct{ Frame int }

// Kind implements Event.
func (FrameEvent) Kind() EventKind { return EventFrame }

type listener struct {
	id uint64
	fn func(Event)
}

// emitter delivers events synchronously in registration order.
type emitter struct {
	mu        sync.Mutex
	next      uint64
	listeners map[EventKind][]listener
}

func (e *emitter) on(kind EventKind, fn func(Event)) func() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.listeners == nil {
		e.listeners = make(map[EventKind][]listener)
	}
	e.next++
	id := e.next
	e.listeners[kind] = append(e.listeners[kind], listener{id: id, fn: fn})

	var once sync.Once
	return func() {
		once.Do(func() {
			e.mu.Lock()
			defer e.mu.Unlock()
			ls := e.listeners[kind]
			for i, l := range ls {
				if l.id == id {
					e.listeners[kind] = append(ls[:i:i], ls[i+1:]...)
					break
				}
			}
		})
	}
}

func (e *emitter) emit(ev Event) {
	e.mu.Lock()
	ls := append([]listener(nil), e.listeners[ev.Kind()]...)
	e.mu.Unlock()
	for _, l := range ls {
		l.fn(ev)
	}
}

func (e *emitter) count(kind EventKind) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.listeners[kind])
}
