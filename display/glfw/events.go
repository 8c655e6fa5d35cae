// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package glfw

import (
	"math"
	"strconv"
	"time"

	glfw3 "github.com/go-gl/glfw/v3.3/glfw"
	"github.com/gogpu/gpucontext"

	"github.com/gogpu/canvas/engine"
)

// Click detection thresholds.
const (
	dblClickInterval = 500 * time.Millisecond
	clickSlop        = 4.0
	// wheelLine is the pixel distance of one wheel notch.
	wheelLine = 16.0
)

// modifiers converts GLFW modifier bits.
func modifiers(m glfw3.ModifierKey) gpucontext.Modifiers {
	var out gpucontext.Modifiers
	if m&glfw3.ModShift != 0 {
		out |= gpucontext.ModShift
	}
	if m&glfw3.ModControl != 0 {
		out |= gpucontext.ModControl
	}
	if m&glfw3.ModAlt != 0 {
		out |= gpucontext.ModAlt
	}
	if m&glfw3.ModSuper != 0 {
		out |= gpucontext.ModSuper
	}
	if m&glfw3.ModCapsLock != 0 {
		out |= gpucontext.ModCapsLock
	}
	if m&glfw3.ModNumLock != 0 {
		out |= gpucontext.ModNumLock
	}
	return out
}

// button converts a GLFW mouse button to its pointer-event number.
func button(b glfw3.MouseButton) gpucontext.Button {
	switch b {
	case glfw3.MouseButtonLeft:
		return gpucontext.ButtonLeft
	case glfw3.MouseButtonMiddle:
		return gpucontext.ButtonMiddle
	case glfw3.MouseButtonRight:
		return gpucontext.ButtonRight
	case glfw3.MouseButton4:
		return gpucontext.ButtonX1
	case glfw3.MouseButton5:
		return gpucontext.ButtonX2
	}
	return gpucontext.ButtonNone
}

var namedKeys = map[glfw3.Key][2]string{
	glfw3.KeySpace:        {" ", "Space"},
	glfw3.KeyApostrophe:   {"'", "Quote"},
	glfw3.KeyComma:        {",", "Comma"},
	glfw3.KeyMinus:        {"-", "Minus"},
	glfw3.KeyPeriod:       {".", "Period"},
	glfw3.KeySlash:        {"/", "Slash"},
	glfw3.KeySemicolon:    {";", "Semicolon"},
	glfw3.KeyEqual:        {"=", "Equal"},
	glfw3.KeyLeftBracket:  {"[", "BracketLeft"},
	glfw3.KeyBackslash:    {"\\", "Backslash"},
	glfw3.KeyRightBracket: {"]", "BracketRight"},
	glfw3.KeyGraveAccent:  {"`", "Backquote"},
	glfw3.KeyEscape:       {"Escape", "Escape"},
	glfw3.KeyEnter:        {"Enter", "Enter"},
	glfw3.KeyTab:          {"Tab", "Tab"},
	glfw3.KeyBackspace:    {"Backspace", "Backspace"},
	glfw3.KeyInsert:       {"Insert", "Insert"},
	glfw3.KeyDelete:       {"Delete", "Delete"},
	glfw3.KeyRight:        {"ArrowRight", "ArrowRight"},
	glfw3.KeyLeft:         {"ArrowLeft", "ArrowLeft"},
	glfw3.KeyDown:         {"ArrowDown", "ArrowDown"},
	glfw3.KeyUp:           {"ArrowUp", "ArrowUp"},
	glfw3.KeyPageUp:       {"PageUp", "PageUp"},
	glfw3.KeyPageDown:     {"PageDown", "PageDown"},
	glfw3.KeyHome:         {"Home", "Home"},
	glfw3.KeyEnd:          {"End", "End"},
	glfw3.KeyCapsLock:     {"CapsLock", "CapsLock"},
	glfw3.KeyScrollLock:   {"ScrollLock", "ScrollLock"},
	glfw3.KeyNumLock:      {"NumLock", "NumLock"},
	glfw3.KeyPrintScreen:  {"PrintScreen", "PrintScreen"},
	glfw3.KeyPause:        {"Pause", "Pause"},
	glfw3.KeyKPDecimal:    {".", "NumpadDecimal"},
	glfw3.KeyKPDivide:     {"/", "NumpadDivide"},
	glfw3.KeyKPMultiply:   {"*", "NumpadMultiply"},
	glfw3.KeyKPSubtract:   {"-", "NumpadSubtract"},
	glfw3.KeyKPAdd:        {"+", "NumpadAdd"},
	glfw3.KeyKPEnter:      {"Enter", "NumpadEnter"},
	glfw3.KeyKPEqual:      {"=", "NumpadEqual"},
	glfw3.KeyLeftShift:    {"Shift", "ShiftLeft"},
	glfw3.KeyLeftControl:  {"Control", "ControlLeft"},
	glfw3.KeyLeftAlt:      {"Alt", "AltLeft"},
	glfw3.KeyLeftSuper:    {"Meta", "MetaLeft"},
	glfw3.KeyRightShift:   {"Shift", "ShiftRight"},
	glfw3.KeyRightControl: {"Control", "ControlRight"},
	glfw3.KeyRightAlt:     {"Alt", "AltRight"},
	glfw3.KeyRightSuper:   {"Meta", "MetaRight"},
	glfw3.KeyMenu:         {"ContextMenu", "ContextMenu"},
}

const shiftedDigits = ")!@#$%^&*("

// keyNames returns the DOM key value and physical code for a GLFW key on a
// US layout. Unknown keys report "Unidentified".
func keyNames(k glfw3.Key, mods glfw3.ModifierKey) (key, code string) {
	shift := mods&glfw3.ModShift != 0
	switch {
	case k >= glfw3.KeyA && k <= glfw3.KeyZ:
		r := rune('a' + (k - glfw3.KeyA))
		upper := shift != (mods&glfw3.ModCapsLock != 0)
		if upper {
			r -= 'a' - 'A'
		}
		return string(r), "Key" + string(rune('A'+(k-glfw3.KeyA)))
	case k >= glfw3.Key0 && k <= glfw3.Key9:
		d := int(k - glfw3.Key0)
		code = "Digit" + string(rune('0'+d))
		if shift {
			return string(shiftedDigits[d]), code
		}
		return string(rune('0' + d)), code
	case k >= glfw3.KeyKP0 && k <= glfw3.KeyKP9:
		d := rune('0' + (k - glfw3.KeyKP0))
		return string(d), "Numpad" + string(d)
	case k >= glfw3.KeyF1 && k <= glfw3.KeyF25:
		n := "F" + strconv.Itoa(int(k-glfw3.KeyF1)+1)
		return n, n
	}
	if n, ok := namedKeys[k]; ok {
		return n[0], n[1]
	}
	return "Unidentified", "Unidentified"
}

// keyEvent converts a GLFW key callback to a Key payload.
func keyEvent(k glfw3.Key, action glfw3.Action, mods glfw3.ModifierKey) *engine.Key {
	key, code := keyNames(k, mods)
	ev := &engine.Key{
		Event:     "keydown",
		Key:       key,
		Code:      code,
		Repeat:    action == glfw3.Repeat,
		Modifiers: modifiers(mods),
	}
	if action == glfw3.Release {
		ev.Event = "keyup"
	}
	return ev
}

// clicker turns button transitions into click and dblclick events.
type clicker struct {
	down     gpucontext.Button
	downX    float64
	downY    float64
	pressed  bool
	lastAt   time.Time
	lastX    float64
	lastY    float64
	lastBtn  gpucontext.Button
	clickRun int
}

func (c *clicker) press(b gpucontext.Button, x, y float64) {
	c.down, c.downX, c.downY, c.pressed = b, x, y, true
}

// release returns the events a button release produces at time t.
func (c *clicker) release(b gpucontext.Button, x, y float64, t time.Time) []string {
	events := []string{"mouseup"}
	if !c.pressed || c.down != b || !near(c.downX, c.downY, x, y) {
		c.pressed = false
		return events
	}
	c.pressed = false
	events = append(events, "click")
	if c.clickRun > 0 && c.lastBtn == b && t.Sub(c.lastAt) <= dblClickInterval && near(c.lastX, c.lastY, x, y) {
		events = append(events, "dblclick")
		c.clickRun = 0
		return events
	}
	c.clickRun = 1
	c.lastAt, c.lastX, c.lastY, c.lastBtn = t, x, y, b
	return events
}

func near(x0, y0, x1, y1 float64) bool {
	return math.Abs(x1-x0) <= clickSlop && math.Abs(y1-y0) <= clickSlop
}

// queue collects callback events between polls. Each entry becomes one
// dispatch; consecutive pointer moves collapse into the latest one.
type queue struct {
	pending []engine.Payload
	clicks  clicker
	mods    glfw3.ModifierKey
	now     func() time.Time
}

func newQueue() *queue {
	return &queue{now: time.Now}
}

func (q *queue) push(p engine.Payload) { q.pending = append(q.pending, p) }

// take returns and clears the queued payloads.
func (q *queue) take() []engine.Payload {
	p := q.pending
	q.pending = nil
	return p
}

func (q *queue) moved(x, y int) {
	if n := len(q.pending); n > 0 && q.pending[n-1].Position != nil && onlyPosition(q.pending[n-1]) {
		q.pending[n-1].Position = &engine.Position{X: x, Y: y}
		return
	}
	q.push(engine.Payload{Position: &engine.Position{X: x, Y: y}})
}

func onlyPosition(p engine.Payload) bool {
	p.Position = nil
	return p.Empty()
}

func (q *queue) resized(w, h int) {
	if n := len(q.pending); n > 0 && q.pending[n-1].Size != nil {
		q.pending[n-1].Size = &engine.Size{Width: w, Height: h}
		return
	}
	q.push(engine.Payload{Size: &engine.Size{Width: w, Height: h}})
}

func (q *queue) fullscreen(on bool) {
	q.push(engine.Payload{Fullscreen: &on})
}

func (q *queue) key(k glfw3.Key, action glfw3.Action, mods glfw3.ModifierKey) {
	q.mods = mods
	q.push(engine.Payload{Key: keyEvent(k, action, mods)})
}

func (q *queue) char(r rune) {
	q.push(engine.Payload{Input: &engine.Input{Char: r, Modifiers: modifiers(q.mods)}})
}

func (q *queue) cursor(x, y float64) {
	if n := len(q.pending); n > 0 {
		if m := q.pending[n-1].Mouse; m != nil && len(m.Events) == 1 && m.Events[0] == "mousemove" {
			m.X, m.Y = x, y
			return
		}
	}
	q.push(engine.Payload{Mouse: &engine.Mouse{
		Events:    []string{"mousemove"},
		X:         x,
		Y:         y,
		Button:    gpucontext.ButtonNone,
		Modifiers: modifiers(q.mods),
	}})
}

func (q *queue) mouse(b glfw3.MouseButton, action glfw3.Action, mods glfw3.ModifierKey, x, y float64) {
	q.mods = mods
	btn := button(b)
	m := &engine.Mouse{X: x, Y: y, Button: btn, Modifiers: modifiers(mods)}
	if action == glfw3.Press {
		q.clicks.press(btn, x, y)
		m.Events = []string{"mousedown"}
	} else {
		m.Events = q.clicks.release(btn, x, y, q.now())
	}
	q.push(engine.Payload{Mouse: m})
}

// scroll queues a wheel event from GLFW offsets, which are positive when
// scrolling up or left.
func (q *queue) scroll(xoff, yoff float64) {
	dx, dy := -xoff*wheelLine, -yoff*wheelLine
	if n := len(q.pending); n > 0 && q.pending[n-1].Wheel != nil {
		w := q.pending[n-1].Wheel
		w.DeltaX += dx
		w.DeltaY += dy
		return
	}
	q.push(engine.Payload{Wheel: &engine.Wheel{DeltaX: dx, DeltaY: dy}})
}
