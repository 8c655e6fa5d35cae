// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package glfw

import (
	"slices"
	"testing"
	"time"

	glfw3 "github.com/go-gl/glfw/v3.3/glfw"
	"github.com/gogpu/gpucontext"

	"github.com/gogpu/canvas/engine"
)

func TestKeyNames(t *testing.T) {
	tests := []struct {
		key      glfw3.Key
		mods     glfw3.ModifierKey
		wantKey  string
		wantCode string
	}{
		{glfw3.KeyA, 0, "a", "KeyA"},
		{glfw3.KeyQ, glfw3.ModShift, "Q", "KeyQ"},
		{glfw3.KeyQ, glfw3.ModCapsLock, "Q", "KeyQ"},
		{glfw3.KeyQ, glfw3.ModShift | glfw3.ModCapsLock, "q", "KeyQ"},
		{glfw3.Key1, 0, "1", "Digit1"},
		{glfw3.Key1, glfw3.ModShift, "!", "Digit1"},
		{glfw3.Key0, glfw3.ModShift, ")", "Digit0"},
		{glfw3.KeyKP7, 0, "7", "Numpad7"},
		{glfw3.KeyF1, 0, "F1", "F1"},
		{glfw3.KeyF12, 0, "F12", "F12"},
		{glfw3.KeyEscape, 0, "Escape", "Escape"},
		{glfw3.KeySpace, 0, " ", "Space"},
		{glfw3.KeyLeft, 0, "ArrowLeft", "ArrowLeft"},
		{glfw3.KeyLeftSuper, 0, "Meta", "MetaLeft"},
		{glfw3.KeyRightControl, 0, "Control", "ControlRight"},
		{glfw3.KeyUnknown, 0, "Unidentified", "Unidentified"},
	}
	for _, tt := range tests {
		key, code := keyNames(tt.key, tt.mods)
		if key != tt.wantKey || code != tt.wantCode {
			t.Errorf("keyNames(%d, %d) = %q, %q; want %q, %q", tt.key, tt.mods, key, code, tt.wantKey, tt.wantCode)
		}
	}
}

func TestKeyEvent(t *testing.T) {
	down := keyEvent(glfw3.KeyW, glfw3.Press, glfw3.ModSuper)
	if down.Event != "keydown" || down.Repeat || !down.Modifiers.HasSuper() {
		t.Errorf("press = %+v", down)
	}
	rep := keyEvent(glfw3.KeyW, glfw3.Repeat, 0)
	if rep.Event != "keydown" || !rep.Repeat {
		t.Errorf("repeat = %+v", rep)
	}
	up := keyEvent(glfw3.KeyW, glfw3.Release, 0)
	if up.Event != "keyup" {
		t.Errorf("release event = %q, want keyup", up.Event)
	}
}

func TestModifiers(t *testing.T) {
	m := modifiers(glfw3.ModShift | glfw3.ModControl | glfw3.ModNumLock)
	if !m.HasShift() || !m.HasControl() || m.HasAlt() || m.HasSuper() {
		t.Errorf("modifiers = %b", m)
	}
	if m&gpucontext.ModNumLock == 0 {
		t.Error("num lock dropped")
	}
	if modifiers(0) != 0 {
		t.Error("no modifiers should map to zero")
	}
}

func TestButton(t *testing.T) {
	tests := []struct {
		in   glfw3.MouseButton
		want gpucontext.Button
	}{
		{glfw3.MouseButtonLeft, gpucontext.ButtonLeft},
		{glfw3.MouseButtonRight, gpucontext.ButtonRight},
		{glfw3.MouseButtonMiddle, gpucontext.ButtonMiddle},
		{glfw3.MouseButton4, gpucontext.ButtonX1},
		{glfw3.MouseButton5, gpucontext.ButtonX2},
		{glfw3.MouseButton8, gpucontext.ButtonNone},
	}
	for _, tt := range tests {
		if got := button(tt.in); got != tt.want {
			t.Errorf("button(%d) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestClicker(t *testing.T) {
	var c clicker
	t0 := time.Unix(100, 0)

	c.press(gpucontext.ButtonLeft, 10, 10)
	if got := c.release(gpucontext.ButtonLeft, 11, 10, t0); !slices.Equal(got, []string{"mouseup", "click"}) {
		t.Errorf("first release = %v", got)
	}
	c.press(gpucontext.ButtonLeft, 11, 11)
	got := c.release(gpucontext.ButtonLeft, 11, 11, t0.Add(200*time.Millisecond))
	if !slices.Equal(got, []string{"mouseup", "click", "dblclick"}) {
		t.Errorf("second release = %v", got)
	}

	// A third quick click starts a new run.
	c.press(gpucontext.ButtonLeft, 11, 11)
	got = c.release(gpucontext.ButtonLeft, 11, 11, t0.Add(300*time.Millisecond))
	if !slices.Equal(got, []string{"mouseup", "click"}) {
		t.Errorf("third release = %v", got)
	}

	// Dragging away is not a click.
	c.press(gpucontext.ButtonLeft, 0, 0)
	if got := c.release(gpucontext.ButtonLeft, 50, 0, t0.Add(time.Second)); !slices.Equal(got, []string{"mouseup"}) {
		t.Errorf("drag release = %v", got)
	}

	// Slow clicks never pair.
	c.press(gpucontext.ButtonRight, 5, 5)
	c.release(gpucontext.ButtonRight, 5, 5, t0.Add(2*time.Second))
	c.press(gpucontext.ButtonRight, 5, 5)
	if got := c.release(gpucontext.ButtonRight, 5, 5, t0.Add(3*time.Second)); slices.Contains(got, "dblclick") {
		t.Errorf("slow release = %v", got)
	}

	// Release of a button that was never pressed.
	if got := c.release(gpucontext.ButtonMiddle, 5, 5, t0.Add(4*time.Second)); !slices.Equal(got, []string{"mouseup"}) {
		t.Errorf("stray release = %v", got)
	}
}

func TestQueueCoalesces(t *testing.T) {
	q := newQueue()
	q.cursor(1, 1)
	q.cursor(2, 3)
	q.scroll(0, 1)
	q.scroll(0, 1)
	q.resized(10, 10)
	q.resized(20, 30)
	q.moved(4, 5)
	q.moved(6, 7)

	got := q.take()
	if len(got) != 4 {
		t.Fatalf("queued %d payloads, want 4", len(got))
	}
	if m := got[0].Mouse; m == nil || m.X != 2 || m.Y != 3 || m.Button != gpucontext.ButtonNone {
		t.Errorf("mouse = %+v", got[0].Mouse)
	}
	if w := got[1].Wheel; w == nil || w.DeltaY != -2*wheelLine || w.DeltaX != 0 {
		t.Errorf("wheel = %+v", got[1].Wheel)
	}
	if s := got[2].Size; s == nil || s.Width != 20 || s.Height != 30 {
		t.Errorf("size = %+v", got[2].Size)
	}
	if p := got[3].Position; p == nil || p.X != 6 || p.Y != 7 {
		t.Errorf("position = %+v", got[3].Position)
	}
	if len(q.take()) != 0 {
		t.Error("take did not clear the queue")
	}
}

func TestQueueMouseButtons(t *testing.T) {
	q := newQueue()
	now := time.Unix(0, 0)
	q.now = func() time.Time { return now }

	q.mouse(glfw3.MouseButtonLeft, glfw3.Press, glfw3.ModShift, 5, 5)
	q.cursor(6, 6)
	q.mouse(glfw3.MouseButtonLeft, glfw3.Release, glfw3.ModShift, 6, 6)

	got := q.take()
	if len(got) != 3 {
		t.Fatalf("queued %d payloads, want 3", len(got))
	}
	if !slices.Equal(got[0].Mouse.Events, []string{"mousedown"}) || !got[0].Mouse.Modifiers.HasShift() {
		t.Errorf("press = %+v", got[0].Mouse)
	}
	if !got[1].Mouse.Modifiers.HasShift() {
		t.Error("move should carry the held modifiers")
	}
	if !slices.Equal(got[2].Mouse.Events, []string{"mouseup", "click"}) {
		t.Errorf("release = %v", got[2].Mouse.Events)
	}
}

func TestQueueKeysAndInput(t *testing.T) {
	q := newQueue()
	q.key(glfw3.KeyA, glfw3.Press, glfw3.ModShift)
	q.char('A')
	q.key(glfw3.KeyA, glfw3.Release, 0)

	got := q.take()
	if len(got) != 3 {
		t.Fatalf("queued %d payloads, want 3", len(got))
	}
	if got[0].Key == nil || got[0].Key.Key != "A" {
		t.Errorf("keydown = %+v", got[0].Key)
	}
	if in := got[1].Input; in == nil || in.Char != 'A' || !in.Modifiers.HasShift() {
		t.Errorf("input = %+v", got[1].Input)
	}
	if got[2].Key == nil || got[2].Key.Event != "keyup" {
		t.Errorf("keyup = %+v", got[2].Key)
	}
}

func TestDrainPullsStateWhenIdle(t *testing.T) {
	q := newQueue()
	var seen []engine.Payload
	var applied []engine.State
	dispatch := func(p engine.Payload) engine.State {
		seen = append(seen, p)
		return engine.State{Active: false, Title: "closed"}
	}
	st := drain(q, dispatch, func(s engine.State) { applied = append(applied, s) })
	if len(seen) != 1 || seen[0].Mouse != nil || seen[0].Key != nil {
		t.Fatalf("dispatched %+v, want one empty payload", seen)
	}
	if st.Active || len(applied) != 1 || applied[0].Title != "closed" {
		t.Errorf("state = %+v, applied = %+v", st, applied)
	}
}

func TestDrainStopsWhenInactive(t *testing.T) {
	q := newQueue()
	q.key(glfw3.KeyA, glfw3.Press, 0)
	q.key(glfw3.KeyA, glfw3.Release, 0)
	calls := 0
	dispatch := func(engine.Payload) engine.State {
		calls++
		return engine.State{Active: false}
	}
	drain(q, dispatch, func(engine.State) {})
	if calls != 1 {
		t.Errorf("dispatched %d payloads after close, want 1", calls)
	}
}

func TestFit(t *testing.T) {
	tests := []struct {
		name           string
		pw, ph, ww, wh int
		want           viewport
	}{
		{"same", 100, 50, 100, 50, viewport{0, 0, 100, 50}},
		{"wider window", 100, 100, 300, 100, viewport{100, 0, 100, 100}},
		{"taller window", 200, 100, 200, 300, viewport{0, 100, 200, 100}},
		{"scaled up", 10, 10, 40, 20, viewport{10, 0, 20, 20}},
		{"empty page", 0, 10, 40, 20, viewport{0, 0, 40, 20}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := fit(tt.pw, tt.ph, tt.ww, tt.wh); got != tt.want {
				t.Errorf("fit = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestToPage(t *testing.T) {
	v := fit(10, 10, 40, 20)
	x, y := v.toPage(20, 10, 10, 10)
	if x != 5 || y != 5 {
		t.Errorf("center = (%v, %v), want (5, 5)", x, y)
	}
	x, y = v.toPage(10, 0, 10, 10)
	if x != 0 || y != 0 {
		t.Errorf("corner = (%v, %v), want (0, 0)", x, y)
	}
}

func TestStandardCursor(t *testing.T) {
	tests := []struct {
		in   gpucontext.CursorShape
		want glfw3.StandardCursor
	}{
		{gpucontext.CursorDefault, glfw3.ArrowCursor},
		{gpucontext.CursorPointer, glfw3.HandCursor},
		{gpucontext.CursorText, glfw3.IBeamCursor},
		{gpucontext.CursorCrosshair, glfw3.CrosshairCursor},
		{gpucontext.CursorResizeNS, glfw3.VResizeCursor},
		{gpucontext.CursorResizeEW, glfw3.HResizeCursor},
		{gpucontext.CursorWait, glfw3.ArrowCursor},
	}
	for _, tt := range tests {
		if got := standardCursor(tt.in); got != tt.want {
			t.Errorf("standardCursor(%v) = %d, want %d", tt.in, got, tt.want)
		}
	}
}
