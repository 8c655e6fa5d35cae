// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package software

import (
	"fmt"

	"github.com/gogpu/canvas/engine"
)

// args reads positional operation arguments. The first mismatch is kept in
// err and every later read returns a zero value.
type args struct {
	op   engine.Op
	list []any
	i    int
	err  error
}

func newArgs(op engine.Op, list []any) *args {
	return &args{op: op, list: list}
}

func (a *args) next(want string) (any, bool) {
	if a.err != nil {
		return nil, false
	}
	if a.i >= len(a.list) {
		a.err = fmt.Errorf("%w: %s: missing argument %d (%s)", ErrArgs, a.op, a.i+1, want)
		return nil, false
	}
	v := a.list[a.i]
	a.i++
	return v, true
}

func (a *args) fail(v any, want string) {
	a.err = fmt.Errorf("%w: %s: argument %d is %T, want %s", ErrArgs, a.op, a.i, v, want)
}

// float accepts any Go number.
func (a *args) float() float64 {
	v, ok := a.next("number")
	if !ok {
		return 0
	}
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	case int64:
		return float64(n)
	case int32:
		return float64(n)
	}
	a.fail(v, "number")
	return 0
}

func (a *args) int() int {
	v, ok := a.next("integer")
	if !ok {
		return 0
	}
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case int32:
		return int(n)
	case float64:
		return int(n)
	}
	a.fail(v, "integer")
	return 0
}

func (a *args) str() string {
	v, ok := a.next("string")
	if !ok {
		return ""
	}
	s, ok := v.(string)
	if !ok {
		a.fail(v, "string")
	}
	return s
}

func (a *args) bool() bool {
	v, ok := a.next("bool")
	if !ok {
		return false
	}
	b, ok := v.(bool)
	if !ok {
		a.fail(v, "bool")
	}
	return b
}

func (a *args) floats() []float64 {
	v, ok := a.next("[]float64")
	if !ok {
		return nil
	}
	switch f := v.(type) {
	case []float64:
		return f
	case nil:
		return nil
	}
	a.fail(v, "[]float64")
	return nil
}

// matrix reads six engine-basis terms, given as [6]float64 or []float64.
func (a *args) matrix() [6]float64 {
	v, ok := a.next("matrix")
	if !ok {
		return [6]float64{}
	}
	switch m := v.(type) {
	case [6]float64:
		return m
	case []float64:
		if len(m) >= 6 {
			return [6]float64(m[:6])
		}
	}
	a.fail(v, "matrix")
	return [6]float64{}
}

// any returns the next argument unchecked. Missing arguments read as nil.
func (a *args) any() any {
	if a.err != nil || a.i >= len(a.list) {
		return nil
	}
	v := a.list[a.i]
	a.i++
	return v
}

// optFloat reads a trailing number, or def when absent.
func (a *args) optFloat(def float64) float64 {
	if a.i >= len(a.list) {
		return def
	}
	return a.float()
}

func (a *args) optStr(def string) string {
	if a.i >= len(a.list) {
		return def
	}
	return a.str()
}
