package canvas

import (
	"fmt"

	"github.com/gogpu/canvas/engine"
)

const patternFactory = "Page.CreatePattern"

// Pattern repeats an image or a page's contents. Usable as a Style.
type Pattern struct {
	resource
}

func newPattern(eng engine.Engine, src ImageSource, repetition string) (*Pattern, error) {
	if src == nil {
		return nil, fmt.Errorf("%w: nil pattern source", ErrInvalidArgument)
	}
	switch repetition {
	case "":
		repetition = "repeat"
	case "repeat", "repeat-x", "repeat-y", "no-repeat":
	default:
		return nil, fmt.Errorf("%w: repetition %q", ErrInvalidArgument, repetition)
	}
	h, err := src.imageHandle()
	if err != nil {
		return nil, err
	}
	variant := "from_canvas"
	if _, ok := src.(*Image); ok {
		variant = "from_image"
	}
	res, err := alloc(eng, engine.KindPattern, variant, patternFactory, h, repetition)
	if err != nil {
		return nil, err
	}
	pat := &Pattern{resource: res}
	track(pat, pat.resource)
	return pat, nil
}

// SetTransform sets the pattern's own transform.
func (pat *Pattern) SetTransform(m Matrix) error {
	_, err := pat.invoke(patternFactory, engine.OpSetTransform, ToEngineBasis(m))
	return err
}

func (pat *Pattern) paint() (any, error) {
	if !pat.alive() {
		return nil, ErrClosed
	}
	return pat.handle(), nil
}
