package canvas

import (
	"fmt"
	"math"

	"github.com/gogpu/canvas/engine"
)

const gradientFactory = "Page.CreateLinearGradient, CreateRadialGradient or CreateConicGradient"

// Gradient is a linear, radial or conic color ramp usable as a Style.
type Gradient struct {
	resource
	kind string
}

func newGradient(eng engine.Engine, kind string, args ...any) (*Gradient, error) {
	if eng == nil {
		return nil, fmt.Errorf("%w (use %s instead)", ErrNotConstructor, gradientFactory)
	}
	res, err := alloc(eng, engine.KindGradient, kind, gradientFactory, args...)
	if err != nil {
		return nil, err
	}
	g := &Gradient{resource: res, kind: kind}
	track(g, g.resource)
	return g, nil
}

// Kind returns "linear", "radial" or "conic".
func (g *Gradient) Kind() string { return g.kind }

// AddColorStop adds a color at offset, which must lie in [0, 1].
func (g *Gradient) AddColorStop(offset float64, color Color) error {
	if math.IsNaN(offset) || offset < 0 || offset > 1 {
		return fmt.Errorf("%w: got %g", ErrColorStop, offset)
	}
	_, err := g.invoke(gradientFactory, engine.OpAddColorStop, offset, string(color))
	return err
}

func (g *Gradient) paint() (any, error) {
	if !g.alive() {
		return nil, ErrClosed
	}
	return g.handle(), nil
}
