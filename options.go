package canvas

import "github.com/gogpu/canvas/engine"

// Option configures a Canvas during creation.
//
// Example:
//
//	// Default engine, synchronous export
//	c, _ := canvas.New(800, 600)
//
//	// Explicit engine, background export
//	c, _ := canvas.New(800, 600, canvas.WithEngine(eng), canvas.WithAsync(true))
type Option func(*canvasOptions)

type canvasOptions struct {
	engine       engine.Engine
	async        bool
	destinations map[string]Destination
}

func defaultOptions() canvasOptions {
	return canvasOptions{}
}

// WithEngine sets the rendering engine. Without it the canvas uses
// engine.Default.
func WithEngine(e engine.Engine) Option {
	return func(o *canvasOptions) {
		o.engine = e
	}
}

// WithAsync selects background export. See [Canvas.SetAsync].
func WithAsync(async bool) Option {
	return func(o *canvasOptions) {
		o.async = async
	}
}

// WithDestination routes SaveAs filenames of the form "scheme://..." to d.
//
// Example:
//
//	store, _ := s3.New(ctx, "my-bucket")
//	c, _ := canvas.New(800, 600, canvas.WithDestination("s3", store))
//	c.SaveAs("s3://my-bucket/frames/{000}.png", canvas.ExportOptions{})
func WithDestination(scheme string, d Destination) Option {
	return func(o *canvasOptions) {
		if o.destinations == nil {
			o.destinations = make(map[string]Destination)
		}
		o.destinations[scheme] = d
	}
}

func resolveEngine(e engine.Engine) (engine.Engine, error) {
	if e != nil {
		return e, nil
	}
	e, err := engine.Default()
	if err != nil {
		return nil, ErrNoEngine
	}
	return e, nil
}
