// Package canvas provides multi-page drawing documents on top of a pluggable
// 2-D rendering engine.
//
// # Overview
//
// A [Canvas] owns an ordered set of pages. Each [Page] is a drawing context
// with an HTML Canvas style API. Pages are exported to PNG, JPEG, PDF or SVG
// either in memory ([Canvas.ToBuffer], [Canvas.ToDataURL]) or to files
// ([Canvas.SaveAs]), and can be shown in an interactive [Window].
//
// # Quick Start
//
//	import (
//	    "github.com/gogpu/canvas"
//	    _ "github.com/gogpu/canvas/backend/software"
//	)
//
//	c, err := canvas.New(400, 300)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer c.Close()
//
//	ctx, _ := c.GetContext("2d")
//	ctx.SetFillStyle(canvas.Color("tomato"))
//	ctx.FillRect(10, 10, 100, 100)
//
//	if _, err := c.SaveAs("out.png", canvas.ExportOptions{}); err != nil {
//	    log.Fatal(err)
//	}
//
// # Engines
//
// The package never draws by itself. Every object holds one opaque handle
// from an [engine.Engine]. The engine is chosen with [WithEngine], or taken
// from the engine registry; importing backend/software registers the gg based
// software engine.
//
// # Pages
//
// [Canvas.NewPage] adds a page at the end of the document. [Canvas.GetContext]
// returns the newest page and [Canvas.Pages] lists them oldest first.
//
// # Synchronous and asynchronous export
//
// Export methods return a [Future]. On a synchronous canvas (the default) the
// engine runs before the method returns and the Future is already settled;
// engine errors are returned directly. On an asynchronous canvas
// ([WithAsync]) the engine runs in the background and the Future settles
// when it finishes. Invalid options fail immediately in both modes.
//
// # Coordinate System
//
// Matrices use DOM naming:
//
//	x' = A*x + C*y + E
//	y' = B*x + D*y + F
//
// and are converted to the engine's column-major basis at the boundary.
package canvas
