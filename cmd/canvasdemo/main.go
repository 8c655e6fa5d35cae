// Command canvasdemo draws a small multi-page document and exports it.
//
// Usage:
//
//	canvasdemo -out 'out/page-{}.png'        write one PNG per page
//	canvasdemo -out demo.pdf                 write every page to one PDF
//	canvasdemo -serve :8080                  serve exports over HTTP
//	canvasdemo -window                       show the newest page in a window
//
// When CANVAS_S3_BUCKET is set (in the environment or a .env file), output
// names starting with s3:// are uploaded to that bucket.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/gogpu/canvas"
	"github.com/gogpu/canvas/backend/software"
	_ "github.com/gogpu/canvas/display/glfw"
	"github.com/gogpu/canvas/httpexport"
	"github.com/gogpu/canvas/sink/s3"
)

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file found")
	}

	var (
		width    = flag.Int("width", 640, "page width")
		height   = flag.Int("height", 400, "page height")
		pages    = flag.Int("pages", 3, "number of pages")
		output   = flag.String("out", "demo-{}.png", "output file; {} is replaced by the page number")
		density  = flag.Float64("density", 1, "raster density")
		outline  = flag.Bool("outline", false, "convert text to paths in vector output")
		serve    = flag.String("serve", "", "serve exports on this address instead of writing files")
		window   = flag.Bool("window", false, "show the document in a window")
		logLevel = flag.String("loglevel", "info", "log level (debug, info, warn, error)")
	)
	flag.Parse()

	var level slog.Level
	if err := level.UnmarshalText([]byte(*logLevel)); err != nil {
		fmt.Fprintf(os.Stderr, "invalid log level %q\n", *logLevel)
		os.Exit(2)
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(log)
	canvas.SetLogger(log)
	software.SetLogger(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	c, err := newCanvas(ctx, *width, *height)
	if err != nil {
		log.Error("create canvas", "err", err)
		os.Exit(1)
	}
	defer c.Close()

	for i := range max(*pages, 1) {
		if err := drawPage(c, i); err != nil {
			log.Error("draw page", "page", i+1, "err", err)
			os.Exit(1)
		}
	}

	switch {
	case *serve != "":
		err = runServer(ctx, log, c, *serve)
	case *window:
		err = runWindow(c)
	default:
		err = save(ctx, c, *output, canvas.ExportOptions{Density: *density, Outline: *outline})
		if err == nil {
			log.Info("saved", "out", *output, "pages", c.PageCount())
		}
	}
	if err != nil {
		log.Error("canvasdemo failed", "err", err)
		os.Exit(1)
	}
}

// newCanvas creates the canvas, routing s3:// output when a bucket is
// configured.
func newCanvas(ctx context.Context, w, h int) (*canvas.Canvas, error) {
	eng, err := software.Default()
	if err != nil {
		return nil, err
	}
	opts := []canvas.Option{canvas.WithEngine(eng)}
	if bucket := os.Getenv("CANVAS_S3_BUCKET"); bucket != "" {
		var sopts []s3.Option
		if prefix := os.Getenv("CANVAS_S3_PREFIX"); prefix != "" {
			sopts = append(sopts, s3.WithPrefix(prefix))
		}
		if endpoint := os.Getenv("CANVAS_S3_ENDPOINT"); endpoint != "" {
			sopts = append(sopts, s3.WithEndpoint(endpoint))
		}
		store, err := s3.New(ctx, bucket, sopts...)
		if err != nil {
			return nil, err
		}
		opts = append(opts, canvas.WithDestination("s3", store))
	}
	return canvas.New(float64(w), float64(h), opts...)
}

func drawPage(c *canvas.Canvas, i int) error {
	var (
		p   *canvas.Page
		err error
	)
	if i == 0 {
		p, err = c.GetContext("2d")
	} else {
		p, err = c.NewPage()
	}
	if err != nil {
		return err
	}
	w, h := float64(c.Width()), float64(c.Height())

	bg, err := p.CreateLinearGradient(0, 0, 0, h)
	if err != nil {
		return err
	}
	hue := float64(i*70) + 200
	if err := errors.Join(
		bg.AddColorStop(0, canvas.Color(fmt.Sprintf("hsl(%g, 60%%, 25%%)", hue))),
		bg.AddColorStop(1, canvas.Color(fmt.Sprintf("hsl(%g, 60%%, 8%%)", hue))),
		p.SetFillStyle(bg),
		p.FillRect(0, 0, w, h),
	); err != nil {
		return err
	}

	// Petals around the center.
	petals := 5 + i*2
	if err := p.Save(); err != nil {
		return err
	}
	if err := p.Translate(w/2, h/2); err != nil {
		return err
	}
	for k := range petals {
		color := canvas.Color(fmt.Sprintf("hsla(%d, 80%%, 60%%, 0.6)", (k*360/petals+i*40)%360))
		if err := errors.Join(
			p.Rotate(2*math.Pi/float64(petals)),
			p.BeginPath(),
			p.Ellipse(h/5, 0, h/5, h/14, 0, 0, 2*math.Pi, false),
			p.SetFillStyle(color),
			p.Fill(),
		); err != nil {
			return err
		}
	}
	if err := p.Restore(); err != nil {
		return err
	}

	return errors.Join(
		p.SetFillStyle(canvas.Color("white")),
		p.SetFont("bold 28px Go"),
		p.SetTextAlign("center"),
		p.FillText(fmt.Sprintf("Page %d", i+1), w/2, h-32),
	)
}

func save(ctx context.Context, c *canvas.Canvas, out string, opts canvas.ExportOptions) error {
	fut, err := c.SaveAs(out, opts)
	if err != nil {
		return err
	}
	_, err = fut.Await(ctx)
	return err
}

func runServer(ctx context.Context, log *slog.Logger, c *canvas.Canvas, addr string) error {
	srv := httpexport.New(httpexport.WithLogger(log))
	srv.Publish("demo", c)

	hs := &http.Server{Addr: addr, Handler: srv.Router(), ReadHeaderTimeout: 10 * time.Second}
	errc := make(chan error, 1)
	go func() {
		log.Info("starting server", "addr", addr)
		errc <- hs.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	log.Info("shutting down")
	shutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return hs.Shutdown(shutdown)
}

func runWindow(c *canvas.Canvas) error {
	win, err := canvas.NewWindow(float64(c.Width()), float64(c.Height()),
		canvas.WithCanvas(c),
		canvas.WithTitle("canvasdemo"),
	)
	if err != nil {
		return err
	}
	win.OnKey(func(ev *canvas.KeyEvent) {
		if ev.Type != canvas.EventKeyDown {
			return
		}
		switch ev.Key {
		case "ArrowLeft":
			win.SetPage(win.Page() - 1)
		case "ArrowRight":
			win.SetPage(win.Page() + 1)
		}
	})
	return win.Display()
}
