package canvas

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"sync"

	"github.com/gogpu/canvas/engine"
)

const imageFactory = "NewImage"

// errMissingSource is returned by Decode when no source was set.
var errMissingSource = errors.New("canvas: missing source URL")

// Image is a decoded bitmap or vector image, drawable with Page.DrawImage.
//
// Loading follows the DOM lifecycle: SetSrc starts loading in the
// background, Complete reports whether loading has settled, and Decode
// waits for it. OnLoad and OnError callbacks run on the loading goroutine.
type Image struct {
	resource

	mu       sync.Mutex
	src      string
	info     engine.ImageInfo
	complete bool
	err      error
	done     chan struct{}
	gen      int
	onLoad   func(*Image)
	onError  func(*Image, error)
}

// NewImage returns an empty image. A nil engine selects engine.Default.
func NewImage(eng engine.Engine) (*Image, error) {
	eng, err := resolveEngine(eng)
	if err != nil {
		return nil, err
	}
	res, err := alloc(eng, engine.KindImage, "new", imageFactory)
	if err != nil {
		return nil, err
	}
	img := &Image{resource: res, complete: true}
	track(img, img.resource)
	return img, nil
}

// LoadImage creates an image and loads src synchronously. src may be a
// file path, a data: URI or an http(s) URL.
func LoadImage(ctx context.Context, eng engine.Engine, src string) (*Image, error) {
	img, err := NewImage(eng)
	if err != nil {
		return nil, err
	}
	if err := img.Load(ctx, src); err != nil {
		img.Close()
		return nil, err
	}
	return img, nil
}

// OnLoad registers a callback for successful loads.
func (img *Image) OnLoad(fn func(*Image)) {
	img.mu.Lock()
	img.onLoad = fn
	img.mu.Unlock()
}

// OnError registers a callback for failed loads.
func (img *Image) OnError(fn func(*Image, error)) {
	img.mu.Lock()
	img.onError = fn
	img.mu.Unlock()
}

// Src returns the current source.
func (img *Image) Src() string {
	img.mu.Lock()
	defer img.mu.Unlock()
	return img.src
}

// Width returns the natural width, or 0 before a successful load.
func (img *Image) Width() int {
	img.mu.Lock()
	defer img.mu.Unlock()
	return img.info.Width
}

// Height returns the natural height, or 0 before a successful load.
func (img *Image) Height() int {
	img.mu.Lock()
	defer img.mu.Unlock()
	return img.info.Height
}

// Complete reports whether the last load has settled, successfully or not.
func (img *Image) Complete() bool {
	img.mu.Lock()
	defer img.mu.Unlock()
	return img.complete
}

// SetSrc starts loading src in the background. A later SetSrc supersedes
// an unfinished load.
func (img *Image) SetSrc(src string) {
	gen, _ := img.begin(src)
	go func() {
		data, err := fetch(context.Background(), src)
		img.settle(gen, data, err)
	}()
}

// Load reads and decodes src before returning.
func (img *Image) Load(ctx context.Context, src string) error {
	gen, _ := img.begin(src)
	data, err := fetch(ctx, src)
	return img.settle(gen, data, err)
}

// SetData decodes encoded image bytes directly.
func (img *Image) SetData(data []byte) error {
	gen, _ := img.begin("")
	return img.settle(gen, data, nil)
}

// Decode waits until loading settles and returns its error.
func (img *Image) Decode(ctx context.Context) error {
	img.mu.Lock()
	src, done, gen := img.src, img.done, img.gen
	img.mu.Unlock()
	if gen == 0 && src == "" {
		return errMissingSource
	}
	select {
	case <-done:
	case <-ctx.Done():
		return ctx.Err()
	}
	img.mu.Lock()
	defer img.mu.Unlock()
	return img.err
}

func (img *Image) begin(src string) (int, chan struct{}) {
	img.mu.Lock()
	defer img.mu.Unlock()
	img.gen++
	img.src = src
	img.complete = false
	img.err = nil
	img.done = make(chan struct{})
	return img.gen, img.done
}

// settle decodes data into the engine handle and fires callbacks, unless a
// newer load started meanwhile.
func (img *Image) settle(gen int, data []byte, err error) error {
	var info engine.ImageInfo
	if err == nil {
		info, err = as[engine.ImageInfo](img.invoke(imageFactory, engine.OpSetData, data))
	}

	img.mu.Lock()
	if gen != img.gen {
		img.mu.Unlock()
		return err
	}
	img.complete = true
	img.err = err
	if err == nil {
		img.info = info
	} else {
		img.info = engine.ImageInfo{}
	}
	close(img.done)
	onLoad, onError, src := img.onLoad, img.onError, img.src
	img.mu.Unlock()

	if err != nil {
		Logger().Warn("canvas: image load failed", "src", truncate(src, 64), "err", err)
		if onError != nil {
			onError(img, err)
		}
		return err
	}
	if onLoad != nil {
		onLoad(img)
	}
	return nil
}

func (img *Image) imageHandle() (engine.Handle, error) {
	if !img.alive() {
		return nil, ErrClosed
	}
	return img.handle(), nil
}

// fetch reads image bytes from a file path, data: URI or http(s) URL.
func fetch(ctx context.Context, src string) ([]byte, error) {
	switch {
	case src == "":
		return nil, errMissingSource
	case strings.HasPrefix(src, "data:"):
		return decodeDataURI(src)
	case strings.HasPrefix(src, "http://"), strings.HasPrefix(src, "https://"):
		return fetchURL(ctx, src)
	default:
		path := strings.TrimPrefix(src, "file://")
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("%w from %q: %w", ErrImageLoad, src, err)
		}
		return data, nil
	}
}

func fetchURL(ctx context.Context, src string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src, nil)
	if err != nil {
		return nil, fmt.Errorf("%w from %q: %w", ErrImageLoad, src, err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w from %q: %w", ErrImageLoad, src, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w from %q (error %d)", ErrImageLoad, src, resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

// decodeDataURI decodes "data:[<mime>][;base64],<payload>".
func decodeDataURI(src string) ([]byte, error) {
	meta, payload, ok := strings.Cut(strings.TrimPrefix(src, "data:"), ",")
	if !ok {
		return nil, fmt.Errorf("%w: malformed data URI", ErrImageLoad)
	}
	if strings.HasSuffix(meta, ";base64") {
		data, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrImageLoad, err)
		}
		return data, nil
	}
	text, err := url.PathUnescape(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrImageLoad, err)
	}
	return []byte(text), nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "…"
}
