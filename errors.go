package canvas

import "errors"

// Validation and misuse errors. Engine errors are returned unwrapped.
var (
	// ErrFormat is returned when an export format cannot be determined or
	// is not supported.
	ErrFormat = errors.New("canvas: invalid export format")

	// ErrPageRange is returned when an export page index does not name a page.
	ErrPageRange = errors.New("canvas: page out of range")

	// ErrQuality is returned when export quality is outside 0-100.
	ErrQuality = errors.New("canvas: quality out of range")

	// ErrColorStop is returned for gradient offsets outside [0, 1].
	ErrColorStop = errors.New("canvas: color stop offsets must be between 0.0 and 1.0")

	// ErrNotConstructor is returned when an object was not created through
	// its factory, or when the engine refused to construct it.
	ErrNotConstructor = errors.New("canvas: function is not a constructor")

	// ErrWindowActive is returned when changing state that is fixed while a
	// window is open.
	ErrWindowActive = errors.New("canvas: window is open")

	// ErrInvalidArgument is returned for malformed arguments.
	ErrInvalidArgument = errors.New("canvas: invalid argument")

	// ErrClosed is returned when using an object after Close.
	ErrClosed = errors.New("canvas: object is closed")

	// ErrUnsupportedContext is returned by GetContext for types other than "2d".
	ErrUnsupportedContext = errors.New("canvas: unsupported context type")

	// ErrNoEngine is returned when no engine was given and none is registered.
	ErrNoEngine = errors.New("canvas: no rendering engine")

	// ErrImageLoad is returned when an image source cannot be read.
	ErrImageLoad = errors.New("canvas: failed to load image")
)
