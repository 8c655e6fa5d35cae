package canvas

import "context"

// Destination stores exported files outside the local file system.
//
// name is the full expanded filename including its scheme, e.g.
// "s3://bucket/frames/001.png".
type Destination interface {
	Put(ctx context.Context, name, mime string, data []byte) error
}

// DestinationFunc adapts a function to Destination.
type DestinationFunc func(ctx context.Context, name, mime string, data []byte) error

// Put calls f.
func (f DestinationFunc) Put(ctx context.Context, name, mime string, data []byte) error {
	return f(ctx, name, mime, data)
}
