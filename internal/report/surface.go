package report

import "context"

// DefaultScale is the device pixel ratio pages are captured at.
const DefaultScale = 2

// SurfaceOptions configures a rendering surface.
type SurfaceOptions struct {
	WidthPx int
	Scale   float64
}

func (o SurfaceOptions) withDefaults() SurfaceOptions {
	if o.WidthPx <= 0 {
		o.WidthPx = PageWidthPx
	}
	if o.Scale <= 0 {
		o.Scale = DefaultScale
	}
	return o
}

// Surface is an isolated, single-page rendering target.
type Surface interface {
	// Render loads html and returns once the backend reports the page
	// ready: document loaded, fonts loaded and one frame painted.
	Render(ctx context.Context, html []byte) error
	// Capture rasterizes the #report-page element to PNG.
	Capture(ctx context.Context) ([]byte, error)
	Close() error
}

// SurfaceFactory creates surfaces. The generator holds at most one open
// surface at a time.
type SurfaceFactory interface {
	NewSurface(ctx context.Context, opts SurfaceOptions) (Surface, error)
}
