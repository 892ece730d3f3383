// Package report turns an inspection header and its items into a paginated
// A4 landscape PDF.
package report

import (
	"context"
	"fmt"
	"time"

	"hosereport/internal/inspection"
	"hosereport/internal/logging"
)

// Options configures a Generator. The zero value draws pages with the
// vector backend, eight items per page.
type Options struct {
	PageSize int

	// Surfaces rasterizes HTML pages. When nil pages are drawn as vectors.
	Surfaces       SurfaceFactory
	SurfaceOptions SurfaceOptions

	// Now stamps download filenames. Defaults to time.Now.
	Now func() time.Time

	// OnPage is called after each page has been appended.
	OnPage func(page, total int)
}

// Generator runs the export pipeline. It is safe for concurrent use when
// its SurfaceFactory is.
type Generator struct {
	opts Options
}

// NewGenerator creates a generator, filling in defaults.
func NewGenerator(opts Options) *Generator {
	if opts.PageSize <= 0 {
		opts.PageSize = DefaultPageSize
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	opts.SurfaceOptions = opts.SurfaceOptions.withDefaults()
	return &Generator{opts: opts}
}

// Engine names the backend pages are drawn with.
func (g *Generator) Engine() string {
	if g.opts.Surfaces == nil {
		return "vector"
	}
	return "chrome"
}

// Document is a finished export.
type Document struct {
	PDF      []byte
	Pages    int
	Items    int
	Checksum string
	Layouts  []PageLayout
}

// Generate validates and normalizes the input, then renders every page in
// order. Any failure aborts the whole export; no partial document is
// returned.
func (g *Generator) Generate(ctx context.Context, header *inspection.Header, rawItems any) (*Document, error) {
	if header == nil {
		return nil, ErrNoHeader
	}
	list, err := inspection.Items(rawItems)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, ErrNoItems
	}

	items := make([]inspection.Item, len(list))
	for i, raw := range list {
		it, err := inspection.ParseItem(raw)
		if err != nil {
			return nil, &ItemError{Index: i + 1, Err: err}
		}
		items[i] = it
	}
	logging.NormalizeDebug("normalized %d items for client %q", len(items), header.Client)

	timer := logging.StartTimer(logging.CategoryReport, "generate")
	defer timer.Stop()

	pages := Paginate(items, g.opts.PageSize)
	asm := NewAssembler(ReportTitle)
	layouts := make([]PageLayout, 0, len(pages))
	for _, p := range pages {
		layout := BuildLayout(header, p, len(pages))
		if err := g.drawPage(ctx, asm, layout); err != nil {
			return nil, &PageError{Page: p.Index + 1, Err: err}
		}
		layouts = append(layouts, layout)
		logging.ReportDebug("page %d/%d appended (%d rows)", p.Index+1, len(pages), len(p.Items))
		if g.opts.OnPage != nil {
			g.opts.OnPage(p.Index+1, len(pages))
		}
	}

	pdf, err := asm.Bytes()
	if err != nil {
		return nil, err
	}
	logging.PDFDebug("assembled %d pages, %d bytes", asm.Pages(), len(pdf))

	return &Document{
		PDF:      pdf,
		Pages:    len(pages),
		Items:    len(items),
		Checksum: Checksum(pdf),
		Layouts:  layouts,
	}, nil
}

// GenerateBlob returns the finished PDF bytes.
func (g *Generator) GenerateBlob(ctx context.Context, header *inspection.Header, rawItems any) ([]byte, error) {
	doc, err := g.Generate(ctx, header, rawItems)
	if err != nil {
		return nil, err
	}
	return doc.PDF, nil
}

// GenerateAndDownload generates the PDF and hands it to d under a name
// derived from the client and the current time. It returns that name.
func (g *Generator) GenerateAndDownload(ctx context.Context, header *inspection.Header, rawItems any, d Downloader) (string, error) {
	_, name, err := g.Export(ctx, header, rawItems, d)
	return name, err
}

// Export is GenerateAndDownload for callers that also want the document.
func (g *Generator) Export(ctx context.Context, header *inspection.Header, rawItems any, d Downloader) (*Document, string, error) {
	doc, err := g.Generate(ctx, header, rawItems)
	if err != nil {
		return nil, "", err
	}
	name := FileName(header.Client, g.opts.Now())
	if err := d.Download(ctx, name, doc.PDF); err != nil {
		return nil, "", fmt.Errorf("download %s: %w", name, err)
	}
	logging.Report("exported %s (%d pages, %d bytes)", name, doc.Pages, len(doc.PDF))
	return doc, name, nil
}

func (g *Generator) drawPage(ctx context.Context, asm *Assembler, layout PageLayout) error {
	if g.opts.Surfaces == nil {
		return asm.AddLayout(layout)
	}
	png, err := g.rasterize(ctx, layout)
	if err != nil {
		return err
	}
	return asm.AddImage(png)
}

// rasterize renders one page on a fresh surface. The surface is closed
// before returning, whether or not rendering succeeded.
func (g *Generator) rasterize(ctx context.Context, layout PageLayout) (png []byte, err error) {
	html, err := RenderHTML(layout)
	if err != nil {
		return nil, err
	}

	surface, err := g.opts.Surfaces.NewSurface(ctx, g.opts.SurfaceOptions)
	if err != nil {
		return nil, fmt.Errorf("open surface: %w", err)
	}
	defer func() {
		if cerr := surface.Close(); cerr != nil {
			logging.BrowserWarn("closing surface for page %d: %v", layout.PageNumber, cerr)
		}
	}()

	if err := surface.Render(ctx, html); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	png, err = surface.Capture(ctx)
	if err != nil {
		return nil, fmt.Errorf("capture: %w", err)
	}
	return png, nil
}
