// Package browser rasterizes report pages in headless Chrome via go-rod.
package browser

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/launcher/flags"
	"github.com/go-rod/rod/lib/proto"

	"hosereport/internal/logging"
	"hosereport/internal/report"
)

// PageSelector is the element captured from every rendered page.
const PageSelector = "#report-page"

// readyScript resolves once web fonts are loaded and a frame has been
// painted with them.
const readyScript = `() => document.fonts.ready.then(() =>
	new Promise(resolve => requestAnimationFrame(() => resolve(true))))`

const heightScript = `() => Math.ceil(document.querySelector(` + "`" + PageSelector + "`" + `).getBoundingClientRect().height)`

// Viewport height used before the page has been measured (A4 landscape at
// 96 DPI).
const initialHeightPx = 794

// Chrome refuses device metrics above this size.
const maxHeightPx = 16384

// Config holds browser configuration.
type Config struct {
	DebuggerURL   string   // attach to this DevTools endpoint when set
	Launch        []string // chrome binary followed by flags
	Headless      bool
	RenderTimeout time.Duration
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		Headless:      true,
		RenderTimeout: 30 * time.Second,
	}
}

func (c Config) renderTimeout() time.Duration {
	if c.RenderTimeout <= 0 {
		return 30 * time.Second
	}
	return c.RenderTimeout
}

// Rasterizer owns one Chrome instance and hands out one isolated tab per
// report page. It implements report.SurfaceFactory.
type Rasterizer struct {
	cfg        Config
	mu         sync.Mutex
	browser    *rod.Browser
	launcher   *launcher.Launcher
	controlURL string
}

var _ report.SurfaceFactory = (*Rasterizer)(nil)

// New creates a rasterizer. Chrome is started lazily on first use.
func New(cfg Config) *Rasterizer {
	return &Rasterizer{cfg: cfg}
}

// Start connects to an existing Chrome or launches a new one.
func (r *Rasterizer) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.startLocked(ctx)
}

func (r *Rasterizer) startLocked(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if r.browser != nil {
		if _, err := r.browser.Version(); err == nil {
			return nil
		}
		logging.BrowserWarn("stale browser connection detected, reconnecting")
		_ = r.browser.Close()
		r.browser = nil
		r.controlURL = ""
	}

	controlURL := r.cfg.DebuggerURL
	if controlURL == "" {
		l, err := r.newLauncher()
		if err != nil {
			return err
		}
		url, err := l.Launch()
		if err != nil {
			return fmt.Errorf("launch chrome: %w", err)
		}
		r.launcher = l
		controlURL = url
		logging.Browser("launched chrome (headless=%v)", r.cfg.Headless)
	}

	// Not bound to ctx: the connection outlives the request that started it.
	b := rod.New().ControlURL(controlURL)
	if err := b.Connect(); err != nil {
		r.killLauncher()
		return fmt.Errorf("connect to chrome: %w", err)
	}
	r.browser = b
	r.controlURL = controlURL
	logging.BrowserDebug("connected to %s", controlURL)
	return nil
}

func (r *Rasterizer) newLauncher() (*launcher.Launcher, error) {
	l := launcher.New().Headless(r.cfg.Headless)
	if len(r.cfg.Launch) == 0 {
		return l, nil
	}
	bin := strings.TrimSpace(r.cfg.Launch[0])
	if bin == "" {
		return nil, errors.New("empty chrome binary in launch command")
	}
	l = l.Bin(bin)
	for _, f := range parseFlags(r.cfg.Launch[1:]) {
		l = l.Set(f.name, f.values...)
	}
	return l, nil
}

type launchFlag struct {
	name   flags.Flag
	values []string
}

// parseFlags turns "--name=value" / "--name" arguments into launcher flags.
func parseFlags(args []string) []launchFlag {
	out := make([]launchFlag, 0, len(args))
	for _, raw := range args {
		s := strings.TrimLeft(strings.TrimSpace(raw), "-")
		if s == "" {
			continue
		}
		name, val, hasVal := strings.Cut(s, "=")
		f := launchFlag{name: flags.Flag(name)}
		if hasVal {
			f.values = []string{val}
		}
		out = append(out, f)
	}
	return out
}

func (r *Rasterizer) killLauncher() {
	if r.launcher != nil {
		r.launcher.Kill()
		r.launcher = nil
	}
}

// ControlURL returns the DevTools WebSocket URL, "" before Start.
func (r *Rasterizer) ControlURL() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.controlURL
}

// IsConnected returns whether the browser is connected.
func (r *Rasterizer) IsConnected() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.browser != nil
}

// Shutdown closes the browser and, if it was launched here, kills it.
func (r *Rasterizer) Shutdown(context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var err error
	if r.browser != nil {
		if r.launcher != nil {
			err = r.browser.Close()
		}
		r.browser = nil
	}
	r.killLauncher()
	r.controlURL = ""
	return err
}

// NewSurface opens a fresh incognito tab sized for one report page.
func (r *Rasterizer) NewSurface(ctx context.Context, opts report.SurfaceOptions) (report.Surface, error) {
	if opts.WidthPx <= 0 || opts.Scale <= 0 {
		return nil, fmt.Errorf("invalid surface options %+v", opts)
	}

	r.mu.Lock()
	if err := r.startLocked(ctx); err != nil {
		r.mu.Unlock()
		return nil, err
	}
	b := r.browser
	r.mu.Unlock()

	incognito, err := b.Incognito()
	if err != nil {
		return nil, fmt.Errorf("incognito context: %w", err)
	}
	page, err := incognito.Page(proto.TargetCreateTarget{URL: "about:blank"})
	if err != nil {
		_ = incognito.Close()
		return nil, fmt.Errorf("create page: %w", err)
	}

	t := &tab{
		incognito: incognito,
		page:      page,
		opts:      opts,
		timeout:   r.cfg.renderTimeout(),
	}
	if err := t.resize(page.Context(ctx), initialHeightPx); err != nil {
		_ = t.Close()
		return nil, err
	}
	logging.BrowserDebug("opened tab %s", page.TargetID)
	return t, nil
}

// tab is one report page in its own browser context.
type tab struct {
	incognito *rod.Browser
	page      *rod.Page
	opts      report.SurfaceOptions
	timeout   time.Duration
	closeOnce sync.Once
	closeErr  error
}

func (t *tab) resize(p *rod.Page, heightPx int) error {
	err := proto.EmulationSetDeviceMetricsOverride{
		Width:             t.opts.WidthPx,
		Height:            heightPx,
		DeviceScaleFactor: t.opts.Scale,
		Mobile:            false,
	}.Call(p)
	if err != nil {
		return fmt.Errorf("set device metrics: %w", err)
	}
	return nil
}

// Render loads html and waits for the load event, fonts and one frame.
// The viewport is then grown to the full height of the report page.
func (t *tab) Render(ctx context.Context, html []byte) error {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	p := t.page.Context(ctx)

	if err := p.SetDocumentContent(string(html)); err != nil {
		return fmt.Errorf("set content: %w", err)
	}
	if err := p.WaitLoad(); err != nil {
		return fmt.Errorf("wait load: %w", err)
	}
	if _, err := p.Evaluate(rod.Eval(readyScript).ByPromise()); err != nil {
		return fmt.Errorf("wait ready: %w", err)
	}

	res, err := p.Evaluate(rod.Eval(heightScript))
	if err != nil {
		return fmt.Errorf("measure %s: %w", PageSelector, err)
	}
	if h := res.Value.Int(); h > initialHeightPx {
		if err := t.resize(p, min(h, maxHeightPx)); err != nil {
			return err
		}
		if _, err := p.Evaluate(rod.Eval(readyScript).ByPromise()); err != nil {
			return fmt.Errorf("wait ready after resize: %w", err)
		}
	}
	return nil
}

// Capture screenshots the report page element as PNG.
func (t *tab) Capture(ctx context.Context) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	el, err := t.page.Context(ctx).Element(PageSelector)
	if err != nil {
		return nil, fmt.Errorf("element %s not found: %w", PageSelector, err)
	}
	png, err := el.Screenshot(proto.PageCaptureScreenshotFormatPng, 0)
	if err != nil {
		return nil, fmt.Errorf("screenshot: %w", err)
	}
	return png, nil
}

// Close closes the tab and disposes its browser context. Safe to call
// more than once.
func (t *tab) Close() error {
	t.closeOnce.Do(func() {
		t.closeErr = errors.Join(t.page.Close(), t.incognito.Close())
		logging.BrowserDebug("closed tab %s", t.page.TargetID)
	})
	return t.closeErr
}
