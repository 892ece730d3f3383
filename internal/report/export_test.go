package report

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"hosereport/internal/inspection"
)

func tinyPNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, 0, color.RGBA{R: 31, G: 59, B: 90, A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

// fakeSurfaces records what each surface was asked to do and how many were
// open at once.
type fakeSurfaces struct {
	png []byte

	mu         sync.Mutex
	open       int
	maxOpen    int
	created    int
	closed     int
	gotOpts    []SurfaceOptions
	htmls      [][]byte
	failRender int // 1-based surface number whose Render fails
	failOpen   int
}

func (f *fakeSurfaces) NewSurface(_ context.Context, opts SurfaceOptions) (Surface, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created++
	if f.created == f.failOpen {
		return nil, errors.New("tab crashed")
	}
	f.open++
	f.maxOpen = max(f.maxOpen, f.open)
	f.gotOpts = append(f.gotOpts, opts)
	return &fakeSurface{owner: f, n: f.created}, nil
}

type fakeSurface struct {
	owner *fakeSurfaces
	n     int
}

func (s *fakeSurface) Render(_ context.Context, html []byte) error {
	s.owner.mu.Lock()
	defer s.owner.mu.Unlock()
	if s.n == s.owner.failRender {
		return errors.New("navigation timed out")
	}
	s.owner.htmls = append(s.owner.htmls, html)
	return nil
}

func (s *fakeSurface) Capture(context.Context) ([]byte, error) { return s.owner.png, nil }

func (s *fakeSurface) Close() error {
	s.owner.mu.Lock()
	defer s.owner.mu.Unlock()
	s.owner.open--
	s.owner.closed++
	return nil
}

func rawItems(n int) []any {
	out := make([]any, n)
	for i := range out {
		out[i] = map[string]any{"tag": "T" + string(rune('A'+i))}
	}
	return out
}

func TestGenerate_TenItemsTwoPages(t *testing.T) {
	defer goleak.VerifyNone(t)

	items := rawItems(10)
	items[8] = map[string]any{"step1Data": map[string]any{"hoseBrand": "Superflex"}}

	surfaces := &fakeSurfaces{png: tinyPNG(t, 2246, 1400)}
	var progress []int
	g := NewGenerator(Options{
		Surfaces: surfaces,
		OnPage:   func(page, total int) { progress = append(progress, page*10+total) },
	})

	doc, err := g.Generate(context.Background(), &inspection.Header{Client: "ACME", InspectionDate: "2024-03-15"}, items)
	require.NoError(t, err)

	assert.Equal(t, 2, doc.Pages)
	assert.Equal(t, 10, doc.Items)
	assert.True(t, bytes.HasPrefix(doc.PDF, []byte("%PDF-")))
	assert.Equal(t, Checksum(doc.PDF), doc.Checksum)
	assert.Equal(t, []int{12, 22}, progress)

	assert.Equal(t, 2, surfaces.created)
	assert.Equal(t, 2, surfaces.closed)
	assert.Equal(t, 1, surfaces.maxOpen, "pages are rasterized one at a time")
	for _, o := range surfaces.gotOpts {
		assert.Equal(t, SurfaceOptions{WidthPx: 1123, Scale: 2}, o)
	}

	require.Len(t, surfaces.htmls, 2)
	first, second := parsePage(t, surfaces.htmls[0]), parsePage(t, surfaces.htmls[1])
	assert.Equal(t, []string{"1", "2", "3", "4", "5", "6", "7", "8"}, first.rowNums)
	assert.Equal(t, []string{"9", "10"}, second.rowNums)
	assert.Contains(t, second.cellTexts, "Superflex")
	assert.NotContains(t, first.cellTexts, "Superflex")
}

func TestGenerate_FirstItemLandsInRowOne(t *testing.T) {
	defer goleak.VerifyNone(t)

	items := rawItems(10)
	items[0] = map[string]any{"pipeBrand": "Superflex"}

	surfaces := &fakeSurfaces{png: tinyPNG(t, 2246, 1400)}
	g := NewGenerator(Options{Surfaces: surfaces})
	doc, err := g.Generate(context.Background(), &inspection.Header{Client: "ACME", InspectionDate: "2024-03-15"}, items)
	require.NoError(t, err)
	require.Equal(t, 2, doc.Pages)

	require.Len(t, surfaces.htmls, 2)
	first, second := parsePage(t, surfaces.htmls[0]), parsePage(t, surfaces.htmls[1])
	require.Contains(t, first.rows, "1")
	row := first.rows["1"]
	assert.Equal(t, "1", row[0])
	assert.Contains(t, row, "Superflex")
	assert.Equal(t, []string{"9", "10"}, second.rowNums)
	assert.NotContains(t, second.cellTexts, "Superflex")

	assert.Equal(t, 1, doc.Layouts[0].Rows[0].Number)
	assert.Contains(t, doc.Layouts[0].Rows[0].Cells, "Superflex")
}

func TestGenerate_StringMapShapes(t *testing.T) {
	g := NewGenerator(Options{})
	header := &inspection.Header{Client: "ACME"}

	doc, err := g.Generate(context.Background(), header, []map[string]string{
		{"pipeBrand": "Superflex"},
		{"tag": "T-02"},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, doc.Items)
	assert.Contains(t, doc.Layouts[0].Rows[0].Cells, "Superflex")

	doc, err = g.Generate(context.Background(), header, []any{
		map[string]string{"pipeBrand": "Superflex"},
		map[string]any{"step2Data": map[string]string{"hoseBrand": "Gates"}},
	})
	require.NoError(t, err)
	assert.Contains(t, doc.Layouts[0].Rows[0].Cells, "Superflex")
	assert.Contains(t, doc.Layouts[0].Rows[1].Cells, "Gates")
}

func TestGenerate_VectorBackend(t *testing.T) {
	g := NewGenerator(Options{PageSize: 4})
	assert.Equal(t, "vector", g.Engine())

	items := rawItems(9)
	items[0] = map[string]any{
		"pipeBrand":    "Açúcar Hoses",
		"observations": strings.Repeat("abrasion near the crimp ", 20),
		"result":       "R",
	}
	doc, err := g.Generate(context.Background(), &inspection.Header{Client: "ACME"}, items)
	require.NoError(t, err)
	assert.Equal(t, 3, doc.Pages)
	require.Len(t, doc.Layouts, 3)
	assert.Equal(t, 9, doc.Layouts[2].Rows[0].Number)
	assert.True(t, bytes.HasPrefix(doc.PDF, []byte("%PDF-")))
}

func TestGenerate_InputErrors(t *testing.T) {
	g := NewGenerator(Options{})
	ctx := context.Background()
	header := &inspection.Header{Client: "ACME"}

	_, err := g.Generate(ctx, nil, rawItems(1))
	assert.ErrorIs(t, err, ErrNoHeader)
	assert.EqualError(t, err, "no inspection header provided")

	_, err = g.GenerateBlob(ctx, header, map[string]any{"tag": "x"})
	assert.ErrorIs(t, err, ErrItemsNotList)
	assert.EqualError(t, err, "items must be a list")

	_, err = g.GenerateBlob(ctx, header, []any{})
	assert.ErrorIs(t, err, ErrNoItems)
	assert.EqualError(t, err, "no items provided")

	_, err = g.GenerateBlob(ctx, header, []json.RawMessage{json.RawMessage(`{}`), json.RawMessage(`{"tag":`)})
	var itemErr *ItemError
	require.ErrorAs(t, err, &itemErr)
	assert.Equal(t, 2, itemErr.Index)
	assert.True(t, strings.HasPrefix(err.Error(), "error processing item 2: "))

	for _, e := range []error{ErrNoHeader, ErrNoItems, ErrItemsNotList, itemErr} {
		assert.True(t, IsInputError(e), e.Error())
	}
	assert.False(t, IsInputError(&PageError{Page: 1, Err: errors.New("x")}))
}

func TestGenerate_EmptyItemsNeverTouchesSurfaces(t *testing.T) {
	surfaces := &fakeSurfaces{png: tinyPNG(t, 10, 10)}
	g := NewGenerator(Options{Surfaces: surfaces})

	_, err := g.GenerateBlob(context.Background(), &inspection.Header{Client: "ACME"}, []any{})
	assert.ErrorIs(t, err, ErrNoItems)
	assert.Zero(t, surfaces.created)
}

func TestGenerate_PageFailureAborts(t *testing.T) {
	defer goleak.VerifyNone(t)

	t.Run("render", func(t *testing.T) {
		surfaces := &fakeSurfaces{png: tinyPNG(t, 20, 10), failRender: 2}
		g := NewGenerator(Options{Surfaces: surfaces})

		pdf, err := g.GenerateBlob(context.Background(), &inspection.Header{Client: "ACME"}, rawItems(20))
		assert.Nil(t, pdf)

		var pageErr *PageError
		require.ErrorAs(t, err, &pageErr)
		assert.Equal(t, 2, pageErr.Page)
		assert.Contains(t, err.Error(), "error generating page 2: render: navigation timed out")

		assert.Equal(t, 2, surfaces.created, "no page after the failing one is attempted")
		assert.Equal(t, 2, surfaces.closed, "the failing surface is still closed")
		assert.Zero(t, surfaces.open)
	})

	t.Run("open", func(t *testing.T) {
		surfaces := &fakeSurfaces{png: tinyPNG(t, 20, 10), failOpen: 1}
		g := NewGenerator(Options{Surfaces: surfaces})

		_, err := g.GenerateBlob(context.Background(), &inspection.Header{Client: "ACME"}, rawItems(3))
		assert.EqualError(t, err, "error generating page 1: open surface: tab crashed")
		assert.Zero(t, surfaces.closed)
	})

	t.Run("bad image", func(t *testing.T) {
		surfaces := &fakeSurfaces{png: []byte("not a png")}
		g := NewGenerator(Options{Surfaces: surfaces})

		_, err := g.GenerateBlob(context.Background(), &inspection.Header{Client: "ACME"}, rawItems(3))
		var pageErr *PageError
		require.ErrorAs(t, err, &pageErr)
		assert.Equal(t, 1, pageErr.Page)
		assert.Equal(t, 1, surfaces.closed)
	})
}

func TestGenerateAndDownload(t *testing.T) {
	dir := t.TempDir()
	at := time.Date(2024, 3, 15, 14, 5, 9, 0, time.UTC)
	g := NewGenerator(Options{Now: func() time.Time { return at }})

	name, err := g.GenerateAndDownload(context.Background(), &inspection.Header{Client: "ACME Ltda"}, rawItems(10), DirDownloader{Dir: dir})
	require.NoError(t, err)
	assert.Equal(t, "hose-inspection_ACME_Ltda_20240315-140509.pdf", name)
	assert.Contains(t, name, "ACME")
	assert.True(t, strings.HasSuffix(name, ".pdf"))

	data, err := os.ReadFile(filepath.Join(dir, name))
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF-")))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temporary files are left behind")
}

func TestGenerateAndDownload_FailuresDoNotDownload(t *testing.T) {
	called := false
	d := DownloaderFunc(func(context.Context, string, []byte) error {
		called = true
		return nil
	})
	g := NewGenerator(Options{})

	_, err := g.GenerateAndDownload(context.Background(), &inspection.Header{Client: "ACME"}, nil, d)
	assert.ErrorIs(t, err, ErrItemsNotList)
	assert.False(t, called)

	failing := DownloaderFunc(func(context.Context, string, []byte) error { return errors.New("disk full") })
	_, err = g.GenerateAndDownload(context.Background(), &inspection.Header{Client: "ACME"}, rawItems(1), failing)
	assert.ErrorContains(t, err, "disk full")
}
