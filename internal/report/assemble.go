package report

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/go-pdf/fpdf"
)

// A4 landscape, in millimetres.
const (
	PageWidthMM  = 297.0
	PageHeightMM = 210.0
)

// Assembler accumulates report pages into one A4 landscape PDF.
type Assembler struct {
	pdf   *fpdf.Fpdf
	tr    func(string) string
	pages int
}

// NewAssembler starts an empty document.
func NewAssembler(title string) *Assembler {
	pdf := fpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetTitle(title, true)
	pdf.SetCreator("hosereport", true)
	return &Assembler{
		pdf: pdf,
		tr:  pdf.UnicodeTranslatorFromDescriptor(""),
	}
}

// Pages returns the number of pages added so far.
func (a *Assembler) Pages() int { return a.pages }

// AddImage appends one page holding a captured PNG at the top-left corner,
// full page width. Images taller than the page are scaled down to fit.
func (a *Assembler) AddImage(png []byte) error {
	if len(png) == 0 {
		return errors.New("empty page image")
	}
	if err := a.pdf.Error(); err != nil {
		return err
	}

	name := fmt.Sprintf("page-%d", a.pages+1)
	opts := fpdf.ImageOptions{ImageType: "PNG"}
	info := a.pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(png))
	if err := a.pdf.Error(); err != nil {
		return fmt.Errorf("register page image: %w", err)
	}
	if info == nil || info.Width() <= 0 || info.Height() <= 0 {
		return errors.New("page image has no size")
	}

	w, h := PageWidthMM, PageWidthMM*info.Height()/info.Width()
	if h > PageHeightMM {
		w, h = PageHeightMM*info.Width()/info.Height(), PageHeightMM
	}

	a.pdf.AddPage()
	a.pdf.ImageOptions(name, 0, 0, w, h, false, opts, 0, "")
	if err := a.pdf.Error(); err != nil {
		return fmt.Errorf("place page image: %w", err)
	}
	a.pages++
	return nil
}

// Bytes finalizes the document. The assembler must not be used afterwards.
func (a *Assembler) Bytes() ([]byte, error) {
	if a.pages == 0 {
		return nil, errors.New("document has no pages")
	}
	var buf bytes.Buffer
	if err := a.pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("write pdf: %w", err)
	}
	return buf.Bytes(), nil
}
