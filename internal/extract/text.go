package extract

import (
	"bytes"
	"fmt"
	"math"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// TextExtractor turns raw document bytes into plain text, one page after the
// other, separated by PageBreak.
type TextExtractor interface {
	ExtractText(content []byte) (string, error)
}

// PDFTextExtractor validates documents with pdfcpu and reads their text layer
// with ledongthuc/pdf.
type PDFTextExtractor struct{}

var _ TextExtractor = (*PDFTextExtractor)(nil)

// NewPDFTextExtractor creates a PDF text extractor.
func NewPDFTextExtractor() *PDFTextExtractor {
	return &PDFTextExtractor{}
}

// pdfcpu mutates the configuration it is handed, so every call gets its own.
func relaxedConfig() *model.Configuration {
	cfg := model.NewDefaultConfiguration()
	cfg.ValidationMode = model.ValidationRelaxed
	return cfg
}

// ExtractText returns the concatenated page text of a PDF. Corrupt or
// encrypted documents fail with an error.
func (e *PDFTextExtractor) ExtractText(content []byte) (text string, err error) {
	if len(content) == 0 {
		return "", fmt.Errorf("empty PDF content")
	}
	if err := api.Validate(bytes.NewReader(content), relaxedConfig()); err != nil {
		return "", fmt.Errorf("failed to validate PDF: %w", err)
	}

	// The text-layer reader panics on some malformed content streams.
	defer func() {
		if r := recover(); r != nil {
			text, err = "", fmt.Errorf("failed to read PDF text: %v", r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", fmt.Errorf("failed to open PDF: %w", err)
	}
	pages := make([]string, 0, r.NumPage())
	for i := 1; i <= r.NumPage(); i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			pages = append(pages, "")
			continue
		}
		pages = append(pages, pageText(page))
	}
	return strings.Join(pages, PageBreak), nil
}

// lineTolerance is the vertical drift, in text space units, allowed between
// glyphs of the same line.
const lineTolerance = 1.0

// pageText rebuilds the lines of a page from its positioned glyphs. A line
// ends wherever the baseline moves, whichever operator moved it.
func pageText(page pdf.Page) string {
	var b strings.Builder
	glyphs := page.Content().Text
	for i, g := range glyphs {
		if i > 0 && math.Abs(g.Y-glyphs[i-1].Y) > lineTolerance {
			b.WriteByte('\n')
		}
		b.WriteString(g.S)
	}
	return b.String()
}

// PageCount returns the number of pages of a PDF.
func (e *PDFTextExtractor) PageCount(content []byte) (int, error) {
	n, err := api.PageCount(bytes.NewReader(content), relaxedConfig())
	if err != nil {
		return 0, fmt.Errorf("failed to get page count: %w", err)
	}
	return n, nil
}
