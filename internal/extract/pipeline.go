// Package extract recovers candidate catalog products from the text of PDF
// documents. It is pure: nothing here talks to storage or keeps state between
// calls, so a Pipeline may serve any number of concurrent uploads.
package extract

import (
	"io"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/Lllllllleong/catalogflow/internal/models"
)

const (
	// MaxUploadSize is the largest accepted document, in bytes.
	MaxUploadSize = 10 * 1024 * 1024
	// AcceptedExtension is matched case-insensitively against the filename.
	AcceptedExtension = ".pdf"
	// DefaultImageURL is attached to every candidate that survives filtering.
	DefaultImageURL = "https://images.unsplash.com/photo-1578662996442-48f60103fc96?w=400&h=300&fit=crop"
)

const minTitleLength = 2

// Upload is one document handed to the pipeline.
type Upload struct {
	Filename string
	// Size is the size declared by the caller. It is checked before any
	// content is read.
	Size    int64
	Content io.Reader
}

// Result is the outcome of a successful extraction.
type Result struct {
	Products        []models.CandidateProduct
	TotalTextLength int
	Filename        string
}

// Pipeline validates uploads and turns them into candidate products.
type Pipeline struct {
	extractor TextExtractor
}

// NewPipeline creates a pipeline reading documents with extractor.
func NewPipeline(extractor TextExtractor) *Pipeline {
	return &Pipeline{extractor: extractor}
}

// ValidateUpload checks the filename and declared size of a document.
func ValidateUpload(filename string, size int64) error {
	if !strings.EqualFold(filepath.Ext(filename), AcceptedExtension) {
		return validationError("Solo se permiten archivos PDF")
	}
	if size > MaxUploadSize {
		return validationError("El archivo es demasiado grande (máximo 10MB)")
	}
	return nil
}

// Process runs the full extraction for one upload.
func (p *Pipeline) Process(upload Upload) (*Result, error) {
	if err := ValidateUpload(upload.Filename, upload.Size); err != nil {
		return nil, err
	}

	// Never trust the declared size alone.
	content, err := io.ReadAll(io.LimitReader(upload.Content, MaxUploadSize+1))
	if err != nil {
		return nil, extractionError("No se pudo leer el archivo", err)
	}
	if len(content) > MaxUploadSize {
		return nil, validationError("El archivo es demasiado grande (máximo 10MB)")
	}

	text, err := p.extractor.ExtractText(content)
	if err != nil {
		return nil, extractionError("Error al procesar el PDF", err)
	}
	if strings.TrimSpace(text) == "" {
		return nil, extractionError("No se pudo extraer texto del PDF", nil)
	}

	candidates := ExtractCandidates(text)
	if len(candidates) == 0 {
		return nil, noCandidatesError("No se encontraron productos válidos en el PDF")
	}

	products := FilterCandidates(candidates)
	if len(products) == 0 {
		return nil, noCandidatesError("No se encontraron productos válidos para procesar")
	}
	for i := range products {
		products[i].Image = DefaultImageURL
	}

	return &Result{
		Products:        products,
		TotalTextLength: utf8.RuneCountInString(text),
		Filename:        upload.Filename,
	}, nil
}

// ExtractCandidates splits text into sections and keeps the recognised
// products that have a title.
func ExtractCandidates(text string) []models.CandidateProduct {
	sections := SplitSections(text)
	candidates := make([]models.CandidateProduct, 0, len(sections))
	for _, section := range sections {
		candidate := RecognizeFields(section)
		if candidate.Title != "" {
			candidates = append(candidates, candidate)
		}
	}
	return candidates
}

// FilterCandidates drops candidates whose trimmed title is too short to be
// useful.
func FilterCandidates(candidates []models.CandidateProduct) []models.CandidateProduct {
	valid := make([]models.CandidateProduct, 0, len(candidates))
	for _, c := range candidates {
		if utf8.RuneCountInString(strings.TrimSpace(c.Title)) > minTitleLength {
			valid = append(valid, c)
		}
	}
	return valid
}
