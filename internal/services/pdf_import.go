package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/Lllllllleong/catalogflow/internal/extract"
	"github.com/Lllllllleong/catalogflow/internal/models"
)

// saveConcurrency bounds the concurrent inserts of one save request.
const saveConcurrency = 4

// PDFImportService turns uploaded PDFs into candidate products and saves the
// reviewed candidates to the catalog.
type PDFImportService struct {
	pipeline *extract.Pipeline
	catalog  *CatalogService
}

func NewPDFImportService(pipeline *extract.Pipeline, catalog *CatalogService) *PDFImportService {
	return &PDFImportService{pipeline: pipeline, catalog: catalog}
}

// Extract runs the extraction pipeline on one upload. Failures carry an
// *extract.Error with an uploader-facing message.
func (s *PDFImportService) Extract(ctx context.Context, upload extract.Upload) (*extract.Result, error) {
	logCtx := slog.With("filename", upload.Filename, "size", upload.Size)
	logCtx.Info("Extracting products from PDF.")

	result, err := s.pipeline.Process(upload)
	if err != nil {
		logCtx.Warn("PDF extraction failed.", "error", err)
		return nil, err
	}
	logCtx.Info("PDF extraction complete.", "candidates", len(result.Products), "textLength", result.TotalTextLength)
	return result, nil
}

// SaveProducts stores reviewed candidates one by one. Entries without a title
// are skipped; a record that fails to save is reported in Failed and does not
// stop the others. Saved products keep the order of the request.
func (s *PDFImportService) SaveProducts(ctx context.Context, inputs []models.ProductInput) *models.SaveProductsResponse {
	type slot struct {
		product *models.Product
		err     error
		skipped bool
	}
	slots := make([]slot, len(inputs))

	// Goroutines never return an error so one failure cannot cancel the rest.
	var g errgroup.Group
	g.SetLimit(saveConcurrency)
	for i, input := range inputs {
		if strings.TrimSpace(input.Title) == "" {
			slots[i].skipped = true
			continue
		}
		g.Go(func() error {
			product, err := s.catalog.CreateProduct(ctx, withCandidateDefaults(input))
			slots[i] = slot{product: product, err: err}
			return nil
		})
	}
	_ = g.Wait()

	resp := &models.SaveProductsResponse{Products: []models.Product{}}
	for i, sl := range slots {
		switch {
		case sl.skipped:
		case sl.err != nil:
			slog.Error("Failed to save extracted product.", "index", i, "titulo", inputs[i].Title, "error", sl.err)
			resp.Failed = append(resp.Failed, models.SaveFailure{
				Index: i,
				Title: inputs[i].Title,
				Error: saveFailureMessage(sl.err),
			})
		default:
			resp.Products = append(resp.Products, *sl.product)
		}
	}
	resp.SavedCount = len(resp.Products)
	resp.Success = len(resp.Failed) == 0
	resp.Message = fmt.Sprintf("Se guardaron %d productos en el catálogo", resp.SavedCount)
	return resp
}

// withCandidateDefaults fills what an extracted candidate may lack so that it
// passes product validation.
func withCandidateDefaults(input models.ProductInput) models.ProductInput {
	if strings.TrimSpace(input.Category) == "" {
		input.Category = models.CategoryGames
	}
	if input.Image == "" {
		input.Image = extract.DefaultImageURL
	}
	if input.ReleaseDate == "" {
		input.ReleaseDate = extract.FallbackReleaseDate
	}
	return input
}

func saveFailureMessage(err error) string {
	if errors.Is(err, ErrInvalidInput) {
		return err.Error()
	}
	return "Error al guardar el producto"
}
