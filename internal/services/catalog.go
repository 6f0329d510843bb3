package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Lllllllleong/catalogflow/internal/models"
	"github.com/Lllllllleong/catalogflow/internal/store"
)

// CatalogService manages catalog products.
type CatalogService struct {
	store store.Store
	now   func() time.Time
	newID func() string
}

// NewCatalogService creates a catalog service on st.
func NewCatalogService(st store.Store) *CatalogService {
	return &CatalogService{
		store: st,
		now:   time.Now,
		newID: uuid.NewString,
	}
}

// ListProducts returns the products matching filter, newest first.
func (s *CatalogService) ListProducts(ctx context.Context, filter models.ProductFilter) ([]models.Product, error) {
	products, err := s.store.FindProducts(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	return products, nil
}

// CreateProduct validates input and stores it as a new product.
func (s *CatalogService) CreateProduct(ctx context.Context, input models.ProductInput) (*models.Product, error) {
	if err := validateProductInput(input); err != nil {
		return nil, err
	}
	product := s.newProduct(input)
	if err := s.store.InsertProduct(ctx, product); err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}
	slog.Info("Product created.", "productId", product.ID, "categoria", product.Category)
	return &product, nil
}

// CreateProducts stores every input or none.
func (s *CatalogService) CreateProducts(ctx context.Context, inputs []models.ProductInput) ([]models.Product, error) {
	products := make([]models.Product, 0, len(inputs))
	for i, input := range inputs {
		if err := validateProductInput(input); err != nil {
			return nil, fmt.Errorf("product %d: %w", i, err)
		}
		products = append(products, s.newProduct(input))
	}
	if len(products) == 0 {
		return products, nil
	}
	if err := s.store.InsertProducts(ctx, products); err != nil {
		return nil, fmt.Errorf("failed to create products: %w", err)
	}
	slog.Info("Products created in bulk.", "count", len(products))
	return products, nil
}

// UpdateProduct applies patch to the product with id and returns the result.
// It returns store.ErrNotFound when no such product exists.
func (s *CatalogService) UpdateProduct(ctx context.Context, id string, patch models.ProductPatch) (*models.Product, error) {
	if patch.Title != nil && strings.TrimSpace(*patch.Title) == "" {
		return nil, fmt.Errorf("%w: titulo must not be empty", ErrInvalidInput)
	}
	n, err := s.store.UpdateProduct(ctx, id, patch, s.now().UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to update product %s: %w", id, err)
	}
	if n == 0 {
		return nil, store.ErrNotFound
	}

	products, err := s.store.FindProducts(ctx, models.ProductFilter{ID: id})
	if err != nil {
		return nil, fmt.Errorf("failed to reload product %s: %w", id, err)
	}
	if len(products) == 0 {
		return nil, store.ErrNotFound
	}
	return &products[0], nil
}

// DeleteProduct removes the product with id, or returns store.ErrNotFound.
func (s *CatalogService) DeleteProduct(ctx context.Context, id string) error {
	n, err := s.store.DeleteProduct(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to delete product %s: %w", id, err)
	}
	if n == 0 {
		return store.ErrNotFound
	}
	slog.Info("Product deleted.", "productId", id)
	return nil
}

func (s *CatalogService) newProduct(input models.ProductInput) models.Product {
	now := s.now().UTC()
	platforms := input.Platforms
	if platforms == nil {
		platforms = []string{}
	}
	return models.Product{
		ID:          s.newID(),
		Title:       strings.TrimSpace(input.Title),
		Description: input.Description,
		Image:       input.Image,
		Country:     input.Country,
		ReleaseDate: input.ReleaseDate,
		Platforms:   platforms,
		Category:    input.Category,
		Subcategory: input.Subcategory,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func validateProductInput(input models.ProductInput) error {
	if strings.TrimSpace(input.Title) == "" {
		return fmt.Errorf("%w: titulo is required", ErrInvalidInput)
	}
	if strings.TrimSpace(input.Category) == "" {
		return fmt.Errorf("%w: categoria is required", ErrInvalidInput)
	}
	return nil
}
