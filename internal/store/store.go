// Package store defines the persistence capability shared by every catalog
// backend. Adapters live in the subpackages.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/Lllllllleong/catalogflow/internal/models"
)

// ErrNotFound is returned when a keyed lookup finds nothing.
var ErrNotFound = errors.New("record not found")

// Store is implemented by every catalog backend.
type Store interface {
	// FindProducts returns the products matching filter, newest first.
	FindProducts(ctx context.Context, filter models.ProductFilter) ([]models.Product, error)
	InsertProduct(ctx context.Context, product models.Product) error
	InsertProducts(ctx context.Context, products []models.Product) error
	// UpdateProduct applies patch and sets updated_at. It returns the number
	// of records modified, zero when id does not exist.
	UpdateProduct(ctx context.Context, id string, patch models.ProductPatch, updatedAt time.Time) (int64, error)
	DeleteProduct(ctx context.Context, id string) (int64, error)

	// FindConfig returns ErrNotFound when key was never set.
	FindConfig(ctx context.Context, key string) (*models.SiteConfig, error)
	// UpsertConfig stores entry under entry.Key. An existing entry keeps its id.
	UpsertConfig(ctx context.Context, entry models.SiteConfig) (*models.SiteConfig, error)

	FindActiveSocialNetworks(ctx context.Context) ([]models.SocialNetwork, error)
	// ReplaceSocialNetworks deactivates every network, then upserts the given
	// ones by name as active. A network that already exists keeps its id,
	// icon and creation time.
	ReplaceSocialNetworks(ctx context.Context, networks []models.SocialNetwork) error
	FindActiveBusinessGroups(ctx context.Context) ([]models.BusinessGroup, error)
	// ReplaceBusinessGroups deactivates every group, then inserts the given ones.
	ReplaceBusinessGroups(ctx context.Context, groups []models.BusinessGroup) error

	Ping(ctx context.Context) error
	Close() error
}
