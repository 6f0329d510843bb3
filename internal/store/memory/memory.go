// Package memory is an in-process catalog store. It backs local runs without
// cloud credentials and the handler and service tests.
package memory

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/Lllllllleong/catalogflow/internal/models"
	"github.com/Lllllllleong/catalogflow/internal/store"
)

// Store keeps every collection in maps guarded by one mutex.
type Store struct {
	mu             sync.RWMutex
	products       map[string]models.Product
	configs        map[string]models.SiteConfig
	socialNetworks map[string]models.SocialNetwork
	businessGroups []models.BusinessGroup

	// FailInsert, when set, is consulted before every product insert.
	FailInsert func(product models.Product) error
}

var _ store.Store = (*Store)(nil)

// New creates an empty store.
func New() *Store {
	return &Store{
		products:       make(map[string]models.Product),
		configs:        make(map[string]models.SiteConfig),
		socialNetworks: make(map[string]models.SocialNetwork),
	}
}

func (s *Store) FindProducts(ctx context.Context, filter models.ProductFilter) ([]models.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	products := make([]models.Product, 0, len(s.products))
	for _, p := range s.products {
		if store.MatchesFilter(p, filter) {
			products = append(products, p)
		}
	}
	slices.SortStableFunc(products, func(a, b models.Product) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return products, nil
}

func (s *Store) InsertProduct(ctx context.Context, product models.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.insertLocked(product)
}

func (s *Store) InsertProducts(ctx context.Context, products []models.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	// Check every record first so a failure leaves nothing behind.
	for _, p := range products {
		if err := s.checkInsert(p); err != nil {
			return err
		}
	}
	for _, p := range products {
		s.put(p)
	}
	return nil
}

func (s *Store) insertLocked(product models.Product) error {
	if err := s.checkInsert(product); err != nil {
		return err
	}
	s.put(product)
	return nil
}

func (s *Store) checkInsert(product models.Product) error {
	if s.FailInsert != nil {
		return s.FailInsert(product)
	}
	return nil
}

func (s *Store) put(product models.Product) {
	product.Platforms = slices.Clone(product.Platforms)
	s.products[product.ID] = product
}

func (s *Store) UpdateProduct(ctx context.Context, id string, patch models.ProductPatch, updatedAt time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	product, ok := s.products[id]
	if !ok {
		return 0, nil
	}
	patch.Apply(&product)
	product.UpdatedAt = updatedAt
	s.products[id] = product
	return 1, nil
}

func (s *Store) DeleteProduct(ctx context.Context, id string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.products[id]; !ok {
		return 0, nil
	}
	delete(s.products, id)
	return 1, nil
}

func (s *Store) FindConfig(ctx context.Context, key string) (*models.SiteConfig, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.configs[key]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &entry, nil
}

func (s *Store) UpsertConfig(ctx context.Context, entry models.SiteConfig) (*models.SiteConfig, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.configs[entry.Key]; ok {
		entry.ID = existing.ID
	}
	s.configs[entry.Key] = entry
	return &entry, nil
}

func (s *Store) FindActiveSocialNetworks(ctx context.Context) ([]models.SocialNetwork, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	networks := make([]models.SocialNetwork, 0, len(s.socialNetworks))
	for _, n := range s.socialNetworks {
		if n.IsActive {
			networks = append(networks, n)
		}
	}
	slices.SortFunc(networks, func(a, b models.SocialNetwork) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.Name, b.Name)
	})
	return networks, nil
}

func (s *Store) ReplaceSocialNetworks(ctx context.Context, networks []models.SocialNetwork) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for name, n := range s.socialNetworks {
		n.IsActive = false
		s.socialNetworks[name] = n
	}
	for _, n := range networks {
		if existing, ok := s.socialNetworks[n.Name]; ok {
			n.ID = existing.ID
			n.Icon = existing.Icon
			n.CreatedAt = existing.CreatedAt
		}
		n.IsActive = true
		s.socialNetworks[n.Name] = n
	}
	return nil
}

func (s *Store) FindActiveBusinessGroups(ctx context.Context) ([]models.BusinessGroup, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	groups := make([]models.BusinessGroup, 0, len(s.businessGroups))
	for _, g := range s.businessGroups {
		if g.IsActive {
			groups = append(groups, g)
		}
	}
	return groups, nil
}

func (s *Store) ReplaceBusinessGroups(ctx context.Context, groups []models.BusinessGroup) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.businessGroups {
		s.businessGroups[i].IsActive = false
	}
	for _, g := range groups {
		g.IsActive = true
		s.businessGroups = append(s.businessGroups, g)
	}
	return nil
}

func (s *Store) Ping(ctx context.Context) error { return nil }

func (s *Store) Close() error { return nil }

