// Package firestoredb stores the catalog in Cloud Firestore. Products are
// keyed by id, configuration entries by key and social networks by name.
package firestoredb

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/Lllllllleong/catalogflow/internal/models"
	"github.com/Lllllllleong/catalogflow/internal/store"
)

// Collection names.
const (
	ProductsCollection       = "products"
	SiteConfigCollection     = "site_config"
	SocialNetworksCollection = "social_networks"
	BusinessGroupsCollection = "business_groups"
)

// Store implements store.Store on Firestore.
type Store struct {
	client *firestore.Client
}

var _ store.Store = (*Store)(nil)

// New wraps an existing client. Close closes it.
func New(client *firestore.Client) *Store {
	return &Store{client: client}
}

func isNotFound(err error) bool {
	return status.Code(err) == codes.NotFound
}

// FindProducts pushes the equality filters down to Firestore and applies the
// text search in process, since Firestore has no substring matching.
func (s *Store) FindProducts(ctx context.Context, filter models.ProductFilter) ([]models.Product, error) {
	if filter.ID != "" {
		return s.findProductByID(ctx, filter)
	}

	query := s.client.Collection(ProductsCollection).Query
	if filter.Category != "" {
		query = query.Where("categoria", "==", filter.Category)
	}
	if filter.Subcategory != "" {
		query = query.Where("subcategoria", "==", filter.Subcategory)
	}

	products := []models.Product{}
	iter := query.Documents(ctx)
	defer iter.Stop()
	for {
		doc, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to iterate products: %w", err)
		}
		var p models.Product
		if err := doc.DataTo(&p); err != nil {
			return nil, fmt.Errorf("failed to decode product %s: %w", doc.Ref.ID, err)
		}
		if store.MatchesSearch(p, filter.Search) {
			products = append(products, p)
		}
	}

	// Ordering in the query would need a composite index per filter shape.
	slices.SortStableFunc(products, func(a, b models.Product) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return products, nil
}

func (s *Store) findProductByID(ctx context.Context, filter models.ProductFilter) ([]models.Product, error) {
	doc, err := s.client.Collection(ProductsCollection).Doc(filter.ID).Get(ctx)
	if isNotFound(err) {
		return []models.Product{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get product %s: %w", filter.ID, err)
	}
	var p models.Product
	if err := doc.DataTo(&p); err != nil {
		return nil, fmt.Errorf("failed to decode product %s: %w", filter.ID, err)
	}
	if !store.MatchesFilter(p, filter) {
		return []models.Product{}, nil
	}
	return []models.Product{p}, nil
}

func (s *Store) InsertProduct(ctx context.Context, product models.Product) error {
	if _, err := s.client.Collection(ProductsCollection).Doc(product.ID).Create(ctx, product); err != nil {
		return fmt.Errorf("failed to create product %s: %w", product.ID, err)
	}
	return nil
}

// InsertProducts queues every product on a BulkWriter and reports the first
// failed write.
func (s *Store) InsertProducts(ctx context.Context, products []models.Product) error {
	bw := s.client.BulkWriter(ctx)
	jobs := make([]*firestore.BulkWriterJob, 0, len(products))
	for _, p := range products {
		job, err := bw.Create(s.client.Collection(ProductsCollection).Doc(p.ID), p)
		if err != nil {
			bw.End()
			return fmt.Errorf("failed to queue product %s: %w", p.ID, err)
		}
		jobs = append(jobs, job)
	}
	bw.End()

	var errs []error
	for i, job := range jobs {
		if _, err := job.Results(); err != nil {
			errs = append(errs, fmt.Errorf("failed to create product %s: %w", products[i].ID, err))
		}
	}
	return errors.Join(errs...)
}

// patchUpdates lists the field updates for patch. updated_at is always set.
func patchUpdates(patch models.ProductPatch, updatedAt time.Time) []firestore.Update {
	var updates []firestore.Update
	add := func(path string, value any) {
		updates = append(updates, firestore.Update{Path: path, Value: value})
	}
	if patch.Title != nil {
		add("titulo", *patch.Title)
	}
	if patch.Description != nil {
		add("descripcion", *patch.Description)
	}
	if patch.Image != nil {
		add("imagen", *patch.Image)
	}
	if patch.Country != nil {
		add("pais", *patch.Country)
	}
	if patch.ReleaseDate != nil {
		add("fecha_lanzamiento", *patch.ReleaseDate)
	}
	if patch.Platforms != nil {
		add("plataformas", *patch.Platforms)
	}
	if patch.Category != nil {
		add("categoria", *patch.Category)
	}
	if patch.Subcategory != nil {
		add("subcategoria", *patch.Subcategory)
	}
	add("updated_at", updatedAt)
	return updates
}

func (s *Store) UpdateProduct(ctx context.Context, id string, patch models.ProductPatch, updatedAt time.Time) (int64, error) {
	_, err := s.client.Collection(ProductsCollection).Doc(id).Update(ctx, patchUpdates(patch, updatedAt))
	if isNotFound(err) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to update product %s: %w", id, err)
	}
	return 1, nil
}

func (s *Store) DeleteProduct(ctx context.Context, id string) (int64, error) {
	_, err := s.client.Collection(ProductsCollection).Doc(id).Delete(ctx, firestore.Exists)
	if isNotFound(err) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to delete product %s: %w", id, err)
	}
	return 1, nil
}

func (s *Store) FindConfig(ctx context.Context, key string) (*models.SiteConfig, error) {
	doc, err := s.client.Collection(SiteConfigCollection).Doc(key).Get(ctx)
	if isNotFound(err) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get config %q: %w", key, err)
	}
	var entry models.SiteConfig
	if err := doc.DataTo(&entry); err != nil {
		return nil, fmt.Errorf("failed to decode config %q: %w", key, err)
	}
	return &entry, nil
}

func (s *Store) UpsertConfig(ctx context.Context, entry models.SiteConfig) (*models.SiteConfig, error) {
	ref := s.client.Collection(SiteConfigCollection).Doc(entry.Key)
	err := s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		doc, err := tx.Get(ref)
		switch {
		case isNotFound(err):
		case err != nil:
			return err
		default:
			var existing models.SiteConfig
			if err := doc.DataTo(&existing); err != nil {
				return err
			}
			entry.ID = existing.ID
		}
		return tx.Set(ref, entry)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upsert config %q: %w", entry.Key, err)
	}
	return &entry, nil
}

func (s *Store) FindActiveSocialNetworks(ctx context.Context) ([]models.SocialNetwork, error) {
	docs, err := s.client.Collection(SocialNetworksCollection).Where("is_active", "==", true).Documents(ctx).GetAll()
	if err != nil {
		return nil, fmt.Errorf("failed to query social networks: %w", err)
	}
	networks := make([]models.SocialNetwork, 0, len(docs))
	for _, doc := range docs {
		var n models.SocialNetwork
		if err := doc.DataTo(&n); err != nil {
			return nil, fmt.Errorf("failed to decode social network %s: %w", doc.Ref.ID, err)
		}
		networks = append(networks, n)
	}
	return networks, nil
}

func (s *Store) ReplaceSocialNetworks(ctx context.Context, networks []models.SocialNetwork) error {
	col := s.client.Collection(SocialNetworksCollection)
	err := s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		docs, err := tx.Documents(col).GetAll()
		if err != nil {
			return err
		}
		existing := make(map[string]models.SocialNetwork, len(docs))
		for _, doc := range docs {
			var n models.SocialNetwork
			if err := doc.DataTo(&n); err != nil {
				return err
			}
			existing[doc.Ref.ID] = n
		}

		replaced := make(map[string]bool, len(networks))
		for _, n := range networks {
			if prev, ok := existing[n.Name]; ok {
				n.ID = prev.ID
				n.Icon = prev.Icon
				n.CreatedAt = prev.CreatedAt
			}
			n.IsActive = true
			replaced[n.Name] = true
			if err := tx.Set(col.Doc(n.Name), n); err != nil {
				return err
			}
		}
		for _, doc := range docs {
			if replaced[doc.Ref.ID] {
				continue
			}
			if err := tx.Update(doc.Ref, []firestore.Update{{Path: "is_active", Value: false}}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to replace social networks: %w", err)
	}
	return nil
}

func (s *Store) FindActiveBusinessGroups(ctx context.Context) ([]models.BusinessGroup, error) {
	docs, err := s.client.Collection(BusinessGroupsCollection).Where("is_active", "==", true).Documents(ctx).GetAll()
	if err != nil {
		return nil, fmt.Errorf("failed to query business groups: %w", err)
	}
	groups := make([]models.BusinessGroup, 0, len(docs))
	for _, doc := range docs {
		var g models.BusinessGroup
		if err := doc.DataTo(&g); err != nil {
			return nil, fmt.Errorf("failed to decode business group %s: %w", doc.Ref.ID, err)
		}
		groups = append(groups, g)
	}
	slices.SortStableFunc(groups, func(a, b models.BusinessGroup) int {
		return a.CreatedAt.Compare(b.CreatedAt)
	})
	return groups, nil
}

func (s *Store) ReplaceBusinessGroups(ctx context.Context, groups []models.BusinessGroup) error {
	col := s.client.Collection(BusinessGroupsCollection)
	err := s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		active, err := tx.Documents(col.Where("is_active", "==", true)).GetAll()
		if err != nil {
			return err
		}
		for _, doc := range active {
			if err := tx.Update(doc.Ref, []firestore.Update{{Path: "is_active", Value: false}}); err != nil {
				return err
			}
		}
		for _, g := range groups {
			g.IsActive = true
			if err := tx.Create(col.Doc(g.ID), g); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to replace business groups: %w", err)
	}
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	if _, err := s.client.Collection(SiteConfigCollection).Limit(1).Documents(ctx).GetAll(); err != nil {
		return fmt.Errorf("failed to reach firestore: %w", err)
	}
	return nil
}

func (s *Store) Close() error {
	return s.client.Close()
}
