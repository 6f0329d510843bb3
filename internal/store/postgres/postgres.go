// Package postgres stores the catalog in PostgreSQL through a pgx pool.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/Lllllllleong/catalogflow/internal/models"
	"github.com/Lllllllleong/catalogflow/internal/store"
)

// DB is the subset of *pgxpool.Pool the store uses.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
	Ping(ctx context.Context) error
	Close()
}

// Store implements store.Store on PostgreSQL.
type Store struct {
	db DB
}

var _ store.Store = (*Store)(nil)

// New wraps db. The schema must already be migrated.
func New(db DB) *Store {
	return &Store{db: db}
}

const productColumns = `id, titulo, descripcion, imagen, pais, fecha_lanzamiento, plataformas, categoria, subcategoria, created_at, updated_at`

const insertProductQuery = `INSERT INTO products (` + productColumns + `)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

func (s *Store) FindProducts(ctx context.Context, filter models.ProductFilter) ([]models.Product, error) {
	var conds []string
	var args []any

	if filter.ID != "" {
		args = append(args, filter.ID)
		conds = append(conds, fmt.Sprintf("id = $%d", len(args)))
	}
	if filter.Category != "" {
		args = append(args, filter.Category)
		conds = append(conds, fmt.Sprintf("categoria = $%d", len(args)))
	}
	if filter.Subcategory != "" {
		args = append(args, filter.Subcategory)
		conds = append(conds, fmt.Sprintf("subcategoria = $%d", len(args)))
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		args = append(args, "%"+escapeLike(search)+"%")
		n := len(args)
		conds = append(conds, fmt.Sprintf(
			"(unaccent(titulo) ILIKE unaccent($%d) OR unaccent(descripcion) ILIKE unaccent($%d) OR unaccent(pais) ILIKE unaccent($%d))",
			n, n, n))
	}

	query := `SELECT ` + productColumns + ` FROM products`
	if len(conds) > 0 {
		query += ` WHERE ` + strings.Join(conds, " AND ")
	}
	query += ` ORDER BY created_at DESC`

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	products := []models.Product{}
	for rows.Next() {
		var p models.Product
		if err := rows.Scan(
			&p.ID, &p.Title, &p.Description, &p.Image, &p.Country, &p.ReleaseDate,
			&p.Platforms, &p.Category, &p.Subcategory, &p.CreatedAt, &p.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate products: %w", err)
	}
	return products, nil
}

func productArgs(p models.Product) []any {
	platforms := p.Platforms
	if platforms == nil {
		platforms = []string{}
	}
	return []any{
		p.ID, p.Title, p.Description, p.Image, p.Country, p.ReleaseDate,
		platforms, p.Category, p.Subcategory, p.CreatedAt, p.UpdatedAt,
	}
}

func (s *Store) InsertProduct(ctx context.Context, product models.Product) error {
	if _, err := s.db.Exec(ctx, insertProductQuery, productArgs(product)...); err != nil {
		return fmt.Errorf("failed to insert product: %w", err)
	}
	return nil
}

// InsertProducts inserts every product or none.
func (s *Store) InsertProducts(ctx context.Context, products []models.Product) error {
	return s.inTx(ctx, func(tx pgx.Tx) error {
		for _, p := range products {
			if _, err := tx.Exec(ctx, insertProductQuery, productArgs(p)...); err != nil {
				return fmt.Errorf("failed to insert product %s: %w", p.ID, err)
			}
		}
		return nil
	})
}

func (s *Store) UpdateProduct(ctx context.Context, id string, patch models.ProductPatch, updatedAt time.Time) (int64, error) {
	var sets []string
	var args []any
	set := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if patch.Title != nil {
		set("titulo", *patch.Title)
	}
	if patch.Description != nil {
		set("descripcion", *patch.Description)
	}
	if patch.Image != nil {
		set("imagen", *patch.Image)
	}
	if patch.Country != nil {
		set("pais", *patch.Country)
	}
	if patch.ReleaseDate != nil {
		set("fecha_lanzamiento", *patch.ReleaseDate)
	}
	if patch.Platforms != nil {
		set("plataformas", *patch.Platforms)
	}
	if patch.Category != nil {
		set("categoria", *patch.Category)
	}
	if patch.Subcategory != nil {
		set("subcategoria", *patch.Subcategory)
	}
	set("updated_at", updatedAt)

	args = append(args, id)
	query := fmt.Sprintf(`UPDATE products SET %s WHERE id = $%d`, strings.Join(sets, ", "), len(args))

	tag, err := s.db.Exec(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to update product: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (s *Store) DeleteProduct(ctx context.Context, id string) (int64, error) {
	tag, err := s.db.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return 0, fmt.Errorf("failed to delete product: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (s *Store) FindConfig(ctx context.Context, key string) (*models.SiteConfig, error) {
	var entry models.SiteConfig
	err := s.db.QueryRow(ctx,
		`SELECT id, key, value, updated_at FROM site_config WHERE key = $1`, key,
	).Scan(&entry.ID, &entry.Key, &entry.Value, &entry.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get config %q: %w", key, err)
	}
	return &entry, nil
}

func (s *Store) UpsertConfig(ctx context.Context, entry models.SiteConfig) (*models.SiteConfig, error) {
	query := `
		INSERT INTO site_config (id, key, value, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at
		RETURNING id, key, value, updated_at
	`
	var saved models.SiteConfig
	err := s.db.QueryRow(ctx, query, entry.ID, entry.Key, entry.Value, entry.UpdatedAt).
		Scan(&saved.ID, &saved.Key, &saved.Value, &saved.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert config %q: %w", entry.Key, err)
	}
	return &saved, nil
}

func (s *Store) FindActiveSocialNetworks(ctx context.Context) ([]models.SocialNetwork, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, name, url, icon, is_active, created_at
		FROM social_networks WHERE is_active ORDER BY created_at, name
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query social networks: %w", err)
	}
	defer rows.Close()

	networks := []models.SocialNetwork{}
	for rows.Next() {
		var n models.SocialNetwork
		if err := rows.Scan(&n.ID, &n.Name, &n.URL, &n.Icon, &n.IsActive, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan social network: %w", err)
		}
		networks = append(networks, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate social networks: %w", err)
	}
	return networks, nil
}

func (s *Store) ReplaceSocialNetworks(ctx context.Context, networks []models.SocialNetwork) error {
	return s.inTx(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `UPDATE social_networks SET is_active = FALSE`); err != nil {
			return fmt.Errorf("failed to deactivate social networks: %w", err)
		}
		for _, n := range networks {
			_, err := tx.Exec(ctx, `
				INSERT INTO social_networks (id, name, url, icon, is_active, created_at)
				VALUES ($1, $2, $3, $4, TRUE, $5)
				ON CONFLICT (name) DO UPDATE SET url = EXCLUDED.url, is_active = TRUE
			`, n.ID, n.Name, n.URL, n.Icon, n.CreatedAt)
			if err != nil {
				return fmt.Errorf("failed to upsert social network %q: %w", n.Name, err)
			}
		}
		return nil
	})
}

func (s *Store) FindActiveBusinessGroups(ctx context.Context) ([]models.BusinessGroup, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, name, description, link, is_active, created_at
		FROM business_groups WHERE is_active ORDER BY created_at
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query business groups: %w", err)
	}
	defer rows.Close()

	groups := []models.BusinessGroup{}
	for rows.Next() {
		var g models.BusinessGroup
		if err := rows.Scan(&g.ID, &g.Name, &g.Description, &g.Link, &g.IsActive, &g.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan business group: %w", err)
		}
		groups = append(groups, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate business groups: %w", err)
	}
	return groups, nil
}

func (s *Store) ReplaceBusinessGroups(ctx context.Context, groups []models.BusinessGroup) error {
	return s.inTx(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `UPDATE business_groups SET is_active = FALSE`); err != nil {
			return fmt.Errorf("failed to deactivate business groups: %w", err)
		}
		for _, g := range groups {
			_, err := tx.Exec(ctx, `
				INSERT INTO business_groups (id, name, description, link, is_active, created_at)
				VALUES ($1, $2, $3, $4, TRUE, $5)
			`, g.ID, g.Name, g.Description, g.Link, g.CreatedAt)
			if err != nil {
				return fmt.Errorf("failed to insert business group %q: %w", g.Name, err)
			}
		}
		return nil
	})
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

func (s *Store) Close() error {
	s.db.Close()
	return nil
}

// inTx runs fn in a transaction, committing only when fn succeeds.
func (s *Store) inTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil {
			return errors.Join(err, fmt.Errorf("failed to roll back: %w", rbErr))
		}
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// escapeLike makes user input literal inside an ILIKE pattern.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
