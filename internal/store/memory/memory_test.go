package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Lllllllleong/catalogflow/internal/models"
	"github.com/Lllllllleong/catalogflow/internal/store"
)

var base = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func product(id, title string, age time.Duration) models.Product {
	return models.Product{
		ID:        id,
		Title:     title,
		Category:  models.CategoryGames,
		Platforms: []string{"PC"},
		CreatedAt: base.Add(-age),
	}
}

func TestFindProductsNewestFirst(t *testing.T) {
	ctx := context.Background()
	s := New()
	require.NoError(t, s.InsertProducts(ctx, []models.Product{
		product("old", "Doom", 2*time.Hour),
		product("new", "Pokémon Escarlata", 0),
		product("mid", "Halo", time.Hour),
	}))

	products, err := s.FindProducts(ctx, models.ProductFilter{})
	require.NoError(t, err)
	ids := make([]string, 0, len(products))
	for _, p := range products {
		ids = append(ids, p.ID)
	}
	assert.Equal(t, []string{"new", "mid", "old"}, ids)

	found, err := s.FindProducts(ctx, models.ProductFilter{Search: "pokemon"})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "new", found[0].ID)
}

func TestInsertProductsAllOrNothing(t *testing.T) {
	ctx := context.Background()
	s := New()
	s.FailInsert = func(p models.Product) error {
		if p.ID == "b" {
			return errors.New("disk full")
		}
		return nil
	}

	err := s.InsertProducts(ctx, []models.Product{product("a", "A", 0), product("b", "B", 0)})
	require.Error(t, err)

	products, err := s.FindProducts(ctx, models.ProductFilter{})
	require.NoError(t, err)
	assert.Empty(t, products)
}

func TestUpdateAndDeleteCounts(t *testing.T) {
	ctx := context.Background()
	s := New()
	require.NoError(t, s.InsertProduct(ctx, product("a", "Halo", 0)))

	title := "Halo 2"
	n, err := s.UpdateProduct(ctx, "a", models.ProductPatch{Title: &title}, base.Add(time.Hour))
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	n, err = s.UpdateProduct(ctx, "missing", models.ProductPatch{Title: &title}, base)
	require.NoError(t, err)
	assert.EqualValues(t, 0, n)

	n, err = s.DeleteProduct(ctx, "a")
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
	n, err = s.DeleteProduct(ctx, "a")
	require.NoError(t, err)
	assert.EqualValues(t, 0, n)
}

func TestFindConfigMissing(t *testing.T) {
	_, err := New().FindConfig(context.Background(), "banner")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestReplaceSocialNetworksKeepsExistingIdentity(t *testing.T) {
	ctx := context.Background()
	s := New()
	require.NoError(t, s.ReplaceSocialNetworks(ctx, []models.SocialNetwork{
		{ID: "1", Name: "instagram", URL: "https://instagram.com/a", Icon: "ig", CreatedAt: base},
		{ID: "2", Name: "facebook", URL: "https://facebook.com/a", Icon: "fb", CreatedAt: base},
	}))
	require.NoError(t, s.ReplaceSocialNetworks(ctx, []models.SocialNetwork{
		{ID: "3", Name: "instagram", URL: "https://instagram.com/b", Icon: "instagram", CreatedAt: base.Add(time.Hour)},
	}))

	networks, err := s.FindActiveSocialNetworks(ctx)
	require.NoError(t, err)
	require.Len(t, networks, 1)
	assert.Equal(t, "1", networks[0].ID)
	assert.Equal(t, "ig", networks[0].Icon)
	assert.Equal(t, "https://instagram.com/b", networks[0].URL)
	assert.Equal(t, base, networks[0].CreatedAt)
}

func TestReplaceBusinessGroupsDeactivatesPrevious(t *testing.T) {
	ctx := context.Background()
	s := New()
	require.NoError(t, s.ReplaceBusinessGroups(ctx, []models.BusinessGroup{{ID: "1", Name: "Gamers"}}))
	require.NoError(t, s.ReplaceBusinessGroups(ctx, []models.BusinessGroup{{ID: "2", Name: "Cinéfilos"}}))

	groups, err := s.FindActiveBusinessGroups(ctx)
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Equal(t, "Cinéfilos", groups[0].Name)
}
