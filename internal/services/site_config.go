package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Lllllllleong/catalogflow/internal/models"
	"github.com/Lllllllleong/catalogflow/internal/store"
)

// SiteConfigService reads and writes storefront key/value settings.
type SiteConfigService struct {
	store store.Store
	now   func() time.Time
}

func NewSiteConfigService(st store.Store) *SiteConfigService {
	return &SiteConfigService{store: st, now: time.Now}
}

// Get returns the value stored under key. An unset key yields an empty value.
func (s *SiteConfigService) Get(ctx context.Context, key string) (*models.ConfigEntry, error) {
	entry, err := s.store.FindConfig(ctx, key)
	if errors.Is(err, store.ErrNotFound) {
		return &models.ConfigEntry{Key: key, Value: ""}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get config %q: %w", key, err)
	}
	return &models.ConfigEntry{Key: entry.Key, Value: entry.Value}, nil
}

// Set stores value under key, creating the entry if needed.
func (s *SiteConfigService) Set(ctx context.Context, key, value string) (*models.SiteConfig, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, fmt.Errorf("%w: key is required", ErrInvalidInput)
	}
	saved, err := s.store.UpsertConfig(ctx, models.SiteConfig{
		ID:        uuid.NewString(),
		Key:       key,
		Value:     value,
		UpdatedAt: s.now().UTC(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to set config %q: %w", key, err)
	}
	return saved, nil
}
