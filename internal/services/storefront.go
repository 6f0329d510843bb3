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

// StorefrontService manages the social links and partner groups shown on the
// storefront.
type StorefrontService struct {
	store store.Store
	now   func() time.Time
}

func NewStorefrontService(st store.Store) *StorefrontService {
	return &StorefrontService{store: st, now: time.Now}
}

func (s *StorefrontService) SocialNetworks(ctx context.Context) ([]models.SocialNetwork, error) {
	networks, err := s.store.FindActiveSocialNetworks(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list social networks: %w", err)
	}
	return networks, nil
}

// ReplaceSocialNetworks makes inputs the active set. Entries without a name
// or URL are ignored, and a repeated name keeps its first position with the
// last entry's values. It returns how many networks were kept.
func (s *StorefrontService) ReplaceSocialNetworks(ctx context.Context, inputs []models.SocialNetworkInput) (int, error) {
	now := s.now().UTC()
	networks := make([]models.SocialNetwork, 0, len(inputs))
	position := make(map[string]int, len(inputs))
	for _, in := range inputs {
		name, url := strings.TrimSpace(in.Name), strings.TrimSpace(in.URL)
		if name == "" || url == "" {
			continue
		}
		icon := in.Icon
		if icon == "" {
			icon = name
		}
		network := models.SocialNetwork{
			ID:        uuid.NewString(),
			Name:      name,
			URL:       url,
			Icon:      icon,
			IsActive:  true,
			CreatedAt: now,
		}
		if i, seen := position[name]; seen {
			networks[i] = network
			continue
		}
		position[name] = len(networks)
		networks = append(networks, network)
	}
	if err := s.store.ReplaceSocialNetworks(ctx, networks); err != nil {
		return 0, fmt.Errorf("failed to replace social networks: %w", err)
	}
	slog.Info("Social networks replaced.", "count", len(networks))
	return len(networks), nil
}

func (s *StorefrontService) BusinessGroups(ctx context.Context) ([]models.BusinessGroup, error) {
	groups, err := s.store.FindActiveBusinessGroups(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list business groups: %w", err)
	}
	return groups, nil
}

// ReplaceBusinessGroups makes inputs the active set. Entries without a name
// are ignored.
func (s *StorefrontService) ReplaceBusinessGroups(ctx context.Context, inputs []models.BusinessGroupInput) (int, error) {
	now := s.now().UTC()
	groups := make([]models.BusinessGroup, 0, len(inputs))
	for _, in := range inputs {
		name := strings.TrimSpace(in.Name)
		if name == "" {
			continue
		}
		groups = append(groups, models.BusinessGroup{
			ID:          uuid.NewString(),
			Name:        name,
			Description: in.Description,
			Link:        in.Link,
			IsActive:    true,
			CreatedAt:   now,
		})
	}
	if err := s.store.ReplaceBusinessGroups(ctx, groups); err != nil {
		return 0, fmt.Errorf("failed to replace business groups: %w", err)
	}
	slog.Info("Business groups replaced.", "count", len(groups))
	return len(groups), nil
}
