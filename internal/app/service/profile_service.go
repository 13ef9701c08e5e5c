package service

import (
	"context"
	"fmt"

	"github.com/patrickmn/go-cache"

	"treasury_dashboard/internal/app/port"
	"treasury_dashboard/internal/domain/entity"
)

// ProfileServiceImpl implements port.ProfileService with a per-account cache.
// Accounts without a profile stay absent from the returned map.
type ProfileServiceImpl struct {
	client       port.ProfileClient
	logger       port.Logger
	profileCache *cache.Cache
}

// NewProfileService creates a new instance of ProfileServiceImpl.
func NewProfileService(client port.ProfileClient, l port.Logger, profileCache *cache.Cache) *ProfileServiceImpl {
	return &ProfileServiceImpl{
		client:       client,
		logger:       l,
		profileCache: profileCache,
	}
}

var _ port.ProfileService = (*ProfileServiceImpl)(nil)

// Profiles resolves profiles for the given account ids, fetching only the
// ones not already cached in a single batch request.
func (s *ProfileServiceImpl) Profiles(ctx context.Context, ids []string) (map[string]entity.Profile, error) {
	result := make(map[string]entity.Profile, len(ids))
	var missing []string
	seen := make(map[string]struct{}, len(ids))

	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		if cached, ok := s.profileCache.Get(id); ok {
			result[id] = cached.(entity.Profile)
			continue
		}
		missing = append(missing, id)
	}

	if len(missing) > 0 {
		fetched, err := s.client.ProfilesByAccountIDs(ctx, missing)
		if err != nil {
			return nil, fmt.Errorf("profile lookup: %w", err)
		}
		for id, profile := range fetched {
			result[id] = profile
			s.profileCache.Set(id, profile, cache.DefaultExpiration)
		}
	}

	return result, nil
}
