package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"fsvp/internal/cache"
	"fsvp/internal/model"
	"fsvp/internal/repository"
)

const (
	userCacheKeyPrefix = "user:"
	userCacheTTL       = 5 * time.Minute
)

// UserService handles user lookups. Reads go through the cache so the
// per-request actor load stays cheap.
type UserService interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.User, error)
}

type userService struct {
	userRepo repository.UserRepository
	cache    *cache.Client
}

// NewUserService creates a new user service.
func NewUserService(userRepo repository.UserRepository, cache *cache.Client) UserService {
	return &userService{userRepo: userRepo, cache: cache}
}

func (s *userService) GetByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	cacheKey := userCacheKeyPrefix + id.String()
	if data, err := s.cache.Get(ctx, cacheKey); err == nil && data != nil {
		var user model.User
		if err := json.Unmarshal(data, &user); err == nil {
			return &user, nil
		}
	}

	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(user); err == nil {
		_ = s.cache.Set(ctx, cacheKey, data, userCacheTTL)
	}
	return user, nil
}
