package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"minimalistnotes/internal/cache"
	apperrors "minimalistnotes/internal/errors"
	"minimalistnotes/internal/model"
	"minimalistnotes/internal/repository"
)

// userCacheTTL bounds how long a user deleted outside this service still verifies.
const userCacheTTL = 30 * time.Second

// UserService resolves token subjects to users.
type UserService interface {
	GetUser(ctx context.Context, id string) (*model.User, error)
	Invalidate(ctx context.Context, id string)
}

type userService struct {
	repo  repository.UserRepository
	cache *cache.Client
}

// NewUserService builds a UserService with repository and cache.
// A nil cache disables caching.
func NewUserService(repo repository.UserRepository, cache *cache.Client) UserService {
	return &userService{repo: repo, cache: cache}
}

func (s *userService) cacheKey(id string) string {
	return fmt.Sprintf("user:%s", id)
}

// GetUser returns ErrUserNotFound when the account no longer exists.
func (s *userService) GetUser(ctx context.Context, id string) (*model.User, error) {
	var cached model.User
	if s.cache.GetJSON(ctx, s.cacheKey(id), &cached) {
		return &cached, nil
	}

	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user %s: %w", id, err)
	}

	s.cache.SetJSON(ctx, s.cacheKey(id), user, userCacheTTL)
	return user, nil
}

func (s *userService) Invalidate(ctx context.Context, id string) {
	s.cache.Delete(ctx, s.cacheKey(id))
}
