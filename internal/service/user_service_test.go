package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apperrors "minimalistnotes/internal/errors"
	"minimalistnotes/internal/model"
	"minimalistnotes/internal/repository"
)

func TestUserService_GetUser(t *testing.T) {
	ctx := context.Background()

	t.Run("found", func(t *testing.T) {
		repo := new(MockUserRepository)
		repo.On("FindByID", mock.Anything, "u1").Return(&model.User{ID: "u1", Email: "a@x.com"}, nil)

		user, err := NewUserService(repo, nil).GetUser(ctx, "u1")
		require.NoError(t, err)
		assert.Equal(t, "a@x.com", user.Email)
	})

	t.Run("deleted user stops resolving without a cache", func(t *testing.T) {
		repo := new(MockUserRepository)
		repo.On("FindByID", mock.Anything, "u1").Return(&model.User{ID: "u1"}, nil).Once()
		repo.On("FindByID", mock.Anything, "u1").Return(nil, repository.ErrNotFound).Once()
		svc := NewUserService(repo, nil)

		_, err := svc.GetUser(ctx, "u1")
		require.NoError(t, err)
		_, err = svc.GetUser(ctx, "u1")
		assert.ErrorIs(t, err, apperrors.ErrUserNotFound)
		repo.AssertExpectations(t)
	})

	t.Run("storage failure is wrapped", func(t *testing.T) {
		repo := new(MockUserRepository)
		repo.On("FindByID", mock.Anything, "u1").Return(nil, errors.New("timeout"))

		_, err := NewUserService(repo, nil).GetUser(ctx, "u1")
		require.Error(t, err)
		assert.True(t, apperrors.IsInternal(err))
	})
}

func TestUserCacheTTLIsShort(t *testing.T) {
	assert.LessOrEqual(t, userCacheTTL, time.Minute)
}
