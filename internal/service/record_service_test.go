package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apperrors "minimalistnotes/internal/errors"
	"minimalistnotes/internal/model"
	"minimalistnotes/internal/repository"
)

// MockNoteRepository is a mock implementation of RecordRepository for notes.
type MockNoteRepository struct {
	mock.Mock
}

func (m *MockNoteRepository) Create(ctx context.Context, note *model.Note) error {
	args := m.Called(ctx, note)
	return args.Error(0)
}

func (m *MockNoteRepository) FindByID(ctx context.Context, id string) (*model.Note, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Note), args.Error(1)
}

func (m *MockNoteRepository) ListByOwner(ctx context.Context, userID *string) ([]*model.Note, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Note), args.Error(1)
}

func (m *MockNoteRepository) Update(ctx context.Context, id string, fields map[string]interface{}) error {
	args := m.Called(ctx, id, fields)
	return args.Error(0)
}

func (m *MockNoteRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func strPtr(s string) *string { return &s }

func TestRecordService_Create(t *testing.T) {
	repo := new(MockNoteRepository)
	svc := NewRecordService[*model.Note](repo, "note")

	note := &model.Note{Title: "Note", Content: "hello", UserID: strPtr("u1")}
	repo.On("Create", mock.Anything, note).Return(nil)

	got, err := svc.Create(context.Background(), note)
	require.NoError(t, err)
	assert.Same(t, note, got)
	repo.AssertExpectations(t)
}

func TestRecordService_CreateStampsTimestamps(t *testing.T) {
	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	repo := new(MockNoteRepository)
	svc := NewRecordService[*model.Note](repo, "note").(*recordService[*model.Note])
	svc.now = func() time.Time { return at }

	note := &model.Note{Title: "Note", Content: "hello"}
	repo.On("Create", mock.Anything, mock.MatchedBy(func(n *model.Note) bool {
		return n.CreatedAt.Equal(at) && n.UpdatedAt.Equal(at)
	})).Return(nil)

	got, err := svc.Create(context.Background(), note)
	require.NoError(t, err)
	assert.Equal(t, at, got.CreatedAt)
	assert.Equal(t, at, got.UpdatedAt)
	repo.AssertExpectations(t)
}

func TestRecordService_List(t *testing.T) {
	repo := new(MockNoteRepository)
	svc := NewRecordService[*model.Note](repo, "note")

	owner := strPtr("u1")
	notes := []*model.Note{{ID: "n1", UserID: owner}}
	repo.On("ListByOwner", mock.Anything, owner).Return(notes, nil)
	repo.On("ListByOwner", mock.Anything, (*string)(nil)).Return([]*model.Note{}, nil)

	got, err := svc.List(context.Background(), owner)
	require.NoError(t, err)
	assert.Equal(t, notes, got)

	got, err = svc.List(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestRecordService_Update(t *testing.T) {
	ctx := context.Background()

	t.Run("advisory update skips ownership", func(t *testing.T) {
		repo := new(MockNoteRepository)
		svc := NewRecordService[*model.Note](repo, "note")

		repo.On("Update", mock.Anything, "n1", mock.MatchedBy(func(f map[string]interface{}) bool {
			_, stamped := f["updated_at"]
			return f["title"] == "new" && stamped
		})).Return(nil)

		err := svc.Update(ctx, "n1", map[string]interface{}{"title": "new"}, nil)
		require.NoError(t, err)
		repo.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
		repo.AssertExpectations(t)
	})

	t.Run("unknown id", func(t *testing.T) {
		repo := new(MockNoteRepository)
		svc := NewRecordService[*model.Note](repo, "note")

		repo.On("Update", mock.Anything, "missing", mock.Anything).Return(repository.ErrNotFound)

		err := svc.Update(ctx, "missing", map[string]interface{}{}, nil)
		assert.ErrorIs(t, err, apperrors.ErrRecordNotFound)
		assert.Equal(t, 404, apperrors.MapErrorToHTTP(err).StatusCode)
	})

	t.Run("owner may update", func(t *testing.T) {
		repo := new(MockNoteRepository)
		svc := NewRecordService[*model.Note](repo, "note")

		repo.On("FindByID", mock.Anything, "n1").Return(&model.Note{ID: "n1", UserID: strPtr("u1")}, nil)
		repo.On("Update", mock.Anything, "n1", mock.Anything).Return(nil)

		require.NoError(t, svc.Update(ctx, "n1", map[string]interface{}{"content": "x"}, strPtr("u1")))
		repo.AssertExpectations(t)
	})

	t.Run("other user is forbidden", func(t *testing.T) {
		repo := new(MockNoteRepository)
		svc := NewRecordService[*model.Note](repo, "note")

		repo.On("FindByID", mock.Anything, "n1").Return(&model.Note{ID: "n1", UserID: strPtr("u1")}, nil)

		err := svc.Update(ctx, "n1", map[string]interface{}{"content": "x"}, strPtr("u2"))
		assert.ErrorIs(t, err, apperrors.ErrForbidden)
		repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("unowned record is forbidden when enforcing", func(t *testing.T) {
		repo := new(MockNoteRepository)
		svc := NewRecordService[*model.Note](repo, "note")

		repo.On("FindByID", mock.Anything, "n1").Return(&model.Note{ID: "n1"}, nil)

		err := svc.Update(ctx, "n1", map[string]interface{}{}, strPtr("u2"))
		assert.ErrorIs(t, err, apperrors.ErrForbidden)
	})
}

func TestRecordService_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("deletes", func(t *testing.T) {
		repo := new(MockNoteRepository)
		svc := NewRecordService[*model.Note](repo, "note")
		repo.On("Delete", mock.Anything, "n1").Return(nil)

		require.NoError(t, svc.Delete(ctx, "n1", nil))
		repo.AssertExpectations(t)
	})

	t.Run("missing when enforcing", func(t *testing.T) {
		repo := new(MockNoteRepository)
		svc := NewRecordService[*model.Note](repo, "note")
		repo.On("FindByID", mock.Anything, "gone").Return(nil, repository.ErrNotFound)

		err := svc.Delete(ctx, "gone", strPtr("u1"))
		assert.ErrorIs(t, err, apperrors.ErrRecordNotFound)
		repo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})
}
