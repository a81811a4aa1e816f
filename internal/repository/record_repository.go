package repository

import (
	"context"

	"gorm.io/gorm"

	"minimalistnotes/internal/model"
)

// RecordRepository defines persistence operations for user-scoped records.
// Field names passed to Update are storage column names.
type RecordRepository[T model.Record] interface {
	Create(ctx context.Context, record T) error
	FindByID(ctx context.Context, id string) (T, error)
	// ListByOwner returns the records of userID, or every record when userID is nil.
	ListByOwner(ctx context.Context, userID *string) ([]T, error)
	Update(ctx context.Context, id string, fields map[string]interface{}) error
	Delete(ctx context.Context, id string) error
}

type recordRepository[T model.Record] struct {
	db     *gorm.DB
	newRec func() T
}

// NewNoteRepository creates a GORM note repository.
func NewNoteRepository(db *gorm.DB) RecordRepository[*model.Note] {
	return &recordRepository[*model.Note]{db: db, newRec: func() *model.Note { return &model.Note{} }}
}

// NewTodoRepository creates a GORM todo repository.
func NewTodoRepository(db *gorm.DB) RecordRepository[*model.Todo] {
	return &recordRepository[*model.Todo]{db: db, newRec: func() *model.Todo { return &model.Todo{} }}
}

// NewTimerRepository creates a GORM timer repository.
func NewTimerRepository(db *gorm.DB) RecordRepository[*model.Timer] {
	return &recordRepository[*model.Timer]{db: db, newRec: func() *model.Timer { return &model.Timer{} }}
}

func (r *recordRepository[T]) Create(ctx context.Context, record T) error {
	return translateGormError(r.db.WithContext(ctx).Create(record).Error)
}

func (r *recordRepository[T]) FindByID(ctx context.Context, id string) (T, error) {
	record := r.newRec()
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(record).Error; err != nil {
		var zero T
		return zero, translateGormError(err)
	}
	return record, nil
}

func (r *recordRepository[T]) ListByOwner(ctx context.Context, userID *string) ([]T, error) {
	var records []T
	query := r.db.WithContext(ctx).Model(r.newRec())
	if userID != nil {
		query = query.Where("user_id = ?", *userID)
	}
	if err := query.Order("created_at").Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

func (r *recordRepository[T]) Update(ctx context.Context, id string, fields map[string]interface{}) error {
	res := r.db.WithContext(ctx).Model(r.newRec()).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return translateGormError(res.Error)
	}
	if res.RowsAffected > 0 {
		return nil
	}
	// MySQL reports zero affected rows for a no-op update, so confirm the row exists.
	var count int64
	if err := r.db.WithContext(ctx).Model(r.newRec()).Where("id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *recordRepository[T]) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(r.newRec())
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
