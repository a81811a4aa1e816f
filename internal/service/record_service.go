package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	apperrors "minimalistnotes/internal/errors"
	"minimalistnotes/internal/model"
	"minimalistnotes/internal/repository"
)

// RecordService exposes CRUD over one kind of user-scoped record.
//
// A nil caller skips ownership checks, matching the advisory behaviour of the
// public API. A non-nil caller may only touch records it owns.
type RecordService[T model.Record] interface {
	List(ctx context.Context, owner *string) ([]T, error)
	Create(ctx context.Context, record T) (T, error)
	Update(ctx context.Context, id string, fields map[string]interface{}, caller *string) error
	Delete(ctx context.Context, id string, caller *string) error
}

type recordService[T model.Record] struct {
	repo repository.RecordRepository[T]
	kind string
	now  func() time.Time
}

// NewRecordService builds a RecordService; kind names the record in errors.
func NewRecordService[T model.Record](repo repository.RecordRepository[T], kind string) RecordService[T] {
	return &recordService[T]{repo: repo, kind: kind, now: time.Now}
}

func (s *recordService[T]) List(ctx context.Context, owner *string) ([]T, error) {
	records, err := s.repo.ListByOwner(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("list %ss: %w", s.kind, err)
	}
	return records, nil
}

// Create stamps the record itself so every store keeps the same timestamps.
func (s *recordService[T]) Create(ctx context.Context, record T) (T, error) {
	record.Stamp(s.now())
	if err := s.repo.Create(ctx, record); err != nil {
		var zero T
		return zero, fmt.Errorf("create %s: %w", s.kind, err)
	}
	return record, nil
}

func (s *recordService[T]) Update(ctx context.Context, id string, fields map[string]interface{}, caller *string) error {
	if err := s.authorize(ctx, id, caller); err != nil {
		return err
	}
	fields["updated_at"] = s.now()
	if err := s.repo.Update(ctx, id, fields); err != nil {
		return s.translate("update", err)
	}
	return nil
}

func (s *recordService[T]) Delete(ctx context.Context, id string, caller *string) error {
	if err := s.authorize(ctx, id, caller); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return s.translate("delete", err)
	}
	return nil
}

func (s *recordService[T]) authorize(ctx context.Context, id string, caller *string) error {
	if caller == nil {
		return nil
	}
	record, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return s.translate("find", err)
	}
	if owner := record.Owner(); owner == nil || *owner != *caller {
		return apperrors.ErrForbidden
	}
	return nil
}

func (s *recordService[T]) translate(op string, err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("%s %s: %w", op, s.kind, apperrors.ErrRecordNotFound)
	}
	return fmt.Errorf("%s %s: %w", op, s.kind, err)
}
