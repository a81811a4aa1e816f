package repository

import (
	"context"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"minimalistnotes/internal/model"
)

// Collections holding user records.
const (
	NotesCollection  = "notes"
	TodosCollection  = "todos"
	TimersCollection = "timers"
)

type mongoRecordRepository[T model.Record] struct {
	coll   *mongo.Collection
	newRec func() T
}

// NewMongoNoteRepository creates a MongoDB note repository.
func NewMongoNoteRepository(db *mongo.Database) RecordRepository[*model.Note] {
	return &mongoRecordRepository[*model.Note]{
		coll:   db.Collection(NotesCollection),
		newRec: func() *model.Note { return &model.Note{} },
	}
}

// NewMongoTodoRepository creates a MongoDB todo repository.
func NewMongoTodoRepository(db *mongo.Database) RecordRepository[*model.Todo] {
	return &mongoRecordRepository[*model.Todo]{
		coll:   db.Collection(TodosCollection),
		newRec: func() *model.Todo { return &model.Todo{} },
	}
}

// NewMongoTimerRepository creates a MongoDB timer repository.
func NewMongoTimerRepository(db *mongo.Database) RecordRepository[*model.Timer] {
	return &mongoRecordRepository[*model.Timer]{
		coll:   db.Collection(TimersCollection),
		newRec: func() *model.Timer { return &model.Timer{} },
	}
}

func (r *mongoRecordRepository[T]) Create(ctx context.Context, record T) error {
	if record.GetID() == "" {
		record.SetID(uuid.NewString())
	}
	_, err := r.coll.InsertOne(ctx, record)
	return translateMongoError(err)
}

func (r *mongoRecordRepository[T]) FindByID(ctx context.Context, id string) (T, error) {
	record := r.newRec()
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(record); err != nil {
		var zero T
		return zero, translateMongoError(err)
	}
	return record, nil
}

func (r *mongoRecordRepository[T]) ListByOwner(ctx context.Context, userID *string) ([]T, error) {
	filter := bson.M{}
	if userID != nil {
		filter["user_id"] = *userID
	}
	cursor, err := r.coll.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}))
	if err != nil {
		return nil, err
	}
	records := make([]T, 0)
	if err := cursor.All(ctx, &records); err != nil {
		return nil, err
	}
	return records, nil
}

func (r *mongoRecordRepository[T]) Update(ctx context.Context, id string, fields map[string]interface{}) error {
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": fields})
	if err != nil {
		return translateMongoError(err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *mongoRecordRepository[T]) Delete(ctx context.Context, id string) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
