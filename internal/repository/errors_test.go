package repository

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/mongo"
	"gorm.io/gorm"
)

func TestTranslateGormError(t *testing.T) {
	other := errors.New("connection reset")

	assert.NoError(t, translateGormError(nil))
	assert.ErrorIs(t, translateGormError(gorm.ErrRecordNotFound), ErrNotFound)
	assert.ErrorIs(t, translateGormError(fmt.Errorf("insert: %w", gorm.ErrDuplicatedKey)), ErrDuplicateKey)
	assert.Equal(t, other, translateGormError(other))
}

func TestTranslateMongoError(t *testing.T) {
	duplicate := mongo.WriteException{
		WriteErrors: mongo.WriteErrors{{Code: 11000, Message: "E11000 duplicate key error"}},
	}
	other := errors.New("server selection timeout")

	assert.NoError(t, translateMongoError(nil))
	assert.ErrorIs(t, translateMongoError(mongo.ErrNoDocuments), ErrNotFound)
	assert.ErrorIs(t, translateMongoError(duplicate), ErrDuplicateKey)
	assert.Equal(t, other, translateMongoError(other))
}
