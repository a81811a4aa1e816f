package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Record is implemented by every user-scoped collaborator record.
type Record interface {
	GetID() string
	SetID(id string)
	Owner() *string
	// Stamp sets both timestamps for a record about to be stored.
	Stamp(at time.Time)
}

// Note is a free-form text note.
type Note struct {
	ID        string    `json:"id" gorm:"type:char(36);primaryKey" bson:"_id"`
	UserID    *string   `json:"userId" gorm:"type:varchar(64);index" bson:"user_id"`
	Title     string    `json:"title" gorm:"size:255;not null" bson:"title"`
	Content   string    `json:"content" gorm:"type:text;not null" bson:"content"`
	CreatedAt time.Time `json:"createdAt" bson:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updated_at"`
}

func (n *Note) GetID() string   { return n.ID }
func (n *Note) SetID(id string) { n.ID = id }
func (n *Note) Owner() *string  { return n.UserID }
func (n *Note) Stamp(at time.Time) { n.CreatedAt, n.UpdatedAt = at, at }

// BeforeCreate sets UUID before creating the record.
func (n *Note) BeforeCreate(tx *gorm.DB) error {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	return nil
}

// Todo is a checklist item.
type Todo struct {
	ID        string    `json:"id" gorm:"type:char(36);primaryKey" bson:"_id"`
	UserID    *string   `json:"userId" gorm:"type:varchar(64);index" bson:"user_id"`
	Text      string    `json:"text" gorm:"type:text;not null" bson:"text"`
	Completed bool      `json:"completed" gorm:"default:false" bson:"completed"`
	CreatedAt time.Time `json:"createdAt" bson:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updated_at"`
}

func (t *Todo) GetID() string   { return t.ID }
func (t *Todo) SetID(id string) { t.ID = id }
func (t *Todo) Owner() *string  { return t.UserID }
func (t *Todo) Stamp(at time.Time) { t.CreatedAt, t.UpdatedAt = at, at }

// BeforeCreate sets UUID before creating the record.
func (t *Todo) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	return nil
}

// Timer is a named stopwatch. Only the accumulated time is persisted;
// a stored timer is always stopped. ElapsedTime is in milliseconds.
type Timer struct {
	ID          string    `json:"id" gorm:"type:char(36);primaryKey" bson:"_id"`
	UserID      *string   `json:"userId" gorm:"type:varchar(64);index" bson:"user_id"`
	Title       string    `json:"title" gorm:"size:255;not null" bson:"title"`
	ElapsedTime int64     `json:"elapsedTime" gorm:"not null;default:0" bson:"elapsed_time"`
	IsRunning   bool      `json:"isRunning" gorm:"default:false" bson:"is_running"`
	CreatedAt   time.Time `json:"createdAt" bson:"created_at"`
	UpdatedAt   time.Time `json:"updatedAt" bson:"updated_at"`
}

func (t *Timer) GetID() string   { return t.ID }
func (t *Timer) SetID(id string) { t.ID = id }
func (t *Timer) Owner() *string  { return t.UserID }
func (t *Timer) Stamp(at time.Time) { t.CreatedAt, t.UpdatedAt = at, at }

// BeforeCreate sets UUID before creating the record.
func (t *Timer) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	return nil
}
