package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AuthMethod names a sign-in path an email can be bound to.
type AuthMethod string

const (
	AuthMethodManual AuthMethod = "manual"
	AuthMethodGoogle AuthMethod = "google"
)

// AuthMethods is the set of sign-in paths bound to an account.
// Under the current policy it always holds exactly one element.
type AuthMethods []AuthMethod

// Has reports whether m is in the set.
func (a AuthMethods) Has(m AuthMethod) bool {
	for _, v := range a {
		if v == m {
			return true
		}
	}
	return false
}

// Value implements driver.Valuer, storing the set as a JSON array.
func (a AuthMethods) Value() (driver.Value, error) {
	if a == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]AuthMethod(a))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner.
func (a *AuthMethods) Scan(src interface{}) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*a = nil
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("scan auth methods: unsupported type %T", src)
	}
	return json.Unmarshal(raw, (*[]AuthMethod)(a))
}

// User represents an identity that owns notes, todos and timers.
type User struct {
	ID           string      `json:"id" gorm:"type:char(36);primaryKey" bson:"_id"`
	Email        string      `json:"email" gorm:"uniqueIndex;size:255;not null" bson:"email"`
	DisplayEmail string      `json:"displayEmail" gorm:"size:255;not null" bson:"display_email"`
	Name         string      `json:"name" gorm:"size:255;not null" bson:"name"`
	PasswordHash *string     `json:"-" gorm:"size:255" bson:"password_hash,omitempty"` // Never expose in JSON
	AuthMethods  AuthMethods `json:"authMethods" gorm:"type:json;not null" bson:"auth_methods"`
	FederatedID  string      `json:"federatedId,omitempty" gorm:"size:255;index" bson:"federated_id,omitempty"`
	Picture      string      `json:"picture,omitempty" gorm:"size:1024" bson:"picture,omitempty"`
	CreatedAt    time.Time   `json:"createdAt" bson:"created_at"`
	LastLogin    time.Time   `json:"lastLogin" bson:"last_login"`
}

// BeforeCreate sets UUID before creating the record.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}

// NormalizeEmail returns the lookup key for an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// LocalPart returns the part of an email before the '@'.
func LocalPart(email string) string {
	email = strings.TrimSpace(email)
	if i := strings.LastIndex(email, "@"); i >= 0 {
		return email[:i]
	}
	return email
}
