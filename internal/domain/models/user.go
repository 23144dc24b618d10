// internal/domain/models/user.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User represents an account that can sign in and publish projects.
//
// Email is the stable public identifier; project ownership is recorded by
// email, so Email must never be rewritten once the account has published.
type User struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	FullName   string             `bson:"full_name" json:"full_name"`
	FullNameCI string             `bson:"full_name_ci" json:"full_name_ci"` // lowercase, diacritics-stripped
	Email      string             `bson:"email" json:"email"`
	EmailCI    string             `bson:"email_ci" json:"email_ci"`
	AuthMethod string             `bson:"auth_method" json:"auth_method"` // password | google
	PhotoURL   string             `bson:"photo_url,omitempty" json:"photo_url,omitempty"`
	Status     string             `bson:"status" json:"status"` // active | disabled

	// Only set for password accounts; never serialized to JSON.
	PasswordHash []byte `bson:"password_hash,omitempty" json:"-"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// DefaultSiteName is shown in page titles and headers.
const DefaultSiteName = "HackMate"

// AnonymousOwnerName is used when an account has no display name at publish
// time.
const AnonymousOwnerName = "Anonymous"
