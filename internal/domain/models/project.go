// internal/domain/models/project.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Project categories offered in the publish and filter forms.
var ProjectCategories = []string{
	"AI/ML",
	"Web",
	"App",
	"Blockchain",
	"Cybersecurity",
	"Data Science",
	"Other",
}

// Project is a published team-up listing.
//
// OwnerEmail identifies the authoring account and never changes after
// creation; ownership checks compare against it. OwnerName is a snapshot of
// the author's display name at publish time and is not kept in sync with
// later profile changes.
//
// CreatedAt is set by the store when the document is inserted and is only
// refreshed by an explicit reactivation, which restarts the visibility
// window. A zero CreatedAt means the server timestamp has not materialized
// yet; such a project is treated as brand new, never as expired.
type Project struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name        string             `bson:"name" json:"name"`
	Description string             `bson:"description" json:"description"`
	Category    string             `bson:"category" json:"category"`
	TechStack   string             `bson:"tech_stack" json:"tech_stack"`
	Course      string             `bson:"course" json:"course"`
	Year        string             `bson:"year" json:"year"`

	MembersRequired int `bson:"members_required" json:"members_required"`

	LinkedIn string `bson:"linkedin,omitempty" json:"linkedin,omitempty"`

	OwnerEmail string `bson:"owner_email" json:"owner_email"`
	OwnerName  string `bson:"owner_name" json:"owner_name"`

	ViewCount int64 `bson:"view_count" json:"view_count"`
	Active    bool  `bson:"active" json:"active"`

	CreatedAt time.Time  `bson:"created_at,omitempty" json:"created_at,omitempty"`
	UpdatedAt *time.Time `bson:"updated_at,omitempty" json:"updated_at,omitempty"`
}

// IsValidCategory reports whether c is one of the offered categories.
func IsValidCategory(c string) bool {
	for _, v := range ProjectCategories {
		if v == c {
			return true
		}
	}
	return false
}
