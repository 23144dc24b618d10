// internal/app/system/authz/authz.go
package authz

import (
	"net/http"

	"github.com/hackmatehq/hackmate/internal/app/system/auth"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserCtx returns the current principal's display name, email, Mongo
// ObjectID, and a found flag. If no principal is present or the stored user
// id is malformed, it returns zero values and false, so ok=true always means
// a valid, authenticated user with a valid ObjectID.
func UserCtx(r *http.Request) (name string, email string, userID primitive.ObjectID, ok bool) {
	user, ok := auth.CurrentUser(r)
	if !ok {
		return "", "", primitive.NilObjectID, false
	}
	userID, err := primitive.ObjectIDFromHex(user.ID)
	if err != nil {
		// Malformed user ID in session - fail closed.
		return "", "", primitive.NilObjectID, false
	}
	return user.Name, user.Email, userID, true
}

// UserEmail returns the current principal's email, or "" when signed out.
// Project ownership checks and view-count suppression key off this value.
func UserEmail(r *http.Request) string {
	user, ok := auth.CurrentUser(r)
	if !ok {
		return ""
	}
	return user.Email
}

// IsOwner reports whether the current principal owns a listing with the
// given owner email. A signed-out request never owns anything.
func IsOwner(r *http.Request, ownerEmail string) bool {
	email := UserEmail(r)
	return email != "" && email == ownerEmail
}
