// internal/app/store/users/fetcher.go
package userstore

import (
	"context"

	"github.com/hackmatehq/hackmate/internal/app/system/auth"
	"github.com/hackmatehq/hackmate/internal/app/system/timeouts"
	"github.com/hackmatehq/hackmate/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Fetcher implements auth.UserFetcher so the session middleware loads fresh
// account data on each request. A disabled or deleted account therefore
// signs out on its next request, not at cookie expiry.
type Fetcher struct {
	users *mongo.Collection
}

// NewFetcher creates a UserFetcher that queries the given database.
func NewFetcher(db *mongo.Database) *Fetcher {
	return &Fetcher{users: db.Collection("users")}
}

// FetchSessionUser retrieves a user by ID. It returns (nil, nil) when the
// account is missing or disabled; the caller treats the request as signed
// out.
func (f *Fetcher) FetchSessionUser(ctx context.Context, userID string) (*auth.SessionUser, error) {
	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, nil
	}

	ctx, cancel := context.WithTimeout(ctx, timeouts.Short())
	defer cancel()

	var u models.User
	proj := options.FindOne().SetProjection(bson.M{
		"_id":       1,
		"full_name": 1,
		"email":     1,
		"photo_url": 1,
		"status":    1,
	})
	if err := f.users.FindOne(ctx, bson.M{"_id": oid}, proj).Decode(&u); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}

	if u.Status == "disabled" {
		return nil, nil
	}

	return &auth.SessionUser{
		ID:       u.ID.Hex(),
		Name:     u.FullName,
		Email:    u.Email,
		PhotoURL: u.PhotoURL,
	}, nil
}
