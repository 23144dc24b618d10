// internal/app/store/users/userstore.go
package userstore

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/hackmatehq/hackmate/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"golang.org/x/crypto/bcrypt"
)

type Store struct {
	c *mongo.Collection
}

var (
	ErrNotFound       = errors.New("user not found")
	ErrDuplicateEmail = errors.New("an account with this email already exists")
	ErrBadCredentials = errors.New("email or password is incorrect")
)

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("users")}
}

// CreateLocal inserts a password account. The password is hashed with
// bcrypt; the plaintext never touches the document.
func (s *Store) CreateLocal(ctx context.Context, fullName, email, password string) (models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), 12)
	if err != nil {
		return models.User{}, err
	}

	now := time.Now().UTC()
	u := models.User{
		ID:           primitive.NewObjectID(),
		FullName:     strings.TrimSpace(fullName),
		FullNameCI:   text.Fold(fullName),
		Email:        strings.TrimSpace(email),
		EmailCI:      text.Fold(email),
		AuthMethod:   "password",
		Status:       "active",
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if _, err := s.c.InsertOne(ctx, u); err != nil {
		if wafflemongo.IsDup(err) {
			return models.User{}, ErrDuplicateEmail
		}
		return models.User{}, err
	}
	return u, nil
}

// UpsertGoogle creates or refreshes an account from a Google sign-in.
// The email is the match key; display name and photo follow the Google
// profile on each sign-in.
func (s *Store) UpsertGoogle(ctx context.Context, fullName, email, photoURL string) (models.User, error) {
	now := time.Now().UTC()

	var u models.User
	err := s.c.FindOneAndUpdate(ctx,
		bson.M{"email_ci": text.Fold(email)},
		bson.M{
			"$set": bson.M{
				"full_name":    strings.TrimSpace(fullName),
				"full_name_ci": text.Fold(fullName),
				"photo_url":    photoURL,
				"auth_method":  "google",
				"updated_at":   now,
			},
			"$setOnInsert": bson.M{
				"_id":        primitive.NewObjectID(),
				"email":      strings.TrimSpace(email),
				"email_ci":   text.Fold(email),
				"status":     "active",
				"created_at": now,
			},
		},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&u)
	if err != nil {
		return models.User{}, err
	}
	return u, nil
}

// GetByEmail looks an account up case-insensitively.
func (s *Store) GetByEmail(ctx context.Context, email string) (models.User, error) {
	var u models.User
	err := s.c.FindOne(ctx, bson.M{"email_ci": text.Fold(email)}).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.User{}, ErrNotFound
	}
	if err != nil {
		return models.User{}, err
	}
	return u, nil
}

// GetByID returns an account by its ObjectID.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.User, error) {
	var u models.User
	err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.User{}, ErrNotFound
	}
	if err != nil {
		return models.User{}, err
	}
	return u, nil
}

// UpdatePassword rehashes and stores a new password for a password
// account. Google accounts have no password to update.
func (s *Store) UpdatePassword(ctx context.Context, id primitive.ObjectID, newPassword string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), 12)
	if err != nil {
		return err
	}

	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": id, "auth_method": "password"},
		bson.M{"$set": bson.M{
			"password_hash": hash,
			"updated_at":    time.Now().UTC(),
		}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Authenticate verifies an email/password pair and returns the account.
// All credential failures collapse to ErrBadCredentials so the login form
// can't be used to probe which emails exist; storage failures propagate so
// callers can tell an outage apart from a wrong password.
func (s *Store) Authenticate(ctx context.Context, email, password string) (models.User, error) {
	u, err := s.GetByEmail(ctx, email)
	if errors.Is(err, ErrNotFound) {
		return models.User{}, ErrBadCredentials
	}
	if err != nil {
		return models.User{}, err
	}
	if u.AuthMethod != "password" || len(u.PasswordHash) == 0 {
		return models.User{}, ErrBadCredentials
	}
	if bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(password)) != nil {
		return models.User{}, ErrBadCredentials
	}
	if u.Status == "disabled" {
		return models.User{}, ErrBadCredentials
	}
	return u, nil
}
