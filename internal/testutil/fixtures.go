package testutil

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/hackmatehq/hackmate/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// CreateUser creates a test password account.
func (f *Fixtures) CreateUser(ctx context.Context, fullName, email string) models.User {
	f.t.Helper()

	now := time.Now().UTC()
	user := models.User{
		ID:         primitive.NewObjectID(),
		FullName:   fullName,
		FullNameCI: text.Fold(fullName),
		Email:      email,
		EmailCI:    text.Fold(email),
		AuthMethod: "password",
		Status:     "active",
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if _, err := f.db.Collection("users").InsertOne(ctx, user); err != nil {
		f.t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreateProject inserts a live listing owned by ownerEmail with sensible
// defaults and returns it.
func (f *Fixtures) CreateProject(ctx context.Context, ownerEmail, ownerName, name, category string) models.Project {
	f.t.Helper()
	return f.CreateProjectAt(ctx, ownerEmail, ownerName, name, category, time.Now().UTC())
}

// CreateProjectAt inserts a live listing with an explicit created-at, for
// tests that exercise expiry.
func (f *Fixtures) CreateProjectAt(ctx context.Context, ownerEmail, ownerName, name, category string, createdAt time.Time) models.Project {
	f.t.Helper()

	p := models.Project{
		ID:              primitive.NewObjectID(),
		Name:            name,
		Description:     strings.Repeat("A test listing description long enough to publish. ", 3),
		Category:        category,
		TechStack:       "Go, MongoDB",
		Course:          "CS 4500",
		Year:            "2026",
		MembersRequired: 2,
		OwnerEmail:      ownerEmail,
		OwnerName:       ownerName,
		Active:          true,
		CreatedAt:       createdAt,
	}

	if _, err := f.db.Collection("projects").InsertOne(ctx, p); err != nil {
		f.t.Fatalf("failed to create test project: %v", err)
	}
	return p
}
