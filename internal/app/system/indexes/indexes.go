// internal/app/system/indexes/indexes.go
package indexes

import (
	"context"
	"errors"
	"strings"

	"github.com/hackmatehq/hackmate/internal/app/store/oauthstate"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// EnsureAll is called at startup. Each ensure* function is idempotent; we
// aggregate errors so any problem is visible and startup can fail fast.
func EnsureAll(ctx context.Context, db *mongo.Database) error {
	var problems []string

	if err := ensureUsers(ctx, db); err != nil {
		problems = append(problems, "users: "+err.Error())
	}
	if err := ensureProjects(ctx, db); err != nil {
		problems = append(problems, "projects: "+err.Error())
	}
	if err := oauthstate.New(db).EnsureIndexes(ctx); err != nil {
		problems = append(problems, "oauth_states: "+err.Error())
	}

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

func ensureUsers(ctx context.Context, db *mongo.Database) error {
	return createIndexes(ctx, db.Collection("users"), []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email_ci", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("idx_users_email_ci"),
		},
	})
}

func ensureProjects(ctx context.Context, db *mongo.Database) error {
	return createIndexes(ctx, db.Collection("projects"), []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "owner_email", Value: 1}},
			Options: options.Index().SetName("idx_projects_owner_email"),
		},
		{
			Keys:    bson.D{{Key: "category", Value: 1}},
			Options: options.Index().SetName("idx_projects_category"),
		},
		{
			Keys:    bson.D{{Key: "created_at", Value: -1}},
			Options: options.Index().SetName("idx_projects_created_at"),
		},
		// Sparse so listings created without an idempotency token don't
		// collide on a shared null key.
		{
			Keys:    bson.D{{Key: "client_token", Value: 1}},
			Options: options.Index().SetUnique(true).SetSparse(true).SetName("idx_projects_client_token"),
		},
	})
}

func createIndexes(ctx context.Context, coll *mongo.Collection, models []mongo.IndexModel) error {
	_, err := coll.Indexes().CreateMany(ctx, models)
	if err != nil && strings.Contains(err.Error(), "IndexOptionsConflict") {
		// An index with the same keys already exists under another name;
		// leave it alone rather than fight over naming.
		zap.L().Warn("index options conflict, keeping existing index",
			zap.String("collection", coll.Name()),
			zap.Error(err))
		return nil
	}
	return err
}
