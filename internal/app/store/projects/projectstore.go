// internal/app/store/projects/projectstore.go
//
// Store over the "projects" collection. It is the only mutation surface for
// listings: handlers never write project documents directly. The store owns
// the ownership checks (owner_email must match the acting principal) and the
// validation call, so a listing can't be persisted in an invalid state no
// matter which handler drives it.
//
// View counts use $inc so concurrent viewers are all reflected; the count is
// never computed read-then-write-back from a stale local copy.
package projectstore

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/hackmatehq/hackmate/internal/app/policy/projectpolicy"
	"github.com/hackmatehq/hackmate/internal/app/system/inputval"
	"github.com/hackmatehq/hackmate/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c     *mongo.Collection
	rules inputval.ProjectRules
	ttl   time.Duration
}

// New creates a project store with the default validation rules and TTL.
func New(db *mongo.Database) *Store {
	return NewWithConfig(db, inputval.DefaultProjectRules(), projectpolicy.DefaultTTL)
}

// NewWithConfig creates a project store with explicit rules and TTL,
// for apps that configure the description threshold or visibility window.
func NewWithConfig(db *mongo.Database, rules inputval.ProjectRules, ttl time.Duration) *Store {
	return &Store{c: db.Collection("projects"), rules: rules, ttl: ttl}
}

// TTL returns the visibility window this store evaluates listings against.
func (s *Store) TTL() time.Duration {
	return s.ttl
}

// Rules returns the validation rule set this store applies.
func (s *Store) Rules() inputval.ProjectRules {
	return s.rules
}

// Create validates in and inserts a new listing owned by ownerEmail.
// Nothing is written when validation fails. ownerName falls back to
// "Anonymous" when the account has no display name.
//
// token is a client-generated idempotency token (one per submission
// attempt). A blind retry of the same submission hits the unique index on
// client_token and the already-stored listing is returned instead of a
// duplicate.
func (s *Store) Create(ctx context.Context, ownerEmail, ownerName, token string, in inputval.ProjectInput) (models.Project, error) {
	if strings.TrimSpace(ownerEmail) == "" {
		return models.Project{}, ErrNotOwner
	}
	if verr := inputval.ValidateNewProject(in, s.rules); verr != nil {
		return models.Project{}, verr
	}
	if strings.TrimSpace(ownerName) == "" {
		ownerName = models.AnonymousOwnerName
	}

	now := time.Now().UTC()
	p := models.Project{
		ID:              primitive.NewObjectID(),
		Name:            strings.TrimSpace(in.Name),
		Description:     strings.TrimSpace(in.Description),
		Category:        in.Category,
		TechStack:       strings.TrimSpace(in.TechStack),
		Course:          strings.TrimSpace(in.Course),
		Year:            strings.TrimSpace(in.Year),
		MembersRequired: in.MembersRequired,
		LinkedIn:        strings.TrimSpace(in.LinkedIn),
		OwnerEmail:      ownerEmail,
		OwnerName:       ownerName,
		ViewCount:       0,
		Active:          true,
		CreatedAt:       now,
	}

	doc := bson.M{
		"_id":              p.ID,
		"name":             p.Name,
		"description":      p.Description,
		"category":         p.Category,
		"tech_stack":       p.TechStack,
		"course":           p.Course,
		"year":             p.Year,
		"members_required": p.MembersRequired,
		"linkedin":         p.LinkedIn,
		"owner_email":      p.OwnerEmail,
		"owner_name":       p.OwnerName,
		"view_count":       p.ViewCount,
		"active":           p.Active,
		"created_at":       p.CreatedAt,
	}
	if token != "" {
		doc["client_token"] = token
	}

	if _, err := s.c.InsertOne(ctx, doc); err != nil {
		if token != "" && wafflemongo.IsDup(err) {
			// Retried submission; hand back the listing the first attempt stored.
			var existing models.Project
			if ferr := s.c.FindOne(ctx, bson.M{"client_token": token}).Decode(&existing); ferr == nil {
				return existing, nil
			}
		}
		return models.Project{}, storageErr("create", err)
	}
	return p, nil
}

// GetByID returns a single listing.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Project, error) {
	var p models.Project
	err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&p)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Project{}, ErrNotFound
	}
	if err != nil {
		return models.Project{}, storageErr("get", err)
	}
	return p, nil
}

// FetchVisible reads the full collection and keeps the listings visible to
// non-owners as of now: active and inside the TTL window. No ordering is
// guaranteed; callers sort.
func (s *Store) FetchVisible(ctx context.Context, now time.Time) ([]models.Project, error) {
	all, err := s.fetchAll(ctx, "fetch_visible")
	if err != nil {
		return nil, err
	}
	visible := make([]models.Project, 0, len(all))
	for _, p := range all {
		if projectpolicy.IsVisibleToOthers(p, now, s.ttl) {
			visible = append(visible, p)
		}
	}
	return visible, nil
}

// FetchMine returns every listing authored by ownerEmail, including expired
// and inactive ones: owners see everything they published.
func (s *Store) FetchMine(ctx context.Context, ownerEmail string) ([]models.Project, error) {
	if strings.TrimSpace(ownerEmail) == "" {
		return nil, ErrNotOwner
	}
	cur, err := s.c.Find(ctx, bson.M{"owner_email": ownerEmail})
	if err != nil {
		return nil, storageErr("fetch_mine", err)
	}
	defer cur.Close(ctx)

	var out []models.Project
	if err := cur.All(ctx, &out); err != nil {
		return nil, storageErr("fetch_mine", err)
	}
	return out, nil
}

// Update validates the patch and merges it into the stored listing, owner
// only. Immutable fields (id, owner_email, created_at, view_count) are never
// part of the $set. Returns the updated record.
func (s *Store) Update(ctx context.Context, actorEmail string, id primitive.ObjectID, in inputval.ProjectInput) (models.Project, error) {
	if err := s.requireOwner(ctx, actorEmail, id); err != nil {
		return models.Project{}, err
	}
	if verr := inputval.ValidateProjectEdit(in, s.rules); verr != nil {
		return models.Project{}, verr
	}

	now := time.Now().UTC()
	set := bson.M{
		"name":             strings.TrimSpace(in.Name),
		"description":      strings.TrimSpace(in.Description),
		"category":         in.Category,
		"tech_stack":       strings.TrimSpace(in.TechStack),
		"course":           strings.TrimSpace(in.Course),
		"year":             strings.TrimSpace(in.Year),
		"members_required": in.MembersRequired,
		"linkedin":         strings.TrimSpace(in.LinkedIn),
		"updated_at":       now,
	}

	// Filter on owner_email as well as _id so a concurrent ownership
	// anomaly can't slip a write through between the check and the update.
	var p models.Project
	err := s.c.FindOneAndUpdate(ctx,
		bson.M{"_id": id, "owner_email": actorEmail},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&p)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Project{}, ErrNotOwner
	}
	if err != nil {
		return models.Project{}, storageErr("update", err)
	}
	return p, nil
}

// Delete permanently removes a listing, owner only. There is no tombstone.
func (s *Store) Delete(ctx context.Context, actorEmail string, id primitive.ObjectID) error {
	if err := s.requireOwner(ctx, actorEmail, id); err != nil {
		return err
	}
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id, "owner_email": actorEmail})
	if err != nil {
		return storageErr("delete", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotOwner
	}
	return nil
}

// Reactivate restores an expired listing to visibility, owner only. The
// created_at reset restarts the TTL window; the view count carries over.
// Returns ErrNotExpired when the listing is still live.
func (s *Store) Reactivate(ctx context.Context, actorEmail string, id primitive.ObjectID, now time.Time) (models.Project, error) {
	if strings.TrimSpace(actorEmail) == "" {
		return models.Project{}, ErrNotOwner
	}
	current, err := s.GetByID(ctx, id)
	if err != nil {
		return models.Project{}, err
	}
	if current.OwnerEmail != actorEmail {
		return models.Project{}, ErrNotOwner
	}
	if !projectpolicy.CanReactivate(current, now, s.ttl) {
		return models.Project{}, ErrNotExpired
	}

	next := projectpolicy.Reactivate(current, now.UTC())

	var p models.Project
	err = s.c.FindOneAndUpdate(ctx,
		bson.M{"_id": id, "owner_email": actorEmail},
		bson.M{"$set": bson.M{"active": next.Active, "created_at": next.CreatedAt}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&p)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Project{}, ErrNotOwner
	}
	if err != nil {
		return models.Project{}, storageErr("reactivate", err)
	}
	return p, nil
}

// IncrementView adds exactly one view to a listing, unless the viewer is the
// listing's owner, in which case the current record is returned unchanged.
// The increment is a server-side $inc: concurrent viewers are all counted.
func (s *Store) IncrementView(ctx context.Context, viewerEmail string, id primitive.ObjectID) (models.Project, error) {
	current, err := s.GetByID(ctx, id)
	if err != nil {
		return models.Project{}, err
	}
	if viewerEmail != "" && viewerEmail == current.OwnerEmail {
		return current, nil
	}

	var p models.Project
	err = s.c.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$inc": bson.M{"view_count": 1}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&p)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Project{}, ErrNotFound
	}
	if err != nil {
		return models.Project{}, storageErr("increment_view", err)
	}
	return p, nil
}

func (s *Store) fetchAll(ctx context.Context, op string) ([]models.Project, error) {
	cur, err := s.c.Find(ctx, bson.M{})
	if err != nil {
		return nil, storageErr(op, err)
	}
	defer cur.Close(ctx)

	var out []models.Project
	if err := cur.All(ctx, &out); err != nil {
		return nil, storageErr(op, err)
	}
	return out, nil
}

// requireOwner verifies the listing exists and actorEmail owns it.
func (s *Store) requireOwner(ctx context.Context, actorEmail string, id primitive.ObjectID) error {
	if strings.TrimSpace(actorEmail) == "" {
		return ErrNotOwner
	}
	current, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if current.OwnerEmail != actorEmail {
		return ErrNotOwner
	}
	return nil
}
