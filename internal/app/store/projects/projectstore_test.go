package projectstore_test

import (
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/hackmatehq/hackmate/internal/app/policy/projectpolicy"
	"github.com/hackmatehq/hackmate/internal/app/system/inputval"
	projectstore "github.com/hackmatehq/hackmate/internal/app/store/projects"
	"github.com/hackmatehq/hackmate/internal/testutil"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	ownerEmail  = "ada@example.com"
	ownerName   = "Ada Lovelace"
	viewerEmail = "grace@example.com"
)

func validInput() inputval.ProjectInput {
	return inputval.ProjectInput{
		Name:            "Realtime Whiteboard",
		Description:     strings.Repeat("Collaborative whiteboard with CRDT sync and replay. ", 3),
		Category:        "Web",
		TechStack:       "Go, MongoDB, WebSockets",
		Course:          "CS 4500",
		Year:            "2026",
		MembersRequired: 3,
	}
}

func TestCreate_RoundTripThroughFetchMine(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := projectstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	in := validInput()
	created, err := store.Create(ctx, ownerEmail, ownerName, uuid.NewString(), in)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if created.ID.IsZero() {
		t.Error("expected assigned id")
	}
	if created.OwnerEmail != ownerEmail || created.OwnerName != ownerName {
		t.Errorf("owner fields: %q / %q", created.OwnerEmail, created.OwnerName)
	}
	if created.ViewCount != 0 || !created.Active {
		t.Errorf("new listing: viewCount=%d active=%v", created.ViewCount, created.Active)
	}
	if created.CreatedAt.IsZero() {
		t.Error("expected server-assigned created_at")
	}

	mine, err := store.FetchMine(ctx, ownerEmail)
	if err != nil {
		t.Fatalf("FetchMine: %v", err)
	}
	if len(mine) != 1 {
		t.Fatalf("FetchMine returned %d listings, want 1", len(mine))
	}
	got := mine[0]
	if got.Name != in.Name || got.Category != in.Category || got.MembersRequired != in.MembersRequired {
		t.Errorf("stored record does not match input: %+v", got)
	}
}

func TestCreate_ValidationFailureWritesNothing(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := projectstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	in := validInput()
	in.Description = strings.Repeat("x", inputval.DefaultDescriptionMinChars-1)

	_, err := store.Create(ctx, ownerEmail, ownerName, uuid.NewString(), in)
	var ferr *inputval.FieldError
	if !errors.As(err, &ferr) || ferr.Field != "description" {
		t.Fatalf("want description FieldError, got %v", err)
	}

	mine, err := store.FetchMine(ctx, ownerEmail)
	if err != nil {
		t.Fatalf("FetchMine: %v", err)
	}
	if len(mine) != 0 {
		t.Errorf("rejected create must not write; found %d listings", len(mine))
	}
}

func TestCreate_DescriptionAtThreshold(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := projectstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	in := validInput()
	in.Description = strings.Repeat("x", inputval.DefaultDescriptionMinChars)

	if _, err := store.Create(ctx, ownerEmail, ownerName, uuid.NewString(), in); err != nil {
		t.Fatalf("threshold-length description rejected: %v", err)
	}
}

func TestCreate_AnonymousOwnerName(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := projectstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	created, err := store.Create(ctx, ownerEmail, "", uuid.NewString(), validInput())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.OwnerName != "Anonymous" {
		t.Errorf("OwnerName = %q, want Anonymous", created.OwnerName)
	}
}

func TestCreate_SignedOutRejected(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := projectstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if _, err := store.Create(ctx, "", ownerName, uuid.NewString(), validInput()); !errors.Is(err, projectstore.ErrNotOwner) {
		t.Fatalf("signed-out create: got %v, want ErrNotOwner", err)
	}
}

func TestCreate_IdempotencyToken(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := projectstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	token := uuid.NewString()
	first, err := store.Create(ctx, ownerEmail, ownerName, token, validInput())
	if err != nil {
		t.Fatalf("first Create: %v", err)
	}

	// Blind retry with the same token returns the stored listing rather
	// than inserting a duplicate.
	second, err := store.Create(ctx, ownerEmail, ownerName, token, validInput())
	if err != nil {
		t.Fatalf("retried Create: %v", err)
	}
	if second.ID != first.ID {
		t.Errorf("retry produced a different listing: %v vs %v", second.ID, first.ID)
	}

	mine, _ := store.FetchMine(ctx, ownerEmail)
	if len(mine) != 1 {
		t.Errorf("expected 1 listing after retry, got %d", len(mine))
	}
}

func TestFetchVisible_ExcludesExpiredAndInactive(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := projectstore.New(db)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	now := time.Now().UTC()
	live := fx.CreateProjectAt(ctx, ownerEmail, ownerName, "Live", "Web", now.Add(-24*time.Hour))
	expired := fx.CreateProjectAt(ctx, ownerEmail, ownerName, "Expired", "Web", now.Add(-91*24*time.Hour))
	inactive := fx.CreateProjectAt(ctx, ownerEmail, ownerName, "Inactive", "Web", now)
	if _, err := db.Collection("projects").UpdateByID(ctx, inactive.ID, bson.M{"$set": bson.M{"active": false}}); err != nil {
		t.Fatalf("deactivate fixture: %v", err)
	}

	visible, err := store.FetchVisible(ctx, now)
	if err != nil {
		t.Fatalf("FetchVisible: %v", err)
	}
	if len(visible) != 1 || visible[0].ID != live.ID {
		t.Fatalf("FetchVisible = %d listings, want only the live one", len(visible))
	}

	// The owner still sees all three.
	mine, err := store.FetchMine(ctx, ownerEmail)
	if err != nil {
		t.Fatalf("FetchMine: %v", err)
	}
	if len(mine) != 3 {
		t.Errorf("FetchMine = %d listings, want 3", len(mine))
	}
	_ = expired
}

func TestUpdate_OwnerOnly(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := projectstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	created, err := store.Create(ctx, ownerEmail, ownerName, uuid.NewString(), validInput())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	patch := validInput()
	patch.Name = "Realtime Whiteboard v2"

	// A different principal is refused.
	if _, err := store.Update(ctx, viewerEmail, created.ID, patch); !errors.Is(err, projectstore.ErrNotOwner) {
		t.Fatalf("non-owner update: got %v, want ErrNotOwner", err)
	}

	// The owner succeeds and the patch is reflected in FetchMine.
	updated, err := store.Update(ctx, ownerEmail, created.ID, patch)
	if err != nil {
		t.Fatalf("owner update: %v", err)
	}
	if updated.Name != "Realtime Whiteboard v2" {
		t.Errorf("Name = %q after update", updated.Name)
	}
	if updated.OwnerEmail != ownerEmail {
		t.Errorf("OwnerEmail changed on update: %q", updated.OwnerEmail)
	}
	if !updated.CreatedAt.Equal(created.CreatedAt) {
		t.Errorf("CreatedAt changed on update")
	}

	mine, _ := store.FetchMine(ctx, ownerEmail)
	if len(mine) != 1 || mine[0].Name != "Realtime Whiteboard v2" {
		t.Errorf("FetchMine does not reflect the patch")
	}
}

func TestUpdate_ValidatesPatch(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := projectstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	created, err := store.Create(ctx, ownerEmail, ownerName, uuid.NewString(), validInput())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	patch := validInput()
	patch.MembersRequired = 0
	_, err = store.Update(ctx, ownerEmail, created.ID, patch)
	var ferr *inputval.FieldError
	if !errors.As(err, &ferr) || ferr.Field != "members_required" {
		t.Fatalf("want members_required FieldError, got %v", err)
	}
}

func TestDelete_OwnerOnlyAndPermanent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := projectstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	created, err := store.Create(ctx, ownerEmail, ownerName, uuid.NewString(), validInput())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if err := store.Delete(ctx, viewerEmail, created.ID); !errors.Is(err, projectstore.ErrNotOwner) {
		t.Fatalf("non-owner delete: got %v, want ErrNotOwner", err)
	}

	if err := store.Delete(ctx, ownerEmail, created.ID); err != nil {
		t.Fatalf("owner delete: %v", err)
	}
	if _, err := store.GetByID(ctx, created.ID); !errors.Is(err, projectstore.ErrNotFound) {
		t.Fatalf("after delete: got %v, want ErrNotFound", err)
	}
}

func TestReactivate_ExpiredListingReappears(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := projectstore.New(db)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	now := time.Now().UTC()
	expired := fx.CreateProjectAt(ctx, ownerEmail, ownerName, "Stale", "App", now.Add(-91*24*time.Hour))

	visible, err := store.FetchVisible(ctx, now)
	if err != nil {
		t.Fatalf("FetchVisible: %v", err)
	}
	if len(visible) != 0 {
		t.Fatal("expired listing should not be visible before reactivation")
	}

	if _, err := store.Reactivate(ctx, viewerEmail, expired.ID, now); !errors.Is(err, projectstore.ErrNotOwner) {
		t.Fatalf("non-owner reactivate: got %v, want ErrNotOwner", err)
	}

	reactivated, err := store.Reactivate(ctx, ownerEmail, expired.ID, now)
	if err != nil {
		t.Fatalf("Reactivate: %v", err)
	}
	if !reactivated.Active {
		t.Error("reactivated listing must be active")
	}
	if projectpolicy.IsExpired(reactivated.CreatedAt, now, store.TTL()) {
		t.Error("reactivated listing must not be expired")
	}

	visible, err = store.FetchVisible(ctx, now)
	if err != nil {
		t.Fatalf("FetchVisible: %v", err)
	}
	if len(visible) != 1 || visible[0].ID != expired.ID {
		t.Error("reactivated listing should reappear in FetchVisible")
	}
}

func TestReactivate_LiveListingRejected(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := projectstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	created, err := store.Create(ctx, ownerEmail, ownerName, uuid.NewString(), validInput())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if _, err := store.Reactivate(ctx, ownerEmail, created.ID, time.Now().UTC()); !errors.Is(err, projectstore.ErrNotExpired) {
		t.Fatalf("live reactivate: got %v, want ErrNotExpired", err)
	}
}

func TestIncrementView_OwnerNeverCounts(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := projectstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	created, err := store.Create(ctx, ownerEmail, ownerName, uuid.NewString(), validInput())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	// Repeated owner views are a no-op.
	for i := 0; i < 5; i++ {
		p, err := store.IncrementView(ctx, ownerEmail, created.ID)
		if err != nil {
			t.Fatalf("owner IncrementView: %v", err)
		}
		if p.ViewCount != 0 {
			t.Fatalf("owner view counted: %d", p.ViewCount)
		}
	}

	// Non-owner views count, one each, monotonically.
	var last int64
	for i := 1; i <= 3; i++ {
		p, err := store.IncrementView(ctx, viewerEmail, created.ID)
		if err != nil {
			t.Fatalf("IncrementView: %v", err)
		}
		if p.ViewCount != int64(i) {
			t.Fatalf("ViewCount = %d after %d views", p.ViewCount, i)
		}
		if p.ViewCount < last {
			t.Fatal("view count decreased")
		}
		last = p.ViewCount
	}

	// Signed-out viewers count too.
	p, err := store.IncrementView(ctx, "", created.ID)
	if err != nil {
		t.Fatalf("anonymous IncrementView: %v", err)
	}
	if p.ViewCount != 4 {
		t.Errorf("ViewCount = %d after anonymous view, want 4", p.ViewCount)
	}
}

func TestIncrementView_ConcurrentViewersAllCounted(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := projectstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	created, err := store.Create(ctx, ownerEmail, ownerName, uuid.NewString(), validInput())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	const viewers = 20
	var wg sync.WaitGroup
	errs := make(chan error, viewers)
	for i := 0; i < viewers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := store.IncrementView(ctx, viewerEmail, created.ID); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatalf("concurrent IncrementView: %v", err)
	}

	p, err := store.GetByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if p.ViewCount != viewers {
		t.Errorf("ViewCount = %d, want %d (lost update)", p.ViewCount, viewers)
	}
}

func TestGetByID_NotFound(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := projectstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if _, err := store.GetByID(ctx, primitive.NewObjectID()); !errors.Is(err, projectstore.ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
}
